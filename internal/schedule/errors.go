package schedule

import "errors"

// ErrParse is wrapped by every temporal-expression failure.  The wrapped
// message always names the expected shape so CLI and API layers can relay
// it to the user verbatim.
var ErrParse = errors.New("parse error")
