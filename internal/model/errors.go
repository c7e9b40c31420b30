package model

import "errors"

// ErrDataIntegrity is returned when a scraped or persisted row is missing a
// required field or carries a value that matches no accepted shape.  It is
// fatal to the current scrape or reconciliation pass; callers must not skip
// the offending row and continue.
var ErrDataIntegrity = errors.New("data integrity")
