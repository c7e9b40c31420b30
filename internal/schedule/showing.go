package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/movie-times/internal/model"
)

// formatRules maps raw amenity tags onto the one canonical presentation
// format of a showing.  A showing often carries several overlapping tags
// ("IMAX" plus "Laser at AMC"), so the table order is the precedence: the
// first rule whose tag appears wins.
var formatRules = []struct {
	tag   string
	label string
}{
	{"dolby cinema @ amc", "Dolby"},
	{"imax", "IMAX"},
	{"reald 3d", "3D"},
	{"digital 3d", "3D"},
	{"xl at amc", "XL at AMC"},
	{"d-box", "D-Box"},
	{"acx", "Apple Cinemas Experience"},
	{"screenx", "ScreenX"},
	{"laser at amc", "Standard"},
	{"standard format", "Standard"},
}

// FormatFromAttributes resolves the canonical format label for a raw
// attribute-tag list.  When no rule matches, the first raw tag is used
// verbatim.
func FormatFromAttributes(raw []string) string {
	attrs := lowerAll(raw)
	for _, rule := range formatRules {
		if containsString(attrs, rule.tag) {
			return rule.label
		}
	}
	if len(raw) > 0 {
		return raw[0]
	}
	return ""
}

// Showing is one scheduled screening.  It is built once from raw scrape
// attributes and never mutated.
type Showing struct {
	Format        string
	Languages     []string
	IsOpenCaption bool
	NoAlist       bool
	Start         time.Time
	End           time.Time
}

// NewShowing derives a Showing from the raw attribute tags and time string
// of one scraped screening.  day supplies the calendar date and loc the
// theater's zone.  End equals Start when runtimeMin is zero, which marks
// the showing as a placeholder.
func NewShowing(attributes []string, rawStart string, runtimeMin int, day time.Time, loc *time.Location) (Showing, error) {
	format := FormatFromAttributes(attributes)
	attrs := lowerAll(attributes)

	var languages []string
	for _, attr := range attrs {
		// "spanish language", "english language" and the like
		if strings.HasSuffix(attr, "language") {
			if i := strings.LastIndexByte(attr, ' '); i > 0 {
				languages = append(languages, attr[:i])
			}
		}
	}

	start, err := parseShowtime(rawStart, day, loc)
	if err != nil {
		return Showing{}, err
	}

	return Showing{
		Format:        format,
		Languages:     languages,
		IsOpenCaption: containsString(attrs, "open caption"),
		NoAlist:       containsString(attrs, "alternative content") || containsString(attrs, "no passes"),
		Start:         start,
		End:           start.Add(time.Duration(runtimeMin) * time.Minute),
	}, nil
}

// parseShowtime combines a raw "H:MMa"/"H:MMp" time with the calendar day
// in the theater's zone.
func parseShowtime(raw string, day time.Time, loc *time.Location) (time.Time, error) {
	value := expandMeridiem(strings.ToLower(strings.TrimSpace(raw)))
	t, err := time.Parse("3:04pm", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad showtime %q, expected H:MMa or H:MMp", model.ErrDataIntegrity, raw)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

// StartClock returns the showing's start as a local clock time, the form
// the filter's time-of-day bounds compare against.
func (s Showing) StartClock() ClockTime {
	return ClockTime{Hour: s.Start.Hour(), Minute: s.Start.Minute()}
}

// IsPlaceholder reports whether the showing has no known runtime.
func (s Showing) IsPlaceholder() bool { return s.Start.Equal(s.End) }
