// Package schedule holds the showtime data model (Showing, Movie,
// DaySchedule, FullSchedule), the filter predicate applied to it, and the
// parser that turns free-form date and time expressions into concrete
// timezone-aware instants.
package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Weekday and month name tables are Monday-first to match the exhibition
// week arithmetic below.
var (
	weekdayNames = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
	weekdayAbbrs = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}
	monthNames   = []string{"january", "february", "march", "april", "may", "june", "july", "august", "september", "october", "november", "december"}
	monthAbbrs   = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}
)

// pivotWeekday is Thursday in the Monday-first week.  Exhibition weeks run
// Thursday through Wednesday.
const pivotWeekday = 3

// ClockTime is a timezone-naive time of day.
type ClockTime struct {
	Hour   int
	Minute int
}

func (t ClockTime) minutes() int { return t.Hour*60 + t.Minute }

// Before reports whether t falls earlier in the day than o.
func (t ClockTime) Before(o ClockTime) bool { return t.minutes() < o.minutes() }

// After reports whether t falls later in the day than o.
func (t ClockTime) After(o ClockTime) bool { return t.minutes() > o.minutes() }

func (t ClockTime) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

// Parser resolves date and time expressions against a fixed location and
// clock.  The zero of "today" is taken in that location, so two parsers
// in different zones can disagree on what "tomorrow" means.
type Parser struct {
	loc *time.Location
	now func() time.Time
}

// NewParser returns a parser anchored to loc.  A nil loc uses the process
// local zone.
func NewParser(loc *time.Location) *Parser {
	return NewParserAt(loc, time.Now)
}

// NewParserAt is NewParser with an explicit clock.  Tests use it to pin
// "today" to a known date.
func NewParserAt(loc *time.Location, now func() time.Time) *Parser {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Parser{loc: loc, now: now}
}

// Location returns the zone the parser resolves expressions in.
func (p *Parser) Location() *time.Location { return p.loc }

// Today returns midnight of the current day in the parser's location.
func (p *Parser) Today() time.Time {
	n := p.now().In(p.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, p.loc)
}

// Now returns the parser's current instant in its location.
func (p *Parser) Now() time.Time { return p.now().In(p.loc) }

// ParseTimeOfDay parses "HH:MM" (24h) or "H:MMam"/"H:MMpm".  A trailing
// bare "a" or "p" is shorthand for am/pm.
func (p *Parser) ParseTimeOfDay(value string) (ClockTime, error) {
	value = expandMeridiem(strings.ToLower(strings.TrimSpace(value)))
	layout := "15:04"
	if strings.HasSuffix(value, "am") || strings.HasSuffix(value, "pm") {
		layout = "3:04pm"
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return ClockTime{}, fmt.Errorf("%w: expected time in HH:MM format, optionally with am/pm", ErrParse)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// ParseDate parses "today", "tomorrow", a weekday name (full or
// abbreviated, resolved to the next occurrence on or after today), or an
// ISO YYYY-MM-DD date.  Dates before today are rejected.
func (p *Parser) ParseDate(value string) (time.Time, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	today := p.Today()

	switch value {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	}
	if n, ok := nameIndex(value, weekdayNames, weekdayAbbrs); ok {
		return today.AddDate(0, 0, (n-mondayWeekday(today)+7)%7), nil
	}

	d, err := time.ParseInLocation("2006-01-02", value, p.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: expected date in ISO format (YYYY-MM-DD)", ErrParse)
	}
	if d.Before(today) {
		return time.Time{}, fmt.Errorf("%w: cannot choose a date in the past: %s < %s",
			ErrParse, d.Format("2006-01-02"), today.Format("2006-01-02"))
	}
	return d, nil
}

// ParseDateRange parses a date-range expression into an inclusive
// [start, end] pair of midnights.  Accepted shapes, in priority order:
// a month name (through that month's last day, rolling into next year if
// the month has passed), "movie week" (today through the end of the
// current Thursday-pivoted week), "next movie week" (the following
// Thursday-to-Wednesday window), a single date expression, and two
// dash-separated date expressions.
func (p *Parser) ParseDateRange(value string) (time.Time, time.Time, error) {
	value = strings.TrimSpace(value)
	lower := strings.ToLower(value)
	today := p.Today()

	if m, ok := nameIndex(lower, monthNames[:], monthAbbrs[:]); ok {
		month := time.Month(m + 1)
		year := today.Year()
		if today.Month() > month {
			year++
		}
		startDay := 1
		if today.Month() == month && today.Year() == year {
			startDay = today.Day()
		}
		start := time.Date(year, month, startDay, 0, 0, 0, 0, p.loc)
		end := time.Date(year, month+1, 0, 0, 0, 0, 0, p.loc) // day 0 of the next month
		return start, end, nil
	}

	switch lower {
	case "movie week":
		daysLeft := 6
		if wd := mondayWeekday(today); wd != pivotWeekday {
			daysLeft = ((pivotWeekday-wd-1)%7 + 7) % 7
		}
		return today, today.AddDate(0, 0, daysLeft), nil
	case "next movie week":
		toPivot := 7
		if wd := mondayWeekday(today); wd != pivotWeekday {
			toPivot = ((pivotWeekday-wd)%7 + 7) % 7
		}
		start := today.AddDate(0, 0, toPivot)
		return start, start.AddDate(0, 0, 6), nil
	}

	if start, err := p.ParseDate(value); err == nil {
		return start, start, nil
	}

	// "YYYY-MM-DD - <end expression>": the first ten characters carry the
	// start date and the remainder supplies the end after its first dash.
	if len(value) > 10 {
		if start, err := p.ParseDate(value[:10]); err == nil {
			_, after, found := strings.Cut(value[10:], "-")
			if !found {
				return time.Time{}, time.Time{}, fmt.Errorf("%w: expected a range as <start> - <end>", ErrParse)
			}
			end, err := p.ParseDate(strings.TrimSpace(after))
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			return start, end, nil
		}
	}

	before, after, found := strings.Cut(value, "-")
	if !found {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: expected a date, a month, \"movie week\", \"next movie week\", or <start> - <end>", ErrParse)
	}
	start, err := p.ParseDate(strings.TrimSpace(before))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := p.ParseDate(strings.TrimSpace(after))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// mondayWeekday maps time.Weekday (Sunday-first) onto the Monday-first
// index the week tables use.
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func nameIndex(value string, full, abbr []string) (int, bool) {
	for i, name := range full {
		if value == name {
			return i, true
		}
	}
	for i, name := range abbr {
		if value == name {
			return i, true
		}
	}
	return 0, false
}

// expandMeridiem turns the single-letter am/pm shorthand ("7:30p") into
// its full form before layout parsing.
func expandMeridiem(value string) string {
	if strings.HasSuffix(value, "p") || strings.HasSuffix(value, "a") {
		return value + "m"
	}
	return value
}
