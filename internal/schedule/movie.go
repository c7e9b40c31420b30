package schedule

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/movie-times/internal/model"
)

var runtimeRe = regexp.MustCompile(`^(?:(\d) hr)? ?(?:(\d{1,2}) min)?`)

// ParseRuntime converts a raw runtime string to minutes.  Two shapes are
// accepted: "H hr M min" with either half optional, and a plain integer
// minute count.  Anything else is a data-integrity failure.
func ParseRuntime(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "hr") || strings.Contains(raw, "min") {
		m := runtimeRe.FindStringSubmatch(raw)
		if m == nil || (m[1] == "" && m[2] == "") {
			return 0, fmt.Errorf("%w: bad runtime %q, expected \"H hr M min\"", model.ErrDataIntegrity, raw)
		}
		hr, _ := strconv.Atoi(zeroDefault(m[1]))
		min, _ := strconv.Atoi(zeroDefault(m[2]))
		return hr*60 + min, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: bad runtime %q, expected \"H hr M min\" or a minute count", model.ErrDataIntegrity, raw)
	}
	return n, nil
}

func zeroDefault(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

// Movie is one title on a day or across a merged range.  Showings keep
// merge insertion order; they are only sorted at output time.
type Movie struct {
	Name       string
	RuntimeMin int
	Showings   []Showing
}

// NewMovie parses the raw runtime string and returns an empty movie.
func NewMovie(name, rawRuntime string) (*Movie, error) {
	runtime, err := ParseRuntime(rawRuntime)
	if err != nil {
		return nil, err
	}
	return &Movie{Name: name, RuntimeMin: runtime}, nil
}

// AddRawShowings appends one showing per raw time string.  All of them
// share the movie's runtime; format and caption attributes come from the
// shared tag list.
func (m *Movie) AddRawShowings(attributes []string, rawTimes []string, day time.Time, loc *time.Location) error {
	for _, raw := range rawTimes {
		s, err := NewShowing(attributes, raw, m.RuntimeMin, day, loc)
		if err != nil {
			return err
		}
		m.Showings = append(m.Showings, s)
	}
	return nil
}

// Len is the showing count.  A movie with zero showings is treated as
// absent by callers.
func (m *Movie) Len() int { return len(m.Showings) }

// First returns the earliest showing start.  It must not be called on an
// empty movie.
func (m *Movie) First() time.Time {
	first := m.Showings[0].Start
	for _, s := range m.Showings[1:] {
		if s.Start.Before(first) {
			first = s.Start
		}
	}
	return first
}

// Last returns the latest showing start.  It must not be called on an
// empty movie.
func (m *Movie) Last() time.Time {
	last := m.Showings[0].Start
	for _, s := range m.Showings[1:] {
		if s.Start.After(last) {
			last = s.Start
		}
	}
	return last
}

// Filter returns a new movie holding only the showings that pass f.  When
// the title itself fails, the result is empty.  The receiver is never
// modified.
func (m *Movie) Filter(f Filter) *Movie {
	out := &Movie{Name: m.Name, RuntimeMin: m.RuntimeMin}
	if !f.MatchesTitle(m.Name) {
		return out
	}
	for _, s := range m.Showings {
		if f.MatchesStart(s.StartClock()) {
			out.Showings = append(out.Showings, s)
		}
	}
	return out
}

// SortedShowings returns the showings ordered by start time without
// touching the stored order.
func (m *Movie) SortedShowings() []Showing {
	out := make([]Showing, len(m.Showings))
	copy(out, m.Showings)
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}
