package schedule

import "strings"

// Filter is an immutable criteria set applied when narrowing a schedule.
// A zero Filter passes everything.  Title lists are matched
// case-insensitively; when Movies is non-empty it takes precedence and
// ExcludeMovies is ignored.
//
// Formats and ExcludeFormats are recorded but not consulted by any
// matching method: showings of every format pass through.  Whether format
// filtering was ever meant to work is an open product question; the
// current no-op behavior is pinned by a test so changing it is a
// deliberate, visible decision.
type Filter struct {
	EarliestStart  *ClockTime
	LatestStart    *ClockTime
	Movies         []string
	ExcludeMovies  []string
	Formats        []string
	ExcludeFormats []string
}

// EmptyFilter returns a filter with every criterion unset.
func EmptyFilter() Filter { return Filter{} }

// NewFilter lowercases the title lists once at construction so matching
// stays allocation-free.
func NewFilter(earliest, latest *ClockTime, movies, excludeMovies, formats, excludeFormats []string) Filter {
	return Filter{
		EarliestStart:  earliest,
		LatestStart:    latest,
		Movies:         lowerAll(movies),
		ExcludeMovies:  lowerAll(excludeMovies),
		Formats:        formats,
		ExcludeFormats: excludeFormats,
	}
}

// MatchesTitle reports whether a movie with the given display title passes
// the title criteria.
func (f Filter) MatchesTitle(name string) bool {
	name = strings.ToLower(name)
	if len(f.Movies) > 0 {
		return containsString(f.Movies, name)
	}
	if len(f.ExcludeMovies) > 0 {
		return !containsString(f.ExcludeMovies, name)
	}
	return true
}

// MatchesStart reports whether a showing starting at the given local clock
// time falls within [EarliestStart, LatestStart], inclusive.  An unset
// bound is unconstrained on that side.
func (f Filter) MatchesStart(start ClockTime) bool {
	if f.EarliestStart != nil && start.Before(*f.EarliestStart) {
		return false
	}
	if f.LatestStart != nil && start.After(*f.LatestStart) {
		return false
	}
	return true
}

func lowerAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
