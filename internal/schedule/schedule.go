package schedule

import (
	"errors"
	"sort"
	"time"

	"github.com/iliyamo/movie-times/internal/model"
)

// ErrEmptySchedule is returned when a merge is attempted over zero days.
var ErrEmptySchedule = errors.New("no day schedules to merge")

// DaySchedule is every movie scraped for one calendar day at one theater.
type DaySchedule struct {
	Day    time.Time
	Movies []*Movie
}

// NewDaySchedule returns an empty schedule for the given day (midnight in
// the theater's zone).
func NewDaySchedule(day time.Time) *DaySchedule {
	return &DaySchedule{Day: day}
}

// AddRawMovie parses the raw runtime, appends the movie and returns it so
// the caller can attach showings.
func (d *DaySchedule) AddRawMovie(name, rawRuntime string) (*Movie, error) {
	m, err := NewMovie(name, rawRuntime)
	if err != nil {
		return nil, err
	}
	d.Movies = append(d.Movies, m)
	return m, nil
}

// Filter returns a new DaySchedule holding only the movies and showings
// that pass f.  Movies left with zero showings are dropped.  The receiver
// is never modified; callers must not assume identity is preserved.
func (d *DaySchedule) Filter(f Filter) *DaySchedule {
	out := NewDaySchedule(d.Day)
	for _, m := range d.Movies {
		if fm := m.Filter(f); fm.Len() > 0 {
			out.Movies = append(out.Movies, fm)
		}
	}
	return out
}

// Len is the total showing count across all movies.
func (d *DaySchedule) Len() int {
	n := 0
	for _, m := range d.Movies {
		n += m.Len()
	}
	return n
}

// FullSchedule is the merge of one or more day schedules.  Start and End
// are the min and max of the constituent days.  Movies keep the order of
// first appearance.
type FullSchedule struct {
	Start  time.Time
	End    time.Time
	Movies []*Movie
}

// Merge folds per-day schedules into one multi-day schedule.  Titles merge
// by exact match: the first occurrence of a title claims the slot and
// later days' showings are appended in input order, so re-merging an
// already-merged schedule changes nothing.  Each fold step builds a fresh
// accumulator movie; input schedules are never aliased or mutated.  The
// input need not be date-ordered.
func Merge(days []*DaySchedule) (*FullSchedule, error) {
	if len(days) == 0 {
		return nil, ErrEmptySchedule
	}

	index := make(map[string]int)
	var merged []*Movie
	minDay, maxDay := days[0].Day, days[0].Day

	for _, day := range days {
		if day.Day.Before(minDay) {
			minDay = day.Day
		}
		if day.Day.After(maxDay) {
			maxDay = day.Day
		}
		for _, m := range day.Movies {
			if i, ok := index[m.Name]; ok {
				acc := merged[i]
				next := &Movie{Name: acc.Name, RuntimeMin: acc.RuntimeMin}
				next.Showings = append(append([]Showing{}, acc.Showings...), m.Showings...)
				merged[i] = next
				continue
			}
			index[m.Name] = len(merged)
			cp := &Movie{Name: m.Name, RuntimeMin: m.RuntimeMin}
			cp.Showings = append([]Showing{}, m.Showings...)
			merged = append(merged, cp)
		}
	}

	return &FullSchedule{Start: minDay, End: maxDay, Movies: merged}, nil
}

// Len is the total showing count across all movies.
func (fs *FullSchedule) Len() int {
	n := 0
	for _, m := range fs.Movies {
		n += m.Len()
	}
	return n
}

// SortedMovies returns the movies ordered by title for output.
func (fs *FullSchedule) SortedMovies() []*Movie {
	out := make([]*Movie, len(fs.Movies))
	copy(out, fs.Movies)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Flatten turns the schedule into persisted-row form for the given
// theater, sorted by start time within each movie's merge order.
func (fs *FullSchedule) Flatten(theater string) []model.ShowtimeRow {
	var rows []model.ShowtimeRow
	for _, m := range fs.Movies {
		for _, s := range m.SortedShowings() {
			rows = append(rows, model.ShowtimeRow{
				Theater:       theater,
				Title:         m.Name,
				Format:        s.Format,
				IsOpenCaption: s.IsOpenCaption,
				NoAlist:       s.NoAlist,
				StartTime:     s.Start,
				EndTime:       s.End,
			})
		}
	}
	return rows
}
