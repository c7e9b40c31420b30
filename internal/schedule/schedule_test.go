package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/movie-times/internal/model"
)

func TestFormatFromAttributes(t *testing.T) {
	cases := []struct {
		name  string
		attrs []string
		want  string
	}{
		{"dolby", []string{"Dolby Cinema @ AMC"}, "Dolby"},
		{"imax", []string{"IMAX"}, "IMAX"},
		{"reald", []string{"RealD 3D"}, "3D"},
		{"digital 3d", []string{"Digital 3D"}, "3D"},
		{"laser", []string{"Laser at AMC"}, "Standard"},
		{"standard", []string{"Standard Format"}, "Standard"},
		// Dolby outranks IMAX regardless of tag order.
		{"dolby beats imax", []string{"IMAX", "Dolby Cinema @ AMC"}, "Dolby"},
		// A caption tag does not displace the format tag.
		{"imax with caption", []string{"IMAX", "Open Caption"}, "IMAX"},
		// No rule matches: the first raw tag passes through verbatim.
		{"unknown", []string{"70mm Film", "Reserved Seating"}, "70mm Film"},
		{"empty", nil, ""},
	}
	for _, c := range cases {
		if got := FormatFromAttributes(c.attrs); got != c.want {
			t.Errorf("%s: FormatFromAttributes(%v) = %q, want %q", c.name, c.attrs, got, c.want)
		}
	}
}

func TestParseRuntime(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"2 hr 35 min", 155},
		{"1 hr", 60},
		{"45 min", 45},
		{"95", 95},
		{"0", 0},
	}
	for _, c := range cases {
		got, err := ParseRuntime(c.in)
		if err != nil {
			t.Errorf("ParseRuntime(%q) error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseRuntime(%q) = %d, want %d", c.in, got, c.want)
		}
	}

	for _, in := range []string{"hr min", "two hours", ""} {
		if _, err := ParseRuntime(in); !errors.Is(err, model.ErrDataIntegrity) {
			t.Errorf("ParseRuntime(%q) error = %v, want ErrDataIntegrity", in, err)
		}
	}
}

func TestNewShowing(t *testing.T) {
	d := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)

	s, err := NewShowing([]string{"IMAX", "Open Caption", "Spanish Language", "No Passes"}, "7:30p", 155, d, time.UTC)
	if err != nil {
		t.Fatalf("NewShowing error: %v", err)
	}
	if s.Format != "IMAX" {
		t.Errorf("Format = %q, want IMAX", s.Format)
	}
	if !s.IsOpenCaption {
		t.Error("IsOpenCaption = false, want true")
	}
	if !s.NoAlist {
		t.Error("NoAlist = false, want true")
	}
	if len(s.Languages) != 1 || s.Languages[0] != "spanish" {
		t.Errorf("Languages = %v, want [spanish]", s.Languages)
	}
	wantStart := time.Date(2025, time.July, 4, 19, 30, 0, 0, time.UTC)
	if !s.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", s.Start, wantStart)
	}
	if !s.End.Equal(wantStart.Add(155 * time.Minute)) {
		t.Errorf("End = %v, want start plus runtime", s.End)
	}
	if s.IsPlaceholder() {
		t.Error("IsPlaceholder = true for a showing with a runtime")
	}
}

func TestNewShowingPlaceholder(t *testing.T) {
	d := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)
	s, err := NewShowing([]string{"Standard Format"}, "11:00a", 0, d, time.UTC)
	if err != nil {
		t.Fatalf("NewShowing error: %v", err)
	}
	if !s.IsPlaceholder() {
		t.Error("zero-runtime showing should be a placeholder")
	}
}

func TestNewShowingBadTime(t *testing.T) {
	d := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)
	if _, err := NewShowing(nil, "late", 100, d, time.UTC); !errors.Is(err, model.ErrDataIntegrity) {
		t.Errorf("NewShowing(late) error = %v, want ErrDataIntegrity", err)
	}
}

// buildDay assembles a DaySchedule with one movie and the given raw
// showtimes.
func buildDay(t *testing.T, d time.Time, name, runtime string, times ...string) *DaySchedule {
	t.Helper()
	sched := NewDaySchedule(d)
	m, err := sched.AddRawMovie(name, runtime)
	if err != nil {
		t.Fatalf("AddRawMovie(%s): %v", name, err)
	}
	if err := m.AddRawShowings([]string{"Standard Format"}, times, d, time.UTC); err != nil {
		t.Fatalf("AddRawShowings(%s): %v", name, err)
	}
	return sched
}

func TestMerge(t *testing.T) {
	d1 := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)

	day1 := buildDay(t, d1, "Dune", "2 hr 35 min", "4:00p", "7:30p")
	m2, err := day1.AddRawMovie("Wicked", "2 hr 40 min")
	if err != nil {
		t.Fatal(err)
	}
	if err := m2.AddRawShowings([]string{"IMAX"}, []string{"6:00p"}, d1, time.UTC); err != nil {
		t.Fatal(err)
	}
	day2 := buildDay(t, d2, "Dune", "2 hr 35 min", "1:00p")

	full, err := Merge([]*DaySchedule{day1, day2})
	if err != nil {
		t.Fatalf("Merge error: %v", err)
	}
	if !full.Start.Equal(d1) || !full.End.Equal(d2) {
		t.Errorf("range = [%v, %v], want [%v, %v]", full.Start, full.End, d1, d2)
	}
	if len(full.Movies) != 2 {
		t.Fatalf("movie count = %d, want 2", len(full.Movies))
	}
	// First appearance claims the slot.
	if full.Movies[0].Name != "Dune" || full.Movies[1].Name != "Wicked" {
		t.Errorf("movie order = %s, %s; want Dune, Wicked", full.Movies[0].Name, full.Movies[1].Name)
	}
	if n := full.Movies[0].Len(); n != 3 {
		t.Errorf("Dune showings = %d, want 3", n)
	}
	if full.Len() != 4 {
		t.Errorf("total showings = %d, want 4", full.Len())
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	d1 := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	day1 := buildDay(t, d1, "Dune", "155", "4:00p")
	day2 := buildDay(t, d2, "Dune", "155", "1:00p")

	if _, err := Merge([]*DaySchedule{day1, day2}); err != nil {
		t.Fatal(err)
	}
	if day1.Movies[0].Len() != 1 || day2.Movies[0].Len() != 1 {
		t.Error("merge mutated an input day schedule")
	}
}

func TestMergeEmpty(t *testing.T) {
	if _, err := Merge(nil); !errors.Is(err, ErrEmptySchedule) {
		t.Errorf("Merge(nil) error = %v, want ErrEmptySchedule", err)
	}
}

func TestDayScheduleFilterDropsEmptyMovies(t *testing.T) {
	d := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)
	sched := buildDay(t, d, "Dune", "155", "11:00a", "7:30p")

	earliest := ClockTime{17, 0}
	out := sched.Filter(NewFilter(&earliest, nil, nil, nil, nil, nil))
	if len(out.Movies) != 1 || out.Movies[0].Len() != 1 {
		t.Fatalf("filtered schedule = %d movies / %d showings, want 1 / 1", len(out.Movies), out.Len())
	}

	// A bound past every showing empties the movie and drops it.
	late := ClockTime{22, 0}
	out = sched.Filter(NewFilter(&late, nil, nil, nil, nil, nil))
	if len(out.Movies) != 0 {
		t.Errorf("movie with no surviving showings kept: %d movies", len(out.Movies))
	}

	// The receiver is untouched.
	if sched.Movies[0].Len() != 2 {
		t.Error("filter mutated the receiver")
	}
}

func TestFlatten(t *testing.T) {
	d := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)
	sched := buildDay(t, d, "Dune", "155", "7:30p", "4:00p")
	full, err := Merge([]*DaySchedule{sched})
	if err != nil {
		t.Fatal(err)
	}

	rows := full.Flatten("AMC Boston Common 19")
	if len(rows) != 2 {
		t.Fatalf("row count = %d, want 2", len(rows))
	}
	// Rows come out sorted by start within the movie.
	if !rows[0].StartTime.Before(rows[1].StartTime) {
		t.Error("rows not sorted by start time")
	}
	r := rows[0]
	if r.Theater != "AMC Boston Common 19" || r.Title != "Dune" || r.Format != "Standard" {
		t.Errorf("row = %+v, want theater/title/format populated", r)
	}
	if err := r.Validate(); err != nil {
		t.Errorf("flattened row invalid: %v", err)
	}
}
