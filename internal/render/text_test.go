package render

import (
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/movie-times/internal/schedule"
)

func showing(t *testing.T, day time.Time, raw string, runtimeMin int, attrs ...string) schedule.Showing {
	t.Helper()
	if attrs == nil {
		attrs = []string{"Standard Format"}
	}
	s, err := schedule.NewShowing(attrs, raw, runtimeMin, day, time.UTC)
	if err != nil {
		t.Fatalf("NewShowing(%q): %v", raw, err)
	}
	return s
}

func TestShowingLine(t *testing.T) {
	day := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)

	s := showing(t, day, "7:30p", 125)
	if got, want := ShowingLine(s, false), "19:30 - 21:35 (Standard)"; got != want {
		t.Errorf("ShowingLine = %q, want %q", got, want)
	}

	if got, want := ShowingLine(s, true), "Fri July 04 19:30 - 21:35 (Standard)"; got != want {
		t.Errorf("ShowingLine with date = %q, want %q", got, want)
	}

	// A placeholder has no end time to print.
	p := showing(t, day, "7:30p", 0)
	if got, want := ShowingLine(p, false), "19:30 (Standard)"; got != want {
		t.Errorf("placeholder line = %q, want %q", got, want)
	}

	annotated := showing(t, day, "4:00p", 100, "IMAX", "Open Caption", "Spanish Language", "No Passes")
	line := ShowingLine(annotated, false)
	for _, want := range []string{"(IMAX)", "(spanish)", "(Open caption)", "(No A-List?)"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}

func TestMovieBlock(t *testing.T) {
	day := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)
	m := &schedule.Movie{
		Name:       "Dune",
		RuntimeMin: 125,
		Showings: []schedule.Showing{
			showing(t, day, "7:30p", 125),
			showing(t, day, "4:00p", 125),
		},
	}

	if got := MovieBlock(m, true, false, "2025-07-04", "2025-07-04"); got != "Dune" {
		t.Errorf("name-only block = %q, want just the title", got)
	}

	block := MovieBlock(m, false, false, "2025-07-04", "2025-07-04")
	lines := strings.Split(block, "\n")
	if len(lines) != 3 || lines[0] != "Dune" {
		t.Fatalf("block = %q, want title plus two showings", block)
	}
	// Showings print in start order regardless of stored order.
	if !strings.HasPrefix(lines[1], "16:00") || !strings.HasPrefix(lines[2], "19:30") {
		t.Errorf("showing order in block = %q", block)
	}
}

func TestMovieBlockDateOnly(t *testing.T) {
	d1 := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)
	short := &schedule.Movie{
		Name:     "Limited Run",
		Showings: []schedule.Showing{showing(t, d1, "7:00p", 0)},
	}

	// Movie plays a strict subset of the window: the span is shown.
	got := MovieBlock(short, false, true, "2025-07-04", "2025-07-06")
	if want := "Limited Run (Fri, July 04)"; got != want {
		t.Errorf("date-only block = %q, want %q", got, want)
	}

	// Movie covers the whole window: no span.
	d2 := time.Date(2025, time.July, 6, 0, 0, 0, 0, time.UTC)
	full := &schedule.Movie{
		Name: "Wide Release",
		Showings: []schedule.Showing{
			showing(t, d1, "7:00p", 0),
			showing(t, d2, "7:00p", 0),
		},
	}
	if got := MovieBlock(full, false, true, "2025-07-04", "2025-07-06"); got != "Wide Release" {
		t.Errorf("date-only block = %q, want bare title", got)
	}
}

func TestFullScheduleText(t *testing.T) {
	d1 := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)

	day1 := schedule.NewDaySchedule(d1)
	m, err := day1.AddRawMovie("Dune", "125")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.AddRawShowings([]string{"Standard Format"}, []string{"7:30p"}, d1, time.UTC); err != nil {
		t.Fatal(err)
	}
	day2 := schedule.NewDaySchedule(d2)
	m2, err := day2.AddRawMovie("Alien", "110")
	if err != nil {
		t.Fatal(err)
	}
	if err := m2.AddRawShowings([]string{"Standard Format"}, []string{"9:00p"}, d2, time.UTC); err != nil {
		t.Fatal(err)
	}

	full, err := schedule.Merge([]*schedule.DaySchedule{day1, day2})
	if err != nil {
		t.Fatal(err)
	}

	text := FullScheduleText(full, false, false)
	if !strings.Contains(text, "Fri, July 04, 2025 - Sat, July 05, 2025") {
		t.Errorf("header missing range:\n%s", text)
	}
	// Movies print in title order, so Alien comes first despite merging
	// second.
	if strings.Index(text, "Alien") > strings.Index(text, "Dune") {
		t.Errorf("movies not sorted by title:\n%s", text)
	}
	// Multi-day schedules date every line.
	if !strings.Contains(text, "Fri July 04 19:30") {
		t.Errorf("showing line missing its date:\n%s", text)
	}
}

func TestDayScheduleText(t *testing.T) {
	d := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)
	day := schedule.NewDaySchedule(d)
	m, err := day.AddRawMovie("Dune", "125")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.AddRawShowings([]string{"Standard Format"}, []string{"7:30p"}, d, time.UTC); err != nil {
		t.Fatal(err)
	}

	text := DayScheduleText(day, false)
	if !strings.Contains(text, "Fri, July 04, 2025") {
		t.Errorf("header missing:\n%s", text)
	}
	// Single-day output leaves the date off each line.
	if !strings.Contains(text, "\n19:30 - 21:35 (Standard)") {
		t.Errorf("showing line malformed:\n%s", text)
	}
}
