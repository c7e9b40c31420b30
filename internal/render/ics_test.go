package render

import (
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/movie-times/internal/schedule"
)

func TestCalendarICS(t *testing.T) {
	d := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)
	fs := &schedule.FullSchedule{
		Start: d,
		End:   d,
		Movies: []*schedule.Movie{
			{
				Name:       "Dune",
				RuntimeMin: 125,
				Showings: []schedule.Showing{
					showing(t, d, "7:30p", 125),
					showing(t, d, "4:00p", 0), // placeholder
				},
			},
		},
	}

	out := CalendarICS(fs, "AMC Boston Common")
	if !strings.Contains(out, "BEGIN:VCALENDAR") || !strings.Contains(out, "END:VCALENDAR") {
		t.Fatalf("not a calendar:\n%s", out)
	}
	if got := strings.Count(out, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("event count = %d, want 2", got)
	}
	if !strings.Contains(out, "SUMMARY:Dune") {
		t.Error("event summary missing")
	}
	if !strings.Contains(out, "LOCATION:AMC Boston Common") {
		t.Error("event location missing")
	}
	// The placeholder gets a nonzero duration: 16:00 plus the pad.
	if !strings.Contains(out, "DTEND:20250704T160500Z") {
		t.Errorf("placeholder end not padded:\n%s", out)
	}
	if !strings.Contains(out, "UID:amc-boston-common-dune-") {
		t.Error("uid not slugged from theater and title")
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"AMC Boston Common", "amc-boston-common"},
		{"O'Neil Epping", "oneil-epping"},
		{"Dune: Part Two", "dune-part-two"},
	}
	for _, c := range cases {
		if got := slugify(c.in); got != c.want {
			t.Errorf("slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
