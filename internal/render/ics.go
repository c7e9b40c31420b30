package render

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/iliyamo/movie-times/internal/schedule"
)

// placeholderDuration pads zero-duration showings so calendar clients
// render them as events rather than instants.
const placeholderDuration = 5 * time.Minute

// CalendarICS serializes a merged schedule as one VCALENDAR with a VEVENT
// per showing.
func CalendarICS(fs *schedule.FullSchedule, theater string) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//movie-times//showtimes//EN")

	for _, m := range fs.SortedMovies() {
		for _, s := range m.SortedShowings() {
			uid := fmt.Sprintf("%s-%s-%d@movie-times", slugify(theater), slugify(m.Name), s.Start.Unix())
			ev := cal.AddEvent(uid)
			ev.SetSummary(m.Name)
			ev.SetLocation(theater)
			ev.SetStartAt(s.Start)
			end := s.End
			if s.IsPlaceholder() {
				end = s.Start.Add(placeholderDuration)
			}
			ev.SetEndAt(end)
			if s.Format != "" {
				ev.SetDescription(s.Format)
			}
		}
	}
	return cal.Serialize()
}

func slugify(s string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(s) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteRune(c)
		case c == ' ' || c == '-' || c == '_':
			b.WriteByte('-')
		}
	}
	return b.String()
}
