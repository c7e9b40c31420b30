// Package render turns schedules into the plaintext and ICS forms the
// CLI and the mailer ship to users.  The data model itself stays
// presentation-free.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iliyamo/movie-times/internal/schedule"
)

// ShowingLine renders one showing: start (and date when the schedule
// spans several days), end when the runtime is known, format, and the
// caption/ticketing annotations.
func ShowingLine(s schedule.Showing, showDate bool) string {
	var b strings.Builder
	if showDate {
		b.WriteString(s.Start.Format("Mon January 02"))
		b.WriteByte(' ')
	}
	b.WriteString(s.Start.Format("15:04"))
	if !s.Start.Equal(s.End) {
		b.WriteString(" - ")
		b.WriteString(s.End.Format("15:04"))
	}
	fmt.Fprintf(&b, " (%s)", s.Format)
	if len(s.Languages) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(s.Languages, ", "))
	}
	if s.IsOpenCaption {
		b.WriteString(" (Open caption)")
	}
	if s.NoAlist {
		b.WriteString(" (No A-List?)")
	}
	return b.String()
}

// MovieBlock renders one movie.  nameOnly prints just the title.
// dateOnly condenses the block to the title plus the movie's date span
// when it doesn't cover the whole schedule window.
func MovieBlock(m *schedule.Movie, nameOnly, dateOnly bool, scheduleStart, scheduleEnd string) string {
	if nameOnly {
		return m.Name
	}
	if dateOnly {
		out := m.Name
		if scheduleStart != scheduleEnd && m.Len() > 0 {
			first := m.First().Format("2006-01-02")
			last := m.Last().Format("2006-01-02")
			if first != scheduleStart || last != scheduleEnd {
				firstStr := m.First().Format("Mon, January 02")
				lastStr := m.Last().Format("Mon, January 02")
				if firstStr == lastStr {
					out += fmt.Sprintf(" (%s)", firstStr)
				} else {
					out += fmt.Sprintf(" (%s to %s)", firstStr, lastStr)
				}
			}
		}
		return out
	}

	multiDay := scheduleStart != scheduleEnd
	lines := []string{m.Name}
	for _, s := range m.SortedShowings() {
		lines = append(lines, ShowingLine(s, multiDay))
	}
	return strings.Join(lines, "\n")
}

// DayScheduleText renders a single day under a dated separator.
func DayScheduleText(d *schedule.DaySchedule, nameOnly bool) string {
	header := d.Day.Format("Mon, January 02, 2006")
	day := d.Day.Format("2006-01-02")

	sorted := make([]*schedule.Movie, len(d.Movies))
	copy(sorted, d.Movies)
	sortMoviesByName(sorted)

	blocks := make([]string, 0, len(sorted))
	for _, m := range sorted {
		blocks = append(blocks, MovieBlock(m, nameOnly, false, day, day))
	}
	return separator(header) + strings.Join(blocks, "\n")
}

// FullScheduleText renders a merged schedule under a ranged separator.
func FullScheduleText(fs *schedule.FullSchedule, nameOnly, dateOnly bool) string {
	header := fs.Start.Format("Mon, January 02, 2006")
	if !fs.Start.Equal(fs.End) {
		header += " - " + fs.End.Format("Mon, January 02, 2006")
	}
	start := fs.Start.Format("2006-01-02")
	end := fs.End.Format("2006-01-02")

	blocks := make([]string, 0, len(fs.Movies))
	for _, m := range fs.SortedMovies() {
		blocks = append(blocks, MovieBlock(m, nameOnly, dateOnly, start, end))
	}
	return separator(header) + strings.Join(blocks, "\n")
}

func separator(header string) string {
	line := strings.Repeat("-", len(header)+2)
	return fmt.Sprintf("%s\n %s\n%s\n", line, header, line)
}

func sortMoviesByName(movies []*schedule.Movie) {
	sort.Slice(movies, func(i, j int) bool { return movies[i].Name < movies[j].Name })
}
