package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iliyamo/movie-times/internal/model"
	"github.com/iliyamo/movie-times/internal/render"
	"github.com/iliyamo/movie-times/internal/schedule"
)

// EmailSchedules sends one message carrying a plaintext and an ICS
// attachment per theater.  theaters preserves the order attachments
// appear in; schedules maps theater name to its merged schedule.
func (m *Mailer) EmailSchedules(ctx context.Context, theaters []string, schedules map[string]*schedule.FullSchedule, first, last time.Time) error {
	var attachments []Attachment
	for _, theater := range theaters {
		fs := schedules[theater]
		if fs == nil {
			continue
		}
		text := render.FullScheduleText(fs, false, true)
		attachments = append(attachments, NewAttachment([]byte(text), theater+".txt"))
	}
	for _, theater := range theaters {
		fs := schedules[theater]
		if fs == nil {
			continue
		}
		attachments = append(attachments, NewAttachment([]byte(render.CalendarICS(fs, theater)), theater+".ics"))
	}

	subject := "Movie Schedules " + first.Format("2006-01-02")
	if !first.Equal(last) {
		subject += " to " + last.Format("2006-01-02")
	}
	return m.Send(ctx, subject, "Schedules attached", attachments)
}

// EmailDeletionReport sends the de-noised deletion records as a JSON
// attachment.
func (m *Mailer) EmailDeletionReport(ctx context.Context, records []model.DeletionRecord) error {
	body, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal deletion report: %w", err)
	}
	attachment := NewAttachment(body, "deleted.json")
	return m.Send(ctx, "Schedule Updater Deletion Report", "Deletion report attached", []Attachment{attachment})
}

// EmailError reports an update failure so a broken scrape doesn't go
// unnoticed until the next schedule email is missed.
func (m *Mailer) EmailError(ctx context.Context, theater string, err error) error {
	text := fmt.Sprintf("Updating %s failed:\n\n%v", theater, err)
	return m.Send(ctx, "Schedule Updater encountered an error", text, nil)
}
