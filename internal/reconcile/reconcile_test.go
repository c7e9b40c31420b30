package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/movie-times/internal/model"
)

// fakeStore keeps showtimes and tombstones in memory with the same
// idempotent delete semantics as the database store.
type fakeStore struct {
	rows    []model.ShowtimeRow
	deleted []model.DeletionRecord
	now     time.Time
}

func (s *fakeStore) LoadShowtimes(_ context.Context, theater string, first, last time.Time) ([]model.ShowtimeRow, error) {
	var out []model.ShowtimeRow
	for _, row := range s.rows {
		if row.Theater != theater {
			continue
		}
		if row.StartTime.Before(first) || !row.StartTime.Before(last) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *fakeStore) DeleteShowtimes(_ context.Context, rows []model.ShowtimeRow) error {
	for _, row := range rows {
		found := false
		kept := s.rows[:0]
		for _, have := range s.rows {
			if have.Key() == row.Key() {
				found = true
				continue
			}
			kept = append(kept, have)
		}
		s.rows = kept
		// No tombstone for a row that was already gone.
		if found {
			s.deleted = append(s.deleted, model.DeletionRecord{ShowtimeRow: row, DeleteTime: s.now})
		}
	}
	return nil
}

func (s *fakeStore) LoadDeletedShowtimes(_ context.Context, first, last time.Time) ([]model.DeletionRecord, error) {
	var out []model.DeletionRecord
	for _, rec := range s.deleted {
		if rec.DeleteTime.Before(first) || !rec.DeleteTime.Before(last) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

const testTheater = "AMC Boston Common 19"

func row(title string, start time.Time, runtimeMin int) model.ShowtimeRow {
	return model.ShowtimeRow{
		Theater:   testTheater,
		Title:     title,
		Format:    "Standard",
		StartTime: start,
		EndTime:   start.Add(time.Duration(runtimeMin) * time.Minute),
	}
}

func TestReconcileDeletesVanishedFutureShowtime(t *testing.T) {
	now := time.Date(2025, time.July, 4, 12, 0, 0, 0, time.UTC)
	windowStart := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)
	windowEnd := windowStart.AddDate(0, 0, 2)

	past := row("Dune", now.Add(-2*time.Hour), 155)
	kept := row("Dune", now.Add(4*time.Hour), 155)
	vanished := row("Dune", now.Add(7*time.Hour), 155)

	store := &fakeStore{rows: []model.ShowtimeRow{past, kept, vanished}, now: now}
	engine := NewAt(store, func() time.Time { return now })

	// The fresh scrape still has the kept showing but not the vanished
	// one; the past one is naturally absent too.
	deleted, err := engine.Reconcile(context.Background(), testTheater, time.UTC, windowStart, windowEnd, []model.ShowtimeRow{kept})
	if err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}
	if len(deleted) != 1 || deleted[0].Key() != vanished.Key() {
		t.Fatalf("deleted = %+v, want just the vanished future showing", deleted)
	}

	// The past showing must survive: its absence from a fresh scrape
	// only means it already played.
	remaining, _ := store.LoadShowtimes(context.Background(), testTheater, windowStart.Add(-24*time.Hour), windowEnd.AddDate(0, 0, 1))
	if len(remaining) != 2 {
		t.Fatalf("remaining rows = %d, want 2 (past and kept)", len(remaining))
	}
	if len(store.deleted) != 1 {
		t.Fatalf("tombstones = %d, want 1", len(store.deleted))
	}

	// A rerun over the same inputs detects nothing new and writes no
	// second tombstone.
	deleted, err = engine.Reconcile(context.Background(), testTheater, time.UTC, windowStart, windowEnd, []model.ShowtimeRow{kept})
	if err != nil {
		t.Fatalf("Reconcile rerun error: %v", err)
	}
	if len(deleted) != 0 {
		t.Errorf("rerun deleted = %+v, want none", deleted)
	}
	if len(store.deleted) != 1 {
		t.Errorf("tombstones after rerun = %d, want still 1", len(store.deleted))
	}
}

func TestReconcileEndTimeChangeIsADeletion(t *testing.T) {
	now := time.Date(2025, time.July, 4, 12, 0, 0, 0, time.UTC)
	windowStart := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)

	placeholder := row("Dune", now.Add(7*time.Hour), 0)
	corrected := row("Dune", now.Add(7*time.Hour), 155)

	store := &fakeStore{rows: []model.ShowtimeRow{placeholder}, now: now}
	engine := NewAt(store, func() time.Time { return now })

	// Full field equality: the corrected row does not match the stored
	// placeholder, so the placeholder counts as deleted.
	deleted, err := engine.Reconcile(context.Background(), testTheater, time.UTC, windowStart, windowStart, []model.ShowtimeRow{corrected})
	if err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}
	if len(deleted) != 1 || deleted[0].Key() != placeholder.Key() {
		t.Fatalf("deleted = %+v, want the stored placeholder", deleted)
	}
}

func TestReconcileWindowIncludesLastDay(t *testing.T) {
	now := time.Date(2025, time.July, 4, 12, 0, 0, 0, time.UTC)
	windowStart := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)
	windowEnd := windowStart.AddDate(0, 0, 1)

	// Starts during the evening of the window's last day.
	lastDay := row("Dune", time.Date(2025, time.July, 5, 21, 0, 0, 0, time.UTC), 155)
	store := &fakeStore{rows: []model.ShowtimeRow{lastDay}, now: now}
	engine := NewAt(store, func() time.Time { return now })

	deleted, err := engine.Reconcile(context.Background(), testTheater, time.UTC, windowStart, windowEnd, nil)
	if err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}
	if len(deleted) != 1 {
		t.Fatalf("deleted = %+v, want the last-day showing", deleted)
	}
}

func TestReconcileRejectsMalformedRow(t *testing.T) {
	now := time.Date(2025, time.July, 4, 12, 0, 0, 0, time.UTC)
	windowStart := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)

	bad := model.ShowtimeRow{Theater: testTheater, Title: "", StartTime: now, EndTime: now}
	store := &fakeStore{now: now}
	engine := NewAt(store, func() time.Time { return now })

	if _, err := engine.Reconcile(context.Background(), testTheater, time.UTC, windowStart, windowStart, []model.ShowtimeRow{bad}); !errors.Is(err, model.ErrDataIntegrity) {
		t.Errorf("Reconcile error = %v, want ErrDataIntegrity", err)
	}
}

func TestTrueDeletionFilter(t *testing.T) {
	start := time.Date(2025, time.July, 4, 19, 0, 0, 0, time.UTC)

	// A placeholder was replaced by the same screening with a real end
	// time: metadata noise, not a cancellation.
	noise := model.DeletionRecord{ShowtimeRow: row("Dune", start, 0)}
	currentCorrected := row("Dune", start, 125)

	// A placeholder with no surviving counterpart is a real cancellation.
	gone := model.DeletionRecord{ShowtimeRow: row("Dune", start.Add(2*time.Hour+5*time.Minute), 0)}

	// A full row is always a real cancellation, counterpart or not.
	fullRow := model.DeletionRecord{ShowtimeRow: row("Wicked", start, 160)}

	kept := TrueDeletionFilter(
		[]model.DeletionRecord{noise, gone, fullRow},
		[]model.ShowtimeRow{currentCorrected},
	)
	if len(kept) != 2 {
		t.Fatalf("kept = %d records, want 2", len(kept))
	}
	if kept[0].Key() != gone.Key() || kept[1].Key() != fullRow.Key() {
		t.Errorf("kept = %+v, want the vanished placeholder and the full row", kept)
	}
}

func TestDeletionReport(t *testing.T) {
	now := time.Date(2025, time.July, 4, 12, 0, 0, 0, time.UTC)
	day := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)
	start := time.Date(2025, time.July, 5, 19, 0, 0, 0, time.UTC)

	corrected := row("Dune", start, 125)
	store := &fakeStore{
		rows: []model.ShowtimeRow{corrected},
		deleted: []model.DeletionRecord{
			// Noise: placeholder whose corrected twin is current.
			{ShowtimeRow: row("Dune", start, 0), DeleteTime: now},
			// Real cancellation.
			{ShowtimeRow: row("Wicked", start, 160), DeleteTime: now},
			// Tombstone from another day is out of report scope.
			{ShowtimeRow: row("Dune", start, 155), DeleteTime: now.AddDate(0, 0, -1)},
		},
		now: now,
	}
	engine := NewAt(store, func() time.Time { return now })

	records, err := engine.DeletionReport(context.Background(), day)
	if err != nil {
		t.Fatalf("DeletionReport error: %v", err)
	}
	if len(records) != 1 || records[0].Title != "Wicked" {
		t.Fatalf("report = %+v, want only the Wicked cancellation", records)
	}
}

func TestDeletionReportTruncatesDayToMidnight(t *testing.T) {
	// An update pass finishes mid-afternoon and requests the report for
	// "now".  A tombstone written three hours earlier the same day must
	// still be covered.
	now := time.Date(2025, time.July, 4, 15, 0, 0, 0, time.UTC)
	start := time.Date(2025, time.July, 6, 19, 0, 0, 0, time.UTC)

	store := &fakeStore{
		deleted: []model.DeletionRecord{
			{ShowtimeRow: row("Wicked", start, 160), DeleteTime: now.Add(-3 * time.Hour)},
		},
		now: now,
	}
	engine := NewAt(store, func() time.Time { return now })

	records, err := engine.DeletionReport(context.Background(), now)
	if err != nil {
		t.Fatalf("DeletionReport error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("report for a mid-day instant = %d records, want 1", len(records))
	}

	midnight := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)
	fromMidnight, err := engine.DeletionReport(context.Background(), midnight)
	if err != nil {
		t.Fatalf("DeletionReport error: %v", err)
	}
	if len(fromMidnight) != len(records) {
		t.Errorf("mid-day and midnight arguments disagree: %d vs %d records", len(records), len(fromMidnight))
	}
}
