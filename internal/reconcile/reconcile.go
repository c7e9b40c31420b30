// Package reconcile compares freshly scraped showtimes against the
// persisted snapshot for the same theater and window to detect true
// removals.  A showing that was persisted, still starts in the future, and
// is absent from the fresh scrape has been cancelled; it is tombstoned and
// removed from the live table.
package reconcile

import (
	"context"
	"sort"
	"time"

	"github.com/iliyamo/movie-times/internal/model"
)

// Store is the persistence collaborator the engine reads and writes
// through.  DeleteShowtimes must be idempotent: re-deleting an already
// deleted row is a no-op, which makes a retried pass safe.
type Store interface {
	LoadShowtimes(ctx context.Context, theater string, first, last time.Time) ([]model.ShowtimeRow, error)
	DeleteShowtimes(ctx context.Context, rows []model.ShowtimeRow) error
	LoadDeletedShowtimes(ctx context.Context, first, last time.Time) ([]model.DeletionRecord, error)
}

// Engine runs reconciliation passes.  One pass per (theater, window) pair
// at a time: the caller serializes passes for the same theater, typically
// by running one scheduled job per theater to completion.
type Engine struct {
	store Store
	now   func() time.Time
}

// New returns an engine on the given store.
func New(store Store) *Engine {
	return NewAt(store, time.Now)
}

// NewAt is New with an explicit clock for tests.
func NewAt(store Store, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{store: store, now: now}
}

// Reconcile loads the persisted rows for the theater over the inclusive
// [windowStart, windowEnd] day window, marks every future row that is
// absent from detected (by full field equality), tombstones and removes
// the marked rows, and returns them.  loc is the theater's zone; "future"
// means the row starts strictly after now in that zone.
//
// A malformed row on either side fails the whole pass: a dropped
// comparison row would corrupt deletion detection.
func (e *Engine) Reconcile(ctx context.Context, theater string, loc *time.Location, windowStart, windowEnd time.Time, detected []model.ShowtimeRow) ([]model.ShowtimeRow, error) {
	now := e.now().In(loc)

	detectedKeys := make(map[model.RowKey]struct{}, len(detected))
	for _, row := range detected {
		if err := row.Validate(); err != nil {
			return nil, err
		}
		detectedKeys[row.Key()] = struct{}{}
	}

	// The window is inclusive of its last day; the store query is not.
	first := windowStart.In(loc)
	last := windowEnd.In(loc).AddDate(0, 0, 1)

	persisted, err := e.store.LoadShowtimes(ctx, theater, first, last)
	if err != nil {
		return nil, err
	}

	var deleted []model.ShowtimeRow
	for _, row := range persisted {
		if err := row.Validate(); err != nil {
			return nil, err
		}
		if !row.StartTime.After(now) {
			continue
		}
		if _, ok := detectedKeys[row.Key()]; !ok {
			deleted = append(deleted, row)
		}
	}

	if len(deleted) > 0 {
		if err := e.store.DeleteShowtimes(ctx, deleted); err != nil {
			return nil, err
		}
	}
	return deleted, nil
}

// TrueDeletionFilter drops the deletion records that are runtime-metadata
// corrections rather than cancellations.  The scrape source sometimes
// re-inserts a placeholder showing (start == end) with a real end time on
// a later pass; that shows up as one deletion plus one addition.  A
// zero-duration record whose identity, end time ignored, still appears
// among the current showtimes is therefore noise.
func TrueDeletionFilter(deleted []model.DeletionRecord, current []model.ShowtimeRow) []model.DeletionRecord {
	currentIdentity := make(map[model.RowKey]struct{}, len(current))
	for _, row := range current {
		currentIdentity[row.IdentityKey()] = struct{}{}
	}

	var kept []model.DeletionRecord
	for _, rec := range deleted {
		if rec.IsPlaceholder() {
			if _, ok := currentIdentity[rec.IdentityKey()]; ok {
				continue
			}
		}
		kept = append(kept, rec)
	}
	return kept
}

// DeletionReport assembles the de-noised deletion records stamped on the
// given calendar day.  day may be any instant of that day; it is
// truncated to midnight in its own location, so a report requested right
// after an update pass still covers the tombstones the pass just wrote.
// For each theater with deletions, the theater's current showtimes over
// the records' start range are reloaded and TrueDeletionFilter applied.
// Theaters are visited in name order so the report is deterministic.
func (e *Engine) DeletionReport(ctx context.Context, day time.Time) ([]model.DeletionRecord, error) {
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	eod := day.AddDate(0, 0, 1)

	records, err := e.store.LoadDeletedShowtimes(ctx, day, eod)
	if err != nil {
		return nil, err
	}

	byTheater := make(map[string][]model.DeletionRecord)
	for _, rec := range records {
		byTheater[rec.Theater] = append(byTheater[rec.Theater], rec)
	}
	theaters := make([]string, 0, len(byTheater))
	for theater := range byTheater {
		theaters = append(theaters, theater)
	}
	sort.Strings(theaters)

	var filtered []model.DeletionRecord
	for _, theater := range theaters {
		recs := byTheater[theater]
		first, last := startRange(recs, day.Location())
		current, err := e.store.LoadShowtimes(ctx, theater, first, last)
		if err != nil {
			return nil, err
		}
		filtered = append(filtered, TrueDeletionFilter(recs, current)...)
	}
	return filtered, nil
}

// startRange returns the [midnight of the earliest start, midnight after
// the latest start) window covering every record's start time.
func startRange(records []model.DeletionRecord, loc *time.Location) (time.Time, time.Time) {
	first, last := records[0].StartTime, records[0].StartTime
	for _, rec := range records[1:] {
		if rec.StartTime.Before(first) {
			first = rec.StartTime
		}
		if rec.StartTime.After(last) {
			last = rec.StartTime
		}
	}
	first = first.In(loc)
	last = last.In(loc)
	start := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, loc)
	end := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	return start, end
}
