package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/movie-times/internal/model"
)

// PlannerRepo manages the schedule table: the user's personal picks
// copied out of the full showtime listing.
type PlannerRepo struct {
	db *sql.DB
}

// NewPlannerRepo constructs a PlannerRepo with the given DB handle.
func NewPlannerRepo(db *sql.DB) *PlannerRepo {
	return &PlannerRepo{db: db}
}

// Load returns the planned showtimes whose start falls in the half-open
// [first, last) window, ordered by start time.
func (r *PlannerRepo) Load(ctx context.Context, first, last time.Time) ([]model.ShowtimeRow, error) {
	const q = `SELECT theater, title, format, is_open_caption, no_alist, start_time, end_time
	           FROM schedule
	           WHERE start_time >= ? AND start_time < ?
	           ORDER BY start_time`
	rows, err := r.db.QueryContext(ctx, q, first.UTC(), last.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanShowtimes(rows)
}

// Add copies one showtime into the plan.  Adding a showtime already
// planned is a no-op.
func (r *PlannerRepo) Add(ctx context.Context, row model.ShowtimeRow) error {
	const q = `INSERT IGNORE INTO schedule
	           (theater, title, format, is_open_caption, no_alist, start_time, end_time, create_time)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		row.Theater, row.Title, row.Format,
		boolToInt(row.IsOpenCaption), boolToInt(row.NoAlist),
		row.StartTime.UTC(), row.EndTime.UTC(), time.Now().UTC().Truncate(time.Second),
	)
	return err
}

// Remove drops one planned showtime by its identity tuple.
func (r *PlannerRepo) Remove(ctx context.Context, row model.ShowtimeRow) error {
	const q = `DELETE FROM schedule
	           WHERE theater = ? AND title = ? AND format = ? AND is_open_caption = ? AND no_alist = ? AND start_time = ?`
	_, err := r.db.ExecContext(ctx, q,
		row.Theater, row.Title, row.Format,
		boolToInt(row.IsOpenCaption), boolToInt(row.NoAlist), row.StartTime.UTC(),
	)
	return err
}

// Clear drops every planned showtime whose start falls in the half-open
// [first, last) window.
func (r *PlannerRepo) Clear(ctx context.Context, first, last time.Time) error {
	const q = `DELETE FROM schedule WHERE start_time >= ? AND start_time < ?`
	_, err := r.db.ExecContext(ctx, q, first.UTC(), last.UTC())
	return err
}
