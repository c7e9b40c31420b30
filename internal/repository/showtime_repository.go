// Package repository contains data access logic for the showtime tables.
// It is the persistence collaborator the reconciliation engine and the
// HTTP handlers read and write through.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/movie-times/internal/model"
)

// ShowtimeRepo manages the showtimes and deleted_showtimes tables.
type ShowtimeRepo struct {
	db *sql.DB
}

// NewShowtimeRepo constructs a ShowtimeRepo with the given DB handle.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo {
	return &ShowtimeRepo{db: db}
}

// LoadShowtimes returns every stored showtime for the theater whose start
// falls in the half-open [first, last) window, ordered by title.
func (r *ShowtimeRepo) LoadShowtimes(ctx context.Context, theater string, first, last time.Time) ([]model.ShowtimeRow, error) {
	const q = `SELECT theater, title, format, is_open_caption, no_alist, start_time, end_time
	           FROM showtimes
	           WHERE theater = ? AND start_time >= ? AND start_time < ?
	           ORDER BY title`
	rows, err := r.db.QueryContext(ctx, q, theater, first.UTC(), last.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanShowtimes(rows)
}

// LoadShowtimesByTitle is LoadShowtimes narrowed to one title.
func (r *ShowtimeRepo) LoadShowtimesByTitle(ctx context.Context, theater, title string, first, last time.Time) ([]model.ShowtimeRow, error) {
	const q = `SELECT theater, title, format, is_open_caption, no_alist, start_time, end_time
	           FROM showtimes
	           WHERE theater = ? AND title = ? AND start_time >= ? AND start_time < ?
	           ORDER BY title`
	rows, err := r.db.QueryContext(ctx, q, theater, title, first.UTC(), last.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanShowtimes(rows)
}

// StoreShowtimes inserts the rows, silently keeping any row whose identity
// tuple is already present.  All rows of one scrape share a create_time.
func (r *ShowtimeRepo) StoreShowtimes(ctx context.Context, rows []model.ShowtimeRow) error {
	const q = `INSERT IGNORE INTO showtimes
	           (theater, title, format, is_open_caption, no_alist, start_time, end_time, create_time)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	createTime := time.Now().UTC().Truncate(time.Second)
	for _, row := range rows {
		_, err := r.db.ExecContext(ctx, q,
			row.Theater, row.Title, row.Format,
			boolToInt(row.IsOpenCaption), boolToInt(row.NoAlist),
			row.StartTime.UTC(), row.EndTime.UTC(), createTime,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeleteShowtimes removes the rows from the live table and writes one
// tombstone per row actually removed.  Skipping the tombstone when the
// DELETE matched nothing makes a retried pass a no-op.  Each pass runs in
// a single transaction.
func (r *ShowtimeRepo) DeleteShowtimes(ctx context.Context, rows []model.ShowtimeRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	const del = `DELETE FROM showtimes
	             WHERE theater = ? AND title = ? AND format = ? AND is_open_caption = ? AND no_alist = ? AND start_time = ?`
	const ins = `INSERT INTO deleted_showtimes
	             (theater, title, format, is_open_caption, no_alist, start_time, end_time, delete_time)
	             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	deleteTime := time.Now().UTC().Truncate(time.Second)
	for _, row := range rows {
		res, execErr := tx.ExecContext(ctx, del,
			row.Theater, row.Title, row.Format,
			boolToInt(row.IsOpenCaption), boolToInt(row.NoAlist), row.StartTime.UTC(),
		)
		if execErr != nil {
			err = execErr
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			continue // already deleted in a previous pass
		}
		if _, execErr := tx.ExecContext(ctx, ins,
			row.Theater, row.Title, row.Format,
			boolToInt(row.IsOpenCaption), boolToInt(row.NoAlist),
			row.StartTime.UTC(), row.EndTime.UTC(), deleteTime,
		); execErr != nil {
			err = execErr
			return err
		}
	}
	return err
}

// LoadDeletedShowtimes returns the tombstones stamped in the half-open
// [first, last) window, ordered by title.
func (r *ShowtimeRepo) LoadDeletedShowtimes(ctx context.Context, first, last time.Time) ([]model.DeletionRecord, error) {
	const q = `SELECT theater, title, format, is_open_caption, no_alist, start_time, end_time, delete_time
	           FROM deleted_showtimes
	           WHERE delete_time >= ? AND delete_time < ?
	           ORDER BY title`
	rows, err := r.db.QueryContext(ctx, q, first.UTC(), last.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.DeletionRecord
	for rows.Next() {
		var rec model.DeletionRecord
		var oc, na int
		if err := rows.Scan(&rec.Theater, &rec.Title, &rec.Format, &oc, &na,
			&rec.StartTime, &rec.EndTime, &rec.DeleteTime); err != nil {
			return nil, err
		}
		rec.IsOpenCaption = oc == 1
		rec.NoAlist = na == 1
		records = append(records, rec)
	}
	return records, rows.Err()
}

// TheatersLastUpdate reports the newest create_time per theater, used to
// surface staleness of each theater's data.
func (r *ShowtimeRepo) TheatersLastUpdate(ctx context.Context) (map[string]time.Time, error) {
	const q = `SELECT theater, MAX(create_time) FROM showtimes GROUP BY theater`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var theater string
		var last time.Time
		if err := rows.Scan(&theater, &last); err != nil {
			return nil, err
		}
		out[theater] = last
	}
	return out, rows.Err()
}

func scanShowtimes(rows *sql.Rows) ([]model.ShowtimeRow, error) {
	var out []model.ShowtimeRow
	for rows.Next() {
		var row model.ShowtimeRow
		var oc, na int
		if err := rows.Scan(&row.Theater, &row.Title, &row.Format, &oc, &na,
			&row.StartTime, &row.EndTime); err != nil {
			return nil, err
		}
		row.IsOpenCaption = oc == 1
		row.NoAlist = na == 1
		out = append(out, row)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
