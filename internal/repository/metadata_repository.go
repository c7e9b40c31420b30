package repository

import (
	"context"
	"database/sql"
)

// MetadataRepo manages per-title metadata, currently just visibility on
// the viewer surface.
type MetadataRepo struct {
	db *sql.DB
}

// NewMetadataRepo constructs a MetadataRepo with the given DB handle.
func NewMetadataRepo(db *sql.DB) *MetadataRepo {
	return &MetadataRepo{db: db}
}

// LoadVisibility maps every known title to whether it should be shown.
// Titles without a row are visible by default; callers treat absence as
// true.
func (r *MetadataRepo) LoadVisibility(ctx context.Context) (map[string]bool, error) {
	const q = `SELECT title, hidden FROM moviemetadata`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var title string
		var hidden int
		if err := rows.Scan(&title, &hidden); err != nil {
			return nil, err
		}
		out[title] = hidden == 0
	}
	return out, rows.Err()
}

// HideMovie marks a title hidden, creating its metadata row if needed.
func (r *MetadataRepo) HideMovie(ctx context.Context, title string) error {
	const q = `INSERT INTO moviemetadata (title, hidden) VALUES (?, 1)
	           ON DUPLICATE KEY UPDATE hidden = 1`
	_, err := r.db.ExecContext(ctx, q, title)
	return err
}

// ShowMovie clears the hidden flag.  A title with no metadata row is
// already visible, so no row is created.
func (r *MetadataRepo) ShowMovie(ctx context.Context, title string) error {
	const q = `UPDATE moviemetadata SET hidden = 0 WHERE title = ?`
	_, err := r.db.ExecContext(ctx, q, title)
	return err
}
