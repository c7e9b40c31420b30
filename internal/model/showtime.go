// Package model defines the persisted showtime row types shared by the
// repositories, the reconciliation engine and the HTTP handlers.  A row is
// identified by the (theater, title, format, is_open_caption, no_alist,
// start_time) tuple; end_time is runtime metadata and not part of the
// identity.
package model

import (
	"fmt"
	"time"
)

// ShowtimeRow is one screening as stored in the showtimes table.  Times are
// timezone-aware; the database keeps them in UTC.
type ShowtimeRow struct {
	Theater       string    `json:"theater"`
	Title         string    `json:"title"`
	Format        string    `json:"format"`
	IsOpenCaption bool      `json:"is_open_caption"`
	NoAlist       bool      `json:"no_alist"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
}

// DeletionRecord is the tombstone written when a showtime disappears from a
// fresh scrape while its start is still in the future.
type DeletionRecord struct {
	ShowtimeRow
	DeleteTime time.Time `json:"delete_time"`
}

// RowKey is a comparable form of a row, usable as a map key.  Start and End
// are Unix seconds so that rows loaded in different zones still compare
// equal when they name the same instant.
type RowKey struct {
	Theater       string
	Title         string
	Format        string
	IsOpenCaption bool
	NoAlist       bool
	Start         int64
	End           int64
}

// Key returns the full-equality key of the row, end time included.
func (r ShowtimeRow) Key() RowKey {
	return RowKey{
		Theater:       r.Theater,
		Title:         r.Title,
		Format:        r.Format,
		IsOpenCaption: r.IsOpenCaption,
		NoAlist:       r.NoAlist,
		Start:         r.StartTime.Unix(),
		End:           r.EndTime.Unix(),
	}
}

// IdentityKey returns the identity key of the row with the end time zeroed.
// Two rows with the same identity but different end times describe the same
// screening with corrected runtime metadata.
func (r ShowtimeRow) IdentityKey() RowKey {
	k := r.Key()
	k.End = 0
	return k
}

// Validate reports ErrDataIntegrity when a required field is missing.  A row
// that cannot participate in comparison must fail the whole pass rather than
// be skipped, or deletion detection would silently corrupt.
func (r ShowtimeRow) Validate() error {
	switch {
	case r.Theater == "":
		return fmt.Errorf("%w: showtime row is missing its theater", ErrDataIntegrity)
	case r.Title == "":
		return fmt.Errorf("%w: showtime row is missing its title", ErrDataIntegrity)
	case r.StartTime.IsZero():
		return fmt.Errorf("%w: showtime row %q has no start time", ErrDataIntegrity, r.Title)
	case r.EndTime.IsZero():
		return fmt.Errorf("%w: showtime row %q has no end time", ErrDataIntegrity, r.Title)
	}
	return nil
}

// IsPlaceholder reports whether the row carries no runtime information, a
// state the scrape source uses before a movie's runtime is published.
func (r ShowtimeRow) IsPlaceholder() bool {
	return r.StartTime.Equal(r.EndTime)
}
