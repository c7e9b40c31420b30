// Package collector orchestrates one update pass per theater: fetch the
// window's per-day schedules, merge them, persist the flattened rows, and
// reconcile against the previous snapshot.  One pass per theater runs at
// a time; the scheduler serializes them.
package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/movie-times/internal/model"
	"github.com/iliyamo/movie-times/internal/queue"
	"github.com/iliyamo/movie-times/internal/reconcile"
	"github.com/iliyamo/movie-times/internal/schedule"
	queue_publisher "github.com/iliyamo/movie-times/internal/service"
	"github.com/iliyamo/movie-times/internal/theater"
)

// ErrNoData is returned when the source had nothing for any day of the
// requested window.
var ErrNoData = errors.New("no showtime data for the requested dates")

// Fetcher loads filtered per-day schedules for a theater over an
// inclusive day window.
type Fetcher interface {
	LoadSchedulesByDay(ctx context.Context, th theater.Theater, first, last time.Time, f schedule.Filter) ([]*schedule.DaySchedule, error)
}

// Store is the persistence surface an update pass needs: everything the
// reconciliation engine reads and writes, plus storing fresh rows.
type Store interface {
	reconcile.Store
	StoreShowtimes(ctx context.Context, rows []model.ShowtimeRow) error
}

// Collector runs update passes.  AmqpURL may be empty to skip event
// publishing.
type Collector struct {
	fetcher Fetcher
	store   Store
	engine  *reconcile.Engine
	amqpURL string
}

// New wires a collector.
func New(fetcher Fetcher, store Store, engine *reconcile.Engine, amqpURL string) *Collector {
	return &Collector{fetcher: fetcher, store: store, engine: engine, amqpURL: amqpURL}
}

// Collect fetches and merges the theater's schedules over the window,
// applying f per day before the merge.
func (c *Collector) Collect(ctx context.Context, th theater.Theater, first, last time.Time, f schedule.Filter) (*schedule.FullSchedule, error) {
	days, err := c.fetcher.LoadSchedulesByDay(ctx, th, first, last, f)
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, ErrNoData
	}
	return schedule.Merge(days)
}

// Update runs one full pass for the theater: collect, store, reconcile,
// publish deletion events.  It returns the rows the reconciliation
// removed.
func (c *Collector) Update(ctx context.Context, th theater.Theater, first, last time.Time) ([]model.ShowtimeRow, error) {
	loc, err := th.Location()
	if err != nil {
		return nil, err
	}

	full, err := c.Collect(ctx, th, first, last, schedule.EmptyFilter())
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", th.Name, err)
	}

	detected := full.Flatten(th.Name)
	if err := c.store.StoreShowtimes(ctx, detected); err != nil {
		return nil, fmt.Errorf("store %s: %w", th.Name, err)
	}
	log.Printf("collector: %s: stored %d showtimes over %s..%s",
		th.Name, len(detected), first.Format("2006-01-02"), last.Format("2006-01-02"))

	deleted, err := c.engine.Reconcile(ctx, th.Name, loc, first, last, detected)
	if err != nil {
		return nil, fmt.Errorf("reconcile %s: %w", th.Name, err)
	}
	if len(deleted) > 0 {
		log.Printf("collector: %s: removed %d cancelled showtimes", th.Name, len(deleted))
		c.publishDeletions(ctx, deleted)
	}
	return deleted, nil
}

func (c *Collector) publishDeletions(ctx context.Context, deleted []model.ShowtimeRow) {
	if c.amqpURL == "" {
		return
	}
	deleteTime := time.Now().UTC().Truncate(time.Second)
	events := make([]queue.ShowtimeDeletedEvent, 0, len(deleted))
	for _, row := range deleted {
		events = append(events, queue.ShowtimeDeletedEvent{
			DeletionRecord: model.DeletionRecord{ShowtimeRow: row, DeleteTime: deleteTime},
		})
	}
	// Event loss is tolerable; the tombstones are already persisted.
	if err := queue_publisher.PublishShowtimeDeleted(ctx, c.amqpURL, events); err != nil {
		log.Printf("collector: publish deletion events failed: %v", err)
	}
}
