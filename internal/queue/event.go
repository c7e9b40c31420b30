// Package queue defines message payloads exchanged over the message
// broker, and the background consumer that records them.
package queue

import "github.com/iliyamo/movie-times/internal/model"

// DeletionQueueName is the queue deletion events are published to.
const DeletionQueueName = "showtime.deleted"

// ShowtimeDeletedEvent is published for every showtime a reconciliation
// pass removed from the live table.  It carries the full tombstone so
// downstream consumers can log or notify without querying the primary
// database.
type ShowtimeDeletedEvent struct {
	model.DeletionRecord
}
