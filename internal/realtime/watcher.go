// Package realtime delivers coalesced change notifications from MongoDB
// change streams. Subscribers receive "something changed, reload" signals,
// never deltas: a consumer reacts by refetching its snapshot, so a dropped
// or merged signal is always safe.
package realtime

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// Subscription is a live change feed for one collection. C fires (with at
// most one pending signal) whenever any document in the collection changes.
type Subscription struct {
	// ID identifies the subscription handle, e.g. in logs.
	ID string
	// C receives a signal per burst of changes. Closed on Close or when the
	// underlying stream ends.
	C <-chan struct{}

	cancel context.CancelFunc
	once   sync.Once
}

// Close terminates the change stream. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}

// Watcher opens change-stream subscriptions against a database.
type Watcher struct {
	db *mongo.Database
}

// NewWatcher creates a Watcher over the given database.
func NewWatcher(db *mongo.Database) *Watcher {
	return &Watcher{db: db}
}

// Subscribe opens a change stream on a collection and returns a subscription
// delivering reload signals. The stream lives until the subscription is
// closed or ctx is cancelled.
func (w *Watcher) Subscribe(ctx context.Context, collectionName string) (*Subscription, error) {
	streamCtx, cancel := context.WithCancel(ctx)

	stream, err := w.db.Collection(collectionName).Watch(streamCtx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, err
	}

	signals := make(chan struct{}, 1)
	sub := &Subscription{
		ID:     uuid.NewString(),
		C:      signals,
		cancel: cancel,
	}

	go func() {
		defer close(signals)
		defer func() {
			if err := stream.Close(context.Background()); err != nil {
				log.Printf("ERROR: Failed to close change stream for %s: %v", collectionName, err)
			}
		}()

		for stream.Next(streamCtx) {
			// Coalesce: one pending signal is enough, the consumer reloads
			// the whole snapshot anyway.
			select {
			case signals <- struct{}{}:
			default:
			}
		}
		if err := stream.Err(); err != nil && streamCtx.Err() == nil {
			log.Printf("ERROR: Change stream for %s ended: %v", collectionName, err)
		}
	}()

	return sub, nil
}
