// Package usecase holds the bot's feature logic. Each use case owns exactly
// one collection and never writes another's.
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/purochile/pcbot/internal/domain"
	"github.com/purochile/pcbot/internal/logger"
	"github.com/purochile/pcbot/internal/ports"
)

// errUnchanged aborts an Update without writing when fn found nothing to do
var errUnchanged = errors.New("collection unchanged")

// ignoreUnchanged maps errUnchanged back to success
func ignoreUnchanged(err error) error {
	if errors.Is(err, errUnchanged) {
		return nil
	}
	return err
}

// Clock returns the current time
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// publish emits an event after the state change is committed. A failed
// publish is logged and never undoes the change.
func publish(ctx context.Context, events ports.EventPublisher, log logger.Logger, event domain.Event) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, event); err != nil {
		log.Error(ctx, "failed to publish event", err, map[string]interface{}{
			"event_type": string(event.Type),
			"subject_id": event.SubjectID,
		})
	}
}

// nextID returns 1 + the highest id in records, or 1 if empty
func nextID[T any](records []T, id func(T) int64) int64 {
	var highest int64
	for _, r := range records {
		if v := id(r); v > highest {
			highest = v
		}
	}
	return highest + 1
}

// newest keeps the last limit elements of s. limit <= 0 keeps everything.
func newest[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[len(s)-limit:]
	}
	return s
}
