package usecase

import (
	"context"
	"fmt"
	"iter"

	"github.com/purochile/pcbot/internal/domain"
	"github.com/purochile/pcbot/internal/logger"
	"github.com/purochile/pcbot/internal/ports"
)

// ReactionLogUseCase records reaction activity in an append-only log
type ReactionLogUseCase struct {
	entries ports.Collection[domain.ReactionLogEntry]
	log     logger.Logger
	now     Clock
}

// NewReactionLogUseCase creates a new reaction log use case
func NewReactionLogUseCase(entries ports.Collection[domain.ReactionLogEntry], log logger.Logger) *ReactionLogUseCase {
	return &ReactionLogUseCase{
		entries: entries,
		log:     log.WithFields(map[string]interface{}{"component": "usecase.reaction_log"}),
		now:     systemClock,
	}
}

// Record appends an entry, assigning its id and timestamp
func (uc *ReactionLogUseCase) Record(ctx context.Context, entry domain.ReactionLogEntry) (*domain.ReactionLogEntry, error) {
	if entry.UserID == "" {
		return nil, domain.EmptyField("user_id")
	}
	if entry.MessageID == "" {
		return nil, domain.EmptyField("message_id")
	}
	if entry.Action != domain.ReactionAdded && entry.Action != domain.ReactionRemoved {
		return nil, domain.InvalidArgument("action", string(entry.Action))
	}
	entry.CreatedAt = uc.now()

	err := uc.entries.Update(ctx, func(all []domain.ReactionLogEntry) ([]domain.ReactionLogEntry, error) {
		entry.ID = nextID(all, func(e domain.ReactionLogEntry) int64 { return e.ID })
		return append(all, entry), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record reaction: %w", err)
	}

	uc.log.Debug(ctx, "reaction recorded", map[string]interface{}{
		"entry":      entry.ID,
		"user_id":    entry.UserID,
		"action":     string(entry.Action),
		"emoji":      entry.Emoji,
		"message_id": entry.MessageID,
	})
	return &entry, nil
}

// Iter lazily yields matching entries in id order. Every range starts over.
func (uc *ReactionLogUseCase) Iter(ctx context.Context, filter domain.ReactionFilter) iter.Seq2[domain.ReactionLogEntry, error] {
	return func(yield func(domain.ReactionLogEntry, error) bool) {
		for e, err := range uc.entries.All(ctx) {
			if err != nil {
				yield(e, err)
				return
			}
			if filter.Match(e) && !yield(e, nil) {
				return
			}
		}
	}
}

// List collects matching entries in id order, keeping the newest filter.Limit
func (uc *ReactionLogUseCase) List(ctx context.Context, filter domain.ReactionFilter) ([]domain.ReactionLogEntry, error) {
	var out []domain.ReactionLogEntry
	for e, err := range uc.Iter(ctx, filter) {
		if err != nil {
			return nil, fmt.Errorf("failed to list reactions: %w", err)
		}
		out = append(out, e)
	}
	return newest(out, filter.Limit), nil
}
