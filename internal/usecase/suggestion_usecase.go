package usecase

import (
	"context"
	"fmt"
	"iter"

	"github.com/purochile/pcbot/internal/domain"
	"github.com/purochile/pcbot/internal/logger"
	"github.com/purochile/pcbot/internal/ports"
)

// SuggestionUseCase is the append-only suggestion box
type SuggestionUseCase struct {
	suggestions ports.Collection[domain.Suggestion]
	log         logger.Logger
	now         Clock
}

// NewSuggestionUseCase creates a new suggestion use case
func NewSuggestionUseCase(suggestions ports.Collection[domain.Suggestion], log logger.Logger) *SuggestionUseCase {
	return &SuggestionUseCase{
		suggestions: suggestions,
		log:         log.WithFields(map[string]interface{}{"component": "usecase.suggestion"}),
		now:         systemClock,
	}
}

// Add appends a suggestion with the next global id
func (uc *SuggestionUseCase) Add(ctx context.Context, authorID, text string) (*domain.Suggestion, error) {
	suggestion, err := domain.NewSuggestion(authorID, text, uc.now())
	if err != nil {
		return nil, err
	}

	err = uc.suggestions.Update(ctx, func(all []domain.Suggestion) ([]domain.Suggestion, error) {
		suggestion.ID = nextID(all, func(s domain.Suggestion) int64 { return s.ID })
		return append(all, *suggestion), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add suggestion: %w", err)
	}

	uc.log.Info(ctx, "suggestion added", map[string]interface{}{"suggestion": suggestion.ID, "author_id": authorID})
	return suggestion, nil
}

// Iter lazily yields matching suggestions in id order. Every range starts
// over from the first stored suggestion. Limit is ignored.
func (uc *SuggestionUseCase) Iter(ctx context.Context, filter domain.SuggestionFilter) iter.Seq2[domain.Suggestion, error] {
	return func(yield func(domain.Suggestion, error) bool) {
		for s, err := range uc.suggestions.All(ctx) {
			if err != nil {
				yield(s, err)
				return
			}
			if filter.Match(s) && !yield(s, nil) {
				return
			}
		}
	}
}

// List collects matching suggestions in id order, keeping the newest
// filter.Limit of them
func (uc *SuggestionUseCase) List(ctx context.Context, filter domain.SuggestionFilter) ([]domain.Suggestion, error) {
	var out []domain.Suggestion
	for s, err := range uc.Iter(ctx, filter) {
		if err != nil {
			return nil, fmt.Errorf("failed to list suggestions: %w", err)
		}
		out = append(out, s)
	}
	return newest(out, filter.Limit), nil
}
