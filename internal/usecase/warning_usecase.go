package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/purochile/pcbot/internal/domain"
	"github.com/purochile/pcbot/internal/logger"
	"github.com/purochile/pcbot/internal/ports"
)

// AddWarningRequest represents a new sanction
type AddWarningRequest struct {
	UserID   string
	Reason   string
	IssuerID string
	GuildID  string
}

// WarningUseCase manages the per-user warning ledger
type WarningUseCase struct {
	warnings ports.Collection[domain.Warning]
	events   ports.EventPublisher
	log      logger.Logger
	now      Clock
}

// NewWarningUseCase creates a new warning use case
func NewWarningUseCase(warnings ports.Collection[domain.Warning], events ports.EventPublisher, log logger.Logger) *WarningUseCase {
	return &WarningUseCase{
		warnings: warnings,
		events:   events,
		log:      log.WithFields(map[string]interface{}{"component": "usecase.warning"}),
		now:      systemClock,
	}
}

// Add appends a warning with id = 1 + the user's highest id. The id is
// computed inside the collection's critical section so concurrent adds
// never collide.
func (uc *WarningUseCase) Add(ctx context.Context, req AddWarningRequest) (*domain.Warning, error) {
	warning, err := domain.NewWarning(req.UserID, req.Reason, req.IssuerID, uc.now())
	if err != nil {
		return nil, err
	}

	err = uc.warnings.Update(ctx, func(all []domain.Warning) ([]domain.Warning, error) {
		warning.ID = domain.NextWarningID(all, req.UserID)
		return append(all, *warning), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add warning: %w", err)
	}

	uc.log.Info(ctx, "warning added", map[string]interface{}{
		"user_id":   req.UserID,
		"warning":   warning.ID,
		"issued_by": req.IssuerID,
	})
	publish(ctx, uc.events, uc.log, domain.NewEvent(domain.EventWarningAdded, req.UserID, req.GuildID, map[string]string{
		"warning_id": strconv.Itoa(warning.ID),
		"reason":     warning.Reason,
		"issued_by":  req.IssuerID,
	}, warning.IssuedAt))
	return warning, nil
}

// Remove deletes one warning by id
func (uc *WarningUseCase) Remove(ctx context.Context, userID string, id int) error {
	err := uc.warnings.Update(ctx, func(all []domain.Warning) ([]domain.Warning, error) {
		for i, w := range all {
			if w.UserID == userID && w.ID == id {
				return append(all[:i], all[i+1:]...), nil
			}
		}
		return nil, domain.WarningNotFound(userID, id)
	})
	if err != nil {
		return fmt.Errorf("failed to remove warning: %w", err)
	}
	uc.log.Info(ctx, "warning removed", map[string]interface{}{"user_id": userID, "warning": id})
	return nil
}

// Reset removes every warning of a user and returns how many were removed
func (uc *WarningUseCase) Reset(ctx context.Context, userID string) (int, error) {
	removed := 0
	err := uc.warnings.Update(ctx, func(all []domain.Warning) ([]domain.Warning, error) {
		kept := all[:0]
		for _, w := range all {
			if w.UserID == userID {
				removed++
				continue
			}
			kept = append(kept, w)
		}
		if removed == 0 {
			return nil, errUnchanged
		}
		return kept, nil
	})
	if err = ignoreUnchanged(err); err != nil {
		return 0, fmt.Errorf("failed to reset warnings: %w", err)
	}
	uc.log.Info(ctx, "warnings reset", map[string]interface{}{"user_id": userID, "removed": removed})
	return removed, nil
}

// List returns the user's warnings ordered by id ascending
func (uc *WarningUseCase) List(ctx context.Context, userID string) ([]domain.Warning, error) {
	all, err := uc.warnings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list warnings: %w", err)
	}
	return domain.WarningsFor(all, userID), nil
}
