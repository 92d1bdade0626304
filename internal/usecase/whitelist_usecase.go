package usecase

import (
	"context"
	"fmt"

	"github.com/purochile/pcbot/internal/domain"
	"github.com/purochile/pcbot/internal/logger"
	"github.com/purochile/pcbot/internal/ports"
)

// SubmitApplicationRequest represents a whitelist submission
type SubmitApplicationRequest struct {
	UserID  string
	GuildID string
	Answers []domain.QA
}

// DecideApplicationRequest represents a staff decision on an application
type DecideApplicationRequest struct {
	UserID    string
	DeciderID string
	GuildID   string
	Outcome   domain.ApplicationStatus
}

// WhitelistUseCase drives the application state machine
type WhitelistUseCase struct {
	applications ports.Collection[domain.Application]
	events       ports.EventPublisher
	log          logger.Logger
	now          Clock
}

// NewWhitelistUseCase creates a new whitelist use case
func NewWhitelistUseCase(applications ports.Collection[domain.Application], events ports.EventPublisher, log logger.Logger) *WhitelistUseCase {
	return &WhitelistUseCase{
		applications: applications,
		events:       events,
		log:          log.WithFields(map[string]interface{}{"component": "usecase.whitelist"}),
		now:          systemClock,
	}
}

// Submit creates or overwrites the user's application as pending. A pending
// application cannot be resubmitted.
func (uc *WhitelistUseCase) Submit(ctx context.Context, req SubmitApplicationRequest) (*domain.Application, error) {
	app, err := domain.NewApplication(req.UserID, req.Answers, uc.now())
	if err != nil {
		return nil, err
	}

	err = uc.applications.Update(ctx, func(apps []domain.Application) ([]domain.Application, error) {
		for i := range apps {
			if apps[i].UserID != req.UserID {
				continue
			}
			if apps[i].IsPending() {
				return nil, domain.DuplicateApplication(req.UserID)
			}
			apps[i] = *app
			return apps, nil
		}
		return append(apps, *app), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit application: %w", err)
	}

	uc.log.Info(ctx, "application submitted", map[string]interface{}{"user_id": req.UserID, "answers": len(app.Answers)})
	publish(ctx, uc.events, uc.log, domain.NewEvent(domain.EventApplicationSubmitted, req.UserID, req.GuildID, nil, app.CreatedAt))
	return app, nil
}

// Decide approves or denies a pending application. Approval emits the event
// the channel manager turns into a private channel.
func (uc *WhitelistUseCase) Decide(ctx context.Context, req DecideApplicationRequest) (*domain.Application, error) {
	var decided domain.Application
	now := uc.now()

	err := uc.applications.Update(ctx, func(apps []domain.Application) ([]domain.Application, error) {
		for i := range apps {
			if apps[i].UserID != req.UserID {
				continue
			}
			if err := apps[i].Decide(req.Outcome, req.DeciderID, now); err != nil {
				return nil, err
			}
			decided = apps[i]
			return apps, nil
		}
		if req.Outcome != domain.ApplicationStatusApproved && req.Outcome != domain.ApplicationStatusDenied {
			return nil, domain.InvalidOutcome(string(req.Outcome))
		}
		return nil, domain.NoApplication(req.UserID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decide application: %w", err)
	}

	eventType := domain.EventApplicationDenied
	if decided.Status == domain.ApplicationStatusApproved {
		eventType = domain.EventApplicationApproved
	}
	uc.log.Info(ctx, "application decided", map[string]interface{}{
		"user_id":    req.UserID,
		"outcome":    string(decided.Status),
		"decided_by": req.DeciderID,
	})
	publish(ctx, uc.events, uc.log, domain.NewEvent(eventType, req.UserID, req.GuildID, map[string]string{
		"decided_by": req.DeciderID,
	}, now))
	return &decided, nil
}

// Reset returns the application to a fresh not-submitted state. Resetting a
// missing or already reset application is a successful no-op; changed reports
// whether anything was written.
func (uc *WhitelistUseCase) Reset(ctx context.Context, userID, guildID string) (changed bool, err error) {
	err = uc.applications.Update(ctx, func(apps []domain.Application) ([]domain.Application, error) {
		for i := range apps {
			if apps[i].UserID == userID && apps[i].Status != domain.ApplicationStatusReset {
				apps[i].Reset()
				changed = true
			}
		}
		if !changed {
			return nil, errUnchanged
		}
		return apps, nil
	})
	if err = ignoreUnchanged(err); err != nil {
		return false, fmt.Errorf("failed to reset application: %w", err)
	}

	if changed {
		uc.log.Info(ctx, "application reset", map[string]interface{}{"user_id": userID})
		publish(ctx, uc.events, uc.log, domain.NewEvent(domain.EventApplicationReset, userID, guildID, nil, uc.now()))
	}
	return changed, nil
}

// Get returns the user's application record
func (uc *WhitelistUseCase) Get(ctx context.Context, userID string) (*domain.Application, error) {
	apps, err := uc.applications.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load applications: %w", err)
	}
	for _, app := range apps {
		if app.UserID == userID {
			return &app, nil
		}
	}
	return nil, domain.NoApplication(userID)
}
