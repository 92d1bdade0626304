package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/purochile/pcbot/internal/domain"
	"github.com/purochile/pcbot/internal/logger"
	"github.com/purochile/pcbot/internal/ports"
)

// RatingPolicy controls how often a rater may rate the same staff member
type RatingPolicy struct {
	// Cooldown of zero allows unlimited ratings
	Cooldown time.Duration
}

// RateStaffRequest represents a rating submission
type RateStaffRequest struct {
	StaffID string
	RaterID string
	Score   int
	Reason  string
}

// RatingUseCase collects staff ratings and aggregates them on read
type RatingUseCase struct {
	ratings ports.Collection[domain.Rating]
	policy  RatingPolicy
	log     logger.Logger
	now     Clock
}

// NewRatingUseCase creates a new rating use case
func NewRatingUseCase(ratings ports.Collection[domain.Rating], policy RatingPolicy, log logger.Logger) *RatingUseCase {
	return &RatingUseCase{
		ratings: ratings,
		policy:  policy,
		log:     log.WithFields(map[string]interface{}{"component": "usecase.rating"}),
		now:     systemClock,
	}
}

// Rate records a score in [-5, 5]. With a cooldown configured, a rater who
// rated the same staff member within the window gets DuplicateRater.
func (uc *RatingUseCase) Rate(ctx context.Context, req RateStaffRequest) (*domain.Rating, error) {
	now := uc.now()
	rating, err := domain.NewRating(req.StaffID, req.RaterID, req.Score, req.Reason, now)
	if err != nil {
		return nil, err
	}

	err = uc.ratings.Update(ctx, func(all []domain.Rating) ([]domain.Rating, error) {
		if uc.policy.Cooldown > 0 {
			if last, ok := domain.LastRatingBy(all, req.StaffID, req.RaterID); ok {
				if wait := last.Timestamp.Add(uc.policy.Cooldown).Sub(now); wait > 0 {
					return nil, domain.DuplicateRater(req.StaffID, req.RaterID, formatWait(wait))
				}
			}
		}
		return append(all, *rating), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to rate staff: %w", err)
	}

	uc.log.Info(ctx, "staff rated", map[string]interface{}{
		"staff_id": req.StaffID,
		"rater_id": req.RaterID,
		"score":    req.Score,
	})
	return rating, nil
}

// Average returns the mean score of a staff member. ok is false when the
// staff member has no ratings.
func (uc *RatingUseCase) Average(ctx context.Context, staffID string) (avg domain.StaffAverage, ok bool, err error) {
	all, err := uc.ratings.Load(ctx)
	if err != nil {
		return avg, false, fmt.Errorf("failed to load ratings: %w", err)
	}
	avg, ok = domain.AverageFor(all, staffID)
	return avg, ok, nil
}

// Ranking returns the top staff by average, count, then id
func (uc *RatingUseCase) Ranking(ctx context.Context, topN int) ([]domain.StaffAverage, error) {
	all, err := uc.ratings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}
	return domain.Rank(all, topN), nil
}

// History returns a staff member's newest ratings, newest first
func (uc *RatingUseCase) History(ctx context.Context, staffID string, limit int) ([]domain.Rating, error) {
	all, err := uc.ratings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}

	var history []domain.Rating
	for _, r := range all {
		if r.StaffID == staffID {
			history = append(history, r)
		}
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Timestamp.After(history[j].Timestamp)
	})
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

func formatWait(d time.Duration) string {
	if d < time.Minute {
		return "less than a minute"
	}
	return d.Round(time.Minute).String()
}
