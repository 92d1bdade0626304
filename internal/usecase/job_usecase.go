package usecase

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/purochile/pcbot/internal/domain"
	"github.com/purochile/pcbot/internal/logger"
	"github.com/purochile/pcbot/internal/ports"
)

// JobUseCase handles applications to secondary jobs
type JobUseCase struct {
	applications ports.Collection[domain.JobApplication]
	jobs         []string
	events       ports.EventPublisher
	log          logger.Logger
	now          Clock
}

// NewJobUseCase creates a new job use case accepting applications for jobs
func NewJobUseCase(applications ports.Collection[domain.JobApplication], jobs []string, events ports.EventPublisher, log logger.Logger) *JobUseCase {
	if len(jobs) == 0 {
		jobs = domain.DefaultJobs
	}
	normalized := make([]string, 0, len(jobs))
	for _, j := range jobs {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(j)))
	}
	return &JobUseCase{
		applications: applications,
		jobs:         normalized,
		events:       events,
		log:          log.WithFields(map[string]interface{}{"component": "usecase.job"}),
		now:          systemClock,
	}
}

// Jobs returns the jobs open for applications
func (uc *JobUseCase) Jobs() []string {
	return slices.Clone(uc.jobs)
}

// Apply files a pending application; one pending application per user and job
func (uc *JobUseCase) Apply(ctx context.Context, userID, job, motivation string) (*domain.JobApplication, error) {
	job = strings.ToLower(strings.TrimSpace(job))
	if !slices.Contains(uc.jobs, job) {
		return nil, domain.UnknownJob(job)
	}
	app, err := domain.NewJobApplication(userID, job, motivation, uc.now())
	if err != nil {
		return nil, err
	}

	err = uc.applications.Update(ctx, func(all []domain.JobApplication) ([]domain.JobApplication, error) {
		for _, existing := range all {
			if existing.UserID == userID && existing.Job == job && existing.Status == domain.JobStatusPending {
				return nil, domain.DuplicateJobApplication(userID, job)
			}
		}
		app.ID = nextID(all, func(j domain.JobApplication) int64 { return j.ID })
		return append(all, *app), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply for job: %w", err)
	}

	uc.log.Info(ctx, "job application filed", map[string]interface{}{"application": app.ID, "user_id": userID, "job": job})
	return app, nil
}

// Decide accepts or rejects a pending job application by id
func (uc *JobUseCase) Decide(ctx context.Context, id int64, outcome domain.JobStatus, deciderID, guildID string) (*domain.JobApplication, error) {
	var decided domain.JobApplication
	now := uc.now()

	err := uc.applications.Update(ctx, func(all []domain.JobApplication) ([]domain.JobApplication, error) {
		for i := range all {
			if all[i].ID != id {
				continue
			}
			if err := all[i].Decide(outcome, deciderID, now); err != nil {
				return nil, err
			}
			decided = all[i]
			return all, nil
		}
		return nil, domain.JobApplicationNotFound(id)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decide job application: %w", err)
	}

	uc.log.Info(ctx, "job application decided", map[string]interface{}{"application": id, "outcome": string(outcome)})
	publish(ctx, uc.events, uc.log, domain.NewEvent(domain.EventJobDecided, decided.UserID, guildID, map[string]string{
		"application_id": strconv.FormatInt(id, 10),
		"job":            decided.Job,
		"outcome":        string(outcome),
	}, now))
	return &decided, nil
}

// List returns job applications in id order. An empty status returns all.
func (uc *JobUseCase) List(ctx context.Context, status domain.JobStatus) ([]domain.JobApplication, error) {
	all, err := uc.applications.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list job applications: %w", err)
	}
	if status == "" {
		return all, nil
	}
	var out []domain.JobApplication
	for _, app := range all {
		if app.Status == status {
			out = append(out, app)
		}
	}
	return out, nil
}
