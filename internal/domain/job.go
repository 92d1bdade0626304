package domain

import (
	"strings"
	"time"
)

// JobStatus represents the status of a job application
type JobStatus string

const (
	JobStatusPending  JobStatus = "pending"
	JobStatusAccepted JobStatus = "accepted"
	JobStatusRejected JobStatus = "rejected"
)

// DefaultJobs are the secondary jobs users can apply to
var DefaultJobs = []string{"policia", "medico", "mecanico"}

// JobApplication represents a user's application to a secondary job
type JobApplication struct {
	ID         int64      `json:"id"`
	UserID     string     `json:"user_id"`
	Job        string     `json:"job"`
	Motivation string     `json:"motivation"`
	Status     JobStatus  `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	DecidedBy  *string    `json:"decided_by,omitempty"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
}

// NewJobApplication creates a pending job application
func NewJobApplication(userID, job, motivation string, now time.Time) (*JobApplication, error) {
	if strings.TrimSpace(motivation) == "" {
		return nil, EmptyField("motivation")
	}
	return &JobApplication{
		UserID:     userID,
		Job:        strings.ToLower(strings.TrimSpace(job)),
		Motivation: strings.TrimSpace(motivation),
		Status:     JobStatusPending,
		CreatedAt:  now,
	}, nil
}

// Decide records a staff decision on a pending job application
func (j *JobApplication) Decide(outcome JobStatus, deciderID string, now time.Time) error {
	if outcome != JobStatusAccepted && outcome != JobStatusRejected {
		return InvalidOutcome(string(outcome))
	}
	if j.Status != JobStatusPending {
		return JobApplicationNotFound(j.ID)
	}
	j.Status = outcome
	j.DecidedBy = &deciderID
	j.DecidedAt = &now
	return nil
}

// ParseJobOutcome maps command input to a job decision outcome
func ParseJobOutcome(s string) (JobStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accept", "accepted", "aceptar", "approve":
		return JobStatusAccepted, nil
	case "reject", "rejected", "rechazar", "deny":
		return JobStatusRejected, nil
	default:
		return "", InvalidOutcome(s)
	}
}
