package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies a domain event
type EventType string

const (
	EventApplicationSubmitted EventType = "application.submitted"
	EventApplicationApproved  EventType = "application.approved"
	EventApplicationDenied    EventType = "application.denied"
	EventApplicationReset     EventType = "application.reset"
	EventWarningAdded         EventType = "warning.added"
	EventJobDecided           EventType = "job.decided"
)

// Event is emitted on a state transition and consumed by side-effect
// collaborators such as the channel manager.
type Event struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	SubjectID  string            `json:"subject_id"`
	GuildID    string            `json:"guild_id,omitempty"`
	Data       map[string]string `json:"data,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewEvent creates an event with a fresh id
func NewEvent(eventType EventType, subjectID, guildID string, data map[string]string, now time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		SubjectID:  subjectID,
		GuildID:    guildID,
		Data:       data,
		OccurredAt: now,
	}
}
