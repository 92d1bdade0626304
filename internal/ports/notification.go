package ports

import (
	"context"

	"github.com/purochile/pcbot/internal/domain"
)

// EventHandler handles a published domain event
type EventHandler func(ctx context.Context, event domain.Event) error

// EventPublisher defines the interface for domain event publishing
type EventPublisher interface {
	// Publish publishes a domain event
	Publish(ctx context.Context, event domain.Event) error

	// Subscribe registers a handler for one event type
	Subscribe(eventType domain.EventType, handler EventHandler)
}

// Identity is the caller of a command as seen by the platform
type Identity struct {
	UserID    string
	Username  string
	GuildID   string
	ChannelID string
	RoleIDs   []string
}

// CapabilityChecker verifies platform permissions for a caller
type CapabilityChecker interface {
	// IsStaff reports whether the caller holds the staff capability
	IsStaff(ctx context.Context, caller Identity) (bool, error)
}
