package domain

import (
	"strings"
	"time"
)

// Suggestion represents a community suggestion
type Suggestion struct {
	ID        int64     `json:"id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSuggestion validates and creates a suggestion. The id is assigned on append.
func NewSuggestion(authorID, text string, now time.Time) (*Suggestion, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, EmptyField("text")
	}
	return &Suggestion{AuthorID: authorID, Text: text, CreatedAt: now}, nil
}

// SuggestionFilter represents filters for listing suggestions
type SuggestionFilter struct {
	AuthorID string
	Since    time.Time
	Limit    int
}

// Match reports whether s passes the filter (Limit is applied by the caller)
func (f SuggestionFilter) Match(s Suggestion) bool {
	if f.AuthorID != "" && s.AuthorID != f.AuthorID {
		return false
	}
	if !f.Since.IsZero() && s.CreatedAt.Before(f.Since) {
		return false
	}
	return true
}

// ReactionAction is the kind of reaction event
type ReactionAction string

const (
	ReactionAdded   ReactionAction = "add"
	ReactionRemoved ReactionAction = "remove"
)

// ReactionLogEntry records a reaction added to or removed from a message
type ReactionLogEntry struct {
	ID        int64          `json:"id"`
	UserID    string         `json:"user_id"`
	Action    ReactionAction `json:"action"`
	Emoji     string         `json:"emoji"`
	MessageID string         `json:"message_id"`
	ChannelID string         `json:"channel_id"`
	GuildID   string         `json:"guild_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ReactionFilter represents filters for reading the reaction log
type ReactionFilter struct {
	UserID    string
	MessageID string
	Limit     int
}

// Match reports whether e passes the filter (Limit is applied by the caller)
func (f ReactionFilter) Match(e ReactionLogEntry) bool {
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if f.MessageID != "" && e.MessageID != f.MessageID {
		return false
	}
	return true
}
