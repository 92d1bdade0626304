package domain

import (
	"sort"
	"strings"
	"time"
)

// Warning represents a sanction issued to a user by staff
type Warning struct {
	ID       int       `json:"id"`
	UserID   string    `json:"user_id"`
	Reason   string    `json:"reason"`
	IssuedBy string    `json:"issued_by"`
	IssuedAt time.Time `json:"issued_at"`
}

// NewWarning creates a warning. The id is assigned by NextWarningID.
func NewWarning(userID, reason, issuerID string, now time.Time) (*Warning, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, EmptyField("user_id")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, EmptyField("reason")
	}
	return &Warning{
		UserID:   userID,
		Reason:   strings.TrimSpace(reason),
		IssuedBy: issuerID,
		IssuedAt: now,
	}, nil
}

// NextWarningID returns 1 + the highest id held by userID, or 1 if none.
func NextWarningID(warnings []Warning, userID string) int {
	next := 1
	for _, w := range warnings {
		if w.UserID == userID && w.ID >= next {
			next = w.ID + 1
		}
	}
	return next
}

// WarningsFor returns userID's warnings ordered by id ascending
func WarningsFor(warnings []Warning, userID string) []Warning {
	var out []Warning
	for _, w := range warnings {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
