package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewWarning(t *testing.T) {
	if _, err := NewWarning("u1", "  ", "staff", time.Now()); !errors.Is(err, ErrEmptyField) {
		t.Errorf("expected ErrEmptyField for blank reason, got %v", err)
	}

	w, err := NewWarning("u1", " spam ", "staff", time.Now())
	if err != nil {
		t.Fatalf("NewWarning() error = %v", err)
	}
	if w.Reason != "spam" || w.ID != 0 {
		t.Errorf("unexpected warning %+v", w)
	}
}

func TestNextWarningID(t *testing.T) {
	warnings := []Warning{
		{ID: 1, UserID: "u1"},
		{ID: 3, UserID: "u1"},
		{ID: 7, UserID: "u2"},
	}

	tests := []struct {
		userID string
		want   int
	}{
		{"u1", 4},
		{"u2", 8},
		{"u3", 1},
	}

	for _, tt := range tests {
		if got := NextWarningID(warnings, tt.userID); got != tt.want {
			t.Errorf("NextWarningID(%s) = %d, want %d", tt.userID, got, tt.want)
		}
	}
}

func TestWarningsFor(t *testing.T) {
	warnings := []Warning{
		{ID: 2, UserID: "u1"},
		{ID: 1, UserID: "u2"},
		{ID: 1, UserID: "u1"},
	}

	got := WarningsFor(warnings, "u1")
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("WarningsFor(u1) = %+v", got)
	}
}
