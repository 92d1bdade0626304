package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Is(t *testing.T) {
	err := WarningNotFound("u1", 4)

	if !errors.Is(err, ErrWarningNotFound) {
		t.Errorf("expected detailed error to match its sentinel")
	}
	if errors.Is(err, ErrNoApplication) {
		t.Errorf("expected no match across codes")
	}
	if err.Hint == "" {
		t.Errorf("state conflicts should carry a hint")
	}

	wrapped := fmt.Errorf("command failed: %w", err)
	if !errors.Is(wrapped, ErrWarningNotFound) {
		t.Errorf("expected wrapped error to match")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{InvalidScore(9, MinScore, MaxScore), KindValidation},
		{DuplicateApplication("u1"), KindStateConflict},
		{PermissionDenied("approve"), KindPermissionDenied},
		{UnknownCommand("dance"), KindUnknownCommand},
		{fmt.Errorf("outer: %w", StoreCorrupt("ratings", errors.New("bad json"))), KindStoreCorrupt},
		{errors.New("plain"), KindInternal},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestStoreIO_UnwrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := StoreIO("warnings", "save", cause)

	if !errors.Is(err, cause) {
		t.Errorf("expected cause in chain")
	}
}
