package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateUserID(t *testing.T) {
	if err := ValidateUserID("u1"); err != nil {
		t.Fatalf("ValidateUserID returned error: %v", err)
	}
	if err := ValidateUserID(""); !errors.Is(err, ErrMissingUID) {
		t.Fatalf("expected ErrMissingUID, got %v", err)
	}
	long := UserID(strings.Repeat("x", MaxUserIDLen+1))
	if err := ValidateUserID(long); !errors.Is(err, ErrUIDTooLong) {
		t.Fatalf("expected ErrUIDTooLong, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	room := NewRoom("AB12", "u1")
	snap := room.Clone()

	room.Players = append(room.Players, "u2")
	room.Status = StatusActive

	if len(snap.Players) != 1 || snap.Players[0] != "u1" {
		t.Fatalf("snapshot mutated: %v", snap.Players)
	}
	if snap.Status != StatusWaiting {
		t.Fatalf("snapshot status mutated: %s", snap.Status)
	}
}
