package domain

import (
	"strings"
	"testing"
)

func TestRoomIDValidate(t *testing.T) {
	if err := RoomID("call-123").Validate(); err != nil {
		t.Fatalf("valid room id rejected: %v", err)
	}
	if err := RoomID("").Validate(); err != ErrRoomIDEmpty {
		t.Fatalf("empty room id: got %v, want ErrRoomIDEmpty", err)
	}
	long := RoomID(strings.Repeat("x", MaxRoomIDLen+1))
	if err := long.Validate(); err != ErrRoomIDTooLong {
		t.Fatalf("oversized room id: got %v, want ErrRoomIDTooLong", err)
	}
}

func TestUserIDValidate(t *testing.T) {
	if err := UserID("alice").Validate(); err != nil {
		t.Fatalf("valid user id rejected: %v", err)
	}
	if err := UserID("").Validate(); err != ErrUserIDEmpty {
		t.Fatalf("empty user id: got %v, want ErrUserIDEmpty", err)
	}
	long := UserID(strings.Repeat("x", MaxUserIDLen+1))
	if err := long.Validate(); err != ErrUserIDTooLong {
		t.Fatalf("oversized user id: got %v, want ErrUserIDTooLong", err)
	}
}
