package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "membership.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_CallParticipants(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.AddCallParticipant(ctx, "call-1", "alice"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ok, err := s.IsCallParticipant(ctx, "call-1", "alice")
	if err != nil || !ok {
		t.Fatalf("alice in call-1 = %v, %v; want true, nil", ok, err)
	}
	ok, err = s.IsCallParticipant(ctx, "call-1", "bob")
	if err != nil || ok {
		t.Fatalf("bob in call-1 = %v, %v; want false, nil", ok, err)
	}
}

func TestStore_ConversationParticipants(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.AddConversationParticipant(ctx, "conv-1", "carol"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// Duplicate insert is ignored, not an error.
	if err := s.AddConversationParticipant(ctx, "conv-1", "carol"); err != nil {
		t.Fatalf("duplicate seed: %v", err)
	}

	ok, err := s.IsConversationParticipant(ctx, "conv-1", "carol")
	if err != nil || !ok {
		t.Fatalf("carol in conv-1 = %v, %v; want true, nil", ok, err)
	}
}

func TestStore_CallInfo(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.UpsertCall(ctx, "call-1", "host-1", "conv-1"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	host, conv, found, err := s.CallInfo(ctx, "call-1")
	if err != nil || !found {
		t.Fatalf("call info: found=%v err=%v", found, err)
	}
	if host != "host-1" || conv != "conv-1" {
		t.Fatalf("call info = %q/%q, want host-1/conv-1", host, conv)
	}

	if _, _, found, err := s.CallInfo(ctx, "missing"); err != nil || found {
		t.Fatalf("missing call: found=%v err=%v; want false, nil", found, err)
	}

	// Upsert replaces.
	if err := s.UpsertCall(ctx, "call-1", "host-2", "conv-2"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	host, conv, _, _ = s.CallInfo(ctx, "call-1")
	if host != "host-2" || conv != "conv-2" {
		t.Fatalf("after upsert = %q/%q, want host-2/conv-2", host, conv)
	}
}
