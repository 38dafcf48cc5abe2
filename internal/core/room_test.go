package core

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
)

type fakeLink struct {
	mu     sync.Mutex
	frames []Frame
	reject bool
	closed bool
}

func (f *fakeLink) TrySend(fr Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reject {
		return errors.New("queue full")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeLink) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeLink) types(t *testing.T) []string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.frames))
	for _, fr := range f.frames {
		var env struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(fr, &env); err != nil {
			t.Fatalf("decode frame %q: %v", fr, err)
		}
		out = append(out, env.Type)
	}
	return out
}

func (f *fakeLink) last(t *testing.T, v any) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.frames) == 0 {
		t.Fatal("no frames received")
	}
	if err := json.Unmarshal(f.frames[len(f.frames)-1], v); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
}

func TestRoom_JoinNotifiesJoinerAndOthers(t *testing.T) {
	r := NewRoom("r1")
	a, b := &fakeLink{}, &fakeLink{}

	r.Join("alice", a)

	var joined RoomJoinedEvent
	a.last(t, &joined)
	if joined.Type != "room-joined" || joined.ParticipantCount != 1 || len(joined.Participants) != 0 {
		t.Fatalf("unexpected room-joined for first member: %+v", joined)
	}

	r.Join("bob", b)

	var second RoomJoinedEvent
	b.last(t, &second)
	if second.ParticipantCount != 2 || len(second.Participants) != 1 || second.Participants[0] != "alice" {
		t.Fatalf("unexpected room-joined for second member: %+v", second)
	}

	var notified UserJoinedEvent
	a.last(t, &notified)
	if notified.Type != "user-joined" || notified.UserID != "bob" || notified.ParticipantCount != 2 {
		t.Fatalf("unexpected user-joined: %+v", notified)
	}
}

func TestRoom_SecondJoinReplacesNotDuplicates(t *testing.T) {
	r := NewRoom("r1")
	old, repl, other := &fakeLink{}, &fakeLink{}, &fakeLink{}

	r.Join("alice", old)
	r.Join("bob", other)
	if replaced := r.Join("alice", repl); !replaced {
		t.Fatal("expected second join by same identity to replace")
	}
	if r.Size() != 2 {
		t.Fatalf("size = %d, want 2", r.Size())
	}

	// The replaced socket gets no goodbye and the room announces nothing:
	// membership did not change. Bob only ever saw his own room-joined.
	if types := other.types(t); len(types) != 1 || types[0] != "room-joined" {
		t.Fatalf("unexpected events on replace: %v", types)
	}
	if link, _ := r.Link("alice"); link != repl {
		t.Fatal("registry still holds the superseded link")
	}
}

func TestRoom_LeaveNotifiesSurvivorsAndIsIdempotent(t *testing.T) {
	r := NewRoom("r1")
	a, b := &fakeLink{}, &fakeLink{}
	r.Join("alice", a)
	r.Join("bob", b)

	removed, remaining := r.Leave("bob", b)
	if !removed || remaining != 1 {
		t.Fatalf("leave: removed=%v remaining=%d", removed, remaining)
	}

	var left UserLeftEvent
	a.last(t, &left)
	if left.Type != "user-left" || left.UserID != "bob" || left.ParticipantCount != 1 {
		t.Fatalf("unexpected user-left: %+v", left)
	}

	if removed, _ := r.Leave("bob", b); removed {
		t.Fatal("second leave must be a no-op")
	}
}

func TestRoom_LeaveFromSupersededLinkKeepsSuccessor(t *testing.T) {
	r := NewRoom("r1")
	old, repl := &fakeLink{}, &fakeLink{}
	r.Join("alice", old)
	r.Join("alice", repl)

	// Cleanup of the old connection fires after the identity re-joined
	// elsewhere; it must not evict the new association.
	if removed, _ := r.Leave("alice", old); removed {
		t.Fatal("superseded link evicted its successor")
	}
	if r.Size() != 1 {
		t.Fatalf("size = %d, want 1", r.Size())
	}
}

func TestRoom_BroadcastExcludesSenderAndReportsDrops(t *testing.T) {
	r := NewRoom("r1")
	a, b, c := &fakeLink{}, &fakeLink{}, &fakeLink{reject: true}
	r.Join("alice", a)
	r.Join("bob", b)
	r.Join("carol", c)

	res := r.Broadcast("alice", Frame(`{"type":"media-state-changed"}`))
	if res.SentTo != 1 {
		t.Fatalf("sent_to = %d, want 1", res.SentTo)
	}
	if len(res.Dropped) != 1 || res.Dropped[0] != "carol" {
		t.Fatalf("dropped = %v, want [carol]", res.Dropped)
	}
	types := a.types(t)
	if types[len(types)-1] == "media-state-changed" {
		t.Fatal("broadcast delivered to excluded sender")
	}

	// Empty exclusion includes everyone writable.
	res = r.Broadcast("", Frame(`{"type":"chat-message"}`))
	if res.SentTo != 2 {
		t.Fatalf("sent_to = %d, want 2", res.SentTo)
	}
}

func TestRoom_SendToMissingTargetIsSilentDrop(t *testing.T) {
	r := NewRoom("r1")
	a := &fakeLink{}
	r.Join("alice", a)

	if found, _ := r.SendTo("ghost", Frame(`{"type":"offer"}`)); found {
		t.Fatal("send to absent member reported a target")
	}
	if _, sent := r.SendTo("alice", Frame(`{"type":"offer"}`)); !sent {
		t.Fatal("send to present member failed")
	}
}
