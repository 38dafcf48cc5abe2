package core

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/driftapp/callrelay/internal/domain"
)

// Room is a threadsafe in-memory membership map for one signaling session.
// It owns the identity -> link association but never closes adapter-owned
// transport resources.
//
// Membership mutations and fan-outs hold the same lock, so every recipient
// observes join/leave events in mutation order.
type Room struct {
	id      domain.RoomID
	mu      sync.RWMutex
	members map[domain.UserID]PeerLink
}

func NewRoom(id domain.RoomID) *Room {
	return &Room{
		id:      id,
		members: make(map[domain.UserID]PeerLink),
	}
}

func (r *Room) ID() domain.RoomID { return r.id }

func (r *Room) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// Participants returns the current member identities, sorted for stable output.
func (r *Room) Participants() []domain.UserID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.participantsLocked("")
}

func (r *Room) participantsLocked(except domain.UserID) []domain.UserID {
	out := make([]domain.UserID, 0, len(r.members))
	for id := range r.members {
		if id == except {
			continue
		}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Join adds or replaces the member's link (last-writer-wins; a second join by
// the same identity supersedes the first with no goodbye to the old socket).
// The joiner is told the current membership, everyone else gets user-joined.
func (r *Room) Join(u domain.UserID, link PeerLink) (replaced bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, replaced = r.members[u]
	r.members[u] = link
	count := len(r.members)

	_ = link.TrySend(Encode(RoomJoinedEvent{
		Type:             eventRoomJoined,
		RoomID:           r.id,
		Participants:     r.participantsLocked(u),
		ParticipantCount: count,
	}))
	if !replaced {
		joined := Encode(UserJoinedEvent{
			Type:             eventUserJoined,
			UserID:           u,
			ParticipantCount: count,
		})
		for id, m := range r.members {
			if id == u {
				continue
			}
			_ = m.TrySend(joined)
		}
	}

	log.Info().Str("module", "core.room").Str("room", string(r.id)).
		Str("user", string(u)).Bool("replaced", replaced).Int("count", count).
		Msg("member joined")
	return replaced
}

// Leave removes the member and notifies survivors. When link is non-nil the
// entry is only removed if it still belongs to that link, so cleanup from a
// superseded connection cannot evict its successor. Idempotent.
func (r *Room) Leave(u domain.UserID, link PeerLink) (removed bool, remaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.members[u]
	if !ok || (link != nil && cur != link) {
		return false, len(r.members)
	}
	delete(r.members, u)
	remaining = len(r.members)

	if remaining > 0 {
		left := Encode(UserLeftEvent{
			Type:             eventUserLeft,
			UserID:           u,
			ParticipantCount: remaining,
		})
		for _, m := range r.members {
			_ = m.TrySend(left)
		}
	}

	log.Info().Str("module", "core.room").Str("room", string(r.id)).
		Str("user", string(u)).Int("remaining", remaining).Msg("member left")
	return true, remaining
}

// Broadcast fans a frame out to every member except `except` (pass the empty
// id to include everyone). Delivery is best-effort; dropped targets are
// reported for the backpressure policy.
func (r *Room) Broadcast(except domain.UserID, f Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for id, m := range r.members {
		if id == except {
			continue
		}
		if err := m.TrySend(f); err != nil {
			res.Dropped = append(res.Dropped, id)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.id)).
		Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast")
	return res
}

// SendTo delivers a frame to one member. A missing or unwritable target is a
// silent drop: the peer may have just left, which is expected.
func (r *Room) SendTo(target domain.UserID, f Frame) (found, sent bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[target]
	if !ok {
		return false, false
	}
	return true, m.TrySend(f) == nil
}

// Link returns the current transport link of a member, if any.
func (r *Room) Link(u domain.UserID) (PeerLink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[u]
	return m, ok
}
