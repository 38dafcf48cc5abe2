package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/driftapp/callrelay/internal/core"
	"github.com/driftapp/callrelay/internal/domain"
)

// Registry is the process-wide room table. Rooms are created lazily on the
// first successful join and deleted the instant their membership reaches
// zero, so a room exists here if and only if it has at least one participant.
//
// The registry lock covers room creation/deletion; each room additionally
// serializes its own membership against fan-out (see core.Room). Join and
// Leave take the registry write lock for their whole span so a concurrent
// leave can never orphan a joiner inside a just-deleted room.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[domain.RoomID]*core.Room
	policy Policy
}

func NewRegistry(policy Policy) *Registry {
	if policy == nil {
		policy = DropPolicy{}
	}
	return &Registry{
		rooms:  make(map[domain.RoomID]*core.Room),
		policy: policy,
	}
}

// Join admits an authorized participant, creating the room if needed.
// A repeat join by the same identity replaces its link (last-writer-wins).
func (r *Registry) Join(roomID domain.RoomID, u domain.UserID, link core.PeerLink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		room = core.NewRoom(roomID)
		r.rooms[roomID] = room
		log.Info().Str("module", "app.registry").Str("room", string(roomID)).Msg("room created")
	}
	room.Join(u, link)
}

// Leave removes the participant and deletes the room when it empties.
// link guards against a superseded connection evicting its replacement;
// pass nil to force removal by identity alone. Idempotent.
func (r *Registry) Leave(roomID domain.RoomID, u domain.UserID, link core.PeerLink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return
	}
	removed, remaining := room.Leave(u, link)
	if removed && remaining == 0 {
		delete(r.rooms, roomID)
		log.Info().Str("module", "app.registry").Str("room", string(roomID)).Msg("room deleted")
	}
}

// Broadcast relays a frame to every room member except `except` (empty id
// includes everyone). Best-effort; stalled members go through the policy.
func (r *Registry) Broadcast(roomID domain.RoomID, except domain.UserID, f core.Frame) {
	r.mu.RLock()
	room, ok := r.rooms[roomID]
	r.mu.RUnlock()
	if !ok {
		return
	}
	res := room.Broadcast(except, f)
	for _, slow := range res.Dropped {
		r.applyBackpressure(room, slow)
	}
}

// SendTo relays a frame to a single room member. A missing target is a
// silent drop: the peer may have just left.
func (r *Registry) SendTo(roomID domain.RoomID, target domain.UserID, f core.Frame) {
	r.mu.RLock()
	room, ok := r.rooms[roomID]
	r.mu.RUnlock()
	if !ok {
		return
	}
	found, sent := room.SendTo(target, f)
	if !found {
		log.Debug().Str("module", "app.registry").Str("room", string(roomID)).
			Str("target", string(target)).Msg("relay target not in room")
		return
	}
	if !sent {
		r.applyBackpressure(room, target)
	}
}

func (r *Registry) applyBackpressure(room *core.Room, member domain.UserID) {
	if r.policy.OnBackpressure(room.ID(), member) != CloseSlow {
		return
	}
	if link, ok := room.Link(member); ok {
		log.Warn().Str("module", "app.registry").Str("room", string(room.ID())).
			Str("user", string(member)).Msg("closing slow member")
		link.Close()
	}
}

// Size reports the participant count of a room and whether it exists.
func (r *Registry) Size(roomID domain.RoomID) (int, bool) {
	r.mu.RLock()
	room, ok := r.rooms[roomID]
	r.mu.RUnlock()
	if !ok {
		return 0, false
	}
	return room.Size(), true
}

// RoomCount reports how many rooms are currently live.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
