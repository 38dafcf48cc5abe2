// Package auth decides whether a claimed identity may enter a room.
// Everything here is fail-closed: lookup errors deny, never allow.
package auth

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/driftapp/callrelay/internal/domain"
)

// MembershipSource is the external participant-membership collaborator.
// Read-only; queried synchronously during join and never cached.
type MembershipSource interface {
	IsCallParticipant(ctx context.Context, callID string, userID domain.UserID) (bool, error)
	IsConversationParticipant(ctx context.Context, conversationID string, userID domain.UserID) (bool, error)
	// CallInfo resolves a call id to its host and associated conversation.
	// found is false when no such call exists.
	CallInfo(ctx context.Context, callID string) (host domain.UserID, conversationID string, found bool, err error)
}

type Authorizer interface {
	Authorize(ctx context.Context, userID domain.UserID, roomID domain.RoomID) bool
}

// Gate authorizes joins against the membership source. Room keys are
// ambiguous (direct calls use the call id, group calls the conversation id),
// so the gate probes all membership relations in order and admits on the
// first match.
type Gate struct {
	src MembershipSource
}

func NewGate(src MembershipSource) *Gate {
	return &Gate{src: src}
}

func (g *Gate) Authorize(ctx context.Context, userID domain.UserID, roomID domain.RoomID) bool {
	key := string(roomID)

	ok, err := g.src.IsCallParticipant(ctx, key, userID)
	if err != nil {
		g.deny(userID, roomID, "call participant lookup", err)
		return false
	}
	if ok {
		return true
	}

	ok, err = g.src.IsConversationParticipant(ctx, key, userID)
	if err != nil {
		g.deny(userID, roomID, "conversation participant lookup", err)
		return false
	}
	if ok {
		return true
	}

	host, convID, found, err := g.src.CallInfo(ctx, key)
	if err != nil {
		g.deny(userID, roomID, "call lookup", err)
		return false
	}
	if found {
		if host == userID {
			return true
		}
		if convID != "" {
			ok, err = g.src.IsConversationParticipant(ctx, convID, userID)
			if err != nil {
				g.deny(userID, roomID, "host conversation lookup", err)
				return false
			}
			if ok {
				return true
			}
		}
	}

	log.Warn().Str("module", "auth").Str("user", string(userID)).
		Str("room", string(roomID)).Msg("join denied: no membership record")
	return false
}

func (g *Gate) deny(userID domain.UserID, roomID domain.RoomID, stage string, err error) {
	log.Error().Err(err).Str("module", "auth").Str("user", string(userID)).
		Str("room", string(roomID)).Str("stage", stage).Msg("join denied: lookup failed")
}
