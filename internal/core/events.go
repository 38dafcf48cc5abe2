package core

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/driftapp/callrelay/internal/domain"
)

// Membership events emitted by a room itself. Relay payloads (offer, answer,
// chat and friends) are built by the signal adapter; rooms only announce who
// is in them.
type (
	RoomJoinedEvent struct {
		Type             string          `json:"type"`
		RoomID           domain.RoomID   `json:"roomId"`
		Participants     []domain.UserID `json:"participants"`
		ParticipantCount int             `json:"participantCount"`
	}

	UserJoinedEvent struct {
		Type             string        `json:"type"`
		UserID           domain.UserID `json:"userId"`
		ParticipantCount int           `json:"participantCount"`
	}

	UserLeftEvent struct {
		Type             string        `json:"type"`
		UserID           domain.UserID `json:"userId"`
		ParticipantCount int           `json:"participantCount"`
	}
)

const (
	eventRoomJoined = "room-joined"
	eventUserJoined = "user-joined"
	eventUserLeft   = "user-left"
)

// Encode marshals an event payload into a Frame. Event structs are plain
// data, so a marshal failure is a programming error; it is logged and an
// empty frame returned rather than panicking mid-relay.
func Encode(v any) Frame {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "core").Msg("encode event")
		return nil
	}
	return b
}
