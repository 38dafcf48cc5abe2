package signal

import (
	"encoding/json"
	"fmt"

	"github.com/pion/webrtc/v4"

	"github.com/driftapp/callrelay/internal/core"
	"github.com/driftapp/callrelay/internal/domain"
)

func encode(v any) core.Frame { return core.Encode(v) }

type messageType string

const (
	typeJoin         messageType = "join"
	typeOffer        messageType = "offer"
	typeAnswer       messageType = "answer"
	typeICECandidate messageType = "ice-candidate"
	typeMediaState   messageType = "media-state"
	typeChatMessage  messageType = "chat-message"
	typeLeave        messageType = "leave"
	typeCallEnded    messageType = "call-ended"

	// outbound only
	typeMediaStateChanged messageType = "media-state-changed"
)

// envelope is the inbound wire message. One struct with per-type validation
// rather than a struct per type; the discriminator decides which fields are
// required. Unknown extra fields are tolerated.
type envelope struct {
	Type messageType `json:"type"`

	// join
	RoomID string `json:"roomId,omitempty"`
	UserID string `json:"userId,omitempty"`

	// offer / answer / ice-candidate
	TargetUserID string                   `json:"targetUserId,omitempty"`
	SDP          string                   `json:"sdp,omitempty"`
	Candidate    *webrtc.ICECandidateInit `json:"candidate,omitempty"`

	// media-state; pointers so a missing field is distinguishable from false
	IsMuted         *bool `json:"isMuted,omitempty"`
	IsVideoOn       *bool `json:"isVideoOn,omitempty"`
	IsScreenSharing *bool `json:"isScreenSharing,omitempty"`
	IsHandRaised    *bool `json:"isHandRaised,omitempty"`

	// chat-message
	Message   string `json:"message,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`

	// Clients may set this but it is never trusted; the relay overwrites
	// the sender identity on every forwarded payload.
	FromUserID string `json:"fromUserId,omitempty"`
}

func parseEnvelope(data []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return envelope{}, err
	}
	if err := env.validate(); err != nil {
		return envelope{}, err
	}
	return env, nil
}

func (e envelope) validate() error {
	switch e.Type {
	case typeJoin:
		if err := domain.RoomID(e.RoomID).Validate(); err != nil {
			return fmt.Errorf("join: %w", err)
		}
		if err := domain.UserID(e.UserID).Validate(); err != nil {
			return fmt.Errorf("join: %w", err)
		}
	case typeOffer, typeAnswer:
		if e.TargetUserID == "" {
			return fmt.Errorf("%s: missing targetUserId", e.Type)
		}
		if e.SDP == "" {
			return fmt.Errorf("%s: missing sdp", e.Type)
		}
	case typeICECandidate:
		if e.TargetUserID == "" {
			return fmt.Errorf("ice-candidate: missing targetUserId")
		}
		if e.Candidate == nil || e.Candidate.Candidate == "" {
			return fmt.Errorf("ice-candidate: missing candidate")
		}
	case typeMediaState:
		if e.IsMuted == nil || e.IsVideoOn == nil || e.IsScreenSharing == nil || e.IsHandRaised == nil {
			return fmt.Errorf("media-state: missing state fields")
		}
	case typeChatMessage:
		if e.Message == "" {
			return fmt.Errorf("chat-message: missing message")
		}
		if e.Timestamp <= 0 {
			return fmt.Errorf("chat-message: missing timestamp")
		}
	case typeLeave, typeCallEnded:
		// no payload
	default:
		return fmt.Errorf("unknown message type %q", e.Type)
	}
	return nil
}

func (e envelope) mediaState() domain.MediaState {
	return domain.MediaState{
		IsMuted:         *e.IsMuted,
		IsVideoOn:       *e.IsVideoOn,
		IsScreenSharing: *e.IsScreenSharing,
		IsHandRaised:    *e.IsHandRaised,
	}
}

// Outbound relay payloads. The fromUserId on each is always the
// authenticated sender, never a client-supplied value.
type (
	sdpOut struct {
		Type       messageType   `json:"type"`
		SDP        string        `json:"sdp"`
		FromUserID domain.UserID `json:"fromUserId"`
	}

	candidateOut struct {
		Type       messageType             `json:"type"`
		Candidate  webrtc.ICECandidateInit `json:"candidate"`
		FromUserID domain.UserID           `json:"fromUserId"`
	}

	mediaStateOut struct {
		Type messageType `json:"type"`
		domain.MediaState
		FromUserID domain.UserID `json:"fromUserId"`
	}

	chatOut struct {
		Type       messageType   `json:"type"`
		Message    string        `json:"message"`
		Timestamp  int64         `json:"timestamp"`
		FromUserID domain.UserID `json:"fromUserId"`
	}

	callEndedOut struct {
		Type       messageType   `json:"type"`
		FromUserID domain.UserID `json:"fromUserId"`
	}

	errorOut struct {
		Type  string `json:"type"`
		Error string `json:"error"`
	}
)
