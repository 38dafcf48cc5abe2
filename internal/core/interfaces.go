package core

import "github.com/driftapp/callrelay/internal/domain"

// Frame is an encoded outbound payload (JSON text on the wire).
type Frame []byte

// PeerLink is the outbound half of a participant's transport.
// Owned by the adapter; the adapter must Close() it. TrySend must never
// block: a slow peer is the policy's problem, not the sender's.
type PeerLink interface {
	TrySend(Frame) error
	Close()
}

// PublishResult reports delivery stats/backpressure to the registry's policy.
type PublishResult struct {
	SentTo  int
	Dropped []domain.UserID
}
