package app

import "github.com/driftapp/callrelay/internal/domain"

type BackpressureAction int

const (
	// DropFrame keeps the member and loses the frame. The relay is
	// best-effort, so this is the default.
	DropFrame BackpressureAction = iota
	// CloseSlow closes the stalled member's transport; its normal
	// disconnect cleanup then removes it from the room.
	CloseSlow
)

// Policy decides what happens to a member whose outbound queue was full
// during a relay send.
type Policy interface {
	OnBackpressure(room domain.RoomID, member domain.UserID) BackpressureAction
}

type DropPolicy struct{}

func (DropPolicy) OnBackpressure(domain.RoomID, domain.UserID) BackpressureAction {
	return DropFrame
}

type ClosePolicy struct{}

func (ClosePolicy) OnBackpressure(domain.RoomID, domain.UserID) BackpressureAction {
	return CloseSlow
}
