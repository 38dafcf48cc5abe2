package signal

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/driftapp/callrelay/internal/auth"
	"github.com/driftapp/callrelay/internal/domain"
)

// handleJoin authorizes and admits the connection. Returns true when the
// session was closed (auth failure is terminal for the connection).
func (ctl *Controller) handleJoin(ctx context.Context, sess *session, c *wsConn, env envelope) bool {
	roomID := domain.RoomID(env.RoomID)
	userID := domain.UserID(env.UserID)

	if ctl.limiter != nil && !ctl.limiter.Allow(userID) {
		log.Warn().Str("module", "signal").Str("conn", sess.connID).
			Str("user", string(userID)).Msg("join throttled")
		ctl.sendError(c, "too many join attempts")
		return false
	}

	// The transport credential, when present, pins the identity this
	// connection may claim; a mismatch closes the connection regardless of
	// room membership.
	if err := auth.CheckClaim(sess.subject, userID); err != nil {
		log.Warn().Str("module", "signal").Str("conn", sess.connID).
			Str("claimed", string(userID)).Str("subject", string(sess.subject)).
			Msg("identity claim rejected")
		ctl.sendError(c, "not authorized")
		ctl.closeSession(sess, c)
		return true
	}

	if !ctl.gate.Authorize(ctx, userID, roomID) {
		ctl.sendError(c, "not authorized")
		ctl.closeSession(sess, c)
		return true
	}

	// A join while already joined moves the connection: leave the old room
	// (with its user-left fanout) before entering the new one.
	if sess.state == stateJoined {
		ctl.registry.Leave(sess.roomID, sess.userID, c)
	}

	ctl.registry.Join(roomID, userID, c)
	sess.state = stateJoined
	sess.roomID = roomID
	sess.userID = userID

	log.Info().Str("module", "signal").Str("conn", sess.connID).
		Str("room", string(roomID)).Str("user", string(userID)).Msg("joined")
	return false
}

func (ctl *Controller) handleLeave(sess *session, c *wsConn) {
	ctl.registry.Leave(sess.roomID, sess.userID, c)
	sess.state = stateUnjoined
	sess.roomID = ""
	sess.userID = ""
}

func (ctl *Controller) handleCallEnded(sess *session, c *wsConn) {
	ctl.registry.Broadcast(sess.roomID, sess.userID, encode(callEndedOut{
		Type:       typeCallEnded,
		FromUserID: sess.userID,
	}))
	ctl.handleLeave(sess, c)
}

// closeSession marks the session terminal. The read pump's deferred cleanup
// drains the send queue before closing, so the error frame still goes out.
func (ctl *Controller) closeSession(sess *session, c *wsConn) {
	if sess.state == stateJoined {
		ctl.registry.Leave(sess.roomID, sess.userID, c)
	}
	sess.state = stateClosed
}
