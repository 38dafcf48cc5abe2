package signal

import (
	"github.com/driftapp/callrelay/internal/domain"
)

// SDP payloads (offer/answer) are forwarded verbatim to a single target; the
// relay never parses the session description.
func (ctl *Controller) relaySDP(sess *session, env envelope) {
	ctl.registry.SendTo(sess.roomID, domain.UserID(env.TargetUserID), encode(sdpOut{
		Type:       env.Type,
		SDP:        env.SDP,
		FromUserID: sess.userID,
	}))
}

func (ctl *Controller) relayCandidate(sess *session, env envelope) {
	ctl.registry.SendTo(sess.roomID, domain.UserID(env.TargetUserID), encode(candidateOut{
		Type:       typeICECandidate,
		Candidate:  *env.Candidate,
		FromUserID: sess.userID,
	}))
}

// Media state goes to everyone else in the room; the sender already knows.
func (ctl *Controller) relayMediaState(sess *session, env envelope) {
	ctl.registry.Broadcast(sess.roomID, sess.userID, encode(mediaStateOut{
		Type:       typeMediaStateChanged,
		MediaState: env.mediaState(),
		FromUserID: sess.userID,
	}))
}

// Chat goes to the whole room including the sender, so every client renders
// the same transcript from the same event stream.
func (ctl *Controller) relayChat(sess *session, env envelope) {
	ctl.registry.Broadcast(sess.roomID, "", encode(chatOut{
		Type:       typeChatMessage,
		Message:    env.Message,
		Timestamp:  env.Timestamp,
		FromUserID: sess.userID,
	}))
}
