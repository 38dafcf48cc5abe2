package signal

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// writePump is the single writer for its socket. It drains the bounded send
// queue and keeps the transport alive with pings; when either fails the
// connection is closed, which unblocks the read pump.
func (ctl *Controller) writePump(c *wsConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				// Queue closed by shutdown; buffered frames were
				// already drained by this receive loop.
				return
			}
			if err := c.writeFrame(data, ctl.opts.WriteWait); err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("conn", c.id).Msg("write failed")
				return
			}
		case <-ticker.C:
			if err := c.writeControl(websocket.PingMessage, ctl.opts.WriteWait); err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("conn", c.id).Msg("ping failed")
				return
			}
		}
	}
}

// readPump reads inbound envelopes one at a time in arrival order. Cleanup is
// deferred off loop exit, so abrupt transport failure takes the same path as
// a graceful goodbye.
func (ctl *Controller) readPump(ctx context.Context, sess *session, c *wsConn) {
	defer func() {
		if sess.state == stateJoined {
			ctl.registry.Leave(sess.roomID, sess.userID, c)
		}
		sess.state = stateClosed
		c.shutdown()
		log.Info().Str("module", "signal").Str("conn", sess.connID).Msg("connection closed")
	}()

	c.conn.SetReadLimit(ctl.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Str("module", "signal").Str("conn", sess.connID).Msg("read error")
			}
			return
		}
		if closed := ctl.dispatch(ctx, sess, c, data); closed {
			return
		}
	}
}

// dispatch routes one inbound envelope. Returns true when the handler closed
// the session (terminal state, stop reading).
func (ctl *Controller) dispatch(ctx context.Context, sess *session, c *wsConn, data []byte) bool {
	env, err := parseEnvelope(data)
	if err != nil {
		// Malformed input is non-fatal: log, drop, keep the connection.
		log.Warn().Err(err).Str("module", "signal").Str("conn", sess.connID).Msg("bad envelope")
		return false
	}

	if env.Type == typeJoin {
		return ctl.handleJoin(ctx, sess, c, env)
	}

	// Any signaling before a successful join has no room context: no-op.
	if sess.state != stateJoined {
		log.Debug().Str("module", "signal").Str("conn", sess.connID).
			Str("type", string(env.Type)).Msg("ignored pre-join message")
		return false
	}

	switch env.Type {
	case typeOffer, typeAnswer:
		ctl.relaySDP(sess, env)
	case typeICECandidate:
		ctl.relayCandidate(sess, env)
	case typeMediaState:
		ctl.relayMediaState(sess, env)
	case typeChatMessage:
		ctl.relayChat(sess, env)
	case typeLeave:
		ctl.handleLeave(sess, c)
	case typeCallEnded:
		ctl.handleCallEnded(sess, c)
	}
	return false
}

func (ctl *Controller) sendError(c *wsConn, msg string) {
	_ = c.TrySend(encode(errorOut{Type: "error", Error: msg}))
}
