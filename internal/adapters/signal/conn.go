package signal

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/driftapp/callrelay/internal/core"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// wsConn is the gorilla-backed core.PeerLink. All outbound traffic funnels
// through the bounded send channel drained by a single write pump, which
// keeps frames from interleaving and keeps TrySend non-blocking.
type wsConn struct {
	id   string
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWSConn(id string, ws *websocket.Conn, queueSize int) *wsConn {
	return &wsConn{
		id:   id,
		conn: ws,
		send: make(chan core.Frame, queueSize),
	}
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
		return nil
	default:
		return ErrBackpressure
	}
}

// Close tears the connection down immediately: no new frames are accepted
// and the transport is closed under the caller's feet.
func (c *wsConn) Close() {
	c.markClosed()
	_ = c.conn.Close()
}

// shutdown stops accepting frames but lets the write pump flush what is
// already queued (a final error envelope, typically); the pump closes the
// transport when it drains the channel.
func (c *wsConn) shutdown() {
	c.markClosed()
}

func (c *wsConn) markClosed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *wsConn) writeFrame(f core.Frame, deadline time.Duration) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(deadline)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, f)
}

func (c *wsConn) writeControl(messageType int, deadline time.Duration) error {
	return c.conn.WriteControl(messageType, nil, time.Now().Add(deadline))
}
