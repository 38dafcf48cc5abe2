package signal

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/driftapp/callrelay/internal/app"
	"github.com/driftapp/callrelay/internal/auth"
	"github.com/driftapp/callrelay/internal/domain"
)

// Options tune per-connection transport behavior.
type Options struct {
	ReadLimit     int64
	PingPeriod    time.Duration
	PongWait      time.Duration
	WriteWait     time.Duration
	SendQueueSize int
}

func (o Options) withDefaults() Options {
	if o.ReadLimit <= 0 {
		o.ReadLimit = 32 * 1024
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingPeriod <= 0 {
		// Must fire before the peer's pong deadline.
		o.PingPeriod = o.PongWait * 9 / 10
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 5 * time.Second
	}
	if o.SendQueueSize <= 0 {
		o.SendQueueSize = 64
	}
	return o
}

// Controller serves the signaling WebSocket endpoint: one read pump and one
// write pump per connection, with all room state behind the registry.
type Controller struct {
	registry *app.Registry
	gate     auth.Authorizer
	tokens   *auth.TokenVerifier // nil when no transport credential is configured
	limiter  *JoinRateLimiter    // nil disables join throttling
	opts     Options
	upgrader websocket.Upgrader
}

func NewController(reg *app.Registry, gate auth.Authorizer, tokens *auth.TokenVerifier, limiter *JoinRateLimiter, opts Options) *Controller {
	return &Controller{
		registry: reg,
		gate:     gate,
		tokens:   tokens,
		limiter:  limiter,
		opts:     opts.withDefaults(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

type sessionState int

const (
	stateUnjoined sessionState = iota
	stateJoined
	stateClosed
)

// session is per-socket state: which room and identity this connection
// holds, if any. Touched only by the connection's own read pump.
type session struct {
	connID  string
	subject domain.UserID // pinned from the transport credential, may be empty
	state   sessionState
	roomID  domain.RoomID
	userID  domain.UserID
}

// HandleWS upgrades the request and runs the connection until it closes.
func (ctl *Controller) HandleWS(c *gin.Context) {
	var subject domain.UserID
	if cred := bearerToken(c.Request); cred != "" {
		if ctl.tokens == nil {
			// A credential we cannot verify is a credential we reject.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token verification not configured"})
			return
		}
		sub, err := ctl.tokens.Subject(cred)
		if err != nil {
			log.Warn().Err(err).Str("module", "signal").Msg("rejected transport credential")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		subject = sub
	}

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	sess := &session{connID: uuid.NewString(), subject: subject}
	conn := newWSConn(sess.connID, ws, ctl.opts.SendQueueSize)
	log.Info().Str("module", "signal").Str("conn", sess.connID).
		Str("subject", string(subject)).Msg("connection open")

	go ctl.writePump(conn)
	ctl.readPump(c.Request.Context(), sess, conn)
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return tok
		}
	}
	return r.URL.Query().Get("token")
}
