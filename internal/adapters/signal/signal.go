package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/dronerelay/internal/app/orch"
	"github.com/dkeye/dronerelay/internal/core"
	"github.com/dkeye/dronerelay/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

type Options struct {
	ReadLimit    int64
	PingPeriod   time.Duration
	WriteTimeout time.Duration
	SendBuffer   int
	// Limiter caps inbound messages per session; nil disables it.
	Limiter *RateLimiter
}

func (o *Options) applyDefaults() {
	if o.ReadLimit <= 0 {
		o.ReadLimit = 32768
	}
	if o.PingPeriod <= 0 {
		o.PingPeriod = 54 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 5 * time.Second
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 64
	}
}

// pongWait is how long a peer may stay silent; pings go out every
// PingPeriod, which must be shorter.
func (o Options) pongWait() time.Duration { return o.PingPeriod * 10 / 9 }

type DroneWSController struct {
	Orch *orch.Orchestrator
	opts Options
}

func NewDroneWSController(o *orch.Orchestrator, opts Options) *DroneWSController {
	opts.applyDefaults()
	return &DroneWSController{Orch: o, opts: opts}
}

// WsConn is one client websocket. Writes go through a buffered queue
// drained by writePump, so a message is either queued or rejected
// without blocking the broadcaster.
type WsConn struct {
	conn *websocket.Conn
	send chan core.Message

	mu     sync.RWMutex
	closed bool
}

func newWsConn(ws *websocket.Conn, buffer int) *WsConn {
	return &WsConn{conn: ws, send: make(chan core.Message, buffer)}
}

func (c *WsConn) TrySend(m core.Message) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- m:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleDrone upgrades the request and binds the new session to the
// relay. The session lives until the socket closes or ctx ends.
func (ctl *DroneWSController) HandleDrone(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(uuid.NewString())
	token := c.GetString("client_token")
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("client", token).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := newWsConn(ws, ctl.opts.SendBuffer)
	meta := domain.NewClient(token, c.Request.RemoteAddr)
	sess := core.NewMemberSession(meta, conn)

	ctx, cancel := context.WithCancel(ctx)
	context.AfterFunc(ctx, conn.Close)
	ctl.Orch.OnConnect(sid, sess)

	go ctl.writePump(ctx, sid, conn)
	go ctl.readPump(ctx, cancel, sid, conn)
}
