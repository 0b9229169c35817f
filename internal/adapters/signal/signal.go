package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Shuffle/internal/app/orch"
	"github.com/dkeye/Shuffle/internal/core"
	"github.com/dkeye/Shuffle/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

type Options struct {
	ReadLimit  int64
	PingPeriod time.Duration
	PongWait   time.Duration
	WriteWait  time.Duration
	SendBuffer int

	// JoinLimiter bounds join attempts per client token; nil disables it.
	JoinLimiter *JoinRateLimiter
	// SignalRate and SignalBurst bound relayed signals per connection;
	// a zero rate disables the limit.
	SignalRate  rate.Limit
	SignalBurst int
}

func (o *Options) withDefaults() {
	if o.ReadLimit <= 0 {
		o.ReadLimit = 32768
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = o.PongWait * 9 / 10
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 5 * time.Second
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 32
	}
}

type SignalWSController struct {
	Orch *orch.Orchestrator
	opts Options
}

func NewSignalWSController(o *orch.Orchestrator, opts Options) *SignalWSController {
	opts.withDefaults()
	return &SignalWSController{
		Orch: o,
		opts: opts,
	}
}

// WSConn is an indirection over *websocket.Conn to ease testing.
type WSConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(mt int, data []byte) error
	SetWriteDeadline(t time.Time) error
	SetReadDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	Close() error
}

type WsSignalConn struct {
	conn    WSConn
	send    chan core.Frame
	limiter *rate.Limiter
	token   string

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(conn WSConn, buffer int, token string, limit rate.Limit, burst int) *WsSignalConn {
	c := &WsSignalConn{
		conn:  conn,
		send:  make(chan core.Frame, buffer),
		token: token,
	}
	if limit > 0 {
		c.limiter = rate.NewLimiter(limit, burst)
	}
	return c
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnectionClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// allowSignal reports whether another relayed signal fits the budget.
func (c *WsSignalConn) allowSignal() bool {
	return c.limiter == nil || c.limiter.Allow()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and serves one participant connection
// until it closes. Every connection gets a fresh participant identity.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	token := c.GetString("client_token")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	user, err := domain.NewUser("guest")
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("new user")
		_ = ws.Close()
		return
	}
	sid := core.SessionID(user.ID)
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("client", token).Msg("new WS connection")

	conn := newWsSignalConn(ws, ctl.opts.SendBuffer, token, ctl.opts.SignalRate, ctl.opts.SignalBurst)
	sess := core.NewMemberSession(domain.NewMember(user), conn)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Registry.BindSignal(sid, sess, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}
