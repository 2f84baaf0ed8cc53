package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Convo/internal/app"
	"github.com/dkeye/Convo/internal/config"
	"github.com/dkeye/Convo/internal/core"
	"github.com/dkeye/Convo/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

// Settings are the per-connection transport limits.
type Settings struct {
	ReadLimit  int64
	PingPeriod time.Duration
	PongWait   time.Duration
	WriteWait  time.Duration
	SendBuffer int
}

func SettingsFrom(cfg *config.Config) Settings {
	return Settings{
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		PongWait:   cfg.PongWait,
		WriteWait:  cfg.WriteWait,
		SendBuffer: cfg.SendBuffer,
	}
}

type SignalWSController struct {
	relay    *app.Relay
	settings Settings
	upgrader websocket.Upgrader
}

// NewSignalWSController builds the /ws handler. checkOrigin decides which
// browser origins may upgrade.
func NewSignalWSController(relay *app.Relay, settings Settings, checkOrigin func(r *http.Request) bool) *SignalWSController {
	return &SignalWSController{
		relay:    relay,
		settings: settings,
		upgrader: websocket.Upgrader{CheckOrigin: checkOrigin},
	}
}

// WsSignalConn is one upgraded client. Frames are queued without blocking and
// written by the connection's own write pump.
type WsSignalConn struct {
	id   domain.ConnectionID
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) ID() domain.ConnectionID { return c.id }

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

// Close may be called from any goroutine, any number of times. The read pump
// notices and runs the relay cleanup.
func (c *WsSignalConn) Close() {
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

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	client := c.GetString("client_token")

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("client", client).Msg("ws upgrade")
		return
	}

	conn := &WsSignalConn{
		id:   domain.NewConnectionID(),
		conn: ws,
		send: make(chan core.Frame, ctl.settings.SendBuffer),
	}
	log.Info().Str("module", "signal").Str("conn", string(conn.id)).Str("client", client).Str("remote", c.Request.RemoteAddr).Msg("new WS connection")

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, conn)
}
