package realtime

import (
	"time"

	"github.com/fasthttp/websocket"
	"github.com/snapcopy/api/data/events"
	"github.com/snapcopy/api/internal/global"
	"github.com/valyala/fasthttp"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Server upgrades requests to realtime connections
type Server struct {
	gctx     global.Context
	router   *Router
	upgrader websocket.FastHTTPUpgrader
}

func New(gctx global.Context, router *Router) *Server {
	return &Server{
		gctx:   gctx,
		router: router,
		upgrader: websocket.FastHTTPUpgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(ctx *fasthttp.RequestCtx) bool {
				return true
			},
		},
	}
}

func (s *Server) Router() *Router {
	return s.router
}

// Upgrade takes over the request. A non-zero actor binds the connection right away,
// otherwise the client has to identify first.
func (s *Server) Upgrade(ctx *fasthttp.RequestCtx, actor primitive.ObjectID) error {
	cfg := s.gctx.Config().Realtime

	return s.upgrader.Upgrade(ctx, func(ws *websocket.Conn) {
		if cfg.MaxMessageSize > 0 {
			ws.SetReadLimit(cfg.MaxMessageSize)
		}

		conn := newConn(s.gctx, ws, time.Duration(cfg.HeartbeatInterval)*time.Millisecond, cfg.SendBuffer)

		s.serve(conn, actor)
	})
}

func (s *Server) serve(conn *Conn, actor primitive.ObjectID) {
	inst := s.gctx.Inst()

	if inst.Prometheus != nil {
		inst.Prometheus.ConnectionOpened()
		defer inst.Prometheus.ConnectionClosed()
	}

	defer s.router.Disconnect(conn)

	if !actor.IsZero() {
		conn.Bind(actor)
	}

	pumpDone := make(chan struct{})

	go func() {
		defer close(pumpDone)

		conn.writePump()
	}()

	conn.greet()

	if id, ok := conn.Actor(); ok {
		s.router.presences.Register(id, conn)
	}

	zap.S().Debugw("realtime connection opened",
		"session_id", conn.SessionID(),
	)

	conn.readLoop(func(data []byte) {
		s.router.Handle(conn.ctx, conn, data)
	})

	// no-op unless the process is shutting down
	conn.Close(events.CloseCodeRestart, events.CloseCodeRestart.String())
	<-pumpDone

	zap.S().Debugw("realtime connection closed",
		"session_id", conn.SessionID(),
	)
}
