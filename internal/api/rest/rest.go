package rest

import (
	"fmt"
	"net"
	"time"

	"github.com/fasthttp/router"
	"github.com/seventv/common/utils"
	"github.com/snapcopy/api/internal/api/realtime"
	v1 "github.com/snapcopy/api/internal/api/rest/v1"
	"github.com/snapcopy/api/internal/constant"
	"github.com/snapcopy/api/internal/global"
	"github.com/snapcopy/api/internal/middleware"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

type HttpServer struct {
	listener net.Listener
	router   *router.Router
}

func New(gctx global.Context, rt *realtime.Server) error {
	var err error

	port := gctx.Config().Http.Port
	if port == 0 {
		port = 80
	}

	s := newServer(gctx, rt)

	s.listener, err = net.Listen("tcp", fmt.Sprintf("%s:%d", gctx.Config().Http.Addr, port))
	if err != nil {
		return err
	}

	srv := &fasthttp.Server{
		Handler:                      s.handler(gctx),
		ReadTimeout:                  time.Second * 600,
		IdleTimeout:                  time.Second * 10,
		ReadBufferSize:               int(32 * 1024), // 32KB
		MaxRequestBodySize:           gctx.Config().Limits.MaxUploadBytes + 64*1024,
		DisablePreParseMultipartForm: true,
		CloseOnShutdown:              true,
	}

	// Gracefully exit when the global context is canceled
	go func() {
		<-gctx.Done()

		_ = srv.Shutdown()
	}()

	zap.S().Infow("REST API listening",
		"addr", s.listener.Addr().String(),
	)

	return srv.Serve(s.listener)
}

func newServer(gctx global.Context, rt *realtime.Server) *HttpServer {
	s := &HttpServer{
		router: router.New(),
	}

	s.SetupHandlers()
	s.V1(gctx, rt)

	return s
}

func (s *HttpServer) V1(gctx global.Context, rt *realtime.Server) {
	s.traverseRoutes(v1.API(gctx, rt), s.router)
}

func (s *HttpServer) handler(gctx global.Context) fasthttp.RequestHandler {
	doAuth := middleware.Auth(gctx)
	doCORS := middleware.CORS(gctx)

	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()

		// Add client IP to context
		ip := utils.B2S(ctx.Request.Header.Peek("X-Forwarded-For"))
		if ip == "" {
			ip = ctx.RemoteIP().String()
		}

		ctx.SetUserValue(string(constant.ClientIP), ip)

		defer func() {
			if err := recover(); err != nil {
				ctx.SetStatusCode(fasthttp.StatusInternalServerError)

				zap.S().Errorw("panic in rest request handler",
					"panic", err,
					"status", ctx.Response.StatusCode(),
					"duration", int(time.Since(start)/time.Millisecond),
					"method", utils.B2S(ctx.Method()),
					"path", utils.B2S(ctx.Path()),
					"ip", ip,
					"origin", utils.B2S(ctx.Request.Header.Peek("Origin")),
				)
			} else {
				mills := time.Since(start) / time.Millisecond
				status := ctx.Response.StatusCode()

				logFn := zap.S().Debugw
				if mills >= 500 {
					logFn = zap.S().Infow
				}
				if status >= 500 {
					logFn = zap.S().Errorw
				}

				logFn("rest request",
					"status", status,
					"duration", int(mills),
					"method", utils.B2S(ctx.Method()),
					"path", utils.B2S(ctx.Path()),
					"ip", ip,
					"origin", utils.B2S(ctx.Request.Header.Peek("Origin")),
				)
			}
		}()

		if err := doCORS(ctx); err != nil {
			return
		}

		if ctx.IsOptions() {
			ctx.SetStatusCode(fasthttp.StatusNoContent)
			return
		}

		// Routing
		ctx.Response.Header.Set("Content-Type", "application/json") // default to JSON

		if err := doAuth(ctx); err != nil {
			ctx.Response.Header.Add("X-Auth-Failure", err.Message())
		}

		s.router.Handler(ctx)
	}
}
