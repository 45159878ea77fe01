package routes

import (
	"time"

	"github.com/snapcopy/api/internal/api/realtime"
	"github.com/snapcopy/api/internal/api/rest/middleware"
	"github.com/snapcopy/api/internal/api/rest/rest"
	"github.com/snapcopy/api/internal/api/rest/v1/routes/chat"
	"github.com/snapcopy/api/internal/api/rest/v1/routes/status"
	"github.com/snapcopy/api/internal/api/rest/v1/routes/ws"
	"github.com/snapcopy/api/internal/global"
)

var startedAt = time.Now()

type Route struct {
	Ctx global.Context
	rt  *realtime.Server
}

func New(gctx global.Context, rt *realtime.Server) rest.Route {
	return &Route{gctx, rt}
}

func (r *Route) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/v1",
		Method: rest.GET,
		Children: []rest.Route{
			chat.New(r.Ctx),
			status.New(r.Ctx),
			ws.New(r.Ctx, r.rt),
		},
		Middleware: []rest.Middleware{
			middleware.RestLimit(r.Ctx),
		},
	}
}

func (r *Route) Handler(ctx *rest.Ctx) rest.APIError {
	online := 0
	if p := r.Ctx.Inst().Presences; p != nil {
		online = p.Count()
	}

	return ctx.JSON(rest.OK, InfoResponse{
		Name:    "snapcopy-api",
		Version: Version,
		Online:  online,
		Uptime:  int64(time.Since(startedAt) / time.Second),
	})
}

// Version is set at build time
var Version = "dev"

type InfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Online  int    `json:"online"`
	Uptime  int64  `json:"uptime"` // seconds
}
