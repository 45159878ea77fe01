package ws

import (
	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/internal/api/realtime"
	"github.com/snapcopy/api/internal/api/rest/middleware"
	"github.com/snapcopy/api/internal/api/rest/rest"
	"github.com/snapcopy/api/internal/global"
)

type Route struct {
	Ctx global.Context
	rt  *realtime.Server
}

func New(gctx global.Context, rt *realtime.Server) rest.Route {
	return &Route{gctx, rt}
}

func (r *Route) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:      "/ws",
		Method:   rest.GET,
		Children: []rest.Route{},
		Middleware: []rest.Middleware{
			middleware.RestLimit(r.Ctx),
		},
	}
}

// @Summary Realtime Connection
// @Description Upgrades to a websocket. An identity from the request is bound right away, otherwise the client sends identify.
// @Tags realtime
// @Router /ws [get]
func (r *Route) Handler(ctx *rest.Ctx) rest.APIError {
	if r.rt == nil {
		return errors.ErrMissingInternalDependency().SetDetail("Realtime is not available")
	}

	actor, _ := ctx.GetActor()

	if err := r.rt.Upgrade(ctx.RequestCtx, actor); err != nil {
		ctx.Log().Debugw("websocket upgrade failed",
			"error", err,
		)

		return errors.ErrInvalidRequest().SetDetail("Upgrade failed")
	}

	return nil
}
