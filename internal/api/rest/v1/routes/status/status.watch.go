package status

import (
	"github.com/snapcopy/api/internal/api/rest/middleware"
	"github.com/snapcopy/api/internal/api/rest/rest"
	"github.com/snapcopy/api/internal/global"
)

type watchRoute struct {
	Ctx global.Context
}

func newWatch(gctx global.Context) rest.Route {
	return &watchRoute{gctx}
}

func (r *watchRoute) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:      "/watch",
		Method:   rest.GET,
		Children: []rest.Route{},
		Middleware: []rest.Middleware{
			middleware.Auth(),
			middleware.RestLimit(r.Ctx),
		},
	}
}

// @Summary Watch Statuses
// @Description The requester's own live statuses and those of their friends
// @Tags status
// @Produce json
// @Success 200 {object} model.StatusWatchModel
// @Router /status/watch [get]
func (r *watchRoute) Handler(ctx *rest.Ctx) rest.APIError {
	actor, _ := ctx.GetActor()

	result, err := r.Ctx.Inst().Statuses.Watch(ctx, actor)
	if err != nil {
		return toAPIError(err)
	}

	return ctx.JSON(rest.OK, result)
}
