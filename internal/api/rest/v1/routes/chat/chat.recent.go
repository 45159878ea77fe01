package chat

import (
	"github.com/snapcopy/api/internal/api/rest/middleware"
	"github.com/snapcopy/api/internal/api/rest/rest"
	"github.com/snapcopy/api/internal/global"
)

type recentRoute struct {
	Ctx global.Context
}

func newRecent(gctx global.Context) rest.Route {
	return &recentRoute{gctx}
}

func (r *recentRoute) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:      "/recent",
		Method:   rest.GET,
		Children: []rest.Route{},
		Middleware: []rest.Middleware{
			middleware.Auth(),
			middleware.RestLimit(r.Ctx),
		},
	}
}

// @Summary Recent Conversations
// @Description The latest message and unread count of every conversation of the requester
// @Tags chat
// @Produce json
// @Success 200 {array} model.ConversationModel
// @Router /chat/recent [get]
func (r *recentRoute) Handler(ctx *rest.Ctx) rest.APIError {
	actor, _ := ctx.GetActor()

	result, err := r.Ctx.Inst().Messages.Recent(ctx, actor)
	if err != nil {
		return toAPIError(err)
	}

	return ctx.JSON(rest.OK, result)
}
