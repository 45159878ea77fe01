package chat

import (
	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/internal/api/rest/middleware"
	"github.com/snapcopy/api/internal/api/rest/rest"
	"github.com/snapcopy/api/internal/global"
)

type historyRoute struct {
	Ctx global.Context
}

func newHistory(gctx global.Context) rest.Route {
	return &historyRoute{gctx}
}

func (r *historyRoute) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:      "/history/{user.id}",
		Method:   rest.GET,
		Children: []rest.Route{},
		Middleware: []rest.Middleware{
			middleware.Auth(),
			middleware.RestLimit(r.Ctx),
		},
	}
}

// @Summary Chat History
// @Description Messages exchanged with a user, oldest first
// @Param userID path string true "ID of the other user"
// @Tags chat
// @Produce json
// @Success 200 {array} model.MessageModel
// @Router /chat/history/{user.id} [get]
func (r *historyRoute) Handler(ctx *rest.Ctx) rest.APIError {
	actor, _ := ctx.GetActor()

	peer, err := ctx.Param("user.id").ObjectID()
	if err != nil {
		return toAPIError(err)
	}

	result, err := r.Ctx.Inst().Messages.History(ctx, actor, peer)
	if err != nil {
		return toAPIError(err)
	}

	return ctx.JSON(rest.OK, result)
}

func toAPIError(err error) rest.APIError {
	if e, ok := err.(errors.APIError); ok {
		return e
	}

	return errors.ErrInternalServerError().SetDetail(err.Error())
}
