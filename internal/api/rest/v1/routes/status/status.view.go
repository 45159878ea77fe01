package status

import (
	"github.com/snapcopy/api/internal/api/realtime"
	"github.com/snapcopy/api/internal/api/rest/middleware"
	"github.com/snapcopy/api/internal/api/rest/rest"
	"github.com/snapcopy/api/internal/global"
)

type viewRoute struct {
	Ctx global.Context
}

func newView(gctx global.Context) rest.Route {
	return &viewRoute{gctx}
}

func (r *viewRoute) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:      "/view/{item.id}",
		Method:   rest.POST,
		Children: []rest.Route{},
		Middleware: []rest.Middleware{
			middleware.Auth(),
			middleware.RestLimit(r.Ctx),
		},
	}
}

// @Summary View Status Item
// @Description Marks a status item as seen by the requester
// @Param itemID path string true "ID of the status item"
// @Tags status
// @Produce json
// @Success 200 {object} model.StatusModel
// @Router /status/view/{item.id} [post]
func (r *viewRoute) Handler(ctx *rest.Ctx) rest.APIError {
	actor, _ := ctx.GetActor()

	itemID, err := ctx.Param("item.id").ObjectID()
	if err != nil {
		return toAPIError(err)
	}

	res, err := r.Ctx.Inst().Statuses.RecordView(ctx, itemID, actor)
	if err != nil {
		return toAPIError(err)
	}

	realtime.PublishView(ctx, r.Ctx.Inst().Events, res, actor)

	owner, err := r.Ctx.Inst().Loaders.UserByID().Load(res.Status.UserID)
	if err != nil {
		ctx.Log().Warnw("status owner could not be loaded",
			"user_id", res.Status.UserID.Hex(),
			"error", err,
		)
	}

	return ctx.JSON(rest.OK, r.Ctx.Inst().Modelizer.Status(res.Status, owner))
}
