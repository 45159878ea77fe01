package status

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/data/structures"
	"github.com/snapcopy/api/internal/api/realtime"
	"github.com/snapcopy/api/internal/api/rest/middleware"
	"github.com/snapcopy/api/internal/api/rest/rest"
	"github.com/snapcopy/api/internal/global"
	"github.com/snapcopy/api/internal/svc/statuses"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type createRoute struct {
	Ctx global.Context
}

func newCreate(gctx global.Context) rest.Route {
	return &createRoute{gctx}
}

func (r *createRoute) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:      "/upload",
		Method:   rest.POST,
		Children: []rest.Route{},
		Middleware: []rest.Middleware{
			middleware.Auth(),
			middleware.RestLimit(r.Ctx),
		},
	}
}

type createBody struct {
	Items []struct {
		Type    structures.StatusItemType `json:"type"`
		URL     string                    `json:"url"`
		Caption string                    `json:"caption"`
	} `json:"items"`
}

// @Summary Post Status
// @Description Publishes a status made of already uploaded media
// @Tags status
// @Accept json
// @Produce json
// @Success 201 {object} model.StatusModel
// @Router /status/upload [post]
func (r *createRoute) Handler(ctx *rest.Ctx) rest.APIError {
	actor, _ := ctx.GetActor()

	var body createBody
	if err := json.Unmarshal(ctx.PostBody(), &body); err != nil {
		return errors.ErrInvalidRequest().SetDetail("Invalid body: %s", err.Error())
	}

	items := make([]statuses.ItemInput, len(body.Items))
	for i, it := range body.Items {
		items[i] = statuses.ItemInput{
			Type:    it.Type,
			URL:     it.URL,
			Caption: it.Caption,
		}
	}

	st, err := r.Ctx.Inst().Statuses.Create(ctx, actor, items)
	if err != nil {
		return toAPIError(err)
	}

	realtime.PublishStatus(ctx, r.Ctx.Inst().Statuses, r.Ctx.Inst().Events, st)

	return ctx.JSON(rest.Created, st)
}
