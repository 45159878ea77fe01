package status

import (
	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/internal/api/rest/middleware"
	"github.com/snapcopy/api/internal/api/rest/rest"
	"github.com/snapcopy/api/internal/global"
)

type Route struct {
	Ctx global.Context
}

func New(gctx global.Context) rest.Route {
	return &Route{gctx}
}

func (r *Route) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/status",
		Method: rest.GET,
		Children: []rest.Route{
			newWatch(r.Ctx),
			newView(r.Ctx),
			newCreate(r.Ctx),
			newFile(r.Ctx),
		},
		Middleware: []rest.Middleware{
			middleware.Auth(),
		},
	}
}

func (r *Route) Handler(ctx *rest.Ctx) rest.APIError {
	return errors.ErrUnknownRoute()
}

func toAPIError(err error) rest.APIError {
	if e, ok := err.(errors.APIError); ok {
		return e
	}

	return errors.ErrInternalServerError().SetDetail(err.Error())
}
