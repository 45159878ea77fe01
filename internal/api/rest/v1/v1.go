package v1

import (
	"github.com/snapcopy/api/internal/api/realtime"
	"github.com/snapcopy/api/internal/api/rest/rest"
	"github.com/snapcopy/api/internal/api/rest/v1/routes"
	"github.com/snapcopy/api/internal/global"
)

func API(gctx global.Context, rt *realtime.Server) rest.Route {
	return routes.New(gctx, rt)
}
