package middleware

import (
	"github.com/snapcopy/api/internal/api/rest/rest"
	"github.com/snapcopy/api/internal/global"
	"github.com/snapcopy/api/internal/middleware"
)

func RateLimit(gctx global.Context, bucket string, limit int) rest.Middleware {
	do := middleware.RateLimit(gctx, bucket, limit)

	return func(ctx *rest.Ctx) rest.APIError {
		return do(ctx.RequestCtx)
	}
}

// RestBucket is the limiter category shared by every REST route
const RestBucket = "rest"

// RestLimit applies the configured per-minute REST quota
func RestLimit(gctx global.Context) rest.Middleware {
	return RateLimit(gctx, RestBucket, gctx.Config().Limits.RestPerMinute)
}
