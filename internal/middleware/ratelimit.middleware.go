package middleware

import (
	"strconv"

	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/internal/constant"
	"github.com/snapcopy/api/internal/global"
	"github.com/valyala/fasthttp"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RateLimit applies a limiter bucket per user, or per client address for anonymous requests
func RateLimit(gctx global.Context, bucket string, limit int) Middleware {
	return func(ctx *fasthttp.RequestCtx) errors.APIError {
		var identifier string
		switch t := ctx.UserValue(string(constant.ClientIP)).(type) {
		case string:
			identifier = t
		}

		switch t := ctx.UserValue(string(constant.UserKey)).(type) {
		case primitive.ObjectID:
			identifier = t.Hex()
		}

		if limit <= 0 || identifier == "" || gctx.Inst().Limiter == nil {
			return nil
		}

		remaining, ok := gctx.Inst().Limiter.Test(bucket, identifier)

		ctx.Response.Header.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		ctx.Response.Header.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !ok {
			return errors.ErrRateLimited()
		}

		return nil
	}
}
