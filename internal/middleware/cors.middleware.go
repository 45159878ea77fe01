package middleware

import (
	"strconv"

	"github.com/seventv/common/errors"
	"github.com/seventv/common/utils"
	"github.com/snapcopy/api/internal/global"
	"github.com/valyala/fasthttp"
)

func CORS(gctx global.Context) Middleware {
	return func(ctx *fasthttp.RequestCtx) errors.APIError {
		origin := utils.B2S(ctx.Request.Header.Peek("Origin"))
		if origin == "" {
			return nil
		}

		// cookies are only accepted from whitelisted origins
		allowCredentials := utils.Contains(gctx.Config().Http.Cookie.Whitelist, origin)

		ctx.Response.Header.Set("Access-Control-Allow-Credentials", strconv.FormatBool(allowCredentials))
		ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Cookie")
		ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		ctx.Response.Header.Set("Access-Control-Expose-Headers", "X-Actor-ID, X-Auth-Failure, X-RateLimit-Limit, X-RateLimit-Remaining")
		ctx.Response.Header.Set("Access-Control-Allow-Origin", origin)
		ctx.Response.Header.Set("Vary", "Origin")

		// cache cors
		ctx.Response.Header.Set("Access-Control-Max-Age", "7200")

		return nil
	}
}
