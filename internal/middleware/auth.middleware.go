package middleware

import (
	"strings"

	"github.com/seventv/common/errors"
	"github.com/seventv/common/utils"
	"github.com/snapcopy/api/internal/constant"
	"github.com/snapcopy/api/internal/global"
	"github.com/snapcopy/api/internal/svc/auth"
	"github.com/valyala/fasthttp"
)

// Auth identifies the requester from the auth cookie or a bearer token.
// Requests without credentials pass through anonymous.
func Auth(gctx global.Context) Middleware {
	return func(ctx *fasthttp.RequestCtx) errors.APIError {
		token := utils.B2S(ctx.Request.Header.Cookie(auth.COOKIE_AUTH))
		if token == "" {
			// no token from cookie
			// parse token from header
			h := utils.B2S(ctx.Request.Header.Peek("Authorization"))
			if len(h) == 0 {
				return nil
			}

			s := strings.Split(h, "Bearer ")
			if len(s) != 2 {
				return errors.ErrUnauthorized().SetDetail("Bad Authorization Header")
			}

			token = s[1]
		}

		userID, err := gctx.Inst().Auth.Identify(token)
		if err != nil {
			if e, ok := err.(errors.APIError); ok {
				return e
			}

			return errors.ErrUnauthorized().SetDetail(err.Error())
		}

		ctx.SetUserValue(string(constant.UserKey), userID)
		ctx.Response.Header.Set("X-Actor-ID", userID.Hex())

		return nil
	}
}
