package middleware

import (
	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/internal/api/rest/rest"
)

// Auth requires the request to carry a valid identity
func Auth() rest.Middleware {
	return func(ctx *rest.Ctx) rest.APIError {
		if _, ok := ctx.GetActor(); !ok {
			msg := string(ctx.Response.Header.Peek("X-Auth-Failure"))
			if msg == "" {
				msg = "Sign in required"
			}

			return errors.ErrUnauthorized().SetDetail("%s", msg)
		}

		return nil
	}
}
