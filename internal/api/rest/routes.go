package rest

import (
	"encoding/json"
	"runtime/debug"

	"github.com/fasthttp/router"
	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/internal/api/rest/rest"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

func (s *HttpServer) SetupHandlers() {
	// Handle Not Found
	s.router.NotFound = s.getErrorHandler(
		rest.NotFound,
		errors.ErrUnknownRoute().SetFields(errors.Fields{
			"message": "The API endpoint requested does not exist",
		}),
	)

	s.router.PanicHandler = func(ctx *fasthttp.RequestCtx, i interface{}) {
		zap.S().Errorw("panic occured",
			"panic", i,
			"stack", string(debug.Stack()),
		)

		s.getErrorHandler(
			rest.InternalServerError,
			errors.ErrInternalServerError(),
		)(ctx)
	}
}

func (s *HttpServer) traverseRoutes(r rest.Route, parentGroup Router) {
	c := r.Config()

	// Handle requests at the route's own path below the parent prefix
	parentGroup.Handle(string(c.Method), c.URI, func(ctx *fasthttp.RequestCtx) {
		rctx := &rest.Ctx{RequestCtx: ctx}

		handlers := make([]rest.Middleware, len(c.Middleware)+1)
		copy(handlers, c.Middleware)
		handlers[len(handlers)-1] = r.Handler

		for _, h := range handlers {
			if err := h(rctx); err != nil {
				writeError(rctx, err)

				return
			}
		}
	})

	zap.S().Debugw("route registered",
		"uri", c.URI,
		"method", c.Method,
	)

	if len(c.Children) == 0 {
		return
	}

	// activate child routes
	group := parentGroup.Group(c.URI)
	for _, child := range c.Children {
		s.traverseRoutes(child, group)
	}
}

// writeError formats an error into the standard API error response.
// Details of server errors are not exposed.
func writeError(ctx *rest.Ctx, err rest.APIError) {
	if ctx.Response.StatusCode() < 400 {
		ctx.SetStatusCode(rest.HttpStatusCode(err.ExpectedHTTPStatus()))
	}

	resp := &rest.APIErrorResponse{
		Status:     ctx.StatusCode().String(),
		StatusCode: ctx.StatusCode(),
		Error:      err.Message(),
		ErrorCode:  err.Code(),
		Details:    err.GetFields(),
	}

	if ctx.StatusCode() >= rest.InternalServerError {
		ctx.Log().Errorw("request failed",
			"error", err.Error(),
		)

		resp.Error = rest.InternalServerError.String()
		resp.Details = nil
	}

	b, _ := json.Marshal(resp)
	ctx.SetContentType("application/json")
	ctx.SetBody(b)
}

func (s *HttpServer) getErrorHandler(status rest.HttpStatusCode, err rest.APIError) func(ctx *fasthttp.RequestCtx) {
	return func(ctx *fasthttp.RequestCtx) {
		b, _ := json.Marshal(&rest.APIErrorResponse{
			Status:     status.String(),
			StatusCode: status,
			Error:      err.Message(),
			ErrorCode:  err.Code(),
			Details:    err.GetFields(),
		})

		ctx.SetStatusCode(int(status))
		ctx.SetContentType("application/json")
		ctx.SetBody(b)
	}
}

type Router interface {
	Group(path string) *router.Group
	Handle(method, path string, handler fasthttp.RequestHandler)
}
