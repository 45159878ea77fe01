package status

import (
	"bytes"
	"io"

	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/internal/api/rest/middleware"
	"github.com/snapcopy/api/internal/api/rest/rest"
	"github.com/snapcopy/api/internal/global"
)

type fileRoute struct {
	Ctx global.Context
}

func newFile(gctx global.Context) rest.Route {
	return &fileRoute{gctx}
}

func (r *fileRoute) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:      "/file",
		Method:   rest.POST,
		Children: []rest.Route{},
		Middleware: []rest.Middleware{
			middleware.Auth(),
			middleware.RestLimit(r.Ctx),
		},
	}
}

// @Summary Upload Status Media
// @Description Stores an image or video to be referenced by a status item
// @Tags status
// @Accept image/png,image/jpeg,image/gif,image/webp,video/mp4,video/webm,multipart/form-data
// @Produce json
// @Success 201 {object} statuses.UploadResult
// @Router /status/file [post]
func (r *fileRoute) Handler(ctx *rest.Ctx) rest.APIError {
	actor, _ := ctx.GetActor()

	body, err := r.readBody(ctx)
	if err != nil {
		return err
	}

	result, er := r.Ctx.Inst().Statuses.Upload(ctx, actor, body)
	if er != nil {
		return toAPIError(er)
	}

	return ctx.JSON(rest.Created, result)
}

// readBody takes the "file" part of a multipart form, or the raw body otherwise
func (r *fileRoute) readBody(ctx *rest.Ctx) ([]byte, rest.APIError) {
	if !bytes.HasPrefix(ctx.Request.Header.ContentType(), []byte("multipart/form-data")) {
		return ctx.PostBody(), nil
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		return nil, errors.ErrMissingRequiredField().SetDetail("file")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, errors.ErrInvalidRequest().SetDetail("Unreadable file: %s", err.Error())
	}
	defer f.Close()

	limit := int64(r.Ctx.Config().Limits.MaxUploadBytes)

	// one byte past the limit lets the service report the size error
	b, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, errors.ErrInvalidRequest().SetDetail("Unreadable file: %s", err.Error())
	}

	return b, nil
}
