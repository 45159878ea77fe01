package rest

import (
	"encoding/json"

	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/internal/constant"
	"github.com/valyala/fasthttp"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Ctx struct {
	*fasthttp.RequestCtx
}

type APIError = errors.APIError

func (c *Ctx) JSON(status HttpStatusCode, v interface{}) APIError {
	b, err := json.Marshal(v)
	if err != nil {
		c.SetStatusCode(InternalServerError)

		return errors.ErrInternalServerError().
			SetDetail("JSON Parsing Failed").
			SetFields(errors.Fields{"JSON_ERROR": err.Error()})
	}

	c.SetStatusCode(status)
	c.SetContentType("application/json")
	c.SetBody(b)

	return nil
}

func (c *Ctx) SetStatusCode(code HttpStatusCode) {
	c.RequestCtx.SetStatusCode(int(code))
}

func (c *Ctx) StatusCode() HttpStatusCode {
	return HttpStatusCode(c.RequestCtx.Response.StatusCode())
}

// Set the current authenticated user
func (c *Ctx) SetActor(id primitive.ObjectID) {
	c.SetUserValue(string(constant.UserKey), id)
}

// Get the current authenticated user
func (c *Ctx) GetActor() (primitive.ObjectID, bool) {
	switch v := c.RequestCtx.UserValue(string(constant.UserKey)).(type) {
	case primitive.ObjectID:
		return v, !v.IsZero()
	default:
		return primitive.NilObjectID, false
	}
}

func (c *Ctx) Log() *zap.SugaredLogger {
	z := zap.S().Named("api/rest").With(
		"request_id", c.ID(),
		"route", string(c.Path()),
	)

	actor, ok := c.GetActor()
	if ok {
		z = z.With("actor_id", actor.Hex())
	}

	return z
}
