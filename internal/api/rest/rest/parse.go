package rest

import (
	"github.com/seventv/common/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Param struct {
	v interface{}
}

func (c *Ctx) Param(key string) *Param {
	return &Param{c.RequestCtx.UserValue(key)}
}

// String returns a string value of the param
func (p *Param) String() (string, bool) {
	switch t := p.v.(type) {
	case string:
		return t, true
	default:
		return "", false
	}
}

// ObjectID parses the param into an Object ID
func (p *Param) ObjectID() (primitive.ObjectID, error) {
	s, _ := p.String()
	if s == "" || !primitive.IsValidObjectID(s) {
		return primitive.NilObjectID, errors.ErrBadObjectID()
	}

	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, errors.ErrBadObjectID().SetDetail(err.Error())
	}

	return oid, nil
}
