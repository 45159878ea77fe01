package model

import (
	"github.com/snapcopy/api/data/structures"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserPartialModel struct {
	ID           primitive.ObjectID `json:"_id"`
	Username     string             `json:"username"`
	ProfileImage string             `json:"profileImage"`
}

func (x *modelizer) User(v structures.User) UserPartialModel {
	return UserPartialModel{
		ID:           v.ID,
		Username:     v.Username,
		ProfileImage: x.url(v.ProfileImage),
	}
}

// userOrStub returns the model of a resolved user, or a model carrying only the id
func (x *modelizer) userOrStub(id primitive.ObjectID, users map[primitive.ObjectID]structures.User) UserPartialModel {
	if u, ok := users[id]; ok {
		return x.User(u)
	}

	return UserPartialModel{ID: id}
}
