package structures

import (
	"github.com/seventv/common/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the projection of a user account read by the relay. Accounts are
// owned and written by the profile service.
type User struct {
	ID           primitive.ObjectID   `bson:"_id"`
	Username     string               `bson:"username"`
	ProfileImage string               `bson:"profileImage"`
	Friends      []primitive.ObjectID `bson:"friends"`
	Blocked      []primitive.ObjectID `bson:"blocked"`
}

// UserRelations is the part of the friend graph used to decide visibility
type UserRelations struct {
	Friends []primitive.ObjectID
	Blocked []primitive.ObjectID
}

func (r UserRelations) IsFriend(id primitive.ObjectID) bool {
	return utils.Contains(r.Friends, id)
}

func (r UserRelations) HasBlocked(id primitive.ObjectID) bool {
	return utils.Contains(r.Blocked, id)
}

func (u User) Relations() UserRelations {
	return UserRelations{
		Friends: u.Friends,
		Blocked: u.Blocked,
	}
}
