package model

import (
	"time"

	"github.com/snapcopy/api/data/structures"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type StatusModel struct {
	ID        primitive.ObjectID `json:"_id"`
	User      UserPartialModel   `json:"user"`
	Items     []StatusItemModel  `json:"items"`
	CreatedAt time.Time          `json:"createdAt"`
}

type StatusItemModel struct {
	ID          primitive.ObjectID        `json:"_id"`
	Type        structures.StatusItemType `json:"type"`
	URL         string                    `json:"url"`
	Caption     string                    `json:"caption,omitempty"`
	ViewerCount int                       `json:"viewerCount"`
	Timestamp   time.Time                 `json:"timestamp"`
}

func (x *modelizer) StatusItem(v structures.StatusItem) StatusItemModel {
	return StatusItemModel{
		ID:          v.ID,
		Type:        v.Type,
		URL:         x.url(v.URL),
		Caption:     v.Caption,
		ViewerCount: len(v.Viewers),
		Timestamp:   v.Timestamp,
	}
}

func (x *modelizer) Status(v structures.Status, owner structures.User) StatusModel {
	items := make([]StatusItemModel, len(v.Items))
	for i, it := range v.Items {
		items[i] = x.StatusItem(it)
	}

	user := x.User(owner)
	if owner.ID.IsZero() {
		user = UserPartialModel{ID: v.UserID}
	}

	return StatusModel{
		ID:        v.ID,
		User:      user,
		Items:     items,
		CreatedAt: v.CreatedAt,
	}
}

// StatusWatchModel is the story feed of a user: their own statuses and those of their friends
type StatusWatchModel struct {
	MyStatuses     []OwnStatusGroupModel    `json:"myStatuses"`
	FriendStatuses []FriendStatusGroupModel `json:"friendStatuses"`
	// CanWatch is true when own viewer lists are included
	CanWatch bool `json:"canwatch"`

	OwnViewersVisible bool `json:"ownViewersVisible"`
	HasFriendStatuses bool `json:"hasFriendStatuses"`
}

type OwnStatusGroupModel struct {
	ID        primitive.ObjectID   `json:"_id"`
	User      UserPartialModel     `json:"user"`
	Items     []OwnStatusItemModel `json:"items"`
	CreatedAt time.Time            `json:"createdAt"`
}

type OwnStatusItemModel struct {
	StatusItemModel
	StatusID primitive.ObjectID `json:"statusId"`
	Viewers  []UserPartialModel `json:"viewers"`
}

type FriendStatusGroupModel struct {
	ID        primitive.ObjectID      `json:"_id"`
	User      UserPartialModel        `json:"user"`
	Items     []FriendStatusItemModel `json:"items"`
	CreatedAt time.Time               `json:"createdAt"`
	AllViewed bool                    `json:"allViewed"`
}

type FriendStatusItemModel struct {
	StatusItemModel
	StatusID primitive.ObjectID `json:"statusId"`
	Viewed   bool               `json:"viewed"`
}
