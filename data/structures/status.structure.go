package structures

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is an ephemeral story made of one or more media items.
type Status struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user"`
	Items     []StatusItem       `bson:"items"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type StatusItem struct {
	ID        primitive.ObjectID   `bson:"_id"`
	Type      StatusItemType       `bson:"type"`
	URL       string               `bson:"url"`
	Caption   string               `bson:"caption,omitempty"`
	Viewers   []primitive.ObjectID `bson:"viewers"`
	Timestamp time.Time            `bson:"timestamp"`
}

type StatusItemType string

const (
	StatusItemTypeImage StatusItemType = "image"
	StatusItemTypeVideo StatusItemType = "video"
)

func (t StatusItemType) Valid() bool {
	return t == StatusItemTypeImage || t == StatusItemTypeVideo
}

// Expired returns whether the status is past its lifetime at the given time
func (s Status) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.CreatedAt) >= ttl
}

// Item returns the item with the given id
func (s Status) Item(id primitive.ObjectID) (StatusItem, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}

	return StatusItem{}, false
}

// HasViewer returns whether the user has viewed the item
func (it StatusItem) HasViewer(userID primitive.ObjectID) bool {
	for _, v := range it.Viewers {
		if v == userID {
			return true
		}
	}

	return false
}
