package model

import (
	"strings"

	"github.com/snapcopy/api/data/structures"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Modelizer converts stored documents into the models sent to clients
type Modelizer interface {
	User(v structures.User) UserPartialModel
	Message(v structures.Message, users map[primitive.ObjectID]structures.User, reply *structures.Message) MessageModel
	Conversation(v structures.Conversation, peer structures.User) ConversationModel
	Status(v structures.Status, owner structures.User) StatusModel
	StatusItem(v structures.StatusItem) StatusItemModel
}

type modelizer struct {
	mediaURL string
}

func NewInstance(opt ModelInstanceOptions) Modelizer {
	return &modelizer{
		mediaURL: strings.TrimSuffix(opt.MediaURL, "/"),
	}
}

type ModelInstanceOptions struct {
	// MediaURL is prefixed to stored media paths that are not absolute URLs
	MediaURL string
}

func (x *modelizer) url(s string) string {
	if s == "" || x.mediaURL == "" || !strings.HasPrefix(s, "/") {
		return s
	}

	return x.mediaURL + s
}
