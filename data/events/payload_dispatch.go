package events

import (
	"encoding/json"

	"github.com/snapcopy/api/data/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bodies of server events

type UserStatusBody struct {
	UserID primitive.ObjectID `json:"userId"`
	Status string             `json:"status"`
}

type MessagesReadBody struct {
	UserID primitive.ObjectID `json:"userId"`
}

type MessageReactionBody struct {
	Message model.MessageModel `json:"message"`
	Emoji   string             `json:"emoji"`
}

type MessageDeletedBody struct {
	MessageID primitive.ObjectID `json:"messageId"`
}

type TypingStatusBody struct {
	Typing   bool               `json:"typing"`
	SenderID primitive.ObjectID `json:"senderId"`
}

type IncomingCallBody struct {
	From   primitive.ObjectID `json:"from"`
	Signal json.RawMessage    `json:"signal"`
	Name   string             `json:"name"`
}

type CallPartyBody struct {
	From primitive.ObjectID `json:"from"`
}

type MusicEventDispatchBody struct {
	From   primitive.ObjectID `json:"from"`
	Action string             `json:"action"`
	Data   json.RawMessage    `json:"data"`
}

type StatusViewedBody struct {
	StatusID    primitive.ObjectID `json:"statusId"`
	ItemID      primitive.ObjectID `json:"itemId"`
	UserID      primitive.ObjectID `json:"userId"`
	ViewerCount int                `json:"viewerCount"`
}
