package model

import (
	"time"

	"github.com/snapcopy/api/data/structures"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MessageModel struct {
	ID                 primitive.ObjectID          `json:"_id"`
	Sender             UserPartialModel            `json:"sender"`
	Receiver           UserPartialModel            `json:"receiver"`
	Message            string                      `json:"message"`
	FileURL            string                      `json:"fileUrl"`
	Type               structures.MessageType      `json:"type"`
	Location           *structures.MessageLocation `json:"location"`
	ReplyTo            *MessageReplyModel          `json:"replyTo"`
	Reactions          []MessageReactionModel      `json:"reactions"`
	Read               bool                        `json:"read"`
	DeletedForSender   bool                        `json:"deletedForSender"`
	DeletedForReceiver bool                        `json:"deletedForReceiver"`
	Timestamp          time.Time                   `json:"timestamp"`
}

type MessageReplyModel struct {
	ID        primitive.ObjectID     `json:"_id"`
	Sender    primitive.ObjectID     `json:"sender"`
	Message   string                 `json:"message"`
	FileURL   string                 `json:"fileUrl"`
	Type      structures.MessageType `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
}

type MessageReactionModel struct {
	Emoji  string             `json:"emoji"`
	UserID primitive.ObjectID `json:"userId"`
}

func (x *modelizer) Message(v structures.Message, users map[primitive.ObjectID]structures.User, reply *structures.Message) MessageModel {
	reactions := make([]MessageReactionModel, len(v.Reactions))
	for i, r := range v.Reactions {
		reactions[i] = MessageReactionModel{
			Emoji:  r.Emoji,
			UserID: r.UserID,
		}
	}

	var replyTo *MessageReplyModel
	if reply != nil {
		replyTo = &MessageReplyModel{
			ID:        reply.ID,
			Sender:    reply.Sender,
			Message:   reply.Message,
			FileURL:   x.url(reply.FileURL),
			Type:      reply.Type,
			Timestamp: reply.Timestamp,
		}
	}

	return MessageModel{
		ID:                 v.ID,
		Sender:             x.userOrStub(v.Sender, users),
		Receiver:           x.userOrStub(v.Receiver, users),
		Message:            v.Message,
		FileURL:            x.url(v.FileURL),
		Type:               v.Type,
		Location:           v.Location,
		ReplyTo:            replyTo,
		Reactions:          reactions,
		Read:               v.Read,
		DeletedForSender:   v.DeletedForSender,
		DeletedForReceiver: v.DeletedForReceiver,
		Timestamp:          v.Timestamp,
	}
}

// ConversationModel is an entry of the recent conversations list
type ConversationModel struct {
	User          ConversationUserModel    `json:"user"`
	LatestMessage ConversationMessageModel `json:"latestMessage"`
	UnreadCount   int32                    `json:"unreadCount"`
}

type ConversationUserModel struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Photo string             `json:"photo"`
}

type ConversationMessageModel struct {
	ID          primitive.ObjectID     `json:"_id"`
	Sender      primitive.ObjectID     `json:"sender"`
	Message     string                 `json:"message"`
	MessageType structures.MessageType `json:"messageType"`
	Timestamp   time.Time              `json:"timestamp"`
	Read        bool                   `json:"read"`
}

func (x *modelizer) Conversation(v structures.Conversation, peer structures.User) ConversationModel {
	return ConversationModel{
		User: ConversationUserModel{
			ID:    peer.ID,
			Name:  peer.Username,
			Photo: x.url(peer.ProfileImage),
		},
		LatestMessage: ConversationMessageModel{
			ID:          v.Latest.ID,
			Sender:      v.Latest.Sender,
			Message:     v.Latest.Message,
			MessageType: v.Latest.Type,
			Timestamp:   v.Latest.Timestamp,
			Read:        v.Latest.Read,
		},
		UnreadCount: v.UnreadCount,
	}
}
