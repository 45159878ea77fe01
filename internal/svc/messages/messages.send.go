package messages

import (
	"context"
	"strings"

	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/data/model"
	"github.com/snapcopy/api/data/structures"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SendInput struct {
	Receiver primitive.ObjectID
	Message  string
	FileURL  string
	Type     structures.MessageType
	Location *structures.MessageLocation
	ReplyTo  *primitive.ObjectID
}

// Send stores a new message from sender and returns it resolved
func (m *Manager) Send(ctx context.Context, sender primitive.ObjectID, in SendInput) (model.MessageModel, error) {
	if in.Receiver.IsZero() {
		return model.MessageModel{}, errors.ErrMissingRequiredField().SetDetail("receiverId")
	}

	if in.Type == "" {
		in.Type = structures.MessageTypeText
	}

	if !in.Type.Valid() {
		return model.MessageModel{}, errors.ErrInvalidRequest().SetDetail("Unknown message type %q", in.Type)
	}

	switch in.Type {
	case structures.MessageTypeText, structures.MessageTypeEmoji:
		if strings.TrimSpace(in.Message) == "" {
			return model.MessageModel{}, errors.ErrMissingRequiredField().SetDetail("message")
		}
	case structures.MessageTypeImage, structures.MessageTypeDocument:
		if in.FileURL == "" {
			return model.MessageModel{}, errors.ErrMissingRequiredField().SetDetail("fileUrl")
		}
	case structures.MessageTypeLocation:
		if in.Location == nil {
			return model.MessageModel{}, errors.ErrMissingRequiredField().SetDetail("location")
		}
	}

	if in.Receiver != sender {
		rel, err := m.relations.Relations(ctx, in.Receiver)
		if err != nil {
			return model.MessageModel{}, err
		}

		if rel.HasBlocked(sender) {
			return model.MessageModel{}, errors.ErrInsufficientPrivilege().SetDetail("You cannot message this user")
		}
	}

	var reply *structures.Message

	if in.ReplyTo != nil && !in.ReplyTo.IsZero() {
		r, err := m.reader.Message(ctx, *in.ReplyTo)
		if err != nil {
			return model.MessageModel{}, err
		}

		if !r.IsParty(sender) {
			return model.MessageModel{}, errors.ErrUnknownMessage().SetDetail("replyTo")
		}

		reply = &r
	}

	msg := structures.Message{
		Sender:    sender,
		Receiver:  in.Receiver,
		Message:   in.Message,
		FileURL:   in.FileURL,
		Type:      in.Type,
		Location:  in.Location,
		Reactions: []structures.MessageReaction{},
		Timestamp: m.now(),
	}

	if reply != nil {
		msg.ReplyTo = &reply.ID
	}

	if err := m.writer.InsertMessage(ctx, &msg); err != nil {
		return model.MessageModel{}, err
	}

	users, err := m.users.Users(ctx, msg.Parties())
	if err != nil {
		return model.MessageModel{}, err
	}

	return m.modelizer.Message(msg, users, reply), nil
}

// MarkRead marks the messages peer sent to reader as read and returns how many changed
func (m *Manager) MarkRead(ctx context.Context, reader, peer primitive.ObjectID) (int64, error) {
	if peer.IsZero() {
		return 0, errors.ErrMissingRequiredField().SetDetail("chatId")
	}

	return m.writer.MarkMessagesRead(ctx, peer, reader)
}
