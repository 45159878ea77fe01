package messages

import (
	"context"

	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/data/mutate"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeleteForMe hides a message from the requesting party only
func (m *Manager) DeleteForMe(ctx context.Context, messageID, userID primitive.ObjectID) error {
	msg, err := m.reader.Message(ctx, messageID)
	if err != nil {
		return err
	}

	flags := mutate.MessageDeleteFlags{
		Sender:   msg.Sender == userID,
		Receiver: msg.Receiver == userID,
	}

	if !flags.Sender && !flags.Receiver {
		return errors.ErrUnauthorized().SetDetail("You are not part of this conversation")
	}

	return m.writer.SetMessageDeleted(ctx, messageID, flags)
}

// DeleteForEveryone hides a message from both parties. Only the sender may do
// this. The parties of the message are returned.
func (m *Manager) DeleteForEveryone(ctx context.Context, messageID, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	msg, err := m.reader.Message(ctx, messageID)
	if err != nil {
		return nil, err
	}

	if msg.Sender != userID {
		return nil, errors.ErrUnauthorized().SetDetail("Only the sender can delete this message for everyone")
	}

	if err := m.writer.DeleteMessageForEveryone(ctx, messageID, userID); err != nil {
		return nil, err
	}

	return msg.Parties(), nil
}
