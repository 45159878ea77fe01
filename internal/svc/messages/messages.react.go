package messages

import (
	"context"

	"github.com/forPelevin/gomoji"
	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/data/model"
	"github.com/snapcopy/api/data/structures"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ValidateReaction checks that the reaction is exactly one emoji, or the remove sentinel
func ValidateReaction(reaction string) error {
	if reaction == structures.ReactionRemove {
		return nil
	}

	emojis := gomoji.CollectAll(reaction)
	if len(emojis) != 1 || emojis[0].Character != reaction {
		return errors.ErrInvalidRequest().SetDetail("Reaction must be a single emoji")
	}

	return nil
}

// React sets, replaces or removes the reaction of a user on a message
func (m *Manager) React(ctx context.Context, messageID, userID primitive.ObjectID, emoji string) (model.MessageModel, error) {
	if err := ValidateReaction(emoji); err != nil {
		return model.MessageModel{}, err
	}

	msg, err := m.reader.Message(ctx, messageID)
	if err != nil {
		return model.MessageModel{}, err
	}

	if !msg.IsParty(userID) {
		return model.MessageModel{}, errors.ErrUnauthorized().SetDetail("You are not part of this conversation")
	}

	if emoji == structures.ReactionRemove {
		msg, err = m.writer.RemoveMessageReaction(ctx, messageID, userID)
	} else {
		msg, err = m.writer.SetMessageReaction(ctx, messageID, userID, emoji)
	}

	if err != nil {
		return model.MessageModel{}, err
	}

	return m.resolve(ctx, msg)
}
