package messages

import (
	"context"

	"github.com/snapcopy/api/data/model"
	"github.com/snapcopy/api/data/structures"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// History returns the conversation between requester and peer, oldest first,
// without the messages the requester deleted. On error the slice is empty.
func (m *Manager) History(ctx context.Context, requester, peer primitive.ObjectID) ([]model.MessageModel, error) {
	result := []model.MessageModel{}

	messages, err := m.reader.History(ctx, requester, peer)
	if err != nil {
		return result, err
	}

	visible := make([]structures.Message, 0, len(messages))
	for _, msg := range messages {
		if msg.VisibleTo(requester) {
			visible = append(visible, msg)
		}
	}

	return m.resolveMany(ctx, visible)
}

// Recent lists the conversations of a user, latest first
func (m *Manager) Recent(ctx context.Context, userID primitive.ObjectID) ([]model.ConversationModel, error) {
	result := []model.ConversationModel{}

	convs, err := m.reader.RecentConversations(ctx, userID)
	if err != nil {
		return result, err
	}

	ids := make([]primitive.ObjectID, len(convs))
	for i, c := range convs {
		ids[i] = c.PeerID
	}

	users, err := m.users.Users(ctx, ids)
	if err != nil {
		return result, err
	}

	for _, c := range convs {
		peer, ok := users[c.PeerID]
		if !ok {
			zap.S().Debugw("recent conversation with unknown user",
				"user_id", userID,
				"peer_id", c.PeerID,
			)

			continue
		}

		result = append(result, m.modelizer.Conversation(c, peer))
	}

	return result, nil
}

func (m *Manager) resolve(ctx context.Context, msg structures.Message) (model.MessageModel, error) {
	r, err := m.resolveMany(ctx, []structures.Message{msg})
	if err != nil || len(r) == 0 {
		return model.MessageModel{}, err
	}

	return r[0], nil
}

// resolveMany expands the parties and replied-to messages of a batch
func (m *Manager) resolveMany(ctx context.Context, messages []structures.Message) ([]model.MessageModel, error) {
	result := make([]model.MessageModel, 0, len(messages))
	if len(messages) == 0 {
		return result, nil
	}

	userIDs := []primitive.ObjectID{}
	replyIDs := []primitive.ObjectID{}

	for _, msg := range messages {
		userIDs = append(userIDs, msg.Parties()...)

		if msg.ReplyTo != nil {
			replyIDs = append(replyIDs, *msg.ReplyTo)
		}
	}

	users, err := m.users.Users(ctx, userIDs)
	if err != nil {
		return []model.MessageModel{}, err
	}

	replies := map[primitive.ObjectID]structures.Message{}

	if len(replyIDs) > 0 {
		found, err := m.reader.MessagesByID(ctx, replyIDs)
		if err != nil {
			return []model.MessageModel{}, err
		}

		for _, r := range found {
			replies[r.ID] = r
		}
	}

	for _, msg := range messages {
		var reply *structures.Message

		if msg.ReplyTo != nil {
			if r, ok := replies[*msg.ReplyTo]; ok {
				reply = &r
			}
		}

		result = append(result, m.modelizer.Message(msg, users, reply))
	}

	return result, nil
}
