package mutate

import (
	"context"

	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/data/structures"
	"github.com/snapcopy/api/internal/svc/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func (m *Mutate) InsertMessage(ctx context.Context, msg *structures.Message) error {
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}

	if msg.Reactions == nil {
		msg.Reactions = []structures.MessageReaction{}
	}

	if _, err := m.mongo.Collection(mongo.CollectionNameMessages).InsertOne(ctx, msg); err != nil {
		zap.S().Errorw("mongo, failed to insert message",
			"error", err,
			"sender", msg.Sender,
			"receiver", msg.Receiver,
		)

		return errors.ErrInternalServerError().SetDetail(err.Error())
	}

	return nil
}

// MarkMessagesRead flags every unread message from sender to receiver as read
// and returns how many were changed.
func (m *Mutate) MarkMessagesRead(ctx context.Context, sender, receiver primitive.ObjectID) (int64, error) {
	res, err := m.mongo.Collection(mongo.CollectionNameMessages).UpdateMany(ctx, bson.M{
		"sender":   sender,
		"receiver": receiver,
		"read":     false,
	}, bson.M{
		"$set": bson.M{"read": true},
	})
	if err != nil {
		return 0, errors.ErrInternalServerError().SetDetail(err.Error())
	}

	return res.ModifiedCount, nil
}

// SetMessageReaction stores or replaces the reaction of a user
func (m *Mutate) SetMessageReaction(ctx context.Context, id, userID primitive.ObjectID, emoji string) (structures.Message, error) {
	col := m.mongo.Collection(mongo.CollectionNameMessages)
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	update := func() (structures.Message, error) {
		msg := structures.Message{}
		filter, change := replaceReaction(id, userID, emoji)
		err := col.FindOneAndUpdate(ctx, filter, change, after).Decode(&msg)

		return msg, err
	}

	// The user already reacted: overwrite in place
	msg, err := update()
	if err == nil {
		return msg, nil
	} else if err != mongo.ErrNoDocuments {
		return msg, errors.ErrInternalServerError().SetDetail(err.Error())
	}

	// First reaction: only push while the user still has no entry
	filter, change := pushReaction(id, userID, emoji)
	err = col.FindOneAndUpdate(ctx, filter, change, after).Decode(&msg)
	if err == nil {
		return msg, nil
	} else if err != mongo.ErrNoDocuments {
		return msg, errors.ErrInternalServerError().SetDetail(err.Error())
	}

	// A concurrent request inserted the entry in between, or the message is gone
	msg, err = update()
	if err == mongo.ErrNoDocuments {
		return msg, errors.ErrUnknownMessage()
	} else if err != nil {
		return msg, errors.ErrInternalServerError().SetDetail(err.Error())
	}

	return msg, nil
}

// replaceReaction matches a message the user already reacted to and rewrites
// that entry through the positional operator
func replaceReaction(id, userID primitive.ObjectID, emoji string) (bson.M, bson.M) {
	filter := bson.M{
		"_id":              id,
		"reactions.userId": userID,
	}

	return filter, bson.M{"$set": bson.M{"reactions.$.emoji": emoji}}
}

// pushReaction appends a reaction only while the user has none on the message
func pushReaction(id, userID primitive.ObjectID, emoji string) (bson.M, bson.M) {
	filter := bson.M{
		"_id":              id,
		"reactions.userId": bson.M{"$ne": userID},
	}
	update := bson.M{
		"$push": bson.M{"reactions": structures.MessageReaction{
			Emoji:  emoji,
			UserID: userID,
		}},
	}

	return filter, update
}

// RemoveMessageReaction clears the reaction of a user, if any
func (m *Mutate) RemoveMessageReaction(ctx context.Context, id, userID primitive.ObjectID) (structures.Message, error) {
	msg := structures.Message{}

	err := m.mongo.Collection(mongo.CollectionNameMessages).FindOneAndUpdate(ctx, bson.M{
		"_id": id,
	}, bson.M{
		"$pull": bson.M{"reactions": bson.M{"userId": userID}},
	}, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&msg)
	if err == mongo.ErrNoDocuments {
		return msg, errors.ErrUnknownMessage()
	} else if err != nil {
		return msg, errors.ErrInternalServerError().SetDetail(err.Error())
	}

	return msg, nil
}

// SetMessageDeleted raises the given soft-delete flags. Flags are never lowered.
func (m *Mutate) SetMessageDeleted(ctx context.Context, id primitive.ObjectID, flags MessageDeleteFlags) error {
	return m.setMessageDeleted(ctx, bson.M{"_id": id}, flags)
}

// DeleteMessageForEveryone hides the message from both parties. Only the
// sender's request matches.
func (m *Mutate) DeleteMessageForEveryone(ctx context.Context, id, sender primitive.ObjectID) error {
	return m.setMessageDeleted(ctx, bson.M{
		"_id":    id,
		"sender": sender,
	}, MessageDeleteFlags{Sender: true, Receiver: true})
}

func (m *Mutate) setMessageDeleted(ctx context.Context, filter bson.M, flags MessageDeleteFlags) error {
	set := bson.M{}
	if flags.Sender {
		set["deletedForSender"] = true
	}

	if flags.Receiver {
		set["deletedForReceiver"] = true
	}

	if len(set) == 0 {
		return errors.ErrNothingHappened()
	}

	res, err := m.mongo.Collection(mongo.CollectionNameMessages).UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return errors.ErrInternalServerError().SetDetail(err.Error())
	}

	if res.MatchedCount == 0 {
		return errors.ErrUnknownMessage()
	}

	return nil
}

type MessageDeleteFlags struct {
	Sender   bool
	Receiver bool
}
