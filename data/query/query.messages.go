package query

import (
	"context"

	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/data/structures"
	"github.com/snapcopy/api/internal/svc/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func (q *Query) Message(ctx context.Context, id primitive.ObjectID) (structures.Message, error) {
	msg := structures.Message{}

	if err := q.mongo.Collection(mongo.CollectionNameMessages).FindOne(ctx, bson.M{"_id": id}).Decode(&msg); err != nil {
		if err == mongo.ErrNoDocuments {
			return msg, errors.ErrUnknownMessage()
		}

		return msg, errors.ErrInternalServerError().SetDetail(err.Error())
	}

	return msg, nil
}

func (q *Query) MessagesByID(ctx context.Context, ids []primitive.ObjectID) ([]structures.Message, error) {
	result := []structures.Message{}
	if len(ids) == 0 {
		return result, nil
	}

	cur, err := q.mongo.Collection(mongo.CollectionNameMessages).Find(ctx, bson.M{
		"_id": bson.M{"$in": ids},
	})
	if err != nil {
		return nil, errors.ErrInternalServerError().SetDetail(err.Error())
	}

	if err = cur.All(ctx, &result); err != nil {
		return nil, errors.ErrInternalServerError().SetDetail(err.Error())
	}

	return result, nil
}

// History returns every message exchanged between two users, oldest first
func (q *Query) History(ctx context.Context, a, b primitive.ObjectID) ([]structures.Message, error) {
	cur, err := q.mongo.Collection(mongo.CollectionNameMessages).Find(ctx, bson.M{
		"$or": bson.A{
			bson.M{"sender": a, "receiver": b},
			bson.M{"sender": b, "receiver": a},
		},
	}, options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		zap.S().Errorw("mongo, failed to query chat history",
			"error", err,
			"a", a,
			"b", b,
		)

		return nil, errors.ErrInternalServerError().SetDetail(err.Error())
	}

	result := []structures.Message{}
	if err = cur.All(ctx, &result); err != nil {
		return nil, errors.ErrInternalServerError().SetDetail(err.Error())
	}

	return result, nil
}

// RecentConversations groups the messages of a user by peer, keeping the latest
// message and the count of unread messages received from that peer.
// Conversations are sorted by latest activity.
func (q *Query) RecentConversations(ctx context.Context, userID primitive.ObjectID) ([]structures.Conversation, error) {
	cur, err := q.mongo.Collection(mongo.CollectionNameMessages).Aggregate(ctx, recentConversationsPipeline(userID))
	if err != nil {
		zap.S().Errorw("mongo, failed to aggregate recent conversations",
			"error", err,
			"user_id", userID,
		)

		return nil, errors.ErrInternalServerError().SetDetail(err.Error())
	}

	result := []structures.Conversation{}
	if err = cur.All(ctx, &result); err != nil {
		return nil, errors.ErrInternalServerError().SetDetail(err.Error())
	}

	return result, nil
}

func recentConversationsPipeline(userID primitive.ObjectID) mongodriver.Pipeline {
	return mongodriver.Pipeline{
		{{Key: "$match", Value: bson.M{
			"$or": bson.A{
				bson.M{"sender": userID, "deletedForSender": bson.M{"$ne": true}},
				bson.M{"receiver": userID, "deletedForReceiver": bson.M{"$ne": true}},
			},
		}}},
		{{Key: "$sort", Value: bson.M{"timestamp": -1}}},
		{{Key: "$group", Value: bson.M{
			// the peer: the receiver when we sent it, the sender otherwise, ourselves for self chats
			"_id": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$sender", userID}},
				"$receiver",
				"$sender",
			}},
			"latest": bson.M{"$first": "$$ROOT"},
			"unread_count": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$receiver", userID}},
					bson.M{"$eq": bson.A{"$read", false}},
				}},
				1,
				0,
			}}},
		}}},
		{{Key: "$sort", Value: bson.M{"latest.timestamp": -1}}},
	}
}
