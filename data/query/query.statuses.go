package query

import (
	"context"
	"time"

	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/data/structures"
	"github.com/snapcopy/api/internal/svc/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// StatusesByOwners returns the statuses of the given users created after since, newest first
func (q *Query) StatusesByOwners(ctx context.Context, owners []primitive.ObjectID, since time.Time) ([]structures.Status, error) {
	result := []structures.Status{}
	if len(owners) == 0 {
		return result, nil
	}

	cur, err := q.mongo.Collection(mongo.CollectionNameStatuses).Find(ctx, bson.M{
		"user":      bson.M{"$in": owners},
		"createdAt": bson.M{"$gt": since},
	}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		zap.S().Errorw("mongo, failed to query statuses",
			"error", err,
			"owners", len(owners),
		)

		return nil, errors.ErrInternalServerError().SetDetail(err.Error())
	}

	if err = cur.All(ctx, &result); err != nil {
		return nil, errors.ErrInternalServerError().SetDetail(err.Error())
	}

	return result, nil
}
