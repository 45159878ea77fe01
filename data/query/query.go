package query

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/data/structures"
	"github.com/snapcopy/api/internal/svc/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type Query struct {
	mongo mongo.Instance
	c     *cache.Cache
}

func New(mongoInst mongo.Instance) *Query {
	return &Query{
		mongo: mongoInst,
		c:     cache.New(time.Second*30, time.Minute*5),
	}
}

// Users fetches the users with the given ids. Unknown ids are skipped.
func (q *Query) Users(ctx context.Context, ids []primitive.ObjectID) ([]structures.User, error) {
	cur, err := q.mongo.Collection(mongo.CollectionNameUsers).Find(ctx, bson.M{
		"_id": bson.M{"$in": ids},
	}, options.Find().SetProjection(bson.M{
		"username":     1,
		"profileImage": 1,
		"friends":      1,
		"blocked":      1,
	}))
	if err != nil {
		zap.S().Errorw("mongo, failed to query users",
			"error", err,
		)

		return nil, errors.ErrInternalServerError().SetDetail(err.Error())
	}

	users := []structures.User{}
	if err = cur.All(ctx, &users); err != nil {
		return nil, errors.ErrInternalServerError().SetDetail(err.Error())
	}

	return users, nil
}

// Relations returns the friends and blocked users of a user.
// Results are kept in memory for a short while.
func (q *Query) Relations(ctx context.Context, userID primitive.ObjectID) (structures.UserRelations, error) {
	k := "relations:" + userID.Hex()

	if v, ok := q.c.Get(k); ok {
		return v.(structures.UserRelations), nil
	}

	user := structures.User{}
	if err := q.mongo.Collection(mongo.CollectionNameUsers).FindOne(ctx, bson.M{
		"_id": userID,
	}, options.FindOne().SetProjection(bson.M{
		"friends": 1,
		"blocked": 1,
	})).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return structures.UserRelations{}, errors.ErrUnknownUser()
		}

		return structures.UserRelations{}, errors.ErrInternalServerError().SetDetail(err.Error())
	}

	rel := user.Relations()
	q.c.Set(k, rel, cache.DefaultExpiration)

	return rel, nil
}
