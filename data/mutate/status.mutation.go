package mutate

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

func (m *Mutate) InsertStatus(ctx context.Context, status *structures.Status) error {
	if status.ID.IsZero() {
		status.ID = primitive.NewObjectID()
	}

	if _, err := m.mongo.Collection(mongo.CollectionNameStatuses).InsertOne(ctx, status); err != nil {
		zap.S().Errorw("mongo, failed to insert status",
			"error", err,
			"user_id", status.UserID,
		)

		return errors.ErrInternalServerError().SetDetail(err.Error())
	}

	return nil
}

// AddStatusViewer adds a viewer to a status item unless already present.
// Statuses created before since are treated as gone.
func (m *Mutate) AddStatusViewer(ctx context.Context, itemID, viewerID primitive.ObjectID, since time.Time) (structures.Status, error) {
	status := structures.Status{}

	filter, change := addStatusViewer(itemID, viewerID, since)

	err := m.mongo.Collection(mongo.CollectionNameStatuses).FindOneAndUpdate(ctx, filter, change,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&status)
	if err == mongo.ErrNoDocuments {
		return status, errors.ErrNoItems().SetDetail("Status item not found")
	} else if err != nil {
		return status, errors.ErrInternalServerError().SetDetail(err.Error())
	}

	return status, nil
}

// PurgeExpiredStatuses deletes the statuses created at or before the given time
func (m *Mutate) PurgeExpiredStatuses(ctx context.Context, before time.Time) (int64, error) {
	res, err := m.mongo.Collection(mongo.CollectionNameStatuses).DeleteMany(ctx, expiredStatuses(before))
	if err != nil {
		return 0, errors.ErrInternalServerError().SetDetail(err.Error())
	}

	return res.DeletedCount, nil
}

// addStatusViewer targets the live status holding the item. The positional
// operator resolves to that item, and $addToSet keeps viewers unique.
func addStatusViewer(itemID, viewerID primitive.ObjectID, since time.Time) (bson.M, bson.M) {
	filter := bson.M{
		"items._id": itemID,
		"createdAt": bson.M{"$gt": since},
	}

	return filter, bson.M{"$addToSet": bson.M{"items.$.viewers": viewerID}}
}

func expiredStatuses(before time.Time) bson.M {
	return bson.M{"createdAt": bson.M{"$lte": before}}
}
