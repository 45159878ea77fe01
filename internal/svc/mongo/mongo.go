package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type CollectionName string

const (
	CollectionNameMessages CollectionName = "messages"
	CollectionNameStatuses CollectionName = "statuses"
	CollectionNameUsers    CollectionName = "users"
)

var ErrNoDocuments = mongo.ErrNoDocuments

type Instance interface {
	Collection(name CollectionName) *mongo.Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type mongoInst struct {
	client *mongo.Client
	db     *mongo.Database
}

type SetupOptions struct {
	URI      string
	DB       string
	Username string
	Password string
	Direct   bool
	// StatusTTL configures the expiry index of the statuses collection, zero disables it
	StatusTTL time.Duration
}

func Setup(ctx context.Context, opt SetupOptions) (Instance, error) {
	clientOptions := options.Client().
		ApplyURI(opt.URI).
		SetDirect(opt.Direct)

	if opt.Username != "" {
		clientOptions.SetAuth(options.Credential{
			Username: opt.Username,
			Password: opt.Password,
		})
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, multierr.Append(err, client.Disconnect(ctx))
	}

	inst := &mongoInst{
		client: client,
		db:     client.Database(opt.DB),
	}

	if err = inst.ensureIndexes(ctx, opt); err != nil {
		zap.S().Errorw("mongo, failed to create indexes",
			"error", err,
		)
	}

	zap.S().Infow("mongo, connected",
		"db", opt.DB,
	)

	return inst, nil
}

func (i *mongoInst) ensureIndexes(ctx context.Context, opt SetupOptions) error {
	var err error

	_, e := i.Collection(CollectionNameMessages).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sender", Value: 1}, {Key: "receiver", Value: 1}, {Key: "timestamp", Value: 1}}},
		{Keys: bson.D{{Key: "receiver", Value: 1}, {Key: "read", Value: 1}}},
	})
	err = multierr.Append(err, e)

	_, e = i.Collection(CollectionNameStatuses).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "items._id", Value: 1}},
	})
	err = multierr.Append(err, e)

	if opt.StatusTTL > 0 {
		_, e = i.Collection(CollectionNameStatuses).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(opt.StatusTTL / time.Second)),
		})
		err = multierr.Append(err, e)
	}

	return err
}

func (i *mongoInst) Collection(name CollectionName) *mongo.Collection {
	return i.db.Collection(string(name))
}

func (i *mongoInst) Ping(ctx context.Context) error {
	return i.client.Ping(ctx, readpref.Primary())
}

func (i *mongoInst) Close(ctx context.Context) error {
	return i.client.Disconnect(ctx)
}
