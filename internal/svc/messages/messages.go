package messages

import (
	"context"
	"time"

	"github.com/snapcopy/api/data/model"
	"github.com/snapcopy/api/data/mutate"
	"github.com/snapcopy/api/data/structures"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reader is the read side of the message store
type Reader interface {
	Message(ctx context.Context, id primitive.ObjectID) (structures.Message, error)
	MessagesByID(ctx context.Context, ids []primitive.ObjectID) ([]structures.Message, error)
	History(ctx context.Context, a, b primitive.ObjectID) ([]structures.Message, error)
	RecentConversations(ctx context.Context, userID primitive.ObjectID) ([]structures.Conversation, error)
}

// Writer is the write side of the message store. Every method is a single atomic update.
type Writer interface {
	InsertMessage(ctx context.Context, msg *structures.Message) error
	MarkMessagesRead(ctx context.Context, sender, receiver primitive.ObjectID) (int64, error)
	SetMessageReaction(ctx context.Context, id, userID primitive.ObjectID, emoji string) (structures.Message, error)
	RemoveMessageReaction(ctx context.Context, id, userID primitive.ObjectID) (structures.Message, error)
	SetMessageDeleted(ctx context.Context, id primitive.ObjectID, flags mutate.MessageDeleteFlags) error
	DeleteMessageForEveryone(ctx context.Context, id, sender primitive.ObjectID) error
}

type Users interface {
	Users(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]structures.User, error)
}

type Relations interface {
	Relations(ctx context.Context, userID primitive.ObjectID) (structures.UserRelations, error)
}

// Manager owns the lifecycle of direct messages: sending, read state,
// reactions and soft deletion.
type Manager struct {
	reader    Reader
	writer    Writer
	users     Users
	relations Relations
	modelizer model.Modelizer
	now       func() time.Time
}

type Options struct {
	Reader    Reader
	Writer    Writer
	Users     Users
	Relations Relations
	Modelizer model.Modelizer
	Now       func() time.Time
}

func New(opt Options) *Manager {
	now := opt.Now
	if now == nil {
		now = time.Now
	}

	return &Manager{
		reader:    opt.Reader,
		writer:    opt.Writer,
		users:     opt.Users,
		relations: opt.Relations,
		modelizer: opt.Modelizer,
		now:       now,
	}
}
