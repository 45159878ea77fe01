package loaders

import (
	"context"

	"github.com/seventv/common/dataloader"
	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/data/structures"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Instance interface {
	UserByID() UserLoaderByID
	// Users loads a set of users, ids that do not resolve are left out
	Users(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]structures.User, error)
}

// UserReader is the store access the loaders batch onto
type UserReader interface {
	Users(ctx context.Context, ids []primitive.ObjectID) ([]structures.User, error)
}

type inst struct {
	userByID UserLoaderByID
}

func New(ctx context.Context, reader UserReader) Instance {
	l := inst{}

	l.userByID = userLoader(ctx, reader)

	return &l
}

func (l *inst) UserByID() UserLoaderByID {
	return l.userByID
}

func (l *inst) Users(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]structures.User, error) {
	result := make(map[primitive.ObjectID]structures.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	type loaded struct {
		users []structures.User
		errs  []error
	}

	// the loader has no context of its own, a batch still in flight is left to finish
	ch := make(chan loaded, 1)
	go func() {
		users, errs := l.userByID.LoadAll(ids)
		ch <- loaded{users, errs}
	}()

	var (
		users []structures.User
		errs  []error
	)

	select {
	case <-ctx.Done():
		return result, errors.ErrInternalServerError().SetDetail("user lookup: %s", ctx.Err())
	case x := <-ch:
		users, errs = x.users, x.errs
	}

	for i, u := range users {
		if i < len(errs) && errs[i] != nil {
			if errs[i] == errUserNotFound {
				continue
			}

			return result, errs[i]
		}

		result[ids[i]] = u
	}

	return result, nil
}

type (
	UserLoaderByID = *dataloader.DataLoader[primitive.ObjectID, structures.User]
)
