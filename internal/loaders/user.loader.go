package loaders

import (
	"context"
	"errors"
	"time"

	"github.com/seventv/common/dataloader"
	"github.com/snapcopy/api/data/structures"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errUserNotFound = errors.New("user not found")

func userLoader(ctx context.Context, reader UserReader) UserLoaderByID {
	return dataloader.New(dataloader.Config[primitive.ObjectID, structures.User]{
		Wait: time.Millisecond * 5,
		Fetch: func(keys []primitive.ObjectID) ([]structures.User, []error) {
			ctx, cancel := context.WithTimeout(ctx, time.Second*10)
			defer cancel()

			models := make([]structures.User, len(keys))
			errs := make([]error, len(keys))

			users, err := reader.Users(ctx, keys)
			if err == nil {
				m := make(map[primitive.ObjectID]structures.User)
				for _, u := range users {
					m[u.ID] = u
				}

				for i, v := range keys {
					if x, ok := m[v]; ok {
						models[i] = x
					} else {
						errs[i] = errUserNotFound
					}
				}
			} else {
				for i := range errs {
					errs[i] = err
				}
			}

			return models, errs
		},
	})
}
