package loaders

import (
	"context"
	"testing"
	"time"

	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/data/structures"
	"github.com/snapcopy/api/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userReader struct {
	users   map[primitive.ObjectID]structures.User
	release chan struct{}
}

func (r *userReader) Users(ctx context.Context, ids []primitive.ObjectID) ([]structures.User, error) {
	if r.release != nil {
		<-r.release
	}

	result := []structures.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			result = append(result, u)
		}
	}

	return result, nil
}

func TestUsersSkipsUnknown(t *testing.T) {
	t.Parallel()

	alice := structures.User{ID: primitive.NewObjectID(), Username: "alice"}
	reader := &userReader{users: map[primitive.ObjectID]structures.User{alice.ID: alice}}

	l := New(context.Background(), reader)

	users, err := l.Users(context.Background(), []primitive.ObjectID{alice.ID, primitive.NewObjectID()})
	require.NoError(t, err)
	testutil.Assert(t, 1, len(users), "unknown id left out")
	testutil.Assert(t, "alice", users[alice.ID].Username, "resolved")
}

func TestUsersHonorsContext(t *testing.T) {
	t.Parallel()

	reader := &userReader{release: make(chan struct{})}
	defer close(reader.release)

	l := New(context.Background(), reader)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*50)
	defer cancel()

	start := time.Now()
	_, err := l.Users(ctx, []primitive.ObjectID{primitive.NewObjectID()})
	testutil.AssertCode(t, errors.ErrInternalServerError(), err, "deadline reached")
	testutil.Assert(t, true, time.Since(start) < time.Second, "returned at the deadline")
}
