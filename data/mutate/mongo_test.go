package mutate

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/data/query"
	"github.com/snapcopy/api/data/structures"
	"github.com/snapcopy/api/internal/svc/mongo"
	"github.com/snapcopy/api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// setupMongo connects to the server named by SNAPCOPY_TEST_MONGO_URI, using a
// throwaway database.
func setupMongo(t *testing.T) mongo.Instance {
	t.Helper()

	uri := os.Getenv("SNAPCOPY_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SNAPCOPY_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	inst, err := mongo.Setup(ctx, mongo.SetupOptions{
		URI: uri,
		DB:  "snapcopy_test_" + primitive.NewObjectID().Hex(),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		for _, name := range []mongo.CollectionName{mongo.CollectionNameMessages, mongo.CollectionNameStatuses} {
			_ = inst.Collection(name).Drop(ctx)
		}

		_ = inst.Close(ctx)
	})

	return inst
}

func TestMongoReactionIsSinglePerUser(t *testing.T) {
	inst := setupMongo(t)
	m := New(InstanceOptions{Mongo: inst})
	ctx := context.Background()

	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	msg := &structures.Message{Sender: alice, Receiver: bob, Message: "hi", Type: structures.MessageTypeText, Timestamp: time.Now()}
	require.NoError(t, m.InsertMessage(ctx, msg))

	wg := sync.WaitGroup{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.SetMessageReaction(ctx, msg.ID, bob, "👍")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := m.SetMessageReaction(ctx, msg.ID, bob, "🔥")
	require.NoError(t, err)
	require.Len(t, got.Reactions, 1, "one entry per user")
	testutil.Assert(t, "🔥", got.Reactions[0].Emoji, "replaced in place")

	_, err = m.SetMessageReaction(ctx, primitive.NewObjectID(), bob, "👍")
	testutil.AssertCode(t, errors.ErrUnknownMessage(), err, "unknown message")
}

func TestMongoStatusViewers(t *testing.T) {
	inst := setupMongo(t)
	m := New(InstanceOptions{Mongo: inst})
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	itemID := primitive.NewObjectID()
	viewer := primitive.NewObjectID()

	st := &structures.Status{
		UserID: primitive.NewObjectID(),
		Items: []structures.StatusItem{{
			ID:        itemID,
			Type:      structures.StatusItemTypeImage,
			URL:       "/a.png",
			Viewers:   []primitive.ObjectID{},
			Timestamp: now,
		}},
		CreatedAt: now,
	}
	require.NoError(t, m.InsertStatus(ctx, st))

	for i := 0; i < 2; i++ {
		got, err := m.AddStatusViewer(ctx, itemID, viewer, now.Add(-time.Hour))
		require.NoError(t, err)
		assert.Equal(t, []primitive.ObjectID{viewer}, got.Items[0].Viewers, "viewer recorded once")
	}

	_, err := m.AddStatusViewer(ctx, itemID, viewer, now)
	testutil.AssertCode(t, errors.ErrNoItems(), err, "expired status")

	n, err := m.PurgeExpiredStatuses(ctx, now)
	require.NoError(t, err)
	testutil.Assert(t, int64(1), n, "purged")
}

func TestMongoRecentConversations(t *testing.T) {
	inst := setupMongo(t)
	m := New(InstanceOptions{Mongo: inst})
	q := query.New(inst)
	ctx := context.Background()

	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	carol := primitive.NewObjectID()
	start := time.Now().UTC().Truncate(time.Millisecond)

	for i, msg := range []structures.Message{
		{Sender: bob, Receiver: alice},
		{Sender: bob, Receiver: alice},
		{Sender: alice, Receiver: bob},
		{Sender: carol, Receiver: alice, Read: true},
		{Sender: alice, Receiver: carol, DeletedForSender: true},
	} {
		msg.Type = structures.MessageTypeText
		msg.Timestamp = start.Add(time.Duration(i) * time.Second)
		require.NoError(t, m.InsertMessage(ctx, &msg))
	}

	convs, err := q.RecentConversations(ctx, alice)
	require.NoError(t, err)
	require.Len(t, convs, 2)

	// the message alice deleted for herself does not count as activity
	testutil.Assert(t, carol, convs[0].PeerID, "latest activity first")
	testutil.Assert(t, int32(0), convs[0].UnreadCount, "read messages")
	testutil.Assert(t, bob, convs[1].PeerID, "bob")
	testutil.Assert(t, int32(2), convs[1].UnreadCount, "unread from bob")
	testutil.Assert(t, alice, convs[1].Latest.Sender, "latest message of the conversation")
}
