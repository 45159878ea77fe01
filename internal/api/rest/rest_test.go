package rest

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/data/events"
	"github.com/snapcopy/api/data/model"
	"github.com/snapcopy/api/data/structures"
	"github.com/snapcopy/api/internal/api/rest/rest"
	"github.com/snapcopy/api/internal/configure"
	"github.com/snapcopy/api/internal/global"
	"github.com/snapcopy/api/internal/loaders"
	"github.com/snapcopy/api/internal/svc/auth"
	"github.com/snapcopy/api/internal/svc/limiter"
	"github.com/snapcopy/api/internal/svc/messages"
	"github.com/snapcopy/api/internal/svc/presences"
	"github.com/snapcopy/api/internal/svc/s3"
	"github.com/snapcopy/api/internal/svc/statuses"
	"github.com/snapcopy/api/internal/testutil"
	"github.com/snapcopy/api/internal/testutil/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// userList serves the loaders from the in-memory store
type userList struct {
	store *memstore.Store
}

func (u userList) Users(ctx context.Context, ids []primitive.ObjectID) ([]structures.User, error) {
	m, err := u.store.Users(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]structures.User, 0, len(m))
	for _, id := range ids {
		if x, ok := m[id]; ok {
			result = append(result, x)
		}
	}

	return result, nil
}

type fixture struct {
	gctx    global.Context
	handler fasthttp.RequestHandler
	store   *memstore.Store
	storage *s3.MockInstance
	alice   structures.User
	bob     structures.User
}

func setup(t *testing.T, restPerMinute int) *fixture {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := configure.Default()
	cfg.Limits.RestPerMinute = restPerMinute

	f := &fixture{
		gctx:    global.New(ctx, &cfg),
		store:   memstore.New(),
		storage: s3.NewMock(map[string]map[string][]byte{"media": {}}),
	}

	aliceID := primitive.NewObjectID()
	bobID := primitive.NewObjectID()

	f.alice = f.store.PutUser(structures.User{ID: aliceID, Username: "alice", Friends: []primitive.ObjectID{bobID}})
	f.bob = f.store.PutUser(structures.User{ID: bobID, Username: "bob", Friends: []primitive.ObjectID{aliceID}})

	inst := f.gctx.Inst()
	inst.Auth = auth.New(auth.AuthorizerOptions{JWTSecret: "test-secret"})
	inst.Modelizer = model.NewInstance(model.ModelInstanceOptions{})
	inst.Presences = presences.New(presences.Options{})
	inst.Events = events.NewLocal(inst.Presences, nil)
	inst.Loaders = loaders.New(ctx, userList{f.store})
	inst.Limiter = limiter.New(map[string]limiter.Bucket{
		"rest": limiter.PerMinute(restPerMinute),
	}, time.Minute)
	inst.Messages = messages.New(messages.Options{
		Reader:    f.store,
		Writer:    f.store,
		Users:     f.store,
		Relations: f.store,
		Modelizer: inst.Modelizer,
	})
	inst.Statuses = statuses.New(statuses.Options{
		Reader:    f.store,
		Writer:    f.store,
		Users:     f.store,
		Relations: f.store,
		Modelizer: inst.Modelizer,
		Storage:   f.storage,
		Bucket:    "media",
		PublicURL: "https://cdn.example.com",
	})

	f.handler = newServer(f.gctx, nil).handler(f.gctx)

	return f
}

func (f *fixture) token(t *testing.T, user structures.User) string {
	t.Helper()

	token, _, err := f.gctx.Inst().Auth.CreateAccessToken(user.ID)
	require.NoError(t, err)

	return token
}

func (f *fixture) do(method, uri, token string, body []byte) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if body != nil {
		req.SetBody(body)
	}

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)

	f.handler(ctx)

	return ctx
}

func decodeError(t *testing.T, ctx *fasthttp.RequestCtx) rest.APIErrorResponse {
	t.Helper()

	var resp rest.APIErrorResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))

	return resp
}

func TestInfo(t *testing.T) {
	t.Parallel()

	f := setup(t, 100)

	ctx := f.do("GET", "/v1", "", nil)
	testutil.Assert(t, fasthttp.StatusOK, ctx.Response.StatusCode(), "status")

	var info map[string]any
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &info))
	assert.Equal(t, "snapcopy-api", info["name"])
	assert.EqualValues(t, 0, info["online"])
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()

	f := setup(t, 100)

	ctx := f.do("GET", "/v1/nothing/here", "", nil)
	testutil.Assert(t, fasthttp.StatusNotFound, ctx.Response.StatusCode(), "status")
	testutil.Assert(t, errors.ErrUnknownRoute().Code(), decodeError(t, ctx).ErrorCode, "error code")
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()

	f := setup(t, 100)

	ctx := f.do("GET", "/v1/chat/recent", "", nil)
	testutil.Assert(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode(), "anonymous")

	ctx = f.do("GET", "/v1/chat/recent", "not-a-token", nil)
	testutil.Assert(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode(), "bad token")
	assert.NotEmpty(t, string(ctx.Response.Header.Peek("X-Auth-Failure")))
}

func TestChatHistory(t *testing.T) {
	t.Parallel()

	f := setup(t, 100)
	now := time.Now()

	f.store.PutMessage(structures.Message{
		Sender:    f.alice.ID,
		Receiver:  f.bob.ID,
		Message:   "hi",
		Type:      structures.MessageTypeText,
		Timestamp: now.Add(-time.Minute),
	})
	f.store.PutMessage(structures.Message{
		Sender:    f.bob.ID,
		Receiver:  f.alice.ID,
		Message:   "hello",
		Type:      structures.MessageTypeText,
		Timestamp: now,
	})

	ctx := f.do("GET", "/v1/chat/history/"+f.bob.ID.Hex(), f.token(t, f.alice), nil)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var result []model.MessageModel
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &result))
	require.Len(t, result, 2)
	testutil.Assert(t, "hi", result[0].Message, "oldest first")
	testutil.Assert(t, "hello", result[1].Message, "newest last")

	ctx = f.do("GET", "/v1/chat/recent", f.token(t, f.alice), nil)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var recent []json.RawMessage
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &recent))
	assert.Len(t, recent, 1)

	ctx = f.do("GET", "/v1/chat/history/not-an-id", f.token(t, f.alice), nil)
	testutil.Assert(t, errors.ErrBadObjectID().Code(), decodeError(t, ctx).ErrorCode, "bad id")
}

func TestStatusLifecycle(t *testing.T) {
	t.Parallel()

	f := setup(t, 100)

	body := []byte(`{"items":[{"type":"image","url":"https://cdn.example.com/a.png","caption":"sunset"}]}`)

	ctx := f.do("POST", "/v1/status/upload", f.token(t, f.alice), body)
	require.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode(), string(ctx.Response.Body()))

	var st model.StatusModel
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &st))
	require.Len(t, st.Items, 1)
	testutil.Assert(t, f.alice.ID, st.User.ID, "owner")

	itemID := st.Items[0].ID

	ctx = f.do("POST", "/v1/status/view/"+itemID.Hex(), f.token(t, f.bob), nil)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode(), string(ctx.Response.Body()))

	stored, ok := f.store.GetStatus(st.ID)
	require.True(t, ok)
	assert.Equal(t, []primitive.ObjectID{f.bob.ID}, stored.Items[0].Viewers)

	ctx = f.do("GET", "/v1/status/watch", f.token(t, f.bob), nil)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var feed model.StatusWatchModel
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &feed))
	require.Len(t, feed.FriendStatuses, 1)
	assert.True(t, feed.FriendStatuses[0].AllViewed)
	assert.True(t, feed.HasFriendStatuses)

	ctx = f.do("POST", "/v1/status/view/"+primitive.NewObjectID().Hex(), f.token(t, f.bob), nil)
	testutil.Assert(t, fasthttp.StatusNotFound, ctx.Response.StatusCode(), "unknown item")
}

func TestStatusCreateRejectsBadBody(t *testing.T) {
	t.Parallel()

	f := setup(t, 100)

	ctx := f.do("POST", "/v1/status/upload", f.token(t, f.alice), []byte(`{"items":`))
	testutil.Assert(t, errors.ErrInvalidRequest().Code(), decodeError(t, ctx).ErrorCode, "malformed json")

	ctx = f.do("POST", "/v1/status/upload", f.token(t, f.alice), []byte(`{"items":[]}`))
	testutil.Assert(t, errors.ErrMissingRequiredField().Code(), decodeError(t, ctx).ErrorCode, "no items")
}

func TestStatusFile(t *testing.T) {
	t.Parallel()

	f := setup(t, 100)

	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}

	ctx := f.do("POST", "/v1/status/file", f.token(t, f.alice), png)
	require.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode(), string(ctx.Response.Body()))

	var result statuses.UploadResult
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &result))
	assert.Contains(t, result.FileURL, "https://cdn.example.com/status/"+f.alice.ID.Hex()+"/")

	ctx = f.do("POST", "/v1/status/file", f.token(t, f.alice), []byte("plain text"))
	testutil.Assert(t, errors.ErrInvalidRequest().Code(), decodeError(t, ctx).ErrorCode, "not media")
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	f := setup(t, 2)
	token := f.token(t, f.alice)

	for i := 0; i < 2; i++ {
		ctx := f.do("GET", "/v1/status/watch", token, nil)
		require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		assert.Equal(t, "2", string(ctx.Response.Header.Peek("X-RateLimit-Limit")))
	}

	ctx := f.do("GET", "/v1/status/watch", token, nil)
	testutil.Assert(t, fasthttp.StatusTooManyRequests, ctx.Response.StatusCode(), "over the limit")
}

func TestRateLimitDisabled(t *testing.T) {
	t.Parallel()

	f := setup(t, 0)
	token := f.token(t, f.alice)

	for i := 0; i < 20; i++ {
		ctx := f.do("GET", "/v1/status/watch", token, nil)
		require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		assert.Empty(t, ctx.Response.Header.Peek("X-RateLimit-Limit"))
	}
}

func TestCORS(t *testing.T) {
	t.Parallel()

	f := setup(t, 100)

	var req fasthttp.Request
	req.Header.SetMethod("OPTIONS")
	req.SetRequestURI("/v1/status/watch")
	req.Header.Set("Origin", "https://app.example.com")

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)

	f.handler(ctx)

	testutil.Assert(t, fasthttp.StatusNoContent, ctx.Response.StatusCode(), "preflight")
	testutil.Assert(t, "https://app.example.com", string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")), "origin")
	testutil.Assert(t, "false", string(ctx.Response.Header.Peek("Access-Control-Allow-Credentials")), "not whitelisted")
}

func TestRouteRegistration(t *testing.T) {
	t.Parallel()

	gctx := global.New(context.Background(), &configure.Config{})

	var s *HttpServer
	require.NotPanics(t, func() { s = newServer(gctx, nil) })

	registered := s.router.List()
	assert.ElementsMatch(t, []string{
		"/v1",
		"/v1/chat",
		"/v1/chat/recent",
		"/v1/chat/history/{user.id}",
		"/v1/status",
		"/v1/status/watch",
		"/v1/ws",
	}, registered[fasthttp.MethodGet])
	assert.ElementsMatch(t, []string{
		"/v1/status/view/{item.id}",
		"/v1/status/upload",
		"/v1/status/file",
	}, registered[fasthttp.MethodPost])
}
