package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/data/events"
	"github.com/snapcopy/api/data/model"
	"github.com/snapcopy/api/data/structures"
	"github.com/snapcopy/api/internal/svc/auth"
	"github.com/snapcopy/api/internal/svc/calls"
	"github.com/snapcopy/api/internal/svc/limiter"
	"github.com/snapcopy/api/internal/svc/messages"
	"github.com/snapcopy/api/internal/svc/presences"
	"github.com/snapcopy/api/internal/svc/statuses"
	"github.com/snapcopy/api/internal/testutil"
	"github.com/snapcopy/api/internal/testutil/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/time/rate"
)

type session struct {
	id string

	mx     sync.Mutex
	actor  primitive.ObjectID
	frames []events.Message[json.RawMessage]
	closed events.CloseCode
}

func newSession() *session {
	return &session{id: primitive.NewObjectID().Hex()}
}

func (s *session) SessionID() string {
	return s.id
}

func (s *session) Send(frame []byte) bool {
	msg, err := events.Decode(frame)
	if err != nil {
		panic(err)
	}

	s.mx.Lock()
	defer s.mx.Unlock()

	s.frames = append(s.frames, msg)

	return true
}

func (s *session) Actor() (primitive.ObjectID, bool) {
	s.mx.Lock()
	defer s.mx.Unlock()

	return s.actor, !s.actor.IsZero()
}

func (s *session) Bind(userID primitive.ObjectID) bool {
	s.mx.Lock()
	defer s.mx.Unlock()

	if !s.actor.IsZero() {
		return false
	}

	s.actor = userID

	return true
}

func (s *session) Close(code events.CloseCode, message string) {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.closed == 0 {
		s.closed = code
	}
}

func (s *session) closedWith() events.CloseCode {
	s.mx.Lock()
	defer s.mx.Unlock()

	return s.closed
}

// byOp returns the frames received with an opcode
func (s *session) byOp(op events.Opcode) []events.Message[json.RawMessage] {
	s.mx.Lock()
	defer s.mx.Unlock()

	result := []events.Message[json.RawMessage]{}

	for _, f := range s.frames {
		if f.Op == op {
			result = append(result, f)
		}
	}

	return result
}

func (s *session) dispatches(t events.EventType) []json.RawMessage {
	result := []json.RawMessage{}

	for _, f := range s.byOp(events.OpcodeDispatch) {
		p, err := events.ConvertMessage[events.DispatchPayload](f)
		if err != nil {
			panic(err)
		}

		if p.Data.Type == t {
			result = append(result, p.Data.Body)
		}
	}

	return result
}

func (s *session) errorCodes() []int {
	result := []int{}

	for _, f := range s.byOp(events.OpcodeError) {
		p, err := events.ConvertMessage[events.ErrorPayload](f)
		if err != nil {
			panic(err)
		}

		result = append(result, p.Data.Code)
	}

	return result
}

type fixture struct {
	store    *memstore.Store
	registry presences.Registry
	auth     auth.Authorizer
	router   *Router
	alice    structures.User
	bob      structures.User
	eve      structures.User
}

func setup(t *testing.T, lim limiter.Instance) *fixture {
	t.Helper()

	f := &fixture{
		store:    memstore.New(),
		registry: presences.New(presences.Options{}),
		auth:     auth.New(auth.AuthorizerOptions{JWTSecret: "test-secret"}),
	}

	aliceID := primitive.NewObjectID()
	bobID := primitive.NewObjectID()

	f.alice = f.store.PutUser(structures.User{ID: aliceID, Username: "alice", Friends: []primitive.ObjectID{bobID}})
	f.bob = f.store.PutUser(structures.User{ID: bobID, Username: "bob", Friends: []primitive.ObjectID{aliceID}})
	f.eve = f.store.PutUser(structures.User{Username: "eve"})

	modelizer := model.NewInstance(model.ModelInstanceOptions{})
	ev := events.NewLocal(f.registry, nil)

	f.router = NewRouter(RouterOptions{
		Messages: messages.New(messages.Options{
			Reader:    f.store,
			Writer:    f.store,
			Users:     f.store,
			Relations: f.store,
			Modelizer: modelizer,
		}),
		Statuses: statuses.New(statuses.Options{
			Reader:    f.store,
			Writer:    f.store,
			Users:     f.store,
			Relations: f.store,
			Modelizer: modelizer,
		}),
		Calls:     calls.New(ev),
		Events:    ev,
		Presences: f.registry,
		Relations: f.store,
		Auth:      f.auth,
		Limiter:   lim,
	})

	return f
}

func (f *fixture) connect(t *testing.T, user structures.User) *session {
	t.Helper()

	s := newSession()
	require.True(t, f.router.Connect(s, user.ID))

	return s
}

func emit(t *testing.T, et events.EventType, body any) []byte {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	b, err := events.NewMessage(events.OpcodeEmit, events.EmitPayload{
		Type: et,
		Body: raw,
	}).Encode()
	require.NoError(t, err)

	return b
}

func identify(t *testing.T, token string) []byte {
	t.Helper()

	b, err := events.NewMessage(events.OpcodeIdentify, events.IdentifyPayload{Token: token}).Encode()
	require.NoError(t, err)

	return b
}

func TestIdentifyBindsSession(t *testing.T) {
	t.Parallel()

	f := setup(t, nil)
	ctx := context.Background()

	token, _, err := f.auth.CreateAccessToken(f.alice.ID)
	require.NoError(t, err)

	s := newSession()
	f.router.Handle(ctx, s, identify(t, token))

	actor, ok := s.Actor()
	require.True(t, ok)
	testutil.Assert(t, f.alice.ID, actor, "bound actor")
	assert.True(t, f.registry.Online(f.alice.ID))
	assert.Len(t, s.byOp(events.OpcodeAck), 1)

	f.router.Handle(ctx, s, identify(t, token))
	testutil.Assert(t, events.CloseCodeAlreadyIdentified, s.closedWith(), "second identify")

	f.router.Disconnect(s)
	assert.False(t, f.registry.Online(f.alice.ID))
}

func TestIdentifyWithBadToken(t *testing.T) {
	t.Parallel()

	f := setup(t, nil)

	s := newSession()
	f.router.Handle(context.Background(), s, identify(t, "not.a.token"))

	_, ok := s.Actor()
	assert.False(t, ok)
	testutil.Assert(t, events.CloseCodeInvalidIdentity, s.closedWith(), "close code")
	assert.Equal(t, []int{errors.ErrUnauthorized().Code()}, s.errorCodes())
}

func TestUnidentifiedEmitIsRejected(t *testing.T) {
	t.Parallel()

	f := setup(t, nil)

	s := newSession()
	f.router.Handle(context.Background(), s, emit(t, events.EventTypeSendMessage, events.SendMessageBody{
		ReceiverID: f.bob.ID.Hex(),
		Message:    "hi",
	}))

	assert.Equal(t, []int{errors.ErrUnauthorized().Code()}, s.errorCodes())
}

func TestBadFramesClose(t *testing.T) {
	t.Parallel()

	f := setup(t, nil)
	ctx := context.Background()

	s := newSession()
	f.router.Handle(ctx, s, []byte("{"))
	testutil.Assert(t, events.CloseCodeInvalidPayload, s.closedWith(), "undecodable frame")

	s = newSession()
	b, err := events.NewMessage(events.OpcodeHello, events.HelloPayload{}).Encode()
	require.NoError(t, err)

	f.router.Handle(ctx, s, b)
	testutil.Assert(t, events.CloseCodeUnknownOperation, s.closedWith(), "server-only opcode")
}

func TestSpoofedSenderIsRejected(t *testing.T) {
	t.Parallel()

	f := setup(t, nil)
	ctx := context.Background()

	alice := f.connect(t, f.alice)
	bob := f.connect(t, f.bob)

	f.router.Handle(ctx, alice, emit(t, events.EventTypeSendMessage, events.SendMessageBody{
		SenderID:   f.bob.ID.Hex(),
		ReceiverID: f.alice.ID.Hex(),
		Message:    "i am bob",
	}))

	assert.Equal(t, []int{errors.ErrUnauthorized().Code()}, alice.errorCodes())
	assert.Empty(t, bob.byOp(events.OpcodeDispatch), "nothing reached bob")
	assert.Empty(t, alice.dispatches(events.EventTypeReceiveMessage))

	f.router.Handle(ctx, alice, emit(t, events.EventTypeJoin, events.JoinBody{UserID: f.bob.ID.Hex()}))
	assert.Len(t, alice.errorCodes(), 2, "join as someone else")
}

func TestScopedFanOut(t *testing.T) {
	t.Parallel()

	f := setup(t, nil)
	ctx := context.Background()

	alice := f.connect(t, f.alice)
	bob := f.connect(t, f.bob)
	eve := f.connect(t, f.eve)

	f.router.Handle(ctx, alice, emit(t, events.EventTypeSendMessage, events.SendMessageBody{
		SenderID:   f.alice.ID.Hex(),
		ReceiverID: f.bob.ID.Hex(),
		Message:    "hi",
	}))

	require.Len(t, alice.dispatches(events.EventTypeReceiveMessage), 1)
	require.Len(t, bob.dispatches(events.EventTypeReceiveMessage), 1)
	assert.Empty(t, eve.byOp(events.OpcodeDispatch))

	msg := model.MessageModel{}
	require.NoError(t, json.Unmarshal(bob.dispatches(events.EventTypeReceiveMessage)[0], &msg))
	testutil.Assert(t, "hi", msg.Message, "message body")

	f.router.Handle(ctx, bob, emit(t, events.EventTypeReactMessage, events.ReactMessageBody{
		MessageID: msg.ID.Hex(),
		Emoji:     "🔥",
	}))

	assert.Len(t, alice.dispatches(events.EventTypeMessageReaction), 1)
	assert.Len(t, bob.dispatches(events.EventTypeMessageReaction), 1)
	assert.Empty(t, eve.byOp(events.OpcodeDispatch))

	f.router.Handle(ctx, bob, emit(t, events.EventTypeMarkAsRead, events.MarkAsReadBody{ChatID: f.alice.ID.Hex()}))
	assert.Len(t, alice.dispatches(events.EventTypeMessagesRead), 1)
	assert.Empty(t, bob.dispatches(events.EventTypeMessagesRead))

	f.router.Handle(ctx, bob, emit(t, events.EventTypeDeleteForMe, events.DeleteMessageBody{MessageID: msg.ID.Hex()}))
	assert.Len(t, bob.dispatches(events.EventTypeMessageDeletedForMe), 1)
	assert.Empty(t, alice.dispatches(events.EventTypeMessageDeletedForMe))

	f.router.Handle(ctx, bob, emit(t, events.EventTypeDeleteForEveryone, events.DeleteMessageBody{MessageID: msg.ID.Hex()}))
	assert.Equal(t, []int{errors.ErrUnauthorized().Code()}, bob.errorCodes(), "only the sender deletes for everyone")

	f.router.Handle(ctx, alice, emit(t, events.EventTypeDeleteForEveryone, events.DeleteMessageBody{MessageID: msg.ID.Hex()}))
	assert.Len(t, alice.dispatches(events.EventTypeMessageDeletedForEveryone), 1)
	assert.Len(t, bob.dispatches(events.EventTypeMessageDeletedForEveryone), 1)
	assert.Empty(t, eve.byOp(events.OpcodeDispatch))
}

func TestChatHistoryGoesToOriginOnly(t *testing.T) {
	t.Parallel()

	f := setup(t, nil)
	ctx := context.Background()

	phone := f.connect(t, f.alice)
	laptop := newSession()
	require.True(t, f.router.Connect(laptop, f.alice.ID))

	f.router.Handle(ctx, phone, emit(t, events.EventTypeSendMessage, events.SendMessageBody{
		ReceiverID: f.bob.ID.Hex(),
		Message:    "hi",
	}))

	f.router.Handle(ctx, phone, emit(t, events.EventTypeFetchChatHistory, events.FetchChatHistoryBody{UserID: f.bob.ID.Hex()}))

	require.Len(t, phone.dispatches(events.EventTypeChatHistory), 1)
	assert.Empty(t, laptop.dispatches(events.EventTypeChatHistory))
	assert.Len(t, laptop.dispatches(events.EventTypeReceiveMessage), 1, "both devices see the message")

	history := []model.MessageModel{}
	require.NoError(t, json.Unmarshal(phone.dispatches(events.EventTypeChatHistory)[0], &history))
	assert.Len(t, history, 1)
}

func TestCallSignalingReachesTarget(t *testing.T) {
	t.Parallel()

	f := setup(t, nil)
	ctx := context.Background()

	alice := f.connect(t, f.alice)
	bob := f.connect(t, f.bob)

	f.router.Handle(ctx, alice, emit(t, events.EventTypeCallUser, events.CallUserBody{
		UserToCall: f.bob.ID.Hex(),
		SignalData: json.RawMessage(`{"sdp":"x"}`),
		Name:       "alice",
	}))

	incoming := bob.dispatches(events.EventTypeIncomingCall)
	require.Len(t, incoming, 1)

	body := events.IncomingCallBody{}
	require.NoError(t, json.Unmarshal(incoming[0], &body))
	testutil.Assert(t, f.alice.ID, body.From, "caller taken from the binding")
	assert.Empty(t, alice.byOp(events.OpcodeDispatch))

	f.router.Handle(ctx, alice, emit(t, events.EventTypeCallUser, events.CallUserBody{
		UserToCall: f.alice.ID.Hex(),
	}))
	assert.Equal(t, []int{errors.ErrInvalidRequest().Code()}, alice.errorCodes(), "calling yourself")
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	lim := limiter.New(map[string]limiter.Bucket{
		LimiterBucket: {Limit: rate.Every(time.Hour), Burst: 2},
	}, 0)

	f := setup(t, lim)
	ctx := context.Background()

	alice := f.connect(t, f.alice)
	bob := f.connect(t, f.bob)

	for i := 0; i < 3; i++ {
		f.router.Handle(ctx, alice, emit(t, events.EventTypeTyping, events.TypingBody{
			ReceiverID: f.bob.ID.Hex(),
			Typing:     true,
		}))
	}

	assert.Len(t, bob.dispatches(events.EventTypeTypingStatus), 2)
	assert.Equal(t, []int{errors.ErrRateLimited().Code()}, alice.errorCodes())
}

func TestPresenceIsAnnouncedToFriends(t *testing.T) {
	t.Parallel()

	f := setup(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	alice := f.connect(t, f.alice)
	eve := f.connect(t, f.eve)

	done := f.router.RunPresence(ctx)

	bob := f.connect(t, f.bob)

	require.Eventually(t, func() bool {
		return len(alice.dispatches(events.EventTypeUserStatus)) > 0
	}, time.Second*5, time.Millisecond*10)

	body := events.UserStatusBody{}
	require.NoError(t, json.Unmarshal(alice.dispatches(events.EventTypeUserStatus)[0], &body))
	testutil.Assert(t, f.bob.ID, body.UserID, "user id")
	testutil.Assert(t, "online", body.Status, "status")

	f.router.Disconnect(bob)

	require.Eventually(t, func() bool {
		return len(alice.dispatches(events.EventTypeUserStatus)) > 1
	}, time.Second*5, time.Millisecond*10)

	assert.Empty(t, eve.dispatches(events.EventTypeUserStatus))

	cancel()
	<-done
}
