package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/snapcopy/api/internal/svc/presences"
	"github.com/snapcopy/api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type captureConn struct {
	id     string
	full   bool
	frames [][]byte
}

func (c *captureConn) SessionID() string {
	return c.id
}

func (c *captureConn) Send(frame []byte) bool {
	if c.full {
		return false
	}

	c.frames = append(c.frames, frame)

	return true
}

type countMetrics struct {
	delivered int
	dropped   int
}

func (m *countMetrics) Delivered(n int) {
	m.delivered += n
}

func (m *countMetrics) DeliveryDropped(n int) {
	m.dropped += n
}

func TestDispatchScopedToTargets(t *testing.T) {
	t.Parallel()

	reg := presences.New(presences.Options{})
	metrics := &countMetrics{}
	pub := NewLocal(reg, metrics)

	alice, bob, carol := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	a1, a2 := &captureConn{id: "a1"}, &captureConn{id: "a2"}
	b1 := &captureConn{id: "b1"}
	c1 := &captureConn{id: "c1"}

	reg.Register(alice, a1)
	reg.Register(alice, a2)
	reg.Register(bob, b1)
	reg.Register(carol, c1)

	err := pub.Dispatch(context.Background(), EventTypeMessageDeletedForMe, MessageDeletedBody{
		MessageID: primitive.NewObjectID(),
	}, alice, alice)
	testutil.IsNil(t, err, "no delivery error")

	assert.Len(t, a1.frames, 1)
	assert.Len(t, a2.frames, 1)
	assert.Empty(t, b1.frames)
	assert.Empty(t, c1.frames)
	testutil.Assert(t, 2, metrics.delivered, "delivered count")

	msg, err := Decode(a1.frames[0])
	require.NoError(t, err)
	testutil.Assert(t, OpcodeDispatch, msg.Op, "opcode")

	d, err := ConvertMessage[DispatchPayload](msg)
	require.NoError(t, err)
	testutil.Assert(t, EventTypeMessageDeletedForMe, d.Data.Type, "event type")
}

func TestDispatchFullConnectionDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	reg := presences.New(presences.Options{})
	metrics := &countMetrics{}
	pub := NewLocal(reg, metrics)

	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()
	slow := &captureConn{id: "slow", full: true}
	fast := &captureConn{id: "fast"}

	reg.Register(alice, slow)
	reg.Register(bob, fast)

	err := pub.Dispatch(context.Background(), EventTypeTypingStatus, TypingStatusBody{Typing: true}, alice, bob)
	require.Error(t, err)

	var dropped ErrDeliveryDropped
	assert.ErrorAs(t, err, &dropped)
	assert.Equal(t, alice, dropped.UserID)

	assert.Len(t, fast.frames, 1)
	testutil.Assert(t, 1, metrics.dropped, "dropped count")
}

func TestDispatchOfflineIsNotAnError(t *testing.T) {
	t.Parallel()

	pub := NewLocal(presences.New(presences.Options{}), nil)

	err := pub.Dispatch(context.Background(), EventTypeIncomingCall, IncomingCallBody{
		Signal: json.RawMessage(`{"sdp":"x"}`),
	}, primitive.NewObjectID())
	testutil.IsNil(t, err, "offline target")
}

func TestUserFromSubject(t *testing.T) {
	t.Parallel()

	id := primitive.NewObjectID()

	got, ok := userFromSubject("relay.user", "relay.user."+id.Hex())
	testutil.Assert(t, true, ok, "parsed")
	testutil.Assert(t, id, got, "user id")

	_, ok = userFromSubject("relay.user", "relay.other."+id.Hex())
	testutil.Assert(t, false, ok, "other prefix")

	_, ok = userFromSubject("relay.user", "relay.user.nope")
	testutil.Assert(t, false, ok, "bad id")
}

func TestAckFrame(t *testing.T) {
	t.Parallel()

	id := primitive.NewObjectID()

	frame, err := AckFrame("chat_message", map[string]any{"id": id})
	require.NoError(t, err)

	msg, err := Decode(frame)
	require.NoError(t, err)
	testutil.Assert(t, OpcodeAck, msg.Op, "opcode")

	ack, err := DecodeBody[AckPayload](msg.Data)
	require.NoError(t, err)
	testutil.Assert(t, "chat_message", ack.Command, "command")
	assert.JSONEq(t, `{"id":"`+id.Hex()+`"}`, string(ack.Data))
}

func TestCloseCodeNames(t *testing.T) {
	t.Parallel()

	for _, c := range []CloseCode{
		CloseCodeServerError,
		CloseCodeUnknownOperation,
		CloseCodeInvalidPayload,
		CloseCodeInvalidIdentity,
		CloseCodeAlreadyIdentified,
		CloseCodeRestart,
		CloseCodeTimeout,
	} {
		assert.NotEqual(t, "Undocumented Closure", c.String(), c)
	}

	testutil.Assert(t, "Undocumented Closure", CloseCode(4005).String(), "unused code")
}
