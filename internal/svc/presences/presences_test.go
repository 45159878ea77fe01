package presences

import (
	"sync"
	"testing"

	"github.com/snapcopy/api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeConn struct {
	id string
}

func (c fakeConn) SessionID() string {
	return c.id
}

func (c fakeConn) Send(frame []byte) bool {
	return true
}

func drain(r Registry) []Transition {
	var out []Transition

	for {
		select {
		case t := <-r.Transitions():
			out = append(out, t)
		default:
			return out
		}
	}
}

func TestRegisterUnregister(t *testing.T) {
	t.Parallel()

	r := New(Options{})
	u := primitive.NewObjectID()
	c1, c2 := fakeConn{"c1"}, fakeConn{"c2"}

	r.Register(u, c1)
	r.Register(u, c2)

	testutil.Assert(t, true, r.Online(u), "online")
	testutil.Assert(t, 2, len(r.Resolve(u)), "both connections resolved")

	r.Unregister(u, c1)
	testutil.Assert(t, true, r.Online(u), "still online with one connection")

	r.Unregister(u, c2)
	testutil.Assert(t, false, r.Online(u), "offline")
	testutil.Assert(t, 0, len(r.Resolve(u)), "nothing resolved")
	testutil.Assert(t, 0, r.Count(), "no users")

	assert.Equal(t, []Transition{
		{UserID: u, Kind: TransitionOnline},
		{UserID: u, Kind: TransitionOffline},
	}, drain(r))
}

func TestUnregisterUnknownIsNoop(t *testing.T) {
	t.Parallel()

	r := New(Options{})
	u := primitive.NewObjectID()

	r.Unregister(u, fakeConn{"nope"})
	r.Register(u, fakeConn{"c1"})
	r.Unregister(u, fakeConn{"other"})

	testutil.Assert(t, true, r.Online(u), "unknown handle leaves user online")
	assert.Len(t, drain(r), 1)
}

func TestConcurrentConnectionsSingleOffline(t *testing.T) {
	t.Parallel()

	r := New(Options{TransitionBuffer: 4096})
	u := primitive.NewObjectID()

	const n = 200

	conns := make([]Conn, n)
	for i := range conns {
		conns[i] = fakeConn{primitive.NewObjectID().Hex()}
	}

	// keep one connection open so the set never empties during the churn
	r.Register(u, conns[0])

	wg := sync.WaitGroup{}
	for _, c := range conns[1:] {
		wg.Add(1)

		go func(c Conn) {
			defer wg.Done()

			r.Register(u, c)
			r.Unregister(u, c)
		}(c)
	}

	wg.Wait()
	r.Unregister(u, conns[0])

	ts := drain(r)
	require.Len(t, ts, 2)
	assert.Equal(t, TransitionOnline, ts[0].Kind)
	assert.Equal(t, TransitionOffline, ts[1].Kind)
}

func TestTransitionDroppedWhenFull(t *testing.T) {
	t.Parallel()

	dropped := 0
	r := New(Options{
		TransitionBuffer:    1,
		OnTransitionDropped: func() { dropped++ },
	})

	r.Register(primitive.NewObjectID(), fakeConn{"a"})
	r.Register(primitive.NewObjectID(), fakeConn{"b"})

	testutil.Assert(t, 1, dropped, "second transition dropped")
	testutil.Assert(t, 2, r.Count(), "registration unaffected")
}
