package limiter

import (
	"testing"
	"time"

	"github.com/snapcopy/api/internal/testutil"
	"golang.org/x/time/rate"
)

func TestBurstThenReject(t *testing.T) {
	t.Parallel()

	l := New(map[string]Bucket{
		"events": {Limit: rate.Every(time.Hour), Burst: 3},
	}, 0)

	for i := 0; i < 3; i++ {
		_, ok := l.Test("events", "a")
		testutil.Assert(t, true, ok, "within burst")
	}

	remaining, ok := l.Test("events", "a")
	testutil.Assert(t, false, ok, "over the limit")
	testutil.Assert(t, 0, remaining, "no tokens left")

	// buckets are per identifier
	_, ok = l.Test("events", "b")
	testutil.Assert(t, true, ok, "other identifier")

	l.Forget("events", "a")

	_, ok = l.Test("events", "a")
	testutil.Assert(t, true, ok, "state reset after forget")
}

func TestUnknownBucketIsUnlimited(t *testing.T) {
	t.Parallel()

	l := New(nil, 0)

	for i := 0; i < 100; i++ {
		_, ok := l.Test("nothing", "a")
		testutil.Assert(t, true, ok, "unlimited")
	}
}

func TestEvictIdle(t *testing.T) {
	t.Parallel()

	l := New(map[string]Bucket{
		"rest": PerMinute(1),
	}, time.Minute).(*limiterInst)

	_, ok := l.Test("rest", "a")
	testutil.Assert(t, true, ok, "first call")

	_, ok = l.Test("rest", "a")
	testutil.Assert(t, false, ok, "second call limited")

	l.evict(time.Now().Add(time.Hour))

	_, ok = l.Test("rest", "a")
	testutil.Assert(t, true, ok, "idle entry evicted")
}

func TestPerMinuteDisabled(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, -5} {
		l := New(map[string]Bucket{"rest": PerMinute(n)}, 0)

		for i := 0; i < 100; i++ {
			_, ok := l.Test("rest", "a")
			testutil.Assert(t, true, ok, "disabled bucket never limits")
		}
	}

	b := PerMinute(60)
	testutil.Assert(t, rate.Limit(1), b.Limit, "one token per second")
	testutil.Assert(t, 60, b.Burst, "burst")
}
