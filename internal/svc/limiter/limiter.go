package limiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Instance interface {
	// Test takes one token from the identifier's bucket and reports whether the
	// call is within the limit, along with the tokens left.
	Test(bucket string, identifier string) (remaining int, ok bool)
	// Forget drops the state kept for an identifier
	Forget(bucket string, identifier string)
	// Run evicts idle entries until ctx is done
	Run(ctx context.Context, every time.Duration)
}

// Bucket is the token bucket applied to each identifier of a category
type Bucket struct {
	Limit rate.Limit
	Burst int
}

// PerMinute is a bucket refilling n tokens per minute with a burst of n.
// A non-positive n disables the limit.
func PerMinute(n int) Bucket {
	if n <= 0 {
		return Bucket{}
	}

	return Bucket{
		Limit: rate.Every(time.Minute / time.Duration(n)),
		Burst: n,
	}
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterInst struct {
	buckets map[string]Bucket
	idle    time.Duration

	mx sync.Mutex
	m  map[string]map[string]*entry
}

// New creates a limiter pool. Unknown buckets are never limited.
func New(buckets map[string]Bucket, idle time.Duration) Instance {
	if idle <= 0 {
		idle = time.Minute * 10
	}

	return &limiterInst{
		buckets: buckets,
		idle:    idle,
		m:       make(map[string]map[string]*entry),
	}
}

func (inst *limiterInst) Test(bucket string, identifier string) (int, bool) {
	b, ok := inst.buckets[bucket]
	if !ok || b.Limit <= 0 {
		return 0, true
	}

	inst.mx.Lock()
	defer inst.mx.Unlock()

	entries, ok := inst.m[bucket]
	if !ok {
		entries = make(map[string]*entry)
		inst.m[bucket] = entries
	}

	e, ok := entries[identifier]
	if !ok {
		burst := b.Burst
		if burst <= 0 {
			burst = 1
		}

		e = &entry{limiter: rate.NewLimiter(b.Limit, burst)}
		entries[identifier] = e
	}

	e.lastSeen = time.Now()
	allowed := e.limiter.Allow()

	remaining := int(e.limiter.Tokens())
	if remaining < 0 {
		remaining = 0
	}

	return remaining, allowed
}

func (inst *limiterInst) Forget(bucket string, identifier string) {
	inst.mx.Lock()
	defer inst.mx.Unlock()

	if entries, ok := inst.m[bucket]; ok {
		delete(entries, identifier)
	}
}

func (inst *limiterInst) Run(ctx context.Context, every time.Duration) {
	tick := time.NewTicker(every)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			inst.evict(now)
		}
	}
}

func (inst *limiterInst) evict(now time.Time) {
	inst.mx.Lock()
	defer inst.mx.Unlock()

	for _, entries := range inst.m {
		for id, e := range entries {
			if now.Sub(e.lastSeen) > inst.idle {
				delete(entries, id)
			}
		}
	}
}
