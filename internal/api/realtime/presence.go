package realtime

import (
	"context"
	"time"

	"github.com/snapcopy/api/data/events"
	"github.com/snapcopy/api/internal/svc/presences"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// RunPresence broadcasts presence transitions to the friends of each user until ctx is done
func (r *Router) RunPresence(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)

		ch := r.presences.Transitions()

		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ch:
				r.announce(ctx, t)
			}
		}
	}()

	return done
}

func (r *Router) announce(ctx context.Context, t presences.Transition) {
	lCtx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	rel, err := r.relations.Relations(lCtx, t.UserID)
	if err != nil {
		zap.S().Errorw("failed to resolve friends for presence",
			"user_id", t.UserID.Hex(),
			"error", err,
		)

		return
	}

	targets := make([]primitive.ObjectID, 0, len(rel.Friends))

	for _, id := range rel.Friends {
		if rel.HasBlocked(id) {
			continue
		}

		targets = append(targets, id)
	}

	if len(targets) == 0 {
		return
	}

	r.dispatch(lCtx, events.EventTypeUserStatus, events.UserStatusBody{
		UserID: t.UserID,
		Status: string(t.Kind),
	}, targets...)
}
