package realtime

import (
	"context"

	"github.com/snapcopy/api/data/events"
	"github.com/snapcopy/api/data/model"
	"github.com/snapcopy/api/internal/svc/statuses"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PublishStatus announces a new status to its owner and their friends.
// The REST upload route goes through here as well.
func PublishStatus(ctx context.Context, svc *statuses.Service, ev events.Instance, st model.StatusModel) {
	audience, err := svc.Audience(ctx, st.User.ID)
	if err != nil {
		zap.S().Errorw("failed to resolve status audience",
			"status_id", st.ID.Hex(),
			"error", err,
		)

		// the owner still gets their own status
		audience = []primitive.ObjectID{st.User.ID}
	}

	if err := ev.Dispatch(ctx, events.EventTypeNewStatus, st, audience...); err != nil {
		zap.S().Warnw("dispatch incomplete",
			"type", events.EventTypeNewStatus,
			"error", err,
		)
	}
}

// PublishView tells the status owner and the viewer about a recorded view
func PublishView(ctx context.Context, ev events.Instance, res statuses.ViewResult, viewer primitive.ObjectID) {
	if err := ev.Dispatch(ctx, events.EventTypeStatusViewed, events.StatusViewedBody{
		StatusID:    res.Status.ID,
		ItemID:      res.ItemID,
		UserID:      viewer,
		ViewerCount: res.ViewerCount,
	}, res.Status.UserID, viewer); err != nil {
		zap.S().Warnw("dispatch incomplete",
			"type", events.EventTypeStatusViewed,
			"error", err,
		)
	}
}
