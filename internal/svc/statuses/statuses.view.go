package statuses

import (
	"context"

	"github.com/snapcopy/api/data/structures"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ViewResult struct {
	Status      structures.Status
	ItemID      primitive.ObjectID
	ViewerCount int
}

// RecordView adds the viewer to an item of a live status. Viewing twice changes nothing.
func (s *Service) RecordView(ctx context.Context, itemID, viewer primitive.ObjectID) (ViewResult, error) {
	status, err := s.writer.AddStatusViewer(ctx, itemID, viewer, s.since())
	if err != nil {
		return ViewResult{}, err
	}

	result := ViewResult{
		Status: status,
		ItemID: itemID,
	}

	if it, ok := status.Item(itemID); ok {
		result.ViewerCount = len(it.Viewers)
	}

	return result, nil
}
