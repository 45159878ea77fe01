package statuses

import (
	"context"
	"strings"

	"github.com/seventv/common/errors"
	"github.com/seventv/common/utils"
	"github.com/snapcopy/api/data/model"
	"github.com/snapcopy/api/data/structures"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ItemInput struct {
	Type    structures.StatusItemType
	URL     string
	Caption string
}

// Create publishes a new status made of the given items
func (s *Service) Create(ctx context.Context, owner primitive.ObjectID, items []ItemInput) (model.StatusModel, error) {
	if len(items) == 0 {
		return model.StatusModel{}, errors.ErrMissingRequiredField().SetDetail("items")
	}

	if len(items) > s.maxItems {
		return model.StatusModel{}, errors.ErrInvalidRequest().SetDetail("A status can have at most %d items", s.maxItems)
	}

	now := s.now()
	status := structures.Status{
		ID:        primitive.NewObjectID(),
		UserID:    owner,
		Items:     make([]structures.StatusItem, len(items)),
		CreatedAt: now,
	}

	for i, it := range items {
		if !it.Type.Valid() {
			return model.StatusModel{}, errors.ErrInvalidRequest().SetDetail("Item %d has an unknown type %q", i, it.Type)
		}

		if strings.TrimSpace(it.URL) == "" {
			return model.StatusModel{}, errors.ErrMissingRequiredField().SetDetail("items[%d].url", i)
		}

		status.Items[i] = structures.StatusItem{
			ID:        primitive.NewObjectID(),
			Type:      it.Type,
			URL:       it.URL,
			Caption:   it.Caption,
			Viewers:   []primitive.ObjectID{},
			Timestamp: now,
		}
	}

	if err := s.writer.InsertStatus(ctx, &status); err != nil {
		return model.StatusModel{}, err
	}

	users, err := s.users.Users(ctx, []primitive.ObjectID{owner})
	if err != nil {
		return model.StatusModel{}, err
	}

	return s.modelizer.Status(status, users[owner]), nil
}

// Audience returns the users notified about a new status of owner: the owner and
// their friends, except where either side blocked the other.
func (s *Service) Audience(ctx context.Context, owner primitive.ObjectID) ([]primitive.ObjectID, error) {
	result := []primitive.ObjectID{owner}

	friends, err := s.visibleFriends(ctx, owner)
	if err != nil {
		return result, err
	}

	return append(result, friends...), nil
}

// visibleFriends lists the friends of a user which neither blocked nor were blocked by the user
func (s *Service) visibleFriends(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	rel, err := s.relations.Relations(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]primitive.ObjectID, 0, len(rel.Friends))

	for _, id := range rel.Friends {
		if id == userID || rel.HasBlocked(id) || utils.Contains(result, id) {
			continue
		}

		other, err := s.relations.Relations(ctx, id)
		if err != nil {
			if e, ok := err.(errors.APIError); ok && e.Code() == errors.ErrUnknownUser().Code() {
				continue
			}

			return nil, err
		}

		if other.HasBlocked(userID) {
			continue
		}

		result = append(result, id)
	}

	return result, nil
}
