package statuses

import (
	"context"
	"sort"

	"github.com/snapcopy/api/data/model"
	"github.com/snapcopy/api/data/structures"
	"github.com/snapcopy/api/internal/configure"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Watch builds the status feed of a user
func (s *Service) Watch(ctx context.Context, requester primitive.ObjectID) (model.StatusWatchModel, error) {
	result := model.StatusWatchModel{
		MyStatuses:     []model.OwnStatusGroupModel{},
		FriendStatuses: []model.FriendStatusGroupModel{},
	}

	friends, err := s.visibleFriends(ctx, requester)
	if err != nil {
		return result, err
	}

	now := s.now()
	since := now.Add(-s.ttl)

	statuses, err := s.reader.StatusesByOwners(ctx, append([]primitive.ObjectID{requester}, friends...), since)
	if err != nil {
		return result, err
	}

	var (
		own    []structures.Status
		others []structures.Status
	)

	for _, st := range statuses {
		if st.Expired(now, s.ttl) {
			continue
		}

		if st.UserID == requester {
			own = append(own, st)
		} else {
			others = append(others, st)
		}
	}

	userIDs := []primitive.ObjectID{requester}
	for _, st := range own {
		for _, it := range st.Items {
			userIDs = append(userIDs, it.Viewers...)
		}
	}

	for _, st := range others {
		userIDs = append(userIDs, st.UserID)
	}

	users, err := s.users.Users(ctx, userIDs)
	if err != nil {
		return result, err
	}

	result.FriendStatuses = s.friendGroups(others, requester, users)
	result.HasFriendStatuses = len(result.FriendStatuses) > 0

	switch s.policy {
	case configure.ViewerPolicyIndependent:
		result.OwnViewersVisible = true
		result.CanWatch = true
	default:
		result.CanWatch = !result.HasFriendStatuses
		result.OwnViewersVisible = result.CanWatch
	}

	if len(own) > 0 {
		result.MyStatuses = append(result.MyStatuses, s.ownGroup(own, requester, users, result.OwnViewersVisible))
	}

	return result, nil
}

// ownGroup merges the statuses of the requester into a single group
func (s *Service) ownGroup(statuses []structures.Status, requester primitive.ObjectID, users map[primitive.ObjectID]structures.User, withViewers bool) model.OwnStatusGroupModel {
	// oldest first so items read in the order they were posted
	sort.SliceStable(statuses, func(i, j int) bool {
		return statuses[i].CreatedAt.Before(statuses[j].CreatedAt)
	})

	group := model.OwnStatusGroupModel{
		ID:    requester,
		User:  s.userModel(requester, users),
		Items: []model.OwnStatusItemModel{},
	}

	for _, st := range statuses {
		for _, it := range st.Items {
			viewers := []model.UserPartialModel{}

			if withViewers {
				for _, v := range it.Viewers {
					if u, ok := users[v]; ok {
						viewers = append(viewers, s.modelizer.User(u))
					}
				}
			}

			group.Items = append(group.Items, model.OwnStatusItemModel{
				StatusItemModel: s.modelizer.StatusItem(it),
				StatusID:        st.ID,
				Viewers:         viewers,
			})

			if it.Timestamp.After(group.CreatedAt) {
				group.CreatedAt = it.Timestamp
			}
		}
	}

	return group
}

// friendGroups groups the statuses of other users per owner, newest group first
func (s *Service) friendGroups(statuses []structures.Status, requester primitive.ObjectID, users map[primitive.ObjectID]structures.User) []model.FriendStatusGroupModel {
	sort.SliceStable(statuses, func(i, j int) bool {
		return statuses[i].CreatedAt.After(statuses[j].CreatedAt)
	})

	groups := []model.FriendStatusGroupModel{}
	index := map[primitive.ObjectID]int{}

	for _, st := range statuses {
		owner, ok := users[st.UserID]
		if !ok {
			continue
		}

		i, ok := index[st.UserID]
		if !ok {
			i = len(groups)
			index[st.UserID] = i

			groups = append(groups, model.FriendStatusGroupModel{
				ID:        st.UserID,
				User:      s.modelizer.User(owner),
				Items:     []model.FriendStatusItemModel{},
				CreatedAt: st.CreatedAt,
				AllViewed: true,
			})
		}

		g := &groups[i]

		for _, it := range st.Items {
			viewed := it.HasViewer(requester)
			if !viewed {
				g.AllViewed = false
			}

			g.Items = append(g.Items, model.FriendStatusItemModel{
				StatusItemModel: s.modelizer.StatusItem(it),
				StatusID:        st.ID,
				Viewed:          viewed,
			})
		}
	}

	for i := range groups {
		if len(groups[i].Items) == 0 {
			groups[i].AllViewed = false
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].CreatedAt.After(groups[j].CreatedAt)
	})

	return groups
}

func (s *Service) userModel(id primitive.ObjectID, users map[primitive.ObjectID]structures.User) model.UserPartialModel {
	if u, ok := users[id]; ok {
		return s.modelizer.User(u)
	}

	return model.UserPartialModel{ID: id}
}
