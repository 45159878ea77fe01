// Package memstore is an in-memory stand-in for the mongo backed query and
// mutate layers, used by tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/data/mutate"
	"github.com/snapcopy/api/data/structures"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	mx       sync.Mutex
	users    map[primitive.ObjectID]structures.User
	messages map[primitive.ObjectID]structures.Message
	statuses map[primitive.ObjectID]structures.Status

	// Fail makes every call return this error when set
	Fail error
}

func New() *Store {
	return &Store{
		users:    map[primitive.ObjectID]structures.User{},
		messages: map[primitive.ObjectID]structures.Message{},
		statuses: map[primitive.ObjectID]structures.Status{},
	}
}

func (s *Store) PutUser(u structures.User) structures.User {
	s.mx.Lock()
	defer s.mx.Unlock()

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}

	s.users[u.ID] = u

	return u
}

func (s *Store) PutMessage(m structures.Message) structures.Message {
	s.mx.Lock()
	defer s.mx.Unlock()

	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}

	s.messages[m.ID] = m

	return m
}

func (s *Store) PutStatus(st structures.Status) structures.Status {
	s.mx.Lock()
	defer s.mx.Unlock()

	if st.ID.IsZero() {
		st.ID = primitive.NewObjectID()
	}

	s.statuses[st.ID] = st

	return st
}

func (s *Store) GetMessage(id primitive.ObjectID) (structures.Message, bool) {
	s.mx.Lock()
	defer s.mx.Unlock()

	m, ok := s.messages[id]

	return m, ok
}

func (s *Store) GetStatus(id primitive.ObjectID) (structures.Status, bool) {
	s.mx.Lock()
	defer s.mx.Unlock()

	st, ok := s.statuses[id]

	return st, ok
}

// Users

func (s *Store) Users(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]structures.User, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.Fail != nil {
		return nil, s.Fail
	}

	result := make(map[primitive.ObjectID]structures.User, len(ids))

	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			result[id] = u
		}
	}

	return result, nil
}

func (s *Store) Relations(ctx context.Context, userID primitive.ObjectID) (structures.UserRelations, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.Fail != nil {
		return structures.UserRelations{}, s.Fail
	}

	u, ok := s.users[userID]
	if !ok {
		return structures.UserRelations{}, errors.ErrUnknownUser()
	}

	return u.Relations(), nil
}

// Messages

func (s *Store) Message(ctx context.Context, id primitive.ObjectID) (structures.Message, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.Fail != nil {
		return structures.Message{}, s.Fail
	}

	m, ok := s.messages[id]
	if !ok {
		return m, errors.ErrUnknownMessage()
	}

	return m, nil
}

func (s *Store) MessagesByID(ctx context.Context, ids []primitive.ObjectID) ([]structures.Message, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.Fail != nil {
		return nil, s.Fail
	}

	result := []structures.Message{}

	for _, id := range ids {
		if m, ok := s.messages[id]; ok {
			result = append(result, m)
		}
	}

	return result, nil
}

func (s *Store) History(ctx context.Context, a, b primitive.ObjectID) ([]structures.Message, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.Fail != nil {
		return nil, s.Fail
	}

	result := []structures.Message{}

	for _, m := range s.messages {
		if (m.Sender == a && m.Receiver == b) || (m.Sender == b && m.Receiver == a) {
			result = append(result, m)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})

	return result, nil
}

func (s *Store) RecentConversations(ctx context.Context, userID primitive.ObjectID) ([]structures.Conversation, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.Fail != nil {
		return nil, s.Fail
	}

	convs := map[primitive.ObjectID]*structures.Conversation{}

	for _, m := range s.messages {
		if !m.IsParty(userID) || !m.VisibleTo(userID) {
			continue
		}

		peer := m.Sender
		if m.Sender == userID {
			peer = m.Receiver
		}

		c, ok := convs[peer]
		if !ok {
			c = &structures.Conversation{PeerID: peer, Latest: m}
			convs[peer] = c
		}

		if m.Timestamp.After(c.Latest.Timestamp) {
			c.Latest = m
		}

		if m.Receiver == userID && !m.Read {
			c.UnreadCount++
		}
	}

	result := make([]structures.Conversation, 0, len(convs))
	for _, c := range convs {
		result = append(result, *c)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Latest.Timestamp.After(result[j].Latest.Timestamp)
	})

	return result, nil
}

func (s *Store) InsertMessage(ctx context.Context, msg *structures.Message) error {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.Fail != nil {
		return s.Fail
	}

	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}

	s.messages[msg.ID] = *msg

	return nil
}

func (s *Store) MarkMessagesRead(ctx context.Context, sender, receiver primitive.ObjectID) (int64, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.Fail != nil {
		return 0, s.Fail
	}

	var n int64

	for id, m := range s.messages {
		if m.Sender == sender && m.Receiver == receiver && !m.Read {
			m.Read = true
			s.messages[id] = m
			n++
		}
	}

	return n, nil
}

func (s *Store) SetMessageReaction(ctx context.Context, id, userID primitive.ObjectID, emoji string) (structures.Message, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.Fail != nil {
		return structures.Message{}, s.Fail
	}

	m, ok := s.messages[id]
	if !ok {
		return m, errors.ErrUnknownMessage()
	}

	reactions := make([]structures.MessageReaction, 0, len(m.Reactions)+1)
	found := false

	for _, r := range m.Reactions {
		if r.UserID == userID {
			r.Emoji = emoji
			found = true
		}

		reactions = append(reactions, r)
	}

	if !found {
		reactions = append(reactions, structures.MessageReaction{Emoji: emoji, UserID: userID})
	}

	m.Reactions = reactions
	s.messages[id] = m

	return m, nil
}

func (s *Store) RemoveMessageReaction(ctx context.Context, id, userID primitive.ObjectID) (structures.Message, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.Fail != nil {
		return structures.Message{}, s.Fail
	}

	m, ok := s.messages[id]
	if !ok {
		return m, errors.ErrUnknownMessage()
	}

	reactions := make([]structures.MessageReaction, 0, len(m.Reactions))

	for _, r := range m.Reactions {
		if r.UserID != userID {
			reactions = append(reactions, r)
		}
	}

	m.Reactions = reactions
	s.messages[id] = m

	return m, nil
}

func (s *Store) SetMessageDeleted(ctx context.Context, id primitive.ObjectID, flags mutate.MessageDeleteFlags) error {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.Fail != nil {
		return s.Fail
	}

	m, ok := s.messages[id]
	if !ok {
		return errors.ErrUnknownMessage()
	}

	m.DeletedForSender = m.DeletedForSender || flags.Sender
	m.DeletedForReceiver = m.DeletedForReceiver || flags.Receiver
	s.messages[id] = m

	return nil
}

func (s *Store) DeleteMessageForEveryone(ctx context.Context, id, sender primitive.ObjectID) error {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.Fail != nil {
		return s.Fail
	}

	m, ok := s.messages[id]
	if !ok || m.Sender != sender {
		return errors.ErrUnknownMessage()
	}

	m.DeletedForSender = true
	m.DeletedForReceiver = true
	s.messages[id] = m

	return nil
}

// Statuses

func (s *Store) StatusesByOwners(ctx context.Context, owners []primitive.ObjectID, since time.Time) ([]structures.Status, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.Fail != nil {
		return nil, s.Fail
	}

	set := make(map[primitive.ObjectID]struct{}, len(owners))
	for _, id := range owners {
		set[id] = struct{}{}
	}

	result := []structures.Status{}

	for _, st := range s.statuses {
		if _, ok := set[st.UserID]; ok && st.CreatedAt.After(since) {
			result = append(result, st)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (s *Store) InsertStatus(ctx context.Context, status *structures.Status) error {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.Fail != nil {
		return s.Fail
	}

	if status.ID.IsZero() {
		status.ID = primitive.NewObjectID()
	}

	s.statuses[status.ID] = *status

	return nil
}

func (s *Store) AddStatusViewer(ctx context.Context, itemID, viewerID primitive.ObjectID, since time.Time) (structures.Status, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.Fail != nil {
		return structures.Status{}, s.Fail
	}

	for id, st := range s.statuses {
		if !st.CreatedAt.After(since) {
			continue
		}

		for i, it := range st.Items {
			if it.ID != itemID {
				continue
			}

			if !it.HasViewer(viewerID) {
				items := make([]structures.StatusItem, len(st.Items))
				copy(items, st.Items)

				viewers := make([]primitive.ObjectID, len(it.Viewers), len(it.Viewers)+1)
				copy(viewers, it.Viewers)
				items[i].Viewers = append(viewers, viewerID)

				st.Items = items
				s.statuses[id] = st
			}

			return st, nil
		}
	}

	return structures.Status{}, errors.ErrNoItems().SetDetail("Status item not found")
}

func (s *Store) PurgeExpiredStatuses(ctx context.Context, before time.Time) (int64, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.Fail != nil {
		return 0, s.Fail
	}

	var n int64

	for id, st := range s.statuses {
		if !st.CreatedAt.After(before) {
			delete(s.statuses, id)
			n++
		}
	}

	return n, nil
}
