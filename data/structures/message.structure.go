package structures

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a direct message between two users, as stored in the messages collection.
type Message struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Sender   primitive.ObjectID `bson:"sender"`
	Receiver primitive.ObjectID `bson:"receiver"`

	Message  string              `bson:"message"`
	FileURL  string              `bson:"fileUrl"`
	Type     MessageType         `bson:"type"`
	Location *MessageLocation    `bson:"location"`
	ReplyTo  *primitive.ObjectID `bson:"replyTo"`

	Reactions []MessageReaction `bson:"reactions"`

	Read               bool      `bson:"read"`
	DeletedForSender   bool      `bson:"deletedForSender"`
	DeletedForReceiver bool      `bson:"deletedForReceiver"`
	Timestamp          time.Time `bson:"timestamp"`
}

type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeImage    MessageType = "image"
	MessageTypeDocument MessageType = "document"
	MessageTypeLocation MessageType = "location"
	MessageTypeEmoji    MessageType = "emoji"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeDocument, MessageTypeLocation, MessageTypeEmoji:
		return true
	}

	return false
}

type MessageLocation struct {
	Lat     float64 `bson:"lat" json:"lat"`
	Lng     float64 `bson:"lng" json:"lng"`
	Address string  `bson:"address" json:"address"`
}

type MessageReaction struct {
	Emoji  string             `bson:"emoji"`
	UserID primitive.ObjectID `bson:"userId"`
}

// ReactionRemove is the reaction value which clears a user's reaction instead of being stored
const ReactionRemove = "remove"

// IsParty returns whether the user is the sender or the receiver of the message
func (m Message) IsParty(userID primitive.ObjectID) bool {
	return m.Sender == userID || m.Receiver == userID
}

// VisibleTo returns whether the message is still visible to one of its parties.
// Users that are not a party never see the message.
func (m Message) VisibleTo(userID primitive.ObjectID) bool {
	switch userID {
	case m.Sender:
		if m.Sender == m.Receiver {
			return !m.DeletedForSender && !m.DeletedForReceiver
		}

		return !m.DeletedForSender
	case m.Receiver:
		return !m.DeletedForReceiver
	}

	return false
}

// Parties returns the distinct user ids taking part in the message
func (m Message) Parties() []primitive.ObjectID {
	if m.Sender == m.Receiver {
		return []primitive.ObjectID{m.Sender}
	}

	return []primitive.ObjectID{m.Sender, m.Receiver}
}

// Reaction returns the reaction of a user, if any
func (m Message) Reaction(userID primitive.ObjectID) (MessageReaction, bool) {
	for _, r := range m.Reactions {
		if r.UserID == userID {
			return r, true
		}
	}

	return MessageReaction{}, false
}

// Conversation is the latest message exchanged with a peer and the number of
// messages from that peer which have not been read yet.
type Conversation struct {
	PeerID      primitive.ObjectID `bson:"_id"`
	Latest      Message            `bson:"latest"`
	UnreadCount int32              `bson:"unread_count"`
}
