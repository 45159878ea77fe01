package events

import (
	"encoding/json"

	"github.com/snapcopy/api/data/structures"
)

// Bodies of client events. Ids are hex strings. Fields naming an actor
// (senderId, userId, from) are only compared against the bound identity.

type JoinBody struct {
	UserID string `json:"userId"`
}

type SendMessageBody struct {
	SenderID   string                      `json:"senderId,omitempty"`
	ReceiverID string                      `json:"receiverId"`
	Message    string                      `json:"message"`
	FileURL    string                      `json:"fileUrl"`
	Type       structures.MessageType      `json:"type"`
	Location   *structures.MessageLocation `json:"location,omitempty"`
	ReplyTo    string                      `json:"replyTo,omitempty"`
}

type MarkAsReadBody struct {
	UserID string `json:"userId,omitempty"`
	ChatID string `json:"chatId"`
}

type ReactMessageBody struct {
	UserID    string `json:"userId,omitempty"`
	MessageID string `json:"messageId"`
	Emoji     string `json:"emoji"`
}

type DeleteMessageBody struct {
	UserID    string `json:"userId,omitempty"`
	MessageID string `json:"messageId"`
}

type FetchChatHistoryBody struct {
	UserID string `json:"userId"`
}

type TypingBody struct {
	SenderID   string `json:"senderId,omitempty"`
	ReceiverID string `json:"receiverId"`
	Typing     bool   `json:"typing"`
}

type CallUserBody struct {
	From       string          `json:"from,omitempty"`
	UserToCall string          `json:"userToCall"`
	SignalData json.RawMessage `json:"signalData"`
	Name       string          `json:"name"`
}

type AnswerCallBody struct {
	To     string          `json:"to"`
	Signal json.RawMessage `json:"signal"`
}

// CallTargetBody is used by callRejected and endCall
type CallTargetBody struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
}

type MusicEventBody struct {
	From   string          `json:"from,omitempty"`
	To     string          `json:"to"`
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type PostStatusBody struct {
	UserID string           `json:"userId,omitempty"`
	Items  []StatusItemBody `json:"items"`
}

type StatusItemBody struct {
	Type    structures.StatusItemType `json:"type"`
	URL     string                    `json:"url"`
	Caption string                    `json:"caption"`
}

type ViewStatusBody struct {
	UserID string `json:"userId,omitempty"`
	ItemID string `json:"itemId"`
}
