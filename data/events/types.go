package events

type EventType string

// Client events
const (
	EventTypeJoin              EventType = "join"
	EventTypeSendMessage       EventType = "sendMessage"
	EventTypeMarkAsRead        EventType = "markAsRead"
	EventTypeReactMessage      EventType = "reactMessage"
	EventTypeDeleteForMe       EventType = "deleteForMe"
	EventTypeDeleteForEveryone EventType = "deleteForEveryone"
	EventTypeFetchChatHistory  EventType = "fetchChatHistory"
	EventTypeTyping            EventType = "typing"
	EventTypeCallUser          EventType = "callUser"
	EventTypeAnswerCall        EventType = "answerCall"
	EventTypePostStatus        EventType = "postStatus"
	EventTypeViewStatus        EventType = "viewStatus"
)

// Server events
const (
	EventTypeUserStatus                EventType = "userStatus"
	EventTypeReceiveMessage            EventType = "receiveMessage"
	EventTypeMessagesRead              EventType = "messagesRead"
	EventTypeMessageReaction           EventType = "messageReaction"
	EventTypeMessageDeletedForMe       EventType = "messageDeletedForMe"
	EventTypeMessageDeletedForEveryone EventType = "messageDeletedForEveryone"
	EventTypeChatHistory               EventType = "chatHistory"
	EventTypeTypingStatus              EventType = "typingStatus"
	EventTypeIncomingCall              EventType = "incomingCall"
	EventTypeCallAccepted              EventType = "callAccepted"
	EventTypeNewStatus                 EventType = "newStatus"
	EventTypeStatusViewed              EventType = "statusViewed"
)

// Events named the same in both directions
const (
	EventTypeCallRejected EventType = "callRejected"
	EventTypeEndCall      EventType = "endCall"
	EventTypeMusicEvent   EventType = "musicEvent"
)

func (et EventType) String() string {
	return string(et)
}
