package realtime

import (
	"context"
	"encoding/json"

	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/data/events"
	"github.com/snapcopy/api/data/model"
	"github.com/snapcopy/api/internal/svc/messages"
	"github.com/snapcopy/api/internal/svc/statuses"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func decode[T any](body json.RawMessage) (T, error) {
	v, err := events.DecodeBody[T](body)
	if err != nil {
		return v, errors.ErrInvalidRequest().SetDetail("Bad event body")
	}

	return v, nil
}

// claim rejects a body naming an actor other than the bound user
func claim(field, value string, actor primitive.ObjectID) error {
	if value == "" || value == actor.Hex() {
		return nil
	}

	return errors.ErrUnauthorized().SetDetail("%s does not match the identified user", field)
}

// parseID reads an optional object id, an empty value yields the zero id
func parseID(field, value string) (primitive.ObjectID, error) {
	if value == "" {
		return primitive.NilObjectID, nil
	}

	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, errors.ErrBadObjectID().SetDetail(field)
	}

	return id, nil
}

func requireID(field, value string) (primitive.ObjectID, error) {
	if value == "" {
		return primitive.NilObjectID, errors.ErrMissingRequiredField().SetDetail(field)
	}

	return parseID(field, value)
}

func (r *Router) join(ctx context.Context, s Session, actor primitive.ObjectID, body json.RawMessage) error {
	b, err := decode[events.JoinBody](body)
	if err != nil {
		return err
	}

	if b.UserID != actor.Hex() {
		return errors.ErrUnauthorized().SetDetail("userId does not match the identified user")
	}

	r.ack(s, events.EventTypeJoin.String(), map[string]string{"userId": actor.Hex()})

	return nil
}

func (r *Router) sendMessage(ctx context.Context, s Session, actor primitive.ObjectID, body json.RawMessage) error {
	b, err := decode[events.SendMessageBody](body)
	if err != nil {
		return err
	}

	if err := claim("senderId", b.SenderID, actor); err != nil {
		return err
	}

	receiver, err := parseID("receiverId", b.ReceiverID)
	if err != nil {
		return err
	}

	in := messages.SendInput{
		Receiver: receiver,
		Message:  b.Message,
		FileURL:  b.FileURL,
		Type:     b.Type,
		Location: b.Location,
	}

	if b.ReplyTo != "" {
		replyTo, err := parseID("replyTo", b.ReplyTo)
		if err != nil {
			return err
		}

		in.ReplyTo = &replyTo
	}

	msg, err := r.messages.Send(ctx, actor, in)
	if err != nil {
		return err
	}

	r.dispatch(ctx, events.EventTypeReceiveMessage, msg, msg.Sender.ID, msg.Receiver.ID)

	return nil
}

func (r *Router) markAsRead(ctx context.Context, s Session, actor primitive.ObjectID, body json.RawMessage) error {
	b, err := decode[events.MarkAsReadBody](body)
	if err != nil {
		return err
	}

	if err := claim("userId", b.UserID, actor); err != nil {
		return err
	}

	peer, err := requireID("chatId", b.ChatID)
	if err != nil {
		return err
	}

	if _, err := r.messages.MarkRead(ctx, actor, peer); err != nil {
		return err
	}

	r.dispatch(ctx, events.EventTypeMessagesRead, events.MessagesReadBody{UserID: actor}, peer)

	return nil
}

func (r *Router) reactMessage(ctx context.Context, s Session, actor primitive.ObjectID, body json.RawMessage) error {
	b, err := decode[events.ReactMessageBody](body)
	if err != nil {
		return err
	}

	if err := claim("userId", b.UserID, actor); err != nil {
		return err
	}

	id, err := requireID("messageId", b.MessageID)
	if err != nil {
		return err
	}

	msg, err := r.messages.React(ctx, id, actor, b.Emoji)
	if err != nil {
		return err
	}

	r.dispatch(ctx, events.EventTypeMessageReaction, events.MessageReactionBody{
		Message: msg,
		Emoji:   b.Emoji,
	}, msg.Sender.ID, msg.Receiver.ID)

	return nil
}

func (r *Router) deleteForMe(ctx context.Context, s Session, actor primitive.ObjectID, body json.RawMessage) error {
	b, err := decode[events.DeleteMessageBody](body)
	if err != nil {
		return err
	}

	if err := claim("userId", b.UserID, actor); err != nil {
		return err
	}

	id, err := requireID("messageId", b.MessageID)
	if err != nil {
		return err
	}

	if err := r.messages.DeleteForMe(ctx, id, actor); err != nil {
		return err
	}

	r.dispatch(ctx, events.EventTypeMessageDeletedForMe, events.MessageDeletedBody{MessageID: id}, actor)

	return nil
}

func (r *Router) deleteForEveryone(ctx context.Context, s Session, actor primitive.ObjectID, body json.RawMessage) error {
	b, err := decode[events.DeleteMessageBody](body)
	if err != nil {
		return err
	}

	if err := claim("userId", b.UserID, actor); err != nil {
		return err
	}

	id, err := requireID("messageId", b.MessageID)
	if err != nil {
		return err
	}

	parties, err := r.messages.DeleteForEveryone(ctx, id, actor)
	if err != nil {
		return err
	}

	r.dispatch(ctx, events.EventTypeMessageDeletedForEveryone, events.MessageDeletedBody{MessageID: id}, parties...)

	return nil
}

func (r *Router) fetchChatHistory(ctx context.Context, s Session, actor primitive.ObjectID, body json.RawMessage) error {
	b, err := decode[events.FetchChatHistoryBody](body)
	if err != nil {
		return err
	}

	peer, err := requireID("userId", b.UserID)
	if err != nil {
		return err
	}

	// a failed read is answered with an empty history
	history, _ := r.messages.History(ctx, actor, peer)
	if history == nil {
		history = []model.MessageModel{}
	}

	return r.reply(s, events.EventTypeChatHistory, history)
}

func (r *Router) typing(ctx context.Context, s Session, actor primitive.ObjectID, body json.RawMessage) error {
	b, err := decode[events.TypingBody](body)
	if err != nil {
		return err
	}

	if err := claim("senderId", b.SenderID, actor); err != nil {
		return err
	}

	to, err := parseID("receiverId", b.ReceiverID)
	if err != nil {
		return err
	}

	return r.calls.Typing(ctx, actor, to, b.Typing)
}

func (r *Router) callUser(ctx context.Context, s Session, actor primitive.ObjectID, body json.RawMessage) error {
	b, err := decode[events.CallUserBody](body)
	if err != nil {
		return err
	}

	if err := claim("from", b.From, actor); err != nil {
		return err
	}

	to, err := parseID("userToCall", b.UserToCall)
	if err != nil {
		return err
	}

	return r.calls.Call(ctx, actor, to, b.SignalData, b.Name)
}

func (r *Router) answerCall(ctx context.Context, s Session, actor primitive.ObjectID, body json.RawMessage) error {
	b, err := decode[events.AnswerCallBody](body)
	if err != nil {
		return err
	}

	to, err := parseID("to", b.To)
	if err != nil {
		return err
	}

	return r.calls.Answer(ctx, actor, to, b.Signal)
}

func (r *Router) callRejected(ctx context.Context, s Session, actor primitive.ObjectID, body json.RawMessage) error {
	b, err := decode[events.CallTargetBody](body)
	if err != nil {
		return err
	}

	if err := claim("from", b.From, actor); err != nil {
		return err
	}

	to, err := parseID("to", b.To)
	if err != nil {
		return err
	}

	return r.calls.Reject(ctx, actor, to)
}

func (r *Router) endCall(ctx context.Context, s Session, actor primitive.ObjectID, body json.RawMessage) error {
	b, err := decode[events.CallTargetBody](body)
	if err != nil {
		return err
	}

	if err := claim("from", b.From, actor); err != nil {
		return err
	}

	to, err := parseID("to", b.To)
	if err != nil {
		return err
	}

	return r.calls.End(ctx, actor, to)
}

func (r *Router) musicEvent(ctx context.Context, s Session, actor primitive.ObjectID, body json.RawMessage) error {
	b, err := decode[events.MusicEventBody](body)
	if err != nil {
		return err
	}

	if err := claim("from", b.From, actor); err != nil {
		return err
	}

	to, err := parseID("to", b.To)
	if err != nil {
		return err
	}

	return r.calls.Music(ctx, actor, to, b.Action, b.Data)
}

func (r *Router) postStatus(ctx context.Context, s Session, actor primitive.ObjectID, body json.RawMessage) error {
	b, err := decode[events.PostStatusBody](body)
	if err != nil {
		return err
	}

	if err := claim("userId", b.UserID, actor); err != nil {
		return err
	}

	items := make([]statuses.ItemInput, len(b.Items))
	for i, it := range b.Items {
		items[i] = statuses.ItemInput{
			Type:    it.Type,
			URL:     it.URL,
			Caption: it.Caption,
		}
	}

	st, err := r.statuses.Create(ctx, actor, items)
	if err != nil {
		return err
	}

	PublishStatus(ctx, r.statuses, r.events, st)

	return nil
}

func (r *Router) viewStatus(ctx context.Context, s Session, actor primitive.ObjectID, body json.RawMessage) error {
	b, err := decode[events.ViewStatusBody](body)
	if err != nil {
		return err
	}

	if err := claim("userId", b.UserID, actor); err != nil {
		return err
	}

	itemID, err := requireID("itemId", b.ItemID)
	if err != nil {
		return err
	}

	res, err := r.statuses.RecordView(ctx, itemID, actor)
	if err != nil {
		return err
	}

	PublishView(ctx, r.events, res, actor)

	return nil
}
