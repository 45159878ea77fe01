package calls

import (
	"context"
	"encoding/json"

	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/data/events"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Relay forwards call signaling and other peer-to-peer events between two users.
// It keeps no state: an offline target simply never receives the event.
type Relay struct {
	events events.Instance
}

func New(ev events.Instance) *Relay {
	return &Relay{
		events: ev,
	}
}

func (r *Relay) Call(ctx context.Context, from, to primitive.ObjectID, signal json.RawMessage, name string) error {
	return r.forward(ctx, from, to, events.EventTypeIncomingCall, events.IncomingCallBody{
		From:   from,
		Signal: orNull(signal),
		Name:   name,
	})
}

// Answer passes the answer signal through untouched
func (r *Relay) Answer(ctx context.Context, from, to primitive.ObjectID, signal json.RawMessage) error {
	return r.forward(ctx, from, to, events.EventTypeCallAccepted, orNull(signal))
}

func (r *Relay) Reject(ctx context.Context, from, to primitive.ObjectID) error {
	return r.forward(ctx, from, to, events.EventTypeCallRejected, events.CallPartyBody{
		From: from,
	})
}

func (r *Relay) End(ctx context.Context, from, to primitive.ObjectID) error {
	return r.forward(ctx, from, to, events.EventTypeEndCall, events.CallPartyBody{
		From: from,
	})
}

func (r *Relay) Typing(ctx context.Context, from, to primitive.ObjectID, typing bool) error {
	return r.forward(ctx, from, to, events.EventTypeTypingStatus, events.TypingStatusBody{
		Typing:   typing,
		SenderID: from,
	})
}

func (r *Relay) Music(ctx context.Context, from, to primitive.ObjectID, action string, data json.RawMessage) error {
	if action == "" {
		return errors.ErrMissingRequiredField().SetDetail("action")
	}

	return r.forward(ctx, from, to, events.EventTypeMusicEvent, events.MusicEventDispatchBody{
		From:   from,
		Action: action,
		Data:   orNull(data),
	})
}

func (r *Relay) forward(ctx context.Context, from, to primitive.ObjectID, t events.EventType, body any) error {
	if to.IsZero() {
		return errors.ErrInvalidRequest().SetDetail("Missing target user")
	}

	if from == to {
		return errors.ErrInvalidRequest().SetDetail("Cannot target yourself")
	}

	if err := r.events.Dispatch(ctx, t, body, to); err != nil {
		zap.S().Warnw("relay, delivery failed",
			"type", t,
			"from", from.Hex(),
			"to", to.Hex(),
			"error", err,
		)
	}

	return nil
}

func orNull(v json.RawMessage) json.RawMessage {
	if len(v) == 0 {
		return json.RawMessage("null")
	}

	return v
}
