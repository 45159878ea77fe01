package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/data/events"
	"github.com/snapcopy/api/data/structures"
	"github.com/snapcopy/api/internal/svc/calls"
	"github.com/snapcopy/api/internal/svc/limiter"
	"github.com/snapcopy/api/internal/svc/messages"
	"github.com/snapcopy/api/internal/svc/presences"
	"github.com/snapcopy/api/internal/svc/statuses"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// LimiterBucket is the limiter category applied to client events, keyed by session
const LimiterBucket = "realtime:events"

// Session is a connection as seen by the router
type Session interface {
	presences.Conn
	// Actor returns the user bound to the session
	Actor() (primitive.ObjectID, bool)
	// Bind sets the user of the session, it fails if one is already bound
	Bind(userID primitive.ObjectID) bool
	Close(code events.CloseCode, message string)
}

type Identifier interface {
	Identify(token string) (primitive.ObjectID, error)
}

type Relations interface {
	Relations(ctx context.Context, userID primitive.ObjectID) (structures.UserRelations, error)
}

type Metrics interface {
	EventReceived(eventType string)
	EventRejected(eventType string, reason string)
}

type handlerFunc func(ctx context.Context, s Session, actor primitive.ObjectID, body json.RawMessage) error

// Router decodes client frames and hands events over to the component owning them
type Router struct {
	messages  *messages.Manager
	statuses  *statuses.Service
	calls     *calls.Relay
	events    events.Instance
	presences presences.Registry
	relations Relations
	auth      Identifier
	limiter   limiter.Instance
	metrics   Metrics

	timeout  time.Duration
	handlers map[events.EventType]handlerFunc
}

type RouterOptions struct {
	Messages  *messages.Manager
	Statuses  *statuses.Service
	Calls     *calls.Relay
	Events    events.Instance
	Presences presences.Registry
	Relations Relations
	Auth      Identifier
	Limiter   limiter.Instance
	Metrics   Metrics

	HandlerTimeout time.Duration
}

func NewRouter(opt RouterOptions) *Router {
	r := &Router{
		messages:  opt.Messages,
		statuses:  opt.Statuses,
		calls:     opt.Calls,
		events:    opt.Events,
		presences: opt.Presences,
		relations: opt.Relations,
		auth:      opt.Auth,
		limiter:   opt.Limiter,
		metrics:   opt.Metrics,
		timeout:   opt.HandlerTimeout,
	}

	if r.timeout <= 0 {
		r.timeout = time.Second * 10
	}

	r.handlers = map[events.EventType]handlerFunc{
		events.EventTypeJoin:              r.join,
		events.EventTypeSendMessage:       r.sendMessage,
		events.EventTypeMarkAsRead:        r.markAsRead,
		events.EventTypeReactMessage:      r.reactMessage,
		events.EventTypeDeleteForMe:       r.deleteForMe,
		events.EventTypeDeleteForEveryone: r.deleteForEveryone,
		events.EventTypeFetchChatHistory:  r.fetchChatHistory,
		events.EventTypeTyping:            r.typing,
		events.EventTypeCallUser:          r.callUser,
		events.EventTypeAnswerCall:        r.answerCall,
		events.EventTypeCallRejected:      r.callRejected,
		events.EventTypeEndCall:           r.endCall,
		events.EventTypeMusicEvent:        r.musicEvent,
		events.EventTypePostStatus:        r.postStatus,
		events.EventTypeViewStatus:        r.viewStatus,
	}

	return r
}

// Connect binds a session authenticated during the handshake
func (r *Router) Connect(s Session, userID primitive.ObjectID) bool {
	if userID.IsZero() || !s.Bind(userID) {
		return false
	}

	r.presences.Register(userID, s)

	return true
}

// Disconnect releases everything held for a closed session
func (r *Router) Disconnect(s Session) {
	if actor, ok := s.Actor(); ok {
		r.presences.Unregister(actor, s)
	}

	if r.limiter != nil {
		r.limiter.Forget(LimiterBucket, s.SessionID())
	}
}

// Handle processes one frame received from a session
func (r *Router) Handle(ctx context.Context, s Session, data []byte) {
	msg, err := events.Decode(data)
	if err != nil {
		s.Close(events.CloseCodeInvalidPayload, "frame could not be decoded")

		return
	}

	switch msg.Op {
	case events.OpcodeHeartbeat:
	case events.OpcodeIdentify:
		r.identify(s, msg)
	case events.OpcodeEmit:
		r.emit(ctx, s, msg)
	default:
		s.Close(events.CloseCodeUnknownOperation, fmt.Sprintf("unexpected opcode %s", msg.Op))
	}
}

func (r *Router) identify(s Session, msg events.Message[json.RawMessage]) {
	if _, ok := s.Actor(); ok {
		s.Close(events.CloseCodeAlreadyIdentified, events.CloseCodeAlreadyIdentified.String())

		return
	}

	p, err := events.ConvertMessage[events.IdentifyPayload](msg)
	if err != nil {
		s.Close(events.CloseCodeInvalidPayload, "bad identify payload")

		return
	}

	userID, err := r.auth.Identify(p.Data.Token)
	if err != nil {
		r.sendError(s, "", err)
		s.Close(events.CloseCodeInvalidIdentity, events.CloseCodeInvalidIdentity.String())

		return
	}

	if !r.Connect(s, userID) {
		s.Close(events.CloseCodeAlreadyIdentified, events.CloseCodeAlreadyIdentified.String())

		return
	}

	r.ack(s, "identify", map[string]string{"userId": userID.Hex()})
}

func (r *Router) emit(ctx context.Context, s Session, msg events.Message[json.RawMessage]) {
	p, err := events.ConvertMessage[events.EmitPayload](msg)
	if err != nil {
		r.reject(s, "", "invalid_payload", errors.ErrInvalidRequest().SetDetail("Bad event payload"))

		return
	}

	t := p.Data.Type

	if r.metrics != nil {
		r.metrics.EventReceived(t.String())
	}

	actor, ok := s.Actor()
	if !ok {
		r.reject(s, t, "unidentified", errors.ErrUnauthorized().SetDetail("Identify first"))

		return
	}

	if r.limiter != nil {
		if _, ok := r.limiter.Test(LimiterBucket, s.SessionID()); !ok {
			r.reject(s, t, "rate_limited", errors.ErrRateLimited())

			return
		}
	}

	h, ok := r.handlers[t]
	if !ok {
		r.reject(s, t, "unknown_type", errors.ErrInvalidRequest().SetDetail("Unknown event type %q", t))

		return
	}

	r.run(ctx, s, actor, t, h, p.Data.Body)
}

func (r *Router) run(ctx context.Context, s Session, actor primitive.ObjectID, t events.EventType, h handlerFunc, body json.RawMessage) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	defer func() {
		if err := recover(); err != nil {
			zap.S().Errorw("panic in event handler",
				"type", t,
				"actor_id", actor.Hex(),
				"panic", err,
				"stack", string(debug.Stack()),
			)

			r.reject(s, t, "panic", errors.ErrInternalServerError())
		}
	}()

	if err := h(ctx, s, actor, body); err != nil {
		r.reject(s, t, "failed", err)
	}
}

// reject reports a failed event. Client errors go back to the session, the rest is only logged.
func (r *Router) reject(s Session, t events.EventType, reason string, err error) {
	if r.metrics != nil {
		r.metrics.EventRejected(t.String(), reason)
	}

	apiErr, ok := err.(errors.APIError)
	if !ok {
		apiErr = errors.ErrInvalidRequest().SetDetail(err.Error())
	}

	status := apiErr.ExpectedHTTPStatus()

	switch {
	case status >= 500:
		zap.S().Errorw("event handler",
			"type", t,
			"session_id", s.SessionID(),
			"error", apiErr.Error(),
		)
	case status == 404:
		zap.S().Debugw("event target not found",
			"type", t,
			"session_id", s.SessionID(),
			"error", apiErr.Error(),
		)
	default:
		r.sendError(s, t, apiErr)
	}
}

func (r *Router) sendError(s Session, t events.EventType, err error) {
	apiErr, ok := err.(errors.APIError)
	if !ok {
		apiErr = errors.ErrInvalidRequest().SetDetail(err.Error())
	}

	frame, e := events.NewMessage(events.OpcodeError, events.ErrorPayload{
		Message: apiErr.Message(),
		Code:    apiErr.Code(),
		Type:    t,
		Fields:  apiErr.GetFields(),
	}).Encode()
	if e != nil {
		return
	}

	s.Send(frame)
}

func (r *Router) ack(s Session, command string, data any) {
	frame, err := events.AckFrame(command, data)
	if err != nil {
		return
	}

	s.Send(frame)
}

// reply sends a dispatch to this session only
func (r *Router) reply(s Session, t events.EventType, body any) error {
	frame, err := events.Frame(t, body)
	if err != nil {
		return errors.ErrInternalServerError().SetDetail(err.Error())
	}

	if !s.Send(frame) {
		zap.S().Debugw("reply dropped",
			"type", t,
			"session_id", s.SessionID(),
		)
	}

	return nil
}

// dispatch fans an event out to the targets. Delivery failures never reach the emitter.
func (r *Router) dispatch(ctx context.Context, t events.EventType, body any, targets ...primitive.ObjectID) {
	if err := r.events.Dispatch(ctx, t, body, targets...); err != nil {
		zap.S().Warnw("dispatch incomplete",
			"type", t,
			"error", err,
		)
	}
}
