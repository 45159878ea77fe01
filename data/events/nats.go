package events

import (
	"context"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/nats-io/nats.go"
	"github.com/snapcopy/api/internal/svc/presences"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type natsInst struct {
	conn    *nats.Conn
	subject string
	local   *localInst
	sub     *nats.Subscription
}

type NatsOptions struct {
	Conn *nats.Conn
	// Subject is the prefix of the per-user subjects, deliveries go to <subject>.<user id>
	Subject  string
	Registry presences.Registry
	Metrics  Metrics
}

// NewNats returns a publisher routing deliveries through NATS so that every
// process delivers to the connections it holds
func NewNats(ctx context.Context, opt NatsOptions) (Instance, error) {
	inst := &natsInst{
		conn:    opt.Conn,
		subject: strings.TrimSuffix(opt.Subject, "."),
		local: &localInst{
			registry: opt.Registry,
			metrics:  opt.Metrics,
		},
	}

	sub, err := inst.conn.Subscribe(inst.subject+".*", inst.onMessage)
	if err != nil {
		return nil, err
	}

	inst.sub = sub

	go func() {
		<-ctx.Done()

		if err := inst.sub.Unsubscribe(); err != nil && err != nats.ErrConnectionClosed {
			zap.S().Warnw("nats, unsubscribe failed",
				"error", err,
			)
		}
	}()

	return inst, nil
}

func (inst *natsInst) Dispatch(ctx context.Context, t EventType, body any, targets ...primitive.ObjectID) error {
	frame, err := Frame(t, body)
	if err != nil {
		return err
	}

	var result error

	for _, id := range dedupe(targets) {
		if err := inst.conn.Publish(inst.userSubject(id), frame); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result
}

func (inst *natsInst) onMessage(msg *nats.Msg) {
	userID, ok := userFromSubject(inst.subject, msg.Subject)
	if !ok {
		zap.S().Warnw("nats, bad delivery subject",
			"subject", msg.Subject,
		)

		return
	}

	if err := inst.local.deliver(userID, msg.Data); err != nil {
		zap.S().Debugw("nats, partial delivery",
			"error", err,
			"user_id", userID,
		)
	}
}

func (inst *natsInst) userSubject(id primitive.ObjectID) string {
	return inst.subject + "." + id.Hex()
}

func userFromSubject(prefix, subject string) (primitive.ObjectID, bool) {
	hex, ok := strings.CutPrefix(subject, prefix+".")
	if !ok {
		return primitive.NilObjectID, false
	}

	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, false
	}

	return id, true
}

// Connected reports whether the NATS connection is up
func (inst *natsInst) Connected() bool {
	return inst.conn.IsConnected()
}
