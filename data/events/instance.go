package events

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/snapcopy/api/internal/svc/presences"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Instance interface {
	// Dispatch encodes an event once and delivers it to every live connection of the targets.
	// Targets without connections are skipped, a failed delivery never stops the others.
	Dispatch(ctx context.Context, t EventType, body any, targets ...primitive.ObjectID) error
}

// Remote is implemented by publishers that depend on a broker connection
type Remote interface {
	Connected() bool
}

// Metrics receives delivery counts
type Metrics interface {
	Delivered(n int)
	DeliveryDropped(n int)
}

type ErrDeliveryDropped struct {
	UserID    primitive.ObjectID
	SessionID string
}

func (e ErrDeliveryDropped) Error() string {
	return fmt.Sprintf("delivery dropped (user=%s session=%s)", e.UserID.Hex(), e.SessionID)
}

// Frame encodes a dispatch frame
func Frame(t EventType, body any) ([]byte, error) {
	raw, err := codec.Marshal(body)
	if err != nil {
		return nil, err
	}

	return NewMessage(OpcodeDispatch, DispatchPayload{
		Type: t,
		Body: raw,
	}).Encode()
}

// AckFrame encodes the acknowledgement of a command
func AckFrame(command string, body any) ([]byte, error) {
	raw, err := codec.Marshal(body)
	if err != nil {
		return nil, err
	}

	return NewMessage(OpcodeAck, AckPayload{
		Command: command,
		Data:    raw,
	}).Encode()
}

type localInst struct {
	registry presences.Registry
	metrics  Metrics
}

// NewLocal returns a publisher delivering to the connections of this process only
func NewLocal(registry presences.Registry, metrics Metrics) Instance {
	return &localInst{
		registry: registry,
		metrics:  metrics,
	}
}

func (inst *localInst) Dispatch(ctx context.Context, t EventType, body any, targets ...primitive.ObjectID) error {
	frame, err := Frame(t, body)
	if err != nil {
		return err
	}

	var result error

	for _, id := range dedupe(targets) {
		if err := inst.deliver(id, frame); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result
}

func (inst *localInst) deliver(userID primitive.ObjectID, frame []byte) error {
	var (
		result  error
		sent    int
		dropped int
	)

	for _, c := range inst.registry.Resolve(userID) {
		if c.Send(frame) {
			sent++

			continue
		}

		dropped++
		result = multierror.Append(result, ErrDeliveryDropped{
			UserID:    userID,
			SessionID: c.SessionID(),
		})
	}

	if inst.metrics != nil {
		if sent > 0 {
			inst.metrics.Delivered(sent)
		}

		if dropped > 0 {
			inst.metrics.DeliveryDropped(dropped)
		}
	}

	return result
}

func dedupe(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	result := make([]primitive.ObjectID, 0, len(ids))

	for _, id := range ids {
		if id.IsZero() {
			continue
		}

		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		result = append(result, id)
	}

	return result
}
