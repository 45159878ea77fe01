package presences

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Conn is a live connection handle as seen by the registry
type Conn interface {
	SessionID() string
	// Send enqueues an encoded frame without blocking and reports whether it was accepted
	Send(frame []byte) bool
}

type Registry interface {
	Register(userID primitive.ObjectID, conn Conn)
	Unregister(userID primitive.ObjectID, conn Conn)
	Resolve(userID primitive.ObjectID) []Conn
	Online(userID primitive.ObjectID) bool
	Count() int
	// Transitions streams online and offline changes in the order they happened
	Transitions() <-chan Transition
}

type TransitionKind string

const (
	TransitionOnline  TransitionKind = "online"
	TransitionOffline TransitionKind = "offline"
)

type Transition struct {
	UserID primitive.ObjectID
	Kind   TransitionKind
}

type registry struct {
	mx    sync.RWMutex
	conns map[primitive.ObjectID]map[string]Conn

	transitions chan Transition
	onDrop      func()
}

type Options struct {
	// TransitionBuffer is the capacity of the transition stream
	TransitionBuffer int
	// OnTransitionDropped is called when a transition did not fit the buffer
	OnTransitionDropped func()
}

func New(opt Options) Registry {
	size := opt.TransitionBuffer
	if size <= 0 {
		size = 1024
	}

	return &registry{
		conns:       make(map[primitive.ObjectID]map[string]Conn),
		transitions: make(chan Transition, size),
		onDrop:      opt.OnTransitionDropped,
	}
}

func (r *registry) Register(userID primitive.ObjectID, conn Conn) {
	r.mx.Lock()
	defer r.mx.Unlock()

	set, ok := r.conns[userID]
	if !ok {
		set = make(map[string]Conn)
		r.conns[userID] = set
	}

	set[conn.SessionID()] = conn

	if len(set) == 1 {
		r.emit(Transition{UserID: userID, Kind: TransitionOnline})
	}
}

func (r *registry) Unregister(userID primitive.ObjectID, conn Conn) {
	r.mx.Lock()
	defer r.mx.Unlock()

	set, ok := r.conns[userID]
	if !ok {
		return
	}

	if _, ok := set[conn.SessionID()]; !ok {
		return
	}

	delete(set, conn.SessionID())

	if len(set) == 0 {
		delete(r.conns, userID)
		r.emit(Transition{UserID: userID, Kind: TransitionOffline})
	}
}

func (r *registry) Resolve(userID primitive.ObjectID) []Conn {
	r.mx.RLock()
	defer r.mx.RUnlock()

	set := r.conns[userID]
	result := make([]Conn, 0, len(set))

	for _, c := range set {
		result = append(result, c)
	}

	return result
}

func (r *registry) Online(userID primitive.ObjectID) bool {
	r.mx.RLock()
	defer r.mx.RUnlock()

	return len(r.conns[userID]) > 0
}

func (r *registry) Count() int {
	r.mx.RLock()
	defer r.mx.RUnlock()

	return len(r.conns)
}

func (r *registry) Transitions() <-chan Transition {
	return r.transitions
}

// emit is called with the write lock held so transitions keep their order
func (r *registry) emit(t Transition) {
	select {
	case r.transitions <- t:
	default:
		zap.S().Warnw("presence transition dropped",
			"user_id", t.UserID,
			"kind", t.Kind,
		)

		if r.onDrop != nil {
			r.onDrop()
		}
	}
}
