package realtime

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/google/uuid"
	"github.com/snapcopy/api/data/events"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const writeWait = time.Second * 10

// Conn is a client websocket connection. Frames are written by a single pump
// goroutine, everyone else enqueues onto its buffer.
type Conn struct {
	ws        *websocket.Conn
	sessionID string
	heartbeat time.Duration

	send   chan []byte
	ctx    context.Context
	cancel context.CancelFunc

	mx        sync.Mutex
	actor     primitive.ObjectID
	closeCode events.CloseCode
	closeMsg  string

	beats uint64
}

func newConn(ctx context.Context, ws *websocket.Conn, heartbeat time.Duration, buffer int) *Conn {
	if buffer <= 0 {
		buffer = 64
	}

	lCtx, cancel := context.WithCancel(ctx)

	return &Conn{
		ws:        ws,
		sessionID: uuid.NewString(),
		heartbeat: heartbeat,
		send:      make(chan []byte, buffer),
		ctx:       lCtx,
		cancel:    cancel,
	}
}

func (c *Conn) SessionID() string {
	return c.sessionID
}

// Send enqueues a frame, it never blocks
func (c *Conn) Send(frame []byte) bool {
	if c.ctx.Err() != nil {
		return false
	}

	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *Conn) Actor() (primitive.ObjectID, bool) {
	c.mx.Lock()
	defer c.mx.Unlock()

	return c.actor, !c.actor.IsZero()
}

func (c *Conn) Bind(userID primitive.ObjectID) bool {
	c.mx.Lock()
	defer c.mx.Unlock()

	if !c.actor.IsZero() {
		return false
	}

	c.actor = userID

	return true
}

// Close ends the connection with an end of stream frame carrying the code
func (c *Conn) Close(code events.CloseCode, message string) {
	c.mx.Lock()
	if c.closeCode == 0 {
		c.closeCode = code
		c.closeMsg = message
	}
	c.mx.Unlock()

	c.cancel()
}

func (c *Conn) Done() <-chan struct{} {
	return c.ctx.Done()
}

func (c *Conn) greet() {
	var actor *primitive.ObjectID
	if id, ok := c.Actor(); ok {
		actor = &id
	}

	frame, err := events.NewMessage(events.OpcodeHello, events.HelloPayload{
		HeartbeatInterval: uint32(c.heartbeat.Milliseconds()),
		SessionID:         c.sessionID,
		Actor:             actor,
	}).Encode()
	if err != nil {
		return
	}

	c.Send(frame)
}

// readLoop hands every received frame to fn until the socket fails or the connection is closed
func (c *Conn) readLoop(fn func(data []byte)) {
	deadline := c.heartbeat * 3

	extend := func() {
		if deadline > 0 {
			_ = c.ws.SetReadDeadline(time.Now().Add(deadline))
		}
	}

	extend()
	c.ws.SetPongHandler(func(string) error {
		extend()

		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if c.ctx.Err() == nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					zap.S().Debugw("websocket read",
						"session_id", c.sessionID,
						"error", err,
					)
				}

				c.Close(events.CloseCodeTimeout, "connection lost")
			}

			return
		}

		extend()
		fn(data)

		if c.ctx.Err() != nil {
			return
		}
	}
}

// writePump writes queued frames and heartbeats until the connection is closed
func (c *Conn) writePump() {
	var tick <-chan time.Time

	if c.heartbeat > 0 {
		t := time.NewTicker(c.heartbeat)
		defer t.Stop()

		tick = t.C
	}

	for {
		select {
		case frame := <-c.send:
			if err := c.write(websocket.TextMessage, frame); err != nil {
				c.Close(events.CloseCodeServerError, "write failed")
			}
		case <-tick:
			if err := c.sendHeartbeat(); err != nil {
				c.Close(events.CloseCodeTimeout, "heartbeat failed")
			}
		case <-c.ctx.Done():
			c.shutdown()

			return
		}
	}
}

func (c *Conn) sendHeartbeat() error {
	frame, err := events.NewMessage(events.OpcodeHeartbeat, events.HeartbeatPayload{
		Count: atomic.AddUint64(&c.beats, 1),
	}).Encode()
	if err != nil {
		return err
	}

	if err := c.write(websocket.TextMessage, frame); err != nil {
		return err
	}

	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (c *Conn) write(messageType int, data []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return c.ws.WriteMessage(messageType, data)
}

// shutdown flushes what is queued, then says goodbye
func (c *Conn) shutdown() {
	var err error

	for flushed := false; !flushed; {
		select {
		case frame := <-c.send:
			err = multierr.Append(err, c.write(websocket.TextMessage, frame))
		default:
			flushed = true
		}
	}

	c.mx.Lock()
	code, msg := c.closeCode, c.closeMsg
	c.mx.Unlock()

	if code == 0 {
		code = events.CloseCodeRestart
		msg = events.CloseCodeRestart.String()
	}

	if frame, e := events.NewMessage(events.OpcodeEndOfStream, events.EndOfStreamPayload{
		Code:    code,
		Message: msg,
	}).Encode(); e == nil {
		err = multierr.Append(err, c.write(websocket.TextMessage, frame))
	}

	err = multierr.Append(err, c.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(int(code), msg),
		time.Now().Add(writeWait),
	))
	err = multierr.Append(err, c.ws.Close())

	if err != nil {
		zap.S().Debugw("websocket close",
			"session_id", c.sessionID,
			"error", err,
		)
	}
}
