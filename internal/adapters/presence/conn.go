package presence

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var ErrBackpressure = errors.New("backpressure")
var ErrConnClosed = errors.New("connection closed")

const sendQueueSize = 32

// connState is the per-connection lifecycle: a connection starts
// connecting, becomes joined only after a validated join_room, and
// closed is terminal.
type connState int

const (
	stateConnecting connState = iota
	stateJoined
	stateClosed
)

// Conn wraps one live websocket. Writes go through a bounded send
// queue; a full queue surfaces as backpressure instead of stalling the
// broadcast to other subscribers.
type Conn struct {
	id   string
	sock *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	state  connState
	roomID int
	userID int
}

func newConn(sock *websocket.Conn) *Conn {
	return &Conn{
		id:   uuid.NewString(),
		sock: sock,
		send: make(chan []byte, sendQueueSize),
	}
}

func (c *Conn) TrySend(b []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state == stateClosed {
		return ErrConnClosed
	}
	select {
	case c.send <- b:
		return nil
	default:
		return ErrBackpressure
	}
}

// Close is idempotent and terminal.
func (c *Conn) Close() {
	c.mu.Lock()
	if c.state == stateClosed {
		c.mu.Unlock()
		return
	}
	c.state = stateClosed
	close(c.send)
	c.mu.Unlock()
	if c.sock != nil {
		_ = c.sock.Close()
	}
}

func (c *Conn) setJoined(roomID, userID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateClosed {
		return
	}
	c.state = stateJoined
	c.roomID = roomID
	c.userID = userID
}

// clearJoined returns the connection to the connecting state after an
// explicit leave; the socket stays open and may join again.
func (c *Conn) clearJoined() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateJoined {
		c.state = stateConnecting
		c.roomID = 0
	}
}

// joined reports the subscription, valid only while in the joined state.
func (c *Conn) joined() (roomID, userID int, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID, c.userID, c.state == stateJoined
}

func (c *Conn) closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state == stateClosed
}
