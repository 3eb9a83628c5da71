// Package presence is the real-time fan-out layer: it owns every live
// websocket, validates intent events against the registry, applies the
// mutation, and re-publishes the normalized event to every connection
// subscribed to the room, sender included.
package presence

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/AkanshuAich/video-based-social-app/internal/registry"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	reg     *registry.Registry
	limiter *JoinRateLimiter
	policy  Policy

	pingPeriod time.Duration
	readLimit  int64

	mu    sync.RWMutex
	rooms map[int]map[string]*Conn
}

func NewController(reg *registry.Registry, pingPeriod time.Duration, readLimit int64) *Controller {
	return &Controller{
		reg:        reg,
		limiter:    NewJoinRateLimiter(10, time.Minute),
		policy:     PrunePolicy{},
		pingPeriod: pingPeriod,
		readLimit:  readLimit,
		rooms:      make(map[int]map[string]*Conn),
	}
}

// HandlePresence upgrades the request and runs the connection until
// the transport dies or the server shuts down.
func (ctl *Controller) HandlePresence(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "presence").Msg("ws upgrade")
		return
	}

	conn := newConn(ws)
	log.Info().Str("module", "presence").Str("conn", conn.id).Str("client", c.GetString("client_token")).Msg("new connection")

	ctl.unicast(conn, newEvent(EventConnectionAck, 0, 0, AckPayload{
		Status:    "connected",
		Timestamp: time.Now(),
	}))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go ctl.writePump(ctx, conn)
	ctl.readPump(ctx, conn)
}

// Shutdown closes every live connection; registry state is left as-is
// since the process is going away with it.
func (ctl *Controller) Shutdown() {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	for _, conns := range ctl.rooms {
		for _, conn := range conns {
			conn.Close()
		}
	}
	ctl.rooms = make(map[int]map[string]*Conn)
}

func (ctl *Controller) attach(roomID int, conn *Conn) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	if _, ok := ctl.rooms[roomID]; !ok {
		ctl.rooms[roomID] = make(map[string]*Conn)
	}
	ctl.rooms[roomID][conn.id] = conn
}

func (ctl *Controller) detach(roomID int, conn *Conn) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	if conns, ok := ctl.rooms[roomID]; ok {
		delete(conns, conn.id)
		if len(conns) == 0 {
			delete(ctl.rooms, roomID)
		}
	}
}

// subscribers returns a copied snapshot so fan-out never iterates a
// set that a concurrent join/leave is mutating.
func (ctl *Controller) subscribers(roomID int) []*Conn {
	ctl.mu.RLock()
	defer ctl.mu.RUnlock()
	out := make([]*Conn, 0, len(ctl.rooms[roomID]))
	for _, conn := range ctl.rooms[roomID] {
		out = append(out, conn)
	}
	return out
}

// broadcastRoom delivers ev to every subscriber of the room, the
// sender included. Delivery is best-effort: subscribers whose queue is
// full get pruned per policy rather than stalling the rest.
func (ctl *Controller) broadcastRoom(roomID int, ev Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "presence").Msg("broadcast marshal")
		return
	}

	sent := 0
	var dropped []*Conn
	for _, conn := range ctl.subscribers(roomID) {
		if err := conn.TrySend(b); err != nil {
			dropped = append(dropped, conn)
			continue
		}
		sent++
	}
	log.Debug().Str("module", "presence").Int("room", roomID).Str("event", string(ev.Type)).Int("sent_to", sent).Int("dropped", len(dropped)).Msg("broadcast result")

	for _, slow := range dropped {
		if ctl.policy.OnBackpressure(roomID, slow) == PruneSubscriber {
			log.Warn().Str("module", "presence").Str("conn", slow.id).Int("room", roomID).Msg("pruning slow subscriber")
			ctl.detach(roomID, slow)
			slow.Close()
		}
	}
}

func (ctl *Controller) unicast(conn *Conn, ev Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "presence").Msg("unicast marshal")
		return
	}
	if err := conn.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "presence").Str("conn", conn.id).Msg("unicast dropped")
	}
}

func (ctl *Controller) sendError(conn *Conn, roomID int, msg string) {
	ctl.unicast(conn, newEvent(EventError, 0, 0, ErrorPayload{Message: msg, RoomID: roomID}))
}

// disconnect runs the leave-cleanup path exactly once per connection.
// It is the only cancellation primitive: both abrupt transport loss
// and server shutdown funnel through here, and it is idempotent
// against a concurrent explicit leave_room.
func (ctl *Controller) disconnect(ctx context.Context, conn *Conn) {
	roomID, userID, ok := conn.joined()
	conn.Close()
	if !ok {
		return
	}

	ctl.detach(roomID, conn)
	removed, err := ctl.reg.LeaveRoom(ctx, roomID, userID)
	if err != nil {
		log.Error().Err(err).Str("module", "presence").Int("room", roomID).Int("user", userID).Msg("leave on disconnect")
		return
	}
	if removed {
		ctl.broadcastRoom(roomID, newEvent(EventUserLeft, roomID, userID, nil))
	}
	log.Info().Str("module", "presence").Str("conn", conn.id).Int("room", roomID).Int("user", userID).Msg("connection closed")
}
