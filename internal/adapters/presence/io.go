package presence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 10 * time.Second

// writePump drains the send queue and emits the application-level
// heartbeat. Clients answer {"type":"ping"} with {"type":"pong"};
// silence past the read deadline is treated as a dead transport.
func (ctl *Controller) writePump(ctx context.Context, c *Conn) {
	ticker := time.NewTicker(ctl.pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				_ = c.sock.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.sock.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.sock.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "presence").Str("conn", c.id).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			ping, _ := json.Marshal(Event{Type: EventPing, Timestamp: time.Now().UTC().Format(time.RFC3339)})
			if err := c.sock.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.sock.WriteMessage(websocket.TextMessage, ping); err != nil {
				return
			}
		}
	}
}

// readPump processes inbound events strictly in arrival order; this is
// the single logical event-processing path for the connection. Exiting
// for any reason triggers the leave-cleanup exactly once.
func (ctl *Controller) readPump(ctx context.Context, c *Conn) {
	defer ctl.disconnect(ctx, c)

	pongWait := 2 * ctl.pingPeriod
	c.sock.SetReadLimit(ctl.readLimit)
	_ = c.sock.SetReadDeadline(time.Now().Add(pongWait))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		_, data, err := c.sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("module", "presence").Str("conn", c.id).Msg("readPump read error")
			}
			return
		}
		// Any inbound traffic counts as liveness, pongs included.
		_ = c.sock.SetReadDeadline(time.Now().Add(pongWait))
		ctl.handleEvent(ctx, c, data)
	}
}

// handleEvent dispatches one decoded event. There is no fatal error
// class here: malformed payloads and registry errors become unicast
// error events, and a panic in a handler is logged without taking the
// connection down.
func (ctl *Controller) handleEvent(ctx context.Context, c *Conn, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "presence").Str("conn", c.id).Interface("panic", r).Msg("event handler panic")
		}
	}()

	ev, err := ParseClientEvent(data)
	if err != nil {
		ctl.sendError(c, 0, err.Error())
		return
	}

	if ev.Type == EventPong {
		return
	}
	if ev.Type == EventJoinRoom {
		ctl.handleJoin(ctx, c, ev)
		return
	}

	roomID, userID, ok := c.joined()
	if !ok {
		ctl.sendError(c, ev.RoomID, "not in a room: send join_room first")
		return
	}

	switch ev.Type {
	case EventLeaveRoom:
		ctl.handleLeave(ctx, c, roomID, userID)
	case EventToggleMute:
		ctl.handleMute(ctx, c, roomID, userID, ev.Mute)
	case EventRaiseHand:
		ctl.handleHand(ctx, c, roomID, userID, ev.Hand)
	case EventMakeSpeaker:
		ctl.handleSetRole(ctx, c, roomID, userID, ev.Target.TargetUserID, true)
	case EventRemoveSpeaker:
		ctl.handleSetRole(ctx, c, roomID, userID, ev.Target.TargetUserID, false)
	case EventVoiceActive:
		ctl.handleVoiceActive(roomID, userID, ev.Voice)
	}
}
