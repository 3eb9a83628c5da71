package presence

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/AkanshuAich/video-based-social-app/internal/registry"
)

// handleJoin validates the room against the registry, registers the
// participant, subscribes the connection, and answers with the full
// room snapshot before announcing the join to the room.
func (ctl *Controller) handleJoin(ctx context.Context, c *Conn, ev *ClientEvent) {
	if prevRoom, prevUser, ok := c.joined(); ok {
		if prevRoom == ev.RoomID {
			// Re-join of the current room is idempotent: resend state.
			ctl.sendRoomState(ctx, c, prevRoom)
			return
		}
		// One room per connection: switching rooms implies leaving.
		ctl.handleLeave(ctx, c, prevRoom, prevUser)
	}

	if !ctl.limiter.Allow(ev.UserID) {
		ctl.sendError(c, ev.RoomID, "too many join attempts")
		return
	}

	participant, err := ctl.reg.JoinRoom(ctx, ev.RoomID, ev.UserID)
	if err != nil {
		ctl.sendError(c, ev.RoomID, err.Error())
		return
	}

	c.setJoined(ev.RoomID, ev.UserID)
	ctl.attach(ev.RoomID, c)
	log.Info().Str("module", "presence").Str("conn", c.id).Int("room", ev.RoomID).Int("user", ev.UserID).Msg("joined room")

	if !ctl.sendRoomState(ctx, c, ev.RoomID) {
		return
	}

	state, ok, err := ctl.reg.Snapshot(ctx, ev.RoomID)
	if err != nil || !ok {
		return
	}
	joined := JoinedPayload{}
	for i := range state.Participants {
		if state.Participants[i].UserID == participant.UserID {
			joined.Participant = &state.Participants[i]
			break
		}
	}
	ctl.broadcastRoom(ev.RoomID, newEvent(EventUserJoined, ev.RoomID, ev.UserID, joined))
}

// sendRoomState unicasts the room_state snapshot; serializing it and
// parsing it client-side reconstructs exactly what the registry held.
func (ctl *Controller) sendRoomState(ctx context.Context, c *Conn, roomID int) bool {
	state, ok, err := ctl.reg.Snapshot(ctx, roomID)
	if err != nil {
		ctl.sendError(c, roomID, "failed to load room state")
		return false
	}
	if !ok {
		ctl.sendError(c, roomID, registry.ErrRoomNotFound.Error())
		return false
	}
	ctl.unicast(c, newEvent(EventRoomState, roomID, 0, RoomStatePayload{
		Room:         state.Room,
		Participants: state.Participants,
	}))
	return true
}

// handleLeave detaches the connection from the room's subscriber set;
// the socket itself stays open and may join another room.
func (ctl *Controller) handleLeave(ctx context.Context, c *Conn, roomID, userID int) {
	removed, err := ctl.reg.LeaveRoom(ctx, roomID, userID)
	if err != nil {
		ctl.sendError(c, roomID, err.Error())
		return
	}

	// Broadcast before detaching so the leaver hears its own user_left.
	if removed {
		ctl.broadcastRoom(roomID, newEvent(EventUserLeft, roomID, userID, nil))
	}
	ctl.detach(roomID, c)
	c.clearJoined()
	log.Info().Str("module", "presence").Str("conn", c.id).Int("room", roomID).Int("user", userID).Msg("left room")
}
