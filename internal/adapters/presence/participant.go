package presence

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/AkanshuAich/video-based-social-app/internal/domain"
	"github.com/AkanshuAich/video-based-social-app/internal/registry"
)

func (ctl *Controller) handleMute(ctx context.Context, c *Conn, roomID, userID int, p *MutePayload) {
	if _, err := ctl.reg.SetMute(ctx, roomID, userID, p.IsMuted); err != nil {
		ctl.sendError(c, roomID, err.Error())
		return
	}
	ctl.broadcastRoom(roomID, newEvent(EventMuteChanged, roomID, userID, MutePayload{IsMuted: p.IsMuted}))
}

func (ctl *Controller) handleHand(ctx context.Context, c *Conn, roomID, userID int, p *HandPayload) {
	if _, err := ctl.reg.SetHandRaised(ctx, roomID, userID, p.HasRaisedHand); err != nil {
		ctl.sendError(c, roomID, err.Error())
		return
	}
	ctl.broadcastRoom(roomID, newEvent(EventHandRaised, roomID, userID, HandPayload{HasRaisedHand: p.HasRaisedHand}))
}

// handleSetRole covers make_speaker and remove_speaker. A request from
// a non-host (or against a missing target) is dropped without a
// response: no state change, no broadcast, no error back.
func (ctl *Controller) handleSetRole(ctx context.Context, c *Conn, roomID, requesterID, targetID int, promote bool) {
	role := domain.RoleListener
	event := EventSpeakerRemoved
	if promote {
		role = domain.RoleSpeaker
		event = EventSpeakerAdded
	}

	if _, err := ctl.reg.SetRole(ctx, roomID, requesterID, targetID, role); err != nil {
		if errors.Is(err, registry.ErrPermission) || errors.Is(err, registry.ErrNotFound) {
			log.Debug().Err(err).Str("module", "presence").Int("room", roomID).Int("requester", requesterID).Int("target", targetID).Msg("role change ignored")
			return
		}
		ctl.sendError(c, roomID, err.Error())
		return
	}
	ctl.broadcastRoom(roomID, newEvent(event, roomID, 0, SpeakerPayload{UserID: targetID}))
}

// handleVoiceActive re-broadcasts the sample verbatim; voice activity
// is ephemeral and never touches the registry.
func (ctl *Controller) handleVoiceActive(roomID, userID int, data json.RawMessage) {
	ev := Event{Type: EventVoiceActivity, RoomID: roomID, UserID: userID, Data: data}
	ctl.broadcastRoom(roomID, ev)
}
