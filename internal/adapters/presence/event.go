package presence

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AkanshuAich/video-based-social-app/internal/domain"
	"github.com/AkanshuAich/video-based-social-app/internal/registry"
)

type EventType string

// Client->server intents.
const (
	EventJoinRoom      EventType = "join_room"
	EventLeaveRoom     EventType = "leave_room"
	EventToggleMute    EventType = "toggle_mute"
	EventRaiseHand     EventType = "raise_hand"
	EventMakeSpeaker   EventType = "make_speaker"
	EventRemoveSpeaker EventType = "remove_speaker"
	EventVoiceActive   EventType = "voice_active"
	EventPong          EventType = "pong"
)

// Server->client notifications.
const (
	EventConnectionAck  EventType = "connection_ack"
	EventPing           EventType = "ping"
	EventRoomState      EventType = "room_state"
	EventUserJoined     EventType = "user_joined"
	EventUserLeft       EventType = "user_left"
	EventMuteChanged    EventType = "mute_changed"
	EventHandRaised     EventType = "hand_raised"
	EventSpeakerAdded   EventType = "speaker_added"
	EventSpeakerRemoved EventType = "speaker_removed"
	EventVoiceActivity  EventType = "voice_activity"
	EventError          EventType = "error"
)

// Event is the wire envelope: one JSON object per logical event.
type Event struct {
	Type      EventType       `json:"type"`
	RoomID    int             `json:"roomId,omitempty"`
	UserID    int             `json:"userId,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type MutePayload struct {
	IsMuted bool `json:"isMuted"`
}

type HandPayload struct {
	HasRaisedHand bool `json:"hasRaisedHand"`
}

type TargetPayload struct {
	TargetUserID int `json:"targetUserId"`
}

type AckPayload struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	RoomID  int    `json:"roomId,omitempty"`
}

type RoomStatePayload struct {
	Room         domain.Room                `json:"room"`
	Participants []registry.ParticipantInfo `json:"participants"`
}

type JoinedPayload struct {
	Participant *registry.ParticipantInfo `json:"participant,omitempty"`
}

type SpeakerPayload struct {
	UserID int `json:"userId"`
}

var (
	ErrUnknownEvent   = errors.New("unknown event type")
	ErrMissingRoomID  = errors.New("missing roomId")
	ErrMissingUserID  = errors.New("missing userId")
	ErrMissingPayload = errors.New("missing event payload")
)

// ClientEvent is the decoded form of an inbound envelope. The payload
// is unmarshaled into the concrete struct for its type here, at the
// protocol boundary, so handlers never touch raw JSON.
type ClientEvent struct {
	Type   EventType
	RoomID int
	UserID int

	Mute   *MutePayload
	Hand   *HandPayload
	Target *TargetPayload
	// Voice is kept verbatim: voice_active is ephemeral and re-broadcast
	// as-is, never persisted.
	Voice json.RawMessage
}

// ParseClientEvent validates and decodes one inbound message. A nil
// error means the event is well-formed for its type; registry-level
// checks (room exists, membership) happen later.
func ParseClientEvent(data []byte) (*ClientEvent, error) {
	var env Event
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed event: %w", err)
	}

	ev := &ClientEvent{Type: env.Type, RoomID: env.RoomID, UserID: env.UserID}
	switch env.Type {
	case EventPong, EventLeaveRoom:
		return ev, nil

	case EventJoinRoom:
		if env.RoomID == 0 {
			return nil, ErrMissingRoomID
		}
		if env.UserID == 0 {
			return nil, ErrMissingUserID
		}
		return ev, nil

	case EventToggleMute:
		ev.Mute = &MutePayload{}
		return ev, decodePayload(env.Data, ev.Mute)

	case EventRaiseHand:
		ev.Hand = &HandPayload{}
		return ev, decodePayload(env.Data, ev.Hand)

	case EventMakeSpeaker, EventRemoveSpeaker:
		ev.Target = &TargetPayload{}
		if err := decodePayload(env.Data, ev.Target); err != nil {
			return nil, err
		}
		if ev.Target.TargetUserID == 0 {
			return nil, ErrMissingUserID
		}
		return ev, nil

	case EventVoiceActive:
		ev.Voice = env.Data
		return ev, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type)
}

func decodePayload(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return ErrMissingPayload
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("malformed event payload: %w", err)
	}
	return nil
}

// newEvent marshals payload into the envelope's data field.
func newEvent(t EventType, roomID, userID int, payload any) Event {
	ev := Event{Type: t, RoomID: roomID, UserID: userID}
	if payload != nil {
		if b, err := json.Marshal(payload); err == nil {
			ev.Data = b
		}
	}
	return ev
}
