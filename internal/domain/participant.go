package domain

import "time"

type Role string

const (
	RoleHost     Role = "host"
	RoleSpeaker  Role = "speaker"
	RoleListener Role = "listener"
)

// Participant is the join row between a room and a user. Exactly one
// row exists per (RoomID, UserID) pair; IsSpeaker is true iff the role
// is host or speaker.
type Participant struct {
	ID            int       `json:"id" gorm:"primaryKey"`
	RoomID        int       `json:"roomId" gorm:"index;not null"`
	UserID        int       `json:"userId" gorm:"not null"`
	IsSpeaker     bool      `json:"isSpeaker"`
	IsMuted       bool      `json:"isMuted"`
	Role          Role      `json:"role"`
	HasRaisedHand bool      `json:"hasRaisedHand"`
	JoinedAt      time.Time `json:"joinedAt"`
}

func (r Role) Speaks() bool {
	return r == RoleHost || r == RoleSpeaker
}

// NewListener avoids raw literals in adapters: every non-host joins
// muted, as a listener, hand down.
func NewListener(roomID, userID int) *Participant {
	return &Participant{
		RoomID:   roomID,
		UserID:   userID,
		Role:     RoleListener,
		IsMuted:  true,
		JoinedAt: time.Now(),
	}
}

// NewHost is the row created together with the room itself.
func NewHost(roomID, userID int) *Participant {
	return &Participant{
		RoomID:    roomID,
		UserID:    userID,
		Role:      RoleHost,
		IsSpeaker: true,
		JoinedAt:  time.Now(),
	}
}
