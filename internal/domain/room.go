package domain

import (
	"errors"
	"time"
)

const (
	MaxRoomNameLen          = 80
	DefaultParticipantLimit = 100
)

type RoomType string

const (
	RoomTypeAudio RoomType = "audio"
	RoomTypeVideo RoomType = "video"
	RoomTypeText  RoomType = "text"
)

var (
	ErrRoomNameEmpty   = errors.New("room name empty")
	ErrRoomNameTooLong = errors.New("room name too long")
	ErrBadRoomType     = errors.New("unknown room type")
)

// Room is a live or scheduled gathering. ParticipantCount is derived
// state: it always equals the number of participant rows for the room
// and is recomputed by the registry after every join/leave.
type Room struct {
	ID               int        `json:"id" gorm:"primaryKey"`
	Name             string     `json:"name" gorm:"not null"`
	Description      string     `json:"description,omitempty"`
	HostID           int        `json:"hostId" gorm:"not null"`
	IsActive         bool       `json:"isActive"`
	CreatedAt        time.Time  `json:"createdAt"`
	ScheduledFor     *time.Time `json:"scheduledFor,omitempty"`
	RoomType         RoomType   `json:"roomType" gorm:"not null"`
	ParticipantLimit int        `json:"participantLimit"`
	ParticipantCount int        `json:"participantCount"`
}

func (t RoomType) Valid() bool {
	switch t {
	case RoomTypeAudio, RoomTypeVideo, RoomTypeText:
		return true
	}
	return false
}

// ValidateRoomName keeps the check in one place for both the REST and
// socket paths.
func ValidateRoomName(name string) error {
	if name == "" {
		return ErrRoomNameEmpty
	}
	if len(name) > MaxRoomNameLen {
		return ErrRoomNameTooLong
	}
	return nil
}
