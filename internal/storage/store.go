// Package storage defines the persistence boundary of the registry.
// Implementations return a found-bool for lookups instead of a
// not-found error; the registry owns the error taxonomy.
package storage

import (
	"context"

	"github.com/AkanshuAich/video-based-social-app/internal/domain"
)

// Store is the pluggable persistence interface. Create* methods assign
// the entity ID in place. Stores hold no business rules: idempotence,
// role checks and participant counting live in the registry above.
type Store interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id int) (domain.User, bool, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, bool, error)
	ListUsers(ctx context.Context) ([]domain.User, error)

	CreateRoom(ctx context.Context, r *domain.Room) error
	GetRoom(ctx context.Context, id int) (domain.Room, bool, error)
	ListRooms(ctx context.Context, activeOnly bool) ([]domain.Room, error)
	UpdateRoom(ctx context.Context, r domain.Room) error
	// DeleteRoom removes the room and all its participant rows. The
	// bool reports whether a room existed.
	DeleteRoom(ctx context.Context, id int) (bool, error)

	AddParticipant(ctx context.Context, p *domain.Participant) error
	GetParticipant(ctx context.Context, roomID, userID int) (domain.Participant, bool, error)
	ListParticipants(ctx context.Context, roomID int) ([]domain.Participant, error)
	UpdateParticipant(ctx context.Context, p domain.Participant) error
	RemoveParticipant(ctx context.Context, roomID, userID int) (bool, error)
}
