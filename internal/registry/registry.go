// Package registry is the single source of truth for room and
// participant state. Every mutation passes through it so the
// participant-count and role invariants hold under concurrent use.
package registry

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/AkanshuAich/video-based-social-app/internal/domain"
	"github.com/AkanshuAich/video-based-social-app/internal/storage"
)

// Registry serializes all mutations behind one mutex. Store calls are
// in-memory or single-round-trip, so the critical sections stay short;
// with the small room sizes this system targets, a global lock is the
// cheapest way to keep counts and roles consistent.
type Registry struct {
	mu    sync.Mutex
	store storage.Store
}

func New(store storage.Store) *Registry {
	return &Registry{store: store}
}

// CreateRoomSpec carries the validated fields of a room create request.
type CreateRoomSpec struct {
	Name             string
	Description      string
	HostID           int
	RoomType         domain.RoomType
	ScheduledFor     *time.Time
	ParticipantLimit int
}

// RoomPatch holds optional room updates; nil fields are left untouched.
type RoomPatch struct {
	Name             *string
	Description      *string
	IsActive         *bool
	ScheduledFor     *time.Time
	ParticipantLimit *int
}

// ParticipantInfo is a participant row joined with its user record,
// the shape both the REST responses and the room_state event carry.
type ParticipantInfo struct {
	domain.Participant
	User *domain.User `json:"user,omitempty"`
}

// RoomState is the full snapshot of one room.
type RoomState struct {
	domain.Room
	Host         *domain.User      `json:"host,omitempty"`
	Participants []ParticipantInfo `json:"participants"`
}

// RoomSummary is a room with its host attached, for listings.
type RoomSummary struct {
	domain.Room
	Host *domain.User `json:"host,omitempty"`
}

// CreateRoom constructs an active room and immediately registers the
// host as its first participant: role host, speaking, unmuted.
func (r *Registry) CreateRoom(ctx context.Context, spec CreateRoomSpec) (domain.Room, error) {
	if err := domain.ValidateRoomName(spec.Name); err != nil {
		return domain.Room{}, invalid(err)
	}
	if !spec.RoomType.Valid() {
		return domain.Room{}, invalid(domain.ErrBadRoomType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok, err := r.store.GetUser(ctx, spec.HostID); err != nil {
		return domain.Room{}, err
	} else if !ok {
		return domain.Room{}, ErrUserNotFound
	}

	limit := spec.ParticipantLimit
	if limit <= 0 {
		limit = domain.DefaultParticipantLimit
	}
	room := domain.Room{
		Name:             spec.Name,
		Description:      spec.Description,
		HostID:           spec.HostID,
		IsActive:         true,
		CreatedAt:        time.Now(),
		ScheduledFor:     spec.ScheduledFor,
		RoomType:         spec.RoomType,
		ParticipantLimit: limit,
	}
	if err := r.store.CreateRoom(ctx, &room); err != nil {
		return domain.Room{}, err
	}
	if err := r.store.AddParticipant(ctx, domain.NewHost(room.ID, spec.HostID)); err != nil {
		return domain.Room{}, err
	}
	room, err := r.recount(ctx, room.ID)
	if err != nil {
		return domain.Room{}, err
	}
	log.Info().Str("module", "registry").Int("room", room.ID).Int("host", spec.HostID).Msg("room created")
	return room, nil
}

// GetRoom never fails on absence; the bool reports existence.
func (r *Registry) GetRoom(ctx context.Context, id int) (domain.Room, bool, error) {
	return r.store.GetRoom(ctx, id)
}

func (r *Registry) ListRooms(ctx context.Context, activeOnly bool) ([]RoomSummary, error) {
	rooms, err := r.store.ListRooms(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		s := RoomSummary{Room: room}
		if host, ok, err := r.store.GetUser(ctx, room.HostID); err != nil {
			return nil, err
		} else if ok {
			s.Host = &host
		}
		out = append(out, s)
	}
	return out, nil
}

// Snapshot returns the room with host and participants(+user), the
// consistent view room_state events are built from.
func (r *Registry) Snapshot(ctx context.Context, roomID int) (RoomState, bool, error) {
	room, ok, err := r.store.GetRoom(ctx, roomID)
	if err != nil || !ok {
		return RoomState{}, ok, err
	}
	state := RoomState{Room: room}
	if host, ok, err := r.store.GetUser(ctx, room.HostID); err != nil {
		return RoomState{}, false, err
	} else if ok {
		state.Host = &host
	}
	participants, err := r.store.ListParticipants(ctx, roomID)
	if err != nil {
		return RoomState{}, false, err
	}
	state.Participants = make([]ParticipantInfo, 0, len(participants))
	for _, p := range participants {
		info := ParticipantInfo{Participant: p}
		if u, ok, err := r.store.GetUser(ctx, p.UserID); err != nil {
			return RoomState{}, false, err
		} else if ok {
			info.User = &u
		}
		state.Participants = append(state.Participants, info)
	}
	return state, true, nil
}

// JoinRoom is idempotent: a second join of the same (room, user) pair
// returns the existing row and changes nothing.
func (r *Registry) JoinRoom(ctx context.Context, roomID, userID int) (domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok, err := r.store.GetRoom(ctx, roomID)
	if err != nil {
		return domain.Participant{}, err
	}
	if !ok {
		return domain.Participant{}, ErrRoomNotFound
	}
	if _, ok, err := r.store.GetUser(ctx, userID); err != nil {
		return domain.Participant{}, err
	} else if !ok {
		return domain.Participant{}, ErrUserNotFound
	}
	if p, ok, err := r.store.GetParticipant(ctx, roomID, userID); err != nil {
		return domain.Participant{}, err
	} else if ok {
		return p, nil
	}
	if room.ParticipantLimit > 0 && room.ParticipantCount >= room.ParticipantLimit {
		return domain.Participant{}, ErrRoomFull
	}

	p := domain.NewListener(roomID, userID)
	if err := r.store.AddParticipant(ctx, p); err != nil {
		return domain.Participant{}, err
	}
	if _, err := r.recount(ctx, roomID); err != nil {
		return domain.Participant{}, err
	}
	log.Info().Str("module", "registry").Int("room", roomID).Int("user", userID).Msg("participant joined")
	return *p, nil
}

// LeaveRoom removes the participant row if present. Leaving a room the
// user is not in is a no-op, not an error; the bool reports whether a
// row was removed.
func (r *Registry) LeaveRoom(ctx context.Context, roomID, userID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed, err := r.store.RemoveParticipant(ctx, roomID, userID)
	if err != nil || !removed {
		return false, err
	}
	if _, err := r.recount(ctx, roomID); err != nil {
		return true, err
	}
	log.Info().Str("module", "registry").Int("room", roomID).Int("user", userID).Msg("participant left")
	return true, nil
}

// SetMute mutates the caller's own row; the user must have joined first.
func (r *Registry) SetMute(ctx context.Context, roomID, userID int, muted bool) (domain.Participant, error) {
	return r.updateParticipant(ctx, roomID, userID, func(p *domain.Participant) {
		p.IsMuted = muted
	})
}

func (r *Registry) SetHandRaised(ctx context.Context, roomID, userID int, raised bool) (domain.Participant, error) {
	return r.updateParticipant(ctx, roomID, userID, func(p *domain.Participant) {
		p.HasRaisedHand = raised
	})
}

func (r *Registry) updateParticipant(ctx context.Context, roomID, userID int, mutate func(*domain.Participant)) (domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok, err := r.store.GetParticipant(ctx, roomID, userID)
	if err != nil {
		return domain.Participant{}, err
	}
	if !ok {
		return domain.Participant{}, ErrParticipantNotFound
	}
	mutate(&p)
	if err := r.store.UpdateParticipant(ctx, p); err != nil {
		return domain.Participant{}, err
	}
	return p, nil
}

// SetRole reassigns the target's role. Only the current host may do
// this; IsSpeaker is derived from the new role, and a promotion to
// speaker lowers a raised hand.
func (r *Registry) SetRole(ctx context.Context, roomID, requesterID, targetUserID int, newRole domain.Role) (domain.Participant, error) {
	if newRole != domain.RoleSpeaker && newRole != domain.RoleListener {
		return domain.Participant{}, ErrBadRole
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	requester, ok, err := r.store.GetParticipant(ctx, roomID, requesterID)
	if err != nil {
		return domain.Participant{}, err
	}
	if !ok || requester.Role != domain.RoleHost {
		return domain.Participant{}, ErrNotHost
	}
	target, ok, err := r.store.GetParticipant(ctx, roomID, targetUserID)
	if err != nil {
		return domain.Participant{}, err
	}
	if !ok {
		return domain.Participant{}, ErrParticipantNotFound
	}

	target.Role = newRole
	target.IsSpeaker = newRole.Speaks()
	if target.IsSpeaker {
		target.HasRaisedHand = false
	}
	if err := r.store.UpdateParticipant(ctx, target); err != nil {
		return domain.Participant{}, err
	}
	log.Info().Str("module", "registry").Int("room", roomID).Int("user", targetUserID).Str("role", string(newRole)).Msg("role changed")
	return target, nil
}

func (r *Registry) UpdateRoom(ctx context.Context, id int, patch RoomPatch) (domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok, err := r.store.GetRoom(ctx, id)
	if err != nil {
		return domain.Room{}, err
	}
	if !ok {
		return domain.Room{}, ErrRoomNotFound
	}
	if patch.Name != nil {
		if err := domain.ValidateRoomName(*patch.Name); err != nil {
			return domain.Room{}, invalid(err)
		}
		room.Name = *patch.Name
	}
	if patch.Description != nil {
		room.Description = *patch.Description
	}
	if patch.IsActive != nil {
		room.IsActive = *patch.IsActive
	}
	if patch.ScheduledFor != nil {
		room.ScheduledFor = patch.ScheduledFor
	}
	if patch.ParticipantLimit != nil {
		room.ParticipantLimit = *patch.ParticipantLimit
	}
	if err := r.store.UpdateRoom(ctx, room); err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

// DeleteRoom cascades participant removal; deleting an absent room
// reports false rather than failing.
func (r *Registry) DeleteRoom(ctx context.Context, id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted, err := r.store.DeleteRoom(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		log.Info().Str("module", "registry").Int("room", id).Msg("room deleted")
	}
	return deleted, nil
}

func (r *Registry) GetUser(ctx context.Context, id int) (domain.User, bool, error) {
	return r.store.GetUser(ctx, id)
}

func (r *Registry) ListUsers(ctx context.Context) ([]domain.User, error) {
	return r.store.ListUsers(ctx)
}

// CreateUser exists so non-seeded stores can be populated; signup
// proper is outside this service.
func (r *Registry) CreateUser(ctx context.Context, username, displayName, avatarURL, bio string) (domain.User, error) {
	u, err := domain.NewUser(username, displayName)
	if err != nil {
		return domain.User{}, invalid(err)
	}
	u.AvatarURL = avatarURL
	u.Bio = bio

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok, err := r.store.GetUserByUsername(ctx, username); err != nil {
		return domain.User{}, err
	} else if ok {
		return domain.User{}, ErrUsernameTaken
	}
	if err := r.store.CreateUser(ctx, u); err != nil {
		return domain.User{}, err
	}
	return *u, nil
}

// recount derives the participant count from the live rows instead of
// incrementing a counter, so a missed event cannot make it drift.
// Callers must hold r.mu.
func (r *Registry) recount(ctx context.Context, roomID int) (domain.Room, error) {
	room, ok, err := r.store.GetRoom(ctx, roomID)
	if err != nil || !ok {
		return domain.Room{}, err
	}
	participants, err := r.store.ListParticipants(ctx, roomID)
	if err != nil {
		return domain.Room{}, err
	}
	room.ParticipantCount = len(participants)
	if err := r.store.UpdateRoom(ctx, room); err != nil {
		return domain.Room{}, err
	}
	return room, nil
}
