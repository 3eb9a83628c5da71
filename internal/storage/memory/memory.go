// Package memory is the reference Store: map-based, disposable, used
// by the default configuration and by tests.
package memory

import (
	"context"
	"sync"

	"github.com/AkanshuAich/video-based-social-app/internal/domain"
)

type Store struct {
	mu sync.RWMutex

	users        map[int]domain.User
	rooms        map[int]domain.Room
	participants map[int]domain.Participant

	userSeq        int
	roomSeq        int
	participantSeq int
}

func NewStore() *Store {
	return &Store{
		users:        make(map[int]domain.User),
		rooms:        make(map[int]domain.Room),
		participants: make(map[int]domain.Participant),
	}
}

func (s *Store) CreateUser(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userSeq++
	u.ID = s.userSeq
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUser(_ context.Context, id int) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *Store) CreateRoom(_ context.Context, r *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomSeq++
	r.ID = s.roomSeq
	s.rooms[r.ID] = *r
	return nil
}

func (s *Store) GetRoom(_ context.Context, id int) (domain.Room, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	return r, ok, nil
}

func (s *Store) ListRooms(_ context.Context, activeOnly bool) ([]domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		if activeOnly && !r.IsActive {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) UpdateRoom(_ context.Context, r domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[r.ID]; ok {
		s.rooms[r.ID] = r
	}
	return nil
}

func (s *Store) DeleteRoom(_ context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return false, nil
	}
	delete(s.rooms, id)
	for pid, p := range s.participants {
		if p.RoomID == id {
			delete(s.participants, pid)
		}
	}
	return true, nil
}

func (s *Store) AddParticipant(_ context.Context, p *domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participantSeq++
	p.ID = s.participantSeq
	s.participants[p.ID] = *p
	return nil
}

func (s *Store) GetParticipant(_ context.Context, roomID, userID int) (domain.Participant, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.participants {
		if p.RoomID == roomID && p.UserID == userID {
			return p, true, nil
		}
	}
	return domain.Participant{}, false, nil
}

func (s *Store) ListParticipants(_ context.Context, roomID int) ([]domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Participant, 0)
	for _, p := range s.participants {
		if p.RoomID == roomID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) UpdateParticipant(_ context.Context, p domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.participants[p.ID]; ok {
		s.participants[p.ID] = p
	}
	return nil
}

func (s *Store) RemoveParticipant(_ context.Context, roomID, userID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for pid, p := range s.participants {
		if p.RoomID == roomID && p.UserID == userID {
			delete(s.participants, pid)
			return true, nil
		}
	}
	return false, nil
}
