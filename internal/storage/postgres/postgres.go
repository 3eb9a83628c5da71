// Package postgres is the relational Store, backed by gorm. The three
// tables mirror the domain structs; the room delete is transactional
// so participant rows can never outlive their room.
package postgres

import (
	"context"
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AkanshuAich/video-based-social-app/internal/domain"
)

type Store struct {
	db *gorm.DB
}

func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres: empty dsn")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Room{}, &domain.Participant{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *Store) GetUser(ctx context.Context, id int) (domain.User, bool, error) {
	var u domain.User
	err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, false, nil
	}
	return u, err == nil, err
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (domain.User, bool, error) {
	var u domain.User
	err := s.db.WithContext(ctx).First(&u, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, false, nil
	}
	return u, err == nil, err
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := s.db.WithContext(ctx).Find(&users).Error
	return users, err
}

func (s *Store) CreateRoom(ctx context.Context, r *domain.Room) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *Store) GetRoom(ctx context.Context, id int) (domain.Room, bool, error) {
	var r domain.Room
	err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Room{}, false, nil
	}
	return r, err == nil, err
}

func (s *Store) ListRooms(ctx context.Context, activeOnly bool) ([]domain.Room, error) {
	var rooms []domain.Room
	q := s.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&rooms).Error
	return rooms, err
}

func (s *Store) UpdateRoom(ctx context.Context, r domain.Room) error {
	return s.db.WithContext(ctx).Save(&r).Error
}

func (s *Store) DeleteRoom(ctx context.Context, id int) (bool, error) {
	found := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r domain.Room
		if err := tx.First(&r, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		found = true
		if err := tx.Delete(&domain.Participant{}, "room_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&r).Error
	})
	return found, err
}

func (s *Store) AddParticipant(ctx context.Context, p *domain.Participant) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *Store) GetParticipant(ctx context.Context, roomID, userID int) (domain.Participant, bool, error) {
	var p domain.Participant
	err := s.db.WithContext(ctx).First(&p, "room_id = ? AND user_id = ?", roomID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Participant{}, false, nil
	}
	return p, err == nil, err
}

func (s *Store) ListParticipants(ctx context.Context, roomID int) ([]domain.Participant, error) {
	participants := make([]domain.Participant, 0)
	err := s.db.WithContext(ctx).Where("room_id = ?", roomID).Find(&participants).Error
	return participants, err
}

func (s *Store) UpdateParticipant(ctx context.Context, p domain.Participant) error {
	return s.db.WithContext(ctx).Save(&p).Error
}

func (s *Store) RemoveParticipant(ctx context.Context, roomID, userID int) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&domain.Participant{}, "room_id = ? AND user_id = ?", roomID, userID)
	return res.RowsAffected > 0, res.Error
}
