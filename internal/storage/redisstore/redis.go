// Package redisstore keeps rooms and participants in redis: JSON
// values per entity, a set of member ids per room, and an optional TTL
// so abandoned rooms age out. Multi-key writes go through TxPipeline.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/AkanshuAich/video-based-social-app/internal/domain"
)

const (
	usersSetKey = "users"
	roomsSetKey = "rooms"

	userSeqKey        = "seq:users"
	roomSeqKey        = "seq:rooms"
	participantSeqKey = "seq:participants"

	usernameIndexKey = "users:by-username"
)

type Store struct {
	rdb     *redis.Client
	roomTTL time.Duration // 0 means rooms never expire
}

func NewStore(rdb *redis.Client, roomTTL time.Duration) *Store {
	return &Store{rdb: rdb, roomTTL: roomTTL}
}

func userKey(id int) string                 { return fmt.Sprintf("users:%d", id) }
func roomKey(id int) string                 { return fmt.Sprintf("rooms:%d", id) }
func membersKey(roomID int) string          { return fmt.Sprintf("rooms:%d:participants", roomID) }
func participantKey(roomID, uid int) string { return fmt.Sprintf("participants:%d:%d", roomID, uid) }

func (s *Store) nextID(ctx context.Context, seqKey string) (int, error) {
	n, err := s.rdb.Incr(ctx, seqKey).Result()
	return int(n), err
}

func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	id, err := s.nextID(ctx, userSeqKey)
	if err != nil {
		return err
	}
	u.ID = id
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, userKey(id), b, 0)
	pipe.SAdd(ctx, usersSetKey, id)
	pipe.HSet(ctx, usernameIndexKey, u.Username, id)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Store) getJSON(ctx context.Context, key string, v any) (bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, v)
}

func (s *Store) GetUser(ctx context.Context, id int) (domain.User, bool, error) {
	var u domain.User
	ok, err := s.getJSON(ctx, userKey(id), &u)
	return u, ok, err
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (domain.User, bool, error) {
	id, err := s.rdb.HGet(ctx, usernameIndexKey, username).Int()
	if err == redis.Nil {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, err
	}
	return s.GetUser(ctx, id)
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	ids, err := s.rdb.SMembers(ctx, usersSetKey).Result()
	if err != nil {
		return nil, err
	}
	return mgetJSON[domain.User](ctx, s.rdb, ids, "users:%s")
}

func (s *Store) CreateRoom(ctx context.Context, r *domain.Room) error {
	id, err := s.nextID(ctx, roomSeqKey)
	if err != nil {
		return err
	}
	r.ID = id
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, roomKey(id), b, s.roomTTL)
	pipe.SAdd(ctx, roomsSetKey, id)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Store) GetRoom(ctx context.Context, id int) (domain.Room, bool, error) {
	var r domain.Room
	ok, err := s.getJSON(ctx, roomKey(id), &r)
	return r, ok, err
}

func (s *Store) ListRooms(ctx context.Context, activeOnly bool) ([]domain.Room, error) {
	ids, err := s.rdb.SMembers(ctx, roomsSetKey).Result()
	if err != nil {
		return nil, err
	}
	rooms, err := mgetJSON[domain.Room](ctx, s.rdb, ids, "rooms:%s")
	if err != nil {
		return nil, err
	}
	if !activeOnly {
		return rooms, nil
	}
	active := rooms[:0]
	for _, r := range rooms {
		if r.IsActive {
			active = append(active, r)
		}
	}
	return active, nil
}

func (s *Store) UpdateRoom(ctx context.Context, r domain.Room) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	// XX: only refresh an existing key, never resurrect a deleted room.
	return s.rdb.SetArgs(ctx, roomKey(r.ID), b, redis.SetArgs{Mode: "XX", TTL: s.roomTTL}).Err()
}

// deleteRoomScript collects every participant key of the room and
// removes the whole key family atomically.
var deleteRoomScript = redis.NewScript(`
local room_key = KEYS[1]
local members_key = KEYS[2]
local rooms_set = KEYS[3]
local room_id = ARGV[1]

if redis.call('EXISTS', room_key) == 0 then
	return 0
end

local user_ids = redis.call('SMEMBERS', members_key)
local keys = {room_key, members_key}
for _, uid in ipairs(user_ids) do
	table.insert(keys, 'participants:' .. room_id .. ':' .. uid)
end
redis.call('DEL', unpack(keys))
redis.call('SREM', rooms_set, room_id)
return 1
`)

func (s *Store) DeleteRoom(ctx context.Context, id int) (bool, error) {
	n, err := deleteRoomScript.Run(ctx, s.rdb,
		[]string{roomKey(id), membersKey(id), roomsSetKey}, id).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *Store) AddParticipant(ctx context.Context, p *domain.Participant) error {
	id, err := s.nextID(ctx, participantSeqKey)
	if err != nil {
		return err
	}
	p.ID = id
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, participantKey(p.RoomID, p.UserID), b, s.roomTTL)
	pipe.SAdd(ctx, membersKey(p.RoomID), p.UserID)
	if s.roomTTL > 0 {
		pipe.Expire(ctx, membersKey(p.RoomID), s.roomTTL)
		pipe.Expire(ctx, roomKey(p.RoomID), s.roomTTL)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Store) GetParticipant(ctx context.Context, roomID, userID int) (domain.Participant, bool, error) {
	var p domain.Participant
	ok, err := s.getJSON(ctx, participantKey(roomID, userID), &p)
	return p, ok, err
}

func (s *Store) ListParticipants(ctx context.Context, roomID int) ([]domain.Participant, error) {
	ids, err := s.rdb.SMembers(ctx, membersKey(roomID)).Result()
	if err != nil {
		return nil, err
	}
	return mgetJSON[domain.Participant](ctx, s.rdb, ids, fmt.Sprintf("participants:%d:%%s", roomID))
}

func (s *Store) UpdateParticipant(ctx context.Context, p domain.Participant) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.rdb.SetArgs(ctx, participantKey(p.RoomID, p.UserID), b, redis.SetArgs{Mode: "XX", TTL: s.roomTTL}).Err()
}

func (s *Store) RemoveParticipant(ctx context.Context, roomID, userID int) (bool, error) {
	pipe := s.rdb.TxPipeline()
	removed := pipe.SRem(ctx, membersKey(roomID), userID)
	pipe.Del(ctx, participantKey(roomID, userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return removed.Val() > 0, nil
}

// mgetJSON fetches key pattern per id in one MGET, skipping values
// that expired between the set read and the fetch.
func mgetJSON[T any](ctx context.Context, rdb *redis.Client, ids []string, pattern string) ([]T, error) {
	out := make([]T, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = fmt.Sprintf(pattern, id)
	}
	vals, err := rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for _, val := range vals {
		str, ok := val.(string)
		if !ok {
			continue
		}
		var v T
		if json.Unmarshal([]byte(str), &v) == nil {
			out = append(out, v)
		}
	}
	return out, nil
}
