// Package seed loads the demo data set used by the in-memory store in
// development, driving everything through the registry so counts and
// roles come out consistent.
package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/AkanshuAich/video-based-social-app/internal/domain"
	"github.com/AkanshuAich/video-based-social-app/internal/registry"
)

type demoUser struct {
	username, displayName, bio string
}

type demoRoom struct {
	name, description string
	host              int // index into demoUsers, 0-based
	listeners         []int
	speakers          []int
}

var demoUsers = []demoUser{
	{"emma_wilson", "Emma Wilson", "UX Designer & Voice Room Host"},
	{"alex_morgan", "Alex Morgan", "Tech Enthusiast"},
	{"sarah_chen", "Sarah Chen", "Product Designer"},
	{"michael_kim", "Michael Kim", "Software Engineer"},
	{"lisa_chen", "Lisa Chen", "Lead Designer"},
	{"tom_harris", "Tom Harris", "UI Designer"},
}

var demoRooms = []demoRoom{
	{"Tech Talk Daily", "Web3 and Future of Tech", 1, []int{3, 0}, []int{2}},
	{"Music Producers Club", "Beat making workshop", 2, []int{5}, []int{4}},
	{"Design Critique Session", "UI/UX designers sharing work and feedback", 4, []int{1, 2}, []int{5}},
}

// Demo is idempotent enough for development: it bails out if the demo
// users already exist.
func Demo(ctx context.Context, reg *registry.Registry) error {
	userIDs := make([]int, len(demoUsers))
	for i, du := range demoUsers {
		u, err := reg.CreateUser(ctx, du.username, du.displayName, "", du.bio)
		if err != nil {
			if errors.Is(err, registry.ErrUsernameTaken) {
				log.Debug().Str("module", "seed").Msg("demo data already present")
				return nil
			}
			return err
		}
		userIDs[i] = u.ID
	}

	for _, dr := range demoRooms {
		host := userIDs[dr.host]
		room, err := reg.CreateRoom(ctx, registry.CreateRoomSpec{
			Name:        dr.name,
			Description: dr.description,
			HostID:      host,
			RoomType:    domain.RoomTypeAudio,
		})
		if err != nil {
			return err
		}
		for _, idx := range dr.listeners {
			if _, err := reg.JoinRoom(ctx, room.ID, userIDs[idx]); err != nil {
				return err
			}
		}
		for _, idx := range dr.speakers {
			uid := userIDs[idx]
			if _, err := reg.JoinRoom(ctx, room.ID, uid); err != nil {
				return err
			}
			if _, err := reg.SetRole(ctx, room.ID, host, uid, domain.RoleSpeaker); err != nil {
				return err
			}
			if _, err := reg.SetMute(ctx, room.ID, uid, false); err != nil {
				return err
			}
		}
	}

	log.Info().Str("module", "seed").Int("users", len(demoUsers)).Int("rooms", len(demoRooms)).Msg("demo data loaded")
	return nil
}
