package memory

import (
	"context"
	"testing"

	"github.com/AkanshuAich/video-based-social-app/internal/domain"
	"github.com/AkanshuAich/video-based-social-app/internal/storage"
)

var _ storage.Store = (*Store)(nil)

func TestCreateAssignsSequentialIDs(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	for i, username := range []string{"emma_wilson", "alex_morgan"} {
		u := domain.User{Username: username}
		if err := s.CreateUser(ctx, &u); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
		if u.ID != i+1 {
			t.Errorf("user ID = %d, want %d", u.ID, i+1)
		}
	}

	r := domain.Room{Name: "Tech Talk Daily", HostID: 1}
	if err := s.CreateRoom(ctx, &r); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if r.ID != 1 {
		t.Errorf("room ID = %d, want 1", r.ID)
	}
}

func TestGetUserByUsername(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := domain.User{Username: "emma_wilson"}
	if err := s.CreateUser(ctx, &u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, ok, err := s.GetUserByUsername(ctx, "emma_wilson")
	if err != nil || !ok {
		t.Fatalf("GetUserByUsername: ok=%v err=%v", ok, err)
	}
	if got.ID != u.ID {
		t.Errorf("looked up user %d, want %d", got.ID, u.ID)
	}

	if _, ok, _ := s.GetUserByUsername(ctx, "nobody"); ok {
		t.Error("unknown username reported found")
	}
}

func TestListRoomsActiveFilter(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	for _, active := range []bool{true, false, true} {
		r := domain.Room{Name: "r", IsActive: active}
		if err := s.CreateRoom(ctx, &r); err != nil {
			t.Fatalf("CreateRoom: %v", err)
		}
	}

	all, _ := s.ListRooms(ctx, false)
	if len(all) != 3 {
		t.Errorf("all rooms = %d, want 3", len(all))
	}
	active, _ := s.ListRooms(ctx, true)
	if len(active) != 2 {
		t.Errorf("active rooms = %d, want 2", len(active))
	}
}

func TestDeleteRoomCascadesParticipants(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	r := domain.Room{Name: "r"}
	if err := s.CreateRoom(ctx, &r); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	other := domain.Room{Name: "other"}
	if err := s.CreateRoom(ctx, &other); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	for _, roomID := range []int{r.ID, r.ID, other.ID} {
		p := domain.Participant{RoomID: roomID, UserID: roomID*10 + 1}
		if err := s.AddParticipant(ctx, &p); err != nil {
			t.Fatalf("AddParticipant: %v", err)
		}
	}

	deleted, err := s.DeleteRoom(ctx, r.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteRoom: deleted=%v err=%v", deleted, err)
	}
	if rows, _ := s.ListParticipants(ctx, r.ID); len(rows) != 0 {
		t.Errorf("deleted room still has %d participants", len(rows))
	}
	if rows, _ := s.ListParticipants(ctx, other.ID); len(rows) != 1 {
		t.Errorf("sibling room participants = %d, want 1", len(rows))
	}

	if deleted, _ := s.DeleteRoom(ctx, r.ID); deleted {
		t.Error("second delete reported deletion")
	}
}

func TestParticipantLookupAndRemoval(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	p := domain.Participant{RoomID: 1, UserID: 7, Role: domain.RoleListener, IsMuted: true}
	if err := s.AddParticipant(ctx, &p); err != nil {
		t.Fatalf("AddParticipant: %v", err)
	}

	got, ok, err := s.GetParticipant(ctx, 1, 7)
	if err != nil || !ok {
		t.Fatalf("GetParticipant: ok=%v err=%v", ok, err)
	}
	if got.ID != p.ID || !got.IsMuted {
		t.Errorf("GetParticipant = %+v", got)
	}

	got.IsMuted = false
	if err := s.UpdateParticipant(ctx, got); err != nil {
		t.Fatalf("UpdateParticipant: %v", err)
	}
	if after, _, _ := s.GetParticipant(ctx, 1, 7); after.IsMuted {
		t.Error("update did not persist")
	}

	removed, err := s.RemoveParticipant(ctx, 1, 7)
	if err != nil || !removed {
		t.Fatalf("RemoveParticipant: removed=%v err=%v", removed, err)
	}
	if removed, _ := s.RemoveParticipant(ctx, 1, 7); removed {
		t.Error("second removal reported removal")
	}
}
