package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/AkanshuAich/video-based-social-app/internal/domain"
	"github.com/AkanshuAich/video-based-social-app/internal/registry"
	"github.com/AkanshuAich/video-based-social-app/internal/storage/memory"
)

func newTestRouter(t *testing.T) (*gin.Engine, *registry.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := registry.New(memory.NewStore())
	r := gin.New()
	h := &Handlers{Registry: reg}

	api := r.Group("/api")
	api.GET("/users", h.ListUsers)
	api.GET("/users/:id", h.GetUser)
	api.POST("/users", h.CreateUser)
	api.GET("/rooms", h.ListRooms)
	api.GET("/rooms/:id", h.GetRoom)
	api.POST("/rooms", h.CreateRoom)
	api.PATCH("/rooms/:id", h.UpdateRoom)
	api.DELETE("/rooms/:id", h.DeleteRoom)
	api.GET("/rooms/:id/participants", h.ListParticipants)
	api.POST("/rooms/:id/participants", h.AddParticipant)
	api.DELETE("/rooms/:id/participants/:userId", h.RemoveParticipant)

	return r, reg
}

func do(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedHost(t *testing.T, reg *registry.Registry) domain.User {
	t.Helper()
	u, err := reg.CreateUser(context.Background(), "emma_wilson", "Emma Wilson", "", "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func TestCreateAndGetRoom(t *testing.T) {
	r, reg := newTestRouter(t)
	host := seedHost(t, reg)

	w := do(t, r, http.MethodPost, "/api/rooms",
		`{"name":"Tech Talk Daily","hostId":1,"roomType":"audio","description":"daily talks"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /api/rooms = %d, body %s", w.Code, w.Body)
	}
	var created registry.RoomSummary
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created room: %v", err)
	}
	if created.Host == nil || created.Host.ID != host.ID {
		t.Errorf("created room host = %+v, want user %d", created.Host, host.ID)
	}
	if created.ParticipantCount != 1 {
		t.Errorf("participantCount = %d, want 1 (the host)", created.ParticipantCount)
	}

	w = do(t, r, http.MethodGet, "/api/rooms/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/rooms/1 = %d", w.Code)
	}
	var state registry.RoomState
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode room state: %v", err)
	}
	if len(state.Participants) != 1 || state.Participants[0].Role != domain.RoleHost {
		t.Errorf("room state participants = %+v, want the host", state.Participants)
	}
}

func TestCreateRoomErrors(t *testing.T) {
	r, reg := newTestRouter(t)
	seedHost(t, reg)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing name", `{"hostId":1,"roomType":"audio"}`, http.StatusBadRequest},
		{"bad type", `{"name":"x","hostId":1,"roomType":"webinar"}`, http.StatusBadRequest},
		{"unknown host", `{"name":"x","hostId":99,"roomType":"audio"}`, http.StatusNotFound},
		{"not json", `nope`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if w := do(t, r, http.MethodPost, "/api/rooms", tc.body); w.Code != tc.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tc.want, w.Body)
			}
		})
	}
}

func TestGetRoomNotFound(t *testing.T) {
	r, _ := newTestRouter(t)
	if w := do(t, r, http.MethodGet, "/api/rooms/42", ""); w.Code != http.StatusNotFound {
		t.Errorf("GET missing room = %d, want 404", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/rooms/abc", ""); w.Code != http.StatusBadRequest {
		t.Errorf("GET non-numeric id = %d, want 400", w.Code)
	}
}

func TestListRoomsActiveQuery(t *testing.T) {
	r, reg := newTestRouter(t)
	seedHost(t, reg)
	do(t, r, http.MethodPost, "/api/rooms", `{"name":"a","hostId":1,"roomType":"audio"}`)
	do(t, r, http.MethodPost, "/api/rooms", `{"name":"b","hostId":1,"roomType":"audio"}`)
	if w := do(t, r, http.MethodPatch, "/api/rooms/2", `{"isActive":false}`); w.Code != http.StatusOK {
		t.Fatalf("PATCH = %d", w.Code)
	}

	var rooms []registry.RoomSummary
	w := do(t, r, http.MethodGet, "/api/rooms?active=true", "")
	if err := json.Unmarshal(w.Body.Bytes(), &rooms); err != nil {
		t.Fatalf("decode rooms: %v", err)
	}
	if len(rooms) != 1 || rooms[0].ID != 1 {
		t.Errorf("active rooms = %+v, want only room 1", rooms)
	}
}

func TestParticipantLifecycle(t *testing.T) {
	r, reg := newTestRouter(t)
	seedHost(t, reg)
	if _, err := reg.CreateUser(context.Background(), "alex_morgan", "", "", ""); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	do(t, r, http.MethodPost, "/api/rooms", `{"name":"a","hostId":1,"roomType":"audio"}`)

	w := do(t, r, http.MethodPost, "/api/rooms/1/participants", `{"userId":2}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST participant = %d, body %s", w.Code, w.Body)
	}
	var p domain.Participant
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode participant: %v", err)
	}
	if p.Role != domain.RoleListener || !p.IsMuted {
		t.Errorf("joined participant = %+v, want muted listener", p)
	}

	// REST join is idempotent like the socket join.
	w = do(t, r, http.MethodPost, "/api/rooms/1/participants", `{"userId":2}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("repeat POST participant = %d", w.Code)
	}
	var again domain.Participant
	if err := json.Unmarshal(w.Body.Bytes(), &again); err != nil {
		t.Fatalf("decode participant: %v", err)
	}
	if again.ID != p.ID {
		t.Errorf("repeat join created row %d, want %d", again.ID, p.ID)
	}

	w = do(t, r, http.MethodGet, "/api/rooms/1/participants", "")
	if !strings.Contains(w.Body.String(), `"userId":2`) {
		t.Errorf("participant listing missing user 2: %s", w.Body)
	}

	if w := do(t, r, http.MethodDelete, "/api/rooms/1/participants/2", ""); w.Code != http.StatusNoContent {
		t.Errorf("DELETE participant = %d, want 204", w.Code)
	}
	if w := do(t, r, http.MethodDelete, "/api/rooms/1/participants/2", ""); w.Code != http.StatusNotFound {
		t.Errorf("repeat DELETE participant = %d, want 404", w.Code)
	}
}

func TestDeleteRoom(t *testing.T) {
	r, reg := newTestRouter(t)
	seedHost(t, reg)
	do(t, r, http.MethodPost, "/api/rooms", `{"name":"a","hostId":1,"roomType":"audio"}`)

	if w := do(t, r, http.MethodDelete, "/api/rooms/1", ""); w.Code != http.StatusNoContent {
		t.Errorf("DELETE room = %d, want 204", w.Code)
	}
	if w := do(t, r, http.MethodDelete, "/api/rooms/1", ""); w.Code != http.StatusNotFound {
		t.Errorf("repeat DELETE room = %d, want 404", w.Code)
	}
}

func TestUserEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/users", `{"username":"emma_wilson","displayName":"Emma Wilson"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /api/users = %d, body %s", w.Code, w.Body)
	}

	if w := do(t, r, http.MethodPost, "/api/users", `{"username":"emma_wilson"}`); w.Code != http.StatusBadRequest {
		t.Errorf("duplicate username = %d, want 400", w.Code)
	}

	if w := do(t, r, http.MethodGet, "/api/users/1", ""); w.Code != http.StatusOK {
		t.Errorf("GET /api/users/1 = %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/users/9", ""); w.Code != http.StatusNotFound {
		t.Errorf("GET missing user = %d, want 404", w.Code)
	}

	var users []domain.User
	w = do(t, r, http.MethodGet, "/api/users", "")
	if err := json.Unmarshal(w.Body.Bytes(), &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("users = %d, want 1", len(users))
	}
}
