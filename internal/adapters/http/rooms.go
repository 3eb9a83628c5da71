package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AkanshuAich/video-based-social-app/internal/domain"
	"github.com/AkanshuAich/video-based-social-app/internal/registry"
)

type createRoomRequest struct {
	Name             string     `json:"name" binding:"required"`
	Description      string     `json:"description"`
	HostID           int        `json:"hostId" binding:"required"`
	RoomType         string     `json:"roomType" binding:"required"`
	ScheduledFor     *time.Time `json:"scheduledFor"`
	ParticipantLimit int        `json:"participantLimit"`
}

type updateRoomRequest struct {
	Name             *string    `json:"name"`
	Description      *string    `json:"description"`
	IsActive         *bool      `json:"isActive"`
	ScheduledFor     *time.Time `json:"scheduledFor"`
	ParticipantLimit *int       `json:"participantLimit"`
}

func (h *Handlers) ListRooms(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	rooms, err := h.Registry.ListRooms(c.Request.Context(), activeOnly)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (h *Handlers) GetRoom(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}
	state, found, err := h.Registry.Snapshot(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"message": "room not found"})
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handlers) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid room data", "error": err.Error()})
		return
	}

	room, err := h.Registry.CreateRoom(c.Request.Context(), registry.CreateRoomSpec{
		Name:             req.Name,
		Description:      req.Description,
		HostID:           req.HostID,
		RoomType:         domain.RoomType(req.RoomType),
		ScheduledFor:     req.ScheduledFor,
		ParticipantLimit: req.ParticipantLimit,
	})
	if err != nil {
		fail(c, err)
		return
	}

	out := registry.RoomSummary{Room: room}
	if host, ok, err := h.Registry.GetUser(c.Request.Context(), room.HostID); err == nil && ok {
		out.Host = &host
	}
	c.JSON(http.StatusCreated, out)
}

func (h *Handlers) UpdateRoom(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}
	var req updateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid room data", "error": err.Error()})
		return
	}

	room, err := h.Registry.UpdateRoom(c.Request.Context(), id, registry.RoomPatch{
		Name:             req.Name,
		Description:      req.Description,
		IsActive:         req.IsActive,
		ScheduledFor:     req.ScheduledFor,
		ParticipantLimit: req.ParticipantLimit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *Handlers) DeleteRoom(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}
	deleted, err := h.Registry.DeleteRoom(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"message": "room not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
