package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addParticipantRequest struct {
	UserID int `json:"userId" binding:"required"`
}

func (h *Handlers) ListParticipants(c *gin.Context) {
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
	c.JSON(http.StatusOK, state.Participants)
}

// AddParticipant is the REST join path. It converges with the socket
// join_room to the same idempotent participant row.
func (h *Handlers) AddParticipant(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}
	var req addParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid participant data", "error": err.Error()})
		return
	}

	participant, err := h.Registry.JoinRoom(c.Request.Context(), id, req.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, participant)
}

func (h *Handlers) RemoveParticipant(c *gin.Context) {
	roomID, ok := pathInt(c, "id")
	if !ok {
		return
	}
	userID, ok := pathInt(c, "userId")
	if !ok {
		return
	}

	removed, err := h.Registry.LeaveRoom(c.Request.Context(), roomID, userID)
	if err != nil {
		fail(c, err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"message": "participant not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
