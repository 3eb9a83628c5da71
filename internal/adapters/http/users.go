package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createUserRequest struct {
	Username    string `json:"username" binding:"required"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
	Bio         string `json:"bio"`
}

func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.Registry.ListUsers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handlers) GetUser(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}
	user, found, err := h.Registry.GetUser(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateUser populates non-seeded stores in development; real signup
// lives outside this service.
func (h *Handlers) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid user data", "error": err.Error()})
		return
	}
	user, err := h.Registry.CreateUser(c.Request.Context(), req.Username, req.DisplayName, req.AvatarURL, req.Bio)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
