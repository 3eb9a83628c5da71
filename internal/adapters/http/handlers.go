// Package http exposes the REST boundary of the registry. Status
// mapping: not-found -> 404, validation -> 400, permission -> 403,
// successful delete -> 204.
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/AkanshuAich/video-based-social-app/internal/registry"
)

type Handlers struct {
	Registry *registry.Registry
}

func pathInt(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid " + name})
		return 0, false
	}
	return v, true
}

// fail translates registry errors onto the transport contract.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, registry.ErrPermission):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case errors.Is(err, registry.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	default:
		log.Error().Err(err).Str("module", "adapters.http").Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}
