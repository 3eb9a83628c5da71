package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/AkanshuAich/video-based-social-app/internal/adapters/presence"
	"github.com/AkanshuAich/video-based-social-app/internal/config"
	"github.com/AkanshuAich/video-based-social-app/internal/registry"
)

// ClientTokenMiddleware tags every request with a stable per-browser
// token; the presence layer logs it against connection ids.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, reg *registry.Registry, ctl *presence.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("RoomSessions", store))
	r.Use(ClientTokenMiddleware())

	if cfg.StaticPath != "" {
		r.Static("/static", cfg.StaticPath)
		r.GET("/", func(c *gin.Context) {
			c.File(cfg.StaticPath + "/index.html")
		})
	}

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	h := &Handlers{Registry: reg}

	api := r.Group("/api")

	api.GET("/ws", func(c *gin.Context) {
		ctl.HandlePresence(ctx, c)
	})

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

	return r
}
