package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/playgrid/lobby/internal/adapters/presence"
	"github.com/playgrid/lobby/internal/config"
	"github.com/playgrid/lobby/internal/core"
)

// ClientTokenMiddleware tags every browser with a stable token so
// presence connections can be correlated with API calls in the logs.
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

func SetupRouter(ctx context.Context, cfg *config.Config, coord *core.Coordinator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("LobbySessions", store))
	r.Use(ClientTokenMiddleware())

	h := &LobbyHandlers{Coord: coord}
	r.GET("/", h.Root)
	r.POST("/lobby", h.CreateLobby)
	r.POST("/lobby/:code/join", h.JoinLobby)
	r.GET("/lobby/:code", h.GetLobby)
	r.GET("/lobbies", h.ListLobbies)

	ctl := presence.NewController(coord, cfg)
	r.GET("/ws", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("ct", c.GetString("client_token")).Msg("ws endpoint hit")
		ctl.HandleWS(ctx, c)
	})

	return r
}
