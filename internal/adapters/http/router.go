package http

import (
	"context"
	"net/http"

	"github.com/dkeye/Convo/internal/adapters/signal"
	"github.com/dkeye/Convo/internal/adapters/storage"
	"github.com/dkeye/Convo/internal/app"
	"github.com/dkeye/Convo/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

const clientTokenKey = "client_token"

// Deps are the already-built services the router exposes.
type Deps struct {
	Relay      *app.Relay
	Rooms      *storage.RoomRepository
	ICEServers []webrtc.ICEServer
}

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware keeps a random per-browser token in the session. It
// only correlates log lines; it is not an identity.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(clientTokenKey).(string)
		if token == "" {
			token = genClientToken()
			session.Set(clientTokenKey, token)
			if err := session.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("session save")
			}
		}
		c.Set(clientTokenKey, token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	origins := NewOriginPolicy(cfg.AllowedOrigins)
	r.Use(OriginMiddleware(origins))

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions("ConvoSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})
	r.GET("/home", home)

	api := r.Group("/api")
	api.GET("/health", health(deps.Relay.Registry()))
	api.GET("/ice-servers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ice_servers": deps.ICEServers})
	})

	rh := &roomHandlers{rooms: deps.Rooms}
	rooms := api.Group("/rooms")
	rooms.GET("", rh.list)
	rooms.POST("", AdminAuth(cfg.AdminToken), rh.create)
	rooms.POST("/create-simple", rh.create)
	rooms.POST("/join", rh.join)
	rooms.GET("/:id", rh.get)
	rooms.DELETE("/:id", AdminAuth(cfg.AdminToken), rh.remove)

	ctrl := signal.NewSignalWSController(deps.Relay, signal.SettingsFrom(cfg), origins.Allowed)
	r.GET("/ws", func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Int("origins", len(cfg.AllowedOrigins)).Msg("router setup")
	return r
}
