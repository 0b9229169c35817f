package http

import (
	"context"
	"net/http"
	"time"

	"github.com/dkeye/Shuffle/internal/adapters/signal"
	"github.com/dkeye/Shuffle/internal/app/orch"
	"github.com/dkeye/Shuffle/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// SignalOptions maps the websocket settings of cfg onto the controller.
func SignalOptions(cfg *config.Config) signal.Options {
	opts := signal.Options{
		ReadLimit:   cfg.ReadLimit,
		PingPeriod:  cfg.PingPeriod,
		PongWait:    cfg.PongWait,
		WriteWait:   cfg.WriteWait,
		SendBuffer:  cfg.SendBuffer,
		SignalRate:  rate.Limit(cfg.SignalLimit.Rate),
		SignalBurst: cfg.SignalLimit.Burst,
	}
	if cfg.JoinLimit.Count > 0 && cfg.JoinLimit.Interval > 0 {
		opts.JoinLimiter = signal.NewJoinRateLimiter(cfg.JoinLimit.Count, cfg.JoinLimit.Interval)
	}
	return opts
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("ShuffleSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	ctrl := signal.NewSignalWSController(o, SignalOptions(cfg))
	h := &sessionHandlers{orch: o}

	api := r.Group("/api")

	api.GET("/ws/signal", func(c *gin.Context) {
		touchVisit(c)
		log.Info().Str("module", "adapters.http").Str("client", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	api.GET("/sessions", h.list)
	api.GET("/sessions/:code", h.get)
	api.GET("/sessions/:code/qr", h.qr)

	ice, err := cfg.WebRTCICEServers()
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("ice servers")
	}
	api.GET("/ice-servers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": ice})
	})

	return r
}

// touchVisit records the last websocket visit in the cookie session.
func touchVisit(c *gin.Context) {
	s := sessions.Default(c)
	s.Set("last_visit", time.Now().Unix())
	if err := s.Save(); err != nil {
		log.Debug().Err(err).Str("module", "adapters.http").Msg("session save")
	}
}
