// Package app wires repositories and services into the API handler.
package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aimd54/cricket-predictor/internal/api/dashboard"
	"github.com/aimd54/cricket-predictor/internal/api/handler"
	"github.com/aimd54/cricket-predictor/internal/cache"
	"github.com/aimd54/cricket-predictor/internal/config"
	"github.com/aimd54/cricket-predictor/internal/mattermost"
	"github.com/aimd54/cricket-predictor/internal/models"
	"github.com/aimd54/cricket-predictor/internal/repository"
	dashboardsvc "github.com/aimd54/cricket-predictor/internal/service/dashboard"
	"github.com/aimd54/cricket-predictor/internal/service/leaderboard"
	"github.com/aimd54/cricket-predictor/internal/service/lifecycle"
	"github.com/aimd54/cricket-predictor/internal/service/notifications"
	"github.com/aimd54/cricket-predictor/internal/service/polls"
	"github.com/aimd54/cricket-predictor/internal/service/predictions"
	"github.com/aimd54/cricket-predictor/internal/service/revote"
	"github.com/aimd54/cricket-predictor/internal/service/rooms"
	"github.com/aimd54/cricket-predictor/internal/service/scheduler"
	"github.com/aimd54/cricket-predictor/internal/service/scoring"
	"github.com/aimd54/cricket-predictor/internal/service/tournaments"
	"github.com/aimd54/cricket-predictor/internal/service/users"
	"github.com/aimd54/cricket-predictor/internal/service/window"
	"github.com/aimd54/cricket-predictor/pkg/logger"
)

// Deps are the process-wide resources the services are built from.
// Cache and Announcer may be nil.
type Deps struct {
	Config    *config.Config
	DB        *repository.DB
	Cache     *cache.Cache
	Announcer *mattermost.Client
	Clock     clockwork.Clock
	Log       *logger.Logger
}

// NewServices builds every service over deps.
func NewServices(deps Deps) handler.Services {
	cfg := deps.Config

	userRepo := repository.NewUserRepository(deps.DB)
	tournamentRepo := repository.NewTournamentRepository(deps.DB)
	matchRepo := repository.NewMatchRepository(deps.DB)
	predictionRepo := repository.NewPredictionRepository(deps.DB)
	roomRepo := repository.NewRoomRepository(deps.DB)
	notificationRepo := repository.NewNotificationRepository(deps.DB)
	pollRepo := repository.NewPollRepository(deps.DB)

	lifecycleSvc := lifecycle.NewService(matchRepo, deps.Cache, cfg.Lifecycle, deps.Clock, deps.Log.Component("lifecycle"))

	var announcer scoring.Announcer
	if deps.Announcer != nil {
		announcer = deps.Announcer
	}

	health := map[string]handler.HealthCheck{
		"database": func(context.Context) error { return deps.DB.Health() },
	}
	if deps.Cache != nil {
		health["redis"] = deps.Cache.Health
	}

	return handler.Services{
		Predictions: predictions.NewService(
			userRepo, matchRepo, tournamentRepo, predictionRepo,
			lifecycleSvc, window.NewPolicy(cfg.Predictions), deps.Clock, deps.Log.Component("predictions"),
		),
		Lifecycle:     lifecycleSvc,
		Scoring:       scoring.NewService(deps.DB, announcer, deps.Clock, deps.Log.Component("scoring")),
		Leaderboard:   leaderboard.NewService(predictionRepo, userRepo, roomRepo, deps.Log.Component("leaderboard")),
		Revote:        revote.NewService(deps.DB, deps.Log.Component("revote")),
		Users:         users.NewService(userRepo, cfg.Bootstrap, deps.Log.Component("users")),
		Tournaments:   tournaments.NewService(tournamentRepo, matchRepo, deps.Log.Component("tournaments")),
		Rooms:         rooms.NewService(roomRepo, userRepo, deps.Log.Component("rooms")),
		Notifications: notifications.NewService(notificationRepo, userRepo, roomRepo, deps.Log.Component("notifications")),
		Polls:         polls.NewService(pollRepo, tournamentRepo, userRepo, deps.Log.Component("polls")),
		Health:        health,
	}
}

// NewScheduler builds the background job runner. It is not started.
func NewScheduler(deps Deps) *scheduler.Service {
	cfg := deps.Config
	matchRepo := repository.NewMatchRepository(deps.DB)
	lifecycleSvc := lifecycle.NewService(matchRepo, deps.Cache, cfg.Lifecycle, deps.Clock, deps.Log.Component("lifecycle"))

	var announcer scheduler.Announcer
	if deps.Announcer != nil {
		announcer = deps.Announcer
	}

	return scheduler.NewService(
		cfg.Scheduler, lifecycleSvc, matchRepo, announcer,
		window.NewPolicy(cfg.Predictions), deps.Clock, deps.Log.Component("scheduler"),
	)
}

// NewRouter builds the gin engine serving the API and, when enabled, the
// Prometheus endpoint.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Config.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(deps.Log.Component("http")))

	auth := handler.NewAuthenticator(deps.Config.Auth, deps.Clock)
	h := handler.NewHandler(NewServices(deps), auth, deps.Log.Component("api"))
	h.RegisterRoutes(r)

	board := dashboard.NewHandler(dashboardsvc.NewService(
		repository.NewMetricsRepository(deps.DB),
		repository.NewMatchRepository(deps.DB),
		repository.NewTournamentRepository(deps.DB),
		deps.Cache, deps.Clock, deps.Log.Component("dashboard"),
	), deps.Log.Component("api"))
	board.RegisterRoutes(r.Group("/api/v1/admin/dashboard", auth.RequireUser(), h.RequireRole(models.IsAdminRole)))

	if prom := deps.Config.Metrics.Prometheus; prom.Enabled {
		path := prom.Path
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(promhttp.Handler()))
	}

	return r
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Msg("Request served")
	}
}
