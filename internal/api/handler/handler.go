// Package handler exposes the prediction core over a REST API.
// Players submit picks and read leaderboards; administrators publish results,
// manage fixtures and users, and resolve revote requests.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/cricket-predictor/internal/domain"
	"github.com/aimd54/cricket-predictor/internal/models"
	"github.com/aimd54/cricket-predictor/internal/service/leaderboard"
	"github.com/aimd54/cricket-predictor/internal/service/notifications"
	"github.com/aimd54/cricket-predictor/internal/service/polls"
	"github.com/aimd54/cricket-predictor/internal/service/predictions"
	"github.com/aimd54/cricket-predictor/internal/service/revote"
	"github.com/aimd54/cricket-predictor/internal/service/rooms"
	"github.com/aimd54/cricket-predictor/internal/service/scoring"
	"github.com/aimd54/cricket-predictor/internal/service/tournaments"
	"github.com/aimd54/cricket-predictor/internal/service/users"
	"github.com/aimd54/cricket-predictor/pkg/logger"
)

// PredictionService interface for pick submission.
type PredictionService interface {
	SubmitMatchPrediction(ctx context.Context, userID uint, in predictions.MatchPickInput) (*models.Prediction, error)
	SubmitTournamentPrediction(ctx context.Context, userID uint, in predictions.ChampionPickInput) (*models.Prediction, error)
	ListUserPredictions(ctx context.Context, userID uint) ([]models.Prediction, error)
}

// LifecycleService interface for match status operations.
type LifecycleService interface {
	ListUpcoming(ctx context.Context, userID uint) ([]models.Match, error)
	OverrideStatus(ctx context.Context, matchID uint, status string) (*models.Match, error)
}

// ScoringService interface for result publication.
type ScoringService interface {
	PublishMatchResult(ctx context.Context, in scoring.MatchResultInput) (*scoring.Publication, error)
	PublishTournamentWinner(ctx context.Context, in scoring.TournamentWinnerInput) (*scoring.Publication, error)
}

// LeaderboardService interface for leaderboard operations.
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, filter leaderboard.Filter) ([]leaderboard.Entry, error)
	GetUserStats(ctx context.Context, userID uint, filter leaderboard.Filter) (*leaderboard.UserStats, error)
}

// RevoteService interface for the revote workflow.
type RevoteService interface {
	RequestRevote(ctx context.Context, userID, tournamentID uint) (int, error)
	ResolveRevote(ctx context.Context, adminID, notificationID uint, decision revote.Decision) error
	ListPendingRequests(ctx context.Context, adminID uint) ([]models.Notification, error)
}

// UserService interface for account operations.
type UserService interface {
	Register(ctx context.Context, in users.RegisterInput) (*models.User, error)
	Get(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, role string) ([]models.User, error)
	Approve(ctx context.Context, id uint) error
	SetRole(ctx context.Context, actorID, id uint, role string) error
	Delete(ctx context.Context, actorID, id uint) error
}

// TournamentService interface for tournament and fixture operations.
type TournamentService interface {
	CreateTournament(ctx context.Context, in tournaments.TournamentInput) (*models.Tournament, error)
	CreateMatch(ctx context.Context, tournamentID uint, in tournaments.MatchInput) (*models.Match, error)
	Get(ctx context.Context, id uint) (*models.Tournament, error)
	List(ctx context.Context) ([]models.Tournament, error)
	ListMatches(ctx context.Context, tournamentID uint) ([]models.Match, error)
	DeleteTournament(ctx context.Context, id uint) error
	DeleteMatch(ctx context.Context, id uint) error
}

// RoomService interface for room operations.
type RoomService interface {
	CreateRoom(ctx context.Context, creatorID uint, in rooms.RoomInput) (*models.Room, error)
	JoinRoom(ctx context.Context, userID, roomID uint, inviteCode string) (*models.RoomMember, error)
	JoinByInviteCode(ctx context.Context, userID uint, inviteCode string) (*models.RoomMember, error)
	ApproveMember(ctx context.Context, actorID, roomID, userID uint) error
	RejectMember(ctx context.Context, actorID, roomID, userID uint) error
	LeaveRoom(ctx context.Context, userID, roomID uint) error
	ListForUser(ctx context.Context, userID uint) ([]models.Room, error)
	ListMembers(ctx context.Context, actorID, roomID uint) ([]models.RoomMember, error)
}

// NotificationService interface for notification operations.
type NotificationService interface {
	ListForUser(ctx context.Context, userID uint, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uint) error
	Broadcast(ctx context.Context, in notifications.BroadcastInput) (int, error)
}

// PollService interface for community polls.
type PollService interface {
	CreatePoll(ctx context.Context, in polls.PollInput) (*models.Poll, error)
	ListPolls(ctx context.Context, includeClosed bool) ([]models.Poll, error)
	GetPoll(ctx context.Context, userID, pollID uint) (*polls.PollView, error)
	Vote(ctx context.Context, userID, pollID, optionID uint) (*models.Poll, error)
	SetActive(ctx context.Context, pollID uint, active bool) error
	DeletePoll(ctx context.Context, pollID uint) error
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Services groups the dependencies of the handler.
type Services struct {
	Predictions   PredictionService
	Lifecycle     LifecycleService
	Scoring       ScoringService
	Leaderboard   LeaderboardService
	Revote        RevoteService
	Users         UserService
	Tournaments   TournamentService
	Rooms         RoomService
	Notifications NotificationService
	Polls         PollService
	Health        map[string]HealthCheck
}

// Handler handles API requests.
type Handler struct {
	svc  Services
	auth *Authenticator
	log  *logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(svc Services, auth *Authenticator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, auth: auth, log: log}
}

// RegisterRoutes mounts every endpoint on r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Health)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth", h.auth.RequireIdentity())
	authGroup.POST("/register", h.Register)
	authGroup.POST("/session", h.CreateSession)

	player := api.Group("", h.auth.RequireUser())
	player.GET("/me", h.GetMe)
	player.GET("/tournaments", h.ListTournaments)
	player.GET("/tournaments/:id", h.GetTournament)
	player.GET("/tournaments/:id/matches", h.ListTournamentMatches)
	player.POST("/tournaments/:id/prediction", h.SubmitTournamentPrediction)
	player.POST("/tournaments/:id/revote", h.RequestRevote)
	player.GET("/matches/upcoming", h.ListUpcomingMatches)
	player.PUT("/matches/:id/prediction", h.SubmitMatchPrediction)
	player.GET("/predictions/me", h.ListMyPredictions)
	player.GET("/leaderboard", h.GetLeaderboard)
	player.GET("/leaderboard/me", h.GetMyStats)
	player.GET("/notifications", h.ListNotifications)
	player.POST("/notifications/:id/read", h.MarkNotificationRead)
	player.GET("/rooms", h.ListMyRooms)
	player.POST("/rooms", h.CreateRoom)
	player.POST("/rooms/:id/join", h.JoinRoom)
	player.DELETE("/rooms/:id/membership", h.LeaveRoom)
	player.GET("/rooms/:id/members", h.ListRoomMembers)
	player.POST("/rooms/:id/members/:userId/approve", h.ApproveRoomMember)
	player.DELETE("/rooms/:id/members/:userId", h.RejectRoomMember)
	player.POST("/invites/:code", h.JoinByInviteCode)
	player.GET("/polls", h.ListPolls)
	player.GET("/polls/:id", h.GetPoll)
	player.POST("/polls/:id/vote", h.VotePoll)

	fixtures := api.Group("/admin", h.auth.RequireUser(), h.RequireRole(models.CanManageFixtures))
	fixtures.POST("/tournaments", h.CreateTournament)
	fixtures.POST("/tournaments/:id/matches", h.CreateMatch)

	admin := api.Group("/admin", h.auth.RequireUser(), h.RequireRole(models.IsAdminRole))
	admin.DELETE("/tournaments/:id", h.DeleteTournament)
	admin.POST("/tournaments/:id/winner", h.PublishTournamentWinner)
	admin.DELETE("/matches/:id", h.DeleteMatch)
	admin.POST("/matches/:id/result", h.PublishMatchResult)
	admin.POST("/matches/:id/status", h.OverrideMatchStatus)
	admin.GET("/revotes", h.ListRevoteRequests)
	admin.POST("/revotes/:id", h.ResolveRevote)
	admin.GET("/users", h.ListUsers)
	admin.POST("/users/:id/approve", h.ApproveUser)
	admin.POST("/users/:id/role", h.SetUserRole)
	admin.DELETE("/users/:id", h.DeleteUser)
	admin.POST("/notifications", h.BroadcastNotification)
	admin.POST("/polls", h.CreatePoll)
	admin.POST("/polls/:id/active", h.SetPollActive)
	admin.DELETE("/polls/:id", h.DeletePoll)
}

// Health reports the state of every registered dependency.
// GET /health.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.svc.Health))
	for name, check := range h.svc.Health {
		if err := check(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("Health check failed")
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{
		"status": state,
		"checks": checks,
		"time":   time.Now().UTC(),
	})
}

// Helper functions

// parseID extracts and validates a numeric URL parameter.
func parseID(c *gin.Context, param string) (uint, error) {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s: %s", param, idStr)
	}
	return uint(id), nil
}

// parseOptionalID extracts an optional numeric query parameter.
func parseOptionalID(c *gin.Context, name string) (*uint, error) {
	idStr := c.Query(name)
	if idStr == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		return nil, fmt.Errorf("invalid %s parameter: %s", name, idStr)
	}
	v := uint(id)
	return &v, nil
}

// parseLimit extracts and validates the limit query parameter. Zero means no limit.
func parseLimit(c *gin.Context) (int, error) {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return 0, nil
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 0, fmt.Errorf("invalid limit parameter: %s", limitStr)
	}
	if limit < 1 {
		return 0, fmt.Errorf("limit must be greater than 0")
	}
	if limit > 1000 {
		return 0, fmt.Errorf("limit cannot exceed 1000")
	}
	return limit, nil
}

// bind decodes the JSON body into dst, answering 400 on failure.
func (h *Handler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrWindowClosed),
		errors.Is(err, domain.ErrAlreadyPredicted),
		errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// fail answers with the status matching err. Unexpected errors are logged and
// replaced by fallback so storage details do not leak.
func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
		h.errorResponse(c, status, fallback)
		return
	}
	h.errorResponse(c, status, err.Error())
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
