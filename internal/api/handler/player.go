package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/cricket-predictor/internal/service/leaderboard"
	"github.com/aimd54/cricket-predictor/internal/service/predictions"
	"github.com/aimd54/cricket-predictor/internal/service/users"
)

// Register creates the account of a signed-in identity and returns a session token.
// POST /api/v1/auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
	}
	if !h.bind(c, &req) {
		return
	}

	user, err := h.svc.Users.Register(c.Request.Context(), users.RegisterInput{
		Username: req.Username,
		Email:    c.GetString(ctxEmail),
	})
	if err != nil {
		h.fail(c, err, "Failed to register user")
		return
	}

	token, err := h.auth.Issue(user)
	if err != nil {
		h.fail(c, err, "Failed to issue token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":  user,
		"token": token,
	})
}

// CreateSession exchanges an identity token for a session token.
// POST /api/v1/auth/session.
func (h *Handler) CreateSession(c *gin.Context) {
	user, err := h.svc.Users.GetByEmail(c.Request.Context(), c.GetString(ctxEmail))
	if err != nil {
		h.fail(c, err, "Failed to look up user")
		return
	}

	token, err := h.auth.Issue(user)
	if err != nil {
		h.fail(c, err, "Failed to issue token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}

// GetMe returns the caller's account.
// GET /api/v1/me.
func (h *Handler) GetMe(c *gin.Context) {
	user, err := h.svc.Users.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.fail(c, err, "Failed to retrieve user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ListTournaments returns every tournament.
// GET /api/v1/tournaments.
func (h *Handler) ListTournaments(c *gin.Context) {
	list, err := h.svc.Tournaments.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to retrieve tournaments")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tournaments": list,
		"total":       len(list),
	})
}

// GetTournament returns one tournament with its teams.
// GET /api/v1/tournaments/:id.
func (h *Handler) GetTournament(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	tournament, err := h.svc.Tournaments.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to retrieve tournament")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tournament": tournament})
}

// ListTournamentMatches returns the fixtures of a tournament.
// GET /api/v1/tournaments/:id/matches.
func (h *Handler) ListTournamentMatches(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	matches, err := h.svc.Tournaments.ListMatches(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to retrieve matches")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tournament_id": id,
		"matches":       matches,
		"total":         len(matches),
	})
}

// ListUpcomingMatches returns current and future matches with the caller's picks.
// GET /api/v1/matches/upcoming.
func (h *Handler) ListUpcomingMatches(c *gin.Context) {
	matches, err := h.svc.Lifecycle.ListUpcoming(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.fail(c, err, "Failed to retrieve upcoming matches")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"matches":      matches,
		"total":        len(matches),
		"generated_at": time.Now().UTC(),
	})
}

// SubmitMatchPrediction creates or replaces the caller's pick for a match.
// PUT /api/v1/matches/:id/prediction.
func (h *Handler) SubmitMatchPrediction(c *gin.Context) {
	matchID, err := parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	var in predictions.MatchPickInput
	if !h.bind(c, &in) {
		return
	}
	in.MatchID = matchID

	prediction, err := h.svc.Predictions.SubmitMatchPrediction(c.Request.Context(), currentUserID(c), in)
	if err != nil {
		h.fail(c, err, "Failed to save prediction")
		return
	}
	c.JSON(http.StatusOK, gin.H{"prediction": prediction})
}

// SubmitTournamentPrediction records the caller's one champion pick.
// POST /api/v1/tournaments/:id/prediction.
func (h *Handler) SubmitTournamentPrediction(c *gin.Context) {
	tournamentID, err := parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	var in predictions.ChampionPickInput
	if !h.bind(c, &in) {
		return
	}
	in.TournamentID = tournamentID

	prediction, err := h.svc.Predictions.SubmitTournamentPrediction(c.Request.Context(), currentUserID(c), in)
	if err != nil {
		h.fail(c, err, "Failed to save prediction")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"prediction": prediction})
}

// RequestRevote asks administrators to release the caller's champion pick.
// POST /api/v1/tournaments/:id/revote.
func (h *Handler) RequestRevote(c *gin.Context) {
	tournamentID, err := parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	sent, err := h.svc.Revote.RequestRevote(c.Request.Context(), currentUserID(c), tournamentID)
	if err != nil {
		h.fail(c, err, "Failed to request revote")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"tournament_id": tournamentID,
		"notified":      sent,
	})
}

// ListMyPredictions returns the caller's predictions.
// GET /api/v1/predictions/me.
func (h *Handler) ListMyPredictions(c *gin.Context) {
	list, err := h.svc.Predictions.ListUserPredictions(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.fail(c, err, "Failed to retrieve predictions")
		return
	}
	total := 0
	for _, p := range list {
		total += p.Points
	}
	c.JSON(http.StatusOK, gin.H{
		"predictions":  list,
		"total":        len(list),
		"total_points": total,
	})
}

// GetLeaderboard returns the ranked leaderboard.
// GET /api/v1/leaderboard?tournament_id=1&match_id=2&room_id=3&limit=10.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	entries, err := h.svc.Leaderboard.GetLeaderboard(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err, "Failed to retrieve leaderboard")
		return
	}

	h.log.Debug().
		Int("limit", filter.Limit).
		Int("entries", len(entries)).
		Msg("Retrieved leaderboard")

	c.JSON(http.StatusOK, gin.H{
		"leaderboard":   entries,
		"filter":        filter,
		"total_entries": len(entries),
		"generated_at":  time.Now().UTC(),
	})
}

// GetMyStats returns the caller's position on the filtered leaderboard.
// GET /api/v1/leaderboard/me?tournament_id=1.
func (h *Handler) GetMyStats(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	stats, err := h.svc.Leaderboard.GetUserStats(c.Request.Context(), currentUserID(c), filter)
	if err != nil {
		h.fail(c, err, "Failed to retrieve user statistics")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"stats":        stats,
		"generated_at": time.Now().UTC(),
	})
}

func (h *Handler) parseFilter(c *gin.Context) (leaderboard.Filter, bool) {
	var filter leaderboard.Filter
	var err error
	if filter.TournamentID, err = parseOptionalID(c, "tournament_id"); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return filter, false
	}
	if filter.MatchID, err = parseOptionalID(c, "match_id"); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return filter, false
	}
	if filter.RoomID, err = parseOptionalID(c, "room_id"); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return filter, false
	}
	if filter.Limit, err = parseLimit(c); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return filter, false
	}
	return filter, true
}

// ListNotifications returns the caller's notifications.
// GET /api/v1/notifications?unread=true.
func (h *Handler) ListNotifications(c *gin.Context) {
	unreadOnly := strings.EqualFold(c.Query("unread"), "true")
	list, err := h.svc.Notifications.ListForUser(c.Request.Context(), currentUserID(c), unreadOnly)
	if err != nil {
		h.fail(c, err, "Failed to retrieve notifications")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"notifications": list,
		"total":         len(list),
	})
}

// MarkNotificationRead marks one of the caller's notifications read.
// POST /api/v1/notifications/:id/read.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Notifications.MarkRead(c.Request.Context(), currentUserID(c), id); err != nil {
		h.fail(c, err, "Failed to update notification")
		return
	}
	c.Status(http.StatusNoContent)
}
