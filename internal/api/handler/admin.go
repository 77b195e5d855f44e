package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/cricket-predictor/internal/service/notifications"
	"github.com/aimd54/cricket-predictor/internal/service/revote"
	"github.com/aimd54/cricket-predictor/internal/service/scoring"
	"github.com/aimd54/cricket-predictor/internal/service/tournaments"
)

// CreateTournament creates a tournament with its teams.
// POST /api/v1/admin/tournaments.
func (h *Handler) CreateTournament(c *gin.Context) {
	var in tournaments.TournamentInput
	if !h.bind(c, &in) {
		return
	}
	tournament, err := h.svc.Tournaments.CreateTournament(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "Failed to create tournament")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tournament": tournament})
}

// CreateMatch adds a fixture to a tournament.
// POST /api/v1/admin/tournaments/:id/matches.
func (h *Handler) CreateMatch(c *gin.Context) {
	tournamentID, err := parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	var in tournaments.MatchInput
	if !h.bind(c, &in) {
		return
	}
	match, err := h.svc.Tournaments.CreateMatch(c.Request.Context(), tournamentID, in)
	if err != nil {
		h.fail(c, err, "Failed to create match")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"match": match})
}

// DeleteTournament removes a tournament.
// DELETE /api/v1/admin/tournaments/:id.
func (h *Handler) DeleteTournament(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Tournaments.DeleteTournament(c.Request.Context(), id); err != nil {
		h.fail(c, err, "Failed to delete tournament")
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteMatch removes a fixture.
// DELETE /api/v1/admin/matches/:id.
func (h *Handler) DeleteMatch(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Tournaments.DeleteMatch(c.Request.Context(), id); err != nil {
		h.fail(c, err, "Failed to delete match")
		return
	}
	c.Status(http.StatusNoContent)
}

// PublishMatchResult publishes a match outcome and scores its predictions.
// POST /api/v1/admin/matches/:id/result.
func (h *Handler) PublishMatchResult(c *gin.Context) {
	matchID, err := parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	var in scoring.MatchResultInput
	if !h.bind(c, &in) {
		return
	}
	in.MatchID = matchID

	publication, err := h.svc.Scoring.PublishMatchResult(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "Failed to publish match result")
		return
	}

	h.log.Info().
		Uint("match_id", matchID).
		Uint("admin_id", currentUserID(c)).
		Int("scored", len(publication.Awards)).
		Msg("Match result published via API")

	c.JSON(http.StatusOK, gin.H{
		"match_id":    matchID,
		"publication": publication,
	})
}

// OverrideMatchStatus forces a match status.
// POST /api/v1/admin/matches/:id/status.
func (h *Handler) OverrideMatchStatus(c *gin.Context) {
	matchID, err := parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !h.bind(c, &req) {
		return
	}
	match, err := h.svc.Lifecycle.OverrideStatus(c.Request.Context(), matchID, req.Status)
	if err != nil {
		h.fail(c, err, "Failed to update match status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"match": match})
}

// PublishTournamentWinner publishes the champion and scores champion picks.
// POST /api/v1/admin/tournaments/:id/winner.
func (h *Handler) PublishTournamentWinner(c *gin.Context) {
	tournamentID, err := parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	var in scoring.TournamentWinnerInput
	if !h.bind(c, &in) {
		return
	}
	in.TournamentID = tournamentID

	publication, err := h.svc.Scoring.PublishTournamentWinner(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "Failed to publish tournament winner")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tournament_id": tournamentID,
		"publication":   publication,
	})
}

// ListRevoteRequests returns the unresolved revote requests addressed to the caller.
// GET /api/v1/admin/revotes.
func (h *Handler) ListRevoteRequests(c *gin.Context) {
	pending, err := h.svc.Revote.ListPendingRequests(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.fail(c, err, "Failed to retrieve revote requests")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"requests": pending,
		"total":    len(pending),
	})
}

// ResolveRevote approves, declines or ignores a revote request.
// POST /api/v1/admin/revotes/:id.
func (h *Handler) ResolveRevote(c *gin.Context) {
	notificationID, err := parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	var req struct {
		Decision revote.Decision `json:"decision"`
	}
	if !h.bind(c, &req) {
		return
	}
	if err := h.svc.Revote.ResolveRevote(c.Request.Context(), currentUserID(c), notificationID, req.Decision); err != nil {
		h.fail(c, err, "Failed to resolve revote request")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"notification_id": notificationID,
		"decision":        req.Decision,
	})
}

// ListUsers returns accounts, optionally filtered by role.
// GET /api/v1/admin/users?role=SUB_ADMIN.
func (h *Handler) ListUsers(c *gin.Context) {
	list, err := h.svc.Users.List(c.Request.Context(), c.Query("role"))
	if err != nil {
		h.fail(c, err, "Failed to retrieve users")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users": list,
		"total": len(list),
	})
}

// ApproveUser lets a registered user start predicting.
// POST /api/v1/admin/users/:id/approve.
func (h *Handler) ApproveUser(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Users.Approve(c.Request.Context(), id); err != nil {
		h.fail(c, err, "Failed to approve user")
		return
	}
	c.Status(http.StatusNoContent)
}

// SetUserRole changes a user's role.
// POST /api/v1/admin/users/:id/role.
func (h *Handler) SetUserRole(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	var req struct {
		Role string `json:"role"`
	}
	if !h.bind(c, &req) {
		return
	}
	if err := h.svc.Users.SetRole(c.Request.Context(), currentUserID(c), id, req.Role); err != nil {
		h.fail(c, err, "Failed to change role")
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteUser removes a user.
// DELETE /api/v1/admin/users/:id.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Users.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		h.fail(c, err, "Failed to delete user")
		return
	}
	c.Status(http.StatusNoContent)
}

// BroadcastNotification sends an INFO notification to a target audience.
// POST /api/v1/admin/notifications.
func (h *Handler) BroadcastNotification(c *gin.Context) {
	var in notifications.BroadcastInput
	if !h.bind(c, &in) {
		return
	}
	sent, err := h.svc.Notifications.Broadcast(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "Failed to send notification")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"target":     in.Target,
		"recipients": sent,
	})
}
