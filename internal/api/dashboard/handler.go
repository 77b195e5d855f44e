// Package dashboard provides the administrator dashboard endpoints: installation
// counts and pick distributions for matches and tournaments.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/cricket-predictor/internal/domain"
	"github.com/aimd54/cricket-predictor/internal/service/dashboard"
	"github.com/aimd54/cricket-predictor/pkg/logger"
)

// Service interface for dashboard views.
type Service interface {
	GetOverview(ctx context.Context) (*dashboard.Overview, error)
	MatchPicks(ctx context.Context, matchID uint) (*dashboard.Picks, error)
	ChampionPicks(ctx context.Context, tournamentID uint) (*dashboard.Picks, error)
}

// Handler handles dashboard API requests.
type Handler struct {
	service Service
	log     *logger.Logger
}

// NewHandler creates a new dashboard handler.
func NewHandler(service Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// RegisterRoutes mounts the dashboard on r. Callers guard r with admin auth.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("", h.GetOverview)
	r.GET("/matches/:id/picks", h.GetMatchPicks)
	r.GET("/tournaments/:id/picks", h.GetChampionPicks)
}

// GetOverview returns installation-wide counts.
// GET /api/v1/admin/dashboard.
func (h *Handler) GetOverview(c *gin.Context) {
	overview, err := h.service.GetOverview(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to retrieve dashboard")
		return
	}
	c.JSON(http.StatusOK, overview)
}

// GetMatchPicks returns how users picked a match.
// GET /api/v1/admin/dashboard/matches/:id/picks.
func (h *Handler) GetMatchPicks(c *gin.Context) {
	id, err := parseID(c, "match")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	picks, err := h.service.MatchPicks(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to retrieve match picks")
		return
	}
	c.JSON(http.StatusOK, picks)
}

// GetChampionPicks returns how users picked a tournament's champion.
// GET /api/v1/admin/dashboard/tournaments/:id/picks.
func (h *Handler) GetChampionPicks(c *gin.Context) {
	id, err := parseID(c, "tournament")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	picks, err := h.service.ChampionPicks(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to retrieve champion picks")
		return
	}
	c.JSON(http.StatusOK, picks)
}

// parseID extracts and validates the numeric id URL parameter.
func parseID(c *gin.Context, what string) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s ID: %s", what, idStr)
	}
	return uint(id), nil
}

func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	if errors.Is(err, domain.ErrNotFound) {
		h.errorResponse(c, http.StatusNotFound, err.Error())
		return
	}
	h.log.Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
	h.errorResponse(c, http.StatusInternalServerError, fallback)
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
