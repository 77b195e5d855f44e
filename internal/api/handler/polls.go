package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/cricket-predictor/internal/models"
	"github.com/aimd54/cricket-predictor/internal/service/polls"
)

// ListPolls returns open polls. Administrators also see closed ones.
// GET /api/v1/polls.
func (h *Handler) ListPolls(c *gin.Context) {
	list, err := h.svc.Polls.ListPolls(c.Request.Context(), models.IsAdminRole(c.GetString(ctxRole)))
	if err != nil {
		h.fail(c, err, "Failed to retrieve polls")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"polls": list,
		"total": len(list),
	})
}

// GetPoll returns a poll with the caller's current answer.
// GET /api/v1/polls/:id.
func (h *Handler) GetPoll(c *gin.Context) {
	pollID, err := parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	view, err := h.svc.Polls.GetPoll(c.Request.Context(), currentUserID(c), pollID)
	if err != nil {
		h.fail(c, err, "Failed to retrieve poll")
		return
	}
	c.JSON(http.StatusOK, gin.H{"poll": view})
}

// VotePoll records or changes the caller's answer.
// POST /api/v1/polls/:id/vote.
func (h *Handler) VotePoll(c *gin.Context) {
	pollID, err := parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	var req struct {
		OptionID uint `json:"option_id"`
	}
	if !h.bind(c, &req) {
		return
	}
	poll, err := h.svc.Polls.Vote(c.Request.Context(), currentUserID(c), pollID, req.OptionID)
	if err != nil {
		h.fail(c, err, "Failed to record vote")
		return
	}
	c.JSON(http.StatusOK, gin.H{"poll": poll})
}

// CreatePoll opens a new poll.
// POST /api/v1/admin/polls.
func (h *Handler) CreatePoll(c *gin.Context) {
	var in polls.PollInput
	if !h.bind(c, &in) {
		return
	}
	poll, err := h.svc.Polls.CreatePoll(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "Failed to create poll")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"poll": poll})
}

// SetPollActive opens or closes a poll.
// POST /api/v1/admin/polls/:id/active.
func (h *Handler) SetPollActive(c *gin.Context) {
	pollID, err := parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	var req struct {
		Active *bool `json:"active"`
	}
	if !h.bind(c, &req) {
		return
	}
	if req.Active == nil {
		h.errorResponse(c, http.StatusBadRequest, "active is required")
		return
	}
	if err := h.svc.Polls.SetActive(c.Request.Context(), pollID, *req.Active); err != nil {
		h.fail(c, err, "Failed to update poll")
		return
	}
	c.Status(http.StatusNoContent)
}

// DeletePoll removes a poll and its votes.
// DELETE /api/v1/admin/polls/:id.
func (h *Handler) DeletePoll(c *gin.Context) {
	pollID, err := parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Polls.DeletePoll(c.Request.Context(), pollID); err != nil {
		h.fail(c, err, "Failed to delete poll")
		return
	}
	c.Status(http.StatusNoContent)
}
