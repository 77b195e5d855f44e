package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/cricket-predictor/internal/service/rooms"
)

// ListMyRooms returns the rooms the caller belongs to.
// GET /api/v1/rooms.
func (h *Handler) ListMyRooms(c *gin.Context) {
	list, err := h.svc.Rooms.ListForUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.fail(c, err, "Failed to retrieve rooms")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rooms": list,
		"total": len(list),
	})
}

// CreateRoom creates a room administered by the caller.
// POST /api/v1/rooms.
func (h *Handler) CreateRoom(c *gin.Context) {
	var in rooms.RoomInput
	if !h.bind(c, &in) {
		return
	}
	room, err := h.svc.Rooms.CreateRoom(c.Request.Context(), currentUserID(c), in)
	if err != nil {
		h.fail(c, err, "Failed to create room")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"room": room})
}

// JoinRoom enrols the caller in a room.
// POST /api/v1/rooms/:id/join.
func (h *Handler) JoinRoom(c *gin.Context) {
	roomID, err := parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	var req struct {
		InviteCode string `json:"invite_code"`
	}
	// The body is optional for public and request rooms.
	_ = c.ShouldBindJSON(&req)

	member, err := h.svc.Rooms.JoinRoom(c.Request.Context(), currentUserID(c), roomID, req.InviteCode)
	if err != nil {
		h.fail(c, err, "Failed to join room")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"membership": member})
}

// JoinByInviteCode enrols the caller in the private room the code belongs to.
// POST /api/v1/invites/:code.
func (h *Handler) JoinByInviteCode(c *gin.Context) {
	member, err := h.svc.Rooms.JoinByInviteCode(c.Request.Context(), currentUserID(c), c.Param("code"))
	if err != nil {
		h.fail(c, err, "Failed to join room")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"membership": member})
}

// LeaveRoom removes the caller from a room.
// DELETE /api/v1/rooms/:id/membership.
func (h *Handler) LeaveRoom(c *gin.Context) {
	roomID, err := parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Rooms.LeaveRoom(c.Request.Context(), currentUserID(c), roomID); err != nil {
		h.fail(c, err, "Failed to leave room")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListRoomMembers returns the memberships of a room.
// GET /api/v1/rooms/:id/members.
func (h *Handler) ListRoomMembers(c *gin.Context) {
	roomID, err := parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	members, err := h.svc.Rooms.ListMembers(c.Request.Context(), currentUserID(c), roomID)
	if err != nil {
		h.fail(c, err, "Failed to retrieve room members")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"room_id": roomID,
		"members": members,
		"total":   len(members),
	})
}

// ApproveRoomMember approves a pending membership.
// POST /api/v1/rooms/:id/members/:userId/approve.
func (h *Handler) ApproveRoomMember(c *gin.Context) {
	roomID, userID, ok := h.parseMembership(c)
	if !ok {
		return
	}
	if err := h.svc.Rooms.ApproveMember(c.Request.Context(), currentUserID(c), roomID, userID); err != nil {
		h.fail(c, err, "Failed to approve member")
		return
	}
	c.Status(http.StatusNoContent)
}

// RejectRoomMember removes a membership.
// DELETE /api/v1/rooms/:id/members/:userId.
func (h *Handler) RejectRoomMember(c *gin.Context) {
	roomID, userID, ok := h.parseMembership(c)
	if !ok {
		return
	}
	if err := h.svc.Rooms.RejectMember(c.Request.Context(), currentUserID(c), roomID, userID); err != nil {
		h.fail(c, err, "Failed to remove member")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) parseMembership(c *gin.Context) (roomID, userID uint, ok bool) {
	roomID, err := parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	userID, err = parseID(c, "userId")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	return roomID, userID, true
}
