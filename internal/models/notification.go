package models

import (
	"time"
)

// NotificationType constants.
const (
	NotificationTypeInfo        = "INFO"
	NotificationTypeVoteRequest = "VOTE_REQUEST"
	NotificationTypeRevoteReply = "REVOTE_DECISION"
)

// Notification actions carried by VOTE_REQUEST notifications.
// ActionRevoteMatch exists for older rows; no handler acts on it.
const (
	ActionRevoteTournament = "REVOTE_TOURNAMENT"
	ActionRevoteMatch      = "REVOTE_MATCH"
)

// Notification is a message addressed to a single user.
// Structured data lives in typed columns and is exposed through Payload.
type Notification struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	User         *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Type         string    `gorm:"size:50;not null;default:INFO;index" json:"type"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Message      string    `gorm:"type:text;not null" json:"message"`
	IsRead       bool      `gorm:"not null;default:false;index" json:"is_read"`
	Action       *string   `gorm:"size:50" json:"action,omitempty"`
	RequesterID  *uint     `gorm:"index" json:"requester_id,omitempty"`
	TournamentID *uint     `gorm:"index" json:"tournament_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for Notification model.
func (Notification) TableName() string {
	return "notifications"
}

// NotificationPayload is the typed data attached to a notification, keyed by its type.
type NotificationPayload interface {
	notificationType() string
}

// RevoteRequestPayload asks an administrator to release a locked champion pick.
type RevoteRequestPayload struct {
	RequesterID  uint `json:"requester_id"`
	TournamentID uint `json:"tournament_id"`
}

func (RevoteRequestPayload) notificationType() string { return NotificationTypeVoteRequest }

// RevoteDecisionPayload tells a requester how their revote request was resolved.
type RevoteDecisionPayload struct {
	TournamentID uint `json:"tournament_id"`
	Approved     bool `json:"approved"`
}

func (RevoteDecisionPayload) notificationType() string { return NotificationTypeRevoteReply }

// Payload returns the typed payload for the notification, or nil for plain messages
// and rows whose columns do not form a complete payload.
func (n *Notification) Payload() NotificationPayload {
	switch n.Type {
	case NotificationTypeVoteRequest:
		if n.Action == nil || *n.Action != ActionRevoteTournament || n.RequesterID == nil || n.TournamentID == nil {
			return nil
		}
		return RevoteRequestPayload{RequesterID: *n.RequesterID, TournamentID: *n.TournamentID}
	case NotificationTypeRevoteReply:
		if n.TournamentID == nil {
			return nil
		}
		approved := n.Action != nil && *n.Action == revoteApprovedAction
		return RevoteDecisionPayload{TournamentID: *n.TournamentID, Approved: approved}
	}
	return nil
}

const (
	revoteApprovedAction = "APPROVED"
	revoteDeclinedAction = "DECLINED"
)

// NewRevoteRequest builds the VOTE_REQUEST notification sent to one administrator.
func NewRevoteRequest(adminID uint, p RevoteRequestPayload, title, message string) *Notification {
	action := ActionRevoteTournament
	requester := p.RequesterID
	tournament := p.TournamentID
	return &Notification{
		UserID:       adminID,
		Type:         NotificationTypeVoteRequest,
		Title:        title,
		Message:      message,
		Action:       &action,
		RequesterID:  &requester,
		TournamentID: &tournament,
	}
}

// NewRevoteDecision builds the reply notification sent to the requester.
func NewRevoteDecision(requesterID uint, p RevoteDecisionPayload, title, message string) *Notification {
	action := revoteDeclinedAction
	if p.Approved {
		action = revoteApprovedAction
	}
	tournament := p.TournamentID
	return &Notification{
		UserID:       requesterID,
		Type:         NotificationTypeRevoteReply,
		Title:        title,
		Message:      message,
		Action:       &action,
		TournamentID: &tournament,
	}
}
