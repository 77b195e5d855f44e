package models

import (
	"time"
)

// MatchStatus constants.
const (
	MatchStatusScheduled = "SCHEDULED"
	MatchStatusLive      = "LIVE"
	MatchStatusCompleted = "COMPLETED"
	MatchStatusAbandoned = "ABANDONED"
)

// Result sentinels published in place of a winning team.
const (
	OutcomeDraw      = "DRAW"
	OutcomeTie       = "TIE"
	OutcomeAbandoned = "ABANDONED"
	OutcomeNoResult  = "NO_RESULT"
)

// Match represents a single fixture within a tournament.
type Match struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	TournamentID uint        `gorm:"not null;index" json:"tournament_id"`
	Tournament   *Tournament `gorm:"foreignKey:TournamentID" json:"tournament,omitempty"`
	Number       int         `gorm:"not null;default:0" json:"number"`
	TeamA        string      `gorm:"column:team_a;not null;size:255" json:"team_a"`
	TeamB        string      `gorm:"column:team_b;not null;size:255" json:"team_b"`
	Date         time.Time   `gorm:"not null;index" json:"date"`
	Status       string      `gorm:"size:20;not null;default:SCHEDULED;index" json:"status"`
	TossWinner   *string     `gorm:"size:255" json:"toss_winner"`
	MatchWinner  *string     `gorm:"size:255" json:"match_winner"`
	Result       *string     `gorm:"type:text" json:"result"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`

	Predictions []Prediction `gorm:"foreignKey:MatchID;constraint:OnDelete:CASCADE" json:"predictions,omitempty"`
}

// TableName specifies the table name for Match model.
func (Match) TableName() string {
	return "matches"
}

// HasTeam reports whether name is one of the two sides.
func (m *Match) HasTeam(name string) bool {
	return name == m.TeamA || name == m.TeamB
}

// IsOpen reports whether the match has not reached a terminal status.
func (m *Match) IsOpen() bool {
	return m.Status == MatchStatusScheduled || m.Status == MatchStatusLive
}

// IsNoDecision reports whether outcome is one of the flat-scored categories.
func IsNoDecision(outcome string) bool {
	switch outcome {
	case OutcomeDraw, OutcomeTie, OutcomeAbandoned, OutcomeNoResult:
		return true
	}
	return false
}

// ValidMatchStatus reports whether status is a known match status.
func ValidMatchStatus(status string) bool {
	switch status {
	case MatchStatusScheduled, MatchStatusLive, MatchStatusCompleted, MatchStatusAbandoned:
		return true
	}
	return false
}
