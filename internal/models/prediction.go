package models

import (
	"time"
)

// Prediction is a user's pick for either a match or a tournament champion, never both.
// Points are written only by the scoring engine.
type Prediction struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	UserID       uint        `gorm:"not null;uniqueIndex:idx_prediction_user_match;uniqueIndex:idx_prediction_user_tournament" json:"user_id"`
	User         *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	MatchID      *uint       `gorm:"uniqueIndex:idx_prediction_user_match" json:"match_id"`
	Match        *Match      `gorm:"foreignKey:MatchID" json:"match,omitempty"`
	TournamentID *uint       `gorm:"uniqueIndex:idx_prediction_user_tournament" json:"tournament_id"`
	Tournament   *Tournament `gorm:"foreignKey:TournamentID" json:"tournament,omitempty"`
	TossPick     *string     `gorm:"size:255" json:"toss_pick"`
	MatchPick    string      `gorm:"size:255;not null" json:"match_pick"`
	Points       int         `gorm:"not null;default:0" json:"points"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// TableName specifies the table name for Prediction model.
func (Prediction) TableName() string {
	return "predictions"
}

// IsChampionPick reports whether the prediction targets a tournament winner.
func (p *Prediction) IsChampionPick() bool {
	return p.TournamentID != nil
}

// PointsAward is the score assigned to one prediction by a publish operation.
type PointsAward struct {
	PredictionID uint `json:"prediction_id"`
	Points       int  `json:"points"`
}
