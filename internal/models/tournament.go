package models

import (
	"time"
)

// Tournament type constants.
const (
	TournamentTypeT20  = "T20"
	TournamentTypeODI  = "ODI"
	TournamentTypeTest = "TEST"
)

// Tournament format constants.
const (
	TournamentFormatLeague    = "LEAGUE"
	TournamentFormatBilateral = "BILATERAL"
)

// Tournament represents a competition grouping matches and champion predictions.
type Tournament struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;size:255" json:"name"`
	Type      string    `gorm:"size:20;not null" json:"type"`
	Format    string    `gorm:"size:20;not null;default:LEAGUE" json:"format"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`
	Winner    *string   `gorm:"size:255" json:"winner"`
	// Locked is set once a winner is published and blocks structural edits.
	Locked    bool      `gorm:"not null;default:false" json:"locked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Teams   []Team  `gorm:"many2many:tournament_teams;" json:"teams,omitempty"`
	Matches []Match `gorm:"foreignKey:TournamentID;constraint:OnDelete:CASCADE" json:"matches,omitempty"`
}

// TableName specifies the table name for Tournament model.
func (Tournament) TableName() string {
	return "tournaments"
}

// HasTeam reports whether name is one of the participating teams.
// A tournament without registered teams accepts any name.
func (t *Tournament) HasTeam(name string) bool {
	if len(t.Teams) == 0 {
		return true
	}
	for _, team := range t.Teams {
		if team.Name == name {
			return true
		}
	}
	return false
}

// Team is a participating side, shared across tournaments and unique by name.
type Team struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null;size:255" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Team model.
func (Team) TableName() string {
	return "teams"
}

// ValidTournamentType reports whether t is T20, ODI or TEST.
func ValidTournamentType(t string) bool {
	return t == TournamentTypeT20 || t == TournamentTypeODI || t == TournamentTypeTest
}

// ValidTournamentFormat reports whether f is LEAGUE or BILATERAL.
func ValidTournamentFormat(f string) bool {
	return f == TournamentFormatLeague || f == TournamentFormatBilateral
}
