// Package repotest opens throwaway SQLite databases for repository and service tests.
package repotest

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aimd54/cricket-predictor/internal/models"
	"github.com/aimd54/cricket-predictor/internal/repository"
)

// NewDB returns a migrated in-memory database private to t.
func NewDB(t *testing.T) *repository.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), repository.GormConfig(gormlogger.Silent))
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("Failed to get database handle: %v", err)
	}
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	// Enable foreign key constraints (SQLite default is off)
	if err := gdb.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	db := &repository.DB{DB: gdb}
	if err := db.AutoMigrate(); err != nil {
		t.Fatalf("Failed to auto-migrate tables: %v", err)
	}
	return db
}

// CreateUser inserts an approved user with the given role.
func CreateUser(t *testing.T, db *repository.DB, username, role string) *models.User {
	t.Helper()

	user := &models.User{
		Username:   username,
		Email:      username + "@example.com",
		Role:       role,
		IsApproved: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// CreateTournament inserts a tournament with its teams.
func CreateTournament(t *testing.T, db *repository.DB, tournament *models.Tournament, teams ...string) *models.Tournament {
	t.Helper()

	if tournament.Type == "" {
		tournament.Type = models.TournamentTypeT20
	}
	if tournament.Format == "" {
		tournament.Format = models.TournamentFormatLeague
	}
	if err := repository.NewTournamentRepository(db).Create(t.Context(), tournament, teams); err != nil {
		t.Fatalf("Failed to create test tournament: %v", err)
	}
	return tournament
}

// CreateMatch inserts a match.
func CreateMatch(t *testing.T, db *repository.DB, match *models.Match) *models.Match {
	t.Helper()

	if match.Status == "" {
		match.Status = models.MatchStatusScheduled
	}
	if err := db.Create(match).Error; err != nil {
		t.Fatalf("Failed to create test match: %v", err)
	}
	return match
}

// CreatePrediction inserts a prediction as-is.
func CreatePrediction(t *testing.T, db *repository.DB, prediction *models.Prediction) *models.Prediction {
	t.Helper()

	if err := db.Create(prediction).Error; err != nil {
		t.Fatalf("Failed to create test prediction: %v", err)
	}
	return prediction
}
