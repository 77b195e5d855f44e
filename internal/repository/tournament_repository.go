package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aimd54/cricket-predictor/internal/domain"
	"github.com/aimd54/cricket-predictor/internal/models"
)

// TournamentRepository handles tournament and team database operations.
type TournamentRepository struct {
	db *DB
}

// NewTournamentRepository creates a new tournament repository.
func NewTournamentRepository(db *DB) *TournamentRepository {
	return &TournamentRepository{db: db}
}

// Create stores a tournament and links its teams. Team names are trimmed,
// deduplicated and upserted by name so teams are shared across tournaments.
func (r *TournamentRepository) Create(ctx context.Context, tournament *models.Tournament, teamNames []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		teams, err := upsertTeams(tx, teamNames)
		if err != nil {
			return err
		}
		tournament.Teams = teams
		if err := tx.Omit("Teams.*").Create(tournament).Error; err != nil {
			return fmt.Errorf("failed to create tournament: %w", err)
		}
		return nil
	})
}

func upsertTeams(tx *gorm.DB, names []string) ([]models.Team, error) {
	seen := make(map[string]bool, len(names))
	teams := make([]models.Team, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&models.Team{Name: name}).Error
		if err != nil {
			return nil, fmt.Errorf("failed to upsert team %s: %w", name, err)
		}
		// Reload: the insert reports no ID when the team already existed.
		var team models.Team
		if err := tx.Where("name = ?", name).First(&team).Error; err != nil {
			return nil, fmt.Errorf("failed to load team %s: %w", name, err)
		}
		teams = append(teams, team)
	}
	return teams, nil
}

// GetByID retrieves a tournament with its teams.
func (r *TournamentRepository) GetByID(ctx context.Context, id uint) (*models.Tournament, error) {
	var tournament models.Tournament
	err := r.db.WithContext(ctx).Preload("Teams", func(db *gorm.DB) *gorm.DB {
		return db.Order("teams.name ASC")
	}).First(&tournament, id).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("tournament %d", id))
	}
	return &tournament, nil
}

// List retrieves all tournaments, most recent start first, with teams and matches.
func (r *TournamentRepository) List(ctx context.Context) ([]models.Tournament, error) {
	var tournaments []models.Tournament
	err := r.db.WithContext(ctx).
		Preload("Teams").
		Preload("Matches", func(db *gorm.DB) *gorm.DB {
			return db.Order("matches.date ASC")
		}).
		Order("start_date DESC").
		Find(&tournaments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

// FirstMatch returns the earliest-dated match of a tournament, or nil when it has none.
func (r *TournamentRepository) FirstMatch(ctx context.Context, tournamentID uint) (*models.Match, error) {
	var matches []models.Match
	err := r.db.WithContext(ctx).
		Where("tournament_id = ?", tournamentID).
		Order("date ASC").
		Limit(1).
		Find(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get first match of tournament %d: %w", tournamentID, err)
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

// SetWinner records the champion and locks the tournament.
func (r *TournamentRepository) SetWinner(ctx context.Context, id uint, winner string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Tournament{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"winner": winner, "locked": true})
	if res.Error != nil {
		return fmt.Errorf("failed to set winner of tournament %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: tournament %d", domain.ErrNotFound, id)
	}
	return nil
}

// Delete removes a tournament together with its matches and predictions.
func (r *TournamentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tournament models.Tournament
		if err := tx.First(&tournament, id).Error; err != nil {
			return translate(err, fmt.Sprintf("tournament %d", id))
		}
		if err := tx.Model(&tournament).Association("Teams").Clear(); err != nil {
			return fmt.Errorf("failed to unlink teams: %w", err)
		}
		matchIDs := tx.Model(&models.Match{}).Select("id").Where("tournament_id = ?", id)
		if err := tx.Where("match_id IN (?) OR tournament_id = ?", matchIDs, id).Delete(&models.Prediction{}).Error; err != nil {
			return fmt.Errorf("failed to delete predictions: %w", err)
		}
		if err := tx.Where("tournament_id = ?", id).Delete(&models.Match{}).Error; err != nil {
			return fmt.Errorf("failed to delete matches: %w", err)
		}
		return tx.Delete(&tournament).Error
	})
}
