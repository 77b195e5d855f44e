package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aimd54/cricket-predictor/internal/domain"
	"github.com/aimd54/cricket-predictor/internal/models"
)

// MatchRepository handles match-related database operations.
type MatchRepository struct {
	db *DB
}

// NewMatchRepository creates a new match repository.
func NewMatchRepository(db *DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create creates a new match.
func (r *MatchRepository) Create(ctx context.Context, match *models.Match) error {
	if err := r.db.WithContext(ctx).Create(match).Error; err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

// GetByID retrieves a match by ID.
func (r *MatchRepository) GetByID(ctx context.Context, id uint) (*models.Match, error) {
	var match models.Match
	if err := r.db.WithContext(ctx).First(&match, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("match %d", id))
	}
	return &match, nil
}

// GetForUpdate retrieves a match inside a transaction, locking the row where the
// database supports it.
func (r *MatchRepository) GetForUpdate(ctx context.Context, id uint) (*models.Match, error) {
	var match models.Match
	query := r.db.WithContext(ctx)
	if query.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.First(&match, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("match %d", id))
	}
	return &match, nil
}

// ListByTournament retrieves the matches of a tournament in schedule order.
func (r *MatchRepository) ListByTournament(ctx context.Context, tournamentID uint) ([]models.Match, error) {
	var matches []models.Match
	err := r.db.WithContext(ctx).
		Where("tournament_id = ?", tournamentID).
		Order("date ASC, number ASC").
		Find(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}

// ListSince retrieves matches dated at or after since, with their tournament and
// the given user's prediction preloaded.
func (r *MatchRepository) ListSince(ctx context.Context, since time.Time, userID uint) ([]models.Match, error) {
	var matches []models.Match
	err := r.db.WithContext(ctx).
		Preload("Tournament").
		Preload("Predictions", func(db *gorm.DB) *gorm.DB {
			return db.Where("user_id = ?", userID)
		}).
		Where("date >= ?", since).
		Order("date ASC").
		Find(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list matches since %s: %w", since.Format(time.RFC3339), err)
	}
	return matches, nil
}

// ListScheduledBetween retrieves SCHEDULED matches dated in [from, to) with their
// tournament and every prediction preloaded.
func (r *MatchRepository) ListScheduledBetween(ctx context.Context, from, to time.Time) ([]models.Match, error) {
	var matches []models.Match
	err := r.db.WithContext(ctx).
		Preload("Tournament").
		Preload("Predictions").
		Where("status = ? AND date >= ? AND date < ?", models.MatchStatusScheduled, from, to).
		Order("date ASC, number ASC").
		Find(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled matches: %w", err)
	}
	return matches, nil
}

// PromoteDue moves every SCHEDULED match whose start time has passed to LIVE.
// It returns the number of matches promoted.
func (r *MatchRepository) PromoteDue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Match{}).
		Where("status = ? AND date <= ?", models.MatchStatusScheduled, now).
		Update("status", models.MatchStatusLive)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to promote due matches: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// SaveResult stores the published outcome and marks the match COMPLETED.
func (r *MatchRepository) SaveResult(ctx context.Context, id uint, tossWinner *string, matchWinner, result string) error {
	var resultText *string
	if result != "" {
		resultText = &result
	}
	res := r.db.WithContext(ctx).
		Model(&models.Match{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.MatchStatusCompleted,
			"toss_winner":  tossWinner,
			"match_winner": matchWinner,
			"result":       resultText,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to save result of match %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: match %d", domain.ErrNotFound, id)
	}
	return nil
}

// SetStatus overrides the status of a match, clears any published result and
// zeroes the points of its predictions, all in one transaction.
func (r *MatchRepository) SetStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Match{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":       status,
				"toss_winner":  nil,
				"match_winner": nil,
				"result":       nil,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to set status of match %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: match %d", domain.ErrNotFound, id)
		}
		err := tx.Model(&models.Prediction{}).
			Where("match_id = ? AND points <> 0", id).
			Update("points", 0).Error
		if err != nil {
			return fmt.Errorf("failed to reset points for match %d: %w", id, err)
		}
		return nil
	})
}

// Delete removes a match and its predictions.
func (r *MatchRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("match_id = ?", id).Delete(&models.Prediction{}).Error; err != nil {
			return fmt.Errorf("failed to delete predictions of match %d: %w", id, err)
		}
		res := tx.Delete(&models.Match{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete match %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: match %d", domain.ErrNotFound, id)
		}
		return nil
	})
}
