package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/aimd54/cricket-predictor/internal/domain"
	"github.com/aimd54/cricket-predictor/internal/models"
)

// ScoreFilter narrows the predictions counted towards a user's total.
// MatchID wins over TournamentID when both are set.
type ScoreFilter struct {
	TournamentID *uint
	MatchID      *uint
}

// UserTotal is the summed points of one user.
type UserTotal struct {
	UserID uint
	Points int
}

// PredictionRepository handles prediction-related database operations.
type PredictionRepository struct {
	db *DB
}

// NewPredictionRepository creates a new prediction repository.
func NewPredictionRepository(db *DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// UpsertMatchPick creates the user's pick for a match or replaces its toss and
// match picks. Points are left untouched.
func (r *PredictionRepository) UpsertMatchPick(ctx context.Context, prediction *models.Prediction) error {
	if prediction.MatchID == nil || prediction.TournamentID != nil {
		return fmt.Errorf("%w: match pick must reference a match only", domain.ErrValidation)
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "match_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"toss_pick", "match_pick", "updated_at"}),
	}).Create(prediction).Error
	if err != nil {
		return fmt.Errorf("failed to save match prediction: %w", err)
	}
	return nil
}

// CreateChampionPick inserts a tournament winner pick. A second pick by the same
// user yields domain.ErrConflict.
func (r *PredictionRepository) CreateChampionPick(ctx context.Context, prediction *models.Prediction) error {
	if prediction.TournamentID == nil || prediction.MatchID != nil {
		return fmt.Errorf("%w: champion pick must reference a tournament only", domain.ErrValidation)
	}
	return translate(r.db.WithContext(ctx).Create(prediction).Error, "tournament prediction")
}

// GetByUserAndMatch retrieves a user's pick for a match.
func (r *PredictionRepository) GetByUserAndMatch(ctx context.Context, userID, matchID uint) (*models.Prediction, error) {
	var prediction models.Prediction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND match_id = ?", userID, matchID).
		First(&prediction).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("prediction of user %d for match %d", userID, matchID))
	}
	return &prediction, nil
}

// GetByUserAndTournament retrieves a user's champion pick for a tournament.
func (r *PredictionRepository) GetByUserAndTournament(ctx context.Context, userID, tournamentID uint) (*models.Prediction, error) {
	var prediction models.Prediction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND tournament_id = ?", userID, tournamentID).
		First(&prediction).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("prediction of user %d for tournament %d", userID, tournamentID))
	}
	return &prediction, nil
}

// ListByMatch retrieves every pick made for a match.
func (r *PredictionRepository) ListByMatch(ctx context.Context, matchID uint) ([]models.Prediction, error) {
	var predictions []models.Prediction
	if err := r.db.WithContext(ctx).Where("match_id = ?", matchID).Order("id ASC").Find(&predictions).Error; err != nil {
		return nil, fmt.Errorf("failed to list predictions for match %d: %w", matchID, err)
	}
	return predictions, nil
}

// ListChampionPicks retrieves every champion pick made for a tournament.
func (r *PredictionRepository) ListChampionPicks(ctx context.Context, tournamentID uint) ([]models.Prediction, error) {
	var predictions []models.Prediction
	if err := r.db.WithContext(ctx).Where("tournament_id = ?", tournamentID).Order("id ASC").Find(&predictions).Error; err != nil {
		return nil, fmt.Errorf("failed to list champion picks for tournament %d: %w", tournamentID, err)
	}
	return predictions, nil
}

// ListByUser retrieves a user's predictions, newest first, with match and tournament.
func (r *PredictionRepository) ListByUser(ctx context.Context, userID uint) ([]models.Prediction, error) {
	var predictions []models.Prediction
	err := r.db.WithContext(ctx).
		Preload("Match").
		Preload("Match.Tournament").
		Preload("Tournament").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&predictions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions of user %d: %w", userID, err)
	}
	return predictions, nil
}

// ApplyAwards sets the points of each listed prediction. Run it inside a
// transaction so a publish lands as a whole or not at all.
func (r *PredictionRepository) ApplyAwards(ctx context.Context, awards []models.PointsAward) error {
	db := r.db.WithContext(ctx)
	for _, award := range awards {
		err := db.Model(&models.Prediction{}).
			Where("id = ?", award.PredictionID).
			Update("points", award.Points).Error
		if err != nil {
			return fmt.Errorf("failed to award prediction %d: %w", award.PredictionID, err)
		}
	}
	return nil
}

// ResetMatchPoints zeroes the points of every pick for a match.
func (r *PredictionRepository) ResetMatchPoints(ctx context.Context, matchID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Prediction{}).
		Where("match_id = ?", matchID).
		Update("points", 0)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to reset points for match %d: %w", matchID, res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteChampionPick removes a user's champion pick so it can be made again.
func (r *PredictionRepository) DeleteChampionPick(ctx context.Context, userID, tournamentID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND tournament_id = ?", userID, tournamentID).
		Delete(&models.Prediction{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete champion pick: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: prediction of user %d for tournament %d", domain.ErrNotFound, userID, tournamentID)
	}
	return nil
}

// UserTotals sums points per user over the predictions selected by filter.
// Users without matching predictions are absent from the result.
func (r *PredictionRepository) UserTotals(ctx context.Context, filter ScoreFilter) ([]UserTotal, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Prediction{}).
		Select("predictions.user_id AS user_id, COALESCE(SUM(predictions.points), 0) AS points")

	switch {
	case filter.MatchID != nil:
		query = query.Where("predictions.match_id = ?", *filter.MatchID)
	case filter.TournamentID != nil:
		query = query.
			Joins("LEFT JOIN matches ON matches.id = predictions.match_id").
			Where("matches.tournament_id = ? OR predictions.tournament_id = ?", *filter.TournamentID, *filter.TournamentID)
	}

	var totals []UserTotal
	if err := query.Group("predictions.user_id").Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("failed to sum points: %w", err)
	}
	return totals, nil
}
