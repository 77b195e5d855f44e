package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aimd54/cricket-predictor/internal/domain"
	"github.com/aimd54/cricket-predictor/internal/models"
)

// PollRepository handles poll, option and vote database operations.
type PollRepository struct {
	db *DB
}

// NewPollRepository creates a new poll repository.
func NewPollRepository(db *DB) *PollRepository {
	return &PollRepository{db: db}
}

// Create stores a poll together with its options.
func (r *PollRepository) Create(ctx context.Context, poll *models.Poll) error {
	if err := r.db.WithContext(ctx).Create(poll).Error; err != nil {
		return fmt.Errorf("failed to create poll: %w", err)
	}
	return nil
}

// GetByID retrieves a poll with its options and their vote counts.
func (r *PollRepository) GetByID(ctx context.Context, id uint) (*models.Poll, error) {
	var poll models.Poll
	err := r.db.WithContext(ctx).
		Preload("Tournament").
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&poll, id).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("poll %d", id))
	}
	polls := []models.Poll{poll}
	if err := r.fillVotes(ctx, polls); err != nil {
		return nil, err
	}
	return &polls[0], nil
}

// List retrieves polls newest first with vote counts. activeOnly hides closed polls.
func (r *PollRepository) List(ctx context.Context, activeOnly bool) ([]models.Poll, error) {
	query := r.db.WithContext(ctx).
		Preload("Tournament").
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var polls []models.Poll
	if err := query.Order("created_at DESC, id DESC").Find(&polls).Error; err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	if err := r.fillVotes(ctx, polls); err != nil {
		return nil, err
	}
	return polls, nil
}

// SetActive opens or closes a poll.
func (r *PollRepository) SetActive(ctx context.Context, id uint, active bool) error {
	res := r.db.WithContext(ctx).Model(&models.Poll{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return fmt.Errorf("failed to update poll %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: poll %d", domain.ErrNotFound, id)
	}
	return nil
}

// Delete removes a poll with its options and votes.
func (r *PollRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("poll_id = ?", id).Delete(&models.PollVote{}).Error; err != nil {
			return fmt.Errorf("failed to delete votes of poll %d: %w", id, err)
		}
		if err := tx.Where("poll_id = ?", id).Delete(&models.PollOption{}).Error; err != nil {
			return fmt.Errorf("failed to delete options of poll %d: %w", id, err)
		}
		res := tx.Delete(&models.Poll{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete poll %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: poll %d", domain.ErrNotFound, id)
		}
		return nil
	})
}

// UpsertVote records the user's answer, replacing any earlier one.
func (r *PollRepository) UpsertVote(ctx context.Context, vote *models.PollVote) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "poll_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"option_id", "updated_at"}),
	}).Create(vote).Error
	if err != nil {
		return fmt.Errorf("failed to save poll vote: %w", err)
	}
	return nil
}

// GetVote retrieves a user's vote on a poll.
func (r *PollRepository) GetVote(ctx context.Context, pollID, userID uint) (*models.PollVote, error) {
	var vote models.PollVote
	err := r.db.WithContext(ctx).Where("poll_id = ? AND user_id = ?", pollID, userID).First(&vote).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("vote on poll %d", pollID))
	}
	return &vote, nil
}

func (r *PollRepository) fillVotes(ctx context.Context, polls []models.Poll) error {
	ids := make([]uint, 0, len(polls))
	for _, p := range polls {
		ids = append(ids, p.ID)
	}
	if len(ids) == 0 {
		return nil
	}

	var rows []struct {
		OptionID uint
		Votes    int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.PollVote{}).
		Select("option_id, COUNT(*) AS votes").
		Where("poll_id IN ?", ids).
		Group("option_id").
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to count poll votes: %w", err)
	}

	votes := make(map[uint]int64, len(rows))
	for _, row := range rows {
		votes[row.OptionID] = row.Votes
	}
	for i := range polls {
		for j := range polls[i].Options {
			polls[i].Options[j].Votes = votes[polls[i].Options[j].ID]
		}
	}
	return nil
}
