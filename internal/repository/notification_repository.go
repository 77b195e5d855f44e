package repository

import (
	"context"
	"fmt"

	"github.com/aimd54/cricket-predictor/internal/domain"
	"github.com/aimd54/cricket-predictor/internal/models"
)

// NotificationRepository handles notification database operations.
type NotificationRepository struct {
	db *DB
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create stores a notification.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// CreateBatch stores several notifications in one statement.
func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&notifications).Error; err != nil {
		return fmt.Errorf("failed to create %d notifications: %w", len(notifications), err)
	}
	return nil
}

// GetByID retrieves a notification by ID.
func (r *NotificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("notification %d", id))
	}
	return &n, nil
}

// ListForUser retrieves a user's notifications, newest first.
func (r *NotificationRepository) ListForUser(ctx context.Context, userID uint, unreadOnly bool) ([]models.Notification, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC, id DESC").Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications of user %d: %w", userID, err)
	}
	return notifications, nil
}

// ListPendingRevotes retrieves the unresolved revote requests addressed to an admin.
func (r *NotificationRepository) ListPendingRevotes(ctx context.Context, adminID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND action = ? AND is_read = ?",
			adminID, models.NotificationTypeVoteRequest, models.ActionRevoteTournament, false).
		Order("created_at ASC, id ASC").
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending revotes of user %d: %w", adminID, err)
	}
	return notifications, nil
}

// MarkReadIfUnread flips is_read on an unread notification and reports whether it
// did. Concurrent callers race on the guard; exactly one sees true.
func (r *NotificationRepository) MarkReadIfUnread(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND is_read = ?", id, false).
		Update("is_read", true)
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark notification %d read: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// MarkRevoteSiblingsRead marks read every other unresolved copy of a revote request.
func (r *NotificationRepository) MarkRevoteSiblingsRead(ctx context.Context, requesterID, tournamentID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("type = ? AND action = ? AND requester_id = ? AND tournament_id = ? AND is_read = ?",
			models.NotificationTypeVoteRequest, models.ActionRevoteTournament, requesterID, tournamentID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to close revote requests: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// MarkRead marks one of the user's own notifications read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark notification %d read: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: notification %d", domain.ErrNotFound, id)
	}
	return nil
}

// HasPendingRevote reports whether the requester already has an unresolved
// revote request for the tournament.
func (r *NotificationRepository) HasPendingRevote(ctx context.Context, requesterID, tournamentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("type = ? AND action = ? AND requester_id = ? AND tournament_id = ? AND is_read = ?",
			models.NotificationTypeVoteRequest, models.ActionRevoteTournament, requesterID, tournamentID, false).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check pending revotes: %w", err)
	}
	return count > 0, nil
}
