package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/aimd54/cricket-predictor/internal/domain"
	"github.com/aimd54/cricket-predictor/internal/models"
)

// RoomRepository handles room and membership database operations.
type RoomRepository struct {
	db *DB
}

// NewRoomRepository creates a new room repository.
func NewRoomRepository(db *DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create stores a room and enrols its admin as an approved member.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room.Members = nil
		if err := tx.Create(room).Error; err != nil {
			return translate(err, "room")
		}
		member := models.RoomMember{RoomID: room.ID, UserID: room.AdminID, IsApproved: true}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("failed to enrol room admin: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a room by ID.
func (r *RoomRepository) GetByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("room %d", id))
	}
	return &room, nil
}

// GetByInviteCode retrieves a room by its invite code.
func (r *RoomRepository) GetByInviteCode(ctx context.Context, code string) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&room).Error; err != nil {
		return nil, translate(err, "room invite code")
	}
	return &room, nil
}

// ListForUser retrieves the rooms a user belongs to, pending memberships included.
func (r *RoomRepository) ListForUser(ctx context.Context, userID uint) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).
		Joins("JOIN room_members ON room_members.room_id = rooms.id").
		Where("room_members.user_id = ?", userID).
		Order("rooms.name ASC").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms of user %d: %w", userID, err)
	}
	return rooms, nil
}

// AddMember enrols a user. Joining twice yields domain.ErrConflict.
func (r *RoomRepository) AddMember(ctx context.Context, member *models.RoomMember) error {
	return translate(r.db.WithContext(ctx).Create(member).Error, "room membership")
}

// GetMember retrieves the membership of a user in a room.
func (r *RoomRepository) GetMember(ctx context.Context, roomID, userID uint) (*models.RoomMember, error) {
	var member models.RoomMember
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		First(&member).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("member %d of room %d", userID, roomID))
	}
	return &member, nil
}

// ApproveMember approves a pending membership.
func (r *RoomRepository) ApproveMember(ctx context.Context, roomID, userID uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Update("is_approved", true)
	if res.Error != nil {
		return fmt.Errorf("failed to approve member %d of room %d: %w", userID, roomID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: member %d of room %d", domain.ErrNotFound, userID, roomID)
	}
	return nil
}

// RemoveMember deletes a membership, pending or approved.
func (r *RoomRepository) RemoveMember(ctx context.Context, roomID, userID uint) error {
	res := r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Delete(&models.RoomMember{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove member %d of room %d: %w", userID, roomID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: member %d of room %d", domain.ErrNotFound, userID, roomID)
	}
	return nil
}

// ListMembers retrieves the memberships of a room with their users.
func (r *RoomRepository) ListMembers(ctx context.Context, roomID uint) ([]models.RoomMember, error) {
	var members []models.RoomMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("room_id = ?", roomID).
		Order("id ASC").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list members of room %d: %w", roomID, err)
	}
	return members, nil
}
