// Package rooms manages leaderboard rooms and their membership.
package rooms

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/aimd54/cricket-predictor/internal/domain"
	"github.com/aimd54/cricket-predictor/internal/models"
	"github.com/aimd54/cricket-predictor/internal/repository"
	"github.com/aimd54/cricket-predictor/internal/validation"
	"github.com/aimd54/cricket-predictor/pkg/logger"
)

// RoomRepository interface for room operations.
type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	GetByID(ctx context.Context, id uint) (*models.Room, error)
	GetByInviteCode(ctx context.Context, code string) (*models.Room, error)
	ListForUser(ctx context.Context, userID uint) ([]models.Room, error)
	AddMember(ctx context.Context, member *models.RoomMember) error
	GetMember(ctx context.Context, roomID, userID uint) (*models.RoomMember, error)
	ApproveMember(ctx context.Context, roomID, userID uint) error
	RemoveMember(ctx context.Context, roomID, userID uint) error
	ListMembers(ctx context.Context, roomID uint) ([]models.RoomMember, error)
}

// UserRepository interface for user operations.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// RoomInput describes a new room.
type RoomInput struct {
	Name string `json:"name" validate:"required,max=255"`
	Type string `json:"type" validate:"required,oneof=PUBLIC REQUEST PRIVATE"`
}

// Service handles rooms.
type Service struct {
	roomRepo RoomRepository
	userRepo UserRepository
	newCode  func() string
	log      *logger.Logger
}

// NewService creates a new rooms service with concrete repository types.
func NewService(roomRepo *repository.RoomRepository, userRepo *repository.UserRepository, log *logger.Logger) *Service {
	return NewServiceWithInterfaces(roomRepo, userRepo, log)
}

// NewServiceWithInterfaces creates a new rooms service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(roomRepo RoomRepository, userRepo UserRepository, log *logger.Logger) *Service {
	return &Service{roomRepo: roomRepo, userRepo: userRepo, newCode: uuid.NewString, log: log}
}

// CreateRoom creates a room administered by its creator, who joins it approved.
// Private rooms get an invite code.
func (s *Service) CreateRoom(ctx context.Context, creatorID uint, in RoomInput) (*models.Room, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.ToUpper(strings.TrimSpace(in.Type))
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, creatorID); err != nil {
		return nil, err
	}

	room := &models.Room{Name: in.Name, Type: in.Type, AdminID: creatorID}
	if in.Type == models.RoomTypePrivate {
		code := s.newCode()
		room.InviteCode = &code
	}
	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("room_id", room.ID).
		Uint("admin_id", creatorID).
		Str("type", room.Type).
		Msg("Room created")

	return room, nil
}

// JoinRoom enrols a user. Public rooms approve at once; request rooms leave the
// membership pending. Private rooms require the invite code and stay pending too.
func (s *Service) JoinRoom(ctx context.Context, userID, roomID uint, inviteCode string) (*models.RoomMember, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Type == models.RoomTypePrivate {
		if room.InviteCode == nil || strings.TrimSpace(inviteCode) != *room.InviteCode {
			return nil, fmt.Errorf("%w: invalid invite code for room %d", domain.ErrUnauthorized, roomID)
		}
	}
	return s.join(ctx, userID, room)
}

// JoinByInviteCode enrols a user in the private room the code belongs to.
func (s *Service) JoinByInviteCode(ctx context.Context, userID uint, inviteCode string) (*models.RoomMember, error) {
	room, err := s.roomRepo.GetByInviteCode(ctx, strings.TrimSpace(inviteCode))
	if err != nil {
		return nil, err
	}
	return s.join(ctx, userID, room)
}

func (s *Service) join(ctx context.Context, userID uint, room *models.Room) (*models.RoomMember, error) {
	member := &models.RoomMember{
		RoomID:     room.ID,
		UserID:     userID,
		IsApproved: room.Type == models.RoomTypePublic,
	}
	if err := s.roomRepo.AddMember(ctx, member); err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("room_id", room.ID).
		Uint("user_id", userID).
		Bool("approved", member.IsApproved).
		Msg("Room joined")

	return member, nil
}

// ApproveMember approves a pending membership. Only the room admin may do this.
func (s *Service) ApproveMember(ctx context.Context, actorID, roomID, userID uint) error {
	if _, err := s.requireRoomAdmin(ctx, actorID, roomID); err != nil {
		return err
	}
	if err := s.roomRepo.ApproveMember(ctx, roomID, userID); err != nil {
		return err
	}
	s.log.Info().Uint("room_id", roomID).Uint("user_id", userID).Msg("Room member approved")
	return nil
}

// RejectMember removes a membership, pending or approved. Only the room admin may
// do this and the admin cannot remove themselves.
func (s *Service) RejectMember(ctx context.Context, actorID, roomID, userID uint) error {
	room, err := s.requireRoomAdmin(ctx, actorID, roomID)
	if err != nil {
		return err
	}
	if userID == room.AdminID {
		return fmt.Errorf("%w: the room admin cannot be removed", domain.ErrConflict)
	}
	if err := s.roomRepo.RemoveMember(ctx, roomID, userID); err != nil {
		return err
	}
	s.log.Info().Uint("room_id", roomID).Uint("user_id", userID).Msg("Room member removed")
	return nil
}

// LeaveRoom removes the caller's own membership.
func (s *Service) LeaveRoom(ctx context.Context, userID, roomID uint) error {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return err
	}
	if userID == room.AdminID {
		return fmt.Errorf("%w: the room admin cannot leave the room", domain.ErrConflict)
	}
	return s.roomRepo.RemoveMember(ctx, roomID, userID)
}

// ListForUser returns the rooms a user belongs to, pending memberships included.
func (s *Service) ListForUser(ctx context.Context, userID uint) ([]models.Room, error) {
	return s.roomRepo.ListForUser(ctx, userID)
}

// ListMembers returns a room's memberships. Approved members see approved members;
// the room admin also sees pending requests.
func (s *Service) ListMembers(ctx context.Context, actorID, roomID uint) ([]models.RoomMember, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	isAdmin := room.AdminID == actorID
	if !isAdmin {
		member, err := s.roomRepo.GetMember(ctx, roomID, actorID)
		if err != nil || !member.IsApproved {
			return nil, fmt.Errorf("%w: not a member of room %d", domain.ErrUnauthorized, roomID)
		}
	}

	members, err := s.roomRepo.ListMembers(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if isAdmin {
		return members, nil
	}

	approved := members[:0]
	for _, m := range members {
		if m.IsApproved {
			approved = append(approved, m)
		}
	}
	return approved, nil
}

func (s *Service) requireRoomAdmin(ctx context.Context, actorID, roomID uint) (*models.Room, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.AdminID != actorID {
		return nil, fmt.Errorf("%w: only the room admin can manage members", domain.ErrUnauthorized)
	}
	return room, nil
}
