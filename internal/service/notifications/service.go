// Package notifications delivers in-app messages to users.
package notifications

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aimd54/cricket-predictor/internal/domain"
	"github.com/aimd54/cricket-predictor/internal/models"
	"github.com/aimd54/cricket-predictor/internal/repository"
	"github.com/aimd54/cricket-predictor/internal/validation"
	"github.com/aimd54/cricket-predictor/pkg/logger"
)

// NotificationRepository interface for notification operations.
type NotificationRepository interface {
	CreateBatch(ctx context.Context, notifications []*models.Notification) error
	ListForUser(ctx context.Context, userID uint, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID uint) error
}

// UserRepository interface for user operations.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	List(ctx context.Context, role string) ([]models.User, error)
}

// RoomRepository interface for room operations.
type RoomRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Room, error)
	ListMembers(ctx context.Context, roomID uint) ([]models.RoomMember, error)
}

// Broadcast targets. Room and user targets carry an ID suffix: "ROOM:12", "USER:7".
const (
	TargetAll        = "ALL"
	targetRoomPrefix = "ROOM:"
	targetUserPrefix = "USER:"
)

// BroadcastInput is an administrator's message to a set of users.
type BroadcastInput struct {
	Target  string `json:"target" validate:"required"`
	Title   string `json:"title" validate:"required,max=255"`
	Message string `json:"message" validate:"required"`
}

// Service handles notifications.
type Service struct {
	notificationRepo NotificationRepository
	userRepo         UserRepository
	roomRepo         RoomRepository
	log              *logger.Logger
}

// NewService creates a new notifications service with concrete repository types.
func NewService(
	notificationRepo *repository.NotificationRepository,
	userRepo *repository.UserRepository,
	roomRepo *repository.RoomRepository,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(notificationRepo, userRepo, roomRepo, log)
}

// NewServiceWithInterfaces creates a new notifications service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	notificationRepo NotificationRepository,
	userRepo UserRepository,
	roomRepo RoomRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		roomRepo:         roomRepo,
		log:              log,
	}
}

// ListForUser returns a user's notifications, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uint, unreadOnly bool) ([]models.Notification, error) {
	return s.notificationRepo.ListForUser(ctx, userID, unreadOnly)
}

// MarkRead marks one of the user's own notifications read.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID uint) error {
	return s.notificationRepo.MarkRead(ctx, notificationID, userID)
}

// Broadcast sends an INFO notification to every approved user, to the approved
// members of a room, or to a single user. It returns the number of recipients.
func (s *Service) Broadcast(ctx context.Context, in BroadcastInput) (int, error) {
	in.Target = strings.ToUpper(strings.TrimSpace(in.Target))
	in.Title = strings.TrimSpace(in.Title)
	in.Message = strings.TrimSpace(in.Message)
	if err := validation.Struct(in); err != nil {
		return 0, err
	}

	recipients, err := s.recipients(ctx, in.Target)
	if err != nil {
		return 0, err
	}

	batch := make([]*models.Notification, 0, len(recipients))
	for _, id := range recipients {
		batch = append(batch, &models.Notification{
			UserID:  id,
			Type:    models.NotificationTypeInfo,
			Title:   in.Title,
			Message: in.Message,
		})
	}
	if err := s.notificationRepo.CreateBatch(ctx, batch); err != nil {
		return 0, err
	}

	s.log.Info().
		Str("target", in.Target).
		Int("recipients", len(batch)).
		Msg("Notification broadcast")

	return len(batch), nil
}

func (s *Service) recipients(ctx context.Context, target string) ([]uint, error) {
	switch {
	case target == TargetAll:
		users, err := s.userRepo.List(ctx, "")
		if err != nil {
			return nil, err
		}
		ids := make([]uint, 0, len(users))
		for _, u := range users {
			if u.IsApproved {
				ids = append(ids, u.ID)
			}
		}
		return ids, nil

	case strings.HasPrefix(target, targetRoomPrefix):
		id, err := parseTargetID(target, targetRoomPrefix)
		if err != nil {
			return nil, err
		}
		if _, err := s.roomRepo.GetByID(ctx, id); err != nil {
			return nil, err
		}
		members, err := s.roomRepo.ListMembers(ctx, id)
		if err != nil {
			return nil, err
		}
		ids := make([]uint, 0, len(members))
		for _, m := range members {
			if m.IsApproved {
				ids = append(ids, m.UserID)
			}
		}
		return ids, nil

	case strings.HasPrefix(target, targetUserPrefix):
		id, err := parseTargetID(target, targetUserPrefix)
		if err != nil {
			return nil, err
		}
		if _, err := s.userRepo.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return []uint{id}, nil
	}

	return nil, fmt.Errorf("%w: unknown target %q", domain.ErrValidation, target)
}

func parseTargetID(target, prefix string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(target, prefix), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid target %q", domain.ErrValidation, target)
	}
	return uint(id), nil
}
