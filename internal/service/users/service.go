// Package users manages accounts, approval and roles.
package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/aimd54/cricket-predictor/internal/config"
	"github.com/aimd54/cricket-predictor/internal/domain"
	"github.com/aimd54/cricket-predictor/internal/models"
	"github.com/aimd54/cricket-predictor/internal/repository"
	"github.com/aimd54/cricket-predictor/internal/validation"
	"github.com/aimd54/cricket-predictor/pkg/logger"
)

// UserRepository interface for user operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, role string) ([]models.User, error)
	SetApproved(ctx context.Context, id uint, approved bool) error
	SetRole(ctx context.Context, id uint, role string) error
	Delete(ctx context.Context, id uint) error
}

// RegisterInput is a sign-up request.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=255"`
}

// Service handles user accounts.
type Service struct {
	userRepo  UserRepository
	bootstrap config.BootstrapConfig
	log       *logger.Logger
}

// NewService creates a new users service with concrete repository types.
func NewService(userRepo *repository.UserRepository, bootstrap config.BootstrapConfig, log *logger.Logger) *Service {
	return &Service{userRepo: userRepo, bootstrap: bootstrap, log: log}
}

// NewServiceWithInterfaces creates a new users service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(userRepo UserRepository, bootstrap config.BootstrapConfig, log *logger.Logger) *Service {
	return &Service{userRepo: userRepo, bootstrap: bootstrap, log: log}
}

// Register creates an account. Addresses on the bootstrap list become approved
// administrators; everyone else waits for approval.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user := &models.User{Username: in.Username, Email: in.Email, Role: models.RoleUser}
	if s.bootstrap.IsBootstrapAdmin(in.Email) {
		user.Role = models.RoleAdmin
		user.IsApproved = true
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("user_id", user.ID).
		Str("username", user.Username).
		Str("role", user.Role).
		Msg("User registered")

	return user, nil
}

// Get returns a user by ID.
func (s *Service) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetByEmail returns a user by email address.
func (s *Service) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// List returns users, optionally restricted to one role.
func (s *Service) List(ctx context.Context, role string) ([]models.User, error) {
	if role != "" && !models.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}
	return s.userRepo.List(ctx, role)
}

// Approve lets a registered user start predicting.
func (s *Service) Approve(ctx context.Context, id uint) error {
	if err := s.userRepo.SetApproved(ctx, id, true); err != nil {
		return err
	}
	s.log.Info().Uint("user_id", id).Msg("User approved")
	return nil
}

// SetRole changes a user's role. An administrator cannot change their own role.
func (s *Service) SetRole(ctx context.Context, actorID, id uint, role string) error {
	if !models.ValidRole(role) || role == models.RoleMasterAdmin {
		return fmt.Errorf("%w: role %q cannot be assigned", domain.ErrValidation, role)
	}
	if actorID == id {
		return fmt.Errorf("%w: administrators cannot change their own role", domain.ErrConflict)
	}
	if err := s.userRepo.SetRole(ctx, id, role); err != nil {
		return err
	}
	s.log.Info().Uint("user_id", id).Str("role", role).Msg("User role changed")
	return nil
}

// Delete removes a user with their predictions.
func (s *Service) Delete(ctx context.Context, actorID, id uint) error {
	if actorID == id {
		return fmt.Errorf("%w: administrators cannot delete themselves", domain.ErrConflict)
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Uint("user_id", id).Msg("User deleted")
	return nil
}
