// Package polls runs community polls alongside the prediction game.
package polls

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aimd54/cricket-predictor/internal/domain"
	"github.com/aimd54/cricket-predictor/internal/models"
	"github.com/aimd54/cricket-predictor/internal/repository"
	"github.com/aimd54/cricket-predictor/internal/validation"
	"github.com/aimd54/cricket-predictor/pkg/logger"
)

// PollRepository interface for poll operations.
type PollRepository interface {
	Create(ctx context.Context, poll *models.Poll) error
	GetByID(ctx context.Context, id uint) (*models.Poll, error)
	List(ctx context.Context, activeOnly bool) ([]models.Poll, error)
	SetActive(ctx context.Context, id uint, active bool) error
	Delete(ctx context.Context, id uint) error
	UpsertVote(ctx context.Context, vote *models.PollVote) error
	GetVote(ctx context.Context, pollID, userID uint) (*models.PollVote, error)
}

// TournamentRepository interface for tournament lookups.
type TournamentRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Tournament, error)
}

// UserRepository interface for user lookups.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// PollInput is an administrator's new poll.
type PollInput struct {
	Question     string   `json:"question" validate:"required,max=500"`
	TournamentID *uint    `json:"tournament_id"`
	Options      []string `json:"options" validate:"required,min=2,max=10,dive,required,max=255"`
}

// PollView is a poll as seen by one user.
type PollView struct {
	*models.Poll
	MyOptionID *uint `json:"my_option_id"`
}

// Service handles polls.
type Service struct {
	pollRepo       PollRepository
	tournamentRepo TournamentRepository
	userRepo       UserRepository
	log            *logger.Logger
}

// NewService creates a new polls service with concrete repository types.
func NewService(
	pollRepo *repository.PollRepository,
	tournamentRepo *repository.TournamentRepository,
	userRepo *repository.UserRepository,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(pollRepo, tournamentRepo, userRepo, log)
}

// NewServiceWithInterfaces creates a new polls service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	pollRepo PollRepository,
	tournamentRepo TournamentRepository,
	userRepo UserRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		pollRepo:       pollRepo,
		tournamentRepo: tournamentRepo,
		userRepo:       userRepo,
		log:            log,
	}
}

// CreatePoll opens a poll. Options are trimmed and must be distinct.
func (s *Service) CreatePoll(ctx context.Context, in PollInput) (*models.Poll, error) {
	in.Question = strings.TrimSpace(in.Question)
	for i := range in.Options {
		in.Options[i] = strings.TrimSpace(in.Options[i])
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(in.Options))
	options := make([]models.PollOption, 0, len(in.Options))
	for _, text := range in.Options {
		key := strings.ToLower(text)
		if seen[key] {
			return nil, fmt.Errorf("%w: option %q is listed twice", domain.ErrValidation, text)
		}
		seen[key] = true
		options = append(options, models.PollOption{Text: text})
	}

	if in.TournamentID != nil {
		if _, err := s.tournamentRepo.GetByID(ctx, *in.TournamentID); err != nil {
			return nil, err
		}
	}

	poll := &models.Poll{
		Question:     in.Question,
		TournamentID: in.TournamentID,
		IsActive:     true,
		Options:      options,
	}
	if err := s.pollRepo.Create(ctx, poll); err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("poll_id", poll.ID).
		Int("options", len(options)).
		Msg("Poll created")

	return s.pollRepo.GetByID(ctx, poll.ID)
}

// ListPolls returns polls newest first. Players only see active polls.
func (s *Service) ListPolls(ctx context.Context, includeClosed bool) ([]models.Poll, error) {
	return s.pollRepo.List(ctx, !includeClosed)
}

// GetPoll returns a poll with its vote counts and the user's current answer.
func (s *Service) GetPoll(ctx context.Context, userID, pollID uint) (*PollView, error) {
	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	view := &PollView{Poll: poll}

	vote, err := s.pollRepo.GetVote(ctx, pollID, userID)
	switch {
	case err == nil:
		view.MyOptionID = &vote.OptionID
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}
	return view, nil
}

// Vote records the user's answer. Voting again changes the answer.
func (s *Service) Vote(ctx context.Context, userID, pollID, optionID uint) (*models.Poll, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsApproved {
		return nil, fmt.Errorf("%w: user %d is awaiting approval", domain.ErrUnauthorized, userID)
	}

	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if !poll.IsActive {
		return nil, fmt.Errorf("%w: poll %d is closed", domain.ErrConflict, pollID)
	}
	if !poll.HasOption(optionID) {
		return nil, fmt.Errorf("%w: option %d is not part of poll %d", domain.ErrValidation, optionID, pollID)
	}

	if err := s.pollRepo.UpsertVote(ctx, &models.PollVote{PollID: pollID, UserID: userID, OptionID: optionID}); err != nil {
		return nil, err
	}

	s.log.Debug().
		Uint("poll_id", pollID).
		Uint("user_id", userID).
		Uint("option_id", optionID).
		Msg("Poll vote saved")

	return s.pollRepo.GetByID(ctx, pollID)
}

// SetActive opens or closes a poll.
func (s *Service) SetActive(ctx context.Context, pollID uint, active bool) error {
	if err := s.pollRepo.SetActive(ctx, pollID, active); err != nil {
		return err
	}
	s.log.Info().Uint("poll_id", pollID).Bool("active", active).Msg("Poll status changed")
	return nil
}

// DeletePoll removes a poll and its votes.
func (s *Service) DeletePoll(ctx context.Context, pollID uint) error {
	if err := s.pollRepo.Delete(ctx, pollID); err != nil {
		return err
	}
	s.log.Info().Uint("poll_id", pollID).Msg("Poll deleted")
	return nil
}
