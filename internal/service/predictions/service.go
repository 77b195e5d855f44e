// Package predictions accepts match and champion picks inside their windows.
package predictions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/aimd54/cricket-predictor/internal/domain"
	"github.com/aimd54/cricket-predictor/internal/metrics"
	"github.com/aimd54/cricket-predictor/internal/models"
	"github.com/aimd54/cricket-predictor/internal/repository"
	"github.com/aimd54/cricket-predictor/internal/service/window"
	"github.com/aimd54/cricket-predictor/internal/validation"
	"github.com/aimd54/cricket-predictor/pkg/logger"
)

// UserRepository interface for user operations.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// MatchRepository interface for match operations.
type MatchRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Match, error)
}

// TournamentRepository interface for tournament operations.
type TournamentRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Tournament, error)
	FirstMatch(ctx context.Context, tournamentID uint) (*models.Match, error)
}

// PredictionRepository interface for prediction operations.
type PredictionRepository interface {
	UpsertMatchPick(ctx context.Context, prediction *models.Prediction) error
	CreateChampionPick(ctx context.Context, prediction *models.Prediction) error
	GetByUserAndMatch(ctx context.Context, userID, matchID uint) (*models.Prediction, error)
	GetByUserAndTournament(ctx context.Context, userID, tournamentID uint) (*models.Prediction, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Prediction, error)
}

// Sweeper advances match statuses before a pick is judged.
type Sweeper interface {
	AdvanceLifecycle(ctx context.Context) (int, error)
}

// MatchPickInput is a user's pick for one match.
type MatchPickInput struct {
	MatchID   uint    `json:"match_id" validate:"required"`
	TossPick  *string `json:"toss_pick" validate:"omitempty,min=1,max=255"`
	MatchPick string  `json:"match_pick" validate:"required,max=255"`
}

// ChampionPickInput is a user's pick for a tournament winner.
type ChampionPickInput struct {
	TournamentID uint   `json:"tournament_id" validate:"required"`
	TeamName     string `json:"team_name" validate:"required,max=255"`
}

// Service handles prediction submission.
type Service struct {
	userRepo       UserRepository
	matchRepo      MatchRepository
	tournamentRepo TournamentRepository
	predictionRepo PredictionRepository
	sweeper        Sweeper
	policy         window.Policy
	clock          clockwork.Clock
	log            *logger.Logger
}

// NewService creates a new predictions service with concrete repository types.
func NewService(
	userRepo *repository.UserRepository,
	matchRepo *repository.MatchRepository,
	tournamentRepo *repository.TournamentRepository,
	predictionRepo *repository.PredictionRepository,
	sweeper Sweeper,
	policy window.Policy,
	clock clockwork.Clock,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(userRepo, matchRepo, tournamentRepo, predictionRepo, sweeper, policy, clock, log)
}

// NewServiceWithInterfaces creates a new predictions service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	userRepo UserRepository,
	matchRepo MatchRepository,
	tournamentRepo TournamentRepository,
	predictionRepo PredictionRepository,
	sweeper Sweeper,
	policy window.Policy,
	clock clockwork.Clock,
	log *logger.Logger,
) *Service {
	return &Service{
		userRepo:       userRepo,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		predictionRepo: predictionRepo,
		sweeper:        sweeper,
		policy:         policy,
		clock:          clock,
		log:            log,
	}
}

// SubmitMatchPrediction creates or replaces the user's pick for a match while its
// window is open. Nothing is written when the window has closed.
func (s *Service) SubmitMatchPrediction(ctx context.Context, userID uint, in MatchPickInput) (*models.Prediction, error) {
	in.MatchPick = strings.TrimSpace(in.MatchPick)
	if in.TossPick != nil {
		toss := strings.TrimSpace(*in.TossPick)
		in.TossPick = &toss
		if toss == "" {
			in.TossPick = nil
		}
	}
	if err := validation.Struct(in); err != nil {
		return nil, s.reject(metrics.KindMatch, err)
	}

	if err := s.requireApproved(ctx, userID); err != nil {
		return nil, s.reject(metrics.KindMatch, err)
	}

	s.sweep(ctx)

	match, err := s.matchRepo.GetByID(ctx, in.MatchID)
	if err != nil {
		return nil, s.reject(metrics.KindMatch, err)
	}

	if !match.HasTeam(in.MatchPick) && in.MatchPick != models.OutcomeDraw {
		return nil, s.reject(metrics.KindMatch, fmt.Errorf("%w: %q is not playing in match %d", domain.ErrValidation, in.MatchPick, match.ID))
	}
	if in.TossPick != nil && !match.HasTeam(*in.TossPick) {
		return nil, s.reject(metrics.KindMatch, fmt.Errorf("%w: toss pick %q is not playing in match %d", domain.ErrValidation, *in.TossPick, match.ID))
	}

	now := s.clock.Now()
	lock := s.policy.MatchLockTime(match)
	if !match.IsOpen() || !window.CanPredict(now, lock) {
		return nil, s.reject(metrics.KindMatch, fmt.Errorf("%w: match %d locked at %s", domain.ErrWindowClosed, match.ID, lock.UTC().Format("2006-01-02 15:04 MST")))
	}

	prediction := &models.Prediction{
		UserID:    userID,
		MatchID:   &match.ID,
		TossPick:  in.TossPick,
		MatchPick: in.MatchPick,
	}
	if err := s.predictionRepo.UpsertMatchPick(ctx, prediction); err != nil {
		return nil, err
	}

	metrics.RecordPredictionSubmitted(metrics.KindMatch)
	s.log.Info().
		Uint("user_id", userID).
		Uint("match_id", match.ID).
		Str("match_pick", in.MatchPick).
		Msg("Match prediction saved")

	return s.predictionRepo.GetByUserAndMatch(ctx, userID, match.ID)
}

// SubmitTournamentPrediction records the user's champion pick. A pick can be made
// once; an existing pick is reported before the window is considered.
func (s *Service) SubmitTournamentPrediction(ctx context.Context, userID uint, in ChampionPickInput) (*models.Prediction, error) {
	in.TeamName = strings.TrimSpace(in.TeamName)
	if err := validation.Struct(in); err != nil {
		return nil, s.reject(metrics.KindTournament, err)
	}

	if err := s.requireApproved(ctx, userID); err != nil {
		return nil, s.reject(metrics.KindTournament, err)
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, in.TournamentID)
	if err != nil {
		return nil, s.reject(metrics.KindTournament, err)
	}

	existing, err := s.predictionRepo.GetByUserAndTournament(ctx, userID, tournament.ID)
	switch {
	case err == nil:
		return nil, s.reject(metrics.KindTournament, fmt.Errorf("%w: champion pick %q already made for tournament %d", domain.ErrAlreadyPredicted, existing.MatchPick, tournament.ID))
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	firstMatch, err := s.tournamentRepo.FirstMatch(ctx, tournament.ID)
	if err != nil {
		return nil, err
	}
	lock := s.policy.TournamentLockTime(tournament, firstMatch)
	if tournament.Locked || !window.CanPredict(s.clock.Now(), lock) {
		return nil, s.reject(metrics.KindTournament, fmt.Errorf("%w: tournament %d locked at %s", domain.ErrWindowClosed, tournament.ID, lock.UTC().Format("2006-01-02 15:04 MST")))
	}

	if !tournament.HasTeam(in.TeamName) {
		return nil, s.reject(metrics.KindTournament, fmt.Errorf("%w: %q is not in tournament %d", domain.ErrValidation, in.TeamName, tournament.ID))
	}

	prediction := &models.Prediction{
		UserID:       userID,
		TournamentID: &tournament.ID,
		MatchPick:    in.TeamName,
	}
	if err := s.predictionRepo.CreateChampionPick(ctx, prediction); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Lost a race with a concurrent submission.
			return nil, s.reject(metrics.KindTournament, fmt.Errorf("%w: tournament %d", domain.ErrAlreadyPredicted, tournament.ID))
		}
		return nil, err
	}

	metrics.RecordPredictionSubmitted(metrics.KindTournament)
	s.log.Info().
		Uint("user_id", userID).
		Uint("tournament_id", tournament.ID).
		Str("team", in.TeamName).
		Msg("Champion pick saved")

	return prediction, nil
}

// ListUserPredictions returns the user's predictions, newest first.
func (s *Service) ListUserPredictions(ctx context.Context, userID uint) ([]models.Prediction, error) {
	return s.predictionRepo.ListByUser(ctx, userID)
}

func (s *Service) requireApproved(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsApproved {
		return fmt.Errorf("%w: user %d is awaiting approval", domain.ErrUnauthorized, userID)
	}
	return nil
}

func (s *Service) sweep(ctx context.Context) {
	if s.sweeper == nil {
		return
	}
	if _, err := s.sweeper.AdvanceLifecycle(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Lifecycle sweep failed before prediction")
	}
}

func (s *Service) reject(kind string, err error) error {
	metrics.RecordPredictionRejected(kind, rejectionReason(err))
	return err
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrWindowClosed):
		return "window_closed"
	case errors.Is(err, domain.ErrAlreadyPredicted):
		return "already_predicted"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	default:
		return "error"
	}
}
