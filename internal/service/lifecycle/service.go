// Package lifecycle moves matches through their status lifecycle.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/aimd54/cricket-predictor/internal/cache"
	"github.com/aimd54/cricket-predictor/internal/config"
	"github.com/aimd54/cricket-predictor/internal/domain"
	"github.com/aimd54/cricket-predictor/internal/metrics"
	"github.com/aimd54/cricket-predictor/internal/models"
	"github.com/aimd54/cricket-predictor/internal/repository"
	"github.com/aimd54/cricket-predictor/pkg/logger"
)

// sweepKey guards the SCHEDULED to LIVE sweep across instances.
const sweepKey = "lifecycle:sweep"

// upcomingWindow is how far back ListUpcoming reaches, so matches that started
// today stay visible.
const upcomingWindow = 24 * time.Hour

// MatchRepository interface for match operations.
type MatchRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Match, error)
	PromoteDue(ctx context.Context, now time.Time) (int64, error)
	SetStatus(ctx context.Context, id uint, status string) error
	ListSince(ctx context.Context, since time.Time, userID uint) ([]models.Match, error)
}

// Throttle interface for the distributed sweep guard.
type Throttle interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
}

// Service advances match statuses.
type Service struct {
	matchRepo MatchRepository
	throttle  Throttle
	interval  time.Duration
	clock     clockwork.Clock
	log       *logger.Logger
}

// NewService creates a new lifecycle service with concrete dependencies.
// c may be nil, in which case every call sweeps.
func NewService(
	matchRepo *repository.MatchRepository,
	c *cache.Cache,
	cfg config.LifecycleConfig,
	clock clockwork.Clock,
	log *logger.Logger,
) *Service {
	var throttle Throttle
	if c != nil {
		throttle = c
	}
	return NewServiceWithInterfaces(matchRepo, throttle, cfg.SweepThrottle, clock, log)
}

// NewServiceWithInterfaces creates a new lifecycle service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	matchRepo MatchRepository,
	throttle Throttle,
	interval time.Duration,
	clock clockwork.Clock,
	log *logger.Logger,
) *Service {
	return &Service{
		matchRepo: matchRepo,
		throttle:  throttle,
		interval:  interval,
		clock:     clock,
		log:       log,
	}
}

// AdvanceLifecycle promotes every SCHEDULED match whose start time has passed to
// LIVE and returns how many were promoted. Running it twice is harmless.
func (s *Service) AdvanceLifecycle(ctx context.Context) (int, error) {
	now := s.clock.Now()

	if s.throttle != nil && s.interval > 0 {
		acquired, err := s.throttle.SetNX(ctx, sweepKey, now.Unix(), s.interval)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Msg("Sweep throttle unavailable, sweeping anyway")
		case !acquired:
			return 0, nil
		}
	}

	promoted, err := s.matchRepo.PromoteDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to advance match lifecycle: %w", err)
	}

	metrics.RecordLifecycleSweep(int(promoted))
	if promoted > 0 {
		s.log.Info().
			Int64("promoted", promoted).
			Time("now", now).
			Msg("Matches moved to LIVE")
	}

	return int(promoted), nil
}

// OverrideStatus lets an administrator move a match to SCHEDULED, LIVE or
// ABANDONED. Any published result is withdrawn and its points reset.
func (s *Service) OverrideStatus(ctx context.Context, matchID uint, status string) (*models.Match, error) {
	switch status {
	case models.MatchStatusScheduled, models.MatchStatusLive, models.MatchStatusAbandoned:
	case models.MatchStatusCompleted:
		return nil, fmt.Errorf("%w: publish a result to complete a match", domain.ErrValidation)
	default:
		return nil, fmt.Errorf("%w: unknown match status %q", domain.ErrValidation, status)
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if err := s.matchRepo.SetStatus(ctx, matchID, status); err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("match_id", matchID).
		Str("from", match.Status).
		Str("to", status).
		Msg("Match status overridden")

	return s.matchRepo.GetByID(ctx, matchID)
}

// ListUpcoming sweeps, then returns matches from the last day onwards with the
// user's own pick attached.
func (s *Service) ListUpcoming(ctx context.Context, userID uint) ([]models.Match, error) {
	if _, err := s.AdvanceLifecycle(ctx); err != nil {
		return nil, err
	}

	matches, err := s.matchRepo.ListSince(ctx, s.clock.Now().Add(-upcomingWindow), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming matches: %w", err)
	}
	return matches, nil
}
