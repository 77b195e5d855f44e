// Package dashboard summarises the installation for administrators.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/aimd54/cricket-predictor/internal/cache"
	"github.com/aimd54/cricket-predictor/internal/models"
	"github.com/aimd54/cricket-predictor/internal/repository"
	"github.com/aimd54/cricket-predictor/pkg/logger"
)

const (
	overviewKey = "dashboard:overview"
	overviewTTL = 30 * time.Second
)

// MetricsRepository interface for dashboard counts.
type MetricsRepository interface {
	Overview(ctx context.Context) (*repository.Overview, error)
	MatchPickDistribution(ctx context.Context, matchID uint) ([]repository.PickCount, error)
	ChampionPickDistribution(ctx context.Context, tournamentID uint) ([]repository.PickCount, error)
}

// MatchRepository interface for match lookups.
type MatchRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Match, error)
}

// TournamentRepository interface for tournament lookups.
type TournamentRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Tournament, error)
}

// Cache interface for the overview snapshot.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// Overview is the dashboard snapshot with the instant it was computed.
type Overview struct {
	repository.Overview
	GeneratedAt time.Time `json:"generated_at"`
}

// Picks is the distribution of picks for one match or tournament.
type Picks struct {
	MatchID      *uint                  `json:"match_id,omitempty"`
	TournamentID *uint                  `json:"tournament_id,omitempty"`
	Total        int64                  `json:"total"`
	Picks        []repository.PickCount `json:"picks"`
}

// Service builds dashboard views.
type Service struct {
	metricsRepo    MetricsRepository
	matchRepo      MatchRepository
	tournamentRepo TournamentRepository
	cache          Cache
	clock          clockwork.Clock
	log            *logger.Logger
}

// NewService creates a new dashboard service with concrete dependencies.
// c may be nil, in which case every overview is computed.
func NewService(
	metricsRepo *repository.MetricsRepository,
	matchRepo *repository.MatchRepository,
	tournamentRepo *repository.TournamentRepository,
	c *cache.Cache,
	clock clockwork.Clock,
	log *logger.Logger,
) *Service {
	var snapshots Cache
	if c != nil {
		snapshots = c
	}
	return NewServiceWithInterfaces(metricsRepo, matchRepo, tournamentRepo, snapshots, clock, log)
}

// NewServiceWithInterfaces creates a new dashboard service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	metricsRepo MetricsRepository,
	matchRepo MatchRepository,
	tournamentRepo TournamentRepository,
	c Cache,
	clock clockwork.Clock,
	log *logger.Logger,
) *Service {
	return &Service{
		metricsRepo:    metricsRepo,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		cache:          c,
		clock:          clock,
		log:            log,
	}
}

// GetOverview returns the dashboard counts. Snapshots are shared through the
// cache for a short while; a cache failure falls back to the database.
func (s *Service) GetOverview(ctx context.Context) (*Overview, error) {
	if cached := s.cachedOverview(ctx); cached != nil {
		return cached, nil
	}

	counts, err := s.metricsRepo.Overview(ctx)
	if err != nil {
		return nil, err
	}
	overview := &Overview{Overview: *counts, GeneratedAt: s.clock.Now().UTC()}

	if s.cache != nil {
		data, err := json.Marshal(overview)
		if err == nil {
			err = s.cache.Set(ctx, overviewKey, data, overviewTTL)
		}
		if err != nil {
			s.log.Warn().Err(err).Msg("Failed to cache dashboard overview")
		}
	}

	return overview, nil
}

// MatchPicks returns how users picked a match.
func (s *Service) MatchPicks(ctx context.Context, matchID uint) (*Picks, error) {
	if _, err := s.matchRepo.GetByID(ctx, matchID); err != nil {
		return nil, err
	}
	counts, err := s.metricsRepo.MatchPickDistribution(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return newPicks(counts, &matchID, nil), nil
}

// ChampionPicks returns how users picked a tournament's champion.
func (s *Service) ChampionPicks(ctx context.Context, tournamentID uint) (*Picks, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, err
	}
	counts, err := s.metricsRepo.ChampionPickDistribution(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return newPicks(counts, nil, &tournamentID), nil
}

func (s *Service) cachedOverview(ctx context.Context) *Overview {
	if s.cache == nil {
		return nil
	}

	raw, err := s.cache.Get(ctx, overviewKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("Dashboard cache unavailable")
		return nil
	}
	if raw == "" {
		return nil
	}

	var overview Overview
	if err := json.Unmarshal([]byte(raw), &overview); err != nil {
		s.log.Warn().Err(fmt.Errorf("decode %s: %w", overviewKey, err)).Msg("Discarding cached dashboard overview")
		return nil
	}
	return &overview
}

func newPicks(counts []repository.PickCount, matchID, tournamentID *uint) *Picks {
	picks := &Picks{MatchID: matchID, TournamentID: tournamentID, Picks: counts}
	if picks.Picks == nil {
		picks.Picks = []repository.PickCount{}
	}
	for _, c := range counts {
		picks.Total += c.Count
	}
	return picks
}
