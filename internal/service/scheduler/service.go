// Package scheduler runs the periodic lifecycle sweep and the daily match digest.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"

	"github.com/aimd54/cricket-predictor/internal/config"
	"github.com/aimd54/cricket-predictor/internal/mattermost"
	prommetrics "github.com/aimd54/cricket-predictor/internal/metrics"
	"github.com/aimd54/cricket-predictor/internal/models"
	"github.com/aimd54/cricket-predictor/internal/service/window"
	"github.com/aimd54/cricket-predictor/pkg/logger"
)

// Job names used in logs and metrics.
const (
	JobSweep  = "sweep"
	JobDigest = "digest"
)

// digestHorizon is how far ahead the digest looks.
const digestHorizon = 24 * time.Hour

// Sweeper promotes due matches to LIVE.
type Sweeper interface {
	AdvanceLifecycle(ctx context.Context) (int, error)
}

// MatchRepository interface for the digest query.
type MatchRepository interface {
	ListScheduledBetween(ctx context.Context, from, to time.Time) ([]models.Match, error)
}

// Announcer interface for posting the digest.
type Announcer interface {
	SendDailyDigest(matches []mattermost.UpcomingMatch, loc *time.Location) error
}

// Service schedules background jobs.
type Service struct {
	config    config.SchedulerConfig
	sweeper   Sweeper
	matchRepo MatchRepository
	announcer Announcer
	policy    window.Policy
	clock     clockwork.Clock
	log       *logger.Logger
	cron      *cron.Cron
	location  *time.Location
}

// NewService creates a new scheduler service. announcer may be nil, in which case
// the digest job is not registered.
func NewService(
	cfg config.SchedulerConfig,
	sweeper Sweeper,
	matchRepo MatchRepository,
	announcer Announcer,
	policy window.Policy,
	clock clockwork.Clock,
	log *logger.Logger,
) *Service {
	return &Service{
		config:    cfg,
		sweeper:   sweeper,
		matchRepo: matchRepo,
		announcer: announcer,
		policy:    policy,
		clock:     clock,
		log:       log,
		location:  time.UTC,
	}
}

// Start registers the configured jobs and starts the cron scheduler.
func (s *Service) Start() error {
	if !s.config.Enabled {
		s.log.Info().Msg("Scheduler is disabled in configuration")
		return nil
	}

	if s.config.Timezone != "" {
		location, err := time.LoadLocation(s.config.Timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone %q: %w", s.config.Timezone, err)
		}
		s.location = location
	}

	s.cron = cron.New(cron.WithLocation(s.location))

	if s.config.SweepInterval > 0 {
		spec := "@every " + s.config.SweepInterval.String()
		if _, err := s.cron.AddFunc(spec, func() { s.RunSweep(context.Background()) }); err != nil {
			return fmt.Errorf("failed to register sweep job: %w", err)
		}
	}

	if s.config.DigestTime != "" && s.announcer != nil {
		spec, err := buildCronExpression(s.config.DigestTime)
		if err != nil {
			return fmt.Errorf("failed to build digest schedule: %w", err)
		}
		if _, err := s.cron.AddFunc(spec, func() { s.RunDigest(context.Background()) }); err != nil {
			return fmt.Errorf("failed to register digest job: %w", err)
		}
		s.log.Info().
			Str("schedule", spec).
			Str("timezone", s.location.String()).
			Msg("Digest job registered")
	}

	s.cron.Start()

	nextRun := ""
	if entries := s.cron.Entries(); len(entries) > 0 {
		nextRun = entries[0].Next.Format(time.RFC3339)
	}
	s.log.Info().
		Int("jobs", len(s.cron.Entries())).
		Str("next_run", nextRun).
		Msg("Scheduler started")

	return nil
}

// Stop waits for running jobs and shuts the scheduler down.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info().Msg("Scheduler stopped")
	}
}

// RunSweep promotes due matches without waiting for a request to trigger it.
func (s *Service) RunSweep(ctx context.Context) {
	promoted, err := s.sweeper.AdvanceLifecycle(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Scheduled sweep failed")
		prommetrics.RecordSchedulerJobRun(JobSweep, "error")
		return
	}
	prommetrics.RecordSchedulerJobRun(JobSweep, "success")
	s.log.Debug().Int("promoted", promoted).Msg("Scheduled sweep completed")
}

// RunDigest posts the matches starting within the next day.
func (s *Service) RunDigest(ctx context.Context) {
	start := s.clock.Now()

	matches, err := s.matchRepo.ListScheduledBetween(ctx, start, start.Add(digestHorizon))
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list upcoming matches")
		prommetrics.RecordSchedulerJobRun(JobDigest, "error")
		return
	}

	upcoming := s.buildUpcoming(matches)
	if err := s.announcer.SendDailyDigest(upcoming, s.location); err != nil {
		s.log.Error().Err(err).Int("matches", len(upcoming)).Msg("Failed to send daily digest")
		prommetrics.RecordSchedulerJobRun(JobDigest, "error")
		return
	}

	prommetrics.RecordSchedulerJobRun(JobDigest, "success")
	s.log.Info().
		Int("matches", len(upcoming)).
		Dur("duration", s.clock.Since(start)).
		Msg("Daily digest sent")
}

func (s *Service) buildUpcoming(matches []models.Match) []mattermost.UpcomingMatch {
	upcoming := make([]mattermost.UpcomingMatch, 0, len(matches))
	for i := range matches {
		m := &matches[i]
		tournament := ""
		if m.Tournament != nil {
			tournament = m.Tournament.Name
		}
		upcoming = append(upcoming, mattermost.UpcomingMatch{
			Tournament: tournament,
			TeamA:      m.TeamA,
			TeamB:      m.TeamB,
			StartsAt:   m.Date,
			LocksAt:    s.policy.MatchLockTime(m),
			Picks:      len(m.Predictions),
		})
	}
	return upcoming
}

// buildCronExpression turns "HH:MM" into a daily cron expression.
func buildCronExpression(at string) (string, error) {
	parts := strings.Split(at, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time format %q, expected HH:MM", at)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour %q", parts[0])
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute %q", parts[1])
	}

	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
