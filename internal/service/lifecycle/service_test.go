package lifecycle

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/cricket-predictor/internal/cache"
	"github.com/aimd54/cricket-predictor/internal/config"
	"github.com/aimd54/cricket-predictor/internal/domain"
	"github.com/aimd54/cricket-predictor/internal/models"
	"github.com/aimd54/cricket-predictor/internal/repository"
	"github.com/aimd54/cricket-predictor/internal/repository/repotest"
	"github.com/aimd54/cricket-predictor/pkg/logger"
	"github.com/aimd54/cricket-predictor/test/mocks"
)

var now = time.Date(2025, 4, 20, 14, 0, 0, 0, time.UTC)

// Mock repositories for testing
type mockMatchRepository struct {
	matches  map[uint]*models.Match
	sweeps   int
	sinceArg time.Time
}

func newMockMatchRepository(matches ...*models.Match) *mockMatchRepository {
	m := &mockMatchRepository{matches: make(map[uint]*models.Match)}
	for _, match := range matches {
		m.matches[match.ID] = match
	}
	return m
}

func (m *mockMatchRepository) GetByID(_ context.Context, id uint) (*models.Match, error) {
	match, ok := m.matches[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *match
	return &cp, nil
}

func (m *mockMatchRepository) PromoteDue(_ context.Context, at time.Time) (int64, error) {
	m.sweeps++
	var n int64
	for _, match := range m.matches {
		if match.Status == models.MatchStatusScheduled && !match.Date.After(at) {
			match.Status = models.MatchStatusLive
			n++
		}
	}
	return n, nil
}

func (m *mockMatchRepository) SetStatus(_ context.Context, id uint, status string) error {
	match, ok := m.matches[id]
	if !ok {
		return domain.ErrNotFound
	}
	match.Status = status
	match.MatchWinner = nil
	match.TossWinner = nil
	return nil
}

func (m *mockMatchRepository) ListSince(_ context.Context, since time.Time, _ uint) ([]models.Match, error) {
	m.sinceArg = since
	var out []models.Match
	for _, match := range m.matches {
		if !match.Date.Before(since) {
			out = append(out, *match)
		}
	}
	return out, nil
}

func TestAdvanceLifecycle(t *testing.T) {
	due := &models.Match{ID: 1, Date: now.Add(-time.Second), Status: models.MatchStatusScheduled}
	exact := &models.Match{ID: 2, Date: now, Status: models.MatchStatusScheduled}
	later := &models.Match{ID: 3, Date: now.Add(time.Minute), Status: models.MatchStatusScheduled}
	done := &models.Match{ID: 4, Date: now.Add(-time.Hour), Status: models.MatchStatusCompleted}
	repo := newMockMatchRepository(due, exact, later, done)

	svc := NewServiceWithInterfaces(repo, nil, 0, clockwork.NewFakeClockAt(now), logger.Nop())

	promoted, err := svc.AdvanceLifecycle(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, promoted)
	assert.Equal(t, models.MatchStatusLive, due.Status)
	assert.Equal(t, models.MatchStatusLive, exact.Status)
	assert.Equal(t, models.MatchStatusScheduled, later.Status)
	assert.Equal(t, models.MatchStatusCompleted, done.Status)

	promoted, err = svc.AdvanceLifecycle(t.Context())
	require.NoError(t, err)
	assert.Zero(t, promoted)
}

func TestAdvanceLifecycle_FollowsClock(t *testing.T) {
	later := &models.Match{ID: 1, Date: now.Add(time.Hour), Status: models.MatchStatusScheduled}
	repo := newMockMatchRepository(later)
	clock := clockwork.NewFakeClockAt(now)
	svc := NewServiceWithInterfaces(repo, nil, 0, clock, logger.Nop())

	promoted, err := svc.AdvanceLifecycle(t.Context())
	require.NoError(t, err)
	assert.Zero(t, promoted)

	clock.Advance(time.Hour)
	promoted, err = svc.AdvanceLifecycle(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, promoted)
}

func TestAdvanceLifecycle_Throttled(t *testing.T) {
	repo := newMockMatchRepository()
	clock := clockwork.NewFakeClockAt(now)
	svc := NewServiceWithInterfaces(repo, mocks.NewMockCache(clock), 30*time.Second, clock, logger.Nop())

	_, err := svc.AdvanceLifecycle(t.Context())
	require.NoError(t, err)
	_, err = svc.AdvanceLifecycle(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.sweeps)

	clock.Advance(30 * time.Second)
	_, err = svc.AdvanceLifecycle(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.sweeps)
}

func TestAdvanceLifecycle_ThrottleFailureStillSweeps(t *testing.T) {
	repo := newMockMatchRepository()
	clock := clockwork.NewFakeClockAt(now)
	throttle := mocks.NewMockCache(clock)
	throttle.Err = errors.New("connection refused")
	svc := NewServiceWithInterfaces(repo, throttle, 30*time.Second, clock, logger.Nop())

	_, err := svc.AdvanceLifecycle(t.Context())
	require.NoError(t, err)
	_, err = svc.AdvanceLifecycle(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.sweeps)
}

func TestOverrideStatus(t *testing.T) {
	winner := "MI"
	match := &models.Match{ID: 7, Date: now, Status: models.MatchStatusCompleted, MatchWinner: &winner}
	repo := newMockMatchRepository(match)
	svc := NewServiceWithInterfaces(repo, nil, 0, clockwork.NewFakeClockAt(now), logger.Nop())

	got, err := svc.OverrideStatus(t.Context(), 7, models.MatchStatusAbandoned)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusAbandoned, got.Status)
	assert.Nil(t, got.MatchWinner)

	_, err = svc.OverrideStatus(t.Context(), 7, models.MatchStatusCompleted)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = svc.OverrideStatus(t.Context(), 7, "POSTPONED")
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = svc.OverrideStatus(t.Context(), 99, models.MatchStatusLive)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestListUpcoming(t *testing.T) {
	due := &models.Match{ID: 1, Date: now.Add(-time.Hour), Status: models.MatchStatusScheduled}
	old := &models.Match{ID: 2, Date: now.Add(-48 * time.Hour), Status: models.MatchStatusCompleted}
	repo := newMockMatchRepository(due, old)
	svc := NewServiceWithInterfaces(repo, nil, 0, clockwork.NewFakeClockAt(now), logger.Nop())

	matches, err := svc.ListUpcoming(t.Context(), 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, models.MatchStatusLive, matches[0].Status)
	assert.Equal(t, now.Add(-24*time.Hour), repo.sinceArg)
}

func TestAdvanceLifecycle_WithDatabaseAndRedis(t *testing.T) {
	db := repotest.NewDB(t)
	tour := repotest.CreateTournament(t, db, &models.Tournament{Name: "IPL", StartDate: now, EndDate: now.AddDate(0, 1, 0)})
	first := repotest.CreateMatch(t, db, &models.Match{TournamentID: tour.ID, TeamA: "MI", TeamB: "CSK", Date: now.Add(-time.Minute)})
	second := repotest.CreateMatch(t, db, &models.Match{TournamentID: tour.ID, TeamA: "RCB", TeamB: "KKR", Date: now.Add(time.Minute)})

	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	c, err := cache.New(&config.RedisConfig{Host: mr.Host(), Port: port})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	clock := clockwork.NewFakeClockAt(now)
	matchRepo := repository.NewMatchRepository(db)
	svc := NewService(matchRepo, c, config.LifecycleConfig{SweepThrottle: 30 * time.Second}, clock, logger.Nop())

	promoted, err := svc.AdvanceLifecycle(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, promoted)

	// The second match is due now but the sweep is throttled until the key expires.
	clock.Advance(2 * time.Minute)
	promoted, err = svc.AdvanceLifecycle(t.Context())
	require.NoError(t, err)
	assert.Zero(t, promoted)

	mr.FastForward(31 * time.Second)
	promoted, err = svc.AdvanceLifecycle(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, promoted)

	for _, id := range []uint{first.ID, second.ID} {
		m, err := matchRepo.GetByID(t.Context(), id)
		require.NoError(t, err)
		assert.Equal(t, models.MatchStatusLive, m.Status)
	}
}
