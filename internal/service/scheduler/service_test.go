package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/cricket-predictor/internal/config"
	prommetrics "github.com/aimd54/cricket-predictor/internal/metrics"
	"github.com/aimd54/cricket-predictor/internal/models"
	"github.com/aimd54/cricket-predictor/internal/repository"
	"github.com/aimd54/cricket-predictor/internal/repository/repotest"
	"github.com/aimd54/cricket-predictor/internal/service/window"
	"github.com/aimd54/cricket-predictor/pkg/logger"
	"github.com/aimd54/cricket-predictor/test/mocks"
)

var now = time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

type stubSweeper struct {
	runs int
	err  error
}

func (s *stubSweeper) AdvanceLifecycle(context.Context) (int, error) {
	s.runs++
	return 1, s.err
}

func TestBuildCronExpression(t *testing.T) {
	tests := []struct {
		name    string
		time    string
		want    string
		wantErr bool
	}{
		{name: "morning", time: "09:00", want: "0 9 * * *"},
		{name: "afternoon", time: "14:30", want: "30 14 * * *"},
		{name: "no colon", time: "0900", wantErr: true},
		{name: "invalid hour", time: "25:00", wantErr: true},
		{name: "invalid minute", time: "09:60", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildCronExpression(tt.time)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunDigest(t *testing.T) {
	db := repotest.NewDB(t)
	tour := repotest.CreateTournament(t, db, &models.Tournament{Name: "IPL 2026", StartDate: now, EndDate: now.AddDate(0, 1, 0)}, "MI", "CSK", "RCB", "KKR")
	first := repotest.CreateMatch(t, db, &models.Match{TournamentID: tour.ID, Number: 1, TeamA: "MI", TeamB: "CSK", Date: now.Add(5 * time.Hour)})
	repotest.CreateMatch(t, db, &models.Match{TournamentID: tour.ID, Number: 2, TeamA: "RCB", TeamB: "KKR", Date: now.Add(48 * time.Hour)})
	alice := repotest.CreateUser(t, db, "alice", models.RoleUser)
	repotest.CreatePrediction(t, db, &models.Prediction{UserID: alice.ID, MatchID: &first.ID, MatchPick: "MI"})

	announcer := &mocks.MockAnnouncer{}
	policy := window.NewPolicy(config.PredictionsConfig{})
	svc := NewService(config.SchedulerConfig{}, &stubSweeper{}, repository.NewMatchRepository(db), announcer, policy, clockwork.NewFakeClockAt(now), logger.Nop())

	svc.RunDigest(t.Context())

	require.Len(t, announcer.Digests, 1)
	digest := announcer.Digests[0]
	require.Len(t, digest, 1)
	assert.Equal(t, "IPL 2026", digest[0].Tournament)
	assert.Equal(t, "MI", digest[0].TeamA)
	assert.Equal(t, 1, digest[0].Picks)
	assert.Equal(t, first.Date.Add(-90*time.Minute), digest[0].LocksAt)
}

func TestRunDigest_SendFailure(t *testing.T) {
	db := repotest.NewDB(t)
	announcer := &mocks.MockAnnouncer{Err: errors.New("webhook down")}
	svc := NewService(config.SchedulerConfig{}, &stubSweeper{}, repository.NewMatchRepository(db), announcer, window.Policy{}, clockwork.NewFakeClockAt(now), logger.Nop())

	before := testutil.ToFloat64(prommetrics.SchedulerJobsRunTotal.WithLabelValues(JobDigest, "error"))
	svc.RunDigest(t.Context())
	after := testutil.ToFloat64(prommetrics.SchedulerJobsRunTotal.WithLabelValues(JobDigest, "error"))
	assert.Equal(t, before+1, after)
}

func TestRunSweep(t *testing.T) {
	sweeper := &stubSweeper{}
	svc := NewService(config.SchedulerConfig{}, sweeper, nil, nil, window.Policy{}, clockwork.NewFakeClockAt(now), logger.Nop())

	svc.RunSweep(t.Context())
	sweeper.err = errors.New("database down")
	svc.RunSweep(t.Context())

	assert.Equal(t, 2, sweeper.runs)
}

func TestStart(t *testing.T) {
	clock := clockwork.NewFakeClockAt(now)

	disabled := NewService(config.SchedulerConfig{}, &stubSweeper{}, nil, nil, window.Policy{}, clock, logger.Nop())
	require.NoError(t, disabled.Start())
	assert.Nil(t, disabled.cron)

	cfg := config.SchedulerConfig{Enabled: true, SweepInterval: time.Minute, DigestTime: "09:30", Timezone: "Asia/Kolkata"}
	svc := NewService(cfg, &stubSweeper{}, nil, &mocks.MockAnnouncer{}, window.Policy{}, clock, logger.Nop())
	require.NoError(t, svc.Start())
	t.Cleanup(svc.Stop)
	assert.Len(t, svc.cron.Entries(), 2)
	assert.Equal(t, "Asia/Kolkata", svc.location.String())

	// Without an announcer only the sweep runs.
	quiet := NewService(cfg, &stubSweeper{}, nil, nil, window.Policy{}, clock, logger.Nop())
	require.NoError(t, quiet.Start())
	t.Cleanup(quiet.Stop)
	assert.Len(t, quiet.cron.Entries(), 1)

	bad := NewService(config.SchedulerConfig{Enabled: true, Timezone: "Mars/Olympus"}, &stubSweeper{}, nil, nil, window.Policy{}, clock, logger.Nop())
	assert.Error(t, bad.Start())

	badTime := NewService(config.SchedulerConfig{Enabled: true, DigestTime: "9am"}, &stubSweeper{}, nil, &mocks.MockAnnouncer{}, window.Policy{}, clock, logger.Nop())
	assert.Error(t, badTime.Start())
}
