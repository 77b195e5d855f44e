package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aimd54/cricket-predictor/internal/config"
	"github.com/aimd54/cricket-predictor/internal/models"
)

var kickoff = time.Date(2025, 4, 20, 14, 0, 0, 0, time.UTC)

func TestMatchLockTime(t *testing.T) {
	p := NewPolicy(config.PredictionsConfig{})
	match := &models.Match{Date: kickoff}

	lock := p.MatchLockTime(match)
	assert.Equal(t, kickoff.Add(-90*time.Minute), lock)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"two hours before", kickoff.Add(-2 * time.Hour), true},
		{"exactly at lock", lock, true},
		{"one second after lock", lock.Add(time.Second), false},
		{"one hour before", kickoff.Add(-time.Hour), false},
		{"after start", kickoff.Add(time.Minute), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanPredict(tt.now, lock))
		})
	}
}

func TestMatchLockTime_ConfiguredLead(t *testing.T) {
	p := NewPolicy(config.PredictionsConfig{MatchLeadTime: 150 * time.Minute})
	assert.Equal(t, kickoff.Add(-150*time.Minute), p.MatchLockTime(&models.Match{Date: kickoff}))
	assert.Equal(t, DefaultTournamentLead, p.TournamentLead)
}

func TestTournamentLockTime(t *testing.T) {
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	firstMatch := time.Date(2025, 5, 3, 10, 0, 0, 0, time.UTC)
	tournament := &models.Tournament{StartDate: start}
	p := NewPolicy(config.PredictionsConfig{})

	t.Run("uses first match date", func(t *testing.T) {
		lock := p.TournamentLockTime(tournament, &models.Match{Date: firstMatch})
		assert.Equal(t, time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC), lock)

		assert.True(t, CanPredict(time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC), lock))
		assert.False(t, CanPredict(time.Date(2025, 5, 2, 11, 0, 0, 0, time.UTC), lock))
	})

	t.Run("falls back to start date", func(t *testing.T) {
		lock := p.TournamentLockTime(tournament, nil)
		assert.Equal(t, time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), lock)
	})
}
