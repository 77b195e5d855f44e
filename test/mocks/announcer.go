package mocks

import (
	"sync"
	"time"

	"github.com/aimd54/cricket-predictor/internal/mattermost"
)

// MockAnnouncer records the Mattermost announcements it is asked to send.
type MockAnnouncer struct {
	mu sync.Mutex

	Results []mattermost.MatchResult
	Winners []string
	Digests [][]mattermost.UpcomingMatch

	// Err, when set, is returned by every send.
	Err error
}

// SendMatchResult records a result announcement.
func (m *MockAnnouncer) SendMatchResult(result mattermost.MatchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Results = append(m.Results, result)
	return m.Err
}

// SendTournamentWinner records a champion announcement.
func (m *MockAnnouncer) SendTournamentWinner(_, winner string, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Winners = append(m.Winners, winner)
	return m.Err
}

// SendDailyDigest records a digest.
func (m *MockAnnouncer) SendDailyDigest(matches []mattermost.UpcomingMatch, _ *time.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Digests = append(m.Digests, matches)
	return m.Err
}
