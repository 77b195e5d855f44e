// Package window decides when match and tournament predictions lock.
package window

import (
	"time"

	"github.com/aimd54/cricket-predictor/internal/config"
	"github.com/aimd54/cricket-predictor/internal/models"
)

// Default lead times applied when configuration leaves them unset.
const (
	DefaultMatchLead      = 90 * time.Minute
	DefaultTournamentLead = 24 * time.Hour
)

// Policy holds the lead times before a start at which picks lock.
type Policy struct {
	MatchLead      time.Duration
	TournamentLead time.Duration
}

// NewPolicy builds a policy from configuration, falling back to the defaults.
func NewPolicy(cfg config.PredictionsConfig) Policy {
	p := Policy{MatchLead: cfg.MatchLeadTime, TournamentLead: cfg.TournamentLeadTime}
	if p.MatchLead == 0 {
		p.MatchLead = DefaultMatchLead
	}
	if p.TournamentLead == 0 {
		p.TournamentLead = DefaultTournamentLead
	}
	return p
}

// MatchLockTime returns the instant after which picks for match are refused.
func (p Policy) MatchLockTime(match *models.Match) time.Time {
	return MatchLockTime(match, p.MatchLead)
}

// TournamentLockTime returns the instant after which champion picks are refused.
// firstMatch may be nil when no fixture has been scheduled yet.
func (p Policy) TournamentLockTime(tournament *models.Tournament, firstMatch *models.Match) time.Time {
	return TournamentLockTime(tournament, firstMatch, p.TournamentLead)
}

// MatchLockTime is match.Date minus lead.
func MatchLockTime(match *models.Match, lead time.Duration) time.Time {
	return match.Date.Add(-lead)
}

// TournamentLockTime is the earliest match date, or the tournament start date when
// there are no matches, minus lead.
func TournamentLockTime(tournament *models.Tournament, firstMatch *models.Match, lead time.Duration) time.Time {
	start := tournament.StartDate
	if firstMatch != nil {
		start = firstMatch.Date
	}
	return start.Add(-lead)
}

// CanPredict reports whether now is at or before lockTime.
func CanPredict(now, lockTime time.Time) bool {
	return !now.After(lockTime)
}
