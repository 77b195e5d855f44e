// Package scoring turns published results into prediction points.
package scoring

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/aimd54/cricket-predictor/internal/domain"
	"github.com/aimd54/cricket-predictor/internal/mattermost"
	"github.com/aimd54/cricket-predictor/internal/metrics"
	"github.com/aimd54/cricket-predictor/internal/models"
	"github.com/aimd54/cricket-predictor/internal/repository"
	"github.com/aimd54/cricket-predictor/internal/validation"
	"github.com/aimd54/cricket-predictor/pkg/logger"
)

// Announcer interface for result announcements.
type Announcer interface {
	SendMatchResult(result mattermost.MatchResult) error
	SendTournamentWinner(tournament, winner string, correctPicks int) error
}

// MatchResultInput is an administrator's published match result.
type MatchResultInput struct {
	MatchID     uint    `json:"match_id" validate:"required"`
	TossWinner  *string `json:"toss_winner" validate:"omitempty,min=1,max=255"`
	MatchWinner string  `json:"match_winner" validate:"required,max=255"`
	Result      string  `json:"result" validate:"max=2000"`
}

// TournamentWinnerInput is an administrator's published tournament champion.
type TournamentWinnerInput struct {
	TournamentID uint   `json:"tournament_id" validate:"required"`
	Winner       string `json:"winner" validate:"required,max=255"`
}

// Publication summarises a publish operation.
type Publication struct {
	Awards       []models.PointsAward `json:"awards"`
	TotalPoints  int                  `json:"total_points"`
	CorrectPicks int                  `json:"correct_picks"`
}

// Service publishes results and scores predictions.
type Service struct {
	db        *repository.DB
	announcer Announcer
	clock     clockwork.Clock
	log       *logger.Logger
}

// NewService creates a new scoring service. announcer may be nil.
func NewService(db *repository.DB, announcer Announcer, clock clockwork.Clock, log *logger.Logger) *Service {
	return &Service{
		db:        db,
		announcer: announcer,
		clock:     clock,
		log:       log,
	}
}

// PublishMatchResult stores the outcome of a match, marks it COMPLETED and sets
// the points of every prediction on it, all in one transaction.
func (s *Service) PublishMatchResult(ctx context.Context, in MatchResultInput) (*Publication, error) {
	in.MatchWinner = strings.TrimSpace(in.MatchWinner)
	in.Result = strings.TrimSpace(in.Result)
	if in.TossWinner != nil {
		toss := strings.TrimSpace(*in.TossWinner)
		in.TossWinner = &toss
		if toss == "" {
			in.TossWinner = nil
		}
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	start := s.clock.Now()
	outcome := Outcome{TossWinner: in.TossWinner, MatchWinner: in.MatchWinner}

	var (
		match *models.Match
		pub   Publication
	)
	err := s.db.Transaction(ctx, func(tx *repository.DB) error {
		matchRepo := repository.NewMatchRepository(tx)
		predictionRepo := repository.NewPredictionRepository(tx)

		var err error
		match, err = matchRepo.GetForUpdate(ctx, in.MatchID)
		if err != nil {
			return err
		}
		if !outcome.IsNoDecision() && !match.HasTeam(outcome.MatchWinner) {
			return fmt.Errorf("%w: match winner %q is neither %s nor %s", domain.ErrValidation, outcome.MatchWinner, match.TeamA, match.TeamB)
		}
		if outcome.TossWinner != nil && !match.HasTeam(*outcome.TossWinner) {
			return fmt.Errorf("%w: toss winner %q is neither %s nor %s", domain.ErrValidation, *outcome.TossWinner, match.TeamA, match.TeamB)
		}

		predictions, err := predictionRepo.ListByMatch(ctx, match.ID)
		if err != nil {
			return err
		}
		pub.Awards = ScoreMatch(outcome, predictions)

		if err := matchRepo.SaveResult(ctx, match.ID, outcome.TossWinner, outcome.MatchWinner, in.Result); err != nil {
			return err
		}
		return predictionRepo.ApplyAwards(ctx, pub.Awards)
	})
	if err != nil {
		return nil, err
	}

	pub.TotalPoints = Total(pub.Awards)
	for _, a := range pub.Awards {
		if a.Points > 0 {
			pub.CorrectPicks++
		}
	}

	metrics.RecordResultPublished(metrics.KindMatch, pub.TotalPoints)
	metrics.ObserveScoringDuration(metrics.KindMatch, s.clock.Since(start).Seconds())

	s.log.Info().
		Uint("match_id", match.ID).
		Str("match_winner", outcome.MatchWinner).
		Bool("no_decision", outcome.IsNoDecision()).
		Int("predictions", len(pub.Awards)).
		Int("points", pub.TotalPoints).
		Msg("Match result published")

	s.announceMatch(ctx, match, in, len(pub.Awards))

	return &pub, nil
}

// PublishTournamentWinner records the champion, locks the tournament and sets
// every champion pick to ChampionPoints or 0, all in one transaction.
func (s *Service) PublishTournamentWinner(ctx context.Context, in TournamentWinnerInput) (*Publication, error) {
	in.Winner = strings.TrimSpace(in.Winner)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	start := s.clock.Now()

	var (
		tournament *models.Tournament
		pub        Publication
	)
	err := s.db.Transaction(ctx, func(tx *repository.DB) error {
		tournamentRepo := repository.NewTournamentRepository(tx)
		predictionRepo := repository.NewPredictionRepository(tx)

		var err error
		tournament, err = tournamentRepo.GetByID(ctx, in.TournamentID)
		if err != nil {
			return err
		}
		if !tournament.HasTeam(in.Winner) {
			return fmt.Errorf("%w: %q is not in tournament %d", domain.ErrValidation, in.Winner, tournament.ID)
		}

		picks, err := predictionRepo.ListChampionPicks(ctx, tournament.ID)
		if err != nil {
			return err
		}
		pub.Awards = ScoreTournament(in.Winner, picks)

		if err := tournamentRepo.SetWinner(ctx, tournament.ID, in.Winner); err != nil {
			return err
		}
		return predictionRepo.ApplyAwards(ctx, pub.Awards)
	})
	if err != nil {
		return nil, err
	}

	pub.TotalPoints = Total(pub.Awards)
	pub.CorrectPicks = pub.TotalPoints / ChampionPoints

	metrics.RecordResultPublished(metrics.KindTournament, pub.TotalPoints)
	metrics.ObserveScoringDuration(metrics.KindTournament, s.clock.Since(start).Seconds())

	s.log.Info().
		Uint("tournament_id", tournament.ID).
		Str("winner", in.Winner).
		Int("correct_picks", pub.CorrectPicks).
		Msg("Tournament winner published")

	if s.announcer != nil {
		if err := s.announcer.SendTournamentWinner(tournament.Name, in.Winner, pub.CorrectPicks); err != nil {
			s.log.Warn().Err(err).Uint("tournament_id", tournament.ID).Msg("Failed to announce tournament winner")
		}
	}

	return &pub, nil
}

func (s *Service) announceMatch(ctx context.Context, match *models.Match, in MatchResultInput, scored int) {
	if s.announcer == nil {
		return
	}

	result := mattermost.MatchResult{
		Number:      match.Number,
		TeamA:       match.TeamA,
		TeamB:       match.TeamB,
		MatchWinner: in.MatchWinner,
		Summary:     in.Result,
		Scored:      scored,
	}
	if in.TossWinner != nil {
		result.TossWinner = *in.TossWinner
	}
	if tournament, err := repository.NewTournamentRepository(s.db).GetByID(ctx, match.TournamentID); err == nil {
		result.Tournament = tournament.Name
	}

	if err := s.announcer.SendMatchResult(result); err != nil {
		s.log.Warn().Err(err).Uint("match_id", match.ID).Msg("Failed to announce match result")
	}
}
