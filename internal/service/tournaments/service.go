// Package tournaments manages tournaments, their teams and fixtures.
package tournaments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aimd54/cricket-predictor/internal/domain"
	"github.com/aimd54/cricket-predictor/internal/models"
	"github.com/aimd54/cricket-predictor/internal/repository"
	"github.com/aimd54/cricket-predictor/internal/validation"
	"github.com/aimd54/cricket-predictor/pkg/logger"
)

// TournamentRepository interface for tournament operations.
type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament, teamNames []string) error
	GetByID(ctx context.Context, id uint) (*models.Tournament, error)
	List(ctx context.Context) ([]models.Tournament, error)
	Delete(ctx context.Context, id uint) error
}

// MatchRepository interface for match operations.
type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id uint) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID uint) ([]models.Match, error)
	Delete(ctx context.Context, id uint) error
}

// TournamentInput describes a new tournament.
type TournamentInput struct {
	Name      string    `json:"name" validate:"required,max=255"`
	Type      string    `json:"type" validate:"required,oneof=T20 ODI TEST"`
	Format    string    `json:"format" validate:"omitempty,oneof=LEAGUE BILATERAL"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
	Teams     []string  `json:"teams" validate:"required,min=2,dive,required,max=255"`
}

// MatchInput describes a new fixture.
type MatchInput struct {
	Number int       `json:"number" validate:"gte=0"`
	TeamA  string    `json:"team_a" validate:"required,max=255"`
	TeamB  string    `json:"team_b" validate:"required,max=255,nefield=TeamA"`
	Date   time.Time `json:"date" validate:"required"`
}

// Service handles tournament and fixture management.
type Service struct {
	tournamentRepo TournamentRepository
	matchRepo      MatchRepository
	log            *logger.Logger
}

// NewService creates a new tournaments service with concrete repository types.
func NewService(tournamentRepo *repository.TournamentRepository, matchRepo *repository.MatchRepository, log *logger.Logger) *Service {
	return &Service{tournamentRepo: tournamentRepo, matchRepo: matchRepo, log: log}
}

// NewServiceWithInterfaces creates a new tournaments service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(tournamentRepo TournamentRepository, matchRepo MatchRepository, log *logger.Logger) *Service {
	return &Service{tournamentRepo: tournamentRepo, matchRepo: matchRepo, log: log}
}

// CreateTournament stores a tournament and its teams. A bilateral series has
// exactly two teams.
func (s *Service) CreateTournament(ctx context.Context, in TournamentInput) (*models.Tournament, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Format == "" {
		in.Format = models.TournamentFormatLeague
	}
	teams := uniqueNames(in.Teams)
	in.Teams = teams
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.Format == models.TournamentFormatBilateral && len(teams) != 2 {
		return nil, fmt.Errorf("%w: a bilateral series has exactly two teams, got %d", domain.ErrValidation, len(teams))
	}

	tournament := &models.Tournament{
		Name:      in.Name,
		Type:      in.Type,
		Format:    in.Format,
		StartDate: in.StartDate.UTC(),
		EndDate:   in.EndDate.UTC(),
	}
	if err := s.tournamentRepo.Create(ctx, tournament, teams); err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("tournament_id", tournament.ID).
		Str("name", tournament.Name).
		Int("teams", len(teams)).
		Msg("Tournament created")

	return tournament, nil
}

// CreateMatch adds a fixture to a tournament. Both sides must be tournament
// teams and a tournament whose winner is published accepts no new fixtures.
func (s *Service) CreateMatch(ctx context.Context, tournamentID uint, in MatchInput) (*models.Match, error) {
	in.TeamA = strings.TrimSpace(in.TeamA)
	in.TeamB = strings.TrimSpace(in.TeamB)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Locked {
		return nil, fmt.Errorf("%w: tournament %d is locked", domain.ErrConflict, tournamentID)
	}
	for _, team := range []string{in.TeamA, in.TeamB} {
		if !tournament.HasTeam(team) {
			return nil, fmt.Errorf("%w: %s does not play in %s", domain.ErrValidation, team, tournament.Name)
		}
	}

	match := &models.Match{
		TournamentID: tournamentID,
		Number:       in.Number,
		TeamA:        in.TeamA,
		TeamB:        in.TeamB,
		Date:         in.Date.UTC(),
		Status:       models.MatchStatusScheduled,
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("tournament_id", tournamentID).
		Uint("match_id", match.ID).
		Str("team_a", match.TeamA).
		Str("team_b", match.TeamB).
		Time("date", match.Date).
		Msg("Match created")

	return match, nil
}

// Get returns a tournament with its teams.
func (s *Service) Get(ctx context.Context, id uint) (*models.Tournament, error) {
	return s.tournamentRepo.GetByID(ctx, id)
}

// List returns every tournament with teams and matches.
func (s *Service) List(ctx context.Context) ([]models.Tournament, error) {
	return s.tournamentRepo.List(ctx)
}

// ListMatches returns the fixtures of a tournament in schedule order.
func (s *Service) ListMatches(ctx context.Context, tournamentID uint) ([]models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, err
	}
	return s.matchRepo.ListByTournament(ctx, tournamentID)
}

// DeleteTournament removes a tournament with its fixtures and picks.
func (s *Service) DeleteTournament(ctx context.Context, id uint) error {
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Uint("tournament_id", id).Msg("Tournament deleted")
	return nil
}

// DeleteMatch removes a fixture with its picks. Fixtures of a locked tournament stay.
func (s *Service) DeleteMatch(ctx context.Context, id uint) error {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		return err
	}
	if tournament.Locked {
		return fmt.Errorf("%w: tournament %d is locked", domain.ErrConflict, tournament.ID)
	}
	if err := s.matchRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Uint("match_id", id).Msg("Match deleted")
	return nil
}

func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
