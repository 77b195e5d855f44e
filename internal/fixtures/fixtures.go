// Package fixtures loads users, tournaments and matches from YAML files.
package fixtures

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aimd54/cricket-predictor/internal/domain"
	"github.com/aimd54/cricket-predictor/internal/models"
	"github.com/aimd54/cricket-predictor/internal/service/tournaments"
	"github.com/aimd54/cricket-predictor/internal/service/users"
	"github.com/aimd54/cricket-predictor/pkg/logger"
)

// File is the top-level YAML document.
type File struct {
	Users       []User       `yaml:"users"`
	Tournaments []Tournament `yaml:"tournaments"`
}

// User is a seeded account.
type User struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Role     string `yaml:"role"`
	Approved bool   `yaml:"approved"`
}

// Tournament is a seeded tournament with its fixtures.
type Tournament struct {
	Name      string    `yaml:"name"`
	Type      string    `yaml:"type"`
	Format    string    `yaml:"format"`
	StartDate time.Time `yaml:"start_date"`
	EndDate   time.Time `yaml:"end_date"`
	Teams     []string  `yaml:"teams"`
	Matches   []Match   `yaml:"matches"`
}

// Match is a seeded fixture.
type Match struct {
	Number int       `yaml:"number"`
	TeamA  string    `yaml:"team_a"`
	TeamB  string    `yaml:"team_b"`
	Date   time.Time `yaml:"date"`
}

// UserService interface for seeding accounts.
type UserService interface {
	Register(ctx context.Context, in users.RegisterInput) (*models.User, error)
	Approve(ctx context.Context, id uint) error
	SetRole(ctx context.Context, actorID, id uint, role string) error
}

// TournamentService interface for seeding tournaments.
type TournamentService interface {
	CreateTournament(ctx context.Context, in tournaments.TournamentInput) (*models.Tournament, error)
	CreateMatch(ctx context.Context, tournamentID uint, in tournaments.MatchInput) (*models.Match, error)
}

// Summary counts what Apply created.
type Summary struct {
	Users        int
	SkippedUsers int
	Tournaments  int
	Matches      int
}

// LoadFile reads and parses a fixture file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a fixture document. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &f, nil
}

// Apply creates the fixture contents through the services, so the same
// validation as the API applies. Users that already exist are skipped.
func Apply(ctx context.Context, f *File, userSvc UserService, tournamentSvc TournamentService, log *logger.Logger) (*Summary, error) {
	var summary Summary

	for _, u := range f.Users {
		user, err := userSvc.Register(ctx, users.RegisterInput{Username: u.Username, Email: u.Email})
		if errors.Is(err, domain.ErrConflict) {
			log.Warn().Str("username", u.Username).Msg("User exists, skipping")
			summary.SkippedUsers++
			continue
		}
		if err != nil {
			return &summary, fmt.Errorf("user %s: %w", u.Username, err)
		}
		if u.Approved && !user.IsApproved {
			if err := userSvc.Approve(ctx, user.ID); err != nil {
				return &summary, fmt.Errorf("approve %s: %w", u.Username, err)
			}
		}
		if u.Role != "" && u.Role != user.Role {
			if err := userSvc.SetRole(ctx, 0, user.ID, u.Role); err != nil {
				return &summary, fmt.Errorf("role of %s: %w", u.Username, err)
			}
		}
		summary.Users++
	}

	for _, t := range f.Tournaments {
		tournament, err := tournamentSvc.CreateTournament(ctx, tournaments.TournamentInput{
			Name:      t.Name,
			Type:      t.Type,
			Format:    t.Format,
			StartDate: t.StartDate,
			EndDate:   t.EndDate,
			Teams:     t.Teams,
		})
		if err != nil {
			return &summary, fmt.Errorf("tournament %s: %w", t.Name, err)
		}
		summary.Tournaments++

		for _, m := range t.Matches {
			_, err := tournamentSvc.CreateMatch(ctx, tournament.ID, tournaments.MatchInput{
				Number: m.Number,
				TeamA:  m.TeamA,
				TeamB:  m.TeamB,
				Date:   m.Date,
			})
			if err != nil {
				return &summary, fmt.Errorf("tournament %s match %d: %w", t.Name, m.Number, err)
			}
			summary.Matches++
		}

		log.Info().
			Str("tournament", tournament.Name).
			Int("matches", len(t.Matches)).
			Msg("Tournament seeded")
	}

	return &summary, nil
}
