package tournaments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/cricket-predictor/internal/domain"
	"github.com/aimd54/cricket-predictor/internal/models"
	"github.com/aimd54/cricket-predictor/internal/repository"
	"github.com/aimd54/cricket-predictor/internal/repository/repotest"
	"github.com/aimd54/cricket-predictor/pkg/logger"
)

var start = time.Date(2026, 3, 20, 14, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *repository.DB) {
	t.Helper()
	db := repotest.NewDB(t)
	return NewService(repository.NewTournamentRepository(db), repository.NewMatchRepository(db), logger.Nop()), db
}

func iplInput() TournamentInput {
	return TournamentInput{
		Name:      " IPL 2026 ",
		Type:      models.TournamentTypeT20,
		StartDate: start,
		EndDate:   start.AddDate(0, 2, 0),
		Teams:     []string{"MI", "CSK", " MI ", "RCB"},
	}
}

func TestCreateTournament(t *testing.T) {
	svc, _ := newService(t)
	ctx := t.Context()

	tournament, err := svc.CreateTournament(ctx, iplInput())
	require.NoError(t, err)
	assert.Equal(t, "IPL 2026", tournament.Name)
	assert.Equal(t, models.TournamentFormatLeague, tournament.Format)

	got, err := svc.Get(ctx, tournament.ID)
	require.NoError(t, err)
	names := make([]string, 0, len(got.Teams))
	for _, team := range got.Teams {
		names = append(names, team.Name)
	}
	assert.Equal(t, []string{"CSK", "MI", "RCB"}, names)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreateTournament_Validation(t *testing.T) {
	svc, _ := newService(t)

	tests := []struct {
		name   string
		mutate func(*TournamentInput)
	}{
		{"missing name", func(in *TournamentInput) { in.Name = "  " }},
		{"unknown type", func(in *TournamentInput) { in.Type = "T10" }},
		{"unknown format", func(in *TournamentInput) { in.Format = "KNOCKOUT" }},
		{"ends before start", func(in *TournamentInput) { in.EndDate = start.Add(-time.Hour) }},
		{"one team", func(in *TournamentInput) { in.Teams = []string{"MI", "MI"} }},
		{"bilateral with three teams", func(in *TournamentInput) { in.Format = models.TournamentFormatBilateral }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := iplInput()
			tt.mutate(&in)
			_, err := svc.CreateTournament(t.Context(), in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestCreateMatch(t *testing.T) {
	svc, db := newService(t)
	ctx := t.Context()

	tournament, err := svc.CreateTournament(ctx, iplInput())
	require.NoError(t, err)

	later, err := svc.CreateMatch(ctx, tournament.ID, MatchInput{Number: 2, TeamA: "CSK", TeamB: "RCB", Date: start.Add(48 * time.Hour)})
	require.NoError(t, err)
	first, err := svc.CreateMatch(ctx, tournament.ID, MatchInput{Number: 1, TeamA: "MI", TeamB: "CSK", Date: start})
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusScheduled, first.Status)

	matches, err := svc.ListMatches(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, first.ID, matches[0].ID)
	assert.Equal(t, later.ID, matches[1].ID)

	_, err = svc.CreateMatch(ctx, tournament.ID, MatchInput{TeamA: "MI", TeamB: "MI", Date: start})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateMatch(ctx, tournament.ID, MatchInput{TeamA: "MI", TeamB: "India", Date: start})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateMatch(ctx, 999, MatchInput{TeamA: "MI", TeamB: "CSK", Date: start})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.ListMatches(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, repository.NewTournamentRepository(db).SetWinner(ctx, tournament.ID, "MI"))
	_, err = svc.CreateMatch(ctx, tournament.ID, MatchInput{TeamA: "MI", TeamB: "CSK", Date: start})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, svc.DeleteMatch(ctx, first.ID), domain.ErrConflict)
}

func TestDelete(t *testing.T) {
	svc, db := newService(t)
	ctx := t.Context()

	tournament, err := svc.CreateTournament(ctx, iplInput())
	require.NoError(t, err)
	match, err := svc.CreateMatch(ctx, tournament.ID, MatchInput{Number: 1, TeamA: "MI", TeamB: "CSK", Date: start})
	require.NoError(t, err)

	user := repotest.CreateUser(t, db, "alice", models.RoleUser)
	mid := match.ID
	repotest.CreatePrediction(t, db, &models.Prediction{UserID: user.ID, MatchID: &mid, MatchPick: "MI"})

	require.NoError(t, svc.DeleteMatch(ctx, match.ID))
	assert.ErrorIs(t, svc.DeleteMatch(ctx, match.ID), domain.ErrNotFound)

	_, err = repository.NewPredictionRepository(db).GetByUserAndMatch(ctx, user.ID, match.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, svc.DeleteTournament(ctx, tournament.ID))
	_, err = svc.Get(ctx, tournament.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
