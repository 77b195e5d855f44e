package scoring

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/cricket-predictor/internal/domain"
	"github.com/aimd54/cricket-predictor/internal/models"
	"github.com/aimd54/cricket-predictor/internal/repository"
	"github.com/aimd54/cricket-predictor/internal/repository/repotest"
	"github.com/aimd54/cricket-predictor/pkg/logger"
	"github.com/aimd54/cricket-predictor/test/mocks"
)

var matchDate = time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC)

type fixture struct {
	svc        *Service
	db         *repository.DB
	announcer  *mocks.MockAnnouncer
	tournament *models.Tournament
	match      *models.Match
	users      []*models.User
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db := repotest.NewDB(t)
	announcer := &mocks.MockAnnouncer{}
	tournament := repotest.CreateTournament(t, db, &models.Tournament{
		Name:      "IPL 2026",
		StartDate: matchDate.Add(-24 * time.Hour),
		EndDate:   matchDate.AddDate(0, 1, 0),
	}, "MI", "CSK", "India")
	match := repotest.CreateMatch(t, db, &models.Match{TournamentID: tournament.ID, Number: 7, TeamA: "MI", TeamB: "CSK", Date: matchDate})

	f := &fixture{
		svc:        NewService(db, announcer, clockwork.NewFakeClockAt(matchDate.Add(4*time.Hour)), logger.Nop()),
		db:         db,
		announcer:  announcer,
		tournament: tournament,
		match:      match,
	}
	for _, name := range []string{"alice", "bob", "carol"} {
		f.users = append(f.users, repotest.CreateUser(t, db, name, models.RoleUser))
	}
	return f
}

func (f *fixture) pick(t *testing.T, user *models.User, toss *string, pick string) *models.Prediction {
	t.Helper()
	return repotest.CreatePrediction(t, f.db, &models.Prediction{UserID: user.ID, MatchID: &f.match.ID, TossPick: toss, MatchPick: pick})
}

func (f *fixture) points(t *testing.T, id uint) int {
	t.Helper()
	var p models.Prediction
	require.NoError(t, f.db.First(&p, id).Error)
	return p.Points
}

func TestPublishMatchResult(t *testing.T) {
	f := setup(t)
	both := f.pick(t, f.users[0], strPtr("MI"), "CSK")
	tossOnly := f.pick(t, f.users[1], strPtr("MI"), "MI")
	neither := f.pick(t, f.users[2], strPtr("CSK"), "MI")

	in := MatchResultInput{MatchID: f.match.ID, TossWinner: strPtr("MI"), MatchWinner: "CSK", Result: "CSK won by 6 wickets"}
	pub, err := f.svc.PublishMatchResult(t.Context(), in)
	require.NoError(t, err)
	assert.Equal(t, 40, pub.TotalPoints)
	assert.Equal(t, 2, pub.CorrectPicks)

	assert.Equal(t, 30, f.points(t, both.ID))
	assert.Equal(t, 10, f.points(t, tossOnly.ID))
	assert.Equal(t, 0, f.points(t, neither.ID))

	match, err := repository.NewMatchRepository(f.db).GetByID(t.Context(), f.match.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, match.Status)
	assert.Equal(t, "CSK", *match.MatchWinner)
	assert.Equal(t, "CSK won by 6 wickets", *match.Result)

	require.Len(t, f.announcer.Results, 1)
	assert.Equal(t, "IPL 2026", f.announcer.Results[0].Tournament)
	assert.Equal(t, 3, f.announcer.Results[0].Scored)

	// Publishing again with the same outcome leaves points unchanged.
	_, err = f.svc.PublishMatchResult(t.Context(), in)
	require.NoError(t, err)
	assert.Equal(t, 30, f.points(t, both.ID))
	assert.Equal(t, 10, f.points(t, tossOnly.ID))
	assert.Equal(t, 0, f.points(t, neither.ID))
}

func TestPublishMatchResult_Correction(t *testing.T) {
	f := setup(t)
	p := f.pick(t, f.users[0], strPtr("MI"), "CSK")

	_, err := f.svc.PublishMatchResult(t.Context(), MatchResultInput{MatchID: f.match.ID, TossWinner: strPtr("MI"), MatchWinner: "CSK"})
	require.NoError(t, err)
	assert.Equal(t, 30, f.points(t, p.ID))

	_, err = f.svc.PublishMatchResult(t.Context(), MatchResultInput{MatchID: f.match.ID, TossWinner: strPtr("CSK"), MatchWinner: "MI"})
	require.NoError(t, err)
	assert.Equal(t, 0, f.points(t, p.ID))
}

func TestPublishMatchResult_NoDecisionIsFlat(t *testing.T) {
	for _, sentinel := range []string{models.OutcomeDraw, models.OutcomeTie, models.OutcomeAbandoned, models.OutcomeNoResult} {
		t.Run(sentinel, func(t *testing.T) {
			f := setup(t)
			picks := []*models.Prediction{
				f.pick(t, f.users[0], strPtr("MI"), "MI"),
				f.pick(t, f.users[1], nil, models.OutcomeDraw),
				f.pick(t, f.users[2], strPtr("CSK"), "CSK"),
			}

			_, err := f.svc.PublishMatchResult(t.Context(), MatchResultInput{MatchID: f.match.ID, TossWinner: strPtr("MI"), MatchWinner: sentinel})
			require.NoError(t, err)
			for _, p := range picks {
				assert.Equal(t, NoDecisionPoints, f.points(t, p.ID))
			}
		})
	}
}

func TestPublishMatchResult_RejectsWithoutChanges(t *testing.T) {
	f := setup(t)
	p := f.pick(t, f.users[0], strPtr("MI"), "CSK")

	tests := []struct {
		name string
		in   MatchResultInput
		want error
	}{
		{"missing winner", MatchResultInput{MatchID: f.match.ID, TossWinner: strPtr("MI")}, domain.ErrValidation},
		{"winner not playing", MatchResultInput{MatchID: f.match.ID, MatchWinner: "RCB"}, domain.ErrValidation},
		{"toss winner not playing", MatchResultInput{MatchID: f.match.ID, TossWinner: strPtr("DRAW"), MatchWinner: "CSK"}, domain.ErrValidation},
		{"unknown match", MatchResultInput{MatchID: 404, MatchWinner: "CSK"}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.PublishMatchResult(t.Context(), tt.in)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	assert.Equal(t, 0, f.points(t, p.ID))
	match, err := repository.NewMatchRepository(f.db).GetByID(t.Context(), f.match.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusScheduled, match.Status)
	assert.Nil(t, match.MatchWinner)
	assert.Empty(t, f.announcer.Results)
}

func TestPublishMatchResult_AnnouncerFailureIsIgnored(t *testing.T) {
	f := setup(t)
	f.announcer.Err = errors.New("webhook down")

	_, err := f.svc.PublishMatchResult(t.Context(), MatchResultInput{MatchID: f.match.ID, MatchWinner: "MI"})
	assert.NoError(t, err)
}

func TestPublishTournamentWinner(t *testing.T) {
	f := setup(t)
	champion := func(user *models.User, team string) *models.Prediction {
		return repotest.CreatePrediction(t, f.db, &models.Prediction{UserID: user.ID, TournamentID: &f.tournament.ID, MatchPick: team})
	}
	right := champion(f.users[0], "India")
	wrong := champion(f.users[1], "MI")
	alsoRight := champion(f.users[2], "India")

	in := TournamentWinnerInput{TournamentID: f.tournament.ID, Winner: "India"}
	pub, err := f.svc.PublishTournamentWinner(t.Context(), in)
	require.NoError(t, err)
	assert.Equal(t, 2, pub.CorrectPicks)

	assert.Equal(t, 100, f.points(t, right.ID))
	assert.Equal(t, 0, f.points(t, wrong.ID))
	assert.Equal(t, 100, f.points(t, alsoRight.ID))

	tournament, err := repository.NewTournamentRepository(f.db).GetByID(t.Context(), f.tournament.ID)
	require.NoError(t, err)
	assert.True(t, tournament.Locked)
	assert.Equal(t, "India", *tournament.Winner)
	assert.Equal(t, []string{"India"}, f.announcer.Winners)

	// Re-publishing sets rather than adds.
	_, err = f.svc.PublishTournamentWinner(t.Context(), in)
	require.NoError(t, err)
	assert.Equal(t, 100, f.points(t, right.ID))

	// A corrected winner moves the bonus.
	_, err = f.svc.PublishTournamentWinner(t.Context(), TournamentWinnerInput{TournamentID: f.tournament.ID, Winner: "MI"})
	require.NoError(t, err)
	assert.Equal(t, 0, f.points(t, right.ID))
	assert.Equal(t, 100, f.points(t, wrong.ID))
}

func TestPublishTournamentWinner_Errors(t *testing.T) {
	f := setup(t)

	_, err := f.svc.PublishTournamentWinner(t.Context(), TournamentWinnerInput{TournamentID: 404, Winner: "India"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = f.svc.PublishTournamentWinner(t.Context(), TournamentWinnerInput{TournamentID: f.tournament.ID, Winner: "Narnia"})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = f.svc.PublishTournamentWinner(t.Context(), TournamentWinnerInput{TournamentID: f.tournament.ID})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	tournament, err := repository.NewTournamentRepository(f.db).GetByID(t.Context(), f.tournament.ID)
	require.NoError(t, err)
	assert.False(t, tournament.Locked)
}
