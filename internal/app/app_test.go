//nolint:noctx // Test file uses httptest.NewRequest for simplicity
package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/cricket-predictor/internal/api/handler"
	"github.com/aimd54/cricket-predictor/internal/config"
	"github.com/aimd54/cricket-predictor/internal/models"
	"github.com/aimd54/cricket-predictor/internal/repository"
	"github.com/aimd54/cricket-predictor/internal/repository/repotest"
	"github.com/aimd54/cricket-predictor/pkg/logger"
)

type client struct {
	t      *testing.T
	router *gin.Engine
}

func (c *client) do(method, path, token string, body any) (int, map[string]any) {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func (c *client) register(auth *handler.Authenticator, username string) (uint, string) {
	c.t.Helper()

	identity, err := auth.IssueIdentity(username + "@example.com")
	require.NoError(c.t, err)
	status, body := c.do(http.MethodPost, "/api/v1/auth/register", identity, map[string]any{"username": username})
	require.Equal(c.t, http.StatusCreated, status, body)

	user := body["user"].(map[string]any)
	return uint(user["id"].(float64)), body["token"].(string)
}

func TestPredictionRound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	now := time.Date(2026, 4, 10, 10, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)
	cfg := &config.Config{
		Auth:        config.AuthConfig{JWTSecret: "secret", Issuer: "cricket-predictor", TokenTTL: 7 * 24 * time.Hour},
		Predictions: config.PredictionsConfig{MatchLeadTime: 90 * time.Minute, TournamentLeadTime: 24 * time.Hour},
		Bootstrap:   config.BootstrapConfig{AdminEmails: []string{"root@example.com"}},
		Metrics:     config.MetricsConfig{Prometheus: config.PrometheusConfig{Enabled: true, Path: "/metrics"}},
	}
	deps := Deps{Config: cfg, DB: repotest.NewDB(t), Clock: clock, Log: logger.Nop()}
	c := &client{t: t, router: NewRouter(deps)}
	auth := handler.NewAuthenticator(cfg.Auth, clock)

	_, root := c.register(auth, "root")
	aliceID, alice := c.register(auth, "alice")
	bobID, bob := c.register(auth, "bob")

	kickoff := now.Add(48 * time.Hour)
	status, body := c.do(http.MethodPost, "/api/v1/admin/tournaments", root, map[string]any{
		"name":       "IPL 2026",
		"type":       "T20",
		"start_date": kickoff,
		"end_date":   kickoff.AddDate(0, 1, 0),
		"teams":      []string{"MI", "CSK"},
	})
	require.Equal(t, http.StatusCreated, status, body)
	tournamentID := uint(body["tournament"].(map[string]any)["id"].(float64))

	status, body = c.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/tournaments/%d/matches", tournamentID), root, map[string]any{
		"number": 1, "team_a": "MI", "team_b": "CSK", "date": kickoff,
	})
	require.Equal(t, http.StatusCreated, status, body)
	matchPath := fmt.Sprintf("/api/v1/matches/%d/prediction", uint(body["match"].(map[string]any)["id"].(float64)))
	resultPath := fmt.Sprintf("/api/v1/admin/matches/%d/result", uint(body["match"].(map[string]any)["id"].(float64)))

	// Unapproved users cannot predict.
	status, _ = c.do(http.MethodPut, matchPath, alice, map[string]any{"toss_pick": "MI", "match_pick": "MI"})
	require.Equal(t, http.StatusForbidden, status)

	for _, id := range []uint{aliceID, bobID} {
		status, _ = c.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/users/%d/approve", id), root, nil)
		require.Equal(t, http.StatusNoContent, status)
	}

	status, body = c.do(http.MethodPut, matchPath, alice, map[string]any{"toss_pick": "MI", "match_pick": "MI"})
	require.Equal(t, http.StatusOK, status, body)
	status, _ = c.do(http.MethodPut, matchPath, bob, map[string]any{"toss_pick": "CSK", "match_pick": "CSK"})
	require.Equal(t, http.StatusOK, status)

	status, body = c.do(http.MethodPost, fmt.Sprintf("/api/v1/tournaments/%d/prediction", tournamentID), alice, map[string]any{"team_name": "MI"})
	require.Equal(t, http.StatusCreated, status, body)
	status, body = c.do(http.MethodPost, fmt.Sprintf("/api/v1/tournaments/%d/prediction", tournamentID), alice, map[string]any{"team_name": "CSK"})
	require.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body["error"], "already predicted")

	// Inside the lead time the match window is closed.
	clock.Advance(47 * time.Hour)
	status, body = c.do(http.MethodPut, matchPath, bob, map[string]any{"match_pick": "MI"})
	require.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body["error"], "prediction window is closed")

	clock.Advance(2 * time.Hour)
	status, body = c.do(http.MethodGet, "/api/v1/matches/upcoming", alice, nil)
	require.Equal(t, http.StatusOK, status)
	matches := body["matches"].([]any)
	require.Len(t, matches, 1)
	assert.Equal(t, "LIVE", matches[0].(map[string]any)["status"])

	status, body = c.do(http.MethodPost, resultPath, alice, map[string]any{"toss_winner": "MI", "match_winner": "MI"})
	require.Equal(t, http.StatusForbidden, status, body)

	status, body = c.do(http.MethodPost, resultPath, root, map[string]any{"toss_winner": "MI", "match_winner": "MI"})
	require.Equal(t, http.StatusOK, status, body)

	status, body = c.do(http.MethodGet, "/api/v1/leaderboard", bob, nil)
	require.Equal(t, http.StatusOK, status)
	entries := body["leaderboard"].([]any)
	require.Len(t, entries, 2, "administrators are not ranked")

	first := entries[0].(map[string]any)
	second := entries[1].(map[string]any)
	assert.Equal(t, "alice", first["username"])
	assert.Equal(t, float64(30), first["points"])
	assert.Equal(t, float64(1), first["rank"])
	assert.Equal(t, "bob", second["username"])
	assert.Equal(t, float64(0), second["points"])

	status, body = c.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/tournaments/%d/winner", tournamentID), root, map[string]any{"winner": "MI"})
	require.Equal(t, http.StatusOK, status, body)

	status, body = c.do(http.MethodGet, fmt.Sprintf("/api/v1/leaderboard?tournament_id=%d", tournamentID), bob, nil)
	require.Equal(t, http.StatusOK, status)
	top := body["leaderboard"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(130), top["points"])

	status, _ = c.do(http.MethodGet, "/api/v1/admin/dashboard", alice, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, body = c.do(http.MethodGet, "/api/v1/admin/dashboard", root, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(2), body["match_picks"])
	assert.Equal(t, float64(1), body["champion_picks"])

	status, body = c.do(http.MethodGet, fmt.Sprintf("/api/v1/admin/dashboard/tournaments/%d/picks", tournamentID), root, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(1), body["total"])

	status, body = c.do(http.MethodPost, "/api/v1/admin/polls", root, map[string]any{
		"question":      "Who finishes top of the table?",
		"tournament_id": tournamentID,
		"options":       []string{"MI", "CSK"},
	})
	require.Equal(t, http.StatusCreated, status, body)
	poll := body["poll"].(map[string]any)
	pollPath := fmt.Sprintf("/api/v1/polls/%d/vote", uint(poll["id"].(float64)))
	optionID := poll["options"].([]any)[1].(map[string]any)["id"]

	status, body = c.do(http.MethodPost, pollPath, bob, map[string]any{"option_id": optionID})
	require.Equal(t, http.StatusOK, status, body)
	votes := body["poll"].(map[string]any)["options"].([]any)[1].(map[string]any)["votes"]
	assert.Equal(t, float64(1), votes)

	status, body = c.do(http.MethodGet, fmt.Sprintf("/api/v1/polls/%d", uint(poll["id"].(float64))), bob, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, optionID, body["poll"].(map[string]any)["my_option_id"])

	status, _ = c.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "results_published_total")
}

func TestNewScheduler_SweepsDueMatches(t *testing.T) {
	now := time.Date(2026, 4, 10, 10, 0, 0, 0, time.UTC)
	db := repotest.NewDB(t)
	cfg := &config.Config{Scheduler: config.SchedulerConfig{Enabled: false}}

	tour := repotest.CreateTournament(t, db, &models.Tournament{Name: "IPL", StartDate: now, EndDate: now.AddDate(0, 1, 0)}, "MI", "CSK")
	match := repotest.CreateMatch(t, db, &models.Match{TournamentID: tour.ID, TeamA: "MI", TeamB: "CSK", Date: now.Add(-time.Minute)})

	jobs := NewScheduler(Deps{Config: cfg, DB: db, Clock: clockwork.NewFakeClockAt(now), Log: logger.Nop()})
	require.NoError(t, jobs.Start())
	jobs.RunSweep(t.Context())

	got, err := repository.NewMatchRepository(db).GetByID(t.Context(), match.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusLive, got.Status)
}
