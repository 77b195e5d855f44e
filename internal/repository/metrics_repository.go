package repository

import (
	"context"
	"fmt"

	"github.com/aimd54/cricket-predictor/internal/models"
)

// MetricsRepository computes the counts behind the admin dashboard.
type MetricsRepository struct {
	db *DB
}

// NewMetricsRepository creates a new metrics repository.
func NewMetricsRepository(db *DB) *MetricsRepository {
	return &MetricsRepository{db: db}
}

// Overview is a point-in-time summary of the whole installation.
type Overview struct {
	UsersByRole      map[string]int64 `json:"users_by_role"`
	PendingApprovals int64            `json:"pending_approvals"`
	Tournaments      int64            `json:"tournaments"`
	MatchesByStatus  map[string]int64 `json:"matches_by_status"`
	MatchPicks       int64            `json:"match_picks"`
	ChampionPicks    int64            `json:"champion_picks"`
	Rooms            int64            `json:"rooms"`
	PendingRevotes   int64            `json:"pending_revotes"`
}

// PickCount is how many users picked a given outcome.
type PickCount struct {
	Pick  string `json:"pick"`
	Count int64  `json:"count"`
}

type groupCount struct {
	Name  string
	Count int64
}

// Overview gathers the dashboard counts.
func (r *MetricsRepository) Overview(ctx context.Context) (*Overview, error) {
	db := r.db.WithContext(ctx)
	overview := &Overview{}

	var err error
	if overview.UsersByRole, err = r.grouped(ctx, &models.User{}, "role"); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if overview.MatchesByStatus, err = r.grouped(ctx, &models.Match{}, "status"); err != nil {
		return nil, fmt.Errorf("failed to count matches: %w", err)
	}

	counts := []struct {
		dest  *int64
		model interface{}
		where string
		args  []interface{}
	}{
		{&overview.PendingApprovals, &models.User{}, "is_approved = ?", []interface{}{false}},
		{&overview.Tournaments, &models.Tournament{}, "", nil},
		{&overview.MatchPicks, &models.Prediction{}, "match_id IS NOT NULL", nil},
		{&overview.ChampionPicks, &models.Prediction{}, "tournament_id IS NOT NULL", nil},
		{&overview.Rooms, &models.Room{}, "", nil},
	}
	for _, c := range counts {
		query := db.Model(c.model)
		if c.where != "" {
			query = query.Where(c.where, c.args...)
		}
		if err := query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count dashboard totals: %w", err)
		}
	}

	// One request fans out to every admin; count requests, not copies.
	requests := db.Model(&models.Notification{}).
		Select("DISTINCT requester_id, tournament_id").
		Where("type = ? AND action = ? AND is_read = ?",
			models.NotificationTypeVoteRequest, models.ActionRevoteTournament, false)
	err = db.Table("(?) AS pending", requests).Count(&overview.PendingRevotes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count pending revotes: %w", err)
	}

	return overview, nil
}

// MatchPickDistribution counts the match-winner picks made for a match.
func (r *MetricsRepository) MatchPickDistribution(ctx context.Context, matchID uint) ([]PickCount, error) {
	return r.pickDistribution(ctx, "match_id = ?", matchID)
}

// ChampionPickDistribution counts the champion picks made for a tournament.
func (r *MetricsRepository) ChampionPickDistribution(ctx context.Context, tournamentID uint) ([]PickCount, error) {
	return r.pickDistribution(ctx, "tournament_id = ?", tournamentID)
}

func (r *MetricsRepository) pickDistribution(ctx context.Context, where string, id uint) ([]PickCount, error) {
	var counts []PickCount
	err := r.db.WithContext(ctx).
		Model(&models.Prediction{}).
		Select("match_pick AS pick, COUNT(*) AS count").
		Where(where, id).
		Group("match_pick").
		Order("count DESC, pick ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count picks: %w", err)
	}
	return counts, nil
}

func (r *MetricsRepository) grouped(ctx context.Context, model interface{}, column string) (map[string]int64, error) {
	var rows []groupCount
	err := r.db.WithContext(ctx).
		Model(model).
		Select(column + " AS name, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Name] = row.Count
	}
	return out, nil
}
