package leaderboard

import (
	"context"
	"fmt"

	"github.com/aimd54/cricket-predictor/internal/domain"
)

// UserStats represents a user's standing on a leaderboard.
type UserStats struct {
	UserID       uint   `json:"user_id"`
	Username     string `json:"username"`
	Points       int    `json:"points"`
	Rank         int    `json:"rank"`
	Participants int    `json:"participants"`
	LeaderPoints int    `json:"leader_points"`
	PointsBehind int    `json:"points_behind"`
	Filter       Filter `json:"filter"`
}

// GetUserStats returns the user's position on the leaderboard selected by filter.
// Administrators and users outside the filtered population yield domain.ErrNotFound.
func (s *Service) GetUserStats(ctx context.Context, userID uint, filter Filter) (*UserStats, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	filter.Limit = 0
	entries, err := s.GetLeaderboard(ctx, filter)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.UserID != userID {
			continue
		}
		stats := &UserStats{
			UserID:       userID,
			Username:     user.Username,
			Points:       entry.Points,
			Rank:         entry.Rank,
			Participants: len(entries),
			Filter:       filter,
		}
		stats.LeaderPoints = entries[0].Points
		stats.PointsBehind = stats.LeaderPoints - entry.Points
		return stats, nil
	}

	return nil, fmt.Errorf("%w: user %d is not ranked on this leaderboard", domain.ErrNotFound, userID)
}

// GetUserRank returns the rank of a user on the leaderboard selected by filter.
func (s *Service) GetUserRank(ctx context.Context, userID uint, filter Filter) (int, error) {
	stats, err := s.GetUserStats(ctx, userID, filter)
	if err != nil {
		return 0, err
	}
	return stats.Rank, nil
}
