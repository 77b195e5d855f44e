// Package leaderboard provides leaderboard and ranking services.
package leaderboard

import (
	"context"
	"fmt"
	"sort"

	"github.com/aimd54/cricket-predictor/internal/models"
	"github.com/aimd54/cricket-predictor/internal/repository"
	"github.com/aimd54/cricket-predictor/pkg/logger"
)

// PredictionRepository interface for point totals.
type PredictionRepository interface {
	UserTotals(ctx context.Context, filter repository.ScoreFilter) ([]repository.UserTotal, error)
}

// UserRepository interface for user operations.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	ListRanked(ctx context.Context, roomID *uint) ([]models.User, error)
}

// RoomRepository interface for room operations.
type RoomRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Room, error)
}

// Filter narrows a leaderboard. MatchID takes precedence over TournamentID for
// the score basis; RoomID restricts the population to approved room members.
type Filter struct {
	TournamentID *uint `form:"tournament_id" json:"tournament_id,omitempty"`
	MatchID      *uint `form:"match_id" json:"match_id,omitempty"`
	RoomID       *uint `form:"room_id" json:"room_id,omitempty"`
	Limit        int   `form:"limit" json:"limit,omitempty"`
}

// Entry represents a single entry in a leaderboard.
type Entry struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Points   int    `json:"points"`
	Rank     int    `json:"rank"`
}

// Service handles leaderboard generation and user statistics.
type Service struct {
	predictionRepo PredictionRepository
	userRepo       UserRepository
	roomRepo       RoomRepository
	log            *logger.Logger
}

// NewService creates a new leaderboard service with concrete repository types.
func NewService(
	predictionRepo *repository.PredictionRepository,
	userRepo *repository.UserRepository,
	roomRepo *repository.RoomRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		predictionRepo: predictionRepo,
		userRepo:       userRepo,
		roomRepo:       roomRepo,
		log:            log,
	}
}

// NewServiceWithInterfaces creates a new leaderboard service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	predictionRepo PredictionRepository,
	userRepo UserRepository,
	roomRepo RoomRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		predictionRepo: predictionRepo,
		userRepo:       userRepo,
		roomRepo:       roomRepo,
		log:            log,
	}
}

// GetLeaderboard ranks approved non-administrator users by their points under
// filter. Users without scored predictions appear with 0. Tied users share a rank.
func (s *Service) GetLeaderboard(ctx context.Context, filter Filter) ([]Entry, error) {
	if filter.RoomID != nil {
		if _, err := s.roomRepo.GetByID(ctx, *filter.RoomID); err != nil {
			return nil, err
		}
	}

	users, err := s.userRepo.ListRanked(ctx, filter.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ranked users: %w", err)
	}

	totals, err := s.predictionRepo.UserTotals(ctx, repository.ScoreFilter{
		TournamentID: filter.TournamentID,
		MatchID:      filter.MatchID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get point totals: %w", err)
	}

	points := make(map[uint]int, len(totals))
	for _, t := range totals {
		points[t.UserID] = t.Points
	}

	entries := make([]Entry, 0, len(users))
	for _, user := range users {
		// Ranked population is filtered in storage; this guards stale role data.
		if user.IsAdmin() {
			continue
		}
		entries = append(entries, Entry{
			UserID:   user.ID,
			Username: user.Username,
			Role:     user.Role,
			Points:   points[user.ID],
		})
	}

	sortLeaderboard(entries)
	assignRanks(entries)

	if filter.Limit > 0 && len(entries) > filter.Limit {
		entries = entries[:filter.Limit]
	}

	s.log.Debug().
		Int("entries", len(entries)).
		Bool("room", filter.RoomID != nil).
		Msg("Leaderboard computed")

	return entries, nil
}

// sortLeaderboard orders entries by points, highest first, then by username.
func sortLeaderboard(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].Username < entries[j].Username
	})
}

// assignRanks gives equal points equal ranks (1, 1, 3).
func assignRanks(entries []Entry) {
	for i := range entries {
		if i > 0 && entries[i].Points == entries[i-1].Points {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
}
