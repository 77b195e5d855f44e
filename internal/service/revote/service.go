// Package revote lets users ask administrators to release a locked champion pick.
package revote

import (
	"context"
	"errors"
	"fmt"

	"github.com/aimd54/cricket-predictor/internal/domain"
	"github.com/aimd54/cricket-predictor/internal/metrics"
	"github.com/aimd54/cricket-predictor/internal/models"
	"github.com/aimd54/cricket-predictor/internal/repository"
	"github.com/aimd54/cricket-predictor/pkg/logger"
)

// Decision is an administrator's answer to a revote request.
type Decision string

// Decisions.
const (
	DecisionApprove Decision = "APPROVE"
	DecisionDecline Decision = "DECLINE"
	DecisionIgnore  Decision = "IGNORE"
)

// Valid reports whether d is a known decision.
func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionDecline || d == DecisionIgnore
}

// Service runs the revote workflow.
type Service struct {
	db  *repository.DB
	log *logger.Logger
}

// NewService creates a new revote service.
func NewService(db *repository.DB, log *logger.Logger) *Service {
	return &Service{db: db, log: log}
}

// RequestRevote sends one VOTE_REQUEST to every administrator asking to release
// the user's champion pick for the tournament. It returns the number sent.
func (s *Service) RequestRevote(ctx context.Context, userID, tournamentID uint) (int, error) {
	users := repository.NewUserRepository(s.db)
	tournaments := repository.NewTournamentRepository(s.db)
	predictions := repository.NewPredictionRepository(s.db)
	notifications := repository.NewNotificationRepository(s.db)

	requester, err := users.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	tournament, err := tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		return 0, err
	}
	pick, err := predictions.GetByUserAndTournament(ctx, userID, tournamentID)
	if err != nil {
		return 0, err
	}

	pending, err := notifications.HasPendingRevote(ctx, userID, tournamentID)
	if err != nil {
		return 0, err
	}
	if pending {
		return 0, fmt.Errorf("%w: a revote request for tournament %d is already pending", domain.ErrConflict, tournamentID)
	}

	admins, err := users.ListAdmins(ctx)
	if err != nil {
		return 0, err
	}
	if len(admins) == 0 {
		return 0, fmt.Errorf("%w: no administrator can review revote requests", domain.ErrNotFound)
	}

	payload := models.RevoteRequestPayload{RequesterID: userID, TournamentID: tournamentID}
	title := "Revote request"
	message := fmt.Sprintf("%s asks to change their %s champion pick (currently %s).",
		requester.Username, tournament.Name, pick.MatchPick)

	batch := make([]*models.Notification, 0, len(admins))
	for _, admin := range admins {
		batch = append(batch, models.NewRevoteRequest(admin.ID, payload, title, message))
	}
	if err := notifications.CreateBatch(ctx, batch); err != nil {
		return 0, err
	}

	s.log.Info().
		Uint("user_id", userID).
		Uint("tournament_id", tournamentID).
		Int("admins", len(batch)).
		Msg("Revote requested")

	return len(batch), nil
}

// ResolveRevote applies an administrator's decision to a revote request. Only the
// first resolution of a request takes effect; later ones fail with domain.ErrConflict.
// Approving deletes the requester's champion pick so they can pick again.
func (s *Service) ResolveRevote(ctx context.Context, adminID, notificationID uint, decision Decision) error {
	if !decision.Valid() {
		return fmt.Errorf("%w: unknown decision %q", domain.ErrValidation, decision)
	}

	var payload models.RevoteRequestPayload
	err := s.db.Transaction(ctx, func(tx *repository.DB) error {
		notifications := repository.NewNotificationRepository(tx)
		tournaments := repository.NewTournamentRepository(tx)

		n, err := notifications.GetByID(ctx, notificationID)
		if err != nil {
			return err
		}
		if n.UserID != adminID {
			return fmt.Errorf("%w: notification %d is addressed to another user", domain.ErrUnauthorized, notificationID)
		}
		p, ok := n.Payload().(models.RevoteRequestPayload)
		if !ok {
			return fmt.Errorf("%w: notification %d is not a revote request", domain.ErrValidation, notificationID)
		}
		payload = p

		won, err := notifications.MarkReadIfUnread(ctx, n.ID)
		if err != nil {
			return err
		}
		if !won {
			return fmt.Errorf("%w: revote request %d was already resolved", domain.ErrConflict, notificationID)
		}
		if _, err := notifications.MarkRevoteSiblingsRead(ctx, p.RequesterID, p.TournamentID); err != nil {
			return err
		}

		if decision == DecisionIgnore {
			return nil
		}

		tournament, err := tournaments.GetByID(ctx, p.TournamentID)
		if err != nil {
			return err
		}

		approved := decision == DecisionApprove
		title := "Revote request declined"
		message := fmt.Sprintf("Your request to change your %s champion pick was declined.", tournament.Name)
		if approved {
			err := repository.NewPredictionRepository(tx).DeleteChampionPick(ctx, p.RequesterID, p.TournamentID)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				s.log.Warn().
					Uint("user_id", p.RequesterID).
					Uint("tournament_id", p.TournamentID).
					Msg("Champion pick already gone on revote approval")
			case err != nil:
				return err
			}
			title = "Revote request approved"
			message = fmt.Sprintf("Your request to change your %s champion pick was approved. You can pick again while the window is open.", tournament.Name)
		}

		reply := models.NewRevoteDecision(p.RequesterID,
			models.RevoteDecisionPayload{TournamentID: p.TournamentID, Approved: approved},
			title, message)
		return notifications.Create(ctx, reply)
	})
	if err != nil {
		return err
	}

	metrics.RecordRevoteDecision(string(decision))
	s.log.Info().
		Uint("admin_id", adminID).
		Uint("notification_id", notificationID).
		Uint("user_id", payload.RequesterID).
		Uint("tournament_id", payload.TournamentID).
		Str("decision", string(decision)).
		Msg("Revote resolved")

	return nil
}

// ListPendingRequests returns the unresolved revote requests addressed to adminID.
func (s *Service) ListPendingRequests(ctx context.Context, adminID uint) ([]models.Notification, error) {
	return repository.NewNotificationRepository(s.db).ListPendingRevotes(ctx, adminID)
}
