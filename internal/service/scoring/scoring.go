package scoring

import (
	"github.com/aimd54/cricket-predictor/internal/models"
)

// Point values.
const (
	TossPoints       = 10
	MatchPoints      = 20
	NoDecisionPoints = 10
	ChampionPoints   = 100
)

// Outcome is the published result of a match. MatchWinner holds a team name or
// one of the no-decision sentinels.
type Outcome struct {
	TossWinner  *string
	MatchWinner string
}

// IsNoDecision reports whether every pick on the match earns the flat award.
func (o Outcome) IsNoDecision() bool {
	return models.IsNoDecision(o.MatchWinner)
}

// PointsFor returns the points a single match prediction earns under o.
func (o Outcome) PointsFor(p *models.Prediction) int {
	if o.IsNoDecision() {
		return NoDecisionPoints
	}

	points := 0
	if o.TossWinner != nil && p.TossPick != nil && *p.TossPick == *o.TossWinner {
		points += TossPoints
	}
	if p.MatchPick == o.MatchWinner {
		points += MatchPoints
	}
	return points
}

// ScoreMatch computes the points of every prediction on a match. The result
// replaces earlier values, so scoring the same outcome twice changes nothing.
func ScoreMatch(o Outcome, predictions []models.Prediction) []models.PointsAward {
	awards := make([]models.PointsAward, 0, len(predictions))
	for i := range predictions {
		awards = append(awards, models.PointsAward{
			PredictionID: predictions[i].ID,
			Points:       o.PointsFor(&predictions[i]),
		})
	}
	return awards
}

// ScoreTournament awards ChampionPoints to picks naming winner and 0 to the rest.
func ScoreTournament(winner string, predictions []models.Prediction) []models.PointsAward {
	awards := make([]models.PointsAward, 0, len(predictions))
	for _, p := range predictions {
		points := 0
		if p.MatchPick == winner {
			points = ChampionPoints
		}
		awards = append(awards, models.PointsAward{PredictionID: p.ID, Points: points})
	}
	return awards
}

// Total sums the points of awards.
func Total(awards []models.PointsAward) int {
	total := 0
	for _, a := range awards {
		total += a.Points
	}
	return total
}
