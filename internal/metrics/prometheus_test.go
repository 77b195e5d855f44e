package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordPredictionSubmitted(t *testing.T) {
	// Reset the counter before test
	PredictionsSubmittedTotal.Reset()

	RecordPredictionSubmitted(KindMatch)
	RecordPredictionSubmitted(KindMatch)
	RecordPredictionSubmitted(KindTournament)

	count := testutil.ToFloat64(PredictionsSubmittedTotal.WithLabelValues(KindMatch))
	if count != 2 {
		t.Errorf("Expected match count = 2, got %f", count)
	}

	count = testutil.ToFloat64(PredictionsSubmittedTotal.WithLabelValues(KindTournament))
	if count != 1 {
		t.Errorf("Expected tournament count = 1, got %f", count)
	}
}

func TestRecordPredictionRejected(t *testing.T) {
	PredictionsRejectedTotal.Reset()

	RecordPredictionRejected(KindMatch, "window_closed")
	RecordPredictionRejected(KindTournament, "already_predicted")
	RecordPredictionRejected(KindTournament, "already_predicted")

	count := testutil.ToFloat64(PredictionsRejectedTotal.WithLabelValues(KindTournament, "already_predicted"))
	if count != 2 {
		t.Errorf("Expected already_predicted count = 2, got %f", count)
	}
}

func TestRecordResultPublished(t *testing.T) {
	ResultsPublishedTotal.Reset()
	PointsAwardedTotal.Reset()

	RecordResultPublished(KindMatch, 30)
	RecordResultPublished(KindMatch, 10)

	if got := testutil.ToFloat64(ResultsPublishedTotal.WithLabelValues(KindMatch)); got != 2 {
		t.Errorf("Expected 2 publishes, got %f", got)
	}
	if got := testutil.ToFloat64(PointsAwardedTotal.WithLabelValues(KindMatch)); got != 40 {
		t.Errorf("Expected 40 points, got %f", got)
	}
}

func TestRecordLifecycleSweep(t *testing.T) {
	before := testutil.ToFloat64(LifecycleTransitionsTotal)

	RecordLifecycleSweep(3)
	RecordLifecycleSweep(0)

	if got := testutil.ToFloat64(LifecycleTransitionsTotal) - before; got != 3 {
		t.Errorf("Expected 3 transitions, got %f", got)
	}
	if testutil.ToFloat64(LifecycleLastSweepTimestamp) == 0 {
		t.Error("Expected last sweep timestamp to be set")
	}
}

func TestRecordRevoteDecision(t *testing.T) {
	RevoteDecisionsTotal.Reset()

	RecordRevoteDecision("approve")
	RecordRevoteDecision("decline")
	RecordRevoteDecision("approve")

	if got := testutil.ToFloat64(RevoteDecisionsTotal.WithLabelValues("approve")); got != 2 {
		t.Errorf("Expected 2 approvals, got %f", got)
	}
}

func TestObserveScoringDuration(t *testing.T) {
	ScoringDurationSeconds.Reset()

	ObserveScoringDuration(KindMatch, 0.01)
	ObserveScoringDuration(KindMatch, 0.02)

	if got := testutil.CollectAndCount(ScoringDurationSeconds); got != 1 {
		t.Errorf("Expected 1 histogram series, got %d", got)
	}
}

func TestRecordSchedulerJobRun(t *testing.T) {
	SchedulerJobsRunTotal.Reset()

	RecordSchedulerJobRun("digest", "success")
	RecordSchedulerJobRun("digest", "error")
	RecordSchedulerJobRun("digest", "success")

	if got := testutil.ToFloat64(SchedulerJobsRunTotal.WithLabelValues("digest", "success")); got != 2 {
		t.Errorf("Expected 2 successful runs, got %f", got)
	}
	if got := testutil.ToFloat64(SchedulerLastRunTimestamp.WithLabelValues("digest")); got <= 0 {
		t.Errorf("Expected last run timestamp to be set, got %f", got)
	}
}
