package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Suraj370/conversion-analytics-ab-platform/internal/domain"
)

func funnelRow(step string, order, reached int) FunnelStageMetric {
	return FunnelStageMetric{Step: step, StepOrder: order, UsersReached: reached}
}

func TestCheckFunnel_ValidFunnelReturnsEmpty(t *testing.T) {
	metrics := []FunnelStageMetric{
		funnelRow("page_view", 1, 5),
		funnelRow("signup", 2, 3),
		funnelRow("purchase", 3, 2),
	}

	violations := CheckFunnel(metrics)

	assert.Empty(t, violations)
}

func TestCheckFunnel_EqualCountsAreValid(t *testing.T) {
	metrics := []FunnelStageMetric{
		funnelRow("page_view", 1, 3),
		funnelRow("signup", 2, 3),
	}

	violations := CheckFunnel(metrics)

	assert.Empty(t, violations)
}

func TestCheckFunnel_ReportsViolatingPair(t *testing.T) {
	metrics := []FunnelStageMetric{
		funnelRow("page_view", 1, 2),
		funnelRow("signup", 2, 5),
		funnelRow("purchase", 3, 1),
	}

	violations := CheckFunnel(metrics)

	assert.Len(t, violations, 1)
	assert.Equal(t, FunnelViolation{
		Step:             "signup",
		StepOrder:        2,
		UsersReached:     5,
		PrevStep:         "page_view",
		PrevUsersReached: 2,
	}, violations[0])
}

func TestCheckFunnel_ReportsEveryViolatingPair(t *testing.T) {
	metrics := []FunnelStageMetric{
		funnelRow("page_view", 1, 1),
		funnelRow("signup", 2, 3),
		funnelRow("purchase", 3, 7),
	}

	violations := CheckFunnel(metrics)

	assert.Len(t, violations, 2)
}

func TestCheckFunnel_SingleStageAndEmpty(t *testing.T) {
	assert.Empty(t, CheckFunnel([]FunnelStageMetric{funnelRow("page_view", 1, 5)}))
	assert.Empty(t, CheckFunnel(nil))
}

func TestCheckFunnel_MonotonicOnRealAggregation(t *testing.T) {
	// Aggregated funnels over per-user first-occurrence flags can still be
	// non-monotonic when users skip stages; the checker must flag it.
	events := []StagedEvent{
		testEvent("e1", "u1", domain.EventTypePageView, 1),
		testPurchase("e2", "u1", 2, "pro", 99.0),
		testPurchase("e3", "u2", 2, "pro", 99.0),
	}
	journeys := BuildJourneys(events)
	metrics := AggregateFunnel(journeys, DefaultStages())

	violations := CheckFunnel(metrics)

	// signup=0 < page_view=1 is fine, purchase=2 > signup=0 is not.
	assert.Len(t, violations, 1)
	assert.Equal(t, "purchase", violations[0].Step)
}
