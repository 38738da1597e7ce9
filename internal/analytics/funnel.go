package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Suraj370/conversion-analytics-ab-platform/internal/domain"
)

// Stage describes one funnel stage: its position, display name, and the
// journey attribute (event type first-seen) it reads. Stages are
// configuration, not code; adding a stage is additive.
type Stage struct {
	Order     int
	Name      string
	EventType domain.EventType
}

// DefaultStages returns the standard page_view -> signup -> purchase funnel
func DefaultStages() []Stage {
	return []Stage{
		{Order: 1, Name: "page_view", EventType: domain.EventTypePageView},
		{Order: 2, Name: "signup", EventType: domain.EventTypeSignup},
		{Order: 3, Name: "purchase", EventType: domain.EventTypePurchase},
	}
}

// ParseStages builds a funnel definition from a comma-separated list of
// event types; position in the list determines step order.
func ParseStages(spec string) ([]Stage, error) {
	parts := strings.Split(spec, ",")
	stages := make([]Stage, 0, len(parts))
	seen := make(map[string]bool)

	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate funnel stage %q", name)
		}
		seen[name] = true
		stages = append(stages, Stage{
			Order:     len(stages) + 1,
			Name:      name,
			EventType: domain.EventType(name),
		})
	}

	if len(stages) == 0 {
		return nil, fmt.Errorf("funnel definition %q contains no stages", spec)
	}

	return stages, nil
}

// FunnelStageMetric is one row of the funnel table. Nil pointers stand for
// SQL NULLs: the first stage has no predecessor, and an empty cohort yields
// no rates rather than a division error.
type FunnelStageMetric struct {
	Step                  string   `json:"step"`
	StepOrder             int      `json:"step_order"`
	UsersReached          int      `json:"users_reached"`
	TotalUsers            int      `json:"total_users"`
	ConversionRatePct     *float64 `json:"conversion_rate_pct"`
	PrevStepUsers         *int     `json:"prev_step_users"`
	StepConversionRatePct *float64 `json:"step_conversion_rate_pct"`
}

// AggregateFunnel counts reached users per stage and derives conversion
// rates. The denominator for every stage is fixed to stage 1's reached
// count, so stage 1 always converts at 100% and later stages compare
// against the same cohort. Step-over-step rates come from a one-position
// lookback over the ordered rows.
func AggregateFunnel(journeys map[string]*UserJourney, stages []Stage) []FunnelStageMetric {
	ordered := make([]Stage, len(stages))
	copy(ordered, stages)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	counts := make([]int, len(ordered))
	for i, stage := range ordered {
		for _, journey := range journeys {
			if journey.Reached(stage.EventType) {
				counts[i]++
			}
		}
	}

	totalUsers := 0
	if len(counts) > 0 {
		totalUsers = counts[0]
	}

	metrics := make([]FunnelStageMetric, len(ordered))
	for i, stage := range ordered {
		metric := FunnelStageMetric{
			Step:              stage.Name,
			StepOrder:         stage.Order,
			UsersReached:      counts[i],
			TotalUsers:        totalUsers,
			ConversionRatePct: ratioPct(counts[i], totalUsers),
		}

		if i > 0 {
			prev := counts[i-1]
			metric.PrevStepUsers = &prev
			metric.StepConversionRatePct = ratioPct(counts[i], prev)
		}

		metrics[i] = metric
	}

	return metrics
}
