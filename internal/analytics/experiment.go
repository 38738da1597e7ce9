package analytics

import (
	"sort"

	"github.com/Suraj370/conversion-analytics-ab-platform/internal/domain"
)

// ExperimentVariantMetric is one row per (experiment_id, variant) pair
// observed in assignment events.
type ExperimentVariantMetric struct {
	ExperimentID   string  `json:"experiment_id"`
	Variant        string  `json:"variant"`
	Users          int     `json:"users"`
	Conversions    int     `json:"conversions"`
	ConversionRate float64 `json:"conversion_rate"`
	AvgRevenue     float64 `json:"avg_revenue"`
}

type variantKey struct {
	experimentID string
	variant      string
}

type variantAccum struct {
	users       int
	conversions int
	revenue     float64
}

// AnalyzeExperiments joins assignment events to journeys and aggregates
// per-variant outcomes. Each assignment counts toward users regardless of
// whether a journey exists (a missing journey means not converted, zero
// revenue). Duplicate assignments for the same user are not deduplicated.
// AvgRevenue averages first purchase amounts over converters only, so
// non-converters never dilute it; it is 0 when no one converted.
// Assignments missing experiment_id or variant are skipped and counted.
func AnalyzeExperiments(events []StagedEvent, journeys map[string]*UserJourney) ([]ExperimentVariantMetric, int) {
	accums := make(map[variantKey]*variantAccum)
	skipped := 0

	for _, event := range events {
		if event.EventType != domain.EventTypeExperimentAssignment {
			continue
		}
		if event.ExperimentID == "" || event.Variant == "" {
			skipped++
			continue
		}

		key := variantKey{experimentID: event.ExperimentID, variant: event.Variant}
		acc, ok := accums[key]
		if !ok {
			acc = &variantAccum{}
			accums[key] = acc
		}

		acc.users++

		journey, ok := journeys[event.UserID]
		if !ok || !journey.IsConverted {
			continue
		}

		acc.conversions++
		if journey.FirstPurchaseAmount != nil {
			acc.revenue += *journey.FirstPurchaseAmount
		}
	}

	metrics := make([]ExperimentVariantMetric, 0, len(accums))
	for key, acc := range accums {
		avgRevenue := 0.0
		if acc.conversions > 0 {
			avgRevenue = round6(acc.revenue / float64(acc.conversions))
		}

		metrics = append(metrics, ExperimentVariantMetric{
			ExperimentID:   key.experimentID,
			Variant:        key.variant,
			Users:          acc.users,
			Conversions:    acc.conversions,
			ConversionRate: ratio6(acc.conversions, acc.users),
			AvgRevenue:     avgRevenue,
		})
	}

	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].ExperimentID != metrics[j].ExperimentID {
			return metrics[i].ExperimentID < metrics[j].ExperimentID
		}
		return metrics[i].Variant < metrics[j].Variant
	})

	return metrics, skipped
}
