package analytics

import (
	"sort"

	"github.com/Suraj370/conversion-analytics-ab-platform/internal/domain"
)

// EventTypeSummary reports volume and audience per event type
type EventTypeSummary struct {
	EventType   domain.EventType `json:"event_type"`
	Count       int              `json:"count"`
	UniqueUsers int              `json:"unique_users"`
}

// SummarizeEvents tallies events and distinct users per event type,
// ordered by count descending then type for determinism.
func SummarizeEvents(events []StagedEvent) []EventTypeSummary {
	counts := make(map[domain.EventType]int)
	users := make(map[domain.EventType]map[string]bool)

	for _, event := range events {
		counts[event.EventType]++
		if users[event.EventType] == nil {
			users[event.EventType] = make(map[string]bool)
		}
		users[event.EventType][event.UserID] = true
	}

	summaries := make([]EventTypeSummary, 0, len(counts))
	for eventType, count := range counts {
		summaries = append(summaries, EventTypeSummary{
			EventType:   eventType,
			Count:       count,
			UniqueUsers: len(users[eventType]),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Count != summaries[j].Count {
			return summaries[i].Count > summaries[j].Count
		}
		return summaries[i].EventType < summaries[j].EventType
	})

	return summaries
}
