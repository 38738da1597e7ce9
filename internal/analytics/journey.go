package analytics

import (
	"time"

	"github.com/Suraj370/conversion-analytics-ab-platform/internal/domain"
)

// UserJourney summarizes one user's path through the event log: the first
// time each event type was seen, per-type tallies, and first purchase and
// experiment assignment details. A journey exists only for users with at
// least one staged event.
type UserJourney struct {
	UserID              string
	FirstSeen           map[domain.EventType]time.Time
	EventCounts         map[domain.EventType]int
	TotalEvents         int
	FirstPurchasePlan   string
	FirstPurchaseAmount *float64
	FirstAssignmentAt   *time.Time
	IsConverted         bool
}

// Reached reports whether the user produced at least one event of the type
func (j *UserJourney) Reached(eventType domain.EventType) bool {
	_, ok := j.FirstSeen[eventType]
	return ok
}

// FirstSeenAt returns the first timestamp for the type, nil if never reached
func (j *UserJourney) FirstSeenAt(eventType domain.EventType) *time.Time {
	if at, ok := j.FirstSeen[eventType]; ok {
		return &at
	}
	return nil
}

// journeyAccum carries the per-user fold state that doesn't belong on the
// final journey: the event_id behind each first-seen timestamp, for
// deterministic tie-breaking.
type journeyAccum struct {
	journey         *UserJourney
	firstEventIDs   map[domain.EventType]string
	firstPurchaseID string
}

// BuildJourneys collapses staged events into one journey per user in a
// single pass. For each event type the minimum timestamp wins; equal
// timestamps are broken by the smaller event_id. First purchase plan and
// amount follow whichever purchase event holds the minimum under the same
// ordering. Stage prerequisites are not enforced here; funnel consistency is
// the invariant checker's concern.
func BuildJourneys(events []StagedEvent) map[string]*UserJourney {
	accums := make(map[string]*journeyAccum)

	for _, event := range events {
		acc, ok := accums[event.UserID]
		if !ok {
			acc = &journeyAccum{
				journey: &UserJourney{
					UserID:      event.UserID,
					FirstSeen:   make(map[domain.EventType]time.Time),
					EventCounts: make(map[domain.EventType]int),
				},
				firstEventIDs: make(map[domain.EventType]string),
			}
			accums[event.UserID] = acc
		}

		j := acc.journey
		j.TotalEvents++
		j.EventCounts[event.EventType]++

		if acc.observeFirst(event) && event.EventType == domain.EventTypePurchase {
			j.FirstPurchasePlan = event.PurchasePlan
			j.FirstPurchaseAmount = event.PurchaseAmount
			acc.firstPurchaseID = event.EventID
		}
	}

	journeys := make(map[string]*UserJourney, len(accums))
	for userID, acc := range accums {
		j := acc.journey
		if at, ok := j.FirstSeen[domain.EventTypeExperimentAssignment]; ok {
			j.FirstAssignmentAt = &at
		}
		j.IsConverted = j.Reached(domain.EventTypePurchase)
		journeys[userID] = j
	}

	return journeys
}

// observeFirst updates the first-seen record for the event's type and
// reports whether this event became (or stayed) the first occurrence.
func (a *journeyAccum) observeFirst(event StagedEvent) bool {
	current, seen := a.journey.FirstSeen[event.EventType]
	if seen {
		if event.Timestamp.After(current) {
			return false
		}
		if event.Timestamp.Equal(current) && event.EventID >= a.firstEventIDs[event.EventType] {
			return false
		}
	}

	a.journey.FirstSeen[event.EventType] = event.Timestamp
	a.firstEventIDs[event.EventType] = event.EventID
	return true
}
