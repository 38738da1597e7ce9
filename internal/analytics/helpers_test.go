package analytics

import (
	"time"

	"github.com/Suraj370/conversion-analytics-ab-platform/internal/domain"
)

var testBase = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

func testEvent(eventID, userID string, eventType domain.EventType, hourOffset float64) StagedEvent {
	return StagedEvent{
		EventID:   eventID,
		UserID:    userID,
		EventType: eventType,
		Timestamp: testBase.Add(time.Duration(hourOffset * float64(time.Hour))),
	}
}

func testPurchase(eventID, userID string, hourOffset float64, plan string, amount float64) StagedEvent {
	event := testEvent(eventID, userID, domain.EventTypePurchase, hourOffset)
	event.PurchasePlan = plan
	event.PurchaseAmount = &amount
	return event
}

func testAssignment(eventID, userID string, hourOffset float64, experimentID, variant string) StagedEvent {
	event := testEvent(eventID, userID, domain.EventTypeExperimentAssignment, hourOffset)
	event.ExperimentID = experimentID
	event.Variant = variant
	return event
}
