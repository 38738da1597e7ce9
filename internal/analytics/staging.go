package analytics

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Suraj370/conversion-analytics-ab-platform/internal/domain"
)

// StagedEvent is the typed projection of a raw event: the property bag is
// parsed once and the documented per-type scalars are pulled out.
type StagedEvent struct {
	EventID        string
	UserID         string
	EventType      domain.EventType
	Timestamp      time.Time
	Page           string
	ClickTarget    string
	SignupSource   string
	PurchasePlan   string
	PurchaseAmount *float64
	ExperimentID   string
	Variant        string
}

// QualityReport counts events excluded or degraded during staging.
// These are absorbed and reported, never fatal.
type QualityReport struct {
	MissingUserID     int
	MissingEventType  int
	InvalidProperties int
}

// Dropped returns the number of events excluded from aggregation
func (q QualityReport) Dropped() int {
	return q.MissingUserID + q.MissingEventType
}

// StageEvents converts the raw snapshot into staged events in a single pass.
// Events with a blank user_id or event_type are excluded and counted; an
// unparsable property bag degrades to empty extractions but keeps the event.
func StageEvents(events []domain.Event) ([]StagedEvent, QualityReport) {
	staged := make([]StagedEvent, 0, len(events))
	var quality QualityReport

	for _, event := range events {
		userID := strings.TrimSpace(event.UserID)
		if userID == "" {
			quality.MissingUserID++
			continue
		}
		eventType := strings.TrimSpace(event.EventType)
		if eventType == "" {
			quality.MissingEventType++
			continue
		}

		s := StagedEvent{
			EventID:   event.EventID,
			UserID:    userID,
			EventType: domain.EventType(eventType),
			Timestamp: event.Timestamp,
		}

		if props, ok := parseProperties(event.Properties); ok {
			s.Page = stringProp(props, domain.PropPage)
			s.ClickTarget = stringProp(props, domain.PropTarget)
			s.SignupSource = stringProp(props, domain.PropSource)
			s.PurchasePlan = stringProp(props, domain.PropPlan)
			s.PurchaseAmount = floatProp(props, domain.PropAmount)
			s.ExperimentID = stringProp(props, domain.PropExperimentID)
			s.Variant = stringProp(props, domain.PropVariant)
		} else {
			quality.InvalidProperties++
		}

		staged = append(staged, s)
	}

	return staged, quality
}

func parseProperties(raw string) (map[string]interface{}, bool) {
	if raw == "" {
		return nil, true
	}

	var props map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &props); err != nil {
		return nil, false
	}
	return props, true
}

func stringProp(props map[string]interface{}, key string) string {
	if val, ok := props[key].(string); ok {
		return val
	}
	return ""
}

func floatProp(props map[string]interface{}, key string) *float64 {
	if val, ok := props[key].(float64); ok {
		return &val
	}
	return nil
}
