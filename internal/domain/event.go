package domain

import "time"

// EventType identifies the kind of behavioral event. The vocabulary is
// extensible: unknown types are stored and counted, but only the types below
// participate in funnel and experiment analysis.
type EventType string

const (
	EventTypePageView             EventType = "page_view"
	EventTypeClick                EventType = "click"
	EventTypeSignup               EventType = "signup"
	EventTypePurchase             EventType = "purchase"
	EventTypeExperimentAssignment EventType = "experiment_assignment"
	EventTypeCustom               EventType = "custom"
)

// Event represents a raw behavioral event stored in ClickHouse.
// Events are append-only facts: created once by ingestion, never updated or
// deleted. Duplicate event_ids collapse through the ReplacingMergeTree engine.
type Event struct {
	EventID    string    `ch:"event_id"`
	UserID     string    `ch:"user_id"`
	EventType  string    `ch:"event_type"`
	Timestamp  time.Time `ch:"event_timestamp"`
	Properties string    `ch:"properties"`
	IngestedAt time.Time `ch:"ingested_at"`
}

// Documented property-bag keys per event type.
const (
	PropPage         = "page"
	PropTarget       = "target"
	PropSource       = "source"
	PropPlan         = "plan"
	PropAmount       = "amount"
	PropExperimentID = "experiment_id"
	PropVariant      = "variant"
)
