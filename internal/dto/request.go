package dto

import "time"

// IngestEventRequest represents a single event submitted for ingestion.
// event_id is optional; one is generated when absent.
type IngestEventRequest struct {
	EventID    string                 `json:"event_id"`
	UserID     string                 `json:"user_id" binding:"required"`
	EventType  string                 `json:"event_type" binding:"required"`
	Timestamp  time.Time              `json:"timestamp" binding:"required"`
	Properties map[string]interface{} `json:"properties"`
}

// IngestBatchRequest represents a batch of events submitted in a single request
type IngestBatchRequest struct {
	Events []IngestEventRequest `json:"events" binding:"required,min=1,max=1000,dive"`
}
