package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// IngestSingleResponse represents a successful single-event ingestion response
type IngestSingleResponse struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}

// IngestBatchResponse represents a batch ingestion response
type IngestBatchResponse struct {
	Accepted int      `json:"accepted"`
	Rejected int      `json:"rejected"`
	EventIDs []string `json:"event_ids,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}
