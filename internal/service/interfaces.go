package service

import (
	"github.com/Suraj370/conversion-analytics-ab-platform/internal/dto"
)

// EventServicer defines the interface for event ingestion operations
type EventServicer interface {
	IngestEvent(event *dto.IngestEventRequest) (string, error)
	IngestBatch(events []dto.IngestEventRequest) ([]string, []string, error)
}
