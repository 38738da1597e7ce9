package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Suraj370/conversion-analytics-ab-platform/internal/domain"
	"github.com/Suraj370/conversion-analytics-ab-platform/internal/dto"
	"github.com/Suraj370/conversion-analytics-ab-platform/internal/queue"
)

// Timestamps slightly ahead of the ingesting host are tolerated to absorb
// clock skew between clients and the service.
const timestampSkewTolerance = time.Second

// EventService validates incoming events and publishes them to the queue
type EventService struct {
	publisher queue.QueuePublisher
	log       *zap.Logger
}

// NewEventService creates a new event service
func NewEventService(publisher queue.QueuePublisher, log *zap.Logger) *EventService {
	return &EventService{
		publisher: publisher,
		log:       log,
	}
}

// IngestEvent validates a single event and publishes it to the queue.
// Returns the event ID, generating one when the request carries none.
func (s *EventService) IngestEvent(req *dto.IngestEventRequest) (string, error) {
	ctx := context.Background()

	event, err := s.buildEvent(req)
	if err != nil {
		return "", err
	}

	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		return "", fmt.Errorf("failed to publish event to queue: %w", err)
	}

	return event.EventID, nil
}

// IngestBatch validates and publishes multiple events. Invalid events are
// rejected individually; the rest of the batch still goes through.
func (s *EventService) IngestBatch(events []dto.IngestEventRequest) ([]string, []string, error) {
	var eventIDs []string
	var errors []string

	for i, event := range events {
		eventID, err := s.IngestEvent(&event)
		if err != nil {
			errors = append(errors, err.Error())
			s.log.Warn("Failed to ingest event in batch",
				zap.Int("index", i),
				zap.Error(err),
				zap.String("event_type", event.EventType))
			continue
		}
		eventIDs = append(eventIDs, eventID)
	}

	return eventIDs, errors, nil
}

// buildEvent validates the request and converts it to a domain event
func (s *EventService) buildEvent(req *dto.IngestEventRequest) (*domain.Event, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, fmt.Errorf("user_id must not be empty")
	}

	eventType := strings.TrimSpace(req.EventType)
	if eventType == "" {
		return nil, fmt.Errorf("event_type must not be empty")
	}

	now := time.Now()
	if req.Timestamp.After(now.Add(timestampSkewTolerance)) {
		s.log.Warn("Timestamp validation failed: future timestamp",
			zap.Time("event_timestamp", req.Timestamp),
			zap.Time("current_time", now),
			zap.String("event_type", eventType))
		return nil, fmt.Errorf("timestamp must not be in the future: %s", req.Timestamp.Format(time.RFC3339))
	}

	eventID := req.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	propertiesJSON := "{}"
	if len(req.Properties) > 0 {
		raw, err := json.Marshal(req.Properties)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal properties: %w", err)
		}
		propertiesJSON = string(raw)
	}

	return &domain.Event{
		EventID:    eventID,
		UserID:     userID,
		EventType:  eventType,
		Timestamp:  req.Timestamp,
		Properties: propertiesJSON,
	}, nil
}
