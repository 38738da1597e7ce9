package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/Suraj370/conversion-analytics-ab-platform/internal/domain"
	"github.com/Suraj370/conversion-analytics-ab-platform/internal/dto"
)

// MockQueuePublisher is a mock implementation of queue.QueuePublisher
type MockQueuePublisher struct {
	mock.Mock
}

func (m *MockQueuePublisher) PublishEvent(ctx context.Context, event *domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func validRequest() *dto.IngestEventRequest {
	return &dto.IngestEventRequest{
		EventID:   "evt_1",
		UserID:    "user_123",
		EventType: "page_view",
		Timestamp: time.Now().Add(-time.Minute),
		Properties: map[string]interface{}{
			"page": "/pricing",
		},
	}
}

func TestEventService_IngestEvent_Success(t *testing.T) {
	mockPublisher := new(MockQueuePublisher)
	log := zap.NewNop()

	service := NewEventService(mockPublisher, log)

	mockPublisher.On("PublishEvent", mock.Anything, mock.AnythingOfType("*domain.Event")).Return(nil)

	eventID, err := service.IngestEvent(validRequest())

	assert.NoError(t, err)
	assert.Equal(t, "evt_1", eventID)
	mockPublisher.AssertExpectations(t)
}

func TestEventService_IngestEvent_GeneratesEventID(t *testing.T) {
	mockPublisher := new(MockQueuePublisher)
	log := zap.NewNop()

	service := NewEventService(mockPublisher, log)

	var published *domain.Event
	mockPublisher.On("PublishEvent", mock.Anything, mock.AnythingOfType("*domain.Event")).
		Run(func(args mock.Arguments) {
			published = args.Get(1).(*domain.Event)
		}).
		Return(nil)

	req := validRequest()
	req.EventID = ""

	eventID, err := service.IngestEvent(req)

	assert.NoError(t, err)
	assert.NotEmpty(t, eventID)
	assert.Equal(t, eventID, published.EventID)
}

func TestEventService_IngestEvent_EmptyUserID(t *testing.T) {
	mockPublisher := new(MockQueuePublisher)
	log := zap.NewNop()

	service := NewEventService(mockPublisher, log)

	req := validRequest()
	req.UserID = "   "

	eventID, err := service.IngestEvent(req)

	assert.Error(t, err)
	assert.Empty(t, eventID)
	assert.Contains(t, err.Error(), "user_id must not be empty")
	mockPublisher.AssertNotCalled(t, "PublishEvent")
}

func TestEventService_IngestEvent_FutureTimestamp(t *testing.T) {
	mockPublisher := new(MockQueuePublisher)
	log := zap.NewNop()

	service := NewEventService(mockPublisher, log)

	req := validRequest()
	req.Timestamp = time.Now().Add(time.Hour)

	eventID, err := service.IngestEvent(req)

	assert.Error(t, err)
	assert.Empty(t, eventID)
	assert.Contains(t, err.Error(), "timestamp must not be in the future")
	mockPublisher.AssertNotCalled(t, "PublishEvent")
}

func TestEventService_IngestEvent_PublishError(t *testing.T) {
	mockPublisher := new(MockQueuePublisher)
	log := zap.NewNop()

	service := NewEventService(mockPublisher, log)

	publishErr := errors.New("queue publish error")
	mockPublisher.On("PublishEvent", mock.Anything, mock.AnythingOfType("*domain.Event")).Return(publishErr)

	eventID, err := service.IngestEvent(validRequest())

	assert.Error(t, err)
	assert.Empty(t, eventID)
	assert.Contains(t, err.Error(), "failed to publish event to queue")
	mockPublisher.AssertExpectations(t)
}

func TestEventService_IngestEvent_MarshalsProperties(t *testing.T) {
	mockPublisher := new(MockQueuePublisher)
	log := zap.NewNop()

	service := NewEventService(mockPublisher, log)

	var published *domain.Event
	mockPublisher.On("PublishEvent", mock.Anything, mock.AnythingOfType("*domain.Event")).
		Run(func(args mock.Arguments) {
			published = args.Get(1).(*domain.Event)
		}).
		Return(nil)

	req := validRequest()
	req.Properties = map[string]interface{}{"plan": "pro", "amount": 99.0}

	_, err := service.IngestEvent(req)

	assert.NoError(t, err)
	assert.JSONEq(t, `{"plan": "pro", "amount": 99.0}`, published.Properties)
}

func TestEventService_IngestEvent_EmptyPropertiesDefaultToObject(t *testing.T) {
	mockPublisher := new(MockQueuePublisher)
	log := zap.NewNop()

	service := NewEventService(mockPublisher, log)

	var published *domain.Event
	mockPublisher.On("PublishEvent", mock.Anything, mock.AnythingOfType("*domain.Event")).
		Run(func(args mock.Arguments) {
			published = args.Get(1).(*domain.Event)
		}).
		Return(nil)

	req := validRequest()
	req.Properties = nil

	_, err := service.IngestEvent(req)

	assert.NoError(t, err)
	assert.Equal(t, "{}", published.Properties)
}

func TestEventService_IngestBatch_AllSuccess(t *testing.T) {
	mockPublisher := new(MockQueuePublisher)
	log := zap.NewNop()

	service := NewEventService(mockPublisher, log)

	mockPublisher.On("PublishEvent", mock.Anything, mock.AnythingOfType("*domain.Event")).Return(nil).Times(2)

	events := []dto.IngestEventRequest{*validRequest(), *validRequest()}

	eventIDs, errs, err := service.IngestBatch(events)

	assert.NoError(t, err)
	assert.Len(t, eventIDs, 2)
	assert.Empty(t, errs)
	mockPublisher.AssertExpectations(t)
}

func TestEventService_IngestBatch_PartialFailure(t *testing.T) {
	mockPublisher := new(MockQueuePublisher)
	log := zap.NewNop()

	service := NewEventService(mockPublisher, log)

	mockPublisher.On("PublishEvent", mock.Anything, mock.AnythingOfType("*domain.Event")).Return(nil)

	invalid := *validRequest()
	invalid.UserID = ""

	events := []dto.IngestEventRequest{*validRequest(), invalid, *validRequest()}

	eventIDs, errs, err := service.IngestBatch(events)

	assert.NoError(t, err)
	assert.Len(t, eventIDs, 2)
	assert.Len(t, errs, 1)
}
