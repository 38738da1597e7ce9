package consumer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Suraj370/conversion-analytics-ab-platform/internal/domain"
)

// JSONEventParser implements MessageParser for JSON-formatted event messages
type JSONEventParser struct{}

// NewJSONEventParser creates a new JSON event parser
func NewJSONEventParser() *JSONEventParser {
	return &JSONEventParser{}
}

// Parse parses a JSON message body into an Event. Events missing the
// required envelope fields (event_id, user_id, event_type, timestamp) are
// rejected so they never reach the event store.
func (p *JSONEventParser) Parse(body []byte) (*domain.Event, error) {
	var msgBody map[string]interface{}
	if err := json.Unmarshal(body, &msgBody); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message body: %w", err)
	}

	eventID := getStringField(msgBody, "event_id")
	if eventID == "" {
		return nil, fmt.Errorf("message missing event_id")
	}

	userID := strings.TrimSpace(getStringField(msgBody, "user_id"))
	if userID == "" {
		return nil, fmt.Errorf("message missing user_id")
	}

	eventType := getStringField(msgBody, "event_type")
	if eventType == "" {
		return nil, fmt.Errorf("message missing event_type")
	}

	rawTimestamp := getStringField(msgBody, "timestamp")
	timestamp, err := time.Parse(time.RFC3339Nano, rawTimestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp %q: %w", rawTimestamp, err)
	}

	propertiesJSON := "{}"
	if properties, ok := msgBody["properties"].(map[string]interface{}); ok && len(properties) > 0 {
		propertiesBytes, err := json.Marshal(properties)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal properties: %w", err)
		}
		propertiesJSON = string(propertiesBytes)
	}

	event := &domain.Event{
		EventID:    eventID,
		UserID:     userID,
		EventType:  eventType,
		Timestamp:  timestamp,
		Properties: propertiesJSON,
		IngestedAt: time.Now().UTC(),
	}

	return event, nil
}

func getStringField(m map[string]interface{}, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}
