package consumer

import (
	"github.com/Suraj370/conversion-analytics-ab-platform/internal/domain"
)

// MessageParser defines the interface for parsing raw message bytes into events
type MessageParser interface {
	Parse(body []byte) (*domain.Event, error)
}
