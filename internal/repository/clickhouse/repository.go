package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/Suraj370/conversion-analytics-ab-platform/internal/domain"
)

// Repository implements EventRepository for ClickHouse
type Repository struct {
	client *Client
	log    *zap.Logger
}

// NewRepository creates a new ClickHouse repository
func NewRepository(client *Client, log *zap.Logger) *Repository {
	return &Repository{
		client: client,
		log:    log,
	}
}

// InitSchema creates the raw_events table if it doesn't exist.
// ReplacingMergeTree on event_id gives insert idempotency: replayed events
// with the same event_id collapse to a single row.
func (r *Repository) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS raw_events (
		event_id String,
		user_id String,
		event_type LowCardinality(String),
		event_timestamp DateTime64(3),
		properties String,
		ingested_at DateTime64(3) DEFAULT now64(3)
	) ENGINE = ReplacingMergeTree
	PRIMARY KEY (event_id)
	ORDER BY (event_id)
	PARTITION BY toYYYYMM(event_timestamp)
	SETTINGS index_granularity = 8192
	`

	if err := r.client.Conn().Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create raw_events table: %w", err)
	}

	r.log.Info("ClickHouse schema initialized successfully")
	return nil
}

// InsertBatch inserts a batch of events into ClickHouse
func (r *Repository) InsertBatch(ctx context.Context, events []*domain.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx, "INSERT INTO raw_events")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare batch: %w", err)
	}

	insertedCount := 0
	for _, event := range events {
		if event.IngestedAt.IsZero() {
			event.IngestedAt = time.Now().UTC()
		}

		propertiesJSON := event.Properties
		if propertiesJSON == "" {
			propertiesJSON = "{}"
		}

		err := batch.Append(
			event.EventID,
			event.UserID,
			event.EventType,
			event.Timestamp,
			propertiesJSON,
			event.IngestedAt,
		)

		if err != nil {
			return 0, fmt.Errorf("failed to append event to batch: %w", err)
		}
		insertedCount++
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send batch: %w", err)
	}

	return insertedCount, nil
}

// FetchEvents reads the full event log as a single immutable snapshot.
// FINAL forces ReplacingMergeTree deduplication so replayed events appear
// once; ordering by (event_timestamp, event_id) makes downstream tie-breaking
// deterministic.
func (r *Repository) FetchEvents(ctx context.Context) ([]domain.Event, error) {
	query := `
		SELECT
			event_id,
			user_id,
			event_type,
			event_timestamp,
			properties,
			ingested_at
		FROM raw_events FINAL
		ORDER BY event_timestamp, event_id
	`

	rows, err := r.client.Conn().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer func(rows driver.Rows) {
		if err := rows.Close(); err != nil {
			r.log.Error("Failed to close event rows", zap.Error(err))
		}
	}(rows)

	var events []domain.Event
	for rows.Next() {
		var event domain.Event
		if err := rows.Scan(
			&event.EventID,
			&event.UserID,
			&event.EventType,
			&event.Timestamp,
			&event.Properties,
			&event.IngestedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}

// Ping checks if the ClickHouse connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Conn().Ping(ctx)
}

// Close closes the ClickHouse connection
func (r *Repository) Close() error {
	return r.client.Close()
}
