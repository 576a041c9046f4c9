package store

import (
	"context"
	"fmt"
	"log"

	"tharo/api/database"
	"tharo/api/models"
)

// ClickHouseEventStore is the EventStore backend for deployments that have
// outgrown the flat file. Retention beyond the read cap is left to table
// TTLs; the interface contract (insertion order, at most max events) is
// honored at read time.
type ClickHouseEventStore struct {
	DB  *database.ClickHouseClient
	max int
}

func NewClickHouseEventStore(chClient *database.ClickHouseClient, max int) *ClickHouseEventStore {
	if max <= 0 {
		max = 10000
	}
	return &ClickHouseEventStore{DB: chClient, max: max}
}

func (s *ClickHouseEventStore) Append(ctx context.Context, event models.AnalyticsEvent) error {
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO analytics_events (
			v, id, session_id, event_type, url, referrer, timestamp, channel,
			product_id, user_agent, ip
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}

	err = batch.Append(
		uint8(event.Version),
		event.ID,
		event.SessionID,
		event.EventType,
		event.URL,
		event.Referrer,
		event.Timestamp,
		event.Channel,
		event.ProductID,
		event.UserAgent,
		event.IP,
	)
	if err != nil {
		return fmt.Errorf("failed to append event %s to batch: %w", event.ID, err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send event batch: %w", err)
	}

	return nil
}

func (s *ClickHouseEventStore) ReadAll(ctx context.Context) ([]models.AnalyticsEvent, error) {
	query := `
		SELECT v, id, session_id, event_type, url, referrer, timestamp, channel,
		       product_id, user_agent, ip
		FROM analytics_events
		ORDER BY timestamp DESC
		LIMIT ?
	`
	rows, err := s.DB.Conn.Query(ctx, query, uint64(s.max))
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var newestFirst []models.AnalyticsEvent
	for rows.Next() {
		var (
			event   models.AnalyticsEvent
			version uint8
		)
		if err := rows.Scan(
			&version,
			&event.ID,
			&event.SessionID,
			&event.EventType,
			&event.URL,
			&event.Referrer,
			&event.Timestamp,
			&event.Channel,
			&event.ProductID,
			&event.UserAgent,
			&event.IP,
		); err != nil {
			log.Printf("Error scanning event row: %v", err)
			continue
		}
		event.Version = int(version)
		newestFirst = append(newestFirst, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error reading events: %w", err)
	}

	// Query returns newest first; callers expect insertion order.
	events := make([]models.AnalyticsEvent, len(newestFirst))
	for i, e := range newestFirst {
		events[len(newestFirst)-1-i] = e
	}
	return events, nil
}

func (s *ClickHouseEventStore) Close() error {
	s.DB.Close()
	return nil
}
