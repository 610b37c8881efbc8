package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Logger records audit events.
type Logger interface {
	Log(ctx context.Context, event *Event) error
}

// NopLogger discards all events. Useful in tests and when auditing is
// disabled.
type NopLogger struct{}

// Log implements Logger.
func (NopLogger) Log(context.Context, *Event) error { return nil }

// DBLogger writes audit events to the audit_logs table.
type DBLogger struct {
	db *sql.DB
}

// NewDBLogger creates a database-backed audit logger.
func NewDBLogger(db *sql.DB) (*DBLogger, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	return &DBLogger{db: db}, nil
}

// Log inserts one audit event.
func (l *DBLogger) Log(ctx context.Context, event *Event) error {
	metadata, err := event.metadataJSON()
	if err != nil {
		return fmt.Errorf("encoding audit metadata: %w", err)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_logs (
			timestamp, event_type, status,
			actor_id, actor_role, ip_address, request_id,
			resource_type, resource_id, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = l.db.ExecContext(ctx, query,
		event.Timestamp, string(event.EventType), string(event.Status),
		nullable(event.ActorID), nullable(event.ActorRole),
		nullable(event.IPAddress), nullable(event.RequestID),
		nullable(event.ResourceType), nullable(event.ResourceID),
		metadata,
	)
	if err != nil {
		return fmt.Errorf("inserting audit event: %w", err)
	}
	return nil
}

// Query returns events matching the filter, most recent first.
func (l *DBLogger) Query(ctx context.Context, filter Filter) ([]*Event, error) {
	query := `
		SELECT id, timestamp, event_type, status,
		       COALESCE(actor_id, ''), COALESCE(actor_role, ''),
		       COALESCE(ip_address, ''), COALESCE(request_id, ''),
		       COALESCE(resource_type, ''), COALESCE(resource_id, '')
		FROM audit_logs WHERE 1=1`
	args := []interface{}{}

	if filter.EventType != "" {
		args = append(args, string(filter.EventType))
		query += fmt.Sprintf(" AND event_type = $%d", len(args))
	}
	if filter.ActorID != "" {
		args = append(args, filter.ActorID)
		query += fmt.Sprintf(" AND actor_id = $%d", len(args))
	}
	if filter.ResourceID != "" {
		args = append(args, filter.ResourceID)
		query += fmt.Sprintf(" AND resource_id = $%d", len(args))
	}
	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(
			&e.ID, &e.Timestamp, &e.EventType, &e.Status,
			&e.ActorID, &e.ActorRole, &e.IPAddress, &e.RequestID,
			&e.ResourceType, &e.ResourceID,
		); err != nil {
			return nil, fmt.Errorf("scanning audit event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Filter narrows an audit query. Zero values mean no constraint.
type Filter struct {
	EventType  EventType
	ActorID    string
	ResourceID string
	Limit      int
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
