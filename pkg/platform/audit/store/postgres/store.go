package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	audit "hrgate/pkg/platform/audit"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Store implements audit.Store on PostgreSQL. Events are append-only; nothing
// in this service updates or deletes audit rows.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts one audit event. The category is always derived from the
// action so the eventCategories map stays the source of truth.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	category := audit.AuditEvent(event.Action).Category()

	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_events (
			id, category, timestamp, employee_id, subject, action,
			decision, reason, request_id, ip, security_flags
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.New(),
		string(category),
		ts,
		event.EmployeeID,
		event.Subject,
		event.Action,
		event.Decision,
		event.Reason,
		event.RequestID,
		event.IP,
		pq.Array(event.SecurityFlags),
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByEmployee returns events for a specific employee, newest first.
func (s *Store) ListByEmployee(ctx context.Context, employeeID string) ([]audit.Event, error) {
	query := `
		SELECT category, timestamp, employee_id, subject, action,
			   decision, reason, request_id, ip, security_flags
		FROM audit_events
		WHERE employee_id = $1
		ORDER BY timestamp DESC
	`

	rows, err := s.db.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListRecent returns the N most recent events.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `
		SELECT category, timestamp, employee_id, subject, action,
			   decision, reason, request_id, ip, security_flags
		FROM audit_events
		ORDER BY timestamp DESC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event

	for rows.Next() {
		var (
			category string
			event    audit.Event
			flags    pq.StringArray
		)

		err := rows.Scan(
			&category,
			&event.Timestamp,
			&event.EmployeeID,
			&event.Subject,
			&event.Action,
			&event.Decision,
			&event.Reason,
			&event.RequestID,
			&event.IP,
			&flags,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}

		event.Category = audit.EventCategory(category)
		event.SecurityFlags = []string(flags)

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}

	return events, nil
}
