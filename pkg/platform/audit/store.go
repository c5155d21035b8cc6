package audit

import "context"

// Store persists audit events. Implementations must be safe for concurrent
// use.
type Store interface {
	// Append records one event.
	Append(ctx context.Context, event Event) error

	// ListByEmployee returns events for a specific employee, newest first.
	ListByEmployee(ctx context.Context, employeeID string) ([]Event, error)

	// ListRecent returns the most recent N events across all employees.
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
