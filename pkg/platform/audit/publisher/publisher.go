// Package publisher delivers audit events to a store, synchronously by
// default or through a bounded in-process buffer.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	audit "hrgate/pkg/platform/audit"
)

// Publisher writes audit events to a backing store. In async mode events are
// queued on a bounded channel and flushed by a background goroutine; a full
// buffer drops the event rather than blocking the request path.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
	inbox  chan audit.Event
	done   chan struct{}
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to asynchronous delivery with the
// given buffer size.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

// WithLogger sets the logger used for delivery failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a publisher over the given store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store: store,
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		go p.drain()
	}
	return p
}

// Emit records one event. Sync mode writes through to the store; async mode
// enqueues and never blocks the caller. Emit after Close drops the event.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		if p.logger != nil {
			p.logger.Warn("audit publisher closed, dropping event", "action", event.Action)
		}
		return nil
	}

	if p.inbox == nil {
		// The store write runs outside the lock; the closed check only
		// guards the channel lifecycle.
		p.mu.Unlock()
		return p.store.Append(ctx, event)
	}

	select {
	case p.inbox <- event:
	default:
		// Audit delivery must not stall request handling.
		if p.logger != nil {
			p.logger.Warn("audit buffer full, dropping event", "action", event.Action)
		}
	}
	p.mu.Unlock()
	return nil
}

// List returns events for one employee.
func (p *Publisher) List(ctx context.Context, employeeID string) ([]audit.Event, error) {
	return p.store.ListByEmployee(ctx, employeeID)
}

// Close stops async delivery, draining any queued events first. Close is
// idempotent; Emit calls racing or following it drop their events instead of
// panicking on the closed channel.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	if p.inbox == nil {
		return
	}
	close(p.inbox)
	<-p.done
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		if err := p.store.Append(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Error("failed to persist audit event", "action", event.Action, "error", err)
		}
	}
}
