package publisher

import (
	"context"
	"sync"
	"testing"
	"time"

	audit "hrgate/pkg/platform/audit"
	"hrgate/pkg/platform/audit/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	event := audit.Event{
		EmployeeID: "emp-001",
		Action:     string(audit.EventAccessVerified),
	}

	err := pub.Emit(context.Background(), event)
	require.NoError(t, err)

	events, err := pub.List(context.Background(), "emp-001")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventAccessVerified), events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))
	defer pub.Close()

	event := audit.Event{
		EmployeeID: "emp-002",
		Action:     string(audit.EventAccessDenied),
	}

	err := pub.Emit(context.Background(), event)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		events, err := pub.List(context.Background(), "emp-002")
		return err == nil && len(events) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		event := audit.Event{
			EmployeeID: "emp-003",
			Action:     string(audit.EventRoleDetected),
		}
		err := pub.Emit(context.Background(), event)
		require.NoError(t, err)
	}

	// Close should drain all events
	pub.Close()

	events, err := store.ListByEmployee(context.Background(), "emp-003")
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_BufferFull_DropsEvent(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	// Fill the buffer with concurrent writes; Emit must never block or fail.
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			event := audit.Event{
				EmployeeID: "emp-004",
				Action:     string(audit.EventAccessVerified),
			}
			assert.NoError(t, pub.Emit(context.Background(), event))
		}()
	}
	wg.Wait()
}

func TestPublisher_DerivesCategoryFromAction(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		EmployeeID: "emp-005",
		Action:     string(audit.EventRetriesExhausted),
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), "emp-005")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.CategorySecurity, events[0].Category)
}

func TestPublisher_EmitAfterCloseDropsEvent(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(4))
	pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		EmployeeID: "emp-007",
		Action:     string(audit.EventAccessDenied),
	})
	require.NoError(t, err)

	events, err := store.ListByEmployee(context.Background(), "emp-007")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestPublisher_CloseIsIdempotent(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(4))
	pub.Close()
	pub.Close()
}

func TestPublisher_ConcurrentEmitAndClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(2))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = pub.Emit(context.Background(), audit.Event{
					EmployeeID: "emp-race",
					Action:     string(audit.EventAccessVerified),
				})
			}
		}()
	}
	pub.Close()
	wg.Wait()
}
