package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"hrgate/internal/verify/config"
	"hrgate/internal/verify/models"
)

// =============================================================================
// Session State Machine Test Suite
// =============================================================================
// Justification for unit tests: retry bounds, cancellation safety, and
// idempotent terminal states are timing-sensitive invariants that cannot be
// exercised deterministically through the HTTP surface.

type SessionSuite struct {
	suite.Suite

	mu        sync.Mutex
	snapshots []Snapshot
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.mu.Lock()
	s.snapshots = nil
	s.mu.Unlock()
}

func (s *SessionSuite) record(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snap)
}

func (s *SessionSuite) states() []State {
	s.mu.Lock()
	defer s.mu.Unlock()
	states := make([]State, len(s.snapshots))
	for i, snap := range s.snapshots {
		states[i] = snap.State
	}
	return states
}

func (s *SessionSuite) lastSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.snapshots) == 0 {
		return Snapshot{}
	}
	return s.snapshots[len(s.snapshots)-1]
}

// fastConfig keeps timer-driven tests quick.
func fastConfig() config.Engine {
	cfg := config.DefaultEngine()
	cfg.RetryBackoff = 5 * time.Millisecond
	cfg.ProfileWaitTimeout = 20 * time.Millisecond
	return cfg
}

// runnerFunc adapts a plain closure ignoring progress reporting.
func runnerFunc(fn func() models.VerificationOutcome) RunFunc {
	return func(_ context.Context, _ func(completed, total int)) models.VerificationOutcome {
		return fn()
	}
}

func deniedOutcome() models.VerificationOutcome {
	return models.Denied(models.AccountLockedDenial(), nil)
}

func (s *SessionSuite) awaitTerminal(sess *Session) Snapshot {
	s.Require().Eventually(func() bool {
		return sess.Snapshot().Terminal
	}, time.Second, time.Millisecond)
	return sess.Snapshot()
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *SessionSuite) TestNew() {
	s.Run("nil runner returns error", func() {
		_, err := New(nil)
		s.Error(err)
		s.Contains(err.Error(), "runner is required")
	})

	s.Run("new session starts idle", func() {
		sess, err := New(runnerFunc(func() models.VerificationOutcome { return models.Verified(nil) }))
		s.Require().NoError(err)
		snap := sess.Snapshot()
		s.Equal(StateIdle, snap.State)
		s.Zero(snap.Attempt)
		s.Zero(snap.Progress)
		s.False(snap.Terminal)
		s.NotEmpty(sess.ID())
	})
}

// =============================================================================
// Success Path Tests
// =============================================================================

func (s *SessionSuite) TestSuccessIsTerminalAndIdempotent() {
	var calls int
	var callsMu sync.Mutex
	sess, err := New(runnerFunc(func() models.VerificationOutcome {
		callsMu.Lock()
		calls++
		callsMu.Unlock()
		return models.Verified(nil)
	}), WithConfig(fastConfig()), WithListener(s.record))
	s.Require().NoError(err)

	sess.NotifyProfileReady()
	sess.Activate(context.Background())

	snap := s.awaitTerminal(sess)
	s.Equal(StateVerified, snap.State)
	s.Equal(100, snap.Progress)

	// Re-invoking the activation trigger must not re-run the pipeline or
	// change progress.
	sess.Activate(context.Background())
	sess.NotifyProfileReady()
	time.Sleep(20 * time.Millisecond)

	callsMu.Lock()
	s.Equal(1, calls)
	callsMu.Unlock()
	s.Equal(100, sess.Snapshot().Progress)
	s.Equal(StateVerified, sess.Snapshot().State)
}

// =============================================================================
// Retry Tests
// =============================================================================

func (s *SessionSuite) TestRetryBound() {
	var calls int
	var callsMu sync.Mutex
	sess, err := New(runnerFunc(func() models.VerificationOutcome {
		callsMu.Lock()
		calls++
		callsMu.Unlock()
		return deniedOutcome()
	}), WithConfig(fastConfig()), WithListener(s.record))
	s.Require().NoError(err)

	sess.NotifyProfileReady()
	sess.Activate(context.Background())

	snap := s.awaitTerminal(sess)
	s.Equal(StateFailed, snap.State)
	s.Equal(1, snap.Attempt, "default max retries is one")

	// maxRetries=1 means two episodes total.
	callsMu.Lock()
	s.Equal(2, calls)
	callsMu.Unlock()

	// A further external trigger does not re-enter checking.
	sess.Activate(context.Background())
	time.Sleep(20 * time.Millisecond)
	callsMu.Lock()
	s.Equal(2, calls)
	callsMu.Unlock()
	s.Equal(StateFailed, sess.Snapshot().State)
}

func (s *SessionSuite) TestIntermediateFailureIsObservable() {
	outcomes := []models.VerificationOutcome{deniedOutcome(), models.Verified(nil)}
	var call int
	var callMu sync.Mutex
	sess, err := New(runnerFunc(func() models.VerificationOutcome {
		callMu.Lock()
		defer callMu.Unlock()
		out := outcomes[call]
		call++
		return out
	}), WithConfig(fastConfig()), WithListener(s.record))
	s.Require().NoError(err)

	sess.NotifyProfileReady()
	sess.Activate(context.Background())

	snap := s.awaitTerminal(sess)
	s.Equal(StateVerified, snap.State)

	// The caller saw the intermediate failed state before the self-retry
	// recovered.
	s.Equal([]State{StateChecking, StateFailed, StateChecking, StateVerified}, s.states())
}

func (s *SessionSuite) TestDenialReasonPreservedOnExhaustion() {
	sess, err := New(runnerFunc(deniedOutcome), WithConfig(fastConfig()))
	s.Require().NoError(err)

	sess.NotifyProfileReady()
	sess.Activate(context.Background())

	snap := s.awaitTerminal(sess)
	s.Require().NotNil(snap.Outcome)
	s.Require().NotNil(snap.Outcome.DenialReason)
	s.Equal(models.ReasonAccountLocked, snap.Outcome.DenialReason.Code)
}

func (s *SessionSuite) TestPendingCountsAgainstRetryBudget() {
	// A profile that never arrives keeps the pipeline pending; the session
	// must still terminate instead of retrying forever.
	sess, err := New(runnerFunc(func() models.VerificationOutcome {
		return models.Pending(nil)
	}), WithConfig(fastConfig()))
	s.Require().NoError(err)

	sess.NotifyProfileReady()
	sess.Activate(context.Background())

	snap := s.awaitTerminal(sess)
	s.Equal(StateFailed, snap.State)
	s.Require().NotNil(snap.Outcome)
	s.Equal(models.StatusPending, snap.Outcome.Status)
}

// =============================================================================
// Profile Wait Tests
// =============================================================================

func (s *SessionSuite) TestProfileWaitTimeoutProceeds() {
	start := time.Now()
	sess, err := New(runnerFunc(func() models.VerificationOutcome {
		return models.Verified(nil)
	}), WithConfig(fastConfig()))
	s.Require().NoError(err)

	// No NotifyProfileReady: the session waits for the bounded timeout and
	// then verifies with whatever is available.
	sess.Activate(context.Background())
	s.Equal(StateIdle, sess.Snapshot().State)

	snap := s.awaitTerminal(sess)
	s.Equal(StateVerified, snap.State)
	s.GreaterOrEqual(time.Since(start), 20*time.Millisecond)
}

func (s *SessionSuite) TestProfileReadyCutsWaitShort() {
	sess, err := New(runnerFunc(func() models.VerificationOutcome {
		return models.Verified(nil)
	}), WithConfig(config.Engine{
		MaxRetries:         1,
		RetryBackoff:       5 * time.Millisecond,
		ProfileWaitTimeout: 10 * time.Second,
	}))
	s.Require().NoError(err)

	sess.Activate(context.Background())
	s.Equal(StateIdle, sess.Snapshot().State)

	sess.NotifyProfileReady()
	snap := s.awaitTerminal(sess)
	s.Equal(StateVerified, snap.State)
}

func (s *SessionSuite) TestProfileWaitObserver() {
	s.Run("fires when the wait runs out", func() {
		var expiries int
		var mu sync.Mutex
		sess, err := New(runnerFunc(func() models.VerificationOutcome {
			return models.Verified(nil)
		}), WithConfig(fastConfig()), WithProfileWaitObserver(func() {
			mu.Lock()
			expiries++
			mu.Unlock()
		}))
		s.Require().NoError(err)

		sess.Activate(context.Background())
		s.awaitTerminal(sess)

		mu.Lock()
		defer mu.Unlock()
		s.Equal(1, expiries)
	})

	s.Run("stays silent when the profile arrives first", func() {
		var expiries int
		var mu sync.Mutex
		sess, err := New(runnerFunc(func() models.VerificationOutcome {
			return models.Verified(nil)
		}), WithConfig(fastConfig()), WithProfileWaitObserver(func() {
			mu.Lock()
			expiries++
			mu.Unlock()
		}))
		s.Require().NoError(err)

		sess.NotifyProfileReady()
		sess.Activate(context.Background())
		s.awaitTerminal(sess)

		mu.Lock()
		defer mu.Unlock()
		s.Zero(expiries)
	})
}

// =============================================================================
// Cancellation Tests
// =============================================================================

func (s *SessionSuite) TestCloseCancelsPendingWork() {
	var calls int
	var callsMu sync.Mutex
	sess, err := New(runnerFunc(func() models.VerificationOutcome {
		callsMu.Lock()
		calls++
		callsMu.Unlock()
		return deniedOutcome()
	}), WithConfig(fastConfig()), WithListener(s.record))
	s.Require().NoError(err)

	sess.NotifyProfileReady()
	sess.Activate(context.Background())

	// Wait for the first failed episode, then tear down before the retry
	// timer fires.
	s.Require().Eventually(func() bool {
		return sess.Snapshot().State == StateFailed
	}, time.Second, time.Millisecond)
	sess.Close()

	observed := len(s.states())
	time.Sleep(30 * time.Millisecond)

	callsMu.Lock()
	s.Equal(1, calls, "scheduled retry must not fire after teardown")
	callsMu.Unlock()
	s.Equal(observed, len(s.states()), "no listener call after Close")
}

func (s *SessionSuite) TestCancelMidCheckingSuppressesTransition() {
	started := make(chan struct{})
	release := make(chan struct{})
	sess, err := New(runnerFunc(func() models.VerificationOutcome {
		close(started)
		<-release
		return models.Verified(nil)
	}), WithConfig(fastConfig()), WithListener(s.record))
	s.Require().NoError(err)

	sess.NotifyProfileReady()
	sess.Activate(context.Background())

	<-started
	sess.Close()
	close(release)

	time.Sleep(20 * time.Millisecond)
	snap := sess.Snapshot()
	s.Equal(StateChecking, snap.State, "no transition after teardown")
	s.Nil(snap.Outcome)
	s.Equal([]State{StateChecking}, s.states())
}

func (s *SessionSuite) TestOwnerContextCancellationDiscardsResult() {
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	release := make(chan struct{})
	sess, err := New(runnerFunc(func() models.VerificationOutcome {
		close(started)
		<-release
		return models.Verified(nil)
	}), WithConfig(fastConfig()))
	s.Require().NoError(err)

	sess.NotifyProfileReady()
	sess.Activate(ctx)

	<-started
	cancel()
	close(release)

	time.Sleep(20 * time.Millisecond)
	s.NotEqual(StateVerified, sess.Snapshot().State)
}
