// Package session owns the verification lifecycle: waiting for profile
// availability, driving the pipeline, bounded retry with fixed backoff, and
// cancellation. The pipeline itself stays pure; everything time- and
// state-shaped lives here.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"hrgate/internal/verify/config"
	"hrgate/internal/verify/models"
)

// State is the lifecycle position of a verification session.
type State string

const (
	StateIdle     State = "idle"
	StateChecking State = "checking"
	StateVerified State = "verified"
	StateFailed   State = "failed"
)

// RunFunc executes one pipeline episode. Implementations must honor ctx
// cancellation and always return a structured outcome. onStep observes step
// completion for progress rendering.
type RunFunc func(ctx context.Context, onStep func(completed, total int)) models.VerificationOutcome

// Snapshot is an immutable view of the session for rendering loading, denied,
// and success states.
type Snapshot struct {
	ID       string
	State    State
	Attempt  int
	Progress int
	// Terminal reports that no further transitions will occur: either
	// verified, or failed with retries exhausted.
	Terminal bool
	// Outcome is the most recent pipeline result, nil before the first
	// episode completes.
	Outcome *models.VerificationOutcome
}

// Listener observes state transitions. It is invoked with the session lock
// held so that no notification can arrive after Close returns; listeners must
// not call back into the session.
type Listener func(Snapshot)

// Session is a single-owner verification state machine. Exactly one caller
// context drives it; a guard flag prevents duplicate concurrent pipeline
// episodes from overlapping activation signals.
type Session struct {
	mu sync.Mutex

	id       string
	cfg      config.Engine
	run      RunFunc
	listener Listener
	logger   *slog.Logger

	state        State
	attempt      int
	progress     int
	inFlight     bool
	closed       bool
	activated    bool
	waiting      bool
	terminal     bool
	profileReady bool
	outcome      *models.VerificationOutcome
	onWaitExpiry func()

	ctx        context.Context
	waitTimer  *time.Timer
	retryTimer *time.Timer
}

// Option configures a Session.
type Option func(*Session)

// WithConfig overrides the engine defaults.
func WithConfig(cfg config.Engine) Option {
	return func(s *Session) {
		s.cfg = cfg
	}
}

// WithListener registers a transition listener.
func WithListener(listener Listener) Option {
	return func(s *Session) {
		s.listener = listener
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithProfileWaitObserver registers a callback fired when the profile wait
// expires and the session proceeds with whatever is available. Like the
// listener, it runs under the session lock and must not call back in.
func WithProfileWaitObserver(fn func()) Option {
	return func(s *Session) {
		s.onWaitExpiry = fn
	}
}

// New constructs an idle session around one pipeline runner.
func New(run RunFunc, opts ...Option) (*Session, error) {
	if run == nil {
		return nil, errors.New("session runner is required")
	}
	s := &Session{
		id:    uuid.NewString(),
		cfg:   config.DefaultEngine(),
		run:   run,
		state: StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ID returns the session's identifier.
func (s *Session) ID() string {
	return s.id
}

// Snapshot returns the current lifecycle view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Activate begins verification. If the profile collaborator has not signalled
// readiness yet, the session waits up to ProfileWaitTimeout before running
// with whatever is available; the timeout itself never denies access.
//
// Activate is idempotent: once verified it is a no-op, once terminally failed
// it does not re-enter checking, and a checking episode already in flight is
// never duplicated.
func (s *Session) Activate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state != StateIdle || s.activated {
		return
	}
	s.activated = true
	s.ctx = ctx

	if s.profileReady {
		s.beginCheckingLocked()
		return
	}

	s.waiting = true
	s.waitTimer = time.AfterFunc(s.cfg.ProfileWaitTimeout, s.onProfileWaitTimeout)
}

// NotifyProfileReady signals that the profile collaborator has delivered (or
// that the policy tolerates running without one). Cuts any pending wait
// short.
func (s *Session) NotifyProfileReady() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.profileReady = true
	if s.waiting {
		s.waiting = false
		s.stopTimersLocked()
		s.beginCheckingLocked()
	}
}

// SwapListener installs a new listener and returns the previous one (nil
// when none was set). Callers layering observation should invoke the returned
// listener from the new one. Must be called before Activate.
func (s *Session) SwapListener(listener Listener) Listener {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.listener
	s.listener = listener
	return prev
}

// Close tears the session down. Any scheduled retry or profile wait is
// cancelled and no state transition or listener call fires afterward.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopTimersLocked()
}

func (s *Session) onProfileWaitTimeout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.waiting {
		return
	}
	s.waiting = false
	if s.logger != nil {
		s.logger.Warn("profile wait timed out, verifying with available data",
			"session_id", s.id,
			"timeout", s.cfg.ProfileWaitTimeout,
		)
	}
	if s.onWaitExpiry != nil {
		s.onWaitExpiry()
	}
	s.beginCheckingLocked()
}

// beginCheckingLocked starts one episode. Caller holds the lock.
func (s *Session) beginCheckingLocked() {
	if s.closed || s.inFlight || s.terminal {
		return
	}

	s.state = StateChecking
	s.inFlight = true
	s.progress = 0
	s.notifyLocked()

	go s.runEpisode(s.ctx)
}

// runEpisode invokes the pipeline exactly once and applies the resulting
// transition. Runs without the lock held.
func (s *Session) runEpisode(ctx context.Context) {
	outcome := s.run(ctx, s.reportProgress)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight = false
	if s.closed || (ctx != nil && ctx.Err() != nil) {
		// The owner tore down mid-episode; discard the result.
		return
	}

	s.outcome = &outcome

	if outcome.Status == models.StatusVerified {
		s.state = StateVerified
		s.terminal = true
		s.progress = 100
		s.stopTimersLocked()
		s.notifyLocked()
		return
	}

	// Denied and pending both count against the retry budget; the state
	// machine cannot distinguish a slow collaborator from a policy denial
	// and treats both as a failed episode.
	s.state = StateFailed

	if s.attempt < s.cfg.MaxRetries {
		if s.logger != nil {
			s.logger.Info("verification failed, retry scheduled",
				"session_id", s.id,
				"attempt", s.attempt,
				"backoff", s.cfg.RetryBackoff,
			)
		}
		// The caller sees the intermediate failed state even though the
		// machine will self-retry.
		s.notifyLocked()
		s.retryTimer = time.AfterFunc(s.cfg.RetryBackoff, s.onRetry)
		return
	}

	s.terminal = true
	if s.logger != nil {
		s.logger.Warn("verification retries exhausted",
			"session_id", s.id,
			"attempt", s.attempt,
		)
	}
	s.notifyLocked()
}

func (s *Session) onRetry() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state != StateFailed {
		return
	}
	if s.ctx != nil && s.ctx.Err() != nil {
		return
	}
	s.attempt++
	s.beginCheckingLocked()
}

// reportProgress records pipeline step completion. Progress is monotonically
// non-decreasing within one episode; retries reset it via beginCheckingLocked.
func (s *Session) reportProgress(completed, total int) {
	if total <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state != StateChecking {
		return
	}
	if pct := completed * 100 / total; pct > s.progress {
		s.progress = pct
	}
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:       s.id,
		State:    s.state,
		Attempt:  s.attempt,
		Progress: s.progress,
		Terminal: s.terminal,
		Outcome:  s.outcome,
	}
}

func (s *Session) notifyLocked() {
	if s.listener != nil {
		s.listener(s.snapshotLocked())
	}
}

func (s *Session) stopTimersLocked() {
	if s.waitTimer != nil {
		s.waitTimer.Stop()
		s.waitTimer = nil
	}
	if s.retryTimer != nil {
		s.retryTimer.Stop()
		s.retryTimer = nil
	}
}
