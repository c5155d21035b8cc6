package service

import (
	"context"

	"hrgate/internal/verify/models"
	"hrgate/internal/verify/pipeline"
	"hrgate/internal/verify/ports"
	"hrgate/internal/verify/session"
	dErrors "hrgate/pkg/domain-errors"
	"hrgate/pkg/platform/audit"
	"hrgate/pkg/requestcontext"
)

// StartSession creates and activates a verification session for one
// protected-resource activation. The session re-gathers the profile on every
// episode so a retry can recover from a transient fetch fault.
//
// The caller owns the returned session: it must Close it on teardown and may
// observe transitions via the listener option.
func (s *Service) StartSession(ctx context.Context, req EvaluateRequest, opts ...session.Option) (*session.Session, error) {
	if err := req.Policy.Validate(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid access policy")
	}

	runner := func(runCtx context.Context, onStep func(completed, total int)) models.VerificationOutcome {
		outcome := s.runOnce(runCtx, req, func(_ pipeline.Step, completed, total int) {
			if onStep != nil {
				onStep(completed, total)
			}
		})
		return s.applyDeviceHints(runCtx, req, outcome)
	}

	var sess *session.Session
	opts = append(opts,
		session.WithConfig(s.config),
		session.WithLogger(s.logger),
		session.WithProfileWaitObserver(func() {
			// Fires only after Activate, so sess is assigned by then.
			ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventProfileWaitTimedOut,
				"principal_id", req.PrincipalID,
				"session_id", sess.ID(),
			)
		}),
	)
	sess, err := session.New(runner, opts...)
	if err != nil {
		return nil, err
	}
	s.watchSession(ctx, req, sess)

	sess.Activate(ctx)
	s.signalProfileReadiness(ctx, req, sess)
	return sess, nil
}

// watchSession layers audit and metrics over the caller's listener.
func (s *Service) watchSession(ctx context.Context, req EvaluateRequest, sess *session.Session) {
	var inner session.Listener
	inner = sess.SwapListener(func(snap session.Snapshot) {
		if inner != nil {
			inner(snap)
		}
		switch {
		case snap.State == session.StateVerified:
			s.recordOutcomeSnapshot(ctx, req, snap)
		case snap.State == session.StateFailed && snap.Terminal:
			s.recordOutcomeSnapshot(ctx, req, snap)
			ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventRetriesExhausted,
				"principal_id", req.PrincipalID,
				"session_id", snap.ID,
				"attempt", snap.Attempt,
			)
		case snap.State == session.StateFailed:
			s.metrics.IncrementRetries()
			ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventRetryScheduled,
				"principal_id", req.PrincipalID,
				"session_id", snap.ID,
				"attempt", snap.Attempt,
			)
		}
	})
}

func (s *Service) recordOutcomeSnapshot(ctx context.Context, req EvaluateRequest, snap session.Snapshot) {
	if snap.Outcome != nil {
		s.recordOutcome(ctx, req, *snap.Outcome)
	}
}

// signalProfileReadiness signals the session once the profile collaborator can
// deliver. Partial-access policies never wait; otherwise one async fetch
// attempt decides, and on a fetch fault the bounded wait runs out on its own.
func (s *Service) signalProfileReadiness(ctx context.Context, req EvaluateRequest, sess *session.Session) {
	if req.Policy.AllowPartialAccess || req.PrincipalID == "" {
		sess.NotifyProfileReady()
		return
	}

	go func() {
		_, err := s.profiles.Fetch(ctx, req.PrincipalID)
		if err != nil && dErrors.CodeOf(err) != dErrors.CodeNotFound {
			s.logError(ctx, "profile readiness check failed",
				"principal_id", req.PrincipalID,
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
			return
		}
		// Found or definitively absent: either way the pipeline can decide.
		sess.NotifyProfileReady()
	}()
}
