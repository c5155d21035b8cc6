// Package service orchestrates access verification: it gathers the principal
// profile, drives the pipeline, and emits audit events and metrics around the
// decision.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"hrgate/internal/verify/config"
	"hrgate/internal/verify/device"
	"hrgate/internal/verify/metrics"
	"hrgate/internal/verify/models"
	"hrgate/internal/verify/pipeline"
	"hrgate/internal/verify/ports"
	dErrors "hrgate/pkg/domain-errors"
	"hrgate/pkg/platform/audit"
	"hrgate/pkg/requestcontext"
)

// AuditPublisher is an alias to the shared interface.
type AuditPublisher = ports.AuditPublisher

// Service evaluates access for principals against caller-supplied policies.
type Service struct {
	profiles       ports.ProfileSource
	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	config         config.Engine
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithConfig(cfg config.Engine) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

func New(profiles ports.ProfileSource, opts ...Option) (*Service, error) {
	if profiles == nil {
		return nil, errors.New("profile source is required")
	}

	svc := &Service{
		profiles: profiles,
		config:   config.DefaultEngine(),
		tracer:   otel.Tracer("hrgate/verify"),
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// EvaluateRequest is one single-pass verification request.
type EvaluateRequest struct {
	PrincipalID string
	Policy      models.AccessPolicy
	Signals     models.Signals
	// UserAgent, when present, feeds the advisory device analysis.
	UserAgent string
}

// Evaluate runs one verification pass. The returned outcome is always
// structured: profile-gathering faults surface as an internal-error denial,
// never as a raised error. Only an invalid policy is the caller's error.
func (s *Service) Evaluate(ctx context.Context, req EvaluateRequest) (models.VerificationOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "verify.evaluate",
		trace.WithAttributes(
			attribute.String("principal_id", req.PrincipalID),
			attribute.String("required_role", req.Policy.RequiredRole),
			attribute.Int("required_level", req.Policy.RequiredLevel),
		),
	)
	defer span.End()

	if err := req.Policy.Validate(); err != nil {
		return models.VerificationOutcome{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid access policy")
	}

	start := time.Now()
	outcome := s.runOnce(ctx, req, nil)
	s.metrics.ObserveEvaluateLatency(time.Since(start))

	outcome = s.applyDeviceHints(ctx, req, outcome)

	span.SetAttributes(attribute.String("outcome", string(outcome.Status)))
	s.recordOutcome(ctx, req, outcome)
	return outcome, nil
}

// runOnce fetches the profile and executes the pipeline exactly once. onStep
// observes pipeline progress when non-nil.
func (s *Service) runOnce(ctx context.Context, req EvaluateRequest, onStep func(step pipeline.Step, completed, total int)) models.VerificationOutcome {
	var profile *models.PrincipalProfile
	if req.PrincipalID != "" {
		fetched, err := s.profiles.Fetch(ctx, req.PrincipalID)
		switch {
		case err == nil:
			profile = fetched
		case dErrors.CodeOf(err) == dErrors.CodeNotFound:
			// No employment record: the pipeline decides between partial
			// access and pending.
		default:
			// Transient gathering fault. Counts as a denial for retry
			// purposes but is logged apart from policy denials.
			s.logError(ctx, "profile gathering failed", "principal_id", req.PrincipalID, "error", err)
			ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventProfileFetchFailed,
				"principal_id", req.PrincipalID,
			)
			s.metrics.IncrementStepStopped(string(pipeline.StepProfile))
			return models.Denied(models.InternalErrorDenial(), nil)
		}
	}

	var completed int
	outcome := pipeline.Run(pipeline.Input{
		PrincipalID: req.PrincipalID,
		Profile:     profile,
		Policy:      req.Policy,
		Signals:     req.Signals,
		Now:         requestcontext.Now(ctx),
		OnStep: func(step pipeline.Step, done, total int) {
			if done > completed {
				completed = done
			}
			if onStep != nil {
				onStep(step, done, total)
			}
		},
	})

	// A non-verified pass stopped at the first step it never completed.
	if outcome.Status != models.StatusVerified && completed < len(pipeline.Steps) {
		s.metrics.IncrementStepStopped(string(pipeline.Steps[completed]))
	}
	return outcome
}

// applyDeviceHints appends advisory device flags to the outcome.
func (s *Service) applyDeviceHints(ctx context.Context, req EvaluateRequest, outcome models.VerificationOutcome) models.VerificationOutcome {
	rawUA := req.UserAgent
	if rawUA == "" {
		rawUA = requestcontext.UserAgent(ctx)
	}
	if rawUA == "" {
		return outcome
	}
	for _, flag := range device.Inspect(rawUA).Flags() {
		outcome.SecurityFlags = outcome.SecurityFlags.Add(flag)
	}
	return outcome
}

func (s *Service) recordOutcome(ctx context.Context, req EvaluateRequest, outcome models.VerificationOutcome) {
	var reason string
	if outcome.DenialReason != nil {
		reason = string(outcome.DenialReason.Code)
	}
	s.metrics.IncrementOutcome(string(outcome.Status), reason)

	event := audit.Event{
		Timestamp:     requestcontext.Now(ctx),
		EmployeeID:    req.PrincipalID,
		Subject:       req.Policy.RequiredRole,
		Decision:      string(outcome.Status),
		Reason:        reason,
		RequestID:     requestcontext.RequestID(ctx),
		IP:            requestcontext.ClientIP(ctx),
		SecurityFlags: []string(outcome.SecurityFlags),
	}
	switch outcome.Status {
	case models.StatusVerified:
		event.Action = string(audit.EventAccessVerified)
	case models.StatusDenied:
		event.Action = string(audit.EventAccessDenied)
		// Engine faults are filed under their own action so compliance
		// reviews can separate them from policy denials.
		if outcome.DenialReason != nil && outcome.DenialReason.Code == models.ReasonInternalError {
			event.Action = string(audit.EventVerificationInternal)
		}
	default:
		event.Action = string(audit.EventAccessPending)
	}

	s.logInfo(ctx, "verification outcome",
		"principal_id", req.PrincipalID,
		"status", outcome.Status,
		"reason", reason,
		"flags", outcome.SecurityFlags,
	)

	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logError(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}

func (s *Service) logInfo(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, msg, args...)
	}
}

func (s *Service) logError(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.ErrorContext(ctx, msg, args...)
	}
}
