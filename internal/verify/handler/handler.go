package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrgate/internal/roledetect"
	"hrgate/internal/verify/models"
	"hrgate/internal/verify/ports"
	"hrgate/internal/verify/service"
	dErrors "hrgate/pkg/domain-errors"
	"hrgate/pkg/platform/audit"
	"hrgate/pkg/platform/httputil"
	"hrgate/pkg/requestcontext"
)

// Service defines the interface for verification operations.
type Service interface {
	Evaluate(ctx context.Context, req service.EvaluateRequest) (models.VerificationOutcome, error)
}

// Detector defines the interface for role suggestion.
type Detector interface {
	Detect(identifier string) roledetect.Detection
}

// Handler wires verification endpoints to the verify service.
type Handler struct {
	service  Service
	detector Detector
	audit    ports.AuditPublisher
	logger   *slog.Logger
}

// New constructs a verify handler with its dependencies. The audit publisher
// may be nil; suspicious detection patterns are then only logged.
func New(service Service, detector Detector, auditPublisher ports.AuditPublisher, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		detector: detector,
		audit:    auditPublisher,
		logger:   logger,
	}
}

// Register mounts verification endpoints on the router. Auth middleware is
// applied to the verify endpoint only; role detection is a pre-login UX hint.
func (h *Handler) Register(r chi.Router, auth ...func(http.Handler) http.Handler) {
	r.With(auth...).Post("/verify", h.HandleVerify)
	r.Post("/roles/detect", h.HandleDetectRole)
}

// HandleVerify handles POST /v1/verify requests.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	// Require an authenticated principal
	employeeID := requestcontext.EmployeeID(ctx)
	if employeeID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	outcome, err := h.service.Evaluate(ctx, service.EvaluateRequest{
		PrincipalID: employeeID,
		Policy:      req.ParsedPolicy(),
		Signals:     req.ParsedSignals(),
		UserAgent:   r.UserAgent(),
	})
	if err != nil {
		h.logError(ctx, "verification failed",
			"request_id", requestID,
			"employee_id", employeeID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logInfo(ctx, "verification evaluated",
		"request_id", requestID,
		"employee_id", employeeID,
		"status", outcome.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromOutcome(outcome, requestcontext.Now(ctx)))
}

// HandleDetectRole handles POST /v1/roles/detect requests. The suggestion is
// a UX hint, so the endpoint is available before authentication.
func (h *Handler) HandleDetectRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[DetectRoleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	detection := h.detector.Detect(req.Identifier)

	h.logInfo(ctx, "role detected",
		"request_id", requestID,
		"role", detection.Role,
		"confidence", detection.Confidence,
		"flags", detection.Flags,
	)

	if len(detection.Flags) > 0 {
		ports.LogAudit(ctx, h.logger, h.audit, audit.EventSuspiciousRole,
			"request_id", requestID,
			"role", detection.Role,
			"confidence", detection.Confidence,
			"flags", detection.Flags,
		)
	}

	httputil.WriteJSON(w, http.StatusOK, FromDetection(detection))
}

func (h *Handler) logInfo(ctx context.Context, msg string, args ...any) {
	if h.logger != nil {
		h.logger.InfoContext(ctx, msg, args...)
	}
}

func (h *Handler) logError(ctx context.Context, msg string, args ...any) {
	if h.logger != nil {
		h.logger.ErrorContext(ctx, msg, args...)
	}
}
