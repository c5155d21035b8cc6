// Package ports defines shared interfaces for the verify module.
// Interfaces are placed here when consumed by multiple services to avoid duplication.
package ports

import (
	"context"
	"log/slog"
	"time"

	"hrgate/internal/verify/models"
	"hrgate/pkg/platform/audit"
	"hrgate/pkg/requestcontext"
)

// ProfileStore reads the persistent HR records a principal profile is
// assembled from. Implementations are read-only; this engine never writes HR
// data.
type ProfileStore interface {
	// GetEmployment retrieves the employment record for an employee.
	GetEmployment(ctx context.Context, employeeID string) (*EmploymentRecord, error)

	// GetRoleGrant retrieves the current role grant for an employee.
	GetRoleGrant(ctx context.Context, employeeID string) (*RoleGrant, error)
}

// ProfileSource assembles full principal profiles. It sits above ProfileStore
// and may add caching or parallel gathering.
type ProfileSource interface {
	// Fetch returns the profile snapshot for an employee, or a not-found
	// error when no employment record exists.
	Fetch(ctx context.Context, employeeID string) (*models.PrincipalProfile, error)
}

// AuditPublisher emits audit events for security-relevant operations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// EmploymentRecord is the stored employment state of one employee (port
// model). It carries no role data; roles are granted separately.
type EmploymentRecord struct {
	EmployeeID       string
	Status           models.EmploymentStatus
	Type             models.EmploymentType
	AccountLocked    bool
	IsActive         bool
	ProbationEndDate *time.Time
	UpdatedAt        time.Time
}

// RoleGrant is the stored role assignment of one employee (port model).
type RoleGrant struct {
	EmployeeID  string
	RoleName    string
	DisplayName string
	Level       int
	Permissions []string
	GrantedAt   time.Time
}

// Profile assembles the verification-facing snapshot from the two stored
// records.
func Profile(emp *EmploymentRecord, grant *RoleGrant) *models.PrincipalProfile {
	if emp == nil {
		return nil
	}
	p := &models.PrincipalProfile{
		EmployeeID:       emp.EmployeeID,
		EmploymentStatus: emp.Status,
		EmploymentType:   emp.Type,
		AccountLocked:    emp.AccountLocked,
		IsActive:         emp.IsActive,
		ProbationEndDate: emp.ProbationEndDate,
	}
	if grant != nil {
		p.Role = models.Role{
			Name:        grant.RoleName,
			DisplayName: grant.DisplayName,
			Level:       grant.Level,
			Permissions: grant.Permissions,
		}
	}
	return p
}

// LogAudit is a shared helper for logging audit events across verify services.
// It logs to both the structured logger and the audit publisher if available.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event audit.AuditEvent, attrs ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}
	args := append(attrs, "event", string(event), "log_type", "audit")

	if logger != nil {
		logger.InfoContext(ctx, string(event), args...)
	}

	if publisher == nil {
		return
	}
	if err := publisher.Emit(ctx, audit.Event{Action: string(event), Timestamp: requestcontext.Now(ctx)}); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}
