// Package models defines the closed data model for access verification.
// Profiles and policies are read-only inputs to every evaluation; nothing in
// this package mutates them after construction.
package models

import (
	"time"

	dErrors "hrgate/pkg/domain-errors"
)

// PermissionWildcard grants every permission. It short-circuits all
// permission checks.
const PermissionWildcard = "*"

// EmploymentStatus captures where an employee stands in the employment
// lifecycle.
type EmploymentStatus string

const (
	StatusActive     EmploymentStatus = "active"
	StatusOnLeave    EmploymentStatus = "on_leave"
	StatusTerminated EmploymentStatus = "terminated"
	StatusResigned   EmploymentStatus = "resigned"
	StatusRetired    EmploymentStatus = "retired"
)

// IsValid checks if the employment status is one of the supported enum values.
func (s EmploymentStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusOnLeave, StatusTerminated, StatusResigned, StatusRetired:
		return true
	}
	return false
}

// String returns the string representation.
func (s EmploymentStatus) String() string {
	return string(s)
}

// EmploymentType classifies the employment contract.
type EmploymentType string

const (
	TypeFullTime  EmploymentType = "full_time"
	TypePartTime  EmploymentType = "part_time"
	TypeContract  EmploymentType = "contract"
	TypeIntern    EmploymentType = "intern"
	TypeTemporary EmploymentType = "temporary"
)

// IsValid checks if the employment type is one of the supported enum values.
func (t EmploymentType) IsValid() bool {
	switch t {
	case TypeFullTime, TypePartTime, TypeContract, TypeIntern, TypeTemporary:
		return true
	}
	return false
}

// String returns the string representation.
func (t EmploymentType) String() string {
	return string(t)
}

// SessionHealth is an advisory signal from the identity collaborator. It is
// recorded as a security flag and never alters the pass/fail decision.
type SessionHealth string

const (
	SessionHealthy  SessionHealth = "healthy"
	SessionDegraded SessionHealth = "degraded"
	SessionCritical SessionHealth = "critical"
)

// RiskLevel is an advisory signal from the identity collaborator, flagged but
// never blocking.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Role is owned by the identity collaborator; this engine reads it and never
// mutates it.
type Role struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Level       int      `json:"level"`
	Permissions []string `json:"permissions"`
}

// HasWildcard reports whether the role carries the all-permissions sentinel.
func (r Role) HasWildcard() bool {
	for _, p := range r.Permissions {
		if p == PermissionWildcard {
			return true
		}
	}
	return false
}

// HasPermission reports whether the role carries a single named permission.
// The wildcard is not consulted here; callers wanting wildcard semantics use
// the pipeline's permission evaluator.
func (r Role) HasPermission(permission string) bool {
	for _, p := range r.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// PrincipalProfile is an immutable snapshot of the authenticated principal's
// HR attributes, supplied by the identity collaborator at session
// establishment. One snapshot backs exactly one verification pass.
type PrincipalProfile struct {
	EmployeeID       string           `json:"employee_id"`
	EmploymentStatus EmploymentStatus `json:"employment_status"`
	EmploymentType   EmploymentType   `json:"employment_type"`
	AccountLocked    bool             `json:"account_locked"`
	IsActive         bool             `json:"is_active"`
	ProbationEndDate *time.Time       `json:"probation_end_date,omitempty"`
	Role             Role             `json:"role"`
}

// OnProbationAt reports whether the principal is on probation at the given
// instant.
func (p *PrincipalProfile) OnProbationAt(now time.Time) bool {
	return p.ProbationEndDate != nil && p.ProbationEndDate.After(now)
}

// AccessPolicy is the caller-supplied requirement attached to one protected
// resource. It is configuration: construct it once, never mutate it during
// evaluation.
type AccessPolicy struct {
	RequiredRole             string             `json:"required_role,omitempty"`
	RequiredLevel            int                `json:"required_level"`
	RequiredPermissions      []string           `json:"required_permissions,omitempty"`
	RequiredEmploymentStatus []EmploymentStatus `json:"required_employment_status,omitempty"`
	RequiredEmploymentType   []EmploymentType   `json:"required_employment_type,omitempty"`
	AllowInactiveUsers       bool               `json:"allow_inactive_users"`
	CheckProbation           bool               `json:"check_probation"`
	AllowPartialAccess       bool               `json:"allow_partial_access"`
}

// DefaultPolicy returns the zero-requirement policy: any active employee
// passes.
func DefaultPolicy() AccessPolicy {
	return AccessPolicy{
		RequiredEmploymentStatus: []EmploymentStatus{StatusActive},
	}
}

// Validate enforces policy invariants at construction boundaries.
func (p AccessPolicy) Validate() error {
	if p.RequiredLevel < 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "required_level cannot be negative")
	}
	for _, s := range p.RequiredEmploymentStatus {
		if !s.IsValid() {
			return dErrors.Newf(dErrors.CodeInvariantViolation, "invalid employment status %q in policy", s)
		}
	}
	for _, t := range p.RequiredEmploymentType {
		if !t.IsValid() {
			return dErrors.Newf(dErrors.CodeInvariantViolation, "invalid employment type %q in policy", t)
		}
	}
	return nil
}

// Normalized returns a copy with defaults applied: an empty status set means
// "active only".
func (p AccessPolicy) Normalized() AccessPolicy {
	if len(p.RequiredEmploymentStatus) == 0 {
		p.RequiredEmploymentStatus = []EmploymentStatus{StatusActive}
	}
	return p
}

// AllowsStatus reports whether the policy's status set contains s.
func (p AccessPolicy) AllowsStatus(s EmploymentStatus) bool {
	for _, allowed := range p.RequiredEmploymentStatus {
		if allowed == s {
			return true
		}
	}
	return false
}

// AllowsType reports whether the policy's type set contains t. An empty set
// is unconstrained.
func (p AccessPolicy) AllowsType(t EmploymentType) bool {
	if len(p.RequiredEmploymentType) == 0 {
		return true
	}
	for _, allowed := range p.RequiredEmploymentType {
		if allowed == t {
			return true
		}
	}
	return false
}

// Signals are the advisory inputs from the identity collaborator.
type Signals struct {
	SessionHealth SessionHealth `json:"session_health,omitempty"`
	RiskLevel     RiskLevel     `json:"risk_level,omitempty"`
}

// VerificationStatus is the tri-state result of a pipeline run.
type VerificationStatus string

const (
	StatusVerified VerificationStatus = "verified"
	StatusDenied   VerificationStatus = "denied"
	StatusPending  VerificationStatus = "pending"
)

// VerificationOutcome is produced fresh by each pipeline run and never
// persisted by the engine.
type VerificationOutcome struct {
	Status        VerificationStatus `json:"status"`
	DenialReason  *DenialReason      `json:"denial_reason,omitempty"`
	SecurityFlags Flags              `json:"security_flags,omitempty"`
}

// Verified constructs a passing outcome carrying advisory flags.
func Verified(flags Flags) VerificationOutcome {
	return VerificationOutcome{Status: StatusVerified, SecurityFlags: flags}
}

// Denied constructs a denial carrying the first failing check's reason.
func Denied(reason DenialReason, flags Flags) VerificationOutcome {
	return VerificationOutcome{Status: StatusDenied, DenialReason: &reason, SecurityFlags: flags}
}

// Pending constructs the soft outcome used when the profile has not arrived
// and the policy does not tolerate partial access. The state machine decides
// whether to wait, retry, or give up.
func Pending(flags Flags) VerificationOutcome {
	return VerificationOutcome{Status: StatusPending, SecurityFlags: flags}
}

// Flags is an ordered set of non-fatal observations. Order of first insertion
// is preserved for deterministic output.
type Flags []string

// Add appends a flag if not already present.
func (f Flags) Add(flag string) Flags {
	for _, existing := range f {
		if existing == flag {
			return f
		}
	}
	return append(f, flag)
}

// Has reports whether the flag set contains flag.
func (f Flags) Has(flag string) bool {
	for _, existing := range f {
		if existing == flag {
			return true
		}
	}
	return false
}

// Security flags emitted by the engine. Probation uses a prefix because it
// carries the window end date as a parameter.
const (
	FlagPartialAccess         = "partial_access"
	FlagSessionHealthDegraded = "session_health_degraded"
	FlagSessionHealthCritical = "session_health_critical"
	FlagElevatedRisk          = "elevated_risk"
	FlagProbationPrefix       = "on_probation_until:"
)

// ProbationFlag renders the advisory probation flag with its end date.
func ProbationFlag(end time.Time) string {
	return FlagProbationPrefix + end.UTC().Format(time.RFC3339)
}
