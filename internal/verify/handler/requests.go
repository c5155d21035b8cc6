package handler

import (
	"strings"

	"hrgate/internal/verify/models"
	dErrors "hrgate/pkg/domain-errors"
)

// VerifyRequest is the HTTP request body for POST /v1/verify.
type VerifyRequest struct {
	Policy  PolicyRequest  `json:"policy"`
	Signals SignalsRequest `json:"signals"`

	// Parsed values (populated by Validate)
	parsedPolicy  models.AccessPolicy
	parsedSignals models.Signals
}

// PolicyRequest mirrors the access policy configuration on the wire.
type PolicyRequest struct {
	RequiredRole             string   `json:"required_role"`
	RequiredLevel            int      `json:"required_level"`
	RequiredPermissions      []string `json:"required_permissions"`
	RequiredEmploymentStatus []string `json:"required_employment_status"`
	RequiredEmploymentType   []string `json:"required_employment_type"`
	AllowInactiveUsers       bool     `json:"allow_inactive_users"`
	CheckProbation           bool     `json:"check_probation"`
	AllowPartialAccess       bool     `json:"allow_partial_access"`
}

// SignalsRequest carries the advisory collaborator signals.
type SignalsRequest struct {
	SessionHealth string `json:"session_health"`
	RiskLevel     string `json:"risk_level"`
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *VerifyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	if r.Policy.RequiredLevel < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "policy.required_level cannot be negative")
	}
	if len(r.Policy.RequiredPermissions) > 100 {
		return dErrors.New(dErrors.CodeInvalidInput, "policy.required_permissions must have at most 100 entries")
	}

	statuses := make([]models.EmploymentStatus, 0, len(r.Policy.RequiredEmploymentStatus))
	for _, raw := range r.Policy.RequiredEmploymentStatus {
		status := models.EmploymentStatus(strings.TrimSpace(raw))
		if !status.IsValid() {
			return dErrors.Newf(dErrors.CodeInvalidInput, "unknown employment status %q", raw)
		}
		statuses = append(statuses, status)
	}

	types := make([]models.EmploymentType, 0, len(r.Policy.RequiredEmploymentType))
	for _, raw := range r.Policy.RequiredEmploymentType {
		etype := models.EmploymentType(strings.TrimSpace(raw))
		if !etype.IsValid() {
			return dErrors.Newf(dErrors.CodeInvalidInput, "unknown employment type %q", raw)
		}
		types = append(types, etype)
	}

	switch r.Signals.SessionHealth {
	case "", string(models.SessionHealthy), string(models.SessionDegraded), string(models.SessionCritical):
	default:
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown session health %q", r.Signals.SessionHealth)
	}
	switch r.Signals.RiskLevel {
	case "", string(models.RiskLow), string(models.RiskMedium), string(models.RiskHigh):
	default:
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown risk level %q", r.Signals.RiskLevel)
	}

	r.parsedPolicy = models.AccessPolicy{
		RequiredRole:             strings.TrimSpace(r.Policy.RequiredRole),
		RequiredLevel:            r.Policy.RequiredLevel,
		RequiredPermissions:      r.Policy.RequiredPermissions,
		RequiredEmploymentStatus: statuses,
		RequiredEmploymentType:   types,
		AllowInactiveUsers:       r.Policy.AllowInactiveUsers,
		CheckProbation:           r.Policy.CheckProbation,
		AllowPartialAccess:       r.Policy.AllowPartialAccess,
	}
	r.parsedSignals = models.Signals{
		SessionHealth: models.SessionHealth(r.Signals.SessionHealth),
		RiskLevel:     models.RiskLevel(r.Signals.RiskLevel),
	}
	return nil
}

// ParsedPolicy returns the validated access policy.
func (r *VerifyRequest) ParsedPolicy() models.AccessPolicy {
	return r.parsedPolicy
}

// ParsedSignals returns the validated advisory signals.
func (r *VerifyRequest) ParsedSignals() models.Signals {
	return r.parsedSignals
}

// DetectRoleRequest is the HTTP request body for POST /v1/roles/detect.
type DetectRoleRequest struct {
	Identifier string `json:"identifier"`
}

// Validate validates the request.
func (r *DetectRoleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Identifier = strings.TrimSpace(r.Identifier)
	if r.Identifier == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "identifier is required")
	}
	if len(r.Identifier) > 254 {
		return dErrors.New(dErrors.CodeInvalidInput, "identifier must be at most 254 characters")
	}
	return nil
}
