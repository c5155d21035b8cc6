package handler

import (
	"time"

	"hrgate/internal/roledetect"
	"hrgate/internal/verify/models"
)

// VerifyResponse is the HTTP response for POST /v1/verify.
type VerifyResponse struct {
	Status        string          `json:"status"`
	DenialReason  *DenialResponse `json:"denial_reason,omitempty"`
	SecurityFlags []string        `json:"security_flags,omitempty"`
	EvaluatedAt   time.Time       `json:"evaluated_at"`
}

// DenialResponse is the structured reason portion of a denied outcome.
type DenialResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FromOutcome converts a verification outcome to an HTTP response.
func FromOutcome(outcome models.VerificationOutcome, evaluatedAt time.Time) *VerifyResponse {
	resp := &VerifyResponse{
		Status:        string(outcome.Status),
		SecurityFlags: []string(outcome.SecurityFlags),
		EvaluatedAt:   evaluatedAt,
	}
	if outcome.DenialReason != nil {
		resp.DenialReason = &DenialResponse{
			Code:    string(outcome.DenialReason.Code),
			Message: outcome.DenialReason.Message,
		}
	}
	return resp
}

// DetectRoleResponse is the HTTP response for POST /v1/roles/detect.
type DetectRoleResponse struct {
	Role             string   `json:"role"`
	Confidence       int      `json:"confidence"`
	RequiresApproval bool     `json:"requires_approval"`
	Alternatives     []string `json:"alternatives,omitempty"`
	Flags            []string `json:"flags,omitempty"`
}

// FromDetection converts a detection to an HTTP response.
func FromDetection(d roledetect.Detection) *DetectRoleResponse {
	return &DetectRoleResponse{
		Role:             d.Role,
		Confidence:       d.Confidence,
		RequiresApproval: d.RequiresApproval,
		Alternatives:     d.Alternatives,
		Flags:            d.Flags,
	}
}
