package models

import (
	"fmt"
	"strings"
)

// ReasonCode is the machine-readable class of a denial. Presentation layers
// key localization off the code; Message is a ready-made English rendering
// for self-service diagnosis.
type ReasonCode string

const (
	ReasonAuthenticationRequired ReasonCode = "authentication_required"
	ReasonEmploymentStatus       ReasonCode = "employment_status_not_permitted"
	ReasonEmploymentType         ReasonCode = "employment_type_not_permitted"
	ReasonAccountLocked          ReasonCode = "account_locked"
	ReasonAccountInactive        ReasonCode = "account_inactive"
	ReasonRoleMismatch           ReasonCode = "role_mismatch"
	ReasonLevelTooLow            ReasonCode = "level_too_low"
	ReasonMissingPermissions     ReasonCode = "missing_permissions"
	ReasonInternalError          ReasonCode = "internal_verification_error"
)

// DenialReason is a structured denial explanation: a stable code plus its
// parameters rendered into a message. The engine never localizes.
type DenialReason struct {
	Code    ReasonCode `json:"code"`
	Message string     `json:"message"`
}

// AuthenticationRequired denies because no principal exists at all.
func AuthenticationRequired() DenialReason {
	return DenialReason{Code: ReasonAuthenticationRequired, Message: "Authentication required"}
}

// EmploymentStatusDenial names the actual status that fell outside the
// policy's allowed set.
func EmploymentStatusDenial(actual EmploymentStatus) DenialReason {
	return DenialReason{
		Code:    ReasonEmploymentStatus,
		Message: fmt.Sprintf("Employment status '%s' not permitted", actual),
	}
}

// EmploymentTypeDenial names the actual type that fell outside the policy's
// allowed set.
func EmploymentTypeDenial(actual EmploymentType) DenialReason {
	return DenialReason{
		Code:    ReasonEmploymentType,
		Message: fmt.Sprintf("Employment type '%s' not permitted", actual),
	}
}

// AccountLockedDenial is absolute: a locked account denies regardless of any
// other policy setting.
func AccountLockedDenial() DenialReason {
	return DenialReason{Code: ReasonAccountLocked, Message: "Account is locked"}
}

// AccountInactiveDenial denies an inactive account under a policy that does
// not allow inactive users.
func AccountInactiveDenial() DenialReason {
	return DenialReason{Code: ReasonAccountInactive, Message: "Account is inactive"}
}

// RoleMismatchDenial names both the required and actual role for
// self-service diagnosis.
func RoleMismatchDenial(required, actual string) DenialReason {
	return DenialReason{
		Code:    ReasonRoleMismatch,
		Message: fmt.Sprintf("Role '%s' does not match required role '%s'", actual, required),
	}
}

// LevelTooLowDenial names both levels.
func LevelTooLowDenial(required, actual int) DenialReason {
	return DenialReason{
		Code:    ReasonLevelTooLow,
		Message: fmt.Sprintf("Role level %d is below required level %d", actual, required),
	}
}

// MissingPermissionsDenial lists the permissions the role lacks.
func MissingPermissionsDenial(missing []string) DenialReason {
	return DenialReason{
		Code:    ReasonMissingPermissions,
		Message: fmt.Sprintf("Missing required permissions: %s", strings.Join(missing, ", ")),
	}
}

// InternalErrorDenial masks internal faults as a structured denial so the
// pipeline never propagates panics or raw errors past its boundary.
func InternalErrorDenial() DenialReason {
	return DenialReason{Code: ReasonInternalError, Message: "Internal verification error"}
}
