package pipeline

import (
	"time"

	"hrgate/internal/verify/models"
)

// EligibilityResult reports the employment-based checks: a hard pass/fail
// with the first failing reason, plus any advisory flags accumulated on the
// way.
type EligibilityResult struct {
	OK     bool
	Reason *models.DenialReason
	Flags  models.Flags
}

// EvaluateEligibility applies the employment checks in a fixed order so the
// surfaced denial reason is reproducible:
//
//  1. employment status against the policy's allowed set
//  2. employment type against the policy's allowed set
//  3. account lock (absolute, no policy override)
//  4. probation window (advisory flag only, never a denial)
//  5. active flag
//
// The first hard failure wins. Pure function over its inputs; the caller
// supplies the evaluation instant.
func EvaluateEligibility(profile *models.PrincipalProfile, policy models.AccessPolicy, now time.Time) EligibilityResult {
	var flags models.Flags

	if !policy.AllowInactiveUsers && !policy.AllowsStatus(profile.EmploymentStatus) {
		reason := models.EmploymentStatusDenial(profile.EmploymentStatus)
		return EligibilityResult{Reason: &reason, Flags: flags}
	}

	if !policy.AllowsType(profile.EmploymentType) {
		reason := models.EmploymentTypeDenial(profile.EmploymentType)
		return EligibilityResult{Reason: &reason, Flags: flags}
	}

	if profile.AccountLocked {
		reason := models.AccountLockedDenial()
		return EligibilityResult{Reason: &reason, Flags: flags}
	}

	// Probation informs but does not block.
	if policy.CheckProbation && profile.OnProbationAt(now) {
		flags = flags.Add(models.ProbationFlag(*profile.ProbationEndDate))
	}

	if !profile.IsActive && !policy.AllowInactiveUsers {
		reason := models.AccountInactiveDenial()
		return EligibilityResult{Reason: &reason, Flags: flags}
	}

	return EligibilityResult{OK: true, Flags: flags}
}
