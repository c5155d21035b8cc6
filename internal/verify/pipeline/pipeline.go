// Package pipeline implements the ordered access-verification checks. All
// functions here are pure domain logic: no I/O, no side effects, no retained
// state. Retry, waiting, and scheduling live in the session package.
package pipeline

import (
	"time"

	"hrgate/internal/verify/models"
)

// Step names one pipeline stage, exposed for progress observation only.
type Step string

const (
	StepIdentity    Step = "identity"
	StepProfile     Step = "profile"
	StepEligibility Step = "eligibility"
	StepRole        Step = "role"
	StepLevel       Step = "level"
	StepPermissions Step = "permissions"
)

// Steps is the fixed evaluation order. Later steps depend on earlier ones not
// having failed; the chain short-circuits and is not parallelizable.
var Steps = []Step{StepIdentity, StepProfile, StepEligibility, StepRole, StepLevel, StepPermissions}

// FlagMissingPermissions marks a permission shortfall that a partial-access
// policy downgraded from a denial to an advisory flag.
const FlagMissingPermissions = "missing_permissions"

// Input carries one verification pass's read-only inputs.
type Input struct {
	// PrincipalID identifies the signed-in principal. Empty means no session
	// exists at all.
	PrincipalID string

	// Profile is the HR snapshot, nil when the profile collaborator has not
	// delivered one.
	Profile *models.PrincipalProfile

	Policy  models.AccessPolicy
	Signals models.Signals

	// Now is the single evaluation instant for all time-windowed checks.
	Now time.Time

	// OnStep, when set, observes step completion for progress rendering. It
	// is never a correctness input.
	OnStep func(step Step, completed, total int)
}

func (in Input) observe(step Step, completed int) {
	if in.OnStep != nil {
		in.OnStep(step, completed, len(Steps))
	}
}

// Run executes the verification pipeline: identity presence, profile
// availability, eligibility, role, level, permissions, each able to
// short-circuit to a denial. It always returns a structured outcome; internal
// faults surface as an internal_verification_error denial rather than a
// panic.
func Run(in Input) (outcome models.VerificationOutcome) {
	var flags models.Flags
	defer func() {
		if r := recover(); r != nil {
			// flags is read here, not the named return: at panic time the
			// return value is still zero while flags holds everything
			// accumulated so far.
			outcome = models.Denied(models.InternalErrorDenial(), flags)
		}
	}()

	policy := in.Policy.Normalized()
	flags = signalFlags(in.Signals)

	// Step 1: identity presence. The only step independent of policy.
	if in.PrincipalID == "" {
		return models.Denied(models.AuthenticationRequired(), flags)
	}
	in.observe(StepIdentity, 1)

	// Step 2: profile availability.
	if in.Profile == nil {
		if policy.AllowPartialAccess {
			// Degraded grant: the remaining profile-dependent checks are
			// treated as satisfied.
			flags = flags.Add(models.FlagPartialAccess)
			in.observe(StepPermissions, len(Steps))
			return models.Verified(flags)
		}
		// Soft-pending: the state machine decides whether to keep waiting or
		// count this episode as failed.
		return models.Pending(flags)
	}
	in.observe(StepProfile, 2)

	// Step 3: eligibility.
	eligibility := EvaluateEligibility(in.Profile, policy, in.Now)
	for _, f := range eligibility.Flags {
		flags = flags.Add(f)
	}
	if !eligibility.OK {
		return models.Denied(*eligibility.Reason, flags)
	}
	in.observe(StepEligibility, 3)

	// Step 4: role match.
	if policy.RequiredRole != "" && in.Profile.Role.Name != policy.RequiredRole {
		return models.Denied(models.RoleMismatchDenial(policy.RequiredRole, in.Profile.Role.Name), flags)
	}
	in.observe(StepRole, 4)

	// Step 5: level match.
	if in.Profile.Role.Level < policy.RequiredLevel {
		return models.Denied(models.LevelTooLowDenial(policy.RequiredLevel, in.Profile.Role.Level), flags)
	}
	in.observe(StepLevel, 5)

	// Step 6: permission match.
	if !HasPermissions(in.Profile.Role, policy.RequiredPermissions) {
		missing := MissingPermissions(in.Profile.Role, policy.RequiredPermissions)
		if !policy.AllowPartialAccess {
			return models.Denied(models.MissingPermissionsDenial(missing), flags)
		}
		flags = flags.Add(FlagMissingPermissions)
	}
	in.observe(StepPermissions, 6)

	return models.Verified(flags)
}

// signalFlags maps the collaborator's advisory signals to security flags.
// They never alter the pass/fail decision.
func signalFlags(signals models.Signals) models.Flags {
	var flags models.Flags
	switch signals.SessionHealth {
	case models.SessionDegraded:
		flags = flags.Add(models.FlagSessionHealthDegraded)
	case models.SessionCritical:
		flags = flags.Add(models.FlagSessionHealthCritical)
	}
	if signals.RiskLevel == models.RiskHigh {
		flags = flags.Add(models.FlagElevatedRisk)
	}
	return flags
}
