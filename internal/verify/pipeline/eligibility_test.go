package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrgate/internal/verify/models"
)

var eligibilityNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func activeProfile() *models.PrincipalProfile {
	return &models.PrincipalProfile{
		EmployeeID:       "E100",
		EmploymentStatus: models.StatusActive,
		EmploymentType:   models.TypeFullTime,
		IsActive:         true,
		Role:             models.Role{Name: "employee", Level: 1},
	}
}

func TestEvaluateEligibility_Passes(t *testing.T) {
	result := EvaluateEligibility(activeProfile(), models.DefaultPolicy(), eligibilityNow)
	assert.True(t, result.OK)
	assert.Nil(t, result.Reason)
	assert.Empty(t, result.Flags)
}

func TestEvaluateEligibility_StatusDenial(t *testing.T) {
	profile := activeProfile()
	profile.EmploymentStatus = models.StatusOnLeave

	result := EvaluateEligibility(profile, models.DefaultPolicy(), eligibilityNow)
	require.NotNil(t, result.Reason)
	assert.False(t, result.OK)
	assert.Equal(t, models.ReasonEmploymentStatus, result.Reason.Code)
	assert.Equal(t, "Employment status 'on_leave' not permitted", result.Reason.Message)
}

func TestEvaluateEligibility_OrderingDeterminism(t *testing.T) {
	// A profile violating both the status rule and the lock rule must
	// surface the status failure: step 1 precedes step 3.
	profile := activeProfile()
	profile.EmploymentStatus = models.StatusTerminated
	profile.AccountLocked = true

	result := EvaluateEligibility(profile, models.DefaultPolicy(), eligibilityNow)
	require.NotNil(t, result.Reason)
	assert.Equal(t, models.ReasonEmploymentStatus, result.Reason.Code)
}

func TestEvaluateEligibility_TypeDenial(t *testing.T) {
	profile := activeProfile()
	profile.EmploymentType = models.TypeContract

	policy := models.DefaultPolicy()
	policy.RequiredEmploymentType = []models.EmploymentType{models.TypeFullTime}

	result := EvaluateEligibility(profile, policy, eligibilityNow)
	require.NotNil(t, result.Reason)
	assert.Equal(t, models.ReasonEmploymentType, result.Reason.Code)
	assert.Contains(t, result.Reason.Message, "contract")
}

func TestEvaluateEligibility_LockIsAbsolute(t *testing.T) {
	profile := activeProfile()
	profile.AccountLocked = true

	// Even a policy that tolerates inactive users cannot bypass a lock.
	policy := models.DefaultPolicy()
	policy.AllowInactiveUsers = true

	result := EvaluateEligibility(profile, policy, eligibilityNow)
	require.NotNil(t, result.Reason)
	assert.Equal(t, models.ReasonAccountLocked, result.Reason.Code)
}

func TestEvaluateEligibility_ProbationIsAdvisory(t *testing.T) {
	end := eligibilityNow.AddDate(0, 2, 0)
	profile := activeProfile()
	profile.ProbationEndDate = &end

	policy := models.DefaultPolicy()
	policy.CheckProbation = true

	result := EvaluateEligibility(profile, policy, eligibilityNow)
	assert.True(t, result.OK, "probation informs but does not block")
	assert.True(t, result.Flags.Has(models.ProbationFlag(end)))
}

func TestEvaluateEligibility_ProbationIgnoredWhenUnchecked(t *testing.T) {
	end := eligibilityNow.AddDate(0, 2, 0)
	profile := activeProfile()
	profile.ProbationEndDate = &end

	result := EvaluateEligibility(profile, models.DefaultPolicy(), eligibilityNow)
	assert.True(t, result.OK)
	assert.Empty(t, result.Flags)
}

func TestEvaluateEligibility_InactiveDenial(t *testing.T) {
	profile := activeProfile()
	profile.IsActive = false

	result := EvaluateEligibility(profile, models.DefaultPolicy(), eligibilityNow)
	require.NotNil(t, result.Reason)
	assert.Equal(t, models.ReasonAccountInactive, result.Reason.Code)

	t.Run("allow_inactive_users waives the check", func(t *testing.T) {
		policy := models.AccessPolicy{AllowInactiveUsers: true}
		result := EvaluateEligibility(profile, policy, eligibilityNow)
		assert.True(t, result.OK)
	})
}
