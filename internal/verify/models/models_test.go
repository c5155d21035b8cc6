package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmploymentStatus_IsValid(t *testing.T) {
	valid := []EmploymentStatus{StatusActive, StatusOnLeave, StatusTerminated, StatusResigned, StatusRetired}
	for _, s := range valid {
		assert.True(t, s.IsValid(), "expected %q to be valid", s)
	}
	assert.False(t, EmploymentStatus("fired").IsValid())
	assert.False(t, EmploymentStatus("").IsValid())
}

func TestEmploymentType_IsValid(t *testing.T) {
	valid := []EmploymentType{TypeFullTime, TypePartTime, TypeContract, TypeIntern, TypeTemporary}
	for _, et := range valid {
		assert.True(t, et.IsValid(), "expected %q to be valid", et)
	}
	assert.False(t, EmploymentType("freelance").IsValid())
}

func TestRole_HasWildcard(t *testing.T) {
	assert.True(t, Role{Permissions: []string{"employees.read", "*"}}.HasWildcard())
	assert.False(t, Role{Permissions: []string{"employees.read"}}.HasWildcard())
	assert.False(t, Role{}.HasWildcard())
}

func TestPrincipalProfile_OnProbationAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("no probation date means not on probation", func(t *testing.T) {
		p := PrincipalProfile{EmployeeID: "E100"}
		assert.False(t, p.OnProbationAt(now))
	})

	t.Run("future end date means on probation", func(t *testing.T) {
		end := now.AddDate(0, 1, 0)
		p := PrincipalProfile{EmployeeID: "E100", ProbationEndDate: &end}
		assert.True(t, p.OnProbationAt(now))
	})

	t.Run("past end date means probation over", func(t *testing.T) {
		end := now.AddDate(0, -1, 0)
		p := PrincipalProfile{EmployeeID: "E100", ProbationEndDate: &end}
		assert.False(t, p.OnProbationAt(now))
	})
}

func TestAccessPolicy_Validate(t *testing.T) {
	t.Run("negative level rejected", func(t *testing.T) {
		err := AccessPolicy{RequiredLevel: -1}.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "required_level")
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		err := AccessPolicy{RequiredEmploymentStatus: []EmploymentStatus{"fired"}}.Validate()
		assert.Error(t, err)
	})

	t.Run("default policy valid", func(t *testing.T) {
		assert.NoError(t, DefaultPolicy().Validate())
	})
}

func TestAccessPolicy_Normalized(t *testing.T) {
	t.Run("empty status set defaults to active", func(t *testing.T) {
		p := AccessPolicy{}.Normalized()
		assert.Equal(t, []EmploymentStatus{StatusActive}, p.RequiredEmploymentStatus)
	})

	t.Run("explicit status set preserved", func(t *testing.T) {
		p := AccessPolicy{RequiredEmploymentStatus: []EmploymentStatus{StatusOnLeave}}.Normalized()
		assert.Equal(t, []EmploymentStatus{StatusOnLeave}, p.RequiredEmploymentStatus)
	})
}

func TestAccessPolicy_AllowsType(t *testing.T) {
	t.Run("empty type set is unconstrained", func(t *testing.T) {
		assert.True(t, AccessPolicy{}.AllowsType(TypeIntern))
	})

	t.Run("constrained set excludes others", func(t *testing.T) {
		p := AccessPolicy{RequiredEmploymentType: []EmploymentType{TypeFullTime, TypePartTime}}
		assert.True(t, p.AllowsType(TypeFullTime))
		assert.False(t, p.AllowsType(TypeContract))
	})
}

func TestFlags_Add(t *testing.T) {
	var f Flags
	f = f.Add(FlagPartialAccess)
	f = f.Add(FlagPartialAccess)
	f = f.Add(FlagElevatedRisk)
	assert.Equal(t, Flags{FlagPartialAccess, FlagElevatedRisk}, f)
	assert.True(t, f.Has(FlagElevatedRisk))
	assert.False(t, f.Has(FlagSessionHealthCritical))
}

func TestProbationFlag(t *testing.T) {
	end := time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "on_probation_until:2025-09-30T00:00:00Z", ProbationFlag(end))
}

func TestDenialReasons(t *testing.T) {
	t.Run("employment status names the actual status", func(t *testing.T) {
		r := EmploymentStatusDenial(StatusOnLeave)
		assert.Equal(t, ReasonEmploymentStatus, r.Code)
		assert.Equal(t, "Employment status 'on_leave' not permitted", r.Message)
	})

	t.Run("role mismatch names both roles", func(t *testing.T) {
		r := RoleMismatchDenial("hr_manager", "employee")
		assert.Equal(t, "Role 'employee' does not match required role 'hr_manager'", r.Message)
	})

	t.Run("level denial names both levels", func(t *testing.T) {
		r := LevelTooLowDenial(5, 3)
		assert.Equal(t, "Role level 3 is below required level 5", r.Message)
	})

	t.Run("missing permissions are listed in order", func(t *testing.T) {
		r := MissingPermissionsDenial([]string{"payroll.read", "payroll.export"})
		assert.Equal(t, "Missing required permissions: payroll.read, payroll.export", r.Message)
	})
}
