package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrgate/internal/verify/models"
	"hrgate/internal/verify/ports"
	dErrors "hrgate/pkg/domain-errors"
)

func seedStore() *MemoryStore {
	store := NewMemoryStore()
	store.PutEmployment(ports.EmploymentRecord{
		EmployeeID: "emp-100",
		Status:     models.StatusActive,
		Type:       models.TypeFullTime,
		IsActive:   true,
		UpdatedAt:  time.Now(),
	})
	store.PutRoleGrant(ports.RoleGrant{
		EmployeeID:  "emp-100",
		RoleName:    "hr_manager",
		DisplayName: "HR Manager",
		Level:       70,
		Permissions: []string{"read_employees", "write_employees"},
		GrantedAt:   time.Now(),
	})
	return store
}

func TestSourceFetch(t *testing.T) {
	t.Run("assembles profile from both records", func(t *testing.T) {
		source, err := NewSource(seedStore(), nil)
		require.NoError(t, err)

		profile, err := source.Fetch(context.Background(), "emp-100")
		require.NoError(t, err)
		require.NotNil(t, profile)

		assert.Equal(t, "emp-100", profile.EmployeeID)
		assert.Equal(t, models.StatusActive, profile.EmploymentStatus)
		assert.Equal(t, "hr_manager", profile.Role.Name)
		assert.Equal(t, 70, profile.Role.Level)
		assert.True(t, profile.IsActive)
	})

	t.Run("missing employment record is not found", func(t *testing.T) {
		source, err := NewSource(seedStore(), nil)
		require.NoError(t, err)

		_, err = source.Fetch(context.Background(), "emp-unknown")
		require.Error(t, err)
		assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
	})

	t.Run("missing role grant is tolerated", func(t *testing.T) {
		store := NewMemoryStore()
		store.PutEmployment(ports.EmploymentRecord{
			EmployeeID: "emp-norole",
			Status:     models.StatusActive,
			Type:       models.TypeIntern,
			IsActive:   true,
		})
		source, err := NewSource(store, nil)
		require.NoError(t, err)

		profile, err := source.Fetch(context.Background(), "emp-norole")
		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.Empty(t, profile.Role.Name)
		assert.Zero(t, profile.Role.Level)
	})

	t.Run("nil store is rejected", func(t *testing.T) {
		_, err := NewSource(nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "profile store is required")
	})
}

func TestProfileAssembly(t *testing.T) {
	t.Run("nil employment yields nil profile", func(t *testing.T) {
		assert.Nil(t, ports.Profile(nil, &ports.RoleGrant{RoleName: "employee"}))
	})

	t.Run("probation date carries through", func(t *testing.T) {
		end := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
		p := ports.Profile(&ports.EmploymentRecord{
			EmployeeID:       "emp-200",
			Status:           models.StatusActive,
			ProbationEndDate: &end,
		}, nil)
		require.NotNil(t, p)
		require.NotNil(t, p.ProbationEndDate)
		assert.True(t, p.OnProbationAt(end.Add(-24*time.Hour)))
		assert.False(t, p.OnProbationAt(end.Add(24*time.Hour)))
	})
}
