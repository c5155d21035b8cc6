//go:build integration

package profile_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"hrgate/internal/verify/models"
	"hrgate/internal/verify/ports"
	"hrgate/internal/verify/store/profile"
	"hrgate/pkg/testutil/containers"
)

type CachedSourceSuite struct {
	suite.Suite
	cache *redis.Client
	store *profile.MemoryStore
}

func TestCachedSourceSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CachedSourceSuite))
}

func (s *CachedSourceSuite) SetupSuite() {
	s.cache = containers.StartRedis(s.T())
}

func (s *CachedSourceSuite) SetupTest() {
	s.Require().NoError(s.cache.FlushAll(context.Background()).Err())
	s.store = profile.NewMemoryStore()
	s.store.PutEmployment(ports.EmploymentRecord{
		EmployeeID: "emp-cache",
		Status:     models.StatusActive,
		Type:       models.TypeFullTime,
		IsActive:   true,
	})
	s.store.PutRoleGrant(ports.RoleGrant{
		EmployeeID:  "emp-cache",
		RoleName:    "employee",
		Level:       10,
		Permissions: []string{"read_self"},
	})
}

func (s *CachedSourceSuite) newCached() *profile.CachedSource {
	inner, err := profile.NewSource(s.store, nil)
	s.Require().NoError(err)
	return profile.NewCachedSource(inner, s.cache, 5*time.Minute, nil, nil)
}

func (s *CachedSourceSuite) TestReadThrough() {
	ctx := context.Background()
	cached := s.newCached()

	p, err := cached.Fetch(ctx, "emp-cache")
	s.Require().NoError(err)
	s.Equal("employee", p.Role.Name)

	// Second fetch serves the snapshot even after the backing record changes.
	s.store.PutRoleGrant(ports.RoleGrant{
		EmployeeID: "emp-cache",
		RoleName:   "hr_manager",
		Level:      70,
	})
	p, err = cached.Fetch(ctx, "emp-cache")
	s.Require().NoError(err)
	s.Equal("employee", p.Role.Name)
}

func (s *CachedSourceSuite) TestInvalidate() {
	ctx := context.Background()
	cached := s.newCached()

	_, err := cached.Fetch(ctx, "emp-cache")
	s.Require().NoError(err)

	s.store.PutRoleGrant(ports.RoleGrant{
		EmployeeID: "emp-cache",
		RoleName:   "hr_manager",
		Level:      70,
	})
	s.Require().NoError(cached.Invalidate(ctx, "emp-cache"))

	p, err := cached.Fetch(ctx, "emp-cache")
	s.Require().NoError(err)
	s.Equal("hr_manager", p.Role.Name)
}

func (s *CachedSourceSuite) TestMissPassesThroughNotFound() {
	_, err := s.newCached().Fetch(context.Background(), "emp-absent")
	s.Require().Error(err)
}
