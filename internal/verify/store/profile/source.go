// Package profile assembles principal profile snapshots from HR records.
package profile

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"hrgate/internal/verify/metrics"
	"hrgate/internal/verify/models"
	"hrgate/internal/verify/ports"
	dErrors "hrgate/pkg/domain-errors"
)

const fetchTimeout = 3 * time.Second

// Source implements ports.ProfileSource over a ProfileStore. Employment and
// role grant records are fetched in parallel with shared cancellation.
type Source struct {
	store   ports.ProfileStore
	metrics *metrics.Metrics
}

// NewSource wires a profile source. Metrics may be nil.
func NewSource(store ports.ProfileStore, m *metrics.Metrics) (*Source, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "profile store is required")
	}
	return &Source{store: store, metrics: m}, nil
}

// Fetch gathers the employment record and role grant concurrently and
// assembles the snapshot. A missing employment record is a not-found error; a
// missing role grant is tolerated and yields a profile with the zero role.
func (s *Source) Fetch(ctx context.Context, employeeID string) (*models.PrincipalProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	var (
		emp   *ports.EmploymentRecord
		grant *ports.RoleGrant
	)

	g.Go(func() error {
		start := time.Now()
		rec, err := s.store.GetEmployment(ctx, employeeID)
		s.metrics.ObserveProfileFetchLatency("employment", time.Since(start))
		if err != nil {
			return err
		}
		emp = rec
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		rg, err := s.store.GetRoleGrant(ctx, employeeID)
		s.metrics.ObserveProfileFetchLatency("role_grant", time.Since(start))
		if err != nil {
			if dErrors.CodeOf(err) == dErrors.CodeNotFound {
				return nil
			}
			return err
		}
		grant = rg
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return ports.Profile(emp, grant), nil
}
