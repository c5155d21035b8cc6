package profile

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrgate/internal/verify/models"
	"hrgate/internal/verify/ports"
	dErrors "hrgate/pkg/domain-errors"
)

// PostgresStore reads employment and role grant records from the HR database.
// This service has read-only access; writes belong to the HR system of
// record.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) GetEmployment(ctx context.Context, employeeID string) (*ports.EmploymentRecord, error) {
	query := `
		SELECT employee_id, status, employment_type, account_locked,
		       is_active, probation_end_date, updated_at
		FROM employment_records
		WHERE employee_id = $1
	`

	var (
		rec    ports.EmploymentRecord
		status string
		etype  string
	)
	err := s.pool.QueryRow(ctx, query, employeeID).Scan(
		&rec.EmployeeID,
		&status,
		&etype,
		&rec.AccountLocked,
		&rec.IsActive,
		&rec.ProbationEndDate,
		&rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "employment record not found for %q", employeeID)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "query employment record")
	}

	rec.Status = models.EmploymentStatus(status)
	rec.Type = models.EmploymentType(etype)
	return &rec, nil
}

func (s *PostgresStore) GetRoleGrant(ctx context.Context, employeeID string) (*ports.RoleGrant, error) {
	// Employees can hold historical grants; only the newest one is in force.
	query := `
		SELECT employee_id, role_name, display_name, level, permissions, granted_at
		FROM role_grants
		WHERE employee_id = $1
		ORDER BY granted_at DESC
		LIMIT 1
	`

	var grant ports.RoleGrant
	err := s.pool.QueryRow(ctx, query, employeeID).Scan(
		&grant.EmployeeID,
		&grant.RoleName,
		&grant.DisplayName,
		&grant.Level,
		&grant.Permissions,
		&grant.GrantedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "role grant not found for %q", employeeID)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "query role grant")
	}

	return &grant, nil
}
