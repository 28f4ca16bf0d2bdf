package targets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
)

// PostgresStore persists targets in the carbon_targets table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const targetColumns = `
	id, company_id, description, baseline_year, baseline_co2e,
	target_year, target_co2e, scope_coverage, target_type,
	intensity_metric, status, created_at, updated_at`

func (s *PostgresStore) Save(ctx context.Context, target *Target) error {
	if target == nil {
		return dErrors.New(dErrors.CodeValidation, "target is required")
	}
	query := `
		INSERT INTO carbon_targets (` + targetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(target.ID),
		uuid.UUID(target.CompanyID),
		target.Description,
		target.BaselineYear,
		target.BaselineCO2e,
		target.TargetYear,
		target.TargetCO2e,
		target.ScopeCoverage,
		target.Type.String(),
		target.IntensityMetric,
		target.Status.String(),
		target.CreatedAt,
		target.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save target: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.TargetID) (*Target, error) {
	query := `SELECT ` + targetColumns + ` FROM carbon_targets WHERE id = $1`
	target, err := scanTarget(s.db.QueryRowContext(ctx, query, uuid.UUID(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "target %s not found", id)
		}
		return nil, fmt.Errorf("find target: %w", err)
	}
	return target, nil
}

func (s *PostgresStore) ListByCompany(ctx context.Context, companyID domain.CompanyID) ([]*Target, error) {
	query := `SELECT ` + targetColumns + ` FROM carbon_targets WHERE company_id = $1 ORDER BY target_year ASC`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(companyID))
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	defer rows.Close()

	var out []*Target
	for rows.Next() {
		target, err := scanTarget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan target: %w", err)
		}
		out = append(out, target)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate targets: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id domain.TargetID, status Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE carbon_targets SET status = $2, updated_at = NOW() WHERE id = $1`,
		uuid.UUID(id), status.String(),
	)
	if err != nil {
		return fmt.Errorf("update target status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update target status: %w", err)
	}
	if affected == 0 {
		return dErrors.Newf(dErrors.CodeNotFound, "target %s not found", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTarget(row rowScanner) (*Target, error) {
	var (
		target     Target
		id         uuid.UUID
		companyID  uuid.UUID
		targetType string
		status     string
	)
	err := row.Scan(
		&id,
		&companyID,
		&target.Description,
		&target.BaselineYear,
		&target.BaselineCO2e,
		&target.TargetYear,
		&target.TargetCO2e,
		&target.ScopeCoverage,
		&targetType,
		&target.IntensityMetric,
		&status,
		&target.CreatedAt,
		&target.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	target.ID = domain.TargetID(id)
	target.CompanyID = domain.CompanyID(companyID)
	target.Type = TargetType(targetType)
	target.Status = Status(status)
	return &target, nil
}
