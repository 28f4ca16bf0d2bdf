package initiatives

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
)

// PostgresStore persists initiatives in the carbon_reduction_initiatives
// table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const initiativeColumns = `
	id, company_id, name, description, initiative_type, target_scope,
	start_date, end_date, investment, expected_reduction_co2e,
	actual_reduction_co2e, status, notes, created_at, updated_at`

func (s *PostgresStore) Save(ctx context.Context, initiative *Initiative) error {
	if initiative == nil {
		return dErrors.New(dErrors.CodeValidation, "initiative is required")
	}
	query := `
		INSERT INTO carbon_reduction_initiatives (` + initiativeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(initiative.ID),
		uuid.UUID(initiative.CompanyID),
		initiative.Name,
		initiative.Description,
		initiative.InitiativeType,
		initiative.TargetScope.String(),
		nullTime(initiative.StartDate),
		nullTime(initiative.EndDate),
		initiative.Investment,
		initiative.ExpectedReductionCO2e,
		initiative.ActualReductionCO2e,
		initiative.Status.String(),
		initiative.Notes,
		initiative.CreatedAt,
		initiative.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save initiative: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.InitiativeID) (*Initiative, error) {
	query := `SELECT ` + initiativeColumns + ` FROM carbon_reduction_initiatives WHERE id = $1`
	initiative, err := scanInitiative(s.db.QueryRowContext(ctx, query, uuid.UUID(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "initiative %s not found", id)
		}
		return nil, fmt.Errorf("find initiative: %w", err)
	}
	return initiative, nil
}

func (s *PostgresStore) ListByCompany(ctx context.Context, companyID domain.CompanyID) ([]*Initiative, error) {
	query := `SELECT ` + initiativeColumns + ` FROM carbon_reduction_initiatives WHERE company_id = $1 ORDER BY created_at ASC`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(companyID))
	if err != nil {
		return nil, fmt.Errorf("list initiatives: %w", err)
	}
	defer rows.Close()

	var out []*Initiative
	for rows.Next() {
		initiative, err := scanInitiative(rows)
		if err != nil {
			return nil, fmt.Errorf("scan initiative: %w", err)
		}
		out = append(out, initiative)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate initiatives: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, initiative *Initiative) error {
	if initiative == nil {
		return dErrors.New(dErrors.CodeValidation, "initiative is required")
	}
	query := `
		UPDATE carbon_reduction_initiatives
		SET actual_reduction_co2e = $2, status = $3, end_date = $4,
		    notes = $5, updated_at = $6
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(initiative.ID),
		initiative.ActualReductionCO2e,
		initiative.Status.String(),
		nullTime(initiative.EndDate),
		initiative.Notes,
		initiative.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update initiative: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update initiative: %w", err)
	}
	if affected == 0 {
		return dErrors.Newf(dErrors.CodeNotFound, "initiative %s not found", initiative.ID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInitiative(row rowScanner) (*Initiative, error) {
	var (
		initiative Initiative
		id         uuid.UUID
		companyID  uuid.UUID
		scopeLabel string
		status     string
		startDate  sql.NullTime
		endDate    sql.NullTime
	)
	err := row.Scan(
		&id,
		&companyID,
		&initiative.Name,
		&initiative.Description,
		&initiative.InitiativeType,
		&scopeLabel,
		&startDate,
		&endDate,
		&initiative.Investment,
		&initiative.ExpectedReductionCO2e,
		&initiative.ActualReductionCO2e,
		&status,
		&initiative.Notes,
		&initiative.CreatedAt,
		&initiative.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	initiative.ID = domain.InitiativeID(id)
	initiative.CompanyID = domain.CompanyID(companyID)
	initiative.Status = Status(status)
	if scope, err := domain.ParseScope(scopeLabel); err == nil {
		initiative.TargetScope = scope
	}
	if startDate.Valid {
		t := startDate.Time
		initiative.StartDate = &t
	}
	if endDate.Valid {
		t := endDate.Time
		initiative.EndDate = &t
	}
	return &initiative, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
