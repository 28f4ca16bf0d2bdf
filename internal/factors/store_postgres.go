package factors

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

// PostgresOverrideStore persists custom emission factors in PostgreSQL.
type PostgresOverrideStore struct {
	db *sql.DB
}

// NewPostgresOverrideStore constructs a PostgreSQL-backed override store.
func NewPostgresOverrideStore(db *sql.DB) *PostgresOverrideStore {
	return &PostgresOverrideStore{db: db}
}

func (s *PostgresOverrideStore) Save(ctx context.Context, factor *CustomFactor) error {
	if factor == nil {
		return dErrors.New(dErrors.CodeValidation, "custom factor is required")
	}
	if factor.ID == uuid.Nil {
		factor.ID = uuid.New()
	}
	query := `
		INSERT INTO custom_emission_factors
			(id, company_id, scope, category, activity_type,
			 factor_co2, factor_ch4, factor_n2o, factor_co2e,
			 unit, source, valid_from, valid_until, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(ctx, query,
		factor.ID,
		uuid.UUID(factor.CompanyID),
		factor.Scope.String(),
		factor.Category.String(),
		factor.ActivityType,
		factor.FactorCO2,
		factor.FactorCH4,
		factor.FactorN2O,
		factor.FactorCO2e,
		factor.Unit,
		factor.Source,
		nullTime(factor.ValidFrom),
		nullTime(factor.ValidUntil),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save custom factor: %w", err)
	}
	return nil
}

func (s *PostgresOverrideStore) FindActive(ctx context.Context, companyID domain.CompanyID, scope domain.Scope, category domain.Category, activityType string, asOf time.Time) (*CustomFactor, error) {
	query := `
		SELECT id, company_id, scope, category, activity_type,
		       factor_co2, factor_ch4, factor_n2o, factor_co2e,
		       unit, source, valid_from, valid_until, created_at
		FROM custom_emission_factors
		WHERE company_id = $1 AND scope = $2 AND category = $3 AND activity_type = $4
		  AND (valid_from IS NULL OR valid_from <= $5)
		  AND (valid_until IS NULL OR valid_until >= $5)
		ORDER BY created_at DESC
		LIMIT 1
	`
	row := s.db.QueryRowContext(ctx, query,
		uuid.UUID(companyID), scope.String(), category.String(), activityType, asOf)
	factor, err := scanCustomFactor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active custom factor: %w", err)
	}
	return factor, nil
}

func (s *PostgresOverrideStore) ListByCompany(ctx context.Context, companyID domain.CompanyID) ([]*CustomFactor, error) {
	query := `
		SELECT id, company_id, scope, category, activity_type,
		       factor_co2, factor_ch4, factor_n2o, factor_co2e,
		       unit, source, valid_from, valid_until, created_at
		FROM custom_emission_factors
		WHERE company_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(companyID))
	if err != nil {
		return nil, fmt.Errorf("list custom factors: %w", err)
	}
	defer rows.Close()

	var factors []*CustomFactor
	for rows.Next() {
		factor, err := scanCustomFactor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan custom factor: %w", err)
		}
		factors = append(factors, factor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate custom factors: %w", err)
	}
	return factors, nil
}

func (s *PostgresOverrideStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM custom_emission_factors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete custom factor: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete custom factor: %w", err)
	}
	if affected == 0 {
		return dErrors.New(dErrors.CodeNotFound, "custom factor not found")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomFactor(row rowScanner) (*CustomFactor, error) {
	var (
		factor     CustomFactor
		companyID  uuid.UUID
		scopeLabel string
		category   string
		validFrom  sql.NullTime
		validUntil sql.NullTime
	)
	err := row.Scan(
		&factor.ID,
		&companyID,
		&scopeLabel,
		&category,
		&factor.ActivityType,
		&factor.FactorCO2,
		&factor.FactorCH4,
		&factor.FactorN2O,
		&factor.FactorCO2e,
		&factor.Unit,
		&factor.Source,
		&validFrom,
		&validUntil,
		&factor.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	factor.CompanyID = domain.CompanyID(companyID)
	scope, err := domain.ParseScope(scopeLabel)
	if err != nil {
		return nil, err
	}
	factor.Scope = scope
	factor.Category = domain.Category(category)
	if validFrom.Valid {
		factor.ValidFrom = &validFrom.Time
	}
	if validUntil.Valid {
		factor.ValidUntil = &validUntil.Time
	}
	return &factor, nil
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}
