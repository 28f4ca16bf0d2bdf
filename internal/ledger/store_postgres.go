package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
	"carbonledger/pkg/platform/tx"
)

// PostgresStore persists emission records in PostgreSQL. When the context
// carries a transaction (see RunInTx) every statement joins it, so bulk
// imports commit or roll back as one unit.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed emission ledger store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if txn, ok := tx.From(ctx); ok {
		return txn
	}
	return s.db
}

const emissionColumns = `
	id, company_id, period, scope, category, subcategory, activity_type,
	quantity, unit, co2, ch4, n2o, co2e, factor_id, factor_version,
	data_quality, source, verified, verified_by, notes, created_at, updated_at`

func (s *PostgresStore) Insert(ctx context.Context, record *EmissionRecord) error {
	if record == nil {
		return dErrors.New(dErrors.CodeValidation, "emission record is required")
	}
	query := `
		INSERT INTO carbon_emissions (` + emissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		        $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(record.ID),
		uuid.UUID(record.CompanyID),
		record.Period,
		record.Scope.String(),
		record.Category.String(),
		record.Subcategory,
		record.ActivityType,
		record.Quantity,
		record.Unit,
		record.CO2,
		record.CH4,
		record.N2O,
		record.CO2e,
		record.FactorID,
		record.FactorVersion,
		record.DataQuality.String(),
		record.Source,
		record.Verified,
		record.VerifiedBy,
		record.Notes,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert emission record: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.RecordID) (*EmissionRecord, error) {
	query := `SELECT ` + emissionColumns + ` FROM carbon_emissions WHERE id = $1`
	record, err := scanEmissionRecord(s.q(ctx).QueryRowContext(ctx, query, uuid.UUID(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dErrors.New(dErrors.CodeNotFound, "emission record not found")
		}
		return nil, fmt.Errorf("find emission record: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) List(ctx context.Context, companyID domain.CompanyID, query Query) ([]*EmissionRecord, error) {
	stmt := `SELECT ` + emissionColumns + ` FROM carbon_emissions WHERE company_id = $1`
	args := []any{uuid.UUID(companyID)}

	if query.Period != nil {
		args = append(args, *query.Period)
		stmt += fmt.Sprintf(" AND period = $%d", len(args))
	}
	if query.Scope != nil {
		args = append(args, query.Scope.String())
		stmt += fmt.Sprintf(" AND scope = $%d", len(args))
	}
	stmt += " ORDER BY period DESC, scope, category"

	rows, err := s.q(ctx).QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list emission records: %w", err)
	}
	defer rows.Close()

	var records []*EmissionRecord
	for rows.Next() {
		record, err := scanEmissionRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan emission record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate emission records: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) Update(ctx context.Context, record *EmissionRecord) error {
	if record == nil {
		return dErrors.New(dErrors.CodeValidation, "emission record is required")
	}
	// Classification columns are deliberately absent: scope, category and
	// activity type are immutable once persisted.
	query := `
		UPDATE carbon_emissions
		SET quantity = $2, unit = $3, co2e = $4, data_quality = $5,
		    source = $6, notes = $7, verified = $8, verified_by = $9,
		    updated_at = $10
		WHERE id = $1
	`
	res, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(record.ID),
		record.Quantity,
		record.Unit,
		record.CO2e,
		record.DataQuality.String(),
		record.Source,
		record.Notes,
		record.Verified,
		record.VerifiedBy,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update emission record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update emission record: %w", err)
	}
	if affected == 0 {
		return dErrors.New(dErrors.CodeNotFound, "emission record not found")
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.RecordID) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM carbon_emissions WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete emission record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete emission record: %w", err)
	}
	if affected == 0 {
		return dErrors.New(dErrors.CodeNotFound, "emission record not found")
	}
	return nil
}

// RunInTx executes fn inside one SQL transaction. Store calls made with the
// returned context join the transaction.
func (s *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	txn, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx.WithTx(ctx, txn)); err != nil {
		if rbErr := txn.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func scanEmissionRecord(row rowScanner) (*EmissionRecord, error) {
	var (
		record     EmissionRecord
		id         uuid.UUID
		companyID  uuid.UUID
		scopeLabel string
		category   string
		quality    string
	)
	err := row.Scan(
		&id,
		&companyID,
		&record.Period,
		&scopeLabel,
		&category,
		&record.Subcategory,
		&record.ActivityType,
		&record.Quantity,
		&record.Unit,
		&record.CO2,
		&record.CH4,
		&record.N2O,
		&record.CO2e,
		&record.FactorID,
		&record.FactorVersion,
		&quality,
		&record.Source,
		&record.Verified,
		&record.VerifiedBy,
		&record.Notes,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	record.ID = domain.RecordID(id)
	record.CompanyID = domain.CompanyID(companyID)
	scope, err := domain.ParseScope(scopeLabel)
	if err != nil {
		return nil, err
	}
	record.Scope = scope
	record.Category = domain.Category(category)
	record.DataQuality = domain.DataQuality(quality)
	return &record, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}
