package transactions

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the repository needs. Satisfied
// by *pgxpool.Pool and by pgxmock pools in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository creates a new PostgreSQL record repository.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// BulkCreate inserts each record independently. There is deliberately no
// surrounding transaction: a re-run of a partially failed import must be
// able to land the records that failed without re-inserting the rest.
func (r *PostgresRepository) BulkCreate(ctx context.Context, records []Record) (*BulkCreateResult, error) {
	query := `
		INSERT INTO transactions (id, trans_date, category, description, amount)
		VALUES ($1, $2, $3, $4, $5)`

	result := &BulkCreateResult{}
	for i := range records {
		rec := &records[i]
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		_, err := r.pool.Exec(ctx, query,
			rec.ID,
			rec.TransDate,
			rec.Category,
			rec.Description,
			rec.Amount,
		)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, RecordError{Index: i, Message: err.Error()})
			continue
		}
		result.Imported++
	}
	return result, nil
}

// FindAll retrieves every record, newest transaction date first.
func (r *PostgresRepository) FindAll(ctx context.Context) ([]Record, error) {
	query := `
		SELECT id, trans_date, category, description, amount, created_at
		FROM transactions
		ORDER BY trans_date DESC, created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// FindByPeriod retrieves records with from <= trans_date < to.
func (r *PostgresRepository) FindByPeriod(ctx context.Context, from, to time.Time) ([]Record, error) {
	query := `
		SELECT id, trans_date, category, description, amount, created_at
		FROM transactions
		WHERE trans_date >= $1 AND trans_date < $2
		ORDER BY trans_date DESC, created_at DESC`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for period: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Delete removes a record by id.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	recordID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid transaction id: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, recordID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanRecords(rows pgx.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var rec Record
		err := rows.Scan(
			&rec.ID,
			&rec.TransDate,
			&rec.Category,
			&rec.Description,
			&rec.Amount,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return records, nil
}
