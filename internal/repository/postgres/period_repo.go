package postgres

import (
	"context"
	"errors"

	"github.com/crewcost/crewcost-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolationCode = "23505"

// PeriodRepository implements domain.PeriodRepository using PostgreSQL
type PeriodRepository struct {
	pool *pgxpool.Pool
}

// NewPeriodRepository creates a new PeriodRepository
func NewPeriodRepository(pool *pgxpool.Pool) *PeriodRepository {
	return &PeriodRepository{pool: pool}
}

const periodColumns = `id, month, year, status, description, created_at, updated_at`

// Create inserts a new open accounting period
func (r *PeriodRepository) Create(month, year int, description string) (*domain.AccountingPeriod, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounting_periods (month, year, status, description)
		VALUES ($1, $2, 'open', $3)
		RETURNING `+periodColumns,
		int32(month), int32(year), description)

	period, err := scanPeriod(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, domain.ErrDuplicatePeriod
		}
		return nil, err
	}
	return period, nil
}

// GetByID retrieves a period by its identifier
func (r *PeriodRepository) GetByID(id int32) (*domain.AccountingPeriod, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `SELECT `+periodColumns+` FROM accounting_periods WHERE id = $1`, id)
	period, err := scanPeriod(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPeriodNotFound
		}
		return nil, err
	}
	return period, nil
}

// GetByMonthYear retrieves a period by its month and year
func (r *PeriodRepository) GetByMonthYear(month, year int) (*domain.AccountingPeriod, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `SELECT `+periodColumns+` FROM accounting_periods WHERE month = $1 AND year = $2`,
		int32(month), int32(year))
	period, err := scanPeriod(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPeriodNotFound
		}
		return nil, err
	}
	return period, nil
}

// GetAll retrieves all periods ordered by year and month
func (r *PeriodRepository) GetAll() ([]*domain.AccountingPeriod, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `SELECT `+periodColumns+` FROM accounting_periods ORDER BY year, month`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []*domain.AccountingPeriod
	for rows.Next() {
		period, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, period)
	}
	return periods, rows.Err()
}

// Close marks a period as closed. The open-period rows are locked and counted
// in the same transaction that performs the update, so two concurrent closes
// cannot both observe more than one open period and leave none open.
func (r *PeriodRepository) Close(id int32) error {
	ctx := context.Background()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `SELECT id FROM accounting_periods WHERE status = 'open' FOR UPDATE`)
	if err != nil {
		return err
	}
	openIDs := make([]int32, 0, 4)
	for rows.Next() {
		var openID int32
		if err := rows.Scan(&openID); err != nil {
			rows.Close()
			return err
		}
		openIDs = append(openIDs, openID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	targetOpen := false
	for _, openID := range openIDs {
		if openID == id {
			targetOpen = true
			break
		}
	}
	if targetOpen && len(openIDs) == 1 {
		return domain.ErrLastOpenPeriod
	}

	tag, err := tx.Exec(ctx, `UPDATE accounting_periods SET status = 'closed', updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPeriodNotFound
	}

	return tx.Commit(ctx)
}

// Reopen marks a period as open again
func (r *PeriodRepository) Reopen(id int32) error {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx, `UPDATE accounting_periods SET status = 'open', updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPeriodNotFound
	}
	return nil
}

func scanPeriod(row pgx.Row) (*domain.AccountingPeriod, error) {
	var p domain.AccountingPeriod
	var month, year int32
	err := row.Scan(&p.ID, &month, &year, &p.Status, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Month = int(month)
	p.Year = int(year)
	return &p, nil
}
