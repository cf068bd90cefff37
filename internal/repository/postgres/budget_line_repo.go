package postgres

import (
	"context"
	"errors"

	"github.com/crewcost/crewcost-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// BudgetLineRepository implements domain.BudgetLineRepository using PostgreSQL
type BudgetLineRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetLineRepository creates a new BudgetLineRepository
func NewBudgetLineRepository(pool *pgxpool.Pool) *BudgetLineRepository {
	return &BudgetLineRepository{pool: pool}
}

const lineColumns = `id, budget_id, cost_code_id, cost_type_id, amount, notes, created_at, updated_at`

// Create inserts a new budget line
func (r *BudgetLineRepository) Create(line *domain.BudgetLine) (*domain.BudgetLine, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(line.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO budget_lines (budget_id, cost_code_id, cost_type_id, amount, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+lineColumns,
		line.BudgetID, line.CostCodeID, line.CostTypeID, amount, line.Notes)
	return scanBudgetLine(row)
}

// GetByID retrieves a budget line by its identifier
func (r *BudgetLineRepository) GetByID(id int32) (*domain.BudgetLine, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `SELECT `+lineColumns+` FROM budget_lines WHERE id = $1`, id)
	line, err := scanBudgetLine(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLineNotFound
		}
		return nil, err
	}
	return line, nil
}

// GetByBudget retrieves all lines for a budget in insertion order
func (r *BudgetLineRepository) GetByBudget(budgetID int32) ([]*domain.BudgetLine, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `SELECT `+lineColumns+` FROM budget_lines WHERE budget_id = $1 ORDER BY id`, budgetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []*domain.BudgetLine
	for rows.Next() {
		line, err := scanBudgetLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// Update changes a budget line's dimension, amount, and notes
func (r *BudgetLineRepository) Update(line *domain.BudgetLine) (*domain.BudgetLine, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(line.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE budget_lines
		SET cost_code_id = $2, cost_type_id = $3, amount = $4, notes = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+lineColumns,
		line.ID, line.CostCodeID, line.CostTypeID, amount, line.Notes)
	updated, err := scanBudgetLine(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLineNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a budget line
func (r *BudgetLineRepository) Delete(id int32) error {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx, `DELETE FROM budget_lines WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLineNotFound
	}
	return nil
}

// SumAmountByBudget returns the sum of line amounts for a budget, the
// budget's original amount.
func (r *BudgetLineRepository) SumAmountByBudget(budgetID int32) (decimal.Decimal, error) {
	ctx := context.Background()

	var sum pgtype.Numeric
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM budget_lines WHERE budget_id = $1`, budgetID).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(sum), nil
}

func scanBudgetLine(row pgx.Row) (*domain.BudgetLine, error) {
	var l domain.BudgetLine
	var amount pgtype.Numeric
	err := row.Scan(&l.ID, &l.BudgetID, &l.CostCodeID, &l.CostTypeID, &amount, &l.Notes, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.Amount = pgNumericToDecimal(amount)
	return &l, nil
}
