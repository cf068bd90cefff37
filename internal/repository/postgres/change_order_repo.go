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

// ChangeOrderRepository implements domain.ChangeOrderRepository using PostgreSQL
type ChangeOrderRepository struct {
	pool *pgxpool.Pool
}

// NewChangeOrderRepository creates a new ChangeOrderRepository
func NewChangeOrderRepository(pool *pgxpool.Pool) *ChangeOrderRepository {
	return &ChangeOrderRepository{pool: pool}
}

const icoColumns = `id, original_budget_id, revised_budget_id, description, total_change_amount, created_at`

// CreateWithRevisedBudget persists the change order, its lines, and the
// paired revised budget in one transaction. No orphaned revised budget
// without its change order, and vice versa.
func (r *ChangeOrderRepository) CreateWithRevisedBudget(ico *domain.InternalChangeOrder, revised *domain.Budget) (*domain.InternalChangeOrder, *domain.Budget, error) {
	ctx := context.Background()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	budgetRow := tx.QueryRow(ctx, `
		INSERT INTO budgets (project_id, type, accounting_period_id, finalized, status, description, date)
		VALUES ($1, 'revised', $2, false, $3, $4, $5)
		RETURNING `+budgetColumns,
		revised.ProjectID, revised.AccountingPeriodID, revised.Status, revised.Description, revised.Date)
	createdBudget, err := scanBudget(budgetRow)
	if err != nil {
		return nil, nil, err
	}

	total, err := decimalToPgNumeric(ico.TotalChangeAmount)
	if err != nil {
		return nil, nil, err
	}

	created := &domain.InternalChangeOrder{}
	icoRow := tx.QueryRow(ctx, `
		INSERT INTO internal_change_orders (original_budget_id, revised_budget_id, description, total_change_amount)
		VALUES ($1, $2, $3, $4)
		RETURNING `+icoColumns,
		ico.OriginalBudgetID, createdBudget.ID, ico.Description, total)
	if err := scanChangeOrderInto(icoRow, created); err != nil {
		return nil, nil, err
	}

	for _, line := range ico.Lines {
		change, err := decimalToPgNumeric(line.ChangeAmount)
		if err != nil {
			return nil, nil, err
		}
		row := tx.QueryRow(ctx, `
			INSERT INTO internal_change_order_lines (change_order_id, cost_code_id, cost_type_id, change_amount)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			created.ID, line.CostCodeID, line.CostTypeID, change)
		createdLine := &domain.InternalChangeOrderLine{
			ChangeOrderID: created.ID,
			CostCodeID:    line.CostCodeID,
			CostTypeID:    line.CostTypeID,
			ChangeAmount:  line.ChangeAmount,
		}
		if err := row.Scan(&createdLine.ID); err != nil {
			return nil, nil, err
		}
		created.Lines = append(created.Lines, createdLine)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return created, createdBudget, nil
}

// GetByID retrieves a change order with its lines
func (r *ChangeOrderRepository) GetByID(id int32) (*domain.InternalChangeOrder, error) {
	ctx := context.Background()

	ico := &domain.InternalChangeOrder{}
	row := r.pool.QueryRow(ctx, `SELECT `+icoColumns+` FROM internal_change_orders WHERE id = $1`, id)
	if err := scanChangeOrderInto(row, ico); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChangeOrderNotFound
		}
		return nil, err
	}

	lines, err := r.getLines(ctx, `WHERE change_order_id = $1`, id)
	if err != nil {
		return nil, err
	}
	ico.Lines = lines
	return ico, nil
}

// GetByOriginalBudget retrieves all change orders amending a budget
func (r *ChangeOrderRepository) GetByOriginalBudget(budgetID int32) ([]*domain.InternalChangeOrder, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `SELECT `+icoColumns+` FROM internal_change_orders WHERE original_budget_id = $1 ORDER BY id`, budgetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.InternalChangeOrder
	for rows.Next() {
		ico := &domain.InternalChangeOrder{}
		if err := scanChangeOrderInto(rows, ico); err != nil {
			return nil, err
		}
		orders = append(orders, ico)
	}
	return orders, rows.Err()
}

// GetByRevisedBudget retrieves the change order that produced a revised budget
func (r *ChangeOrderRepository) GetByRevisedBudget(budgetID int32) (*domain.InternalChangeOrder, error) {
	ctx := context.Background()

	ico := &domain.InternalChangeOrder{}
	row := r.pool.QueryRow(ctx, `SELECT `+icoColumns+` FROM internal_change_orders WHERE revised_budget_id = $1`, budgetID)
	if err := scanChangeOrderInto(row, ico); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChangeOrderNotFound
		}
		return nil, err
	}
	return ico, nil
}

// GetLinesByOriginalBudget retrieves the lines of every change order amending a budget
func (r *ChangeOrderRepository) GetLinesByOriginalBudget(budgetID int32) ([]*domain.InternalChangeOrderLine, error) {
	ctx := context.Background()
	return r.getLines(ctx, `WHERE change_order_id IN (SELECT id FROM internal_change_orders WHERE original_budget_id = $1)`, budgetID)
}

// SumTotalChangeByOriginalBudget sums total_change_amount over all change
// orders amending a budget.
func (r *ChangeOrderRepository) SumTotalChangeByOriginalBudget(budgetID int32) (decimal.Decimal, error) {
	ctx := context.Background()

	var sum pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_change_amount), 0)
		FROM internal_change_orders
		WHERE original_budget_id = $1`, budgetID).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(sum), nil
}

func (r *ChangeOrderRepository) getLines(ctx context.Context, where string, arg any) ([]*domain.InternalChangeOrderLine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, change_order_id, cost_code_id, cost_type_id, change_amount
		FROM internal_change_order_lines `+where+` ORDER BY id`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []*domain.InternalChangeOrderLine
	for rows.Next() {
		var l domain.InternalChangeOrderLine
		var change pgtype.Numeric
		if err := rows.Scan(&l.ID, &l.ChangeOrderID, &l.CostCodeID, &l.CostTypeID, &change); err != nil {
			return nil, err
		}
		l.ChangeAmount = pgNumericToDecimal(change)
		lines = append(lines, &l)
	}
	return lines, rows.Err()
}

func scanChangeOrderInto(row pgx.Row, ico *domain.InternalChangeOrder) error {
	var total pgtype.Numeric
	err := row.Scan(&ico.ID, &ico.OriginalBudgetID, &ico.RevisedBudgetID, &ico.Description, &total, &ico.CreatedAt)
	if err != nil {
		return err
	}
	ico.TotalChangeAmount = pgNumericToDecimal(total)
	return nil
}
