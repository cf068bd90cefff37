package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/crewcost/crewcost-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

const budgetColumns = `id, project_id, type, accounting_period_id, finalized, status, description, date, created_at, updated_at`

// Create inserts a new budget
func (r *BudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO budgets (project_id, type, accounting_period_id, finalized, status, description, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+budgetColumns,
		budget.ProjectID, budget.Type, budget.AccountingPeriodID, budget.Finalized, budget.Status, budget.Description, budget.Date)
	return scanBudget(row)
}

// GetByID retrieves a budget by its identifier
func (r *BudgetRepository) GetByID(id int32) (*domain.Budget, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = $1`, id)
	budget, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return budget, nil
}

// GetActiveOriginalByProject retrieves the project's active original budget
func (r *BudgetRepository) GetActiveOriginalByProject(projectID int32) (*domain.Budget, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		SELECT `+budgetColumns+` FROM budgets
		WHERE project_id = $1 AND type = 'original' AND status = 'active'
		ORDER BY id
		LIMIT 1`, projectID)
	budget, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return budget, nil
}

// GetAllByProject retrieves all budgets for a project
func (r *BudgetRepository) GetAllByProject(projectID int32) ([]*domain.Budget, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE project_id = $1 ORDER BY id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []*domain.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}

// Update changes a budget's description and date
func (r *BudgetRepository) Update(id int32, description string, date time.Time) (*domain.Budget, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		UPDATE budgets SET description = $2, date = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+budgetColumns, id, description, date)
	budget, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return budget, nil
}

// Delete removes a budget and its lines
func (r *BudgetRepository) Delete(id int32) error {
	ctx := context.Background()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM budget_lines WHERE budget_id = $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM budgets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return tx.Commit(ctx)
}

// Finalize sets the finalized flag with compare-and-swap semantics: when two
// concurrent calls race, exactly one observes the flip. Returns false when
// the budget was already finalized.
func (r *BudgetRepository) Finalize(id int32) (bool, error) {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx, `
		UPDATE budgets SET finalized = true, updated_at = now()
		WHERE id = $1 AND finalized = false`, id)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	// Distinguish "already finalized" from "no such budget".
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM budgets WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, domain.ErrBudgetNotFound
	}
	return false, nil
}

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var b domain.Budget
	err := row.Scan(&b.ID, &b.ProjectID, &b.Type, &b.AccountingPeriodID, &b.Finalized, &b.Status, &b.Description, &b.Date, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
