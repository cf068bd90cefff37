package postgres

import (
	"context"
	"errors"

	"github.com/crewcost/crewcost-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ECOLineRepository implements domain.ECOLineRepository using PostgreSQL
type ECOLineRepository struct {
	pool *pgxpool.Pool
}

// NewECOLineRepository creates a new ECOLineRepository
func NewECOLineRepository(pool *pgxpool.Pool) *ECOLineRepository {
	return &ECOLineRepository{pool: pool}
}

const ecoLineColumns = `id, eco_id, project_id, cost_code_id, cost_type_id, budget_amount_change, status, created_at, updated_at`

// Create inserts a new external change order line
func (r *ECOLineRepository) Create(line *domain.ExternalChangeOrderLine) (*domain.ExternalChangeOrderLine, error) {
	ctx := context.Background()

	change, err := decimalToPgNumeric(line.BudgetAmountChange)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO external_change_order_lines (eco_id, project_id, cost_code_id, cost_type_id, budget_amount_change, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+ecoLineColumns,
		line.ECOID, line.ProjectID, line.CostCodeID, line.CostTypeID, change, line.Status)
	return scanECOLine(row)
}

// GetByID retrieves an external change order line by its identifier
func (r *ECOLineRepository) GetByID(id int32) (*domain.ExternalChangeOrderLine, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `SELECT `+ecoLineColumns+` FROM external_change_order_lines WHERE id = $1`, id)
	line, err := scanECOLine(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrECOLineNotFound
		}
		return nil, err
	}
	return line, nil
}

// GetActiveByProject retrieves the approved (active) lines for a project
func (r *ECOLineRepository) GetActiveByProject(projectID int32) ([]*domain.ExternalChangeOrderLine, error) {
	return r.getByProject(projectID, true)
}

// GetAllByProject retrieves every line recorded against a project
func (r *ECOLineRepository) GetAllByProject(projectID int32) ([]*domain.ExternalChangeOrderLine, error) {
	return r.getByProject(projectID, false)
}

func (r *ECOLineRepository) getByProject(projectID int32, activeOnly bool) ([]*domain.ExternalChangeOrderLine, error) {
	ctx := context.Background()

	query := `SELECT ` + ecoLineColumns + ` FROM external_change_order_lines WHERE project_id = $1`
	if activeOnly {
		query += ` AND status = 'active'`
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []*domain.ExternalChangeOrderLine
	for rows.Next() {
		line, err := scanECOLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// Deactivate marks a line inactive so it no longer counts toward totals
func (r *ECOLineRepository) Deactivate(id int32) error {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx, `
		UPDATE external_change_order_lines SET status = 'inactive', updated_at = now()
		WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrECOLineNotFound
	}
	return nil
}

func scanECOLine(row pgx.Row) (*domain.ExternalChangeOrderLine, error) {
	var l domain.ExternalChangeOrderLine
	var change pgtype.Numeric
	err := row.Scan(&l.ID, &l.ECOID, &l.ProjectID, &l.CostCodeID, &l.CostTypeID, &change, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.BudgetAmountChange = pgNumericToDecimal(change)
	return &l, nil
}
