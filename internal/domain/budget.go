package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetType distinguishes an original baseline budget from a revised budget
// produced by an internal change order.
type BudgetType string

const (
	BudgetTypeOriginal BudgetType = "original"
	BudgetTypeRevised  BudgetType = "revised"
)

// BudgetStatus represents whether a budget is the active one for its project
type BudgetStatus string

const (
	BudgetStatusActive   BudgetStatus = "active"
	BudgetStatusInactive BudgetStatus = "inactive"
)

// Budget holds a project's committed amounts for an accounting period.
// A revised budget is created as the side effect of approving an internal
// change order and is never edited directly.
type Budget struct {
	ID                 int32        `json:"id"`
	ProjectID          int32        `json:"projectId"`
	Type               BudgetType   `json:"type"`
	AccountingPeriodID int32        `json:"accountingPeriodId"`
	Finalized          bool         `json:"finalized"`
	Status             BudgetStatus `json:"status"`
	Description        string       `json:"description"`
	Date               time.Time    `json:"date"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}

// BudgetLine is a single budget row. The (cost code, cost type) pair is the
// key used for change-order matching and need not be unique within a budget.
type BudgetLine struct {
	ID         int32           `json:"id"`
	BudgetID   int32           `json:"budgetId"`
	CostCodeID *int32          `json:"costCodeId"`
	CostTypeID *int32          `json:"costTypeId"`
	Amount     decimal.Decimal `json:"amount"`
	Notes      string          `json:"notes"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Dimension returns the line's cost dimension. ok is false when either half
// of the key is missing; such lines are never matched by change orders.
func (l *BudgetLine) Dimension() (Dimension, bool) {
	if l.CostCodeID == nil || l.CostTypeID == nil {
		return Dimension{}, false
	}
	return Dimension{CostCodeID: *l.CostCodeID, CostTypeID: *l.CostTypeID}, true
}

// BudgetRepository defines the interface for budget persistence
type BudgetRepository interface {
	Create(budget *Budget) (*Budget, error)
	GetByID(id int32) (*Budget, error)
	GetActiveOriginalByProject(projectID int32) (*Budget, error)
	GetAllByProject(projectID int32) ([]*Budget, error)
	Update(id int32, description string, date time.Time) (*Budget, error)
	Delete(id int32) error
	// Finalize flips the finalized flag with compare-and-swap semantics.
	// Returns false when the budget was already finalized.
	Finalize(id int32) (bool, error)
}

// BudgetLineRepository defines the interface for budget line persistence
type BudgetLineRepository interface {
	Create(line *BudgetLine) (*BudgetLine, error)
	GetByID(id int32) (*BudgetLine, error)
	GetByBudget(budgetID int32) ([]*BudgetLine, error)
	Update(line *BudgetLine) (*BudgetLine, error)
	Delete(id int32) error
	SumAmountByBudget(budgetID int32) (decimal.Decimal, error)
}
