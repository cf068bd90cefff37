package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InternalChangeOrder (ICO) is an approved internal budget amendment. Its
// creation produces a paired revised budget; both records are immutable
// afterward.
type InternalChangeOrder struct {
	ID                int32                      `json:"id"`
	OriginalBudgetID  int32                      `json:"originalBudgetId"`
	RevisedBudgetID   int32                      `json:"revisedBudgetId"`
	Description       string                     `json:"description"`
	TotalChangeAmount decimal.Decimal            `json:"totalChangeAmount"`
	Lines             []*InternalChangeOrderLine `json:"lines,omitempty"`
	CreatedAt         time.Time                  `json:"createdAt"`
}

// InternalChangeOrderLine is a single amendment delta on a cost dimension.
type InternalChangeOrderLine struct {
	ID            int32           `json:"id"`
	ChangeOrderID int32           `json:"changeOrderId"`
	CostCodeID    int32           `json:"costCodeId"`
	CostTypeID    int32           `json:"costTypeId"`
	ChangeAmount  decimal.Decimal `json:"changeAmount"`
}

// Dimension returns the line's cost dimension. ICO lines always carry a full
// dimension; ok exists to satisfy the shared indexing contract.
func (l *InternalChangeOrderLine) Dimension() (Dimension, bool) {
	return Dimension{CostCodeID: l.CostCodeID, CostTypeID: l.CostTypeID}, true
}

// ECOLineStatus represents whether an external change order line counts
// toward budget totals.
type ECOLineStatus string

const (
	ECOLineStatusActive   ECOLineStatus = "active"
	ECOLineStatusInactive ECOLineStatus = "inactive"
)

// ExternalChangeOrderLine is a client-driven contract amendment delta.
// The ECO head lives in the integration layer; only the line's opaque
// reference to it is stored here.
type ExternalChangeOrderLine struct {
	ID                 int32           `json:"id"`
	ECOID              int32           `json:"ecoId"`
	ProjectID          int32           `json:"projectId"`
	CostCodeID         int32           `json:"costCodeId"`
	CostTypeID         int32           `json:"costTypeId"`
	BudgetAmountChange decimal.Decimal `json:"budgetAmountChange"`
	Status             ECOLineStatus   `json:"status"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// Dimension returns the line's cost dimension.
func (l *ExternalChangeOrderLine) Dimension() (Dimension, bool) {
	return Dimension{CostCodeID: l.CostCodeID, CostTypeID: l.CostTypeID}, true
}

// ChangeOrderRepository defines the interface for internal change order persistence
type ChangeOrderRepository interface {
	// CreateWithRevisedBudget persists the change order, its lines, and the
	// paired revised budget in a single transaction: either all are stored or
	// none are.
	CreateWithRevisedBudget(ico *InternalChangeOrder, revised *Budget) (*InternalChangeOrder, *Budget, error)
	GetByID(id int32) (*InternalChangeOrder, error)
	GetByOriginalBudget(budgetID int32) ([]*InternalChangeOrder, error)
	GetByRevisedBudget(budgetID int32) (*InternalChangeOrder, error)
	GetLinesByOriginalBudget(budgetID int32) ([]*InternalChangeOrderLine, error)
	SumTotalChangeByOriginalBudget(budgetID int32) (decimal.Decimal, error)
}

// ECOLineRepository defines the interface for external change order line persistence
type ECOLineRepository interface {
	Create(line *ExternalChangeOrderLine) (*ExternalChangeOrderLine, error)
	GetByID(id int32) (*ExternalChangeOrderLine, error)
	GetActiveByProject(projectID int32) ([]*ExternalChangeOrderLine, error)
	GetAllByProject(projectID int32) ([]*ExternalChangeOrderLine, error)
	Deactivate(id int32) error
}
