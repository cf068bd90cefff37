package service

import (
	"errors"

	"github.com/crewcost/crewcost-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// CalculationService computes the three headline budget figures: original,
// current, and revised amounts.
type CalculationService struct {
	budgetRepo  domain.BudgetRepository
	lineRepo    domain.BudgetLineRepository
	icoRepo     domain.ChangeOrderRepository
	ecoLineRepo domain.ECOLineRepository
}

// NewCalculationService creates a new CalculationService
func NewCalculationService(budgetRepo domain.BudgetRepository, lineRepo domain.BudgetLineRepository, icoRepo domain.ChangeOrderRepository, ecoLineRepo domain.ECOLineRepository) *CalculationService {
	return &CalculationService{
		budgetRepo:  budgetRepo,
		lineRepo:    lineRepo,
		icoRepo:     icoRepo,
		ecoLineRepo: ecoLineRepo,
	}
}

// LineImpact holds the change-order impact attributable to one budget line
type LineImpact struct {
	External decimal.Decimal `json:"external"`
	Internal decimal.Decimal `json:"internal"`
	Total    decimal.Decimal `json:"total"`
}

// ImpactsFor computes the change-order impact for a single budget line,
// matched by cost dimension only, never by line id. A line without a full
// cost dimension is never matched as a wildcard and gets a zero impact.
func ImpactsFor(line *domain.BudgetLine, ecoIndex map[domain.Dimension][]*domain.ExternalChangeOrderLine, icoIndex map[domain.Dimension][]*domain.InternalChangeOrderLine) LineImpact {
	impact := LineImpact{External: decimal.Zero, Internal: decimal.Zero, Total: decimal.Zero}

	dim, ok := line.Dimension()
	if !ok {
		return impact
	}

	for _, eco := range ecoIndex[dim] {
		if eco.Status != domain.ECOLineStatusActive {
			continue
		}
		impact.External = impact.External.Add(eco.BudgetAmountChange)
	}
	// ICO lines carry no status filter: change orders are immutable once
	// created, so every recorded line counts.
	for _, ico := range icoIndex[dim] {
		impact.Internal = impact.Internal.Add(ico.ChangeAmount)
	}

	impact.Total = impact.External.Add(impact.Internal)
	return impact
}

// OriginalAmount returns the sum of a budget's line amounts
func (s *CalculationService) OriginalAmount(budgetID int32) (decimal.Decimal, error) {
	if _, err := s.budgetRepo.GetByID(budgetID); err != nil {
		return decimal.Zero, err
	}
	return s.lineRepo.SumAmountByBudget(budgetID)
}

// CurrentAmount returns the project's committed budget: the active original
// budget's line total plus matching approved external and internal
// change-order deltas. Returns zero when the project has no active original
// budget.
//
// Deltas are added once per original line encountered, so a dimension shared
// by two lines receives its delta twice. Changes apply to the cost bucket
// rather than a ledger row, and this per-line accumulation is the behavior
// reporting is built on; see DESIGN.md before changing it.
func (s *CalculationService) CurrentAmount(projectID int32) (decimal.Decimal, error) {
	budget, err := s.budgetRepo.GetActiveOriginalByProject(projectID)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}

	lines, err := s.lineRepo.GetByBudget(budget.ID)
	if err != nil {
		return decimal.Zero, err
	}

	ecoLines, err := s.ecoLineRepo.GetActiveByProject(projectID)
	if err != nil {
		return decimal.Zero, err
	}
	icoLines, err := s.icoRepo.GetLinesByOriginalBudget(budget.ID)
	if err != nil {
		return decimal.Zero, err
	}

	// Indexed once per request; the per-line loop below stays linear.
	ecoIndex := domain.IndexByDimension(ecoLines)
	icoIndex := domain.IndexByDimension(icoLines)

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Amount)
		impact := ImpactsFor(line, ecoIndex, icoIndex)
		total = total.Add(impact.Total)
	}
	return total, nil
}

// RevisedAmount returns the budget's original amount plus the total change
// amount of every internal change order amending it.
func (s *CalculationService) RevisedAmount(budgetID int32) (decimal.Decimal, error) {
	original, err := s.OriginalAmount(budgetID)
	if err != nil {
		return decimal.Zero, err
	}

	changes, err := s.icoRepo.SumTotalChangeByOriginalBudget(budgetID)
	if err != nil {
		return decimal.Zero, err
	}
	return original.Add(changes), nil
}

// ChangeAmount returns the total change carried by a revised budget, looked
// up through its originating change order. A revised budget without one is
// treated as carrying no amendment, not as an error.
func (s *CalculationService) ChangeAmount(revisedBudgetID int32) (decimal.Decimal, error) {
	ico, err := s.icoRepo.GetByRevisedBudget(revisedBudgetID)
	if err != nil {
		if errors.Is(err, domain.ErrChangeOrderNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return ico.TotalChangeAmount, nil
}
