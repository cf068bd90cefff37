package service

import (
	"time"

	"github.com/crewcost/crewcost-backend/internal/domain"
	"github.com/crewcost/crewcost-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ChangeOrderService records budget amendments: internal change orders with
// their paired revised budgets, and external change order lines.
type ChangeOrderService struct {
	icoRepo     domain.ChangeOrderRepository
	ecoLineRepo domain.ECOLineRepository
	budgetRepo  domain.BudgetRepository
	projectRepo domain.ProjectRepository
	publisher   websocket.EventPublisher
}

// NewChangeOrderService creates a new ChangeOrderService
func NewChangeOrderService(icoRepo domain.ChangeOrderRepository, ecoLineRepo domain.ECOLineRepository, budgetRepo domain.BudgetRepository, projectRepo domain.ProjectRepository, publisher websocket.EventPublisher) *ChangeOrderService {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &ChangeOrderService{
		icoRepo:     icoRepo,
		ecoLineRepo: ecoLineRepo,
		budgetRepo:  budgetRepo,
		projectRepo: projectRepo,
		publisher:   publisher,
	}
}

// ChangeOrderLineInput carries one amendment delta on a cost dimension
type ChangeOrderLineInput struct {
	CostCodeID   int32
	CostTypeID   int32
	ChangeAmount decimal.Decimal
}

// CreateInternalChangeOrder records an approved internal amendment against an
// original budget and produces its paired revised budget. The change order,
// its lines, and the revised budget are persisted atomically. Lock state
// does not gate this path: amendments are exactly how a closed-period or
// finalized budget changes.
func (s *ChangeOrderService) CreateInternalChangeOrder(originalBudgetID int32, description string, lines []ChangeOrderLineInput) (*domain.InternalChangeOrder, *domain.Budget, error) {
	if len(lines) == 0 {
		return nil, nil, domain.ErrNoChangeOrderLines
	}

	original, err := s.budgetRepo.GetByID(originalBudgetID)
	if err != nil {
		return nil, nil, err
	}
	if original.Type != domain.BudgetTypeOriginal {
		return nil, nil, domain.ErrNotOriginalType
	}
	if original.Status != domain.BudgetStatusActive {
		return nil, nil, domain.ErrBudgetNotActive
	}

	total := decimal.Zero
	icoLines := make([]*domain.InternalChangeOrderLine, 0, len(lines))
	for _, line := range lines {
		if line.CostCodeID == 0 || line.CostTypeID == 0 {
			return nil, nil, domain.ErrDimensionRequired
		}
		total = total.Add(line.ChangeAmount)
		icoLines = append(icoLines, &domain.InternalChangeOrderLine{
			CostCodeID:   line.CostCodeID,
			CostTypeID:   line.CostTypeID,
			ChangeAmount: line.ChangeAmount,
		})
	}

	ico := &domain.InternalChangeOrder{
		OriginalBudgetID:  originalBudgetID,
		Description:       description,
		TotalChangeAmount: total,
		Lines:             icoLines,
	}
	revised := &domain.Budget{
		ProjectID:          original.ProjectID,
		Type:               domain.BudgetTypeRevised,
		AccountingPeriodID: original.AccountingPeriodID,
		Status:             domain.BudgetStatusActive,
		Description:        description,
		Date:               time.Now().UTC(),
	}

	created, revisedBudget, err := s.icoRepo.CreateWithRevisedBudget(ico, revised)
	if err != nil {
		return nil, nil, err
	}

	s.publisher.Publish(original.ProjectID, websocket.ChangeOrderCreated(created))
	log.Info().
		Int32("change_order_id", created.ID).
		Int32("original_budget_id", originalBudgetID).
		Int32("revised_budget_id", revisedBudget.ID).
		Str("total_change", total.String()).
		Msg("Created internal change order")
	return created, revisedBudget, nil
}

// GetChangeOrder retrieves an internal change order with its lines
func (s *ChangeOrderService) GetChangeOrder(id int32) (*domain.InternalChangeOrder, error) {
	return s.icoRepo.GetByID(id)
}

// ListByOriginalBudget retrieves all change orders amending a budget
func (s *ChangeOrderService) ListByOriginalBudget(budgetID int32) ([]*domain.InternalChangeOrder, error) {
	if _, err := s.budgetRepo.GetByID(budgetID); err != nil {
		return nil, err
	}
	return s.icoRepo.GetByOriginalBudget(budgetID)
}

// RecordECOLine records an approved external change order line against a project
func (s *ChangeOrderService) RecordECOLine(ecoID, projectID, costCodeID, costTypeID int32, change decimal.Decimal) (*domain.ExternalChangeOrderLine, error) {
	if costCodeID == 0 || costTypeID == 0 {
		return nil, domain.ErrDimensionRequired
	}
	if _, err := s.projectRepo.GetByID(projectID); err != nil {
		return nil, err
	}

	line, err := s.ecoLineRepo.Create(&domain.ExternalChangeOrderLine{
		ECOID:              ecoID,
		ProjectID:          projectID,
		CostCodeID:         costCodeID,
		CostTypeID:         costTypeID,
		BudgetAmountChange: change,
		Status:             domain.ECOLineStatusActive,
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(projectID, websocket.ECOLineRecorded(line))
	return line, nil
}

// DeactivateECOLine removes a line from budget totals without deleting the record
func (s *ChangeOrderService) DeactivateECOLine(id int32) error {
	line, err := s.ecoLineRepo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.ecoLineRepo.Deactivate(id); err != nil {
		return err
	}

	s.publisher.Publish(line.ProjectID, websocket.ECOLineDeactivated(line))
	return nil
}

// ListECOLines retrieves every external change order line for a project
func (s *ChangeOrderService) ListECOLines(projectID int32) ([]*domain.ExternalChangeOrderLine, error) {
	if _, err := s.projectRepo.GetByID(projectID); err != nil {
		return nil, err
	}
	return s.ecoLineRepo.GetAllByProject(projectID)
}
