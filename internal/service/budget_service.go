package service

import (
	"time"

	"github.com/crewcost/crewcost-backend/internal/domain"
	"github.com/crewcost/crewcost-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BudgetService handles budget and budget line mutations. Every mutation
// path runs through one lock guard so the finalized and closed-period gates
// cannot be bypassed.
type BudgetService struct {
	budgetRepo  domain.BudgetRepository
	lineRepo    domain.BudgetLineRepository
	periodRepo  domain.PeriodRepository
	projectRepo domain.ProjectRepository
	publisher   websocket.EventPublisher
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo domain.BudgetRepository, lineRepo domain.BudgetLineRepository, periodRepo domain.PeriodRepository, projectRepo domain.ProjectRepository, publisher websocket.EventPublisher) *BudgetService {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &BudgetService{
		budgetRepo:  budgetRepo,
		lineRepo:    lineRepo,
		periodRepo:  periodRepo,
		projectRepo: projectRepo,
		publisher:   publisher,
	}
}

// LineInput carries the mutable fields of a budget line
type LineInput struct {
	CostCodeID *int32
	CostTypeID *int32
	Amount     decimal.Decimal
	Notes      string
}

// CreateBudget creates an original budget against an open accounting period
func (s *BudgetService) CreateBudget(projectID, periodID int32, description string, date time.Time) (*domain.Budget, error) {
	if _, err := s.projectRepo.GetByID(projectID); err != nil {
		return nil, err
	}

	period, err := s.periodRepo.GetByID(periodID)
	if err != nil {
		return nil, err
	}
	if !period.IsOpen() {
		return nil, domain.ErrPeriodClosed
	}

	budget, err := s.budgetRepo.Create(&domain.Budget{
		ProjectID:          projectID,
		Type:               domain.BudgetTypeOriginal,
		AccountingPeriodID: periodID,
		Status:             domain.BudgetStatusActive,
		Description:        description,
		Date:               date,
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(projectID, websocket.BudgetCreated(budget))
	return budget, nil
}

// GetBudget retrieves a budget by its identifier
func (s *BudgetService) GetBudget(id int32) (*domain.Budget, error) {
	return s.budgetRepo.GetByID(id)
}

// ListBudgets retrieves every budget of a project, original and revised
func (s *BudgetService) ListBudgets(projectID int32) ([]*domain.Budget, error) {
	if _, err := s.projectRepo.GetByID(projectID); err != nil {
		return nil, err
	}
	return s.budgetRepo.GetAllByProject(projectID)
}

// GetLines retrieves all lines of a budget
func (s *BudgetService) GetLines(budgetID int32) ([]*domain.BudgetLine, error) {
	if _, err := s.budgetRepo.GetByID(budgetID); err != nil {
		return nil, err
	}
	return s.lineRepo.GetByBudget(budgetID)
}

// AddLine appends a line to a budget
func (s *BudgetService) AddLine(budgetID int32, input LineInput) (*domain.BudgetLine, error) {
	budget, err := s.guardMutable(budgetID)
	if err != nil {
		return nil, err
	}
	if input.Amount.IsNegative() {
		return nil, domain.ErrNegativeAmount
	}

	line, err := s.lineRepo.Create(&domain.BudgetLine{
		BudgetID:   budgetID,
		CostCodeID: input.CostCodeID,
		CostTypeID: input.CostTypeID,
		Amount:     input.Amount,
		Notes:      input.Notes,
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(budget.ProjectID, websocket.BudgetLineChanged(websocket.EventTypeCreated, line))
	return line, nil
}

// UpdateLine changes an existing line on a budget
func (s *BudgetService) UpdateLine(budgetID, lineID int32, input LineInput) (*domain.BudgetLine, error) {
	budget, err := s.guardMutable(budgetID)
	if err != nil {
		return nil, err
	}
	if input.Amount.IsNegative() {
		return nil, domain.ErrNegativeAmount
	}

	line, err := s.lineRepo.GetByID(lineID)
	if err != nil {
		return nil, err
	}
	if line.BudgetID != budgetID {
		return nil, domain.ErrLineNotFound
	}

	line.CostCodeID = input.CostCodeID
	line.CostTypeID = input.CostTypeID
	line.Amount = input.Amount
	line.Notes = input.Notes

	updated, err := s.lineRepo.Update(line)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(budget.ProjectID, websocket.BudgetLineChanged(websocket.EventTypeUpdated, updated))
	return updated, nil
}

// DeleteLine removes a line from a budget
func (s *BudgetService) DeleteLine(budgetID, lineID int32) error {
	budget, err := s.guardMutable(budgetID)
	if err != nil {
		return err
	}

	line, err := s.lineRepo.GetByID(lineID)
	if err != nil {
		return err
	}
	if line.BudgetID != budgetID {
		return domain.ErrLineNotFound
	}

	if err := s.lineRepo.Delete(lineID); err != nil {
		return err
	}

	s.publisher.Publish(budget.ProjectID, websocket.BudgetLineChanged(websocket.EventTypeDeleted, line))
	return nil
}

// UpdateBudget changes a budget's description and date
func (s *BudgetService) UpdateBudget(budgetID int32, description string, date time.Time) (*domain.Budget, error) {
	if _, err := s.guardMutable(budgetID); err != nil {
		return nil, err
	}

	budget, err := s.budgetRepo.Update(budgetID, description, date)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(budget.ProjectID, websocket.BudgetUpdated(budget))
	return budget, nil
}

// DeleteBudget removes a budget and its lines
func (s *BudgetService) DeleteBudget(budgetID int32) error {
	budget, err := s.guardMutable(budgetID)
	if err != nil {
		return err
	}

	if err := s.budgetRepo.Delete(budgetID); err != nil {
		return err
	}

	s.publisher.Publish(budget.ProjectID, websocket.BudgetDeleted(budget))
	return nil
}

// FinalizeBudget permanently locks an original budget against direct edits.
// A repeated finalize is reported as success since the end state is
// identical; amendments remain possible through internal change orders.
func (s *BudgetService) FinalizeBudget(budgetID int32) (*domain.Budget, error) {
	budget, err := s.budgetRepo.GetByID(budgetID)
	if err != nil {
		return nil, err
	}
	if budget.Type != domain.BudgetTypeOriginal {
		return nil, domain.ErrNotOriginalType
	}

	updated, err := s.budgetRepo.Finalize(budgetID)
	if err != nil {
		return nil, err
	}
	if !updated {
		log.Debug().Int32("budget_id", budgetID).Msg("Budget already finalized")
	}

	budget, err = s.budgetRepo.GetByID(budgetID)
	if err != nil {
		return nil, err
	}

	if updated {
		s.publisher.Publish(budget.ProjectID, websocket.BudgetFinalized(budget))
		log.Info().Int32("budget_id", budgetID).Msg("Finalized budget")
	}
	return budget, nil
}

// guardMutable loads the budget and applies the single mutation guard:
// revised budgets are immutable, finalized budgets are locked permanently,
// budgets in a closed period are locked until the period reopens.
func (s *BudgetService) guardMutable(budgetID int32) (*domain.Budget, error) {
	budget, err := s.budgetRepo.GetByID(budgetID)
	if err != nil {
		return nil, err
	}

	period, err := s.periodRepo.GetByID(budget.AccountingPeriodID)
	if err != nil {
		return nil, err
	}

	if err := domain.CanMutate(budget, period.IsOpen()); err != nil {
		return nil, err
	}
	return budget, nil
}
