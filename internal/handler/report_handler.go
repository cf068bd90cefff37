package handler

import (
	"errors"
	"net/http"

	"github.com/crewcost/crewcost-backend/internal/domain"
	"github.com/crewcost/crewcost-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ReportHandler serves the computed budget figures
type ReportHandler struct {
	calcService   *service.CalculationService
	budgetService *service.BudgetService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(calcService *service.CalculationService, budgetService *service.BudgetService) *ReportHandler {
	return &ReportHandler{
		calcService:   calcService,
		budgetService: budgetService,
	}
}

// ProjectBudgetReport represents the project-level budget figures
type ProjectBudgetReport struct {
	ProjectID     int32  `json:"projectId"`
	CurrentAmount string `json:"currentAmount"`
}

// BudgetAmountsReport represents the per-budget figures
type BudgetAmountsReport struct {
	BudgetID       int32  `json:"budgetId"`
	Type           string `json:"type"`
	OriginalAmount string `json:"originalAmount,omitempty"`
	RevisedAmount  string `json:"revisedAmount,omitempty"`
	ChangeAmount   string `json:"changeAmount,omitempty"`
}

// GetProjectBudget handles GET /api/v1/projects/:id/budget-report
func (h *ReportHandler) GetProjectBudget(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid project ID", nil)
	}

	current, err := h.calcService.CurrentAmount(id)
	if err != nil {
		log.Error().Err(err).Int32("project_id", id).Msg("Failed to compute current amount")
		return NewInternalError(c, "Failed to compute current amount")
	}

	return c.JSON(http.StatusOK, ProjectBudgetReport{
		ProjectID:     id,
		CurrentAmount: current.StringFixed(2),
	})
}

// GetBudgetAmounts handles GET /api/v1/budgets/:id/amounts. An original
// budget reports its original and revised amounts; a revised budget reports
// the change amount carried over from its change order.
func (h *ReportHandler) GetBudgetAmounts(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	budget, err := h.budgetService.GetBudget(id)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		log.Error().Err(err).Int32("budget_id", id).Msg("Failed to get budget")
		return NewInternalError(c, "Failed to get budget")
	}

	report := BudgetAmountsReport{
		BudgetID: budget.ID,
		Type:     string(budget.Type),
	}

	if budget.Type == domain.BudgetTypeOriginal {
		original, err := h.calcService.OriginalAmount(id)
		if err != nil {
			log.Error().Err(err).Int32("budget_id", id).Msg("Failed to compute original amount")
			return NewInternalError(c, "Failed to compute budget amounts")
		}
		revised, err := h.calcService.RevisedAmount(id)
		if err != nil {
			log.Error().Err(err).Int32("budget_id", id).Msg("Failed to compute revised amount")
			return NewInternalError(c, "Failed to compute budget amounts")
		}
		report.OriginalAmount = original.StringFixed(2)
		report.RevisedAmount = revised.StringFixed(2)
	} else {
		change, err := h.calcService.ChangeAmount(id)
		if err != nil {
			log.Error().Err(err).Int32("budget_id", id).Msg("Failed to compute change amount")
			return NewInternalError(c, "Failed to compute budget amounts")
		}
		report.ChangeAmount = change.StringFixed(2)
	}

	return c.JSON(http.StatusOK, report)
}
