package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/crewcost/crewcost-backend/internal/domain"
	"github.com/crewcost/crewcost-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BudgetHandler handles budget and budget line HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
	periodService *service.PeriodService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService, periodService *service.PeriodService) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
		periodService: periodService,
	}
}

// CreateBudgetRequest represents the request to create a budget
type CreateBudgetRequest struct {
	ProjectID          int32  `json:"projectId"`
	AccountingPeriodID int32  `json:"accountingPeriodId"`
	Description        string `json:"description"`
	Date               string `json:"date"`
}

// UpdateBudgetRequest represents the request to update a budget
type UpdateBudgetRequest struct {
	Description string `json:"description"`
	Date        string `json:"date"`
}

// BudgetLineRequest represents the request to create or update a budget line
type BudgetLineRequest struct {
	CostCodeID *int32 `json:"costCodeId"`
	CostTypeID *int32 `json:"costTypeId"`
	Amount     string `json:"amount"`
	Notes      string `json:"notes"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID                 int32  `json:"id"`
	ProjectID          int32  `json:"projectId"`
	Type               string `json:"type"`
	AccountingPeriodID int32  `json:"accountingPeriodId"`
	Finalized          bool   `json:"finalized"`
	Status             string `json:"status"`
	LockState          string `json:"lockState"`
	Description        string `json:"description"`
	Date               string `json:"date"`
	CreatedAt          string `json:"createdAt"`
}

// BudgetLineResponse represents a budget line in API responses
type BudgetLineResponse struct {
	ID         int32  `json:"id"`
	BudgetID   int32  `json:"budgetId"`
	CostCodeID *int32 `json:"costCodeId"`
	CostTypeID *int32 `json:"costTypeId"`
	Amount     string `json:"amount"`
	Notes      string `json:"notes"`
}

// Create handles POST /api/v1/budgets
func (h *BudgetHandler) Create(c echo.Context) error {
	var req CreateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return NewValidationError(c, "Invalid date", []ValidationError{
			{Field: "date", Message: "Date must be in YYYY-MM-DD format"},
		})
	}

	budget, err := h.budgetService.CreateBudget(req.ProjectID, req.AccountingPeriodID, req.Description, date)
	if err != nil {
		return h.mapBudgetError(c, err, "Failed to create budget")
	}

	return c.JSON(http.StatusCreated, h.toBudgetResponse(budget))
}

// GetByID handles GET /api/v1/budgets/:id
func (h *BudgetHandler) GetByID(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	budget, err := h.budgetService.GetBudget(id)
	if err != nil {
		return h.mapBudgetError(c, err, "Failed to get budget")
	}

	return c.JSON(http.StatusOK, h.toBudgetResponse(budget))
}

// GetByProject handles GET /api/v1/projects/:id/budgets
func (h *BudgetHandler) GetByProject(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid project ID", nil)
	}

	budgets, err := h.budgetService.ListBudgets(id)
	if err != nil {
		return h.mapBudgetError(c, err, "Failed to list budgets")
	}

	response := make([]BudgetResponse, len(budgets))
	for i, budget := range budgets {
		response[i] = h.toBudgetResponse(budget)
	}

	return c.JSON(http.StatusOK, response)
}

// Update handles PUT /api/v1/budgets/:id
func (h *BudgetHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	var req UpdateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return NewValidationError(c, "Invalid date", []ValidationError{
			{Field: "date", Message: "Date must be in YYYY-MM-DD format"},
		})
	}

	budget, err := h.budgetService.UpdateBudget(id, req.Description, date)
	if err != nil {
		return h.mapBudgetError(c, err, "Failed to update budget")
	}

	return c.JSON(http.StatusOK, h.toBudgetResponse(budget))
}

// Delete handles DELETE /api/v1/budgets/:id
func (h *BudgetHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	if err := h.budgetService.DeleteBudget(id); err != nil {
		return h.mapBudgetError(c, err, "Failed to delete budget")
	}

	return c.NoContent(http.StatusNoContent)
}

// Finalize handles POST /api/v1/budgets/:id/finalize
func (h *BudgetHandler) Finalize(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	budget, err := h.budgetService.FinalizeBudget(id)
	if err != nil {
		return h.mapBudgetError(c, err, "Failed to finalize budget")
	}

	return c.JSON(http.StatusOK, h.toBudgetResponse(budget))
}

// GetLines handles GET /api/v1/budgets/:id/lines
func (h *BudgetHandler) GetLines(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	lines, err := h.budgetService.GetLines(id)
	if err != nil {
		return h.mapBudgetError(c, err, "Failed to get budget lines")
	}

	response := make([]BudgetLineResponse, len(lines))
	for i, line := range lines {
		response[i] = toBudgetLineResponse(line)
	}

	return c.JSON(http.StatusOK, response)
}

// AddLine handles POST /api/v1/budgets/:id/lines
func (h *BudgetHandler) AddLine(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	input, verr := h.bindLineInput(c)
	if verr != nil {
		return verr
	}

	line, err := h.budgetService.AddLine(id, *input)
	if err != nil {
		return h.mapBudgetError(c, err, "Failed to add budget line")
	}

	return c.JSON(http.StatusCreated, toBudgetLineResponse(line))
}

// UpdateLine handles PUT /api/v1/budgets/:id/lines/:lineId
func (h *BudgetHandler) UpdateLine(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}
	lineID, err := parseID(c, "lineId")
	if err != nil {
		return NewValidationError(c, "Invalid line ID", nil)
	}

	input, verr := h.bindLineInput(c)
	if verr != nil {
		return verr
	}

	line, err := h.budgetService.UpdateLine(id, lineID, *input)
	if err != nil {
		return h.mapBudgetError(c, err, "Failed to update budget line")
	}

	return c.JSON(http.StatusOK, toBudgetLineResponse(line))
}

// DeleteLine handles DELETE /api/v1/budgets/:id/lines/:lineId
func (h *BudgetHandler) DeleteLine(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}
	lineID, err := parseID(c, "lineId")
	if err != nil {
		return NewValidationError(c, "Invalid line ID", nil)
	}

	if err := h.budgetService.DeleteLine(id, lineID); err != nil {
		return h.mapBudgetError(c, err, "Failed to delete budget line")
	}

	return c.NoContent(http.StatusNoContent)
}

// bindLineInput binds and validates a budget line request body
func (h *BudgetHandler) bindLineInput(c echo.Context) (*service.LineInput, error) {
	var req BudgetLineRequest
	if err := c.Bind(&req); err != nil {
		return nil, NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Amount must be a decimal number"},
		})
	}

	return &service.LineInput{
		CostCodeID: req.CostCodeID,
		CostTypeID: req.CostTypeID,
		Amount:     amount,
		Notes:      req.Notes,
	}, nil
}

// mapBudgetError translates service errors to problem responses
func (h *BudgetHandler) mapBudgetError(c echo.Context, err error, fallback string) error {
	var lockedErr *domain.LockedError
	switch {
	case errors.As(err, &lockedErr):
		return NewLockedError(c, lockedErr.Error(), lockedErr.Reason)
	case errors.Is(err, domain.ErrRevisedBudgetImmutable):
		return NewForbiddenError(c, "Revised budgets cannot be edited directly; create a change order instead")
	case errors.Is(err, domain.ErrBudgetNotFound):
		return NewNotFoundError(c, "Budget not found")
	case errors.Is(err, domain.ErrLineNotFound):
		return NewNotFoundError(c, "Budget line not found")
	case errors.Is(err, domain.ErrProjectNotFound):
		return NewNotFoundError(c, "Project not found")
	case errors.Is(err, domain.ErrPeriodNotFound):
		return NewNotFoundError(c, "Accounting period not found")
	case errors.Is(err, domain.ErrPeriodClosed):
		return NewConflictError(c, "Accounting period is closed")
	case errors.Is(err, domain.ErrNegativeAmount):
		return NewValidationError(c, "Amount must not be negative", []ValidationError{
			{Field: "amount", Message: "Amount must be zero or positive"},
		})
	case errors.Is(err, domain.ErrNotOriginalType):
		return NewValidationError(c, "Only original budgets can be finalized", nil)
	default:
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg(fallback)
		return NewInternalError(c, fallback)
	}
}

func (h *BudgetHandler) toBudgetResponse(b *domain.Budget) BudgetResponse {
	periodOpen := true
	if open, err := h.periodService.IsOpen(b.AccountingPeriodID); err == nil {
		periodOpen = open
	}

	return BudgetResponse{
		ID:                 b.ID,
		ProjectID:          b.ProjectID,
		Type:               string(b.Type),
		AccountingPeriodID: b.AccountingPeriodID,
		Finalized:          b.Finalized,
		Status:             string(b.Status),
		LockState:          string(domain.DeriveLockState(b, periodOpen)),
		Description:        b.Description,
		Date:               b.Date.Format("2006-01-02"),
		CreatedAt:          b.CreatedAt.Format(time.RFC3339),
	}
}

func toBudgetLineResponse(l *domain.BudgetLine) BudgetLineResponse {
	return BudgetLineResponse{
		ID:         l.ID,
		BudgetID:   l.BudgetID,
		CostCodeID: l.CostCodeID,
		CostTypeID: l.CostTypeID,
		Amount:     l.Amount.StringFixed(2),
		Notes:      l.Notes,
	}
}

// parseDate parses a YYYY-MM-DD date string
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
