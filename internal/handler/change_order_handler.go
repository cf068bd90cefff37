package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/crewcost/crewcost-backend/internal/domain"
	"github.com/crewcost/crewcost-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ChangeOrderHandler handles change order HTTP requests
type ChangeOrderHandler struct {
	changeOrderService *service.ChangeOrderService
}

// NewChangeOrderHandler creates a new ChangeOrderHandler
func NewChangeOrderHandler(changeOrderService *service.ChangeOrderService) *ChangeOrderHandler {
	return &ChangeOrderHandler{
		changeOrderService: changeOrderService,
	}
}

// ChangeOrderLineRequest represents one amendment line in a request
type ChangeOrderLineRequest struct {
	CostCodeID   int32  `json:"costCodeId"`
	CostTypeID   int32  `json:"costTypeId"`
	ChangeAmount string `json:"changeAmount"`
}

// CreateChangeOrderRequest represents the request to create an internal change order
type CreateChangeOrderRequest struct {
	OriginalBudgetID int32                    `json:"originalBudgetId"`
	Description      string                   `json:"description"`
	Lines            []ChangeOrderLineRequest `json:"lines"`
}

// RecordECOLineRequest represents the request to record an external change order line
type RecordECOLineRequest struct {
	ECOID              int32  `json:"ecoId"`
	ProjectID          int32  `json:"projectId"`
	CostCodeID         int32  `json:"costCodeId"`
	CostTypeID         int32  `json:"costTypeId"`
	BudgetAmountChange string `json:"budgetAmountChange"`
}

// ChangeOrderLineResponse represents an amendment line in API responses
type ChangeOrderLineResponse struct {
	ID           int32  `json:"id"`
	CostCodeID   int32  `json:"costCodeId"`
	CostTypeID   int32  `json:"costTypeId"`
	ChangeAmount string `json:"changeAmount"`
}

// ChangeOrderResponse represents an internal change order in API responses
type ChangeOrderResponse struct {
	ID                int32                     `json:"id"`
	OriginalBudgetID  int32                     `json:"originalBudgetId"`
	RevisedBudgetID   int32                     `json:"revisedBudgetId"`
	Description       string                    `json:"description"`
	TotalChangeAmount string                    `json:"totalChangeAmount"`
	Lines             []ChangeOrderLineResponse `json:"lines"`
	CreatedAt         string                    `json:"createdAt"`
}

// ECOLineResponse represents an external change order line in API responses
type ECOLineResponse struct {
	ID                 int32  `json:"id"`
	ECOID              int32  `json:"ecoId"`
	ProjectID          int32  `json:"projectId"`
	CostCodeID         int32  `json:"costCodeId"`
	CostTypeID         int32  `json:"costTypeId"`
	BudgetAmountChange string `json:"budgetAmountChange"`
	Status             string `json:"status"`
}

// Create handles POST /api/v1/change-orders
func (h *ChangeOrderHandler) Create(c echo.Context) error {
	var req CreateChangeOrderRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	lines := make([]service.ChangeOrderLineInput, 0, len(req.Lines))
	for i, line := range req.Lines {
		amount, err := decimal.NewFromString(line.ChangeAmount)
		if err != nil {
			return NewValidationError(c, "Invalid change amount", []ValidationError{
				{Field: "lines", Message: "Line " + strconv.Itoa(i) + " change amount must be a decimal number"},
			})
		}
		lines = append(lines, service.ChangeOrderLineInput{
			CostCodeID:   line.CostCodeID,
			CostTypeID:   line.CostTypeID,
			ChangeAmount: amount,
		})
	}

	ico, revised, err := h.changeOrderService.CreateInternalChangeOrder(req.OriginalBudgetID, req.Description, lines)
	if err != nil {
		return h.mapChangeOrderError(c, err, "Failed to create change order")
	}

	log.Info().Int32("change_order_id", ico.ID).Int32("revised_budget_id", revised.ID).Msg("Change order created via API")
	return c.JSON(http.StatusCreated, toChangeOrderResponse(ico))
}

// GetByID handles GET /api/v1/change-orders/:id
func (h *ChangeOrderHandler) GetByID(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid change order ID", nil)
	}

	ico, err := h.changeOrderService.GetChangeOrder(id)
	if err != nil {
		return h.mapChangeOrderError(c, err, "Failed to get change order")
	}

	return c.JSON(http.StatusOK, toChangeOrderResponse(ico))
}

// GetByBudget handles GET /api/v1/budgets/:id/change-orders
func (h *ChangeOrderHandler) GetByBudget(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	orders, err := h.changeOrderService.ListByOriginalBudget(id)
	if err != nil {
		return h.mapChangeOrderError(c, err, "Failed to list change orders")
	}

	response := make([]ChangeOrderResponse, len(orders))
	for i, ico := range orders {
		response[i] = toChangeOrderResponse(ico)
	}

	return c.JSON(http.StatusOK, response)
}

// RecordECOLine handles POST /api/v1/eco-lines
func (h *ChangeOrderHandler) RecordECOLine(c echo.Context) error {
	var req RecordECOLineRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	change, err := decimal.NewFromString(req.BudgetAmountChange)
	if err != nil {
		return NewValidationError(c, "Invalid budget amount change", []ValidationError{
			{Field: "budgetAmountChange", Message: "Must be a decimal number"},
		})
	}

	line, err := h.changeOrderService.RecordECOLine(req.ECOID, req.ProjectID, req.CostCodeID, req.CostTypeID, change)
	if err != nil {
		return h.mapChangeOrderError(c, err, "Failed to record ECO line")
	}

	return c.JSON(http.StatusCreated, toECOLineResponse(line))
}

// ListECOLines handles GET /api/v1/projects/:id/eco-lines
func (h *ChangeOrderHandler) ListECOLines(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid project ID", nil)
	}

	lines, err := h.changeOrderService.ListECOLines(id)
	if err != nil {
		return h.mapChangeOrderError(c, err, "Failed to list ECO lines")
	}

	response := make([]ECOLineResponse, len(lines))
	for i, line := range lines {
		response[i] = toECOLineResponse(line)
	}

	return c.JSON(http.StatusOK, response)
}

// DeactivateECOLine handles POST /api/v1/eco-lines/:id/deactivate
func (h *ChangeOrderHandler) DeactivateECOLine(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid ECO line ID", nil)
	}

	if err := h.changeOrderService.DeactivateECOLine(id); err != nil {
		return h.mapChangeOrderError(c, err, "Failed to deactivate ECO line")
	}

	return c.NoContent(http.StatusNoContent)
}

// mapChangeOrderError translates service errors to problem responses
func (h *ChangeOrderHandler) mapChangeOrderError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrNoChangeOrderLines):
		return NewValidationError(c, "A change order needs at least one line", nil)
	case errors.Is(err, domain.ErrDimensionRequired):
		return NewValidationError(c, "Cost code and cost type are required on change order lines", nil)
	case errors.Is(err, domain.ErrNotOriginalType):
		return NewValidationError(c, "Change orders can only amend original budgets", nil)
	case errors.Is(err, domain.ErrBudgetNotActive):
		return NewValidationError(c, "Change orders can only amend active budgets", nil)
	case errors.Is(err, domain.ErrBudgetNotFound):
		return NewNotFoundError(c, "Budget not found")
	case errors.Is(err, domain.ErrChangeOrderNotFound):
		return NewNotFoundError(c, "Change order not found")
	case errors.Is(err, domain.ErrECOLineNotFound):
		return NewNotFoundError(c, "ECO line not found")
	case errors.Is(err, domain.ErrProjectNotFound):
		return NewNotFoundError(c, "Project not found")
	default:
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg(fallback)
		return NewInternalError(c, fallback)
	}
}

func toChangeOrderResponse(ico *domain.InternalChangeOrder) ChangeOrderResponse {
	lines := make([]ChangeOrderLineResponse, len(ico.Lines))
	for i, line := range ico.Lines {
		lines[i] = ChangeOrderLineResponse{
			ID:           line.ID,
			CostCodeID:   line.CostCodeID,
			CostTypeID:   line.CostTypeID,
			ChangeAmount: line.ChangeAmount.StringFixed(2),
		}
	}

	return ChangeOrderResponse{
		ID:                ico.ID,
		OriginalBudgetID:  ico.OriginalBudgetID,
		RevisedBudgetID:   ico.RevisedBudgetID,
		Description:       ico.Description,
		TotalChangeAmount: ico.TotalChangeAmount.StringFixed(2),
		Lines:             lines,
		CreatedAt:         ico.CreatedAt.Format(time.RFC3339),
	}
}

func toECOLineResponse(l *domain.ExternalChangeOrderLine) ECOLineResponse {
	return ECOLineResponse{
		ID:                 l.ID,
		ECOID:              l.ECOID,
		ProjectID:          l.ProjectID,
		CostCodeID:         l.CostCodeID,
		CostTypeID:         l.CostTypeID,
		BudgetAmountChange: l.BudgetAmountChange.StringFixed(2),
		Status:             string(l.Status),
	}
}
