package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/crewcost/crewcost-backend/internal/domain"
	"github.com/crewcost/crewcost-backend/internal/service"
	"github.com/crewcost/crewcost-backend/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// PeriodHandler handles accounting period HTTP requests
type PeriodHandler struct {
	periodService *service.PeriodService
}

// NewPeriodHandler creates a new PeriodHandler
func NewPeriodHandler(periodService *service.PeriodService) *PeriodHandler {
	return &PeriodHandler{
		periodService: periodService,
	}
}

// CreatePeriodRequest represents the request to open a period
type CreatePeriodRequest struct {
	Month       int    `json:"month"`
	Year        int    `json:"year"`
	Description string `json:"description"`
}

// PeriodResponse represents an accounting period in API responses
type PeriodResponse struct {
	ID          int32  `json:"id"`
	Month       int    `json:"month"`
	Year        int    `json:"year"`
	Status      string `json:"status"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
}

// Create handles POST /api/v1/periods
func (h *PeriodHandler) Create(c echo.Context) error {
	var req CreatePeriodRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	period, err := h.periodService.OpenPeriod(req.Month, req.Year, req.Description)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, "Invalid month or year", []ValidationError{
				{Field: "month", Message: "Month must be between 1 and 12"},
				{Field: "year", Message: "Year must be between 2000 and 2100"},
			})
		}
		if errors.Is(err, domain.ErrDuplicatePeriod) {
			return NewConflictError(c, "A period for this month already exists")
		}
		log.Error().Err(err).Int("year", req.Year).Int("month", req.Month).Msg("Failed to open period")
		return NewInternalError(c, "Failed to open period")
	}

	return c.JSON(http.StatusCreated, toPeriodResponse(period))
}

// GetAll handles GET /api/v1/periods
func (h *PeriodHandler) GetAll(c echo.Context) error {
	periods, err := h.periodService.ListPeriods()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list periods")
		return NewInternalError(c, "Failed to list periods")
	}

	response := make([]PeriodResponse, len(periods))
	for i, period := range periods {
		response[i] = toPeriodResponse(period)
	}

	return c.JSON(http.StatusOK, response)
}

// GetByID handles GET /api/v1/periods/:id
func (h *PeriodHandler) GetByID(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid period ID", nil)
	}

	period, err := h.periodService.GetPeriod(id)
	if err != nil {
		if errors.Is(err, domain.ErrPeriodNotFound) {
			return NewNotFoundError(c, "Period not found")
		}
		log.Error().Err(err).Int32("period_id", id).Msg("Failed to get period")
		return NewInternalError(c, "Failed to get period")
	}

	return c.JSON(http.StatusOK, toPeriodResponse(period))
}

// Close handles POST /api/v1/periods/:id/close
func (h *PeriodHandler) Close(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid period ID", nil)
	}

	period, err := h.periodService.ClosePeriod(id)
	if err != nil {
		if errors.Is(err, domain.ErrPeriodNotFound) {
			return NewNotFoundError(c, "Period not found")
		}
		if errors.Is(err, domain.ErrLastOpenPeriod) {
			return NewConflictError(c, "Cannot close the only open period; open another period first")
		}
		log.Error().Err(err).Int32("period_id", id).Msg("Failed to close period")
		return NewInternalError(c, "Failed to close period")
	}

	return c.JSON(http.StatusOK, toPeriodResponse(period))
}

// Reopen handles POST /api/v1/periods/:id/reopen
func (h *PeriodHandler) Reopen(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid period ID", nil)
	}

	period, err := h.periodService.ReopenPeriod(id)
	if err != nil {
		if errors.Is(err, domain.ErrPeriodNotFound) {
			return NewNotFoundError(c, "Period not found")
		}
		log.Error().Err(err).Int32("period_id", id).Msg("Failed to reopen period")
		return NewInternalError(c, "Failed to reopen period")
	}

	return c.JSON(http.StatusOK, toPeriodResponse(period))
}

// parseID parses an int32 path parameter
func parseID(c echo.Context, name string) (int32, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil || id < 1 {
		return 0, errors.New("invalid id")
	}
	return int32(id), nil
}

func toPeriodResponse(p *domain.AccountingPeriod) PeriodResponse {
	start, end := util.PeriodBoundaries(p.Year, p.Month)
	return PeriodResponse{
		ID:          p.ID,
		Month:       p.Month,
		Year:        p.Year,
		Status:      string(p.Status),
		StartDate:   start.Format("2006-01-02"),
		EndDate:     end.Format("2006-01-02"),
		Description: p.Description,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}
