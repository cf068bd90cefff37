package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/crewcost/crewcost-backend/internal/domain"
	"github.com/crewcost/crewcost-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// DocumentHandler handles change order document HTTP requests
type DocumentHandler struct {
	documentService *service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
	}
}

// Upload handles POST /api/v1/change-orders/:id/documents
func (h *DocumentHandler) Upload(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid change order ID", nil)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "File is required", []ValidationError{
			{Field: "file", Message: "A multipart file field named 'file' is required"},
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to read uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read uploaded file")
	}

	doc, err := h.documentService.Upload(c.Request().Context(), id, fileHeader.Filename, data)
	if err != nil {
		return h.mapDocumentError(c, err, "Failed to upload document")
	}

	return c.JSON(http.StatusCreated, doc)
}

// List handles GET /api/v1/change-orders/:id/documents
func (h *DocumentHandler) List(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid change order ID", nil)
	}

	docs, err := h.documentService.ListByChangeOrder(c.Request().Context(), id)
	if err != nil {
		return h.mapDocumentError(c, err, "Failed to list documents")
	}

	return c.JSON(http.StatusOK, docs)
}

// Get handles GET /api/v1/documents/:id
func (h *DocumentHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid document ID", nil)
	}

	doc, err := h.documentService.Get(c.Request().Context(), id)
	if err != nil {
		return h.mapDocumentError(c, err, "Failed to get document")
	}

	return c.JSON(http.StatusOK, doc)
}

// Delete handles DELETE /api/v1/documents/:id
func (h *DocumentHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid document ID", nil)
	}

	if err := h.documentService.Delete(c.Request().Context(), id); err != nil {
		return h.mapDocumentError(c, err, "Failed to delete document")
	}

	return c.NoContent(http.StatusNoContent)
}

// mapDocumentError translates service errors to problem responses
func (h *DocumentHandler) mapDocumentError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrDocumentTooLarge),
		errors.Is(err, service.ErrInvalidDocumentType),
		errors.Is(err, service.ErrInvalidImageData):
		return NewValidationError(c, err.Error(), nil)
	case errors.Is(err, service.ErrDocumentStorageNotConfigured):
		return NewConflictError(c, "Document storage is not configured")
	case errors.Is(err, domain.ErrDocumentNotFound):
		return NewNotFoundError(c, "Document not found")
	case errors.Is(err, domain.ErrChangeOrderNotFound):
		return NewNotFoundError(c, "Change order not found")
	default:
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg(fallback)
		return NewInternalError(c, fallback)
	}
}
