package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/crewcost/crewcost-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProjectHandler handles project HTTP requests
type ProjectHandler struct {
	projectRepo domain.ProjectRepository
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projectRepo domain.ProjectRepository) *ProjectHandler {
	return &ProjectHandler{
		projectRepo: projectRepo,
	}
}

// CreateProjectRequest represents the request to create a project
type CreateProjectRequest struct {
	Name string `json:"name"`
}

// ProjectResponse represents a project in API responses
type ProjectResponse struct {
	ID        int32  `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

// Create handles POST /api/v1/projects
func (h *ProjectHandler) Create(c echo.Context) error {
	var req CreateProjectRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return NewValidationError(c, "Project name is required", []ValidationError{
			{Field: "name", Message: "Name must not be empty"},
		})
	}

	project, err := h.projectRepo.Create(name)
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("Failed to create project")
		return NewInternalError(c, "Failed to create project")
	}

	return c.JSON(http.StatusCreated, toProjectResponse(project))
}

// GetAll handles GET /api/v1/projects
func (h *ProjectHandler) GetAll(c echo.Context) error {
	projects, err := h.projectRepo.GetAll()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list projects")
		return NewInternalError(c, "Failed to list projects")
	}

	response := make([]ProjectResponse, len(projects))
	for i, project := range projects {
		response[i] = toProjectResponse(project)
	}

	return c.JSON(http.StatusOK, response)
}

// GetByID handles GET /api/v1/projects/:id
func (h *ProjectHandler) GetByID(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid project ID", nil)
	}

	project, err := h.projectRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, domain.ErrProjectNotFound) {
			return NewNotFoundError(c, "Project not found")
		}
		log.Error().Err(err).Int32("project_id", id).Msg("Failed to get project")
		return NewInternalError(c, "Failed to get project")
	}

	return c.JSON(http.StatusOK, toProjectResponse(project))
}

func toProjectResponse(p *domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}
