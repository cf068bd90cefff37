package domain

import "time"

// ProjectStatus represents the lifecycle status of a project
type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusInactive ProjectStatus = "inactive"
)

// Project represents a construction project that budgets are recorded against
type Project struct {
	ID        int32         `json:"id"`
	Name      string        `json:"name"`
	Status    ProjectStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// ProjectRepository defines the interface for project persistence
type ProjectRepository interface {
	Create(name string) (*Project, error)
	GetByID(id int32) (*Project, error)
	GetAll() ([]*Project, error)
}
