package domain

import (
	"time"

	"github.com/google/uuid"
)

// Document is a file attached to an internal change order: site photos,
// signed contract amendments, supporting quotes.
type Document struct {
	ID            uuid.UUID `json:"id"`
	ChangeOrderID int32     `json:"changeOrderId"`
	FileName      string    `json:"fileName"`
	ContentType   string    `json:"contentType"`
	Size          int64     `json:"size"`
	ObjectKey     string    `json:"-"`
	ThumbnailKey  string    `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
}

// DocumentRepository defines the interface for document metadata persistence
type DocumentRepository interface {
	Create(doc *Document) (*Document, error)
	GetByID(id uuid.UUID) (*Document, error)
	GetByChangeOrder(changeOrderID int32) ([]*Document, error)
	Delete(id uuid.UUID) error
}
