package postgres

import (
	"context"
	"errors"

	"github.com/crewcost/crewcost-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentRepository implements domain.DocumentRepository using PostgreSQL
type DocumentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

const documentColumns = `id, change_order_id, file_name, content_type, size, object_key, thumbnail_key, created_at`

// Create inserts document metadata
func (r *DocumentRepository) Create(doc *domain.Document) (*domain.Document, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO documents (id, change_order_id, file_name, content_type, size, object_key, thumbnail_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+documentColumns,
		doc.ID, doc.ChangeOrderID, doc.FileName, doc.ContentType, doc.Size, doc.ObjectKey, doc.ThumbnailKey)
	return scanDocument(row)
}

// GetByID retrieves document metadata by its identifier
func (r *DocumentRepository) GetByID(id uuid.UUID) (*domain.Document, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

// GetByChangeOrder retrieves all documents attached to a change order
func (r *DocumentRepository) GetByChangeOrder(changeOrderID int32) ([]*domain.Document, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `SELECT `+documentColumns+` FROM documents WHERE change_order_id = $1 ORDER BY created_at`, changeOrderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Delete removes document metadata
func (r *DocumentRepository) Delete(id uuid.UUID) error {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var d domain.Document
	err := row.Scan(&d.ID, &d.ChangeOrderID, &d.FileName, &d.ContentType, &d.Size, &d.ObjectKey, &d.ThumbnailKey, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
