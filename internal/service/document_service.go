package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"
	"time"

	"github.com/crewcost/crewcost-backend/internal/domain"
	"github.com/crewcost/crewcost-backend/internal/repository/storage"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	MaxDocumentSize = 20 * 1024 * 1024 // 20MB
	ThumbnailWidth  = 200
	JPEGQuality     = 85
	presignExpiry   = 15 * time.Minute
)

var (
	ErrDocumentTooLarge             = errors.New("file too large. Maximum size is 20MB")
	ErrInvalidDocumentType          = errors.New("invalid file type. Supported: PDF, JPEG, PNG, WebP")
	ErrInvalidImageData             = errors.New("invalid image data")
	ErrDocumentStorageNotConfigured = errors.New("document storage not configured")
)

// AllowedDocumentTypes maps extensions to content types
var AllowedDocumentTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// imageContentTypes are the document types that get a generated thumbnail
var imageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// DocumentMetadata is a document record with presigned download URLs
type DocumentMetadata struct {
	*domain.Document
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// DocumentService stores change order attachments: the object bytes in S3,
// the metadata row in postgres.
type DocumentService struct {
	docRepo domain.DocumentRepository
	icoRepo domain.ChangeOrderRepository
	store   storage.DocumentStore
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(docRepo domain.DocumentRepository, icoRepo domain.ChangeOrderRepository, store storage.DocumentStore) *DocumentService {
	return &DocumentService{
		docRepo: docRepo,
		icoRepo: icoRepo,
		store:   store,
	}
}

// IsEnabled indicates whether uploads are supported (storage configured)
func (s *DocumentService) IsEnabled() bool {
	return s != nil && s.store != nil
}

// Upload validates and stores an attachment on an internal change order. For
// image uploads a thumbnail is generated and stored alongside the original.
func (s *DocumentService) Upload(ctx context.Context, changeOrderID int32, fileName string, data []byte) (*domain.Document, error) {
	if !s.IsEnabled() {
		return nil, ErrDocumentStorageNotConfigured
	}

	if _, err := s.icoRepo.GetByID(changeOrderID); err != nil {
		return nil, err
	}

	if len(data) > MaxDocumentSize {
		return nil, ErrDocumentTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	contentType, ok := AllowedDocumentTypes[ext]
	if !ok {
		return nil, ErrInvalidDocumentType
	}

	id := uuid.New()
	objectKey := fmt.Sprintf("change-orders/%d/%s%s", changeOrderID, id, ext)

	if err := s.store.Upload(ctx, objectKey, bytes.NewReader(data), contentType, int64(len(data))); err != nil {
		return nil, fmt.Errorf("failed to upload document: %w", err)
	}

	thumbnailKey := ""
	if imageContentTypes[contentType] {
		key, err := s.uploadThumbnail(ctx, changeOrderID, id, data)
		if err != nil {
			_ = s.store.Delete(ctx, objectKey)
			return nil, err
		}
		thumbnailKey = key
	}

	doc, err := s.docRepo.Create(&domain.Document{
		ID:            id,
		ChangeOrderID: changeOrderID,
		FileName:      fileName,
		ContentType:   contentType,
		Size:          int64(len(data)),
		ObjectKey:     objectKey,
		ThumbnailKey:  thumbnailKey,
	})
	if err != nil {
		_ = s.store.Delete(ctx, objectKey)
		if thumbnailKey != "" {
			_ = s.store.Delete(ctx, thumbnailKey)
		}
		return nil, err
	}

	log.Info().
		Str("document_id", id.String()).
		Int32("change_order_id", changeOrderID).
		Str("file_name", fileName).
		Msg("Uploaded document")
	return doc, nil
}

// uploadThumbnail decodes the image, resizes it, and stores it as JPEG
func (s *DocumentService) uploadThumbnail(ctx context.Context, changeOrderID int32, id uuid.UUID, data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", ErrInvalidImageData
	}

	if img.Bounds().Dx() > ThumbnailWidth {
		img = imaging.Resize(img, ThumbnailWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	key := fmt.Sprintf("change-orders/%d/%s_thumb.jpg", changeOrderID, id)
	if err := s.store.Upload(ctx, key, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len())); err != nil {
		return "", fmt.Errorf("failed to upload thumbnail: %w", err)
	}
	return key, nil
}

// Get retrieves a document's metadata with presigned download URLs
func (s *DocumentService) Get(ctx context.Context, id uuid.UUID) (*DocumentMetadata, error) {
	doc, err := s.docRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return s.withURLs(ctx, doc)
}

// ListByChangeOrder retrieves every document attached to a change order
func (s *DocumentService) ListByChangeOrder(ctx context.Context, changeOrderID int32) ([]*DocumentMetadata, error) {
	if _, err := s.icoRepo.GetByID(changeOrderID); err != nil {
		return nil, err
	}

	docs, err := s.docRepo.GetByChangeOrder(changeOrderID)
	if err != nil {
		return nil, err
	}

	out := make([]*DocumentMetadata, 0, len(docs))
	for _, doc := range docs {
		meta, err := s.withURLs(ctx, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, meta)
	}
	return out, nil
}

// Delete removes the stored objects and the metadata row
func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.docRepo.GetByID(id)
	if err != nil {
		return err
	}

	if s.IsEnabled() {
		if err := s.store.Delete(ctx, doc.ObjectKey); err != nil {
			log.Warn().Err(err).Str("object_key", doc.ObjectKey).Msg("Failed to delete stored object")
		}
		if doc.ThumbnailKey != "" {
			if err := s.store.Delete(ctx, doc.ThumbnailKey); err != nil {
				log.Warn().Err(err).Str("object_key", doc.ThumbnailKey).Msg("Failed to delete stored thumbnail")
			}
		}
	}

	return s.docRepo.Delete(id)
}

func (s *DocumentService) withURLs(ctx context.Context, doc *domain.Document) (*DocumentMetadata, error) {
	meta := &DocumentMetadata{Document: doc}
	if !s.IsEnabled() {
		return meta, nil
	}

	url, err := s.store.PresignURL(ctx, doc.ObjectKey, presignExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign document url: %w", err)
	}
	meta.URL = url

	if doc.ThumbnailKey != "" {
		thumbURL, err := s.store.PresignURL(ctx, doc.ThumbnailKey, presignExpiry)
		if err != nil {
			return nil, fmt.Errorf("failed to presign thumbnail url: %w", err)
		}
		meta.ThumbnailURL = thumbURL
	}
	return meta, nil
}
