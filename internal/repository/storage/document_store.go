package storage

import (
	"context"
	"io"
	"time"
)

// DocumentStore defines the interface for document object storage
type DocumentStore interface {
	Upload(ctx context.Context, objectKey string, data io.Reader, contentType string, size int64) error
	Delete(ctx context.Context, objectKey string) error
	PresignURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}
