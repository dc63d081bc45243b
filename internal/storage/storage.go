package storage

import (
	"context"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the interface for object storage operations. Only the
// read side is exposed here: demo videos are provisioned out of band and the
// API hands out temporary viewing URLs.
type FileStorage interface {
	// GeneratePresignedDownloadURL creates a temporary URL that allows GET
	// requests for viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}
