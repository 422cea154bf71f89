package gcs

import (
	"context"
)

// StorageService reads and writes snapshot objects in cloud storage.
type StorageService interface {
	// UploadFile uploads a local file to bucketName under objectName.
	UploadFile(ctx context.Context, bucketName, objectName, filePath string) error

	// FetchFromGCS downloads the object at a gs://bucket/object URI.
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)
}
