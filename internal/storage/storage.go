package storage

import (
	"context"
	"io"
	"time"
)

// UploadInput describes one product image to store.
type UploadInput struct {
	Bucket      string
	Key         string
	ContentType string
	Body        io.Reader
}

// Service stores product images in remote object storage.
type Service interface {
	Upload(ctx context.Context, input UploadInput) (string, error)
	Delete(ctx context.Context, bucket, key string) error
	GetObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}
