package service

import (
	"context"
	"io"
)

// Uploader stores user-supplied blobs in external object storage and
// returns the public URL of the stored object.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, folder string, publicID string) (string, error)
	Delete(ctx context.Context, publicID string) error
}
