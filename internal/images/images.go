// Package images abstracts cover-image storage.
package images

import (
	"context"
	"io"
)

type UploadResult struct {
	URL      string
	PublicID string
}

type Store interface {
	Upload(ctx context.Context, r io.Reader) (UploadResult, error)
	Destroy(ctx context.Context, publicID string) error
}
