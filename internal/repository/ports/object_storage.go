package ports

import (
	"context"
	"io"
)

// ObjectStorage uploads one binary object and returns its publicly
// addressable URL. Each call is independent; there is no multi-object
// transaction.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error)
}
