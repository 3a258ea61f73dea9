// Package storage keeps uploaded image files outside the database.
package storage

import (
	"context"
	"io"
)

// Store persists image files and returns the reference stored in images.path
type Store interface {
	Save(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, ref string) error
}
