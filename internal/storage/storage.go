// Package storage abstracts where espacio images live.  Blobs are opaque
// byte slices keyed by a generated name; the espacios table only stores
// that name.  Two backends exist: the local disk under an imagenes/
// directory and an S3 bucket.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get when no blob exists under the name.
var ErrNotFound = errors.New("blob not found")

// BlobStore stores and retrieves image blobs by name.
type BlobStore interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
}

// NewImageName returns a fresh unique blob name.  Names are never derived
// from client input.
func NewImageName() string {
	return uuid.NewString() + ".bin"
}
