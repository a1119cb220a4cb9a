package object

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidKey is returned for keys that would escape the store root.
var ErrInvalidKey = errors.New("invalid storage key")

// Object describes a stored blob.
type Object struct {
	Key      string
	Size     int64
	MimeType string
}

// ObjectStore defines the contract for saving and retrieving uploaded documents.
type ObjectStore interface {
	// Save stores r under a fresh key in the owner's namespace. When contentType is
	// empty the type is sniffed from the first bytes.
	Save(ctx context.Context, owner string, fileName string, contentType string, r io.Reader) (Object, error)
	// SaveWithKey stores r at an exact key, for artifacts derived from an upload.
	SaveWithKey(ctx context.Context, key string, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
