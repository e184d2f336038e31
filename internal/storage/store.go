package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrNotFound    = errors.New("blob not found")
	ErrInvalidName = errors.New("invalid blob name")
)

// ObjectInfo describes a stored blob.
type ObjectInfo struct {
	Name string
	Size int64
}

// Store abstracts blob storage. Blobs are content-addressed: the name is
// the payload hash plus the declared extension, so Put is write-if-absent
// and reports whether it actually created the blob.
type Store interface {
	Put(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (bool, error)
	Open(ctx context.Context, name string) (io.ReadCloser, ObjectInfo, error)
	Exists(ctx context.Context, name string) (bool, error)
	Remove(ctx context.Context, name string) error
}
