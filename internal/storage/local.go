package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const tempDirName = ".tmp"

// DiskStore keeps blobs as plain files under a root directory. Writes go
// through a temp file and a rename, so a blob is never visible
// half-written.
type DiskStore struct {
	root string
}

// NewDiskStore creates the root and temp directories if needed.
func NewDiskStore(root string) (*DiskStore, error) {
	root = filepath.Clean(root)
	if err := os.MkdirAll(filepath.Join(root, tempDirName), 0o755); err != nil {
		return nil, fmt.Errorf("creating images directory: %w", err)
	}
	return &DiskStore{root: root}, nil
}

// Root returns the directory blobs are stored in.
func (ds *DiskStore) Root() string {
	return ds.root
}

// validateName rejects anything that could escape the root. Names here
// are hash+extension, so path separators never appear in legal input.
func validateName(name string) error {
	if name == "" {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, "/\\\x00") || strings.Contains(name, "..") {
		return fmt.Errorf("name %q: %w", name, ErrInvalidName)
	}
	return nil
}

// Put stores a blob unless it already exists. Identical content maps to
// the same name, so an existing file is left untouched.
func (ds *DiskStore) Put(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (bool, error) {
	if err := validateName(name); err != nil {
		return false, err
	}

	dataPath := filepath.Join(ds.root, name)
	if _, err := os.Stat(dataPath); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat blob %q: %w", name, err)
	}

	tempPath := filepath.Join(ds.root, tempDirName, uuid.NewString())
	f, err := os.Create(tempPath)
	if err != nil {
		return false, fmt.Errorf("create temp blob: %w", err)
	}
	if _, err := io.Copy(f, reader); err != nil {
		f.Close()
		os.Remove(tempPath)
		return false, fmt.Errorf("write blob %q: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return false, fmt.Errorf("close blob %q: %w", name, err)
	}
	if err := os.Rename(tempPath, dataPath); err != nil {
		os.Remove(tempPath)
		return false, fmt.Errorf("commit blob %q: %w", name, err)
	}
	return true, nil
}

// Open returns a reader over the blob content.
func (ds *DiskStore) Open(ctx context.Context, name string) (io.ReadCloser, ObjectInfo, error) {
	if err := validateName(name); err != nil {
		return nil, ObjectInfo{}, err
	}

	dataPath := filepath.Join(ds.root, name)
	f, err := os.Open(dataPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ObjectInfo{}, fmt.Errorf("blob %q: %w", name, ErrNotFound)
		}
		return nil, ObjectInfo{}, fmt.Errorf("open blob %q: %w", name, err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ObjectInfo{}, fmt.Errorf("stat blob %q: %w", name, err)
	}
	return f, ObjectInfo{Name: name, Size: stat.Size()}, nil
}

// Exists reports whether the blob file is present.
func (ds *DiskStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := validateName(name); err != nil {
		return false, err
	}

	_, err := os.Stat(filepath.Join(ds.root, name))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes the blob file. Removing an absent blob is not an error;
// the deletion coordinator checks existence first.
func (ds *DiskStore) Remove(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(ds.root, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove blob %q: %w", name, err)
	}
	return nil
}
