package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/spf13/afero"
)

/*
DirectoryStore stores reports as files under a root directory of an afero
filesystem. The CLI uses the OS filesystem; tests use an in-memory one.
*/

////////////////////////////////////////////////////////////////////////////////

// DirectoryStore is a storage provider backed by a directory.
type DirectoryStore struct {
	fs   afero.Fs
	root string
}

// NewDirectoryStore creates a new DirectoryStore, creating root if needed.
func NewDirectoryStore(fs afero.Fs, root string) (*DirectoryStore, error) {
	if err := fs.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", root, err)
	}
	return &DirectoryStore{fs: fs, root: root}, nil
}

func (d *DirectoryStore) path(id string) string {
	return path.Join(d.root, id)
}

// Put stores an object in the directory.
func (d *DirectoryStore) Put(_ context.Context, id string, r io.Reader) error {
	if err := afero.WriteReader(d.fs, d.path(id), r); err != nil {
		return fmt.Errorf("write failure: %w", err)
	}
	return nil
}

// Get opens an object in the directory.
func (d *DirectoryStore) Get(_ context.Context, id string) (io.ReadCloser, error) {
	f, err := d.fs.Open(d.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to open %s: %w", id, err)
	}
	return f, nil
}

// Delete removes an object from the directory.
func (d *DirectoryStore) Delete(_ context.Context, id string) error {
	err := d.fs.Remove(d.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) { // For conformance to S3 API
			return nil
		}
		return fmt.Errorf("deletion failure: %w", err)
	}
	return nil
}

func (d *DirectoryStore) String() string {
	return fmt.Sprintf("directory(%s)", d.root)
}
