package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/photoshare/internal/common"
	"github.com/dmitrijs2005/photoshare/internal/filex"
	"github.com/dmitrijs2005/photoshare/internal/server/models"
)

// LocalStore keeps blobs as files in a single directory. Content types are
// derived from the file extension.
type LocalStore struct {
	root string
}

// NewLocalStore creates dir if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	root, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &LocalStore{root: root}, nil
}

// Put writes to a temporary file first so that readers never observe a
// partial blob, then links it into place. The link fails if key exists.
func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	path, err := filex.SafeJoin(s.root, key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write blob: %w", err)
	}

	if err := os.Link(tmp.Name(), path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("store blob: %w", err)
	}
	return nil
}

func (s *LocalStore) Get(ctx context.Context, key string) (*models.Blob, error) {
	path, err := filex.SafeJoin(s.root, key)
	if err != nil {
		return nil, common.ErrorNotFound
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if fi.IsDir() {
		f.Close()
		return nil, common.ErrorNotFound
	}

	return &models.Blob{
		Body:          f,
		ContentType:   ContentTypeFor(filepath.Base(path)),
		ContentLength: fi.Size(),
	}, nil
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	path, err := filex.SafeJoin(s.root, key)
	if err != nil {
		return common.ErrorNotFound
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return common.ErrorNotFound
		}
		return err
	}
	return nil
}
