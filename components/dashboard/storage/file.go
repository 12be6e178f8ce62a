package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// File stores each key as a JSON file inside a directory. Writes go to a
// temp file first and are renamed into place.
type File struct {
	dir string
}

var _ dashboard.KeyValue = (*File)(nil)

// NewFile prepares dir and returns a file backend rooted there.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage: file directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("storage: create directory %s: %w", dir, err)
	}
	return &File{dir: dir}, nil
}

// Path returns the file used for key.
func (f *File) Path(key string) string {
	return filepath.Join(f.dir, unsafeKeyChars.ReplaceAllString(key, "_")+".json")
}

func (f *File) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(f.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage: read %s: %w", key, err)
	}
	return data, true, nil
}

func (f *File) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, ".dashboard-*")
	if err != nil {
		return fmt.Errorf("storage: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: write %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), f.Path(key)); err != nil {
		return fmt.Errorf("storage: replace %s: %w", key, err)
	}
	return nil
}
