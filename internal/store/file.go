package store

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"

	"proposal-cli/internal/config"
)

const kvDirName = "kv"

func (w Workspace) kvDir() string {
	return filepath.Join(w.Dir, kvDirName)
}

// FileBackend stores each key as <dir>/<escaped key>.json.
type FileBackend struct {
	dir string
}

func OpenFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, url.PathEscape(key)+".json")
}

func (b *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	v, err := os.ReadFile(b.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return v, err
}

func (b *FileBackend) Set(_ context.Context, key string, value []byte) error {
	return config.WriteFileAtomic(b.dir, url.PathEscape(key)+".*.tmp", b.path(key), value, 0o644)
}

func (b *FileBackend) Remove(_ context.Context, key string) error {
	err := os.Remove(b.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (b *FileBackend) Close() error { return nil }
