package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Backend.Get for a key that was never set or was removed.
var ErrNotFound = errors.New("key not found")

// Backend is a minimal string-keyed blob store: the local analogue of browser
// local storage. Values are opaque bytes.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}

const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendFile   = "file"
)

func BackendKinds() []string {
	return []string{BackendSQLite, BackendBolt, BackendFile}
}

// Open creates the workspace directory if needed and opens the named backend in it.
func (w Workspace) Open(ctx context.Context, kind string) (Backend, error) {
	if err := w.Ensure(); err != nil {
		return nil, err
	}
	var (
		b   Backend
		err error
	)
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", BackendSQLite:
		b, err = OpenSQLite(ctx, w.sqlitePath())
	case BackendBolt:
		b, err = OpenBolt(w.boltPath())
	case BackendFile:
		b, err = OpenFileBackend(w.kvDir())
	default:
		return nil, fmt.Errorf("unknown storage backend %q (expected %s)", kind, strings.Join(BackendKinds(), "|"))
	}
	if err != nil {
		return nil, fmt.Errorf("open %s storage in %s: %w", kind, w.Dir, err)
	}
	return b, nil
}
