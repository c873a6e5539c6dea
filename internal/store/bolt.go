package store

import (
	"context"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	boltFileName = "proposal.bolt"
	boltBucket   = "local_storage"
)

func (w Workspace) boltPath() string {
	return filepath.Join(w.Dir, boltFileName)
}

type BoltBackend struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the bolt file. bolt holds an exclusive file lock,
// so a second process waits up to a second and then fails.
func OpenBolt(path string) (*BoltBackend, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltBackend{db: db}, nil
}

func (b *BoltBackend) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(boltBucket)).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		// v is only valid inside the transaction.
		out = append([]byte(nil), v...)
		return nil
	})
	return out, err
}

func (b *BoltBackend) Set(_ context.Context, key string, value []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(boltBucket)).Put([]byte(key), value)
	})
}

func (b *BoltBackend) Remove(_ context.Context, key string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(boltBucket)).Delete([]byte(key))
	})
}

func (b *BoltBackend) Close() error {
	return b.db.Close()
}
