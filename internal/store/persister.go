package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"proposal-cli/internal/model"
)

const (
	// SnapshotKey is the single key the whole document is stored under.
	SnapshotKey     = "document_builder_snapshot_v1"
	SnapshotVersion = 1
)

// Persister saves and restores the document snapshot. Only one record exists;
// every save replaces it wholesale (last write wins across processes).
type Persister struct {
	backend Backend
	log     *zap.Logger
	now     func() time.Time
}

func NewPersister(b Backend, log *zap.Logger) *Persister {
	if log == nil {
		log = zap.NewNop()
	}
	return &Persister{backend: b, log: log, now: time.Now}
}

func (p *Persister) Backend() Backend { return p.backend }

// Save stamps savedAt and version, then writes the snapshot. Failures are
// logged and also returned so callers can decide whether to retry or warn.
func (p *Persister) Save(ctx context.Context, snap model.Snapshot) (model.Snapshot, error) {
	snap.SavedAt = p.now().UTC().Format(time.RFC3339Nano)
	snap.Version = SnapshotVersion
	if snap.DocumentBlocks == nil {
		snap.DocumentBlocks = []model.Block{}
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		p.log.Warn("snapshot encode failed", zap.Error(err))
		return snap, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := p.backend.Set(ctx, SnapshotKey, raw); err != nil {
		p.log.Warn("snapshot save failed", zap.String("key", SnapshotKey), zap.Error(err))
		return snap, fmt.Errorf("save snapshot: %w", err)
	}
	p.log.Debug("snapshot saved", zap.Int("blocks", len(snap.DocumentBlocks)), zap.Int("bytes", len(raw)))
	return snap, nil
}

// Load returns the stored snapshot, or nil when none exists or it cannot be
// read or parsed. The version stamp is not checked.
func (p *Persister) Load(ctx context.Context) *model.Snapshot {
	raw, err := p.backend.Get(ctx, SnapshotKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			p.log.Warn("snapshot load failed", zap.String("key", SnapshotKey), zap.Error(err))
		}
		return nil
	}
	var snap model.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		p.log.Warn("snapshot unparsable; ignoring", zap.String("key", SnapshotKey), zap.Error(err))
		return nil
	}
	return &snap
}

// Raw returns the stored bytes as-is.
func (p *Persister) Raw(ctx context.Context) ([]byte, error) {
	return p.backend.Get(ctx, SnapshotKey)
}

// Clear removes the snapshot. Failures are logged only.
func (p *Persister) Clear(ctx context.Context) {
	if err := p.backend.Remove(ctx, SnapshotKey); err != nil {
		p.log.Warn("snapshot clear failed", zap.String("key", SnapshotKey), zap.Error(err))
	}
}
