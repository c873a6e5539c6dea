package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"proposal-cli/internal/debounce"
	"proposal-cli/internal/document"
	"proposal-cli/internal/model"
)

const autosaveKey = "snapshot"

// Autosaver writes the document after every change, coalescing bursts through
// the debouncer so only the state at quiescence is persisted.
type Autosaver struct {
	doc *document.Document
	p   *Persister
	deb *debounce.Debouncer
	log *zap.Logger

	unsubscribe func()

	mu      sync.Mutex
	lastErr error
	last    *model.Snapshot
	onSave  func(model.Snapshot, error)
}

func NewAutosaver(doc *document.Document, p *Persister, deb *debounce.Debouncer, log *zap.Logger) *Autosaver {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Autosaver{doc: doc, p: p, deb: deb, log: log}
	a.unsubscribe = doc.Subscribe(a.schedule)
	return a
}

// OnSave registers a callback run after every save attempt.
func (a *Autosaver) OnSave(fn func(model.Snapshot, error)) {
	a.mu.Lock()
	a.onSave = fn
	a.mu.Unlock()
}

func (a *Autosaver) schedule() {
	a.deb.Trigger(autosaveKey, a.save)
}

func (a *Autosaver) save() {
	snap, err := a.p.Save(context.Background(), a.doc.Snapshot())
	a.mu.Lock()
	a.lastErr = err
	if err == nil {
		a.last = &snap
	}
	fn := a.onSave
	a.mu.Unlock()
	if fn != nil {
		fn(snap, err)
	}
}

// Flush saves immediately if a save is pending.
func (a *Autosaver) Flush() bool {
	return a.deb.Flush(autosaveKey)
}

// LastError is the result of the most recent save attempt.
func (a *Autosaver) LastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

func (a *Autosaver) LastSaved() *model.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// Close stops listening for changes and flushes any pending save.
func (a *Autosaver) Close() error {
	a.unsubscribe()
	a.Flush()
	return a.LastError()
}
