package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"proposal-cli/internal/debounce"
	"proposal-cli/internal/document"
	"proposal-cli/internal/model"
)

func openBackend(t *testing.T, kind string) Backend {
	t.Helper()
	w := Workspace{Dir: t.TempDir()}
	b, err := w.Open(context.Background(), kind)
	if err != nil {
		t.Fatalf("open %s: %v", kind, err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func seededDocument(t *testing.T) *document.Document {
	t.Helper()
	d := document.New()
	if err := d.SetCurrency("EUR"); err != nil {
		t.Fatal(err)
	}
	for _, nb := range document.StarterBlocks(d.Config()) {
		if _, err := d.Blocks.AddBlock(nb); err != nil {
			t.Fatal(err)
		}
	}
	return d
}

func TestBackends_GetSetRemove(t *testing.T) {
	ctx := context.Background()
	for _, kind := range BackendKinds() {
		t.Run(kind, func(t *testing.T) {
			b := openBackend(t, kind)

			if _, err := b.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if err := b.Set(ctx, "k", []byte("one")); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := b.Set(ctx, "k", []byte("two")); err != nil {
				t.Fatalf("Set (overwrite): %v", err)
			}
			got, err := b.Get(ctx, "k")
			if err != nil || string(got) != "two" {
				t.Fatalf("Get = %q, %v", got, err)
			}
			if err := b.Remove(ctx, "k"); err != nil {
				t.Fatalf("Remove: %v", err)
			}
			if err := b.Remove(ctx, "k"); err != nil {
				t.Fatalf("Remove (absent): %v", err)
			}
			if _, err := b.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound after remove, got %v", err)
			}
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	w := Workspace{Dir: t.TempDir()}
	if _, err := w.Open(context.Background(), "redis"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestPersister_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	for _, kind := range BackendKinds() {
		t.Run(kind, func(t *testing.T) {
			p := NewPersister(openBackend(t, kind), zap.NewNop())
			fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			p.now = func() time.Time { return fixed }

			d := seededDocument(t)
			saved, err := p.Save(ctx, d.Snapshot())
			if err != nil {
				t.Fatalf("Save: %v", err)
			}
			if saved.Version != 1 || saved.SavedAt != "2026-03-01T12:00:00Z" {
				t.Fatalf("unexpected stamps: version=%d savedAt=%q", saved.Version, saved.SavedAt)
			}

			loaded := p.Load(ctx)
			if loaded == nil {
				t.Fatalf("expected snapshot")
			}
			restored, err := document.FromSnapshot(*loaded)
			if err != nil {
				t.Fatalf("FromSnapshot: %v", err)
			}
			want, _ := json.Marshal(d.Snapshot())
			got, _ := json.Marshal(restored.Snapshot())
			if string(want) != string(got) {
				t.Fatalf("round trip mismatch:\nwant %s\ngot  %s", want, got)
			}
		})
	}
}

func TestPersister_SnapshotLayout(t *testing.T) {
	ctx := context.Background()
	p := NewPersister(openBackend(t, BackendFile), nil)
	if _, err := p.Save(ctx, seededDocument(t).Snapshot()); err != nil {
		t.Fatal(err)
	}
	raw, err := p.Raw(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"headerData", "headerStyle", "documentBlocks", "documentConfig", "savedAt", "version"} {
		if _, ok := top[key]; !ok {
			t.Fatalf("missing top-level key %q in %s", key, raw)
		}
	}
	var blocks []map[string]any
	if err := json.Unmarshal(top["documentBlocks"], &blocks); err != nil {
		t.Fatal(err)
	}
	for i, b := range blocks {
		if int(b["position"].(float64)) != i {
			t.Fatalf("block %d has position %v", i, b["position"])
		}
	}
}

func TestPersister_LoadMissingOrCorrupt(t *testing.T) {
	ctx := context.Background()
	b := openBackend(t, BackendSQLite)
	p := NewPersister(b, nil)

	if p.Load(ctx) != nil {
		t.Fatalf("expected nil for missing snapshot")
	}
	if err := b.Set(ctx, SnapshotKey, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	if p.Load(ctx) != nil {
		t.Fatalf("expected nil for corrupt snapshot")
	}
	doc, restored := LoadDocument(ctx, p)
	if restored || doc == nil || doc.Blocks.Len() != 0 {
		t.Fatalf("expected fresh default document")
	}
}

func TestPersister_FutureVersionAccepted(t *testing.T) {
	ctx := context.Background()
	b := openBackend(t, BackendBolt)
	raw := `{"headerData":{"invoiceName":"Later"},"headerStyle":{},"documentBlocks":[{"id":"a","kind":"text-area","content":{"text":"x"},"position":0}],"documentConfig":{"currency":"USD","defaultStructure":"single"},"savedAt":"2030-01-01T00:00:00Z","version":7}`
	if err := b.Set(ctx, SnapshotKey, []byte(raw)); err != nil {
		t.Fatal(err)
	}
	snap := NewPersister(b, nil).Load(ctx)
	if snap == nil || snap.Version != 7 || len(snap.DocumentBlocks) != 1 {
		t.Fatalf("expected version 7 snapshot to load as-is, got %#v", snap)
	}
}

type failingBackend struct{ Backend }

func (failingBackend) Set(context.Context, string, []byte) error { return errors.New("quota exceeded") }
func (failingBackend) Remove(context.Context, string) error      { return errors.New("disabled") }

func TestPersister_SaveFailureIsReturned(t *testing.T) {
	p := NewPersister(failingBackend{openBackend(t, BackendFile)}, nil)
	if _, err := p.Save(context.Background(), document.New().Snapshot()); err == nil {
		t.Fatalf("expected save error")
	}
	// Clear swallows failures.
	p.Clear(context.Background())
}

func TestPersister_Clear(t *testing.T) {
	ctx := context.Background()
	p := NewPersister(openBackend(t, BackendSQLite), nil)
	if _, err := p.Save(ctx, document.New().Snapshot()); err != nil {
		t.Fatal(err)
	}
	p.Clear(ctx)
	if p.Load(ctx) != nil {
		t.Fatalf("expected snapshot to be gone after Clear")
	}
}

func TestAutosaver_CoalescesAndFlushes(t *testing.T) {
	ctx := context.Background()
	p := NewPersister(openBackend(t, BackendFile), nil)
	d := document.New()
	a := NewAutosaver(d, p, debounce.New(time.Hour), nil)

	saves := 0
	a.OnSave(func(model.Snapshot, error) { saves++ })

	for i := 0; i < 5; i++ {
		if _, err := d.Blocks.AddBlock(model.NewBlock{Kind: model.KindTextArea, Content: &model.TextArea{Text: "n"}}); err != nil {
			t.Fatal(err)
		}
	}
	if p.Load(ctx) != nil {
		t.Fatalf("nothing should be saved before the debounce window closes")
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if saves != 1 {
		t.Fatalf("expected one coalesced save, got %d", saves)
	}
	snap := p.Load(ctx)
	if snap == nil || len(snap.DocumentBlocks) != 5 {
		t.Fatalf("expected 5 saved blocks, got %#v", snap)
	}
}

func TestImportAttachment(t *testing.T) {
	w := Workspace{Dir: t.TempDir()}
	src := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(src, []byte("hello attachments\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := w.ImportAttachment(src, 0)
	if err != nil {
		t.Fatalf("ImportAttachment: %v", err)
	}
	if f.Name != "notes.txt" || f.Size != 18 || f.Status != model.FileStatusUploaded {
		t.Fatalf("unexpected metadata %#v", f)
	}
	if f.Type == "" || f.Type[:10] != "text/plain" {
		t.Fatalf("expected text/plain, got %q", f.Type)
	}
	if err := w.RemoveAttachment(f); err != nil {
		t.Fatalf("RemoveAttachment: %v", err)
	}
	if _, err := os.Stat(filepath.Join(w.attachmentsDir(), f.ID)); !os.IsNotExist(err) {
		t.Fatalf("expected attachment dir removed")
	}

	if _, err := w.ImportAttachment(src, 4); err == nil {
		t.Fatalf("expected size limit error")
	}
}

func TestDiscoverDir(t *testing.T) {
	root := t.TempDir()
	ws := filepath.Join(root, ".proposal")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(ws, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	got, ok := DiscoverDir(nested)
	if !ok || got != ws {
		t.Fatalf("DiscoverDir = %q, %v", got, ok)
	}
}

func TestWorkspaceDir(t *testing.T) {
	t.Setenv("PROPOSAL_CONFIG_DIR", t.TempDir())
	dir, err := WorkspaceDir("acme")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(dir) != "acme" || filepath.Base(filepath.Dir(dir)) != "workspaces" {
		t.Fatalf("unexpected workspace dir %q", dir)
	}
	if _, err := WorkspaceDir("../x"); err == nil {
		t.Fatalf("expected invalid name error")
	}
	if err := (Workspace{Dir: dir}).Ensure(); err != nil {
		t.Fatal(err)
	}
	names, err := ListWorkspaces()
	if err != nil || len(names) != 1 || names[0] != "acme" {
		t.Fatalf("ListWorkspaces = %v, %v", names, err)
	}
}
