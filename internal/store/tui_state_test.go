package store

import (
	"os"
	"reflect"
	"testing"
)

func TestTUIState_SaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	w := Workspace{Dir: t.TempDir()}

	// Missing file => default state.
	st0, err := w.LoadTUIState()
	if err != nil {
		t.Fatalf("LoadTUIState: %v", err)
	}
	if st0 == nil || st0.Version != 1 {
		t.Fatalf("expected default Version=1; got %#v", st0)
	}

	want := &TUIState{
		Version:         1,
		SelectedBlockID: "blk-abc",
		ShowPreview:     true,
		RecentKinds:     []string{"fee-summary", "rich-text"},
	}
	if err := w.SaveTUIState(want); err != nil {
		t.Fatalf("SaveTUIState: %v", err)
	}
	got, err := w.LoadTUIState()
	if err != nil {
		t.Fatalf("LoadTUIState (after save): %v", err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("roundtrip mismatch:\nwant: %#v\ngot:  %#v", want, got)
	}
}

func TestTUIState_CorruptedIsDefault(t *testing.T) {
	t.Parallel()

	w := Workspace{Dir: t.TempDir()}
	if err := os.WriteFile(w.tuiStatePath(), []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := w.LoadTUIState()
	if err != nil || st.Version != 1 || st.SelectedBlockID != "" {
		t.Fatalf("expected default state, got %#v (%v)", st, err)
	}
}

func TestPushRecentKind(t *testing.T) {
	st := &TUIState{RecentKinds: []string{"a", "b", "c", "d", "e"}}
	st.PushRecentKind("c")
	if !reflect.DeepEqual(st.RecentKinds, []string{"c", "a", "b", "d", "e"}) {
		t.Fatalf("unexpected recents %v", st.RecentKinds)
	}
	st.PushRecentKind("z")
	if !reflect.DeepEqual(st.RecentKinds, []string{"z", "c", "a", "b", "d"}) {
		t.Fatalf("unexpected recents %v", st.RecentKinds)
	}
}
