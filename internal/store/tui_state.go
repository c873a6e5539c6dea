package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const tuiStateFileName = "tui_state.json"

// TUIState stores small, user-facing UI state for restoring the editor on relaunch.
//
// It lives inside the workspace directory and is best effort: callers should
// tolerate missing or invalid data.
type TUIState struct {
	Version int `json:"version"`

	SelectedBlockID string `json:"selectedBlockId,omitempty"`
	ShowPreview     bool   `json:"showPreview,omitempty"`

	// RecentKinds are the most recently inserted block kinds, newest first.
	RecentKinds []string `json:"recentKinds,omitempty"`
}

func (w Workspace) tuiStatePath() string {
	return filepath.Join(w.Dir, tuiStateFileName)
}

func (w Workspace) LoadTUIState() (*TUIState, error) {
	if strings.TrimSpace(w.Dir) == "" {
		return &TUIState{Version: 1}, nil
	}
	b, err := os.ReadFile(w.tuiStatePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &TUIState{Version: 1}, nil
		}
		return nil, err
	}
	var st TUIState
	if err := json.Unmarshal(b, &st); err != nil {
		// Corrupted state is treated as missing.
		return &TUIState{Version: 1}, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	return &st, nil
}

func (w Workspace) SaveTUIState(st *TUIState) error {
	if st == nil || strings.TrimSpace(w.Dir) == "" {
		return nil
	}
	if err := w.Ensure(); err != nil {
		return err
	}
	if st.Version == 0 {
		st.Version = 1
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	path := w.tuiStatePath()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// PushRecentKind records kind as most recent, keeping at most five.
func (st *TUIState) PushRecentKind(kind string) {
	out := []string{kind}
	for _, k := range st.RecentKinds {
		if k != kind && len(out) < 5 {
			out = append(out, k)
		}
	}
	st.RecentKinds = out
}
