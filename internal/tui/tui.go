// Package tui is the interactive block editor.
package tui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"proposal-cli/internal/document"
	"proposal-cli/internal/model"
	"proposal-cli/internal/store"
)

type Options struct {
	Workspace store.Workspace
	Doc       *document.Document
	Persist   *store.Persister
	// Debounce is the quiet period for text commits and autosaves.
	Debounce     time.Duration
	PreviewStyle string
	Logger       *zap.Logger
}

// Run opens the editor and blocks until the user quits. Pending edits are
// committed and saved before it returns.
func Run(opt Options) error {
	applyColorProfilePreference()
	applyThemePreference()

	m := newAppModel(opt)
	p := tea.NewProgram(m, tea.WithAltScreen())
	m.autosave.OnSave(func(snap model.Snapshot, err error) {
		p.Send(savedMsg{snap: snap, err: err})
	})

	final, runErr := p.Run()
	if fm, ok := final.(appModel); ok {
		m = fm
	}
	// The program has stopped reading messages.
	m.autosave.OnSave(nil)
	m.persistState()
	return errors.Join(runErr, m.shutdown())
}
