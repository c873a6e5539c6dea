package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"proposal-cli/internal/document"
	"proposal-cli/internal/mutate"
)

// openPicker shows the kind picker. The new block goes after `after`, at the
// top when top is set, or at the end when both are empty.
func (m *appModel) openPicker(after string, top bool) {
	m.pickAfter = after
	m.pickTop = top
	m.filter.SetValue("")
	m.filter.Focus()
	m.kinds.SetItems(kindItems("", m.state.RecentKinds))
	m.kinds.Select(0)
	m.mode = modePickKind
}

func (m *appModel) closePicker() {
	m.filter.Blur()
	m.filter.SetValue("")
	m.pickAfter = ""
	m.pickTop = false
	m.mode = modeList
}

func (m appModel) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.closePicker()
		return m, nil
	case "up", "down", "ctrl+p", "ctrl+n":
		var cmd tea.Cmd
		m.kinds, cmd = m.kinds.Update(msg)
		return m, cmd
	case "enter":
		return m.insertPicked()
	}

	before := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if v := m.filter.Value(); v != before {
		m.kinds.SetItems(kindItems(v, m.state.RecentKinds))
		m.kinds.Select(0)
	}
	return m, cmd
}

func (m appModel) insertPicked() (tea.Model, tea.Cmd) {
	it, ok := m.kinds.SelectedItem().(kindItem)
	if !ok {
		return m, nil
	}
	at := mutate.Placement{After: m.pickAfter, Prepend: m.pickTop}
	m.closePicker()

	res, err := mutate.AddBlock(m.doc, string(it.kind), at)
	if err != nil {
		return m.withFlash(err.Error(), true)
	}
	m.state.PushRecentKind(string(it.kind))
	if err := m.ws.SaveTUIState(m.state); err != nil {
		m.log.Warn("saving tui state failed", zap.Error(err))
	}
	m.refreshBlocks()
	selectBlockByID(&m.blocks, res.Block.ID)
	m.refreshPreview()
	return m.withFlash("added "+document.Label(it.kind), false)
}
