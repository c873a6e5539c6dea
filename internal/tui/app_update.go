package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"proposal-cli/internal/document"
	"proposal-cli/internal/model"
	"proposal-cli/internal/mutate"
)

func (m appModel) Init() tea.Cmd { return nil }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case savedMsg:
		m.saveErr = msg.err
		if msg.err == nil {
			if t, err := time.Parse(time.RFC3339Nano, msg.snap.SavedAt); err == nil {
				m.lastSaved = t
			}
		}
		// Commits from the edit debouncer land here too; keep the list current.
		if m.mode != modeEdit {
			m.refreshBlocks()
		}
		return m, nil

	case flashDoneMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
			m.flashErr = false
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modePickKind:
			return m.updatePicker(msg)
		case modeEdit:
			return m.updateEdit(msg)
		case modeConfirmRemove:
			return m.updateConfirmRemove(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m appModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "enter", "e":
		return m.startEdit()

	case "a":
		m.openPicker(m.selectedID(), false)
		return m, nil
	case "A":
		m.openPicker("", true)
		return m, nil

	case "K", "shift+up", "alt+up":
		return m.moveSelected(-1)
	case "J", "shift+down", "alt+down":
		return m.moveSelected(1)

	case "d", "delete", "x":
		if id := m.selectedID(); id != "" {
			m.removeID = id
			m.mode = modeConfirmRemove
		}
		return m, nil

	case "s":
		return m.cycleStructure()
	case "o":
		return m.addFeeOption()

	case "t":
		return m.cycleTheme()

	case "p":
		m.showPreview = !m.showPreview
		m.resize()
		m.refreshPreview()
		return m, nil
	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		if m.showPreview {
			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(msg)
			return m, cmd
		}

	case "ctrl+s":
		m.autosave.Flush()
		if err := m.autosave.LastError(); err != nil {
			return m.withFlash("save failed: "+err.Error(), true)
		}
		return m.withFlash("saved", false)
	}

	prev := m.selectedID()
	var cmd tea.Cmd
	m.blocks, cmd = m.blocks.Update(msg)
	if m.selectedID() != prev {
		m.refreshPreview()
	}
	return m, cmd
}

func (m appModel) updateConfirmRemove(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.removeID
	m.removeID = ""
	m.mode = modeList
	switch msg.String() {
	case "y", "Y", "enter":
		if _, err := mutate.RemoveBlock(m.doc.Blocks, id); err != nil {
			return m.withFlash(err.Error(), true)
		}
		m.refreshBlocks()
		return m.withFlash("block removed", false)
	}
	return m, nil
}

func (m appModel) moveSelected(delta int) (tea.Model, tea.Cmd) {
	id := m.selectedID()
	if id == "" {
		return m, nil
	}
	res, err := mutate.MoveBlock(m.doc.Blocks, id, m.doc.Blocks.IndexOf(id)+delta)
	if err != nil {
		return m.withFlash(err.Error(), true)
	}
	if res.Changed {
		m.refreshBlocks()
		selectBlockByID(&m.blocks, id)
	}
	return m, nil
}

var structureCycle = []model.FeeStructure{model.StructureSingle, model.StructurePackages, model.StructureMultiSelect}

func (m appModel) cycleStructure() (tea.Model, tea.Cmd) {
	b, ok := m.selectedBlock()
	if !ok {
		return m, nil
	}
	c, ok := b.Content.(*model.FeeSummary)
	if !ok {
		return m.withFlash("s changes the structure of fee-summary blocks", true)
	}
	next := structureCycle[0]
	for i, st := range structureCycle {
		if st == c.Structure {
			next = structureCycle[(i+1)%len(structureCycle)]
		}
	}
	if _, err := mutate.SetStructure(m.doc.Blocks, b.ID, next); err != nil {
		return m.withFlash(err.Error(), true)
	}
	m.refreshBlocks()
	return m.withFlash("structure: "+next.Label(), false)
}

func (m appModel) addFeeOption() (tea.Model, tea.Cmd) {
	b, ok := m.selectedBlock()
	if !ok || b.Kind != model.KindFeeSummary {
		return m.withFlash("o adds an option to fee-summary blocks", true)
	}
	_, idx, err := mutate.AddOption(m.doc.Blocks, b.ID)
	if err != nil {
		return m.withFlash(err.Error(), true)
	}
	m.refreshBlocks()
	return m.withFlash(fmt.Sprintf("option %d added", idx+1), false)
}

func (m appModel) cycleTheme() (tea.Model, tea.Cmd) {
	names := document.ThemeNames()
	if len(names) == 0 {
		return m, nil
	}
	cur := m.doc.HeaderStyle().ThemeName
	next := names[0]
	for i, n := range names {
		if n == cur {
			next = names[(i+1)%len(names)]
		}
	}
	if err := m.doc.ApplyTheme(next); err != nil {
		return m.withFlash(err.Error(), true)
	}
	m.refreshPreview()
	return m.withFlash("theme: "+next, false)
}

func (m *appModel) setFlash(text string, isErr bool) tea.Cmd {
	m.flashSeq++
	m.flash = text
	m.flashErr = isErr
	if isErr {
		m.log.Debug("editor error", zap.String("msg", text))
	}
	seq := m.flashSeq
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg { return flashDoneMsg{seq: seq} })
}

// withFlash sets the status line and returns the model with its expiry tick.
func (m appModel) withFlash(text string, isErr bool) (tea.Model, tea.Cmd) {
	cmd := m.setFlash(text, isErr)
	return m, cmd
}
