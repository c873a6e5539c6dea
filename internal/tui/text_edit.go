package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"proposal-cli/internal/document"
	"proposal-cli/internal/model"
	"proposal-cli/internal/mutate"
	"proposal-cli/internal/richtext"
)

// editableText returns what the textarea shows for b: markdown for HTML
// blocks, raw text for text areas and the title for file lists.
func editableText(b model.Block) (string, bool) {
	switch c := b.Content.(type) {
	case *model.RichText:
		return richtext.ToMarkdown(c.HTML), true
	case *model.ImageText:
		return richtext.ToMarkdown(c.HTML), true
	case *model.TextArea:
		return c.Text, true
	case *model.Files:
		return c.Title, true
	default:
		return "", false
	}
}

// commitText writes the textarea value back into block id.
func commitText(s *document.Store, id string, kind model.Kind, value string) error {
	switch kind {
	case model.KindTextArea:
		_, err := mutate.SetText(s, id, value)
		return err
	case model.KindFilesAndAttachments:
		_, err := mutate.SetFilesTitle(s, id, value)
		return err
	default:
		html, err := richtext.FromMarkdown(value)
		if err != nil {
			return err
		}
		_, err = mutate.SetHTML(s, id, html)
		return err
	}
}

func (m appModel) startEdit() (tea.Model, tea.Cmd) {
	b, ok := m.selectedBlock()
	if !ok {
		return m, nil
	}
	text, ok := editableText(b)
	if !ok {
		return m.withFlash("fee blocks: s cycles the structure, o adds an option (line items: `proposal fees item`)", false)
	}
	m.editID = b.ID
	m.editKind = b.Kind
	m.textarea.SetValue(text)
	m.textarea.Focus()
	m.mode = modeEdit
	m.resize()
	return m, nil
}

func (m appModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+s":
		return m.finishEdit()
	}

	before := m.textarea.Value()
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	if v := m.textarea.Value(); v != before {
		m.scheduleCommit(v)
	}
	return m, cmd
}

// scheduleCommit debounces the write so a burst of keystrokes becomes one
// store update (and one autosave).
func (m *appModel) scheduleCommit(value string) {
	s, id, kind, log := m.doc.Blocks, m.editID, m.editKind, m.log
	m.edits.Trigger(id, func() {
		if err := commitText(s, id, kind, value); err != nil {
			log.Warn("committing edit failed", zap.String("block", id), zap.Error(err))
		}
	})
}

func (m appModel) finishEdit() (tea.Model, tea.Cmd) {
	id := m.editID
	m.edits.Flush(id)
	m.textarea.Blur()
	m.textarea.SetValue("")
	m.editID = ""
	m.editKind = ""
	m.mode = modeList
	m.resize()
	m.refreshBlocks()
	selectBlockByID(&m.blocks, id)
	return m, nil
}
