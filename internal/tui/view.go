package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"proposal-cli/internal/document"
	"proposal-cli/internal/format"
	"proposal-cli/internal/render"
)

const (
	headerLines = 2
	footerLines = 2
)

func (m *appModel) bodySize() (w, h int) {
	w = max(m.width, 40)
	h = max(m.height-headerLines-footerLines, 8)
	return w, h
}

func (m *appModel) listWidth() int {
	w, _ := m.bodySize()
	if m.showPreview {
		return max(w/2, 30)
	}
	return w
}

func (m *appModel) resize() {
	w, h := m.bodySize()
	lw := m.listWidth()
	m.blocks.SetSize(lw, h)
	m.kinds.SetSize(min(lw, 50), h-2)
	m.filter.Width = min(lw, 50) - 4
	// Pane borders and padding take 4 cells across, 2 down.
	m.textarea.SetWidth(max(lw-4, 10))
	m.textarea.SetHeight(max(h-2, 3))
	m.preview.Width = max(w-lw-4, 20)
	m.preview.Height = max(h-2, 3)
}

// refreshPreview re-renders the document into the preview pane. glamour is
// not cheap, so this only runs when the pane is visible.
func (m *appModel) refreshPreview() {
	if !m.showPreview {
		return
	}
	out := render.Preview(m.doc, render.PreviewOptions{Width: m.preview.Width, Style: m.previewStyle})
	m.preview.SetContent(out)
}

func (m appModel) View() string {
	return strings.Join([]string{m.viewHeader(), m.viewBody(), m.viewFooter()}, "\n")
}

func (m appModel) viewHeader() string {
	ov := document.BuildOverview(m.doc)
	title := styleTitle().Render(ov.Project)
	meta := fmt.Sprintf("%s · %s · %s", ov.Status, ov.StructureLabel, format.Money(ov.Amount, ov.Currency))
	if ov.Upfront > 0 {
		meta += " · upfront " + format.Money(ov.Upfront, ov.Currency)
	}
	return title + "  " + styleMuted().Render(meta) + "\n"
}

func (m appModel) viewBody() string {
	_, h := m.bodySize()
	var left string
	switch m.mode {
	case modePickKind:
		left = lipgloss.JoinVertical(lipgloss.Left,
			styleTitle().Render("Insert block"),
			m.filter.View(),
			m.kinds.View(),
		)
	case modeEdit:
		label := document.Label(m.editKind)
		left = stylePane().Render(lipgloss.JoinVertical(lipgloss.Left,
			styleTitle().Render("Editing "+label),
			m.textarea.View(),
		))
	default:
		if len(m.blocks.Items()) == 0 {
			left = styleMuted().Render("No blocks yet. Press a to add one.")
		} else {
			left = m.blocks.View()
		}
	}
	left = lipgloss.NewStyle().Width(m.listWidth()).Height(h).Render(left)
	if !m.showPreview {
		return left
	}
	right := stylePane().Render(m.preview.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m appModel) viewFooter() string {
	var status string
	switch {
	case m.mode == modeConfirmRemove:
		status = styleError().Render("Remove this block? y/n")
	case m.flash != "" && m.flashErr:
		status = styleError().Render(m.flash)
	case m.flash != "":
		status = m.flash
	case m.saveErr != nil:
		status = styleError().Render("autosave failed: " + m.saveErr.Error())
	case !m.lastSaved.IsZero():
		status = styleMuted().Render("saved " + humanize.Time(m.lastSaved))
	}

	var keys string
	switch m.mode {
	case modePickKind:
		keys = "type: filter  ↑/↓: choose  enter: insert  esc: cancel"
	case modeEdit:
		keys = "esc/ctrl+s: done (changes save automatically)"
	default:
		keys = "e: edit  a/A: add after/top  J/K: move  d: remove  s: structure  o: option  t: theme  p: preview  q: quit"
	}
	return status + "\n" + styleMuted().Render(keys)
}
