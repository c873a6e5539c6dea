package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// rowDelegate renders one list item per line, padded or cut to the list width.
type rowDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
}

func newRowDelegate() rowDelegate {
	return rowDelegate{
		normal: lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
	}
}

func (d rowDelegate) Height() int                             { return 1 }
func (d rowDelegate) Spacing() int                            { return 0 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	width := m.Width()
	if width < 4 {
		return
	}
	style := d.normal
	if index == m.Index() {
		style = d.selected
	}

	txt := ""
	if t, ok := item.(interface{ Title() string }); ok {
		txt = t.Title()
	} else {
		txt = fmt.Sprint(item)
	}
	fmt.Fprint(w, style.Render(fitWidth(txt, width)))
}

// fitWidth pads or cuts s to exactly width cells.
func fitWidth(s string, width int) string {
	n := xansi.StringWidth(s)
	switch {
	case n < width:
		return s + strings.Repeat(" ", width-n)
	case n > width:
		return xansi.Truncate(s, width, "…")
	default:
		return s
	}
}
