package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"proposal-cli/internal/document"
	"proposal-cli/internal/model"
	"proposal-cli/internal/render"
)

type blockItem struct {
	block model.Block
}

func (i blockItem) FilterValue() string {
	return string(i.block.Kind) + " " + render.Summary(i.block)
}

func (i blockItem) Title() string {
	kind := kindStyle().Render(fmt.Sprintf("%-22s", document.Label(i.block.Kind)))
	return fmt.Sprintf("%2d  %s %s", i.block.Position+1, kind, render.Summary(i.block))
}

type kindItem struct {
	kind   model.Kind
	recent bool
}

func (i kindItem) FilterValue() string { return string(i.kind) }

func (i kindItem) Title() string {
	t := document.Label(i.kind)
	if i.recent {
		t += styleMuted().Render("  (recent)")
	}
	return t
}

func newList(title string, items []list.Item) list.Model {
	l := list.New(items, newRowDelegate(), 0, 0)
	l.Title = title
	// The editor draws its own header and footer.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	// Esc means back/cancel here, not quit.
	l.KeyMap.Quit.SetKeys("q")
	l.KeyMap.CursorUp.SetKeys(append(l.KeyMap.CursorUp.Keys(), "ctrl+p")...)
	l.KeyMap.CursorDown.SetKeys(append(l.KeyMap.CursorDown.Keys(), "ctrl+n")...)
	// "d" removes a block; keep it out of paging.
	l.KeyMap.NextPage.SetKeys("right", "l", "f")
	return l
}

func selectBlockByID(l *list.Model, id string) bool {
	for i, it := range l.Items() {
		if bi, ok := it.(blockItem); ok && bi.block.ID == id {
			l.Select(i)
			return true
		}
	}
	return false
}

func blockItems(blocks []model.Block) []list.Item {
	items := make([]list.Item, 0, len(blocks))
	for _, b := range blocks {
		items = append(items, blockItem{block: b})
	}
	return items
}

// kindItems lists the kinds matching query. With an empty query the recently
// used kinds come first.
func kindItems(query string, recent []string) []list.Item {
	kinds := document.FilterKinds(query)
	items := make([]list.Item, 0, len(kinds))
	if query == "" {
		seen := map[model.Kind]bool{}
		for _, r := range recent {
			k, err := model.ParseKind(r)
			if err != nil || seen[k] {
				continue
			}
			seen[k] = true
			items = append(items, kindItem{kind: k, recent: true})
		}
		for _, k := range kinds {
			if !seen[k] {
				items = append(items, kindItem{kind: k})
			}
		}
		return items
	}
	for _, k := range kinds {
		items = append(items, kindItem{kind: k})
	}
	return items
}
