package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"go.uber.org/zap"

	"proposal-cli/internal/debounce"
	"proposal-cli/internal/document"
	"proposal-cli/internal/model"
	"proposal-cli/internal/store"
)

type mode int

const (
	modeList mode = iota
	modePickKind
	modeEdit
	modeConfirmRemove
)

// savedMsg is sent by the autosaver after every save attempt.
type savedMsg struct {
	snap model.Snapshot
	err  error
}

type flashDoneMsg struct{ seq int }

type appModel struct {
	doc      *document.Document
	ws       store.Workspace
	autosave *store.Autosaver
	// edits debounces text commits per block id while the textarea is open.
	edits *debounce.Debouncer
	log   *zap.Logger
	state *store.TUIState

	previewStyle string

	width  int
	height int

	mode mode

	blocks   list.Model
	kinds    list.Model
	filter   textinput.Model
	textarea textarea.Model
	preview  viewport.Model

	showPreview bool

	// editID and editKind describe the block open in the textarea.
	editID   string
	editKind model.Kind
	// pickAfter is where the kind picker inserts: "" appends, pickTop prepends.
	pickAfter string
	pickTop   bool
	removeID  string

	flash    string
	flashErr bool
	flashSeq int

	lastSaved time.Time
	saveErr   error
}

func newAppModel(opt Options) appModel {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	st, err := opt.Workspace.LoadTUIState()
	if err != nil || st == nil {
		log.Debug("tui state unreadable; starting fresh", zap.Error(err))
		st = &store.TUIState{Version: 1}
	}

	m := appModel{
		doc:          opt.Doc,
		ws:           opt.Workspace,
		autosave:     store.NewAutosaver(opt.Doc, opt.Persist, debounce.New(opt.Debounce), log),
		edits:        debounce.New(opt.Debounce),
		log:          log,
		state:        st,
		previewStyle: opt.PreviewStyle,
		showPreview:  st.ShowPreview,
	}

	m.blocks = newList("Blocks", nil)
	m.kinds = newList("Insert block", nil)

	m.filter = textinput.New()
	m.filter.Placeholder = "Filter kinds"
	m.filter.Prompt = "> "

	m.textarea = textarea.New()
	m.textarea.ShowLineNumbers = false
	m.textarea.CharLimit = 0

	m.preview = viewport.New(0, 0)

	m.refreshBlocks()
	if st.SelectedBlockID != "" {
		selectBlockByID(&m.blocks, st.SelectedBlockID)
	}
	return m
}

func (m *appModel) selectedBlock() (model.Block, bool) {
	it, ok := m.blocks.SelectedItem().(blockItem)
	if !ok {
		return model.Block{}, false
	}
	return it.block, true
}

func (m *appModel) selectedID() string {
	b, _ := m.selectedBlock()
	return b.ID
}

// refreshBlocks reloads the list from the store and keeps the selection on
// the same block when it still exists.
func (m *appModel) refreshBlocks() {
	cur := m.selectedID()
	idx := m.blocks.Index()
	m.blocks.SetItems(blockItems(m.doc.Blocks.Ordered()))
	if cur == "" || !selectBlockByID(&m.blocks, cur) {
		if n := len(m.blocks.Items()); n > 0 {
			m.blocks.Select(min(idx, n-1))
		}
	}
	m.refreshPreview()
}

// persistState writes the selection and preview toggle for the next launch.
func (m *appModel) persistState() {
	m.state.SelectedBlockID = m.selectedID()
	m.state.ShowPreview = m.showPreview
	if err := m.ws.SaveTUIState(m.state); err != nil {
		m.log.Warn("saving tui state failed", zap.Error(err))
	}
}

// shutdown commits any pending text edit and flushes the autosave.
func (m *appModel) shutdown() error {
	m.edits.Stop(true)
	return m.autosave.Close()
}
