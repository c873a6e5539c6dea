package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"proposal-cli/internal/document"
	"proposal-cli/internal/model"
	"proposal-cli/internal/store"
)

type testEnv struct {
	ws      store.Workspace
	doc     *document.Document
	persist *store.Persister
	ids     []string
}

// newTestEnv builds a document with a rich-text, a text-area and a fee block.
func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	ws := store.Workspace{Dir: t.TempDir()}
	b, err := ws.Open(context.Background(), store.BackendFile)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	doc := document.New()
	var ids []string
	for _, k := range []model.Kind{model.KindRichText, model.KindTextArea, model.KindFeeSummary} {
		nb, err := document.NewBlock(k, doc.Config())
		require.NoError(t, err)
		id, err := doc.Blocks.AddBlock(nb)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return testEnv{ws: ws, doc: doc, persist: store.NewPersister(b, zap.NewNop()), ids: ids}
}

func (e testEnv) model(t *testing.T, delay time.Duration) appModel {
	t.Helper()
	m := newAppModel(Options{
		Workspace: e.ws,
		Doc:       e.doc,
		Persist:   e.persist,
		Debounce:  delay,
		Logger:    zap.NewNop(),
	})
	t.Cleanup(func() { _ = m.shutdown() })
	mAny, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return mAny.(appModel)
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func press(t *testing.T, m appModel, keys ...tea.KeyMsg) appModel {
	t.Helper()
	for _, k := range keys {
		mAny, _ := m.Update(k)
		m = mAny.(appModel)
	}
	return m
}

func TestNewAppModel_ListsBlocksAndRestoresSelection(t *testing.T) {
	e := newTestEnv(t)
	require.NoError(t, e.ws.SaveTUIState(&store.TUIState{SelectedBlockID: e.ids[1]}))

	m := e.model(t, time.Hour)
	require.Len(t, m.blocks.Items(), 3)
	require.Equal(t, e.ids[1], m.selectedID())
}

func TestMoveKeys_ReorderAndKeepSelection(t *testing.T) {
	e := newTestEnv(t)
	m := e.model(t, time.Hour)
	m.blocks.Select(0)

	m = press(t, m, runes("J"))
	require.Equal(t, []string{e.ids[1], e.ids[0], e.ids[2]}, e.doc.Blocks.Order())
	require.Equal(t, e.ids[0], m.selectedID())

	// Already at the top after moving back twice; the second move is a no-op.
	m = press(t, m, runes("K"), runes("K"))
	require.Equal(t, e.ids, e.doc.Blocks.Order())
	require.Equal(t, 0, m.blocks.Index())
}

func TestRemove_AsksForConfirmation(t *testing.T) {
	e := newTestEnv(t)
	m := e.model(t, time.Hour)
	selectBlockByID(&m.blocks, e.ids[1])

	m = press(t, m, runes("d"))
	require.Equal(t, modeConfirmRemove, m.mode)
	m = press(t, m, runes("n"))
	require.Equal(t, modeList, m.mode)
	require.Equal(t, 3, e.doc.Blocks.Len())

	m = press(t, m, runes("d"), runes("y"))
	require.Equal(t, []string{e.ids[0], e.ids[2]}, e.doc.Blocks.Order())
	require.Len(t, m.blocks.Items(), 2)
}

func TestPicker_InsertsAfterSelectionAndRemembersKind(t *testing.T) {
	e := newTestEnv(t)
	m := e.model(t, time.Hour)
	m.blocks.Select(0)

	m = press(t, m, runes("a"))
	require.Equal(t, modePickKind, m.mode)
	require.Len(t, m.kinds.Items(), len(model.AllKinds()))

	m = press(t, m, runes("summary"))
	it, ok := m.kinds.SelectedItem().(kindItem)
	require.True(t, ok)
	require.Equal(t, model.KindFeeSummary, it.kind)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, modeList, m.mode)
	order := e.doc.Blocks.Order()
	require.Len(t, order, 4)
	added, ok := e.doc.Blocks.Get(order[1])
	require.True(t, ok)
	require.Equal(t, model.KindFeeSummary, added.Kind)
	require.Equal(t, added.ID, m.selectedID())

	st, err := e.ws.LoadTUIState()
	require.NoError(t, err)
	require.Equal(t, []string{"fee-summary"}, st.RecentKinds)

	// Recent kinds are listed first next time.
	m = press(t, m, runes("a"))
	first, ok := m.kinds.Items()[0].(kindItem)
	require.True(t, ok)
	require.True(t, first.recent)
	require.Equal(t, model.KindFeeSummary, first.kind)
}

func TestPicker_EscCancels(t *testing.T) {
	e := newTestEnv(t)
	m := e.model(t, time.Hour)
	m = press(t, m, runes("a"), tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, modeList, m.mode)
	require.Equal(t, 3, e.doc.Blocks.Len())
}

func TestEdit_EscCommitsMarkdownAsHTML(t *testing.T) {
	e := newTestEnv(t)
	m := e.model(t, time.Hour)
	m.blocks.Select(0)

	m = press(t, m, runes("e"))
	require.Equal(t, modeEdit, m.mode)
	require.Equal(t, "New rich text block", m.textarea.Value())

	m = press(t, m, runes(" **now**"), tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, modeList, m.mode)
	b, _ := e.doc.Blocks.Get(e.ids[0])
	require.Equal(t, "<p>New rich text block <strong>now</strong></p>", b.Content.(*model.RichText).HTML)
}

func TestEdit_CommitsAfterDebounce(t *testing.T) {
	e := newTestEnv(t)
	m := e.model(t, 10*time.Millisecond)
	selectBlockByID(&m.blocks, e.ids[1])

	m = press(t, m, runes("e"), runes("!"))
	require.Equal(t, modeEdit, m.mode)
	require.Eventually(t, func() bool {
		b, _ := e.doc.Blocks.Get(e.ids[1])
		return b.Content.(*model.TextArea).Text == "New notes!"
	}, time.Second, 5*time.Millisecond)
}

func TestEdit_FeeBlockIsNotTextEditable(t *testing.T) {
	e := newTestEnv(t)
	m := e.model(t, time.Hour)
	selectBlockByID(&m.blocks, e.ids[2])

	m = press(t, m, runes("e"))
	require.Equal(t, modeList, m.mode)
	require.NotEmpty(t, m.flash)
}

func TestFeeKeys_CycleStructureAndAddOption(t *testing.T) {
	e := newTestEnv(t)
	m := e.model(t, time.Hour)
	selectBlockByID(&m.blocks, e.ids[2])

	m = press(t, m, runes("s"))
	b, _ := e.doc.Blocks.Get(e.ids[2])
	require.Equal(t, model.StructurePackages, b.Content.(*model.FeeSummary).Structure)

	before := len(b.Content.(*model.FeeSummary).Options)
	m = press(t, m, runes("o"))
	b, _ = e.doc.Blocks.Get(e.ids[2])
	require.Len(t, b.Content.(*model.FeeSummary).Options, before+1)

	// Not a fee block: the key only reports an error.
	selectBlockByID(&m.blocks, e.ids[0])
	m = press(t, m, runes("s"))
	require.True(t, m.flashErr)
}

func TestShutdown_CommitsPendingEditAndSaves(t *testing.T) {
	e := newTestEnv(t)
	m := e.model(t, time.Hour)
	selectBlockByID(&m.blocks, e.ids[1])

	m = press(t, m, runes("e"), runes("?"))
	require.NoError(t, m.shutdown())

	snap := e.persist.Load(context.Background())
	require.NotNil(t, snap)
	var text string
	for _, b := range snap.DocumentBlocks {
		if b.ID == e.ids[1] {
			text = b.Content.(*model.TextArea).Text
		}
	}
	require.Equal(t, "New notes?", text)
}

func TestPersistState_WritesSelectionAndPreview(t *testing.T) {
	e := newTestEnv(t)
	m := e.model(t, time.Hour)
	selectBlockByID(&m.blocks, e.ids[2])
	m.showPreview = true
	m.persistState()

	st, err := e.ws.LoadTUIState()
	require.NoError(t, err)
	require.Equal(t, e.ids[2], st.SelectedBlockID)
	require.True(t, st.ShowPreview)
}

func TestView_ShowsOverviewAndKeys(t *testing.T) {
	e := newTestEnv(t)
	m := e.model(t, time.Hour)
	out := m.View()
	require.Contains(t, out, "Invoice")
	require.Contains(t, out, "Single Option")
	require.Contains(t, out, "a/A: add")
}
