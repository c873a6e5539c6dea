package document

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proposal-cli/internal/model"
)

func richText(id, html string) model.NewBlock {
	return model.NewBlock{ID: id, Kind: model.KindRichText, Content: &model.RichText{HTML: html}}
}

func mustAdd(t *testing.T, s *Store, nb model.NewBlock, opts ...AddBlockOption) string {
	t.Helper()
	id, err := s.AddBlock(nb, opts...)
	require.NoError(t, err)
	return id
}

func assertBijection(t *testing.T, s *Store) {
	t.Helper()
	s.mu.RLock()
	defer s.mu.RUnlock()
	require.Equal(t, len(s.byID), len(s.order), "order and map sizes differ")
	seen := map[string]bool{}
	for _, id := range s.order {
		require.False(t, seen[id], "duplicate id %s in order", id)
		seen[id] = true
		_, ok := s.byID[id]
		require.True(t, ok, "order id %s missing from map", id)
	}
}

func blockIDs(blocks []model.Block) []string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, b.ID)
	}
	return out
}

func TestAddBlock_AppendsAndGeneratesID(t *testing.T) {
	s := NewStore()
	a := mustAdd(t, s, richText("", "<p>a</p>"))
	b := mustAdd(t, s, richText("", "<p>b</p>"))

	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^blk-[a-z2-7]{8}$`, a)
	assert.Equal(t, []string{a, b}, s.Order())
}

func TestAddBlock_AtIndexInsertsBetween(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"A", "B", "C"} {
		mustAdd(t, s, richText(id, ""))
	}
	mustAdd(t, s, richText("D", ""), AtIndex(1))

	ordered := s.Ordered()
	assert.Equal(t, []string{"A", "D", "B", "C"}, blockIDs(ordered))
	for i, b := range ordered {
		assert.Equal(t, i, b.Position)
	}
}

func TestAddBlock_ClampsIndex(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, richText("A", ""))
	mustAdd(t, s, richText("B", ""), AtIndex(-5))
	mustAdd(t, s, richText("C", ""), AtIndex(99))
	assert.Equal(t, []string{"B", "A", "C"}, s.Order())
}

func TestAddBlock_CollisionIsNoop(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, richText("A", "first"))

	_, err := s.AddBlock(richText("A", "second"))
	require.ErrorIs(t, err, ErrIDCollision)

	b, ok := s.Get("A")
	require.True(t, ok)
	assert.Equal(t, "first", b.Content.(*model.RichText).HTML)
	assert.Equal(t, 1, s.Len())
}

func TestAddBlock_RejectsMismatchedContent(t *testing.T) {
	s := NewStore()
	_, err := s.AddBlock(model.NewBlock{Kind: model.KindTextArea, Content: &model.RichText{}})
	require.ErrorIs(t, err, ErrKindMismatch)

	_, err = s.AddBlock(model.NewBlock{Kind: "invoice-summary"})
	require.ErrorIs(t, err, model.ErrUnknownKind)
	assert.Zero(t, s.Len())
}

func TestInsertAfter(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, richText("A", ""))
	mustAdd(t, s, richText("B", ""))

	_, err := s.InsertAfter("A", richText("X", ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "X", "B"}, s.Order())

	_, err = s.InsertAfter("", richText("P", ""))
	require.NoError(t, err)
	_, err = s.InsertAfter("missing", richText("Q", ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"Q", "P", "A", "X", "B"}, s.Order())
}

func TestMoveBlock(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"A", "B", "C", "D"} {
		mustAdd(t, s, richText(id, ""))
	}

	require.NoError(t, s.MoveBlock("A", 2))
	assert.Equal(t, []string{"B", "C", "A", "D"}, s.Order())

	require.NoError(t, s.MoveBlock("D", -3))
	assert.Equal(t, []string{"D", "B", "C", "A"}, s.Order())

	require.NoError(t, s.MoveBlock("D", 100))
	assert.Equal(t, []string{"B", "C", "A", "D"}, s.Order())
}

func TestMoveBlock_SameIndexIsNoop(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"A", "B", "C"} {
		mustAdd(t, s, richText(id, ""))
	}
	fired := 0
	s.Subscribe(func() { fired++ })

	before := s.Ordered()
	require.NoError(t, s.MoveBlock("B", 1))
	assert.Equal(t, before, s.Ordered())
	assert.Zero(t, fired)
}

func TestRemoveBlock(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"A", "B", "C"} {
		mustAdd(t, s, richText(id, ""))
	}
	require.NoError(t, s.RemoveBlock("B"))
	assert.Equal(t, []string{"A", "C"}, s.Order())
	_, ok := s.Get("B")
	assert.False(t, ok)
	assertBijection(t, s)
}

func TestUnknownIDsAreSilentNoops(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, richText("A", "<p>a</p>"))
	before := s.Ordered()

	fired := 0
	s.Subscribe(func() { fired++ })

	assert.NoError(t, s.UpdateContent("zzz", func(c model.Content) model.Content { return &model.TextArea{} }))
	assert.NoError(t, s.MutateContent("zzz", func(model.Content) error { return errors.New("never called") }))
	assert.NoError(t, s.PatchContent("zzz", map[string]any{"bogus": 1}))
	assert.NoError(t, s.UpdateStyle("zzz", model.Style{Compact: model.Bool(true)}))
	assert.NoError(t, s.MoveBlock("zzz", 0))
	assert.NoError(t, s.RemoveBlock("zzz"))

	assert.Equal(t, before, s.Ordered())
	assert.Zero(t, fired)
}

func TestUpdateContent(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, richText("A", "<p>old</p>"))

	require.NoError(t, s.UpdateContent("A", func(c model.Content) model.Content {
		rt := c.(*model.RichText)
		return &model.RichText{HTML: rt.HTML + "<p>new</p>"}
	}))
	b, _ := s.Get("A")
	assert.Equal(t, "<p>old</p><p>new</p>", b.Content.(*model.RichText).HTML)

	err := s.UpdateContent("A", func(model.Content) model.Content { return &model.TextArea{Text: "x"} })
	require.ErrorIs(t, err, ErrKindMismatch)
	b, _ = s.Get("A")
	assert.IsType(t, &model.RichText{}, b.Content)
}

func TestMutateContent_DiscardsDraftOnError(t *testing.T) {
	s := NewStore()
	nb, err := NewBlock(model.KindFeeSummary, model.DefaultDocumentConfig())
	require.NoError(t, err)
	id := mustAdd(t, s, nb)

	boom := errors.New("boom")
	err = Mutate(s, id, func(c *model.FeeSummary) error {
		c.Options[0].Items[0].Qty = 42
		c.TaxRate = 99
		return boom
	})
	require.ErrorIs(t, err, boom)

	b, _ := s.Get(id)
	fs := b.Content.(*model.FeeSummary)
	assert.Zero(t, fs.Options[0].Items[0].Qty)
	assert.Zero(t, fs.TaxRate)

	require.NoError(t, Mutate(s, id, func(c *model.FeeSummary) error {
		c.Options[0].Items[0].Qty = 3
		return nil
	}))
	b, _ = s.Get(id)
	assert.Equal(t, 3.0, b.Content.(*model.FeeSummary).Options[0].Items[0].Qty)
}

func TestMutate_WrongTypeIsKindMismatch(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, richText("A", ""))
	err := Mutate(s, "A", func(*model.FeeSummary) error { return nil })
	require.ErrorIs(t, err, ErrKindMismatch)
}

func TestReadsReturnCopies(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, richText("A", "<p>a</p>"))
	b, _ := s.Get("A")
	b.Content.(*model.RichText).HTML = "changed"

	again, _ := s.Get("A")
	assert.Equal(t, "<p>a</p>", again.Content.(*model.RichText).HTML)
}

func TestPatchContent(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, model.NewBlock{ID: "F", Kind: model.KindFilesAndAttachments, Content: &model.Files{Title: "Files"}})

	require.NoError(t, s.PatchContent("F", map[string]any{"title": "Contracts", "showDescription": true}))
	b, _ := s.Get("F")
	files := b.Content.(*model.Files)
	assert.Equal(t, "Contracts", files.Title)
	assert.True(t, files.ShowDescription)

	err := s.PatchContent("F", map[string]any{"html": "<p>nope</p>"})
	require.ErrorIs(t, err, ErrInvalidPatch)

	err = s.PatchContent("F", map[string]any{"title": 12})
	require.ErrorIs(t, err, ErrInvalidPatch)

	b, _ = s.Get("F")
	assert.Equal(t, "Contracts", b.Content.(*model.Files).Title)
}

func feeBlock(id string, st model.FeeStructure, selected ...bool) model.NewBlock {
	c := &model.FeeSummary{Structure: st, Currency: "USD", Options: []model.FeeOption{}}
	for i, sel := range selected {
		c.Options = append(c.Options, model.FeeOption{
			ID:       fmt.Sprintf("o%d", i),
			Items:    []model.FeeLineItem{},
			Selected: model.Bool(sel),
		})
	}
	return model.NewBlock{ID: id, Kind: model.KindFeeSummary, Content: c}
}

func TestPatchContent_FeeSummaryRules(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, feeBlock("F", model.StructureMultiSelect, true, true, false))

	err := s.PatchContent("F", map[string]any{"structure": "bogus"})
	require.ErrorIs(t, err, ErrInvalidPatch)
	b, _ := s.Get("F")
	assert.Equal(t, model.StructureMultiSelect, b.Content.(*model.FeeSummary).Structure)

	// A structure change migrates like `fees structure` does.
	require.NoError(t, s.PatchContent("F", map[string]any{"structure": "packages"}))
	b, _ = s.Get("F")
	fs := b.Content.(*model.FeeSummary)
	assert.Equal(t, model.StructurePackages, fs.Structure)
	require.Len(t, fs.Options, 3)
	assert.True(t, fs.Options[0].IsSelected())
	assert.False(t, fs.Options[1].IsSelected())

	// Options that break the packages rule are rejected.
	two := []map[string]any{
		{"id": "a", "summary": "", "items": []any{}, "taxRate": 0, "currency": "USD", "selected": true},
		{"id": "b", "summary": "", "items": []any{}, "taxRate": 0, "currency": "USD", "selected": true},
	}
	err = s.PatchContent("F", map[string]any{"options": two})
	require.ErrorIs(t, err, ErrInvalidPatch)
	b, _ = s.Get("F")
	assert.Len(t, b.Content.(*model.FeeSummary).Options, 3)

	require.NoError(t, s.PatchContent("F", map[string]any{"options": nil}))
	b, _ = s.Get("F")
	fs = b.Content.(*model.FeeSummary)
	assert.NotNil(t, fs.Options)
	assert.Empty(t, fs.Options)

	require.NoError(t, s.PatchContent("F", map[string]any{"structure": "multi"}))
	b, _ = s.Get("F")
	assert.Equal(t, model.StructureMultiSelect, b.Content.(*model.FeeSummary).Structure)
}

func TestPatchContent_ImagePosition(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, model.NewBlock{ID: "I", Kind: model.KindImageText, Content: &model.ImageText{ImagePosition: "left"}})

	require.NoError(t, s.PatchContent("I", map[string]any{"imagePosition": "right"}))
	err := s.PatchContent("I", map[string]any{"imagePosition": "top"})
	require.ErrorIs(t, err, ErrInvalidPatch)

	b, _ := s.Get("I")
	assert.Equal(t, "right", b.Content.(*model.ImageText).ImagePosition)
}

func TestInsertAfter_TargetMovedConcurrently(t *testing.T) {
	for i := 0; i < 200; i++ {
		s := NewStore()
		for _, id := range []string{"A", "T", "B", "C"} {
			mustAdd(t, s, richText(id, ""))
		}

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			// A only ever jumps to either end, never between T and the new block.
			for j := 0; j < 20; j++ {
				assert.NoError(t, s.MoveBlock("A", 1<<20))
				assert.NoError(t, s.MoveBlock("A", 0))
			}
		}()
		id, err := s.InsertAfter("T", richText("", ""))
		require.NoError(t, err)
		wg.Wait()

		order := s.Order()
		at := s.IndexOf("T")
		require.Less(t, at+1, len(order))
		require.Equal(t, id, order[at+1], "iteration %d: order %v", i, order)
		assertBijection(t, s)
	}
}

func TestMutateContent_CallbackMayReadStore(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, richText("A", "<p>a</p>"))
	mustAdd(t, s, richText("B", "<p>b</p>"))

	done := make(chan error, 1)
	go func() {
		done <- Mutate(s, "A", func(c *model.RichText) error {
			other, ok := s.Get("B")
			if !ok {
				return errors.New("B missing")
			}
			c.HTML = other.Content.(*model.RichText).HTML + fmt.Sprintf("<p>%d</p>", s.IndexOf("B"))
			return nil
		})
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("mutation callback blocked on the store")
	}
	b, _ := s.Get("A")
	assert.Equal(t, "<p>b</p><p>1</p>", b.Content.(*model.RichText).HTML)

	require.NoError(t, s.UpdateContent("B", func(c model.Content) model.Content {
		return &model.RichText{HTML: fmt.Sprintf("<p>%d blocks</p>", s.Len())}
	}))
	b, _ = s.Get("B")
	assert.Equal(t, "<p>2 blocks</p>", b.Content.(*model.RichText).HTML)
}

func TestMutateContent_BlockRemovedDuringCallback(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, richText("A", "<p>a</p>"))

	err := s.MutateContent("A", func(draft model.Content) error {
		require.NoError(t, s.RemoveBlock("A"))
		draft.(*model.RichText).HTML = "<p>late</p>"
		return nil
	})
	require.NoError(t, err)
	_, ok := s.Get("A")
	assert.False(t, ok, "a removed block must not come back")
	assertBijection(t, s)
}

func TestUpdateStyle_ShallowMerge(t *testing.T) {
	s := NewStore()
	top := 20
	mustAdd(t, s, model.NewBlock{ID: "A", Kind: model.KindTextArea, Content: &model.TextArea{}, Style: &model.Style{MarginTop: &top}})

	require.NoError(t, s.UpdateStyle("A", model.Style{Monospace: model.Bool(true)}))
	b, _ := s.Get("A")
	require.NotNil(t, b.Style)
	assert.Equal(t, 20, *b.Style.MarginTop)
	assert.True(t, *b.Style.Monospace)
}

func TestReplaceAll_PreservesOrderAndDedupes(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, richText("old", ""))

	dropped, err := s.ReplaceAll([]model.Block{
		{ID: "C", Kind: model.KindRichText, Content: &model.RichText{}, Position: 0},
		{ID: "A", Kind: model.KindTextArea, Content: &model.TextArea{Text: "n"}, Position: 7},
		{ID: "C", Kind: model.KindRichText, Content: &model.RichText{HTML: "dup"}},
		{Kind: model.KindRichText, Content: &model.RichText{}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)

	order := s.Order()
	require.Len(t, order, 3)
	assert.Equal(t, []string{"C", "A"}, order[:2])
	assert.NotEmpty(t, order[2])
	_, ok := s.Get("old")
	assert.False(t, ok)
	assertBijection(t, s)
}

func TestResolveID(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, richText("blk-abc", ""))
	mustAdd(t, s, richText("blk-abd", ""))

	id, ok := s.ResolveID("blk-abc")
	assert.True(t, ok)
	assert.Equal(t, "blk-abc", id)

	_, ok = s.ResolveID("blk-ab")
	assert.False(t, ok, "ambiguous prefix")

	id, ok = s.ResolveID("blk-abd")
	assert.True(t, ok)
	assert.Equal(t, "blk-abd", id)
}

func TestRandomOperations_KeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := NewStore()
	for step := 0; step < 500; step++ {
		order := s.Order()
		pick := func() string {
			if len(order) == 0 || rng.Intn(10) == 0 {
				return "missing"
			}
			return order[rng.Intn(len(order))]
		}
		switch rng.Intn(5) {
		case 0, 1:
			_, err := s.AddBlock(richText("", fmt.Sprint(step)), AtIndex(rng.Intn(len(order)+3)-1))
			require.NoError(t, err)
		case 2:
			require.NoError(t, s.RemoveBlock(pick()))
		case 3:
			require.NoError(t, s.MoveBlock(pick(), rng.Intn(len(order)+2)-1))
		case 4:
			if rng.Intn(20) == 0 {
				_, err := s.ReplaceAll(s.Ordered())
				require.NoError(t, err)
			}
		}
		assertBijection(t, s)
		for i, b := range s.Ordered() {
			require.Equal(t, i, b.Position)
			require.Equal(t, s.Order()[i], b.ID)
		}
	}
}
