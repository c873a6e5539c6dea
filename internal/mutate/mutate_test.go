package mutate

import (
	"errors"
	"testing"

	"proposal-cli/internal/document"
	"proposal-cli/internal/fee"
	"proposal-cli/internal/model"
)

func intPtr(v int) *int { return &v }
func strPtr(v string) *string { return &v }
func f64Ptr(v float64) *float64 { return &v }

func order(d *document.Document) []model.Kind {
	var out []model.Kind
	for _, b := range d.Blocks.Ordered() {
		out = append(out, b.Kind)
	}
	return out
}

func TestAddBlock_Placement(t *testing.T) {
	d := document.New()
	first, err := AddBlock(d, "text-area", Placement{})
	if err != nil {
		t.Fatalf("AddBlock: %v", err)
	}
	if _, err := AddBlock(d, "rich-text", Placement{Prepend: true}); err != nil {
		t.Fatal(err)
	}
	res, err := AddBlock(d, "fee-summary", Placement{After: first.Block.ID[:10]})
	if err != nil {
		t.Fatalf("AddBlock after prefix: %v", err)
	}
	if res.Block.Position != 2 {
		t.Fatalf("expected fee block at 2, got %d", res.Block.Position)
	}
	if _, err := AddBlock(d, "deliverables", Placement{Index: intPtr(1)}); err != nil {
		t.Fatal(err)
	}
	want := []model.Kind{model.KindRichText, model.KindDeliverables, model.KindTextArea, model.KindFeeSummary}
	got := order(d)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestAddBlock_Errors(t *testing.T) {
	d := document.New()
	var nf NotFoundError
	if _, err := AddBlock(d, "rich-text", Placement{After: "blk-missing"}); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if _, err := AddBlock(d, "rich-text", Placement{Prepend: true, Index: intPtr(0)}); !errors.Is(err, ErrPlacement) {
		t.Fatalf("expected ErrPlacement, got %v", err)
	}
	if _, err := AddBlock(d, "video", Placement{}); !errors.Is(err, model.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if d.Blocks.Len() != 0 {
		t.Fatalf("failed adds must not change the store")
	}
}

func TestMoveAndRemove(t *testing.T) {
	d := document.New()
	a, _ := AddBlock(d, "rich-text", Placement{})
	_, _ = AddBlock(d, "text-area", Placement{})

	res, err := MoveBlock(d.Blocks, a.Block.ID, 5)
	if err != nil || !res.Changed || res.Block.Position != 1 {
		t.Fatalf("MoveBlock = %+v, %v", res, err)
	}
	res, err = MoveBlock(d.Blocks, a.Block.ID, 1)
	if err != nil || res.Changed {
		t.Fatalf("second move should be a no-op: %+v, %v", res, err)
	}
	if _, err := RemoveBlock(d.Blocks, a.Block.ID); err != nil {
		t.Fatal(err)
	}
	var nf NotFoundError
	if _, err := RemoveBlock(d.Blocks, a.Block.ID); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError on second remove, got %v", err)
	}
}

func TestSetHTML_SanitizesAndChecksKind(t *testing.T) {
	d := document.New()
	rt, _ := AddBlock(d, "scope-of-services", Placement{})
	ta, _ := AddBlock(d, "text-area", Placement{})

	res, err := SetHTML(d.Blocks, rt.Block.ID, `<p onclick="x()">Scope</p><script>bad()</script>`)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Block.Content.(*model.RichText).HTML; got != "<p>Scope</p>" {
		t.Fatalf("html = %q", got)
	}
	var wk WrongKindError
	if _, err := SetHTML(d.Blocks, ta.Block.ID, "<p>x</p>"); !errors.As(err, &wk) {
		t.Fatalf("expected WrongKindError, got %v", err)
	}
	if _, err := SetText(d.Blocks, ta.Block.ID, "notes"); err != nil {
		t.Fatal(err)
	}
	if _, err := SetText(d.Blocks, rt.Block.ID, "notes"); !errors.As(err, &wk) {
		t.Fatalf("expected WrongKindError, got %v", err)
	}
}

func TestPatch(t *testing.T) {
	d := document.New()
	b, _ := AddBlock(d, "image-text", Placement{})
	res, err := Patch(d.Blocks, b.Block.ID, map[string]any{"html": "<p>x<script></script></p>", "imageAlt": "logo"})
	if err != nil {
		t.Fatal(err)
	}
	c := res.Block.Content.(*model.ImageText)
	if c.HTML != "<p>x</p>" || c.ImageAlt != "logo" || c.ImagePosition != "left" {
		t.Fatalf("unexpected content %+v", c)
	}
	if _, err := Patch(d.Blocks, b.Block.ID, map[string]any{"text": "nope"}); !errors.Is(err, document.ErrInvalidPatch) {
		t.Fatalf("expected ErrInvalidPatch, got %v", err)
	}
	if _, err := SetImage(d.Blocks, b.Block.ID, "", "", "top"); err == nil {
		t.Fatalf("expected invalid position error")
	}
}

func TestFeeOperations(t *testing.T) {
	d := document.New()
	b, err := AddBlock(d, "fee-summary", Placement{})
	if err != nil {
		t.Fatal(err)
	}
	id := b.Block.ID

	if _, err := SetStructure(d.Blocks, id, model.StructurePackages); err != nil {
		t.Fatal(err)
	}
	_, idx, err := AddOption(d.Blocks, id)
	if err != nil || idx != 1 {
		t.Fatalf("AddOption = %d, %v", idx, err)
	}
	if _, err := SelectOption(d.Blocks, id, 1, true); err != nil {
		t.Fatal(err)
	}
	_, item, err := AddLineItem(d.Blocks, id, 1, fee.ItemPatch{Name: strPtr("Design"), Qty: f64Ptr(1), UnitPrice: f64Ptr(100)})
	if err != nil || item != 0 {
		t.Fatalf("AddLineItem = %d, %v", item, err)
	}
	if _, err := UpdateOption(d.Blocks, id, 1, fee.OptionPatch{TaxRate: f64Ptr(10), Currency: strPtr("eur")}); err != nil {
		t.Fatal(err)
	}

	totals, err := Totals(d.Blocks, id)
	if err != nil {
		t.Fatal(err)
	}
	if totals.Display != 110 || totals.Options[0].Selected || !totals.Options[1].Selected {
		t.Fatalf("unexpected totals %+v", totals)
	}

	if _, err := UpdateOption(d.Blocks, id, 1, fee.OptionPatch{Currency: strPtr("XXX")}); !errors.Is(err, document.ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
	if _, err := RemoveLineItem(d.Blocks, id, 1, 9); !errors.Is(err, fee.ErrItemIndex) {
		t.Fatalf("expected ErrItemIndex, got %v", err)
	}
	if _, err := RemoveOption(d.Blocks, id, 0); err != nil {
		t.Fatal(err)
	}

	text, _ := AddBlock(d, "text-area", Placement{})
	var wk WrongKindError
	if _, _, err := AddOption(d.Blocks, text.Block.ID); !errors.As(err, &wk) {
		t.Fatalf("expected WrongKindError, got %v", err)
	}
}

func TestFileOperations(t *testing.T) {
	d := document.New()
	b, _ := AddBlock(d, "files-and-attachments", Placement{})
	id := b.Block.ID
	f := model.FileAttachment{ID: "file-1", Name: "a.pdf", Size: 10, Status: model.FileStatusUploaded}
	if _, err := AddFile(d.Blocks, id, f); err != nil {
		t.Fatal(err)
	}
	if _, err := RenameFile(d.Blocks, id, "file-1", " b.pdf "); err != nil {
		t.Fatal(err)
	}
	if _, err := SetFilesTitle(d.Blocks, id, "Contracts"); err != nil {
		t.Fatal(err)
	}
	res, err := SetFilesDescription(d.Blocks, id, strPtr("Signed"), true)
	if err != nil {
		t.Fatal(err)
	}
	c := res.Block.Content.(*model.Files)
	if c.Title != "Contracts" || c.Files[0].Name != "b.pdf" || !c.ShowDescription {
		t.Fatalf("unexpected files content %+v", c)
	}
	_, removed, err := RemoveFile(d.Blocks, id, "file-1")
	if err != nil || removed.Name != "b.pdf" {
		t.Fatalf("RemoveFile = %+v, %v", removed, err)
	}
	var nf NotFoundError
	if _, _, err := RemoveFile(d.Blocks, id, "file-1"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
