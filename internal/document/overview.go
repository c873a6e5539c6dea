package document

import (
	"proposal-cli/internal/fee"
	"proposal-cli/internal/model"
)

// MigrateAllFeeBlocks converts every fee-summary block to structure and
// returns how many blocks were rewritten. Nothing calls this implicitly when
// the default structure changes.
func MigrateAllFeeBlocks(s *Store, structure model.FeeStructure) int {
	n := 0
	for _, b := range s.Ordered() {
		if b.Kind != model.KindFeeSummary {
			continue
		}
		err := Mutate(s, b.ID, func(c *model.FeeSummary) error {
			*c = fee.MigrateStructure(*c, structure)
			return nil
		})
		if err == nil {
			n++
		}
	}
	return n
}

// FirstFeeSummary returns the first fee-summary block in display order.
func FirstFeeSummary(s *Store) (model.Block, *model.FeeSummary, bool) {
	for _, b := range s.Ordered() {
		if c, ok := b.Content.(*model.FeeSummary); ok {
			return b, c, true
		}
	}
	return model.Block{}, nil, false
}

type Overview struct {
	Status         string             `json:"status"`
	Project        string             `json:"project"`
	Structure      model.FeeStructure `json:"structure"`
	StructureLabel string             `json:"structureLabel"`
	Amount         float64            `json:"amount"`
	Currency       string             `json:"currency"`
	Upfront        float64            `json:"upfront,omitempty"`
	ExpirationDate string             `json:"expirationDate,omitempty"`
	Blocks         int                `json:"blocks"`
	FeeBlockID     string             `json:"feeBlockId,omitempty"`
}

// BuildOverview derives the summary panel. The amount comes from the first
// fee-summary block; without one it is 0 in the document currency.
func BuildOverview(d *Document) Overview {
	cfg := d.Config()
	header := d.Header()
	ov := Overview{
		Status:         "Drafted",
		Project:        header.InvoiceName,
		Structure:      cfg.DefaultStructure,
		Currency:       string(cfg.Currency),
		ExpirationDate: cfg.ExpirationDate,
		Blocks:         d.Blocks.Len(),
	}
	if ov.Project == "" {
		ov.Project = "Untitled"
	}
	if b, c, ok := FirstFeeSummary(d.Blocks); ok {
		ov.FeeBlockID = b.ID
		ov.Structure = c.Structure
		ov.Amount = fee.BlockDisplayTotal(*c)
		if c.Currency != "" {
			ov.Currency = c.Currency
		}
	}
	ov.StructureLabel = ov.Structure.Label()
	ov.Upfront = fee.Upfront(ov.Amount, cfg)
	return ov
}

// StarterBlocks seeds a new workspace: a welcome note, a fee summary and terms.
func StarterBlocks(cfg model.DocumentConfig) []model.NewBlock {
	out := make([]model.NewBlock, 0, 3)
	for _, k := range []model.Kind{model.KindRichText, model.KindFeeSummary, model.KindTermsAndConditions} {
		nb, err := NewBlock(k, cfg)
		if err != nil {
			continue
		}
		if k == model.KindRichText {
			nb.Content = &model.RichText{HTML: "<h1>Welcome</h1><p>This is your first rich text block.</p>"}
		}
		out = append(out, nb)
	}
	return out
}
