package mutate

import (
	"proposal-cli/internal/document"
	"proposal-cli/internal/fee"
	"proposal-cli/internal/model"
	"proposal-cli/internal/richtext"
)

func editFees(s *document.Store, ref string, fn func(c *model.FeeSummary) error) (Result, error) {
	b, err := Resolve(s, ref)
	if err != nil {
		return Result{}, err
	}
	if b.Kind != model.KindFeeSummary {
		return Result{}, WrongKindError{ID: b.ID, Got: b.Kind, Want: string(model.KindFeeSummary)}
	}
	if err := document.Mutate(s, b.ID, fn); err != nil {
		return Result{}, err
	}
	return reload(s, b.ID, true)
}

// SetStructure migrates one fee block to structure.
func SetStructure(s *document.Store, ref string, structure model.FeeStructure) (Result, error) {
	return editFees(s, ref, func(c *model.FeeSummary) error {
		*c = fee.MigrateStructure(*c, structure)
		return nil
	})
}

// AddOption appends an empty option and returns its index.
func AddOption(s *document.Store, ref string) (Result, int, error) {
	idx := -1
	res, err := editFees(s, ref, func(c *model.FeeSummary) error {
		idx = fee.AddOption(c, fee.NewOption(c))
		return nil
	})
	return res, idx, err
}

func RemoveOption(s *document.Store, ref string, idx int) (Result, error) {
	return editFees(s, ref, func(c *model.FeeSummary) error {
		return fee.RemoveOption(c, idx)
	})
}

func SelectOption(s *document.Store, ref string, idx int, selected bool) (Result, error) {
	return editFees(s, ref, func(c *model.FeeSummary) error {
		return fee.SetSelected(c, idx, selected)
	})
}

// UpdateOption sanitizes the summary HTML and validates the currency before
// applying p.
func UpdateOption(s *document.Store, ref string, idx int, p fee.OptionPatch) (Result, error) {
	if p.Summary != nil {
		clean := richtext.Sanitize(*p.Summary)
		p.Summary = &clean
	}
	if p.Currency != nil {
		code, err := document.ParseCurrency(*p.Currency)
		if err != nil {
			return Result{}, err
		}
		c := string(code)
		p.Currency = &c
	}
	return editFees(s, ref, func(c *model.FeeSummary) error {
		return fee.UpdateOption(c, idx, p)
	})
}

// AddLineItem appends a placeholder row to option optIdx with p applied, and
// returns the item index.
func AddLineItem(s *document.Store, ref string, optIdx int, p fee.ItemPatch) (Result, int, error) {
	itemIdx := -1
	res, err := editFees(s, ref, func(c *model.FeeSummary) error {
		i, err := fee.AddLineItem(c, optIdx, fee.NewLineItem())
		if err != nil {
			return err
		}
		itemIdx = i
		return fee.UpdateLineItem(c, optIdx, i, p)
	})
	return res, itemIdx, err
}

func UpdateLineItem(s *document.Store, ref string, optIdx, itemIdx int, p fee.ItemPatch) (Result, error) {
	return editFees(s, ref, func(c *model.FeeSummary) error {
		return fee.UpdateLineItem(c, optIdx, itemIdx, p)
	})
}

func RemoveLineItem(s *document.Store, ref string, optIdx, itemIdx int) (Result, error) {
	return editFees(s, ref, func(c *model.FeeSummary) error {
		return fee.RemoveLineItem(c, optIdx, itemIdx)
	})
}

func Totals(s *document.Store, ref string) (fee.Totals, error) {
	b, err := Resolve(s, ref)
	if err != nil {
		return fee.Totals{}, err
	}
	c, ok := b.Content.(*model.FeeSummary)
	if !ok {
		return fee.Totals{}, WrongKindError{ID: b.ID, Got: b.Kind, Want: string(model.KindFeeSummary)}
	}
	return fee.ComputeTotals(*c), nil
}
