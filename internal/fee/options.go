package fee

import (
	"errors"
	"fmt"

	"proposal-cli/internal/ids"
	"proposal-cli/internal/model"
)

var (
	ErrOptionIndex = errors.New("fee option index out of range")
	ErrItemIndex   = errors.New("line item index out of range")
)

// The helpers below edit a fee summary in place. They are meant to run inside
// a store mutation draft, so a returned error discards the whole edit.

// NewOption returns an empty option inheriting the block's tax rate and currency.
// Its selection flag is explicit false except under single, where selection is unused.
func NewOption(c *model.FeeSummary) model.FeeOption {
	opt := model.FeeOption{
		ID:       ids.New("opt"),
		Items:    []model.FeeLineItem{},
		TaxRate:  c.TaxRate,
		Currency: c.Currency,
	}
	if c.Structure != model.StructureSingle {
		opt.Selected = model.Bool(false)
	}
	return opt
}

func AddOption(c *model.FeeSummary, opt model.FeeOption) int {
	if opt.Items == nil {
		opt.Items = []model.FeeLineItem{}
	}
	c.Options = append(c.Options, opt)
	return len(c.Options) - 1
}

func RemoveOption(c *model.FeeSummary, idx int) error {
	if err := checkOption(c, idx); err != nil {
		return err
	}
	c.Options = append(c.Options[:idx], c.Options[idx+1:]...)
	return nil
}

// OptionPatch carries the option fields to change; nil fields are left alone.
type OptionPatch struct {
	Summary  *string  `json:"summary,omitempty"`
	TaxRate  *float64 `json:"taxRate,omitempty"`
	Currency *string  `json:"currency,omitempty"`
	Selected *bool    `json:"selected,omitempty"`
}

// UpdateOption applies p to option idx. Selecting an option under packages
// clears every other option so at most one stays selected.
func UpdateOption(c *model.FeeSummary, idx int, p OptionPatch) error {
	if err := checkOption(c, idx); err != nil {
		return err
	}
	o := &c.Options[idx]
	if p.Summary != nil {
		o.Summary = *p.Summary
	}
	if p.TaxRate != nil {
		o.TaxRate = *p.TaxRate
	}
	if p.Currency != nil {
		o.Currency = *p.Currency
	}
	if p.Selected != nil {
		o.Selected = model.Bool(*p.Selected)
		if *p.Selected && c.Structure == model.StructurePackages {
			for i := range c.Options {
				if i != idx {
					c.Options[i].Selected = model.Bool(false)
				}
			}
		}
	}
	return nil
}

func SetSelected(c *model.FeeSummary, idx int, selected bool) error {
	return UpdateOption(c, idx, OptionPatch{Selected: &selected})
}

// NewLineItem returns the placeholder row added by "add item".
func NewLineItem() model.FeeLineItem {
	return model.FeeLineItem{ID: ids.New("li"), Name: "Item name"}
}

func AddLineItem(c *model.FeeSummary, optIdx int, item model.FeeLineItem) (int, error) {
	if err := checkOption(c, optIdx); err != nil {
		return -1, err
	}
	o := &c.Options[optIdx]
	o.Items = append(o.Items, item)
	return len(o.Items) - 1, nil
}

type ItemPatch struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Qty         *float64 `json:"qty,omitempty"`
	UnitPrice   *float64 `json:"unitPrice,omitempty"`
}

func UpdateLineItem(c *model.FeeSummary, optIdx, itemIdx int, p ItemPatch) error {
	if err := checkItem(c, optIdx, itemIdx); err != nil {
		return err
	}
	it := &c.Options[optIdx].Items[itemIdx]
	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.Description != nil {
		it.Description = *p.Description
	}
	if p.Qty != nil {
		it.Qty = *p.Qty
	}
	if p.UnitPrice != nil {
		it.UnitPrice = *p.UnitPrice
	}
	return nil
}

func RemoveLineItem(c *model.FeeSummary, optIdx, itemIdx int) error {
	if err := checkItem(c, optIdx, itemIdx); err != nil {
		return err
	}
	o := &c.Options[optIdx]
	o.Items = append(o.Items[:itemIdx], o.Items[itemIdx+1:]...)
	return nil
}

func checkOption(c *model.FeeSummary, idx int) error {
	if idx < 0 || idx >= len(c.Options) {
		return fmt.Errorf("%w: %d (have %d)", ErrOptionIndex, idx, len(c.Options))
	}
	return nil
}

func checkItem(c *model.FeeSummary, optIdx, itemIdx int) error {
	if err := checkOption(c, optIdx); err != nil {
		return err
	}
	n := len(c.Options[optIdx].Items)
	if itemIdx < 0 || itemIdx >= n {
		return fmt.Errorf("%w: %d (have %d)", ErrItemIndex, itemIdx, n)
	}
	return nil
}
