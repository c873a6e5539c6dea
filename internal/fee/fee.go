package fee

import "proposal-cli/internal/model"

// LineTotal is qty * unitPrice. Zero values count as 0.
func LineTotal(item model.FeeLineItem) float64 {
	return item.Qty * item.UnitPrice
}

func OptionSubtotal(opt model.FeeOption) float64 {
	var sum float64
	for _, it := range opt.Items {
		sum += LineTotal(it)
	}
	return sum
}

func OptionTax(opt model.FeeOption) float64 {
	return OptionSubtotal(opt) * (opt.TaxRate / 100)
}

func OptionTotal(opt model.FeeOption) float64 {
	return OptionSubtotal(opt) + OptionTax(opt)
}

// SelectedOptions returns the options that count toward the displayed total:
// the first option under single, the first selected one under packages, and
// every selected one under multi-select.
func SelectedOptions(c model.FeeSummary) []model.FeeOption {
	switch c.Structure {
	case model.StructurePackages:
		for _, o := range c.Options {
			if o.IsSelected() {
				return []model.FeeOption{o}
			}
		}
		return []model.FeeOption{}
	case model.StructureMultiSelect:
		out := make([]model.FeeOption, 0, len(c.Options))
		for _, o := range c.Options {
			if o.IsSelected() {
				out = append(out, o)
			}
		}
		return out
	default:
		if len(c.Options) == 0 {
			return []model.FeeOption{}
		}
		return []model.FeeOption{c.Options[0]}
	}
}

// BlockDisplayTotal is the amount surfaced in overview and summary displays.
func BlockDisplayTotal(c model.FeeSummary) float64 {
	var sum float64
	for _, o := range SelectedOptions(c) {
		sum += OptionTotal(o)
	}
	return sum
}

// Upfront is the share of total due upfront, or 0 when the document does not require it.
func Upfront(total float64, cfg model.DocumentConfig) float64 {
	if !cfg.RequireUpfront {
		return 0
	}
	return total * clampPercent(cfg.UpfrontPercent) / 100
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Breakdown is the per-option arithmetic shown by `fees totals`.
type Breakdown struct {
	OptionID string  `json:"optionId"`
	Selected bool    `json:"selected"`
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

type Totals struct {
	Structure model.FeeStructure `json:"structure"`
	Currency  string             `json:"currency"`
	Options   []Breakdown        `json:"options"`
	Display   float64            `json:"display"`
}

func ComputeTotals(c model.FeeSummary) Totals {
	counted := map[string]bool{}
	for _, o := range SelectedOptions(c) {
		counted[o.ID] = true
	}
	out := Totals{
		Structure: c.Structure,
		Currency:  c.Currency,
		Options:   make([]Breakdown, 0, len(c.Options)),
		Display:   BlockDisplayTotal(c),
	}
	for _, o := range c.Options {
		out.Options = append(out.Options, Breakdown{
			OptionID: o.ID,
			Selected: counted[o.ID],
			Subtotal: OptionSubtotal(o),
			Tax:      OptionTax(o),
			Total:    OptionTotal(o),
		})
	}
	return out
}
