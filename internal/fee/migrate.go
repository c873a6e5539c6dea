package fee

import "proposal-cli/internal/model"

// MigrateStructure converts c to the target structure, keeping as much option
// data as possible and enforcing the target's selection rule. c is not modified.
//
//   - single: keep the first selected option (else the first option) and drop its selection flag.
//   - packages: exactly one selected option when there is at least one option.
//   - multi-select: selection flags become explicit booleans; the first option is
//     selected when nothing was.
func MigrateStructure(c model.FeeSummary, to model.FeeStructure) model.FeeSummary {
	out := c
	out.Structure = to
	out.Options = cloneOptions(c.Options)

	switch to {
	case model.StructureSingle:
		if len(out.Options) == 0 {
			return out
		}
		chosen := out.Options[0]
		for _, o := range out.Options {
			if o.IsSelected() {
				chosen = o
				break
			}
		}
		chosen.Selected = nil
		out.Options = []model.FeeOption{chosen}

	case model.StructurePackages:
		seen := false
		for i := range out.Options {
			sel := !seen && out.Options[i].IsSelected()
			if sel {
				seen = true
			}
			out.Options[i].Selected = model.Bool(sel)
		}
		if !seen && len(out.Options) > 0 {
			out.Options[0].Selected = model.Bool(true)
		}

	case model.StructureMultiSelect:
		anySelected := false
		for _, o := range out.Options {
			if o.IsSelected() {
				anySelected = true
				break
			}
		}
		for i := range out.Options {
			out.Options[i].Selected = model.Bool(out.Options[i].IsSelected() || (!anySelected && i == 0))
		}
	}
	return out
}

func cloneOptions(in []model.FeeOption) []model.FeeOption {
	out := make([]model.FeeOption, len(in))
	for i, o := range in {
		items := make([]model.FeeLineItem, len(o.Items))
		copy(items, o.Items)
		o.Items = items
		if o.Selected != nil {
			o.Selected = model.Bool(*o.Selected)
		}
		out[i] = o
	}
	return out
}
