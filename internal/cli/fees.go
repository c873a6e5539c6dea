package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"proposal-cli/internal/document"
	"proposal-cli/internal/fee"
	"proposal-cli/internal/model"
	"proposal-cli/internal/mutate"
)

func newFeesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fees",
		Short: "Edit fee-summary blocks",
	}
	cmd.AddCommand(newFeesStructureCmd(app))
	cmd.AddCommand(newFeesOptionCmd(app))
	cmd.AddCommand(newFeesItemCmd(app))
	cmd.AddCommand(newFeesTotalsCmd(app))
	cmd.AddCommand(newFeesMigrateAllCmd(app))
	return cmd
}

func parseIndex(name, s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid %s index %q", name, s)
	}
	return i, nil
}

type optionResult struct {
	Block model.Block `json:"block"`
	Index int         `json:"index"`
}

func newFeesStructureCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "structure <block-id> <single|packages|multi-select>",
		Short: "Migrate a fee block to another structure",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := model.ParseFeeStructure(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			return edit(cmd, app, func(s *session) (any, error) {
				res, err := mutate.SetStructure(s.doc.Blocks, args[0], st)
				return res.Block, err
			})
		},
	}
}

func newFeesOptionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "option",
		Short: "Add, remove, select and edit fee options",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <block-id>",
		Short: "Append an empty option",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return edit(cmd, app, func(s *session) (any, error) {
				res, idx, err := mutate.AddOption(s.doc.Blocks, args[0])
				return optionResult{Block: res.Block, Index: idx}, err
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <block-id> <option-index>",
		Short: "Remove an option",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex("option", args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			return edit(cmd, app, func(s *session) (any, error) {
				res, err := mutate.RemoveOption(s.doc.Blocks, args[0], idx)
				return res.Block, err
			})
		},
	})
	cmd.AddCommand(newFeesSelectCmd(app, "select", true))
	cmd.AddCommand(newFeesSelectCmd(app, "unselect", false))
	cmd.AddCommand(newFeesOptionSetCmd(app))
	return cmd
}

func newFeesSelectCmd(app *App, use string, selected bool) *cobra.Command {
	short := "Mark an option as selected (packages keeps at most one)"
	if !selected {
		short = "Clear an option's selection"
	}
	return &cobra.Command{
		Use:   use + " <block-id> <option-index>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex("option", args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			return edit(cmd, app, func(s *session) (any, error) {
				res, err := mutate.SelectOption(s.doc.Blocks, args[0], idx, selected)
				return res.Block, err
			})
		},
	}
}

func newFeesOptionSetCmd(app *App) *cobra.Command {
	var summary, currency string
	var taxRate float64
	cmd := &cobra.Command{
		Use:   "set <block-id> <option-index>",
		Short: "Change an option's summary, tax rate or currency",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex("option", args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			var p fee.OptionPatch
			f := cmd.Flags()
			if f.Changed("summary") {
				p.Summary = &summary
			}
			if f.Changed("tax-rate") {
				p.TaxRate = &taxRate
			}
			if f.Changed("currency") {
				p.Currency = &currency
			}
			return edit(cmd, app, func(s *session) (any, error) {
				res, err := mutate.UpdateOption(s.doc.Blocks, args[0], idx, p)
				return res.Block, err
			})
		},
	}
	cmd.Flags().StringVar(&summary, "summary", "", "Option summary (HTML)")
	cmd.Flags().Float64Var(&taxRate, "tax-rate", 0, "Tax rate in percent")
	cmd.Flags().StringVar(&currency, "currency", "", "Currency code")
	return cmd
}

type itemFlags struct {
	name, description string
	qty, unitPrice    float64
}

func (f *itemFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "Item name")
	fs.StringVar(&f.description, "description", "", "Item description")
	fs.Float64Var(&f.qty, "qty", 0, "Quantity")
	fs.Float64Var(&f.unitPrice, "unit-price", 0, "Unit price")
}

func (f *itemFlags) patch(fs *pflag.FlagSet) fee.ItemPatch {
	var p fee.ItemPatch
	if fs.Changed("name") {
		p.Name = &f.name
	}
	if fs.Changed("description") {
		p.Description = &f.description
	}
	if fs.Changed("qty") {
		p.Qty = &f.qty
	}
	if fs.Changed("unit-price") {
		p.UnitPrice = &f.unitPrice
	}
	return p
}

type itemResult struct {
	Block  model.Block `json:"block"`
	Option int         `json:"option"`
	Index  int         `json:"index"`
}

func newFeesItemCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Add, edit and remove line items",
	}

	var add itemFlags
	addCmd := &cobra.Command{
		Use:   "add <block-id> <option-index>",
		Short: "Append a line item to an option",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := parseIndex("option", args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			p := add.patch(cmd.Flags())
			return edit(cmd, app, func(s *session) (any, error) {
				res, idx, err := mutate.AddLineItem(s.doc.Blocks, args[0], opt, p)
				return itemResult{Block: res.Block, Option: opt, Index: idx}, err
			})
		},
	}
	add.bind(addCmd.Flags())

	var set itemFlags
	setCmd := &cobra.Command{
		Use:   "set <block-id> <option-index> <item-index>",
		Short: "Change a line item",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := parseIndex("option", args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			item, err := parseIndex("item", args[2])
			if err != nil {
				return writeErr(cmd, err)
			}
			p := set.patch(cmd.Flags())
			return edit(cmd, app, func(s *session) (any, error) {
				res, err := mutate.UpdateLineItem(s.doc.Blocks, args[0], opt, item, p)
				return res.Block, err
			})
		},
	}
	set.bind(setCmd.Flags())

	removeCmd := &cobra.Command{
		Use:   "remove <block-id> <option-index> <item-index>",
		Short: "Remove a line item",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := parseIndex("option", args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			item, err := parseIndex("item", args[2])
			if err != nil {
				return writeErr(cmd, err)
			}
			return edit(cmd, app, func(s *session) (any, error) {
				res, err := mutate.RemoveLineItem(s.doc.Blocks, args[0], opt, item)
				return res.Block, err
			})
		},
	}

	cmd.AddCommand(addCmd, setCmd, removeCmd)
	return cmd
}

func newFeesTotalsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "totals <block-id>",
		Short: "Per-option subtotal, tax and total plus the displayed amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return view(cmd, app, func(s *session) (any, error) {
				return mutate.Totals(s.doc.Blocks, args[0])
			})
		},
	}
}

func newFeesMigrateAllCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-all [structure]",
		Short: "Convert every fee block (default: the document's default structure)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target model.FeeStructure
			if len(args) == 1 {
				st, err := model.ParseFeeStructure(args[0])
				if err != nil {
					return writeErr(cmd, err)
				}
				target = st
			}
			return edit(cmd, app, func(s *session) (any, error) {
				if target == "" {
					target = s.doc.Config().DefaultStructure
				}
				n := document.MigrateAllFeeBlocks(s.doc.Blocks, target)
				return map[string]any{"structure": target, "migrated": n}, nil
			})
		},
	}
}
