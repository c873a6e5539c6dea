package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"proposal-cli/internal/document"
	"proposal-cli/internal/model"
)

// newConfigCmd edits the document configuration stored in the snapshot. The
// user-level settings file is managed by hand (see `workspace current`).
func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Document settings: currency, fee structure, upfront, expiration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the document settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return view(cmd, app, func(s *session) (any, error) {
				return s.doc.Config(), nil
			})
		},
	})
	cmd.AddCommand(newConfigSetCmd(app))
	cmd.AddCommand(&cobra.Command{
		Use:   "currencies",
		Short: "List the offered currency codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeData(cmd, app, model.CurrencyCodes)
		},
	})
	return cmd
}

type configSetResult struct {
	Config   model.DocumentConfig `json:"config"`
	Migrated int                  `json:"migrated"`
}

func newConfigSetCmd(app *App) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "set <currency|structure|upfront|upfront-percent|expiration> <value>",
		Short: "Change one document setting",
		Long: `Changing the default structure only affects fee blocks created afterwards
unless --migrate is given, which converts every existing fee block as well.
An empty expiration value clears the date.`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"currency", "structure", "upfront", "upfront-percent", "expiration"},
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			return edit(cmd, app, func(s *session) (any, error) {
				out := configSetResult{}
				switch key {
				case "currency":
					if err := s.doc.SetCurrency(value); err != nil {
						return nil, err
					}
				case "structure", "default-structure":
					st, err := model.ParseFeeStructure(value)
					if err != nil {
						return nil, err
					}
					s.doc.SetDefaultStructure(st)
					if migrate {
						out.Migrated = document.MigrateAllFeeBlocks(s.doc.Blocks, st)
					}
				case "upfront", "require-upfront":
					v, err := strconv.ParseBool(value)
					if err != nil {
						return nil, fmt.Errorf("invalid upfront value %q (expected true|false)", value)
					}
					s.doc.SetRequireUpfront(v)
				case "upfront-percent":
					p, err := strconv.ParseFloat(value, 64)
					if err != nil {
						return nil, fmt.Errorf("invalid upfront percent %q", value)
					}
					s.doc.SetUpfrontPercent(p)
				case "expiration", "expiration-date":
					if err := s.doc.SetExpirationDate(value); err != nil {
						return nil, err
					}
				default:
					return nil, fmt.Errorf("unknown setting %q", key)
				}
				out.Config = s.doc.Config()
				return out, nil
			})
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Also convert existing fee blocks to the new structure")
	return cmd
}
