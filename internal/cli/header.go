package cli

import (
	"github.com/spf13/cobra"

	"proposal-cli/internal/document"
	"proposal-cli/internal/model"
)

func newHeaderCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "header",
		Short: "Document header: title, dates, parties and theme",
	}
	cmd.AddCommand(newHeaderShowCmd(app))
	cmd.AddCommand(newHeaderSetCmd(app))
	cmd.AddCommand(newHeaderPartyCmd(app))
	cmd.AddCommand(newHeaderThemeCmd(app))
	cmd.AddCommand(newHeaderBackgroundCmd(app))
	return cmd
}

type headerView struct {
	Header model.HeaderData  `json:"header"`
	Style  model.HeaderStyle `json:"style"`
}

func headerOf(d *document.Document) headerView {
	return headerView{Header: d.Header(), Style: d.HeaderStyle()}
}

func newHeaderShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show header data and style",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return view(cmd, app, func(s *session) (any, error) {
				return headerOf(s.doc), nil
			})
		},
	}
}

func newHeaderSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "set <field> <value>",
		Short:     "Set invoiceName, sentDate, acceptedDate or companyLogo",
		Args:      cobra.ExactArgs(2),
		ValidArgs: document.HeaderFields,
		RunE: func(cmd *cobra.Command, args []string) error {
			return edit(cmd, app, func(s *session) (any, error) {
				if err := s.doc.SetHeaderField(args[0], args[1]); err != nil {
					return nil, err
				}
				return headerOf(s.doc), nil
			})
		},
	}
}

func newHeaderPartyCmd(app *App) *cobra.Command {
	var name string
	var emails, address []string
	cmd := &cobra.Command{
		Use:   "party <from|to>",
		Short: "Set a party's name, emails or address lines",
		Long: `Each --email and --address flag adds one line; giving either flag replaces
the whole list for that party.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			who, err := document.ParsePartyRole(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			f := cmd.Flags()
			return edit(cmd, app, func(s *session) (any, error) {
				if f.Changed("name") {
					s.doc.SetPartyName(who, name)
				}
				if f.Changed("email") {
					cur := partyOf(s.doc.Header(), who).Email
					replaceLines(len(cur), emails,
						func(i int, v string) { s.doc.SetEmail(who, i, v) },
						func(i int) { s.doc.RemoveEmail(who, i) })
				}
				if f.Changed("address") {
					cur := partyOf(s.doc.Header(), who).Address
					replaceLines(len(cur), address,
						func(i int, v string) { s.doc.SetAddressLine(who, i, v) },
						func(i int) { s.doc.RemoveAddressLine(who, i) })
				}
				return partyOf(s.doc.Header(), who), nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Party name")
	cmd.Flags().StringArrayVar(&emails, "email", nil, "Email address (repeatable)")
	cmd.Flags().StringArrayVar(&address, "address", nil, "Address line (repeatable)")
	return cmd
}

func partyOf(h model.HeaderData, who document.PartyRole) model.Party {
	if who == document.PartyTo {
		return h.To
	}
	return h.From
}

// replaceLines overwrites the first len(lines) entries and drops the rest.
func replaceLines(have int, lines []string, set func(int, string), remove func(int)) {
	for i, v := range lines {
		set(i, v)
	}
	for n := have; n > len(lines); n-- {
		remove(len(lines))
	}
}

func newHeaderThemeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "theme <name>",
		Short:     "Apply a header colour theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: document.ThemeNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return edit(cmd, app, func(s *session) (any, error) {
				if err := s.doc.ApplyTheme(args[0]); err != nil {
					return nil, err
				}
				return s.doc.HeaderStyle(), nil
			})
		},
	}
}

func newHeaderBackgroundCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "background [url]",
		Short: "Set the header background image (no argument clears it)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := ""
			if len(args) == 1 {
				url = args[0]
			}
			return edit(cmd, app, func(s *session) (any, error) {
				s.doc.SetBackgroundImage(url)
				return s.doc.HeaderStyle(), nil
			})
		},
	}
}
