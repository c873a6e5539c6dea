package render

import (
	"strconv"
	"strings"

	"proposal-cli/internal/fee"
	"proposal-cli/internal/format"
	"proposal-cli/internal/model"
	"proposal-cli/internal/richtext"
)

// Summary is a one-line description of a block for listings.
func Summary(b model.Block) string {
	switch c := b.Content.(type) {
	case *model.RichText:
		return richtext.Excerpt(c.HTML)
	case *model.ImageText:
		return richtext.Excerpt(c.HTML)
	case *model.TextArea:
		return strings.Join(strings.Fields(c.Text), " ")
	case *model.FeeSummary:
		return c.Structure.Label() + ", " + strconv.Itoa(len(c.Options)) + " option(s), " +
			format.Money(fee.BlockDisplayTotal(*c), c.Currency)
	case *model.Files:
		return c.Title + " (" + strconv.Itoa(len(c.Files)) + " file(s))"
	default:
		return ""
	}
}
