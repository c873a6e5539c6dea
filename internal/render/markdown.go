// Package render turns a document into markdown and terminal previews.
package render

import (
	"bytes"
	"strconv"
	"strings"

	"proposal-cli/internal/document"
	"proposal-cli/internal/fee"
	"proposal-cli/internal/format"
	"proposal-cli/internal/model"
	"proposal-cli/internal/richtext"
)

type Options struct {
	// SkipHeader omits the title and party block; the terminal preview draws
	// its own banner instead.
	SkipHeader bool
}

// Markdown renders the whole document in display order.
func Markdown(d *document.Document, opt Options) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	cfg := d.Config()
	if !opt.SkipHeader {
		h := d.Header()
		title := strings.TrimSpace(h.InvoiceName)
		if title == "" {
			title = "Untitled"
		}
		writeLn("# " + title)
		writeLn("")
		for _, line := range headerLines(h, cfg) {
			writeLn("- " + line)
		}
		writeLn("")
	}

	for _, b := range d.Blocks.Ordered() {
		body := strings.TrimSpace(Block(b, cfg))
		if body == "" {
			continue
		}
		writeLn(body)
		writeLn("")
	}
	return strings.TrimRight(buf.String(), "\n") + "\n"
}

func headerLines(h model.HeaderData, cfg model.DocumentConfig) []string {
	var out []string
	if s := partyLine(h.From); s != "" {
		out = append(out, "From: "+s)
	}
	if s := partyLine(h.To); s != "" {
		out = append(out, "To: "+s)
	}
	if h.SentDate != "" {
		out = append(out, "Sent: "+h.SentDate)
	}
	if h.AcceptedDate != "" {
		out = append(out, "Accepted: "+h.AcceptedDate)
	}
	if cfg.ExpirationDate != "" {
		out = append(out, "Expires: "+cfg.ExpirationDate)
	}
	out = append(out, "Currency: "+string(cfg.Currency))
	return out
}

func partyLine(p model.Party) string {
	parts := make([]string, 0, 1+len(p.Email)+len(p.Address))
	for _, s := range append(append([]string{p.Name}, p.Email...), p.Address...) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// Block renders a single block as markdown.
func Block(b model.Block, cfg model.DocumentConfig) string {
	switch c := b.Content.(type) {
	case *model.RichText:
		return richtext.ToMarkdown(c.HTML)
	case *model.TextArea:
		return c.Text
	case *model.ImageText:
		return imageText(c)
	case *model.Files:
		return files(c)
	case *model.FeeSummary:
		return feeSummary(c, cfg)
	default:
		return ""
	}
}

func imageText(c *model.ImageText) string {
	text := richtext.ToMarkdown(c.HTML)
	if c.ImageURL == "" {
		return text
	}
	img := "![" + c.ImageAlt + "](" + c.ImageURL + ")"
	if c.ImagePosition == "right" {
		return text + "\n\n" + img
	}
	return img + "\n\n" + text
}

func files(c *model.Files) string {
	var b strings.Builder
	b.WriteString("## " + c.Title + "\n")
	if c.ShowDescription && c.Description != nil && strings.TrimSpace(*c.Description) != "" {
		b.WriteString("\n" + strings.TrimSpace(*c.Description) + "\n")
	}
	if len(c.Files) == 0 {
		b.WriteString("\n_No files attached._\n")
		return b.String()
	}
	b.WriteString("\n")
	for _, f := range c.Files {
		name := f.Name
		if f.URL != "" {
			name = "[" + f.Name + "](" + f.URL + ")"
		}
		meta := []string{format.Bytes(f.Size)}
		if f.Type != "" {
			meta = append(meta, f.Type)
		}
		if f.Status != "" && f.Status != model.FileStatusUploaded {
			meta = append(meta, string(f.Status))
		}
		b.WriteString("- " + name + " (" + strings.Join(meta, ", ") + ")\n")
	}
	return b.String()
}

func feeSummary(c *model.FeeSummary, cfg model.DocumentConfig) string {
	totals := fee.ComputeTotals(*c)
	money := func(v float64, code string) string {
		if code == "" {
			code = c.Currency
		}
		if code == "" {
			code = string(cfg.Currency)
		}
		return format.Money(v, code)
	}

	var b strings.Builder
	b.WriteString("## Fees (" + c.Structure.Label() + ")\n")
	for i, o := range c.Options {
		title := "Option " + strconv.Itoa(i+1)
		if c.Structure != model.StructureSingle && totals.Options[i].Selected {
			title += " (selected)"
		}
		if c.Structure == model.StructureSingle && i > 0 {
			title += " (not counted)"
		}
		b.WriteString("\n### " + title + "\n\n")
		if s := richtext.ToMarkdown(o.Summary); s != "" {
			b.WriteString(s + "\n\n")
		}
		b.WriteString("| Item | Qty | Unit price | Amount |\n")
		b.WriteString("| --- | ---: | ---: | ---: |\n")
		for _, it := range o.Items {
			name := strings.ReplaceAll(it.Name, "|", `\|`)
			b.WriteString("| " + name + " | " + format.Qty(it.Qty) + " | " +
				money(it.UnitPrice, o.Currency) + " | " + money(fee.LineTotal(it), o.Currency) + " |\n")
		}
		b.WriteString("\n")
		b.WriteString("Subtotal: " + money(totals.Options[i].Subtotal, o.Currency) + "  \n")
		b.WriteString("Tax (" + format.Percent(o.TaxRate) + "): " + money(totals.Options[i].Tax, o.Currency) + "  \n")
		b.WriteString("Total: **" + money(totals.Options[i].Total, o.Currency) + "**\n")
	}
	b.WriteString("\n**Amount due: " + money(totals.Display, "") + "**\n")
	if up := fee.Upfront(totals.Display, cfg); up > 0 {
		b.WriteString("\nUpfront (" + format.Percent(cfg.UpfrontPercent) + "): " + money(up, "") + "\n")
	}
	return b.String()
}
