package render

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"proposal-cli/internal/document"
	"proposal-cli/internal/model"
)

type PreviewOptions struct {
	Width int
	// Style is a glamour standard style (dark, light, notty, ascii) or "auto".
	Style string
	// Profile overrides the detected colour profile; zero means detect from env.
	Profile *termenv.Profile
}

var (
	rendererMu sync.Mutex
	// glamour renderers are costly to build; keep one per style and width.
	renderers = map[string]*glamour.TermRenderer{}
)

// Preview renders the document for a terminal: a banner drawn with the
// header style colours followed by the body rendered through glamour.
func Preview(d *document.Document, opt PreviewOptions) string {
	width := opt.Width
	if width < 20 {
		width = 20
	}
	profile := termenv.EnvColorProfile()
	if opt.Profile != nil {
		profile = *opt.Profile
	}
	style := ResolveStyle(opt.Style, profile)

	banner := Banner(d.Header(), d.HeaderStyle(), d.Config(), width, profile)
	body := Markdown(d, Options{SkipHeader: true})
	return banner + "\n" + renderMarkdown(body, style, width)
}

// ResolveStyle maps "auto" to a concrete glamour style without querying the
// terminal, which can block.
func ResolveStyle(pref string, profile termenv.Profile) string {
	switch p := strings.ToLower(strings.TrimSpace(pref)); p {
	case "dark", "light", "notty", "ascii", "pink", "dracula", "tokyo-night":
		return p
	}
	if profile == termenv.Ascii {
		return "notty"
	}
	// COLORFGBG is "fg;bg"; xterm colours 7-15 are light.
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(parts[len(parts)-1]); err == nil && bg >= 7 {
			return "light"
		}
	}
	return "dark"
}

func renderMarkdown(md string, style string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	key := style + ":" + strconv.Itoa(width)

	rendererMu.Lock()
	r := renderers[key]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			rendererMu.Unlock()
			return md
		}
		renderers[key] = rr
		r = rr
	}
	rendererMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// Banner draws the document header: title, parties and dates on the header
// background with a bottom border in the theme's border colour.
func Banner(h model.HeaderData, hs model.HeaderStyle, cfg model.DocumentConfig, width int, profile termenv.Profile) string {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(profile)

	title := strings.TrimSpace(h.InvoiceName)
	if title == "" {
		title = "Untitled"
	}
	inner := width - 4
	lines := []string{
		r.NewStyle().Bold(true).Foreground(lipgloss.Color(hs.TitleColor)).Render(Truncate(title, inner)),
	}
	text := r.NewStyle().Foreground(lipgloss.Color(hs.TextColor))
	for _, l := range headerLines(h, cfg) {
		lines = append(lines, text.Render(Truncate(l, inner)))
	}

	box := r.NewStyle().
		Width(width).
		Padding(0, 1).
		Background(lipgloss.Color(hs.BackgroundColor))
	if hs.BottomBorderWidth > 0 {
		box = box.
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(lipgloss.Color(hs.BottomBorderColor))
	}
	return box.Render(strings.Join(lines, "\n"))
}

// Truncate shortens s to width cells, keeping ANSI sequences intact.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}
