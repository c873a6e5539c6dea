// Package richtext cleans the HTML payloads of rich-text blocks and turns them
// into markdown or plain text for terminal output.
package richtext

import (
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func ugc() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()
	})
	return policy
}

// Sanitize strips scripts, event handlers and other unsafe markup from
// user-supplied HTML. Formatting tags, links and images survive.
func Sanitize(src string) string {
	return ugc().Sanitize(src)
}

// IsBlank reports whether src has no visible text.
func IsBlank(src string) bool {
	return strings.TrimSpace(PlainText(src)) == ""
}

// ToMarkdown converts block HTML to markdown.
func ToMarkdown(src string) string {
	return convert(src, false)
}

// PlainText converts block HTML to text: markup is dropped, paragraphs are
// separated by blank lines and list items keep their bullets.
func PlainText(src string) string {
	return convert(src, true)
}

// Excerpt is PlainText collapsed onto one line.
func Excerpt(src string) string {
	return strings.Join(strings.Fields(PlainText(src)), " ")
}

type mdBlock struct {
	text string
	item bool
}

type listState struct {
	ordered bool
	n       int
}

type converter struct {
	plain  bool
	blocks []mdBlock
	line   strings.Builder
	prefix string
	item   bool
	lists  []listState
	quote  int
	pre    bool
	hrefs  []string
}

func convert(src string, plain bool) string {
	c := &converter{plain: plain}
	z := html.NewTokenizer(strings.NewReader(src))
	for {
		switch z.Next() {
		case html.ErrorToken:
			c.flush()
			return c.join()
		case html.TextToken:
			c.text(string(z.Text()))
		case html.StartTagToken:
			c.open(z.Token())
		case html.SelfClosingTagToken:
			tok := z.Token()
			c.open(tok)
			c.close(tok.DataAtom)
		case html.EndTagToken:
			c.close(z.Token().DataAtom)
		}
	}
}

func (c *converter) mark(s string) {
	if !c.plain {
		c.line.WriteString(s)
	}
}

func (c *converter) open(tok html.Token) {
	switch tok.DataAtom {
	case atom.P, atom.Div, atom.Section, atom.Article:
		c.flush()
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		c.flush()
		if !c.plain {
			level := int(tok.Data[1] - '0')
			c.prefix = strings.Repeat("#", level) + " "
		}
	case atom.Ul, atom.Ol:
		c.flush()
		c.lists = append(c.lists, listState{ordered: tok.DataAtom == atom.Ol})
	case atom.Li:
		c.flush()
		c.item = true
		bullet := "- "
		if n := len(c.lists); n > 0 {
			top := &c.lists[n-1]
			top.n++
			if top.ordered {
				bullet = strconv.Itoa(top.n) + ". "
			}
			bullet = strings.Repeat("  ", n-1) + bullet
		}
		c.prefix = bullet
	case atom.Blockquote:
		c.flush()
		c.quote++
	case atom.Pre:
		c.flush()
		c.pre = true
		c.mark("```\n")
	case atom.Hr:
		c.flush()
		c.blocks = append(c.blocks, mdBlock{text: "---"})
	case atom.Br:
		c.line.WriteString("\n")
	case atom.Strong, atom.B:
		c.mark("**")
	case atom.Em, atom.I:
		c.mark("_")
	case atom.S, atom.Del:
		c.mark("~~")
	case atom.Code:
		if !c.pre {
			c.mark("`")
		}
	case atom.A:
		c.hrefs = append(c.hrefs, attr(tok, "href"))
		c.mark("[")
	case atom.Img:
		alt := attr(tok, "alt")
		if c.plain {
			c.line.WriteString(alt)
			return
		}
		c.line.WriteString("![" + alt + "](" + attr(tok, "src") + ")")
	}
}

func (c *converter) close(a atom.Atom) {
	switch a {
	case atom.P, atom.Div, atom.Section, atom.Article:
		c.flush()
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Li:
		c.flush()
		c.prefix = ""
		c.item = false
	case atom.Ul, atom.Ol:
		c.flush()
		if n := len(c.lists); n > 0 {
			c.lists = c.lists[:n-1]
		}
	case atom.Blockquote:
		c.flush()
		if c.quote > 0 {
			c.quote--
		}
	case atom.Pre:
		body := strings.TrimRight(c.line.String(), "\n")
		c.line.Reset()
		c.line.WriteString(body)
		c.mark("\n```")
		c.flush()
		c.pre = false
	case atom.Strong, atom.B:
		c.mark("**")
	case atom.Em, atom.I:
		c.mark("_")
	case atom.S, atom.Del:
		c.mark("~~")
	case atom.Code:
		if !c.pre {
			c.mark("`")
		}
	case atom.A:
		href := ""
		if n := len(c.hrefs); n > 0 {
			href = c.hrefs[n-1]
			c.hrefs = c.hrefs[:n-1]
		}
		if href != "" {
			c.mark("](" + href + ")")
		} else {
			c.mark("]")
		}
	}
}

// text appends s with HTML whitespace rules applied outside <pre>.
func (c *converter) text(s string) {
	if c.pre {
		c.line.WriteString(s)
		return
	}
	space := c.line.Len() == 0 || strings.HasSuffix(c.line.String(), "\n")
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				c.line.WriteByte(' ')
				space = true
			}
		default:
			c.line.WriteRune(r)
			space = false
		}
	}
}

func (c *converter) flush() {
	text := c.line.String()
	if !c.pre {
		lines := strings.Split(text, "\n")
		for i := range lines {
			lines[i] = strings.TrimSpace(lines[i])
		}
		text = strings.Join(lines, "\n")
		text = strings.TrimSpace(text)
	}
	c.line.Reset()
	if text == "" {
		// <li><p>..</p></li> keeps the bullet for the paragraph inside.
		return
	}
	if c.quote > 0 && !c.plain {
		q := strings.Repeat("> ", c.quote)
		text = q + strings.ReplaceAll(text, "\n", "\n"+q)
	}
	c.blocks = append(c.blocks, mdBlock{text: c.prefix + text, item: c.item})
	c.prefix = ""
	c.item = false
}

func (c *converter) join() string {
	var b strings.Builder
	for i, blk := range c.blocks {
		if i > 0 {
			if blk.item && c.blocks[i-1].item {
				b.WriteString("\n")
			} else {
				b.WriteString("\n\n")
			}
		}
		b.WriteString(blk.text)
	}
	return b.String()
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
