package mutate

import (
	"errors"
	"strings"

	"proposal-cli/internal/document"
	"proposal-cli/internal/model"
	"proposal-cli/internal/richtext"
)

var ErrPlacement = errors.New("use only one of --index, --after, --prepend")

// Result is what every block mutation reports back to its caller.
type Result struct {
	Block   model.Block
	Changed bool
}

// Resolve looks up a block by full id or unique id prefix.
func Resolve(s *document.Store, ref string) (model.Block, error) {
	ref = strings.TrimSpace(ref)
	id, ok := s.ResolveID(ref)
	if !ok {
		return model.Block{}, NotFoundError{Kind: "block", ID: ref}
	}
	b, ok := s.Get(id)
	if !ok {
		return model.Block{}, NotFoundError{Kind: "block", ID: ref}
	}
	return b, nil
}

func reload(s *document.Store, id string, changed bool) (Result, error) {
	b, ok := s.Get(id)
	if !ok {
		return Result{}, NotFoundError{Kind: "block", ID: id}
	}
	return Result{Block: b, Changed: changed}, nil
}

// Placement says where AddBlock puts the new block. The zero value appends.
type Placement struct {
	Index   *int
	After   string
	Prepend bool
}

// AddBlock creates a block of kind with factory defaults. Unlike
// Store.InsertAfter, an After reference that does not resolve is an error.
func AddBlock(d *document.Document, kind string, at Placement) (Result, error) {
	n := 0
	if at.Index != nil {
		n++
	}
	if strings.TrimSpace(at.After) != "" {
		n++
	}
	if at.Prepend {
		n++
	}
	if n > 1 {
		return Result{}, ErrPlacement
	}

	k, err := model.ParseKind(kind)
	if err != nil {
		return Result{}, err
	}
	nb, err := document.NewBlock(k, d.Config())
	if err != nil {
		return Result{}, err
	}

	var id string
	switch {
	case at.Index != nil:
		id, err = d.Blocks.AddBlock(nb, document.AtIndex(*at.Index))
	case at.Prepend:
		id, err = d.Blocks.AddBlock(nb, document.AtIndex(0))
	case strings.TrimSpace(at.After) != "":
		target, rerr := Resolve(d.Blocks, at.After)
		if rerr != nil {
			return Result{}, rerr
		}
		id, err = d.Blocks.InsertAfter(target.ID, nb)
	default:
		id, err = d.Blocks.AddBlock(nb)
	}
	if err != nil {
		return Result{}, err
	}
	return reload(d.Blocks, id, true)
}

func MoveBlock(s *document.Store, ref string, index int) (Result, error) {
	b, err := Resolve(s, ref)
	if err != nil {
		return Result{}, err
	}
	if err := s.MoveBlock(b.ID, index); err != nil {
		return Result{}, err
	}
	return reload(s, b.ID, s.IndexOf(b.ID) != b.Position)
}

func RemoveBlock(s *document.Store, ref string) (Result, error) {
	b, err := Resolve(s, ref)
	if err != nil {
		return Result{}, err
	}
	if err := s.RemoveBlock(b.ID); err != nil {
		return Result{}, err
	}
	return Result{Block: b, Changed: true}, nil
}

// SetHTML replaces the HTML of a rich-text family or image-text block. The
// input is sanitized first.
func SetHTML(s *document.Store, ref, html string) (Result, error) {
	b, err := Resolve(s, ref)
	if err != nil {
		return Result{}, err
	}
	clean := richtext.Sanitize(html)
	changed := false
	err = s.MutateContent(b.ID, func(draft model.Content) error {
		switch c := draft.(type) {
		case *model.RichText:
			changed = c.HTML != clean
			c.HTML = clean
		case *model.ImageText:
			changed = c.HTML != clean
			c.HTML = clean
		default:
			return WrongKindError{ID: b.ID, Got: b.Kind, Want: "a rich text or image-text block"}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return reload(s, b.ID, changed)
}

func SetText(s *document.Store, ref, text string) (Result, error) {
	b, err := Resolve(s, ref)
	if err != nil {
		return Result{}, err
	}
	if b.Kind != model.KindTextArea {
		return Result{}, WrongKindError{ID: b.ID, Got: b.Kind, Want: string(model.KindTextArea)}
	}
	changed := false
	err = document.Mutate(s, b.ID, func(c *model.TextArea) error {
		changed = c.Text != text
		c.Text = text
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return reload(s, b.ID, changed)
}

// Patch merges patch into the block content. String "html" values are
// sanitized before they reach the store.
func Patch(s *document.Store, ref string, patch map[string]any) (Result, error) {
	b, err := Resolve(s, ref)
	if err != nil {
		return Result{}, err
	}
	if h, ok := patch["html"].(string); ok {
		patch["html"] = richtext.Sanitize(h)
	}
	if err := s.PatchContent(b.ID, patch); err != nil {
		return Result{}, err
	}
	return reload(s, b.ID, len(patch) > 0)
}

func Style(s *document.Store, ref string, partial model.Style) (Result, error) {
	b, err := Resolve(s, ref)
	if err != nil {
		return Result{}, err
	}
	if partial.IsZero() {
		return Result{Block: b}, nil
	}
	if err := s.UpdateStyle(b.ID, partial); err != nil {
		return Result{}, err
	}
	return reload(s, b.ID, true)
}

// SetImage updates the image fields of an image-text block. Empty values
// leave a field unchanged.
func SetImage(s *document.Store, ref, url, alt, position string) (Result, error) {
	b, err := Resolve(s, ref)
	if err != nil {
		return Result{}, err
	}
	if b.Kind != model.KindImageText {
		return Result{}, WrongKindError{ID: b.ID, Got: b.Kind, Want: string(model.KindImageText)}
	}
	switch position {
	case "", "left", "right":
	default:
		return Result{}, errors.New("image position must be left or right")
	}
	err = document.Mutate(s, b.ID, func(c *model.ImageText) error {
		if url != "" {
			c.ImageURL = url
		}
		if alt != "" {
			c.ImageAlt = alt
		}
		if position != "" {
			c.ImagePosition = position
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return reload(s, b.ID, true)
}
