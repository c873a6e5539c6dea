package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindRichText            Kind = "rich-text"
	KindTextArea            Kind = "text-area"
	KindFeeSummary          Kind = "fee-summary"
	KindFilesAndAttachments Kind = "files-and-attachments"
	KindScopeOfServices     Kind = "scope-of-services"
	KindDeliverables        Kind = "deliverables"
	KindTermsAndConditions  Kind = "terms-and-conditions"
	KindYourSection         Kind = "your-section"
	KindImageText           Kind = "image-text"
)

var ErrUnknownKind = errors.New("unknown block kind")

// AllKinds lists every block kind in picker order.
func AllKinds() []Kind {
	return []Kind{
		KindRichText,
		KindTextArea,
		KindScopeOfServices,
		KindYourSection,
		KindFilesAndAttachments,
		KindTermsAndConditions,
		KindDeliverables,
		KindFeeSummary,
		KindImageText,
	}
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllKinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// IsRichTextFamily reports whether kind stores a plain HTML payload.
func (k Kind) IsRichTextFamily() bool {
	switch k {
	case KindRichText, KindScopeOfServices, KindDeliverables, KindTermsAndConditions, KindYourSection:
		return true
	default:
		return false
	}
}

// Content is the kind-specific payload of a block.
// The concrete type is fully determined by the owning block's Kind (see Matches).
type Content interface {
	isContent()
}

type RichText struct {
	HTML string `json:"html"`
}

type TextArea struct {
	Text string `json:"text"`
}

type ImageText struct {
	HTML          string `json:"html"`
	ImageURL      string `json:"imageUrl,omitempty"`
	ImageAlt      string `json:"imageAlt,omitempty"`
	ImagePosition string `json:"imagePosition,omitempty"` // left|right
}

func (*RichText) isContent()   {}
func (*TextArea) isContent()   {}
func (*ImageText) isContent()  {}
func (*FeeSummary) isContent() {}
func (*Files) isContent()      {}

// ContentFor returns an empty content value of the concrete type required by kind.
func ContentFor(kind Kind) (Content, error) {
	switch {
	case kind.IsRichTextFamily():
		return &RichText{}, nil
	case kind == KindTextArea:
		return &TextArea{}, nil
	case kind == KindFeeSummary:
		return &FeeSummary{Options: []FeeOption{}}, nil
	case kind == KindFilesAndAttachments:
		return &Files{Files: []FileAttachment{}}, nil
	case kind == KindImageText:
		return &ImageText{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
	}
}

// Matches reports whether c has the concrete type required by kind.
func Matches(kind Kind, c Content) bool {
	if c == nil {
		return false
	}
	switch c.(type) {
	case *RichText:
		return kind.IsRichTextFamily()
	case *TextArea:
		return kind == KindTextArea
	case *FeeSummary:
		return kind == KindFeeSummary
	case *Files:
		return kind == KindFilesAndAttachments
	case *ImageText:
		return kind == KindImageText
	default:
		return false
	}
}

// DecodeContent decodes raw JSON into the content type for kind.
// When strict is set, keys that do not belong to the kind's schema are rejected.
func DecodeContent(kind Kind, raw []byte, strict bool) (Content, error) {
	c, err := ContentFor(kind)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return c, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Style holds optional, kind-agnostic presentation hints.
type Style struct {
	MarginTop    *int  `json:"marginTop,omitempty"`
	MarginBottom *int  `json:"marginBottom,omitempty"`
	FontSize     *int  `json:"fontSize,omitempty"`
	Monospace    *bool `json:"monospace,omitempty"`
	Compact      *bool `json:"compact,omitempty"`
}

func (s Style) IsZero() bool {
	return s.MarginTop == nil && s.MarginBottom == nil && s.FontSize == nil && s.Monospace == nil && s.Compact == nil
}

// Merge returns s with every non-nil field of partial applied on top.
func (s Style) Merge(partial Style) Style {
	if partial.MarginTop != nil {
		s.MarginTop = partial.MarginTop
	}
	if partial.MarginBottom != nil {
		s.MarginBottom = partial.MarginBottom
	}
	if partial.FontSize != nil {
		s.FontSize = partial.FontSize
	}
	if partial.Monospace != nil {
		s.Monospace = partial.Monospace
	}
	if partial.Compact != nil {
		s.Compact = partial.Compact
	}
	return s
}

// Block is one addressable section of a document.
// Position is derived from the owning store's order and is only meaningful on
// values returned by an ordered read.
type Block struct {
	ID       string  `json:"id"`
	Kind     Kind    `json:"kind"`
	Content  Content `json:"content"`
	Style    *Style  `json:"style,omitempty"`
	Position int     `json:"position"`
}

// NewBlock is the input for inserting a block. ID is optional.
type NewBlock struct {
	ID      string
	Kind    Kind
	Content Content
	Style   *Style
}

type wireBlock struct {
	ID       string          `json:"id"`
	Kind     Kind            `json:"kind"`
	Content  json.RawMessage `json:"content"`
	Style    *Style          `json:"style,omitempty"`
	Position int             `json:"position"`

	// Legacy keys written by earlier builds.
	LegacyUUID string `json:"uuid,omitempty"`
	LegacyType Kind   `json:"type,omitempty"`
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var w wireBlock
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.ID == "" {
		w.ID = w.LegacyUUID
	}
	if w.Kind == "" {
		w.Kind = w.LegacyType
	}
	if w.Kind == "" {
		w.Kind = KindRichText
	}
	c, err := DecodeContent(w.Kind, w.Content, false)
	if err != nil {
		return fmt.Errorf("block %s: %w", w.ID, err)
	}
	*b = Block{
		ID:       w.ID,
		Kind:     w.Kind,
		Content:  c,
		Style:    w.Style,
		Position: w.Position,
	}
	return nil
}

// Label returns a short description of the block for listings.
func (b Block) Label() string {
	switch c := b.Content.(type) {
	case *RichText:
		return c.HTML
	case *TextArea:
		return c.Text
	case *ImageText:
		return c.HTML
	case *Files:
		return c.Title
	case *FeeSummary:
		return fmt.Sprintf("%s (%d options)", c.Structure, len(c.Options))
	default:
		return ""
	}
}
