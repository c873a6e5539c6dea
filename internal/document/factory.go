package document

import (
	"github.com/sahilm/fuzzy"

	"proposal-cli/internal/fee"
	"proposal-cli/internal/model"
)

// KindLabels are the picker names of each block kind.
var KindLabels = map[model.Kind]string{
	model.KindRichText:            "Rich Text",
	model.KindTextArea:            "Text Area",
	model.KindScopeOfServices:     "Scope of Services",
	model.KindYourSection:         "Your Section",
	model.KindFilesAndAttachments: "Files & Attachments",
	model.KindTermsAndConditions:  "Terms & Conditions",
	model.KindDeliverables:        "Deliverables",
	model.KindFeeSummary:          "Fee Summary",
	model.KindImageText:           "Image & Text",
}

func Label(k model.Kind) string {
	if l, ok := KindLabels[k]; ok {
		return l
	}
	return string(k)
}

// Kinds returns every kind in picker order.
func Kinds() []model.Kind {
	return model.AllKinds()
}

type kindSource []model.Kind

func (k kindSource) String(i int) string { return Label(k[i]) + " " + string(k[i]) }
func (k kindSource) Len() int            { return len(k) }

// FilterKinds fuzzy-matches query against kind labels and names, best match
// first. An empty query returns every kind in picker order.
func FilterKinds(query string) []model.Kind {
	all := Kinds()
	if query == "" {
		return all
	}
	matches := fuzzy.FindFrom(query, kindSource(all))
	out := make([]model.Kind, 0, len(matches))
	for _, m := range matches {
		out = append(out, all[m.Index])
	}
	return out
}

// NewBlock returns the default content for a freshly inserted block of kind.
// Fee summaries copy the document's currency and default structure at creation
// time; later config changes do not reach them.
func NewBlock(kind model.Kind, cfg model.DocumentConfig) (model.NewBlock, error) {
	if _, err := model.ContentFor(kind); err != nil {
		return model.NewBlock{}, err
	}
	nb := model.NewBlock{Kind: kind}
	switch kind {
	case model.KindRichText:
		nb.Content = &model.RichText{HTML: "<p>New rich text block</p>"}
	case model.KindTextArea:
		nb.Content = &model.TextArea{Text: "New notes"}
	case model.KindScopeOfServices:
		nb.Content = &model.RichText{HTML: "<h2>Scope of Services</h2><p>Describe the work included in this proposal.</p>"}
	case model.KindDeliverables:
		nb.Content = &model.RichText{HTML: "<h2>Deliverables</h2><ul><li>First deliverable</li></ul>"}
	case model.KindTermsAndConditions:
		nb.Content = &model.RichText{HTML: "<h2>Terms &amp; Conditions</h2><p>Payment is due within 15 days of acceptance.</p>"}
	case model.KindYourSection:
		nb.Content = &model.RichText{HTML: "<h2>Your Section</h2><p>Add anything else the client should know.</p>"}
	case model.KindImageText:
		nb.Content = &model.ImageText{HTML: "<p>Describe the image.</p>", ImagePosition: "left"}
	case model.KindFilesAndAttachments:
		nb.Content = &model.Files{Title: "Files & Attachments", Files: []model.FileAttachment{}}
	case model.KindFeeSummary:
		nb.Content = newFeeSummary(cfg)
		nb.Style = &model.Style{Compact: model.Bool(false)}
	}
	return nb, nil
}

func newFeeSummary(cfg model.DocumentConfig) *model.FeeSummary {
	structure := cfg.DefaultStructure
	if structure == "" {
		structure = model.StructureSingle
	}
	c := &model.FeeSummary{
		Structure: structure,
		Currency:  string(cfg.Currency),
		Options:   []model.FeeOption{},
	}
	opt := fee.NewOption(c)
	opt.Summary = "<p>Summary of fees</p>"
	opt.Items = append(opt.Items, fee.NewLineItem())
	if structure != model.StructureSingle {
		opt.Selected = model.Bool(true)
	}
	fee.AddOption(c, opt)
	return c
}
