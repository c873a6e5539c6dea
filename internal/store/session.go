package store

import (
	"context"

	"go.uber.org/zap"

	"proposal-cli/internal/document"
)

// LoadDocument restores the document from the persisted snapshot. When there is
// no usable snapshot it returns a fresh document with defaults and restored=false.
func LoadDocument(ctx context.Context, p *Persister) (doc *document.Document, restored bool) {
	snap := p.Load(ctx)
	if snap == nil {
		return document.New(), false
	}
	doc, err := document.FromSnapshot(*snap)
	if err != nil {
		p.log.Warn("snapshot could not be restored; using defaults", zap.Error(err))
		return document.New(), false
	}
	return doc, true
}
