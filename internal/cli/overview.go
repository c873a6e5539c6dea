package cli

import (
	"proposal-cli/internal/document"
	"proposal-cli/internal/format"
)

type overviewView struct {
	document.Overview
	AmountText  string `json:"amountText"`
	UpfrontText string `json:"upfrontText,omitempty"`
}

func overviewOf(s *session) overviewView {
	ov := document.BuildOverview(s.doc)
	out := overviewView{Overview: ov, AmountText: format.Money(ov.Amount, ov.Currency)}
	if ov.Upfront > 0 {
		out.UpfrontText = format.Money(ov.Upfront, ov.Currency)
	}
	return out
}
