package model

import (
	"errors"
	"fmt"
	"strings"
)

// FeeStructure is the selection policy for the options of a fee-summary block.
type FeeStructure string

const (
	StructureSingle      FeeStructure = "single"
	StructurePackages    FeeStructure = "packages"
	StructureMultiSelect FeeStructure = "multi-select"
)

var ErrInvalidStructure = errors.New("invalid fee structure")

func ParseFeeStructure(s string) (FeeStructure, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single", "single-option":
		return StructureSingle, nil
	case "packages", "package":
		return StructurePackages, nil
	case "multi-select", "multiselect", "multi":
		return StructureMultiSelect, nil
	default:
		return "", fmt.Errorf("%w: %q (expected single|packages|multi-select)", ErrInvalidStructure, s)
	}
}

func (s FeeStructure) Label() string {
	switch s {
	case StructurePackages:
		return "Packages"
	case StructureMultiSelect:
		return "Multi-select"
	default:
		return "Single Option"
	}
}

type FeeLineItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Qty         float64 `json:"qty"`
	UnitPrice   float64 `json:"unitPrice"`
}

type FeeOption struct {
	ID       string        `json:"id"`
	Summary  string        `json:"summary"`
	Items    []FeeLineItem `json:"items"`
	TaxRate  float64       `json:"taxRate"`
	Currency string        `json:"currency"`

	// Selected is tri-state: nil means "never set", which only matters under
	// the single structure where selection is ignored.
	Selected *bool `json:"selected,omitempty"`
}

func (o FeeOption) IsSelected() bool {
	return o.Selected != nil && *o.Selected
}

type FeeSummary struct {
	Structure FeeStructure `json:"structure"`
	Options   []FeeOption  `json:"options"`
	Currency  string       `json:"currency"`
	TaxRate   float64      `json:"taxRate"`
}

func Bool(v bool) *bool { return &v }
