package document

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/currency"

	"proposal-cli/internal/model"
)

var (
	ErrInvalidCurrency = errors.New("invalid currency")
	ErrInvalidDate     = errors.New("invalid date (expected YYYY-MM-DD)")
	ErrUnknownField    = errors.New("unknown header field")
	ErrUnknownTheme    = errors.New("unknown theme")
	ErrInvalidParty    = errors.New("invalid party (expected from|to)")
)

// Document is the explicit handle for one proposal: its blocks plus the
// document-level configuration and header. Config and header changes notify
// the same listeners as block changes.
type Document struct {
	ID     string
	Blocks *Store

	mu          sync.RWMutex
	config      model.DocumentConfig
	header      model.HeaderData
	headerStyle model.HeaderStyle
}

func New() *Document {
	return &Document{
		ID:          uuid.NewString(),
		Blocks:      NewStore(),
		config:      model.DefaultDocumentConfig(),
		header:      model.DefaultHeaderData(),
		headerStyle: DefaultHeaderStyle(),
	}
}

// Subscribe registers fn for every effective change to the document.
func (d *Document) Subscribe(fn func()) func() {
	return d.Blocks.Subscribe(fn)
}

func (d *Document) Config() model.DocumentConfig {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.config
}

func (d *Document) Header() model.HeaderData {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return cloneHeader(d.header)
}

func (d *Document) HeaderStyle() model.HeaderStyle {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.headerStyle
}

func (d *Document) update(fn func()) {
	d.mu.Lock()
	fn()
	d.mu.Unlock()
	d.Blocks.notify()
}

// ParseCurrency validates code against the offered currencies.
func ParseCurrency(code string) (model.CurrencyCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	for _, c := range model.CurrencyCodes {
		if string(c) == unit.String() {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not offered", ErrInvalidCurrency, code)
}

func (d *Document) SetCurrency(code string) error {
	c, err := ParseCurrency(code)
	if err != nil {
		return err
	}
	d.update(func() { d.config.Currency = c })
	return nil
}

// SetDefaultStructure only affects fee summaries created afterwards. Existing
// blocks change through MigrateAllFeeBlocks.
func (d *Document) SetDefaultStructure(s model.FeeStructure) {
	d.update(func() { d.config.DefaultStructure = s })
}

func (d *Document) SetRequireUpfront(v bool) {
	d.update(func() { d.config.RequireUpfront = v })
}

// SetUpfrontPercent clamps p to [0, 100].
func (d *Document) SetUpfrontPercent(p float64) {
	p = max(0, min(100, p))
	d.update(func() { d.config.UpfrontPercent = p })
}

// ValidateDate accepts YYYY-MM-DD or an empty string.
func ValidateDate(date string) error {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}

// SetExpirationDate accepts YYYY-MM-DD; an empty string clears the date.
func (d *Document) SetExpirationDate(date string) error {
	if err := ValidateDate(date); err != nil {
		return err
	}
	date = strings.TrimSpace(date)
	d.update(func() { d.config.ExpirationDate = date })
	return nil
}

// HeaderFields are the scalar header fields accepted by SetHeaderField.
var HeaderFields = []string{"invoiceName", "sentDate", "acceptedDate", "companyLogo"}

func headerSetter(field, value string) (func(h *model.HeaderData), error) {
	switch strings.ToLower(field) {
	case "invoicename", "invoice-name", "name", "title":
		return func(h *model.HeaderData) { h.InvoiceName = value }, nil
	case "sentdate", "sent-date", "sent":
		return func(h *model.HeaderData) { h.SentDate = value }, nil
	case "accepteddate", "accepted-date", "accepted":
		return func(h *model.HeaderData) { h.AcceptedDate = value }, nil
	case "companylogo", "company-logo", "logo":
		return func(h *model.HeaderData) { h.CompanyLogo = value }, nil
	default:
		return nil, fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownField, field, strings.Join(HeaderFields, ", "))
	}
}

// ValidateHeaderField reports whether SetHeaderField accepts field.
func ValidateHeaderField(field string) error {
	_, err := headerSetter(field, "")
	return err
}

func (d *Document) SetHeaderField(field, value string) error {
	apply, err := headerSetter(field, value)
	if err != nil {
		return err
	}
	d.update(func() { apply(&d.header) })
	return nil
}

type PartyRole string

const (
	PartyFrom PartyRole = "from"
	PartyTo   PartyRole = "to"
)

func ParsePartyRole(s string) (PartyRole, error) {
	switch PartyRole(strings.ToLower(strings.TrimSpace(s))) {
	case PartyFrom:
		return PartyFrom, nil
	case PartyTo:
		return PartyTo, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidParty, s)
	}
}

func (d *Document) party(who PartyRole) *model.Party {
	if who == PartyTo {
		return &d.header.To
	}
	return &d.header.From
}

func (d *Document) SetPartyName(who PartyRole, name string) {
	d.update(func() { d.party(who).Name = name })
}

// SetEmail writes index i, padding with empty entries when i is past the end.
func (d *Document) SetEmail(who PartyRole, i int, value string) {
	d.update(func() {
		p := d.party(who)
		p.Email = setLine(p.Email, i, value)
	})
}

func (d *Document) AddEmail(who PartyRole) {
	d.update(func() {
		p := d.party(who)
		p.Email = append(p.Email, "")
	})
}

func (d *Document) RemoveEmail(who PartyRole, i int) {
	d.update(func() {
		p := d.party(who)
		p.Email = removeLine(p.Email, i)
	})
}

func (d *Document) SetAddressLine(who PartyRole, i int, value string) {
	d.update(func() {
		p := d.party(who)
		p.Address = setLine(p.Address, i, value)
	})
}

func (d *Document) AddAddressLine(who PartyRole) {
	d.update(func() {
		p := d.party(who)
		p.Address = append(p.Address, "")
	})
}

func (d *Document) RemoveAddressLine(who PartyRole, i int) {
	d.update(func() {
		p := d.party(who)
		p.Address = removeLine(p.Address, i)
	})
}

func setLine(lines []string, i int, value string) []string {
	if i < 0 {
		return lines
	}
	for len(lines) <= i {
		lines = append(lines, "")
	}
	lines[i] = value
	return lines
}

func removeLine(lines []string, i int) []string {
	if i < 0 || i >= len(lines) {
		return lines
	}
	out := make([]string, 0, len(lines)-1)
	out = append(out, lines[:i]...)
	return append(out, lines[i+1:]...)
}

// Themes are the header colour presets.
var Themes = map[string]model.HeaderStyle{
	"pastel": {
		ThemeName:         "pastel",
		TitleColor:        "#1f2937",
		TextColor:         "#374151",
		BackgroundColor:   "#f3e8ff",
		BottomBorderColor: "#c4b5fd",
		BottomBorderWidth: 2,
	},
	"dark": {
		ThemeName:         "dark",
		TitleColor:        "#f9fafb",
		TextColor:         "#e5e7eb",
		BackgroundColor:   "#111827",
		BottomBorderColor: "#1f2937",
		BottomBorderWidth: 2,
	},
}

func ThemeNames() []string {
	out := make([]string, 0, len(Themes))
	for name := range Themes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func DefaultHeaderStyle() model.HeaderStyle {
	return Themes["pastel"]
}

func lookupTheme(name string) (model.HeaderStyle, error) {
	theme, ok := Themes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return model.HeaderStyle{}, fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownTheme, name, strings.Join(ThemeNames(), ", "))
	}
	return theme, nil
}

// ValidateTheme reports whether ApplyTheme accepts name.
func ValidateTheme(name string) error {
	_, err := lookupTheme(name)
	return err
}

// ApplyTheme replaces the header colours with the named preset and keeps the
// background image.
func (d *Document) ApplyTheme(name string) error {
	theme, err := lookupTheme(name)
	if err != nil {
		return err
	}
	d.update(func() {
		theme.BackgroundImage = d.headerStyle.BackgroundImage
		d.headerStyle = theme
	})
	return nil
}

func (d *Document) SetBackgroundImage(url string) {
	d.update(func() {
		if url == "" {
			d.headerStyle.BackgroundImage = nil
			return
		}
		d.headerStyle.BackgroundImage = &url
	})
}

// Snapshot captures the whole document. SavedAt and Version are stamped by
// the persistence layer.
func (d *Document) Snapshot() model.Snapshot {
	d.mu.RLock()
	snap := model.Snapshot{
		HeaderData:     cloneHeader(d.header),
		HeaderStyle:    d.headerStyle,
		DocumentConfig: d.config,
		DocumentID:     d.ID,
	}
	d.mu.RUnlock()
	snap.DocumentBlocks = d.Blocks.Ordered()
	return snap
}

// FromSnapshot builds a document from a persisted snapshot. Blocks keep the
// snapshot order; their stored positions are ignored.
func FromSnapshot(snap model.Snapshot) (*Document, error) {
	d := New()
	if snap.DocumentID != "" {
		d.ID = snap.DocumentID
	}
	d.header = cloneHeader(snap.HeaderData)
	d.headerStyle = snap.HeaderStyle
	d.config = snap.DocumentConfig
	if d.config.Currency == "" {
		d.config.Currency = model.DefaultDocumentConfig().Currency
	}
	if d.config.DefaultStructure == "" {
		d.config.DefaultStructure = model.StructureSingle
	}
	if _, err := d.Blocks.ReplaceAll(snap.DocumentBlocks); err != nil {
		return nil, err
	}
	return d, nil
}

func cloneHeader(h model.HeaderData) model.HeaderData {
	h.From = cloneParty(h.From)
	h.To = cloneParty(h.To)
	return h
}

func cloneParty(p model.Party) model.Party {
	p.Email = append([]string{}, p.Email...)
	p.Address = append([]string{}, p.Address...)
	return p
}
