package model

type CurrencyCode string

// CurrencyCodes are the currencies offered by the document settings.
var CurrencyCodes = []CurrencyCode{
	"USD", "EUR", "GBP", "JPY", "AUD", "CAD", "CNY", "INR", "NZD", "CHF",
	"SEK", "NOK", "DKK", "HKD", "SGD", "KRW", "MXN", "BRL", "ZAR",
}

type DocumentConfig struct {
	Currency         CurrencyCode `json:"currency"`
	DefaultStructure FeeStructure `json:"defaultStructure"`
	RequireUpfront   bool         `json:"requireUpfront"`
	UpfrontPercent   float64      `json:"upfrontPercent"`
	ExpirationDate   string       `json:"expirationDate,omitempty"` // YYYY-MM-DD
}

func DefaultDocumentConfig() DocumentConfig {
	return DocumentConfig{
		Currency:         "USD",
		DefaultStructure: StructureSingle,
	}
}

type Party struct {
	Name    string   `json:"name"`
	Email   []string `json:"email"`
	Address []string `json:"address"`
}

type HeaderData struct {
	CompanyLogo  string `json:"companyLogo,omitempty"`
	InvoiceName  string `json:"invoiceName"`
	SentDate     string `json:"sentDate"`
	AcceptedDate string `json:"acceptedDate"`
	From         Party  `json:"from"`
	To           Party  `json:"to"`
}

func DefaultHeaderData() HeaderData {
	return HeaderData{
		InvoiceName: "Invoice",
		From:        Party{Email: []string{}, Address: []string{}},
		To:          Party{Email: []string{}, Address: []string{}},
	}
}

type HeaderStyle struct {
	ThemeName         string  `json:"themeName"`
	BackgroundImage   *string `json:"backgroundImage"`
	TitleColor        string  `json:"titleColor"`
	TextColor         string  `json:"textColor"`
	BackgroundColor   string  `json:"backgroundColor"`
	BottomBorderColor string  `json:"bottomBorderColor"`
	BottomBorderWidth int     `json:"bottomBorderWidth"`
}

// Snapshot is the unit of persistence: the complete state of one document.
type Snapshot struct {
	HeaderData     HeaderData     `json:"headerData"`
	HeaderStyle    HeaderStyle    `json:"headerStyle"`
	DocumentBlocks []Block        `json:"documentBlocks"`
	DocumentConfig DocumentConfig `json:"documentConfig"`
	SavedAt        string         `json:"savedAt"`
	Version        int            `json:"version"`

	// DocumentID identifies the workspace document across saves.
	DocumentID string `json:"documentId,omitempty"`
}
