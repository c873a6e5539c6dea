package format

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// Money formats amount in the given ISO currency, e.g. "$1,234.50" or
// "€99.00". Rounding happens here only; stored amounts stay unrounded.
// Unknown codes fall back to "1234.50 XYZ".
func Money(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%.2f %s", amount, code)
	}
	scale, _ := currency.Standard.Rounding(unit)
	sym := printer.Sprint(currency.NarrowSymbol(unit))
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + sym + printer.Sprint(number.Decimal(amount, number.Scale(scale)))
}

// Percent formats p (0..100) without trailing zeros: 8.5 => "8.5%".
func Percent(p float64) string {
	return humanize.Ftoa(p) + "%"
}

// Bytes formats a size the way attachment lists show it (IEC units: "1.5 KiB").
func Bytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// Qty formats a line-item quantity without trailing zeros.
func Qty(q float64) string {
	return humanize.Ftoa(q)
}
