package cart

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var symbols = map[string]string{
	"IDR": "Rp ",
	"USD": "$",
	"EUR": "€",
	"SGD": "S$",
	"MYR": "RM ",
}

// Formatter renders amounts in a currency for a locale, e.g. "Rp 20.000"
// for IDR in id-ID.
type Formatter struct {
	code       string
	symbol     string
	scale      int
	printer    *message.Printer
	decimalSep string
	groupSep   string
}

func NewFormatter(currencyCode, locale string) (*Formatter, error) {
	unit, err := currency.ParseISO(strings.ToUpper(currencyCode))
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", currencyCode, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}

	code := unit.String()
	symbol, ok := symbols[code]
	if !ok {
		symbol = code + " "
	}
	scale, _ := currency.Standard.Rounding(unit)

	printer := message.NewPrinter(tag)
	frac := printer.Sprint(number.Decimal(1.5, number.Scale(1)))
	group := printer.Sprint(number.Decimal(1000))

	return &Formatter{
		code:       code,
		symbol:     symbol,
		scale:      scale,
		printer:    printer,
		decimalSep: strings.TrimSuffix(strings.TrimPrefix(frac, "1"), "5"),
		groupSep:   strings.TrimSuffix(strings.TrimPrefix(group, "1"), "000"),
	}, nil
}

// Currency is the ISO 4217 code.
func (f *Formatter) Currency() string {
	return f.code
}

// Scale is the number of fraction digits the currency is shown with.
func (f *Formatter) Scale() int {
	return f.scale
}

// Format keeps every digit of amount; only the fraction is rounded to the
// currency scale.
func (f *Formatter) Format(amount decimal.Decimal) string {
	rounded := amount.Round(int32(f.scale))
	intPart, frac, _ := strings.Cut(rounded.Abs().StringFixed(int32(f.scale)), ".")

	s := f.groupDigits(intPart)
	if frac != "" {
		s += f.decimalSep + frac
	}
	if rounded.IsNegative() {
		return "-" + f.symbol + s
	}
	return f.symbol + s
}

func (f *Formatter) groupDigits(digits string) string {
	if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
		return f.printer.Sprint(number.Decimal(n))
	}

	// past int64: plain groups of three with the locale separator
	var b strings.Builder
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(f.groupSep)
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// MinorToMajor converts an amount expressed in cents into major units.
func MinorToMajor(minor decimal.Decimal) decimal.Decimal {
	return minor.Shift(-2)
}
