// Package core provides the domain model of the finance tracker together with
// money parsing, currency formatting and calendar helpers.
//
// This file contains functions for parsing monetary amounts from user input
// and rendering them for display.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	DefaultCurrency = "USD"
	DefaultLocale   = "en-US"
)

// ParseAmount converts a user-entered decimal string to a positive amount
// rounded to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Negative,
// zero or malformed values return ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,345") -> 12.35, nil (half-up)
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseSignedAmount parses a possibly negative amount as found in bank
// exports. Thousands separators and currency symbols are stripped.
func ParseSignedAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		}
		return -1
	}, strings.TrimSpace(s))
	if strings.HasPrefix(strings.TrimSpace(s), "(") && strings.HasSuffix(strings.TrimSpace(s), ")") {
		cleaned = "-" + cleaned
	}
	if cleaned == "" || cleaned == "-" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// Formatter renders amounts for one currency and locale.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
	symbol  string
}

// NewFormatter builds a Formatter. Unknown currency codes or locales fall back
// to USD and en-US.
func NewFormatter(code, locale string) *Formatter {
	unit, err := currency.ParseISO(code)
	if err != nil {
		unit = currency.USD
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	p := message.NewPrinter(tag)
	return &Formatter{
		printer: p,
		unit:    unit,
		symbol:  p.Sprint(currency.NarrowSymbol(unit)),
	}
}

// Format renders an amount with the currency symbol, grouping and two decimals.
func (f *Formatter) Format(amount decimal.Decimal) string {
	v, _ := amount.Abs().Round(2).Float64()
	s := f.symbol + f.printer.Sprint(number.Decimal(v, number.Scale(2)))
	if amount.IsNegative() {
		return "-" + s
	}
	return s
}

// Currency returns the ISO code of the formatter's currency.
func (f *Formatter) Currency() string {
	return f.unit.String()
}

// FormatCurrency formats an amount as en-US dollars.
func FormatCurrency(amount decimal.Decimal) string {
	return defaultFormatter.Format(amount)
}

var defaultFormatter = NewFormatter(DefaultCurrency, DefaultLocale)
