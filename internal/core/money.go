// Package core holds the domain model: transactions, categories, money
// handling and the in-memory history aggregation.
package core

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency describes one supported display currency.
type Currency struct {
	Value    string // ISO code, e.g. "USD"
	Label    string
	Symbol   string
	Decimals int32
	// Thousands and decimal separators of the currency's host locale.
	ThousandsSep string
	DecimalSep   string
}

// Currencies is the fixed supported set. The first entry is the default
// assigned on first settings access.
var Currencies = []Currency{
	{Value: "USD", Label: "$ Dollar", Symbol: "$", Decimals: 2, ThousandsSep: ",", DecimalSep: "."},
	{Value: "NGN", Label: "₦ Naira", Symbol: "₦", Decimals: 2, ThousandsSep: ",", DecimalSep: "."},
	{Value: "EUR", Label: "€ Euro", Symbol: "€", Decimals: 2, ThousandsSep: ".", DecimalSep: ","},
	{Value: "JPY", Label: "¥ Yen", Symbol: "¥", Decimals: 0, ThousandsSep: ",", DecimalSep: "."},
	{Value: "GBP", Label: "£ Pound", Symbol: "£", Decimals: 2, ThousandsSep: ",", DecimalSep: "."},
}

// DefaultCurrency is assigned when user settings are created lazily.
const DefaultCurrency = "USD"

// LookupCurrency returns the currency definition for a code.
func LookupCurrency(code string) (Currency, bool) {
	for _, c := range Currencies {
		if c.Value == code {
			return c, true
		}
	}
	return Currency{}, false
}

// IsSupportedCurrency reports whether code is in the fixed supported set.
func IsSupportedCurrency(code string) bool {
	_, ok := LookupCurrency(code)
	return ok
}

var centUnit = decimal.New(1, -2) // 0.01

// ParseAmountToCents converts a decimal amount string into cents.
// The amount must be positive and an exact multiple of 0.01; sub-cent
// amounts are rejected rather than rounded.
func ParseAmountToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if d.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	if !d.Mod(centUnit).IsZero() {
		return 0, ErrInvalidAmount
	}
	return d.Mul(decimal.New(100, 0)).IntPart(), nil
}

// FormatCents renders an amount for display in the given currency, e.g.
// 123456 cents as "$1,234.56" or "€1.234,56". The stored amount is never
// mutated; this is a display-only transform.
func FormatCents(cents int64, cur Currency) string {
	negative := cents < 0
	if negative {
		cents = -cents
	}

	var whole, frac int64
	if cur.Decimals == 0 {
		// Zero-decimal currencies count whole units in cents already.
		whole = cents / 100
	} else {
		whole = cents / 100
		frac = cents % 100
	}

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	if negative {
		b.WriteString("-")
	}
	b.WriteString(cur.Symbol)
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteString(cur.ThousandsSep)
		}
		b.WriteRune(r)
	}
	if cur.Decimals > 0 {
		b.WriteString(cur.DecimalSep)
		if frac < 10 {
			b.WriteString("0")
		}
		b.WriteString(strconv.FormatInt(frac, 10))
	}
	return b.String()
}
