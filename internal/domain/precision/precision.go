// Package precision holds the fixed-precision rounding and formatting rules
// shared by every valuation in the engine.
package precision

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Decimal places used across the engine.
const (
	PricePlaces         int32 = 2
	JustificationPlaces int32 = 3
	PercentagePlaces    int32 = 3
	QuantityPlaces      int32 = 3
)

var hundred = decimal.NewFromInt(100)

// RoundPrice rounds to currency precision, half away from zero.
func RoundPrice(d decimal.Decimal) decimal.Decimal {
	return d.Round(PricePlaces)
}

// RoundJustification rounds factor/rate products and justification amounts.
func RoundJustification(d decimal.Decimal) decimal.Decimal {
	return d.Round(JustificationPlaces)
}

// RoundPercentage rounds a ratio such as 0.06.
func RoundPercentage(d decimal.Decimal) decimal.Decimal {
	return d.Round(PercentagePlaces)
}

// RoundQuantity rounds measured quantities.
func RoundQuantity(d decimal.Decimal) decimal.Decimal {
	return d.Round(QuantityPlaces)
}

// Format carries the presentation settings for human readable output. It is
// passed explicitly to every formatting call; nothing here touches process
// locale.
type Format struct {
	CurrencySymbol   string
	DecimalSeparator string
	GroupSeparator   string
	// SymbolBefore puts the currency symbol in front of the amount.
	SymbolBefore bool
}

// DefaultFormat renders 1.234,56 € style numbers.
func DefaultFormat() Format {
	return Format{
		CurrencySymbol:   "€",
		DecimalSeparator: ",",
		GroupSeparator:   ".",
	}
}

// Number formats d with the given number of places and digit grouping.
func (f Format) Number(d decimal.Decimal, places int32) string {
	fixed := d.StringFixed(places)

	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	out := groupThousands(intPart, f.GroupSeparator)
	if places > 0 {
		sep := f.DecimalSeparator
		if sep == "" {
			sep = "."
		}
		out += sep + fracPart
	}
	if negative && strings.Trim(out, "0.,"+f.GroupSeparator) != "" {
		out = "-" + out
	}
	return out
}

// Price formats a currency amount at price precision.
func (f Format) Price(d decimal.Decimal) string {
	return f.Number(RoundPrice(d), PricePlaces)
}

// Money formats a currency amount including the currency symbol.
func (f Format) Money(d decimal.Decimal) string {
	amount := f.Price(d)
	if f.CurrencySymbol == "" {
		return amount
	}
	if f.SymbolBefore {
		return f.CurrencySymbol + " " + amount
	}
	return amount + " " + f.CurrencySymbol
}

// Quantity formats a measured quantity.
func (f Format) Quantity(d decimal.Decimal) string {
	return f.Number(RoundQuantity(d), QuantityPlaces)
}

// Percentage formats a ratio (0.06) as a percentage (6,00 %).
func (f Format) Percentage(ratio decimal.Decimal) string {
	return f.Number(ratio.Mul(hundred), PricePlaces) + " %"
}

func groupThousands(digits, sep string) string {
	if sep == "" || len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
