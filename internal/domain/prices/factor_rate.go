package prices

import (
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/boq/internal/domain/precision"
)

// FactorRate scales a referenced quantity: how many units of a resource
// (factor) at which production rate go into one unit of the owner.
type FactorRate struct {
	Factor decimal.Decimal
	Rate   decimal.Decimal
}

// NewFactorRate builds a FactorRate from its two terms.
func NewFactorRate(factor, rate decimal.Decimal) FactorRate {
	return FactorRate{Factor: factor, Rate: rate}
}

// UnitFactorRate is the neutral 1 x 1 pair.
func UnitFactorRate() FactorRate {
	return FactorRate{Factor: decimal.NewFromInt(1), Rate: decimal.NewFromInt(1)}
}

// Product returns factor * rate at full precision.
func (fr FactorRate) Product() decimal.Decimal {
	return fr.Factor.Mul(fr.Rate)
}

// RoundedProduct returns the product rounded to justification precision.
func (fr FactorRate) RoundedProduct() decimal.Decimal {
	return precision.RoundJustification(fr.Product())
}

// IsUnit reports whether the pair leaves values unchanged.
func (fr FactorRate) IsUnit() bool {
	return fr.Product().Equal(decimal.NewFromInt(1))
}
