package prices

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/boq/internal/domain/precision"
)

// Price is the common surface of elementary and compound prices. The set of
// implementations is closed to this package.
type Price interface {
	Code() string
	Title() string
	Unit() string
	LongDescription() string
	Type() PriceType
	// Price returns the value at full precision.
	Price() decimal.Decimal
	// RoundedPrice returns the value built from per-term rounded amounts.
	RoundedPrice() decimal.Decimal
	IsPercentage() bool
	IsCompound() bool

	sealed()
}

// ElementaryPrice is a leaf resource: labour, machinery, material or an
// unclassified item with a fixed unit price.
type ElementaryPrice struct {
	code            string
	title           string
	unit            string
	longDescription string
	price           decimal.Decimal
	priceType       PriceType
}

// NewElementaryPrice validates the code and returns a new leaf price.
func NewElementaryPrice(code, title, unit string, price decimal.Decimal, t PriceType) (*ElementaryPrice, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrEmptyCode
	}
	return &ElementaryPrice{
		code:      code,
		title:     title,
		unit:      unit,
		price:     price,
		priceType: t,
	}, nil
}

func (p *ElementaryPrice) Code() string            { return p.code }
func (p *ElementaryPrice) Title() string           { return p.title }
func (p *ElementaryPrice) Unit() string            { return p.unit }
func (p *ElementaryPrice) LongDescription() string { return p.longDescription }
func (p *ElementaryPrice) Type() PriceType         { return p.priceType }
func (p *ElementaryPrice) IsCompound() bool        { return false }
func (p *ElementaryPrice) sealed()                 {}

// IsPercentage reports whether the code marks a percentage concept (contains %).
func (p *ElementaryPrice) IsPercentage() bool { return IsPercentageCode(p.code) }

func (p *ElementaryPrice) Price() decimal.Decimal { return p.price }

func (p *ElementaryPrice) RoundedPrice() decimal.Decimal {
	return precision.RoundPrice(p.price)
}

// SetPrice overwrites the stored unit price.
func (p *ElementaryPrice) SetPrice(price decimal.Decimal) { p.price = price }

// SetLongDescription stores the extended text of the concept.
func (p *ElementaryPrice) SetLongDescription(text string) { p.longDescription = text }

// IsPercentageCode reports whether code denotes a percentage concept.
func IsPercentageCode(code string) bool {
	return strings.Contains(code, "%")
}
