// Package codec converts project trees to and from plain nested records and
// encodes those records as JSON or YAML.
package codec

import (
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/boq/internal/domain/prices"
)

// CurrentVersion is written into every saved document.
const CurrentVersion = 1

// Document is the serialized form of a project. Catalogs are lists of
// records keyed by their code so that order survives every encoding.
type Document struct {
	Version int           `json:"version" yaml:"version"`
	Project ChapterRecord `json:"project" yaml:"project"`
}

// ChapterRecord mirrors one chapter.
type ChapterRecord struct {
	Code           string                    `json:"code" yaml:"code"`
	Title          string                    `json:"title" yaml:"title"`
	Factor         *decimal.Decimal          `json:"factor,omitempty" yaml:"factor,omitempty"`
	ProductionRate *decimal.Decimal          `json:"production_rate,omitempty" yaml:"production_rate,omitempty"`
	Prices         PricesRecord              `json:"prices" yaml:"prices"`
	Quantities     []UnitPriceQuantityRecord `json:"quantities,omitempty" yaml:"quantities,omitempty"`
	SubChapters    []ChapterRecord           `json:"sub_chapters,omitempty" yaml:"sub_chapters,omitempty"`
}

// PricesRecord is the catalog of a chapter.
type PricesRecord struct {
	Elementary []ElementaryRecord `json:"elementary,omitempty" yaml:"elementary,omitempty"`
	Compound   []CompoundRecord   `json:"compound,omitempty" yaml:"compound,omitempty"`
}

// ElementaryRecord mirrors an elementary price.
type ElementaryRecord struct {
	Code            string           `json:"code" yaml:"code"`
	Title           string           `json:"title" yaml:"title"`
	Unit            string           `json:"unit" yaml:"unit"`
	LongDescription string           `json:"long_description,omitempty" yaml:"long_description,omitempty"`
	Price           decimal.Decimal  `json:"price" yaml:"price"`
	Type            prices.PriceType `json:"type" yaml:"type"`
}

// CompoundRecord mirrors a compound price.
type CompoundRecord struct {
	Code            string            `json:"code" yaml:"code"`
	Title           string            `json:"title" yaml:"title"`
	Unit            string            `json:"unit" yaml:"unit"`
	LongDescription string            `json:"long_description,omitempty" yaml:"long_description,omitempty"`
	Components      []ComponentRecord `json:"components" yaml:"components"`
}

// ComponentRecord references a price by code. Missing factor or rate
// default to 1.
type ComponentRecord struct {
	Code           string           `json:"code" yaml:"code"`
	Factor         *decimal.Decimal `json:"factor,omitempty" yaml:"factor,omitempty"`
	ProductionRate *decimal.Decimal `json:"production_rate,omitempty" yaml:"production_rate,omitempty"`
}

// UnitPriceQuantityRecord holds the measurements taken against one price.
type UnitPriceQuantityRecord struct {
	PriceCode    string              `json:"price_code" yaml:"price_code"`
	Measurements []MeasurementRecord `json:"measurements" yaml:"measurements"`
}

// MeasurementRecord mirrors one measured line.
type MeasurementRecord struct {
	Comment string           `json:"comment,omitempty" yaml:"comment,omitempty"`
	Units   decimal.Decimal  `json:"units" yaml:"units"`
	Length  *decimal.Decimal `json:"length,omitempty" yaml:"length,omitempty"`
	Width   *decimal.Decimal `json:"width,omitempty" yaml:"width,omitempty"`
	Height  *decimal.Decimal `json:"height,omitempty" yaml:"height,omitempty"`
}

func factorRate(factor, rate *decimal.Decimal) prices.FactorRate {
	fr := prices.UnitFactorRate()
	if factor != nil {
		fr.Factor = *factor
	}
	if rate != nil {
		fr.Rate = *rate
	}
	return fr
}

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }
