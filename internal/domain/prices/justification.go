package prices

import (
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/boq/internal/domain/precision"
)

// PercentageMode selects how percentage lines are applied.
type PercentageMode int

const (
	// NonCumulative applies every percentage to the same base.
	NonCumulative PercentageMode = iota
	// Cumulative applies each percentage to the base plus the percentages
	// already applied.
	Cumulative
)

func (m PercentageMode) String() string {
	if m == Cumulative {
		return "cumulative"
	}
	return "non_cumulative"
}

// JustificationRecord is one line of a price justification.
type JustificationRecord struct {
	Code  string
	Title string
	Unit  string
	Type  PriceType
	// Product is the rounded factor/rate product; for percentage lines it is
	// the percentage itself.
	Product decimal.Decimal
	// UnitPrice is the rounded entity price, or the base for percentage lines.
	UnitPrice  decimal.Decimal
	Amount     decimal.Decimal
	Percentage bool
}

// JustificationGroup collects the records of one category.
type JustificationGroup struct {
	Records []JustificationRecord
	Total   decimal.Decimal
}

func (g *JustificationGroup) add(r JustificationRecord) {
	g.Records = append(g.Records, r)
	g.Total = g.Total.Add(r.Amount)
}

// Justification is the breakdown of a compound price by category.
type Justification struct {
	Code  string
	Title string
	Unit  string
	Mode  PercentageMode

	Labour      JustificationGroup
	Machinery   JustificationGroup
	Material    JustificationGroup
	Other       JustificationGroup
	Percentages JustificationGroup

	// Base is the sum of the non-percentage groups.
	Base         decimal.Decimal
	Total        decimal.Decimal
	Rounding     decimal.Decimal
	RoundedTotal decimal.Decimal
}

// Justification breaks the price down by category. Non-percentage amounts
// are rounded to currency precision; percentage amounts are kept exact and
// the final figure carries the rounding adjustment.
func (p *CompoundPrice) Justification(mode PercentageMode) Justification {
	j := Justification{Code: p.code, Title: p.title, Unit: p.unit, Mode: mode}

	for _, c := range p.components {
		if c.entity == nil || c.IsPercentage() {
			continue
		}
		r := JustificationRecord{
			Code:      c.entity.Code(),
			Title:     c.entity.Title(),
			Unit:      c.entity.Unit(),
			Type:      c.entity.Type(),
			Product:   c.rate.RoundedProduct(),
			UnitPrice: c.entity.RoundedPrice(),
			Amount:    c.RoundedPrice(),
		}
		switch r.Type {
		case Labour:
			j.Labour.add(r)
		case Machinery:
			j.Machinery.add(r)
		case Material:
			j.Material.add(r)
		default:
			j.Other.add(r)
		}
	}

	j.Base = j.Labour.Total.Add(j.Machinery.Total).Add(j.Material.Total).Add(j.Other.Total)

	running := j.Base
	for _, c := range p.components {
		if c.entity == nil || !c.IsPercentage() {
			continue
		}
		over := j.Base
		if mode == Cumulative {
			over = running
		}
		percentage := c.rate.RoundedProduct()
		amount := over.Mul(percentage)
		j.Percentages.add(JustificationRecord{
			Code:       c.entity.Code(),
			Title:      c.entity.Title(),
			Unit:       c.entity.Unit(),
			Type:       c.entity.Type(),
			Product:    percentage,
			UnitPrice:  over,
			Amount:     amount,
			Percentage: true,
		})
		running = running.Add(amount)
	}

	j.Total = j.Base.Add(j.Percentages.Total)
	j.RoundedTotal = precision.RoundPrice(j.Total)
	j.Rounding = j.RoundedTotal.Sub(j.Total)
	return j
}
