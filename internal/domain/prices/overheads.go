package prices

import (
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/boq/internal/domain/precision"
)

// Overheads are the ratios applied on top of the execution budget.
type Overheads struct {
	GeneralExpenses  decimal.Decimal
	IndustrialProfit decimal.Decimal
	VAT              decimal.Decimal
}

// DefaultOverheads returns 17% general expenses, 6% industrial profit and
// 21% VAT.
func DefaultOverheads() Overheads {
	return Overheads{
		GeneralExpenses:  decimal.RequireFromString("0.17"),
		IndustrialProfit: decimal.RequireFromString("0.06"),
		VAT:              decimal.RequireFromString("0.21"),
	}
}

// Budget holds the final figures derived from an execution budget.
type Budget struct {
	Execution        decimal.Decimal
	GeneralExpenses  decimal.Decimal
	IndustrialProfit decimal.Decimal
	// Contract is execution plus general expenses and industrial profit.
	Contract decimal.Decimal
	VAT      decimal.Decimal
	Total    decimal.Decimal
}

// Apply computes the budget figures, each rounded to currency precision.
func (o Overheads) Apply(execution decimal.Decimal) Budget {
	b := Budget{Execution: precision.RoundPrice(execution)}
	b.GeneralExpenses = precision.RoundPrice(b.Execution.Mul(o.GeneralExpenses))
	b.IndustrialProfit = precision.RoundPrice(b.Execution.Mul(o.IndustrialProfit))
	b.Contract = b.Execution.Add(b.GeneralExpenses).Add(b.IndustrialProfit)
	b.VAT = precision.RoundPrice(b.Contract.Mul(o.VAT))
	b.Total = b.Contract.Add(b.VAT)
	return b
}
