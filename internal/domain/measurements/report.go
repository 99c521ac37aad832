package measurements

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/boq/internal/domain/prices"
)

// ReportEntry is the accumulated quantity of one price.
type ReportEntry struct {
	Price    prices.Price
	Quantity decimal.Decimal
}

// Report maps prices to accumulated quantities, keeping first-insertion order.
// Entries are keyed by price, so two chapters defining the same code keep
// separate entries.
type Report struct {
	entries []ReportEntry
	index   map[prices.Price]int
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{index: make(map[prices.Price]int)}
}

// Insert adds qty to the entry of p, creating it when needed.
func (r *Report) Insert(p prices.Price, qty decimal.Decimal) {
	if p == nil {
		return
	}
	if i, ok := r.index[p]; ok {
		r.entries[i].Quantity = r.entries[i].Quantity.Add(qty)
		return
	}
	r.index[p] = len(r.entries)
	r.entries = append(r.entries, ReportEntry{Price: p, Quantity: qty})
}

// Merge adds every entry of other into r.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	for _, e := range other.entries {
		r.Insert(e.Price, e.Quantity)
	}
}

// Entries returns the entries in insertion order.
func (r *Report) Entries() []ReportEntry {
	out := make([]ReportEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Report) Len() int { return len(r.entries) }

// Quantity returns the accumulated quantity for code, summed over every
// price carrying that code.
func (r *Report) Quantity(code string) (decimal.Decimal, bool) {
	total, found := decimal.Zero, false
	for _, e := range r.entries {
		if e.Price.Code() == code {
			total = total.Add(e.Quantity)
			found = true
		}
	}
	return total, found
}

// Amount sums quantity * price over every entry.
func (r *Report) Amount() decimal.Decimal {
	total := decimal.Zero
	for _, e := range r.entries {
		total = total.Add(e.Quantity.Mul(e.Price.Price()))
	}
	return total
}

// EmployedPrices returns the codes whose accumulated quantity exceeds lower.
// A code is listed once even when several prices carry it.
func (r *Report) EmployedPrices(lower decimal.Decimal) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range r.entries {
		if e.Quantity.GreaterThan(lower) && !seen[e.Price.Code()] {
			seen[e.Price.Code()] = true
			out = append(out, e.Price.Code())
		}
	}
	return out
}

// EmployedElementaryPrices is EmployedPrices with compound prices replaced
// by their direct components. Only one level is expanded. A nil keep
// accepts every price.
func (r *Report) EmployedElementaryPrices(lower decimal.Decimal, keep func(prices.Price) bool) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(p prices.Price) {
		if p == nil || seen[p.Code()] || (keep != nil && !keep(p)) {
			return
		}
		seen[p.Code()] = true
		out = append(out, p.Code())
	}
	for _, e := range r.entries {
		if !e.Quantity.GreaterThan(lower) {
			continue
		}
		compound, ok := e.Price.(*prices.CompoundPrice)
		if !ok || !compound.IsCompound() {
			add(e.Price)
			continue
		}
		for _, c := range compound.Components() {
			add(c.Entity())
		}
	}
	return out
}

// ElementaryQuantities expands compound prices down to their elementary
// leaves, scaling by the accumulated factor/rate products.
func (r *Report) ElementaryQuantities() *Report {
	out := NewReport()
	for _, e := range r.entries {
		compound, ok := e.Price.(*prices.CompoundPrice)
		if !ok || !compound.IsCompound() {
			out.Insert(e.Price, e.Quantity)
			continue
		}
		for _, share := range compound.ElementaryComponents() {
			out.Insert(share.Price, e.Quantity.Mul(share.Product))
		}
	}
	return out
}

// Filter returns the entries whose price satisfies keep.
func (r *Report) Filter(keep func(prices.Price) bool) *Report {
	out := NewReport()
	for _, e := range r.entries {
		if keep(e.Price) {
			out.Insert(e.Price, e.Quantity)
		}
	}
	return out
}

// ByUnit keeps prices measured in unit, compared after normalisation.
func ByUnit(unit string) func(prices.Price) bool {
	want := prices.NormalizeUnit(unit)
	return func(p prices.Price) bool { return prices.NormalizeUnit(p.Unit()) == want }
}

// ByType keeps prices of the given classification.
func ByType(t prices.PriceType) func(prices.Price) bool {
	return func(p prices.Price) bool { return p.Type() == t }
}

// Row is one line of a quantities listing.
type Row struct {
	Code      string
	Title     string
	Quantity  decimal.Decimal
	Unit      string
	UnitPrice decimal.Decimal
	Amount    decimal.Decimal
}

// RowOptions tunes Rows.
type RowOptions struct {
	// LimitTextWidth truncates titles longer than this many characters.
	// Zero keeps titles as they are.
	LimitTextWidth int
}

// Rows lists the entries sorted by descending amount. Entries with the same
// amount keep report order.
func (r *Report) Rows(opts RowOptions) []Row {
	rows := make([]Row, 0, len(r.entries))
	for _, e := range r.entries {
		unitPrice := e.Price.Price()
		rows = append(rows, Row{
			Code:      e.Price.Code(),
			Title:     truncate(e.Price.Title(), opts.LimitTextWidth),
			Quantity:  e.Quantity,
			Unit:      prices.NormalizeUnit(e.Price.Unit()),
			UnitPrice: unitPrice,
			Amount:    e.Quantity.Mul(unitPrice),
		})
	}
	slices.SortStableFunc(rows, func(a, b Row) int {
		return b.Amount.Cmp(a.Amount)
	})
	return rows
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
