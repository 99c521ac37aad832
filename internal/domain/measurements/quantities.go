// Package measurements holds quantity lines and their aggregation.
package measurements

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/boq/internal/domain/precision"
	"github.com/mamadbah2/boq/internal/domain/prices"
)

// Measurement is one measured line: units times the optional dimensions.
// Missing dimensions count as 1.
type Measurement struct {
	Comment string
	Units   decimal.Decimal
	Length  *decimal.Decimal
	Width   *decimal.Decimal
	Height  *decimal.Decimal
}

// Dim returns a pointer to d for use as a Measurement dimension.
func Dim(d decimal.Decimal) *decimal.Decimal { return &d }

// Quantity returns units * length * width * height.
func (m Measurement) Quantity() decimal.Decimal {
	q := m.Units
	for _, d := range []*decimal.Decimal{m.Length, m.Width, m.Height} {
		if d != nil {
			q = q.Mul(*d)
		}
	}
	return q
}

// UnitPriceQuantities are the measurements taken against one price.
type UnitPriceQuantities struct {
	price        prices.Price
	code         string
	measurements []Measurement
	owner        *Quantities
}

// UnitPrice returns the measured price, or nil while unresolved.
func (u *UnitPriceQuantities) UnitPrice() prices.Price { return u.price }

// ReferencedCode returns the code of the measured price.
func (u *UnitPriceQuantities) ReferencedCode() string {
	if u.price != nil {
		return u.price.Code()
	}
	return u.code
}

// Resolved reports whether the line points at a price.
func (u *UnitPriceQuantities) Resolved() bool { return u.price != nil }

// Measurements returns the lines in order.
func (u *UnitPriceQuantities) Measurements() []Measurement {
	out := make([]Measurement, len(u.measurements))
	copy(out, u.measurements)
	return out
}

// Append adds measurement lines.
func (u *UnitPriceQuantities) Append(ms ...Measurement) {
	u.measurements = append(u.measurements, ms...)
}

// TotalMeasurement sums every measured quantity.
func (u *UnitPriceQuantities) TotalMeasurement() decimal.Decimal {
	total := decimal.Zero
	for _, m := range u.measurements {
		total = total.Add(m.Quantity())
	}
	return total
}

// Price returns total measurement * unit price.
func (u *UnitPriceQuantities) Price() decimal.Decimal {
	if u.price == nil {
		return decimal.Zero
	}
	return u.TotalMeasurement().Mul(u.price.Price())
}

// RoundedPrice multiplies the rounded quantity by the rounded unit price.
func (u *UnitPriceQuantities) RoundedPrice() decimal.Decimal {
	if u.price == nil {
		return decimal.Zero
	}
	q := precision.RoundQuantity(u.TotalMeasurement())
	return precision.RoundPrice(q.Mul(u.price.RoundedPrice()))
}

// Bind resolves the price of a pending line.
func (u *UnitPriceQuantities) Bind(p prices.Price) error {
	if p == nil {
		return prices.ErrNilPrice
	}
	u.price = p
	u.code = p.Code()
	return nil
}

// CheckRepoint only rejects a nil price; a quantity line cannot close a cycle.
func (u *UnitPriceQuantities) CheckRepoint(p prices.Price) error {
	if p == nil {
		return prices.ErrNilPrice
	}
	return nil
}

// Repoint measures the same lines against p.
func (u *UnitPriceQuantities) Repoint(p prices.Price) error { return u.Bind(p) }

// Detach removes the line from its chapter container.
func (u *UnitPriceQuantities) Detach() error {
	if u.owner == nil || !u.owner.Remove(u) {
		return prices.ErrDetached
	}
	return nil
}

func (u *UnitPriceQuantities) String() string {
	return fmt.Sprintf("%s: %s", u.ReferencedCode(), u.TotalMeasurement())
}

// Quantities is the ordered list of quantity lines of a chapter.
type Quantities struct {
	items []*UnitPriceQuantities
}

// NewQuantities returns an empty container.
func NewQuantities() *Quantities { return &Quantities{} }

// Append adds a line measured against p.
func (q *Quantities) Append(p prices.Price, ms ...Measurement) (*UnitPriceQuantities, error) {
	if p == nil {
		return nil, prices.ErrNilPrice
	}
	u := &UnitPriceQuantities{price: p, code: p.Code(), owner: q}
	u.Append(ms...)
	q.items = append(q.items, u)
	return u, nil
}

// AppendPending adds a line whose price is known only by code.
func (q *Quantities) AppendPending(code string, ms ...Measurement) *UnitPriceQuantities {
	u := &UnitPriceQuantities{code: code, owner: q}
	u.Append(ms...)
	q.items = append(q.items, u)
	return u
}

// Items returns the lines in order.
func (q *Quantities) Items() []*UnitPriceQuantities {
	out := make([]*UnitPriceQuantities, len(q.items))
	copy(out, q.items)
	return out
}

func (q *Quantities) Len() int { return len(q.items) }

// Remove detaches u and reports whether it was present.
func (q *Quantities) Remove(u *UnitPriceQuantities) bool {
	for i, existing := range q.items {
		if existing == u {
			q.items = append(q.items[:i], q.items[i+1:]...)
			u.owner = nil
			return true
		}
	}
	return false
}

// Price sums the lines at full precision.
func (q *Quantities) Price() decimal.Decimal {
	total := decimal.Zero
	for _, u := range q.items {
		total = total.Add(u.Price())
	}
	return total
}

// RoundedPrice sums the rounded lines.
func (q *Quantities) RoundedPrice() decimal.Decimal {
	total := decimal.Zero
	for _, u := range q.items {
		total = total.Add(u.RoundedPrice())
	}
	return total
}

// ConceptsThatDependOn returns the lines measuring code.
func (q *Quantities) ConceptsThatDependOn(code string) []prices.Dependent {
	var out []prices.Dependent
	for _, u := range q.items {
		if u.ReferencedCode() == code {
			out = append(out, u)
		}
	}
	return out
}

// Report accumulates the total measurement of every line per price.
func (q *Quantities) Report() *Report {
	r := NewReport()
	for _, u := range q.items {
		if u.price == nil {
			continue
		}
		r.Insert(u.price, u.TotalMeasurement())
	}
	return r
}

// Copy returns a container with copied lines pointing at the same prices.
func (q *Quantities) Copy() *Quantities {
	out := NewQuantities()
	for _, u := range q.items {
		cp := &UnitPriceQuantities{price: u.price, code: u.code, owner: out}
		cp.measurements = u.Measurements()
		out.items = append(out.items, cp)
	}
	return out
}
