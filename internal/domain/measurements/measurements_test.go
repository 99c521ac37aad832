package measurements

import (
	"errors"
	"slices"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/boq/internal/domain/prices"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func elementary(t *testing.T, code, price, unit string, typ prices.PriceType) *prices.ElementaryPrice {
	t.Helper()
	p, err := prices.NewElementaryPrice(code, code+" title", unit, dec(price), typ)
	if err != nil {
		t.Fatalf("NewElementaryPrice: %v", err)
	}
	return p
}

func units(n string) Measurement { return Measurement{Units: dec(n)} }

func TestMeasurementQuantity(t *testing.T) {
	cases := []struct {
		name string
		m    Measurement
		want string
	}{
		{"units only", units("3"), "3"},
		{"area", Measurement{Units: dec("2"), Length: Dim(dec("4")), Width: Dim(dec("2.5"))}, "20"},
		{"volume", Measurement{Units: dec("1"), Length: Dim(dec("2")), Width: Dim(dec("3")), Height: Dim(dec("0.5"))}, "3"},
		{"height only", Measurement{Units: dec("2"), Height: Dim(dec("1.5"))}, "3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.m.Quantity(); !got.Equal(dec(tc.want)) {
				t.Fatalf("Quantity = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestUnitPriceQuantitiesPrice(t *testing.T) {
	rebar := elementary(t, "REBAR", "13.80", "kg", prices.Material)
	q := NewQuantities()
	u, err := q.Append(rebar, units("2"), units("3"))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if !u.TotalMeasurement().Equal(dec("5")) {
		t.Fatalf("TotalMeasurement = %s", u.TotalMeasurement())
	}
	if !q.Price().Equal(dec("69")) || !q.RoundedPrice().Equal(dec("69")) {
		t.Fatalf("Price = %s, RoundedPrice = %s", q.Price(), q.RoundedPrice())
	}
	if _, err := q.Append(nil); !errors.Is(err, prices.ErrNilPrice) {
		t.Fatalf("expected ErrNilPrice, got %v", err)
	}
}

func TestPendingLineAndDetach(t *testing.T) {
	q := NewQuantities()
	u := q.AppendPending("LATER", units("4"))
	if u.Resolved() || !u.Price().IsZero() {
		t.Fatalf("pending line must be worth zero")
	}
	if err := u.Bind(elementary(t, "LATER", "2", "m", prices.Material)); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if !u.Price().Equal(dec("8")) {
		t.Fatalf("Price = %s", u.Price())
	}
	if deps := q.ConceptsThatDependOn("LATER"); len(deps) != 1 {
		t.Fatalf("ConceptsThatDependOn = %v", deps)
	}
	if err := u.Detach(); err != nil || q.Len() != 0 {
		t.Fatalf("Detach: %v, Len = %d", err, q.Len())
	}
	if err := u.Detach(); !errors.Is(err, prices.ErrDetached) {
		t.Fatalf("expected ErrDetached, got %v", err)
	}
}

func TestReportMergeAndEmployedPrices(t *testing.T) {
	a := elementary(t, "A", "1", "ud", prices.Material)
	b := elementary(t, "B", "1", "ud", prices.Material)

	left := NewReport()
	left.Insert(a, dec("3"))
	right := NewReport()
	right.Insert(a, dec("2"))
	right.Insert(b, dec("0.5"))
	left.Merge(right)

	if q, _ := left.Quantity("A"); !q.Equal(dec("5")) {
		t.Fatalf("A = %s, want 5", q)
	}
	if q, _ := left.Quantity("B"); !q.Equal(dec("0.5")) {
		t.Fatalf("B = %s, want 0.5", q)
	}
	if got := left.EmployedPrices(dec("1")); !slices.Equal(got, []string{"A"}) {
		t.Fatalf("EmployedPrices = %v, want [A]", got)
	}
}

func TestReportKeepsSameCodePricesApart(t *testing.T) {
	cheap := elementary(t, "X", "1", "ud", prices.Material)
	dear := elementary(t, "X", "100", "ud", prices.Material)

	r := NewReport()
	r.Insert(cheap, dec("1"))
	r.Insert(dear, dec("1"))
	r.Insert(cheap, dec("2"))

	if r.Len() != 2 {
		t.Fatalf("Len = %d, want 2", r.Len())
	}
	if got := r.Amount(); !got.Equal(dec("103")) {
		t.Fatalf("Amount = %s, want 103", got)
	}
	rows := r.Rows(RowOptions{})
	if !rows[0].UnitPrice.Equal(dec("100")) || !rows[1].Quantity.Equal(dec("3")) {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if q, _ := r.Quantity("X"); !q.Equal(dec("4")) {
		t.Fatalf("Quantity(X) = %s, want 4", q)
	}
	if got := r.EmployedPrices(dec("0")); !slices.Equal(got, []string{"X"}) {
		t.Fatalf("EmployedPrices = %v, want [X]", got)
	}
}

func TestElementaryExpansion(t *testing.T) {
	labour := elementary(t, "LAB", "20", "h", prices.Labour)
	cement := elementary(t, "CEM", "100", "t", prices.Material)
	mortar, _ := prices.NewCompoundPrice("MORT", "Mortar", "m3")
	if _, err := mortar.AppendComponent(cement, prices.NewFactorRate(dec("0.3"), dec("1"))); err != nil {
		t.Fatal(err)
	}
	wall, _ := prices.NewCompoundPrice("WALL", "Wall", "m2")
	if _, err := wall.AppendComponent(labour, prices.NewFactorRate(dec("0.5"), dec("1"))); err != nil {
		t.Fatal(err)
	}
	if _, err := wall.AppendComponent(mortar, prices.NewFactorRate(dec("0.02"), dec("1"))); err != nil {
		t.Fatal(err)
	}

	r := NewReport()
	r.Insert(wall, dec("100"))
	r.Insert(labour, dec("10"))

	employed := r.EmployedElementaryPrices(dec("0"), nil)
	if !slices.Equal(employed, []string{"LAB", "MORT"}) {
		t.Fatalf("EmployedElementaryPrices = %v", employed)
	}
	onlyLabour := r.EmployedElementaryPrices(dec("0"), ByType(prices.Labour))
	if !slices.Equal(onlyLabour, []string{"LAB"}) {
		t.Fatalf("filtered EmployedElementaryPrices = %v", onlyLabour)
	}

	eq := r.ElementaryQuantities()
	if q, _ := eq.Quantity("LAB"); !q.Equal(dec("60")) {
		t.Fatalf("LAB = %s, want 60", q)
	}
	if q, _ := eq.Quantity("CEM"); !q.Equal(dec("0.6")) {
		t.Fatalf("CEM = %s, want 0.6", q)
	}
	if _, ok := eq.Quantity("MORT"); ok {
		t.Fatalf("compound prices must not appear in elementary quantities")
	}
	if tonnes := eq.Filter(ByUnit("Tn")); tonnes.Len() != 1 {
		t.Fatalf("ByUnit(Tn) kept %d entries", tonnes.Len())
	}
}

func TestRowsSortedByAmount(t *testing.T) {
	cheap := elementary(t, "CHEAP", "1", "Ud", prices.Material)
	dear := elementary(t, "DEAR", "100", "M3", prices.Material)
	mid := elementary(t, "MID", "10", "kg", prices.Material)

	r := NewReport()
	r.Insert(cheap, dec("5"))
	r.Insert(dear, dec("2"))
	r.Insert(mid, dec("3"))

	rows := r.Rows(RowOptions{LimitTextWidth: 6})
	var codes []string
	for _, row := range rows {
		codes = append(codes, row.Code)
	}
	if !slices.Equal(codes, []string{"DEAR", "MID", "CHEAP"}) {
		t.Fatalf("row order = %v", codes)
	}
	if rows[0].Unit != "m3" || rows[2].Unit != "ud" {
		t.Fatalf("units not normalised: %q %q", rows[0].Unit, rows[2].Unit)
	}
	if rows[0].Title != "DEA..." {
		t.Fatalf("title not truncated: %q", rows[0].Title)
	}
	if !rows[0].Amount.Equal(dec("200")) {
		t.Fatalf("amount = %s", rows[0].Amount)
	}
	if !r.Amount().Equal(dec("235")) {
		t.Fatalf("Amount = %s", r.Amount())
	}
}
