package prices

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func fr(factor, rate string) FactorRate {
	return NewFactorRate(dec(factor), dec(rate))
}

func mustElementary(t *testing.T, code string, price string, typ PriceType) *ElementaryPrice {
	t.Helper()
	p, err := NewElementaryPrice(code, code+" title", "ud", dec(price), typ)
	if err != nil {
		t.Fatalf("NewElementaryPrice(%s): %v", code, err)
	}
	return p
}

func mustCompound(t *testing.T, code string) *CompoundPrice {
	t.Helper()
	p, err := NewCompoundPrice(code, code+" title", "ud")
	if err != nil {
		t.Fatalf("NewCompoundPrice(%s): %v", code, err)
	}
	return p
}

func mustAppend(t *testing.T, owner *CompoundPrice, entity Price, rate FactorRate) {
	t.Helper()
	if _, err := owner.AppendComponent(entity, rate); err != nil {
		t.Fatalf("AppendComponent(%s -> %s): %v", owner.Code(), entity.Code(), err)
	}
}

func TestElementaryPriceRejectsEmptyCode(t *testing.T) {
	if _, err := NewElementaryPrice(" ", "t", "ud", dec("1"), Material); !errors.Is(err, ErrEmptyCode) {
		t.Fatalf("expected ErrEmptyCode, got %v", err)
	}
	if _, err := NewCompoundPrice("", "t", "ud"); !errors.Is(err, ErrEmptyCode) {
		t.Fatalf("expected ErrEmptyCode, got %v", err)
	}
}

func TestRebarScenario(t *testing.T) {
	steel := mustElementary(t, "STEEL", "1.20", Material)
	labour := mustElementary(t, "LABOUR", "18.00", Labour)
	rebar := mustCompound(t, "REBAR")
	mustAppend(t, rebar, steel, fr("10", "1"))
	mustAppend(t, rebar, labour, fr("0.1", "1"))

	if got := rebar.Price(); !got.Equal(dec("13.80")) {
		t.Fatalf("Price = %s, want 13.80", got)
	}
	if got := rebar.RoundedPrice(); !got.Equal(dec("13.80")) {
		t.Fatalf("RoundedPrice = %s, want 13.80", got)
	}
	if !rebar.IsCompound() || rebar.IsPercentage() {
		t.Fatalf("unexpected flags for REBAR")
	}
}

func TestRoundedPriceRoundsEachTerm(t *testing.T) {
	a := mustElementary(t, "A", "0.333", Material)
	b := mustElementary(t, "B", "0.333", Material)
	c := mustCompound(t, "C")
	mustAppend(t, c, a, fr("1", "1"))
	mustAppend(t, c, b, fr("1", "1"))

	if got := c.Price(); !got.Equal(dec("0.666")) {
		t.Fatalf("Price = %s", got)
	}
	// each term rounds to 0.33 before adding up
	if got := c.RoundedPrice(); !got.Equal(dec("0.66")) {
		t.Fatalf("RoundedPrice = %s, want 0.66", got)
	}

	rate := mustCompound(t, "R")
	mustAppend(t, rate, mustElementary(t, "X", "100", Material), fr("0.12345", "1"))
	// product rounds to 0.123 first
	if got := rate.RoundedPrice(); !got.Equal(dec("12.30")) {
		t.Fatalf("RoundedPrice with rounded product = %s, want 12.30", got)
	}
}

func TestPercentageModes(t *testing.T) {
	base := mustElementary(t, "BASE", "100.00", Material)
	ci := mustElementary(t, "%CI", "1", Unclassified)
	ca := mustElementary(t, "%CA", "1", Unclassified)
	p := mustCompound(t, "P")
	mustAppend(t, p, base, fr("1", "1"))
	mustAppend(t, p, ci, fr("0.06", "1"))
	mustAppend(t, p, ca, fr("0.06", "1"))

	flat := p.Justification(NonCumulative)
	if len(flat.Percentages.Records) != 2 {
		t.Fatalf("expected 2 percentage records, got %d", len(flat.Percentages.Records))
	}
	for _, r := range flat.Percentages.Records {
		if !r.Amount.Equal(dec("6.00")) {
			t.Fatalf("non cumulative amount for %s = %s, want 6.00", r.Code, r.Amount)
		}
	}
	if !flat.Total.Equal(dec("112")) {
		t.Fatalf("non cumulative total = %s", flat.Total)
	}

	stacked := p.Justification(Cumulative)
	if got := stacked.Percentages.Records[0].Amount; !got.Equal(dec("6.00")) {
		t.Fatalf("first cumulative amount = %s", got)
	}
	if got := stacked.Percentages.Records[1].Amount; !got.Equal(dec("6.36")) {
		t.Fatalf("second cumulative amount = %s, want 6.36", got)
	}
	if !stacked.RoundedTotal.Equal(dec("112.36")) {
		t.Fatalf("cumulative rounded total = %s", stacked.RoundedTotal)
	}

	if got := p.Price(); !got.Equal(dec("112")) {
		t.Fatalf("Price = %s, want 112", got)
	}
}

func TestJustificationRoundingAdjustment(t *testing.T) {
	machine := mustElementary(t, "MN03020221", "0.03", Machinery)
	indirect := mustElementary(t, "%CIND", "1", Unclassified)
	p := mustCompound(t, "P06")
	mustAppend(t, p, machine, fr("2", "1"))
	mustAppend(t, p, indirect, fr("0.06", "1"))

	j := p.Justification(Cumulative)
	if !j.Machinery.Total.Equal(dec("0.06")) {
		t.Fatalf("machinery total = %s", j.Machinery.Total)
	}
	if !j.Total.Equal(dec("0.0636")) {
		t.Fatalf("total = %s, want 0.0636", j.Total)
	}
	if !j.RoundedTotal.Equal(dec("0.06")) {
		t.Fatalf("rounded total = %s, want 0.06", j.RoundedTotal)
	}
	if !j.Rounding.Equal(dec("-0.0036")) {
		t.Fatalf("rounding = %s, want -0.0036", j.Rounding)
	}
	if !p.RoundedPrice().Equal(j.RoundedTotal) {
		t.Fatalf("RoundedPrice %s differs from justification %s", p.RoundedPrice(), j.RoundedTotal)
	}
}

func TestPriceIsOrderIndependent(t *testing.T) {
	entities := []Price{
		mustElementary(t, "A", "12.345", Labour),
		mustElementary(t, "B", "7.891", Material),
		mustElementary(t, "%C", "1", Unclassified),
		mustElementary(t, "D", "0.555", Machinery),
		mustElementary(t, "%E", "1", Unclassified),
	}
	rates := []FactorRate{fr("1.5", "1"), fr("2", "0.75"), fr("0.03", "1"), fr("3", "1"), fr("0.02", "1")}

	orders := [][]int{
		{0, 1, 2, 3, 4},
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
		{3, 2, 1, 4, 0},
	}
	var wantPrice, wantRounded decimal.Decimal
	for i, order := range orders {
		p := mustCompound(t, "P")
		for _, idx := range order {
			mustAppend(t, p, entities[idx], rates[idx])
		}
		if i == 0 {
			wantPrice, wantRounded = p.Price(), p.RoundedPrice()
			continue
		}
		if !p.Price().Equal(wantPrice) {
			t.Fatalf("order %v: Price = %s, want %s", order, p.Price(), wantPrice)
		}
		if !p.RoundedPrice().Equal(wantRounded) {
			t.Fatalf("order %v: RoundedPrice = %s, want %s", order, p.RoundedPrice(), wantRounded)
		}
	}
}

func TestCyclesAreRejected(t *testing.T) {
	a := mustCompound(t, "A")
	b := mustCompound(t, "B")
	c := mustCompound(t, "C")
	mustAppend(t, b, a, UnitFactorRate())
	mustAppend(t, c, b, UnitFactorRate())

	if _, err := a.AppendComponent(a, UnitFactorRate()); !errors.Is(err, ErrCycle) {
		t.Fatalf("self reference: expected ErrCycle, got %v", err)
	}
	if _, err := a.AppendComponent(c, UnitFactorRate()); !errors.Is(err, ErrCycle) {
		t.Fatalf("indirect cycle: expected ErrCycle, got %v", err)
	}

	pending := a.AppendPendingComponent("C", UnitFactorRate())
	if err := pending.Bind(c); !errors.Is(err, ErrCycle) {
		t.Fatalf("Bind: expected ErrCycle, got %v", err)
	}
	if pending.Resolved() {
		t.Fatalf("pending component must stay unresolved after a rejected bind")
	}
	if err := CheckAcyclic(c); err != nil {
		t.Fatalf("CheckAcyclic on acyclic graph: %v", err)
	}
}

func TestCheckAcyclicReportsPath(t *testing.T) {
	a := mustCompound(t, "A")
	b := mustCompound(t, "B")
	mustAppend(t, a, b, UnitFactorRate())
	// bypass the guarded API to build a loop
	b.components = append(b.components, &Component{entity: a, code: "A", rate: UnitFactorRate(), owner: b})

	err := CheckAcyclic(a)
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
	if err.Error() != "price decomposition cycle: A -> B -> A" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestReplaceConceptAndDetach(t *testing.T) {
	old := mustElementary(t, "OLD", "2", Material)
	replacement := mustElementary(t, "NEW", "3", Material)
	p := mustCompound(t, "P")
	mustAppend(t, p, old, fr("2", "1"))
	mustAppend(t, p, old, fr("1", "1"))

	n, err := p.ReplaceConcept("OLD", replacement)
	if err != nil || n != 2 {
		t.Fatalf("ReplaceConcept = %d, %v", n, err)
	}
	if p.DependsOn("OLD") || !p.DependsOn("NEW") {
		t.Fatalf("dependencies not rewritten")
	}
	if !p.Price().Equal(dec("9")) {
		t.Fatalf("Price = %s, want 9", p.Price())
	}

	first := p.Components()[0]
	if err := first.Detach(); err != nil {
		t.Fatalf("Detach: %v", err)
	}
	if err := first.Detach(); !errors.Is(err, ErrDetached) {
		t.Fatalf("second Detach: expected ErrDetached, got %v", err)
	}
	if p.Len() != 1 {
		t.Fatalf("Len = %d", p.Len())
	}
}

func TestNumberOfWorkers(t *testing.T) {
	crew := mustCompound(t, "CREW")
	for _, code := range []string{"OFFICER", "LABOURER", "HELPER"} {
		mustAppend(t, crew, mustElementary(t, code, "15", Labour), UnitFactorRate())
	}
	steel := mustCompound(t, "STEELWORK")
	mustAppend(t, steel, mustElementary(t, "FIXER", "17", Labour), UnitFactorRate())
	mustAppend(t, steel, mustElementary(t, "FIXER2", "16", Labour), UnitFactorRate())
	mustAppend(t, steel, mustElementary(t, "BAR", "1", Material), fr("10", "1"))

	concrete := mustCompound(t, "CONCRETE")
	mustAppend(t, concrete, crew, fr("0.5", "1"))
	mustAppend(t, concrete, steel, fr("1", "1"))
	mustAppend(t, concrete, mustElementary(t, "MIX", "60", Material), fr("1", "1"))

	if got := concrete.NumberOfWorkers(); got != 5 {
		t.Fatalf("NumberOfWorkers = %d, want 5", got)
	}
}

func TestElementaryComponents(t *testing.T) {
	sand := mustElementary(t, "SAND", "10", Material)
	cement := mustElementary(t, "CEMENT", "100", Material)
	mortar := mustCompound(t, "MORTAR")
	mustAppend(t, mortar, sand, fr("1.2", "1"))
	mustAppend(t, mortar, cement, fr("0.3", "1"))

	wall := mustCompound(t, "WALL")
	mustAppend(t, wall, mortar, fr("0.5", "1"))
	mustAppend(t, wall, sand, fr("0.1", "1"))
	mustAppend(t, wall, mustElementary(t, "%CI", "1", Unclassified), fr("0.03", "1"))

	shares := wall.ElementaryComponents()
	if len(shares) != 2 {
		t.Fatalf("expected 2 shares, got %d", len(shares))
	}
	want := map[string]string{"SAND": "0.7", "CEMENT": "0.15"}
	for _, s := range shares {
		if !s.Product.Equal(dec(want[s.Price.Code()])) {
			t.Fatalf("%s product = %s, want %s", s.Price.Code(), s.Product, want[s.Price.Code()])
		}
	}
}

func TestOverheadsApply(t *testing.T) {
	b := DefaultOverheads().Apply(dec("1000"))
	checks := map[string][2]decimal.Decimal{
		"general expenses":  {b.GeneralExpenses, dec("170")},
		"industrial profit": {b.IndustrialProfit, dec("60")},
		"contract":          {b.Contract, dec("1230")},
		"vat":               {b.VAT, dec("258.30")},
		"total":             {b.Total, dec("1488.30")},
	}
	for name, pair := range checks {
		if !pair[0].Equal(pair[1]) {
			t.Fatalf("%s = %s, want %s", name, pair[0], pair[1])
		}
	}
}

func TestNormalizeUnit(t *testing.T) {
	cases := map[string]string{
		"M3": "m3", "M2": "m2", "Ml": "m", "ML": "m", "Ud": "ud",
		"Kg": "kg", "Tn": "t", "tm": "t", "m.": "m", "h": "h",
	}
	for in, want := range cases {
		if got := NormalizeUnit(in); got != want {
			t.Fatalf("NormalizeUnit(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParsePriceType(t *testing.T) {
	cases := []struct {
		in   string
		want PriceType
	}{
		{"1", Labour},
		{"2", Machinery},
		{"material", Material},
		{"", Unclassified},
	}
	for _, tc := range cases {
		got, err := ParsePriceType(tc.in)
		if err != nil || got != tc.want {
			t.Fatalf("ParsePriceType(%q) = %v, %v", tc.in, got, err)
		}
	}
	if _, err := ParsePriceType("9"); err == nil {
		t.Fatalf("expected error for unknown digit")
	}
}

func TestUnresolvedReferenceErrorUnwraps(t *testing.T) {
	var err error = &UnresolvedReferenceError{Kind: UnresolvedComponentReference, Code: "X", Context: "P"}
	if !errors.Is(err, ErrUnresolvedComponentReference) {
		t.Fatalf("expected ErrUnresolvedComponentReference")
	}
	var target *UnresolvedReferenceError
	if !errors.As(err, &target) || target.Code != "X" {
		t.Fatalf("errors.As failed: %v", err)
	}
}
