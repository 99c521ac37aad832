package reporting

import (
	"errors"
	"slices"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/boq/internal/domain/precision"
	"github.com/mamadbah2/boq/internal/domain/prices"
	"github.com/mamadbah2/boq/internal/service/projects"
)

const sampleFile = "../../../testdata/sample_project.yaml"

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newService(t *testing.T) *Service {
	t.Helper()
	source := projects.NewService(nil, nil, nil)
	if err := source.LoadFile(sampleFile); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	return NewService(source, precision.DefaultFormat(), prices.DefaultOverheads(), nil)
}

func TestSummary(t *testing.T) {
	s, err := newService(t).Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if s.Code != "HOUSE" || s.Chapters != 3 || s.ElementaryPrices != 8 || s.CompoundPrices != 3 || s.QuantityLines != 2 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if !s.RoundedPrice.Equal(dec("2781.42")) || s.Formatted != "2.781,42 €" {
		t.Fatalf("total = %s (%s)", s.RoundedPrice, s.Formatted)
	}
	if !s.Price.Equal(dec("2780.178")) {
		t.Fatalf("full precision total = %s", s.Price)
	}
	if len(s.SubChapters) != 2 || s.SubChapters[1].Depth != 1 || s.Height != 1 {
		t.Fatalf("unexpected outline %+v", s.SubChapters)
	}
}

func TestChapterLookups(t *testing.T) {
	svc := newService(t)
	v, err := svc.Chapter("02")
	if err != nil || !v.RoundedPrice.Equal(dec("1281.42")) {
		t.Fatalf("Chapter(02) = %+v, %v", v, err)
	}
	at, err := svc.ChapterAt([]int{1})
	if err != nil || at.Code != "01" || !at.RoundedPrice.Equal(dec("1500")) {
		t.Fatalf("ChapterAt([1]) = %+v, %v", at, err)
	}
	if _, err := svc.Chapter("99"); !errors.Is(err, ErrChapterNotFound) {
		t.Fatalf("expected ErrChapterNotFound, got %v", err)
	}
	if _, err := svc.ChapterAt([]int{5}); !errors.Is(err, ErrChapterNotFound) {
		t.Fatalf("expected ErrChapterNotFound, got %v", err)
	}
}

func TestPriceView(t *testing.T) {
	svc := newService(t)
	wall, err := svc.Price("WALL")
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if !wall.Compound || wall.Workers != 2 || len(wall.Components) != 3 {
		t.Fatalf("unexpected WALL view %+v", wall)
	}
	if !wall.Price.Equal(dec("23.732")) || !wall.RoundedPrice.Equal(dec("23.73")) {
		t.Fatalf("WALL = %s / %s", wall.Price, wall.RoundedPrice)
	}

	cement, err := svc.Price("MT001")
	if err != nil || cement.Unit != "t" || cement.Type != "material" {
		t.Fatalf("MT001 view = %+v, %v", cement, err)
	}
	if _, err := svc.Price("NOPE"); !errors.Is(err, ErrPriceNotFound) {
		t.Fatalf("expected ErrPriceNotFound, got %v", err)
	}
}

func TestJustification(t *testing.T) {
	svc := newService(t)
	j, err := svc.Justification("REBAR", prices.NonCumulative)
	if err != nil {
		t.Fatalf("Justification: %v", err)
	}
	if !j.Labour.Total.Equal(dec("0.2")) || !j.Material.Total.Equal(dec("1.26")) {
		t.Fatalf("labour %s material %s", j.Labour.Total, j.Material.Total)
	}
	if !j.Base.Equal(dec("1.46")) || !j.Total.Equal(dec("1.5038")) {
		t.Fatalf("base %s total %s", j.Base, j.Total)
	}
	if !j.RoundedTotal.Equal(dec("1.5")) || !j.Rounding.Equal(dec("-0.0038")) {
		t.Fatalf("rounded %s rounding %s", j.RoundedTotal, j.Rounding)
	}
	if len(j.Machinery.Lines) != 0 || j.Mode != "non_cumulative" {
		t.Fatalf("unexpected view %+v", j)
	}

	if _, err := svc.Justification("MT001", prices.Cumulative); !errors.Is(err, ErrNotCompound) {
		t.Fatalf("expected ErrNotCompound, got %v", err)
	}
}

func TestQuantities(t *testing.T) {
	svc := newService(t)
	rows, err := svc.Quantities("", 12)
	if err != nil {
		t.Fatalf("Quantities: %v", err)
	}
	if len(rows) != 2 || rows[0].Code != "REBAR" || rows[1].Code != "WALL" {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if rows[0].Title != "Steel rei..." {
		t.Fatalf("title not truncated: %q", rows[0].Title)
	}

	labour := prices.Labour
	elementary, err := svc.ElementaryQuantities("", QuantityFilter{Type: &labour}, 0)
	if err != nil {
		t.Fatalf("ElementaryQuantities: %v", err)
	}
	if len(elementary) != 2 {
		t.Fatalf("labour rows = %+v", elementary)
	}
	for _, r := range elementary {
		want := map[string]string{"MO001": "37", "MO002": "1.62"}[r.Code]
		if !r.Quantity.Equal(dec(want)) {
			t.Fatalf("%s quantity = %s, want %s", r.Code, r.Quantity, want)
		}
	}

	tonnes, err := svc.ElementaryQuantities("02", QuantityFilter{Unit: "t"}, 0)
	if err != nil || len(tonnes) != 2 {
		t.Fatalf("tonne rows = %+v, %v", tonnes, err)
	}
}

func TestEmployedPrices(t *testing.T) {
	svc := newService(t)
	got, err := svc.EmployedPrices("", dec("100"), false)
	if err != nil || !slices.Equal(got, []string{"REBAR"}) {
		t.Fatalf("EmployedPrices = %v, %v", got, err)
	}
	got, err = svc.EmployedPrices("02", dec("1"), true)
	if err != nil || !slices.Equal(got, []string{"MO001", "MORT", "BRICK"}) {
		t.Fatalf("elementary EmployedPrices = %v, %v", got, err)
	}
	got, err = svc.EmployedPrices("01", dec("5000"), false)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("expected an empty list, got %v, %v", got, err)
	}
}

func TestBudget(t *testing.T) {
	b, err := newService(t).Budget()
	if err != nil {
		t.Fatalf("Budget: %v", err)
	}
	// 2781.42 + 472.84 + 166.89 = 3421.15; VAT 718.44
	if !b.GeneralExpenses.Equal(dec("472.84")) || !b.IndustrialProfit.Equal(dec("166.89")) {
		t.Fatalf("overheads %s %s", b.GeneralExpenses, b.IndustrialProfit)
	}
	if !b.Contract.Equal(dec("3421.15")) || !b.VAT.Equal(dec("718.44")) || !b.Total.Equal(dec("4139.59")) {
		t.Fatalf("budget %+v", b)
	}
}
