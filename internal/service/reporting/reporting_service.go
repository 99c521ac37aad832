package reporting

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/boq/internal/domain/chapter"
	"github.com/mamadbah2/boq/internal/domain/measurements"
	"github.com/mamadbah2/boq/internal/domain/models"
	"github.com/mamadbah2/boq/internal/domain/precision"
	"github.com/mamadbah2/boq/internal/domain/prices"
)

var (
	// ErrChapterNotFound is returned for unknown chapter codes.
	ErrChapterNotFound = errors.New("chapter not found")
	// ErrPriceNotFound is returned for unknown price codes.
	ErrPriceNotFound = errors.New("price not found")
	// ErrNotCompound is returned when justifying an elementary price.
	ErrNotCompound = errors.New("price has no decomposition")
)

// ProjectSource gives read access to the current project.
type ProjectSource interface {
	View(fn func(*chapter.Project) error) error
}

// QuantityFilter narrows elementary quantity listings. Empty fields match all.
type QuantityFilter struct {
	Unit string
	Type *prices.PriceType
}

// Service builds report payloads from the current project.
type Service struct {
	source    ProjectSource
	format    precision.Format
	overheads prices.Overheads
	logger    *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(source ProjectSource, format precision.Format, overheads prices.Overheads, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, format: format, overheads: overheads, logger: logger}
}

// Summary returns the project outline with totals and element counts.
func (s *Service) Summary() (models.ProjectSummary, error) {
	var out models.ProjectSummary
	err := s.source.View(func(p *chapter.Project) error {
		stats := p.Stats()
		out = models.ProjectSummary{
			ChapterView:      s.chapterView(p.Chapter),
			Chapters:         stats.Chapters,
			ElementaryPrices: stats.ElementaryPrices,
			CompoundPrices:   stats.CompoundPrices,
			QuantityLines:    stats.QuantityLines,
			Height:           p.Height(),
		}
		return nil
	})
	return out, err
}

// Chapter returns the view of the chapter with the given code.
func (s *Service) Chapter(code string) (models.ChapterView, error) {
	var out models.ChapterView
	err := s.withChapter(code, func(ch *chapter.Chapter) error {
		out = s.chapterView(ch)
		return nil
	})
	return out, err
}

// ChapterAt returns the chapter found by following 1-based indices.
func (s *Service) ChapterAt(path []int) (models.ChapterView, error) {
	var out models.ChapterView
	err := s.source.View(func(p *chapter.Project) error {
		ch := p.FindSubChapter(path)
		if ch == nil {
			return fmt.Errorf("%w: path %v", ErrChapterNotFound, path)
		}
		out = s.chapterView(ch)
		return nil
	})
	return out, err
}

// Price describes the price defined for code.
func (s *Service) Price(code string) (models.PriceView, error) {
	var out models.PriceView
	err := s.source.View(func(p *chapter.Project) error {
		found, ok := p.FindPrice(code)
		if !ok {
			return fmt.Errorf("%w: %s", ErrPriceNotFound, code)
		}
		out = models.PriceView{
			Code:            found.Code(),
			Title:           found.Title(),
			Unit:            prices.NormalizeUnit(found.Unit()),
			Type:            found.Type().String(),
			LongDescription: found.LongDescription(),
			Price:           found.Price(),
			RoundedPrice:    found.RoundedPrice(),
			Formatted:       s.format.Money(found.RoundedPrice()),
			Compound:        found.IsCompound(),
			Percentage:      found.IsPercentage(),
		}
		if cp, ok := found.(*prices.CompoundPrice); ok {
			out.Workers = cp.NumberOfWorkers()
			for _, c := range cp.Components() {
				fr := c.FactorRate()
				out.Components = append(out.Components, models.ComponentView{
					Code:           c.ReferencedCode(),
					Factor:         fr.Factor,
					ProductionRate: fr.Rate,
					Product:        fr.Product(),
					Amount:         c.Price(),
				})
			}
		}
		return nil
	})
	return out, err
}

// Justification breaks a compound price down by category.
func (s *Service) Justification(code string, mode prices.PercentageMode) (models.JustificationView, error) {
	var out models.JustificationView
	err := s.source.View(func(p *chapter.Project) error {
		found, ok := p.FindPrice(code)
		if !ok {
			return fmt.Errorf("%w: %s", ErrPriceNotFound, code)
		}
		cp, ok := found.(*prices.CompoundPrice)
		if !ok || !cp.IsCompound() {
			return fmt.Errorf("%w: %s", ErrNotCompound, code)
		}
		j := cp.Justification(mode)
		out = models.JustificationView{
			Code:         j.Code,
			Title:        j.Title,
			Unit:         prices.NormalizeUnit(j.Unit),
			Mode:         j.Mode.String(),
			Labour:       section(j.Labour),
			Machinery:    section(j.Machinery),
			Material:     section(j.Material),
			Other:        section(j.Other),
			Percentages:  section(j.Percentages),
			Base:         j.Base,
			Total:        j.Total,
			Rounding:     j.Rounding,
			RoundedTotal: j.RoundedTotal,
			Formatted:    s.format.Money(j.RoundedTotal),
		}
		return nil
	})
	return out, err
}

// Quantities lists the measured prices of a chapter subtree, largest amount first.
func (s *Service) Quantities(chapterCode string, limitTextWidth int) ([]models.QuantityRow, error) {
	var out []models.QuantityRow
	err := s.withChapter(chapterCode, func(ch *chapter.Chapter) error {
		out = s.rows(ch.QuantitiesReport(), limitTextWidth)
		return nil
	})
	return out, err
}

// ElementaryQuantities lists elementary resources consumed by a chapter subtree.
func (s *Service) ElementaryQuantities(chapterCode string, filter QuantityFilter, limitTextWidth int) ([]models.QuantityRow, error) {
	var out []models.QuantityRow
	err := s.withChapter(chapterCode, func(ch *chapter.Chapter) error {
		report := ch.ElementaryQuantities()
		if filter.Unit != "" {
			report = report.Filter(measurements.ByUnit(filter.Unit))
		}
		if filter.Type != nil {
			report = report.Filter(measurements.ByType(*filter.Type))
		}
		out = s.rows(report, limitTextWidth)
		return nil
	})
	return out, err
}

// EmployedPrices lists the codes measured above lower. With elementary set,
// compound prices are replaced by their direct components.
func (s *Service) EmployedPrices(chapterCode string, lower decimal.Decimal, elementary bool) ([]string, error) {
	var out []string
	err := s.withChapter(chapterCode, func(ch *chapter.Chapter) error {
		if elementary {
			out = ch.EmployedElementaryPrices(lower, nil)
		} else {
			out = ch.EmployedPrices(lower)
		}
		return nil
	})
	if out == nil {
		out = []string{}
	}
	return out, err
}

// Budget applies the configured overheads to the project total.
func (s *Service) Budget() (models.BudgetView, error) {
	var out models.BudgetView
	err := s.source.View(func(p *chapter.Project) error {
		b := p.Budget(s.overheads)
		out = models.BudgetView{
			Execution:        b.Execution,
			GeneralExpenses:  b.GeneralExpenses,
			IndustrialProfit: b.IndustrialProfit,
			Contract:         b.Contract,
			VAT:              b.VAT,
			Total:            b.Total,
			Formatted:        s.format.Money(b.Total),
		}
		return nil
	})
	return out, err
}

func (s *Service) withChapter(code string, fn func(*chapter.Chapter) error) error {
	return s.source.View(func(p *chapter.Project) error {
		ch := p.Chapter
		if code != "" {
			ch = p.FindChapter(code)
		}
		if ch == nil {
			s.logger.Debug("chapter lookup failed", zap.String("code", code))
			return fmt.Errorf("%w: %s", ErrChapterNotFound, code)
		}
		return fn(ch)
	})
}

func (s *Service) chapterView(ch *chapter.Chapter) models.ChapterView {
	rounded := ch.RoundedPrice()
	v := models.ChapterView{
		Code:         ch.Code(),
		Title:        ch.Title(),
		Price:        ch.Price(),
		RoundedPrice: rounded,
		Formatted:    s.format.Money(rounded),
		Depth:        ch.FindDepth(),
	}
	for _, sub := range ch.SubChapters() {
		v.SubChapters = append(v.SubChapters, s.chapterView(sub))
	}
	return v
}

func (s *Service) rows(report *measurements.Report, limitTextWidth int) []models.QuantityRow {
	rows := report.Rows(measurements.RowOptions{LimitTextWidth: limitTextWidth})
	out := make([]models.QuantityRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.QuantityRow{
			Code:      r.Code,
			Title:     r.Title,
			Quantity:  r.Quantity,
			Unit:      r.Unit,
			UnitPrice: r.UnitPrice,
			Amount:    r.Amount,
			Formatted: s.format.Money(r.Amount),
		})
	}
	return out
}

func section(g prices.JustificationGroup) models.JustificationSection {
	out := models.JustificationSection{Lines: []models.JustificationLine{}, Total: g.Total}
	for _, r := range g.Records {
		out.Lines = append(out.Lines, models.JustificationLine{
			Code:      r.Code,
			Title:     r.Title,
			Unit:      prices.NormalizeUnit(r.Unit),
			Product:   r.Product,
			UnitPrice: r.UnitPrice,
			Amount:    r.Amount,
		})
	}
	return out
}
