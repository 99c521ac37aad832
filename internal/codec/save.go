package codec

import (
	"github.com/mamadbah2/boq/internal/domain/chapter"
	"github.com/mamadbah2/boq/internal/domain/measurements"
)

// Save converts a project into a Document.
func Save(p *chapter.Project) Document {
	return Document{Version: CurrentVersion, Project: SaveChapter(p.Chapter)}
}

// SaveChapter converts a chapter subtree into records.
func SaveChapter(c *chapter.Chapter) ChapterRecord {
	fr := c.FactorRate()
	rec := ChapterRecord{
		Code:           c.Code(),
		Title:          c.Title(),
		Factor:         ptr(fr.Factor),
		ProductionRate: ptr(fr.Rate),
	}

	for _, p := range c.Catalog().Elementary() {
		rec.Prices.Elementary = append(rec.Prices.Elementary, ElementaryRecord{
			Code:            p.Code(),
			Title:           p.Title(),
			Unit:            p.Unit(),
			LongDescription: p.LongDescription(),
			Price:           p.Price(),
			Type:            p.Type(),
		})
	}
	for _, p := range c.Catalog().Compound() {
		cr := CompoundRecord{
			Code:            p.Code(),
			Title:           p.Title(),
			Unit:            p.Unit(),
			LongDescription: p.LongDescription(),
			Components:      []ComponentRecord{},
		}
		for _, comp := range p.Components() {
			rate := comp.FactorRate()
			cr.Components = append(cr.Components, ComponentRecord{
				Code:           comp.ReferencedCode(),
				Factor:         ptr(rate.Factor),
				ProductionRate: ptr(rate.Rate),
			})
		}
		rec.Prices.Compound = append(rec.Prices.Compound, cr)
	}

	for _, u := range c.Quantities().Items() {
		qr := UnitPriceQuantityRecord{PriceCode: u.ReferencedCode(), Measurements: []MeasurementRecord{}}
		for _, m := range u.Measurements() {
			qr.Measurements = append(qr.Measurements, saveMeasurement(m))
		}
		rec.Quantities = append(rec.Quantities, qr)
	}

	for _, sub := range c.SubChapters() {
		rec.SubChapters = append(rec.SubChapters, SaveChapter(sub))
	}
	return rec
}

func saveMeasurement(m measurements.Measurement) MeasurementRecord {
	return MeasurementRecord{
		Comment: m.Comment,
		Units:   m.Units,
		Length:  m.Length,
		Width:   m.Width,
		Height:  m.Height,
	}
}
