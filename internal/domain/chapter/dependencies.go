package chapter

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/boq/internal/domain/measurements"
	"github.com/mamadbah2/boq/internal/domain/prices"
)

// ConceptsThatDependOn returns every component and quantity line of the
// subtree that references code.
func (c *Chapter) ConceptsThatDependOn(code string) []prices.Dependent {
	var out []prices.Dependent
	c.walk(func(ch *Chapter) {
		out = append(out, ch.catalog.ConceptsThatDependOn(code)...)
		out = append(out, ch.quantities.ConceptsThatDependOn(code)...)
	})
	return out
}

// RemoveConcept deletes the definitions of code from every catalog of the
// subtree and returns how many were removed. Dependents are not touched;
// use PurgeConcept to drop them as well.
func (c *Chapter) RemoveConcept(code string) int {
	removed := 0
	c.walk(func(ch *Chapter) {
		if ch.catalog.RemoveConcept(code) {
			removed++
		}
	})
	return removed
}

// PurgeConcept detaches every dependent of code and then removes its
// definitions. It returns the detached dependents.
func (c *Chapter) PurgeConcept(code string) ([]prices.Dependent, error) {
	deps := c.ConceptsThatDependOn(code)
	var errs []error
	for _, d := range deps {
		if err := d.Detach(); err != nil {
			errs = append(errs, fmt.Errorf("detach %s: %w", d.ReferencedCode(), err))
		}
	}
	c.RemoveConcept(code)
	return deps, errors.Join(errs...)
}

// Replacement swaps every use of OldCode for New.
type Replacement struct {
	OldCode string
	New     prices.Price
}

// ReplacePrices processes the pairs in order. For each pair the dependents
// are collected and checked first. Only when every dependent accepts the
// new price are they repointed and the old definition removed, so a
// rejected pair leaves the tree as it was.
func (c *Chapter) ReplacePrices(replacements []Replacement) error {
	var errs []error
	for _, r := range replacements {
		if r.New == nil {
			errs = append(errs, fmt.Errorf("replace %s: %w", r.OldCode, prices.ErrNilPrice))
			continue
		}
		dependents := c.ConceptsThatDependOn(r.OldCode)
		var rejected []error
		for _, d := range dependents {
			if err := d.CheckRepoint(r.New); err != nil {
				rejected = append(rejected, fmt.Errorf("replace %s with %s: %w", r.OldCode, r.New.Code(), err))
			}
		}
		if len(rejected) > 0 {
			errs = append(errs, rejected...)
			continue
		}
		for _, d := range dependents {
			if err := d.Repoint(r.New); err != nil {
				errs = append(errs, fmt.Errorf("replace %s with %s: %w", r.OldCode, r.New.Code(), err))
			}
		}
		c.RemoveConcept(r.OldCode)
		c.logger.Debug("price replaced", zap.String("old", r.OldCode), zap.String("new", r.New.Code()))
	}
	return errors.Join(errs...)
}

// QuantitiesReport accumulates the quantities of the subtree, own lines first.
func (c *Chapter) QuantitiesReport() *measurements.Report {
	r := c.quantities.Report()
	for _, sub := range c.subChapters {
		r.Merge(sub.QuantitiesReport())
	}
	return r
}

// ElementaryQuantities expands the subtree quantities down to elementary prices.
func (c *Chapter) ElementaryQuantities() *measurements.Report {
	return c.QuantitiesReport().ElementaryQuantities()
}

// EmployedPrices returns the codes measured above lower.
func (c *Chapter) EmployedPrices(lower decimal.Decimal) []string {
	return c.QuantitiesReport().EmployedPrices(lower)
}

// EmployedElementaryPrices expands compound prices one level and keeps the
// prices accepted by keep (nil keeps all).
func (c *Chapter) EmployedElementaryPrices(lower decimal.Decimal, keep func(prices.Price) bool) []string {
	return c.QuantitiesReport().EmployedElementaryPrices(lower, keep)
}

// ExtractConcepts adds the prices found for codes to the catalog of
// recipient. The source is left unchanged.
func (c *Chapter) ExtractConcepts(codes []string, recipient *Chapter) error {
	var errs []error
	for _, code := range codes {
		p, ok := c.FindPrice(code)
		if !ok {
			errs = append(errs, &prices.UnresolvedReferenceError{
				Kind:    prices.UnresolvedComponentReference,
				Code:    code,
				Context: "extraction from " + c.code,
			})
			continue
		}
		errs = append(errs, recipient.adopt(p))
	}
	return errors.Join(errs...)
}

// ExtractConceptsRegex adds every price whose code matches re to recipient.
func (c *Chapter) ExtractConceptsRegex(re *regexp.Regexp, recipient *Chapter) error {
	var errs []error
	for _, p := range c.FindPricesRegex(re) {
		errs = append(errs, recipient.adopt(p))
	}
	return errors.Join(errs...)
}

func (c *Chapter) adopt(p prices.Price) error {
	if existing, ok := c.catalog.FindPrice(p.Code()); ok && existing == p {
		return nil
	}
	return c.catalog.Add(p)
}

// ExtractChapters attaches copies of the chapters found for codes to recipient.
func (c *Chapter) ExtractChapters(codes []string, recipient *Chapter) error {
	var errs []error
	for _, code := range codes {
		found := c.FindChapter(code)
		if found == nil {
			errs = append(errs, fmt.Errorf("chapter %s not found under %s", code, c.code))
			continue
		}
		errs = append(errs, recipient.AddSubChapter(found.Copy()))
	}
	return errors.Join(errs...)
}

// DanglingReference is a reference whose price is not defined anywhere in
// the tree or was never resolved.
type DanglingReference struct {
	Chapter   string
	Dependent prices.Dependent
}

// DanglingReferences lists the components and quantity lines of the subtree
// whose code has no definition under the top of the tree.
func (c *Chapter) DanglingReferences() []DanglingReference {
	top := c
	for top.owner != nil {
		top = top.owner
	}

	var out []DanglingReference
	check := func(ch *Chapter, d prices.Dependent, resolved bool) {
		if _, ok := top.FindPrice(d.ReferencedCode()); !ok || !resolved {
			out = append(out, DanglingReference{Chapter: ch.code, Dependent: d})
		}
	}
	c.walk(func(ch *Chapter) {
		for _, p := range ch.catalog.Compound() {
			for _, comp := range p.Components() {
				check(ch, comp, comp.Resolved())
			}
		}
		for _, u := range ch.quantities.Items() {
			check(ch, u, u.Resolved())
		}
	})
	return out
}

// CodeCollisions returns, for every code defined in more than one catalog of
// the subtree, the codes of the defining chapters in pre-order.
func (c *Chapter) CodeCollisions() map[string][]string {
	defs := make(map[string][]string)
	c.walk(func(ch *Chapter) {
		for _, p := range ch.catalog.Prices() {
			defs[p.Code()] = append(defs[p.Code()], ch.code)
		}
	})
	for code, chapters := range defs {
		if len(chapters) < 2 {
			delete(defs, code)
		}
	}
	return defs
}

// Validate reports dangling references and decomposition cycles.
func (c *Chapter) Validate() error {
	var errs []error
	for _, d := range c.DanglingReferences() {
		kind := prices.UnresolvedComponentReference
		if _, ok := d.Dependent.(*measurements.UnitPriceQuantities); ok {
			kind = prices.UnresolvedQuantityReference
		}
		errs = append(errs, &prices.UnresolvedReferenceError{
			Kind:    kind,
			Code:    d.Dependent.ReferencedCode(),
			Context: "chapter " + d.Chapter,
		})
	}
	c.walk(func(ch *Chapter) {
		for _, p := range ch.catalog.Compound() {
			if err := prices.CheckAcyclic(p); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}

// SortedCollisionCodes returns the colliding codes in lexical order.
func SortedCollisionCodes(collisions map[string][]string) []string {
	codes := make([]string, 0, len(collisions))
	for code := range collisions {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
