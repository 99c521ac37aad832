// Package chapter implements the chapter tree of a project: every node owns
// its sub-chapters, a price catalog and a list of quantity lines.
package chapter

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/boq/internal/domain/catalog"
	"github.com/mamadbah2/boq/internal/domain/measurements"
	"github.com/mamadbah2/boq/internal/domain/precision"
	"github.com/mamadbah2/boq/internal/domain/prices"
)

var (
	// ErrDetached is returned when a non-root chapter has no owner.
	ErrDetached = errors.New("chapter is not attached to a project")
	// ErrAlreadyOwned is returned when attaching a chapter that has an owner.
	ErrAlreadyOwned = errors.New("chapter already has an owner")
	// ErrInvalidChild is returned when attaching a root or an ancestor.
	ErrInvalidChild = errors.New("chapter cannot be attached here")
)

// Chapter is a node of the project tree.
type Chapter struct {
	code        string
	title       string
	rate        prices.FactorRate
	subChapters []*Chapter
	catalog     *catalog.Catalog
	quantities  *measurements.Quantities
	owner       *Chapter
	root        bool
	logger      *zap.Logger
}

// Option customises a chapter.
type Option func(*Chapter)

// WithFactorRate sets the multiplier applied to the chapter total.
func WithFactorRate(fr prices.FactorRate) Option {
	return func(c *Chapter) { c.rate = fr }
}

// WithLogger sets the logger of the chapter and its catalog.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Chapter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPolicy sets how unresolved component references are handled.
func WithPolicy(p catalog.Policy) Option {
	return func(c *Chapter) { c.catalog.SetPolicy(p) }
}

// New returns a detached chapter with a 1 x 1 factor/rate.
func New(code, title string, opts ...Option) *Chapter {
	c := &Chapter{
		code:       code,
		title:      title,
		rate:       prices.UnitFactorRate(),
		catalog:    catalog.New(),
		quantities: measurements.NewQuantities(),
		logger:     zap.L(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.catalog.SetLogger(c.logger)
	return c
}

func (c *Chapter) Code() string                         { return c.code }
func (c *Chapter) Title() string                        { return c.title }
func (c *Chapter) FactorRate() prices.FactorRate        { return c.rate }
func (c *Chapter) Catalog() *catalog.Catalog            { return c.catalog }
func (c *Chapter) Quantities() *measurements.Quantities { return c.quantities }
func (c *Chapter) Owner() *Chapter                      { return c.owner }
func (c *Chapter) IsRoot() bool                         { return c.root }
func (c *Chapter) Logger() *zap.Logger                  { return c.logger }

func (c *Chapter) SetTitle(title string)               { c.title = title }
func (c *Chapter) SetFactorRate(fr prices.FactorRate) { c.rate = fr }

// SubChapters returns the children in order.
func (c *Chapter) SubChapters() []*Chapter {
	out := make([]*Chapter, len(c.subChapters))
	copy(out, c.subChapters)
	return out
}

// AddSubChapter attaches sub as the last child. The child inherits the
// logger and the reference policy of c.
func (c *Chapter) AddSubChapter(sub *Chapter) error {
	if sub == nil {
		return ErrInvalidChild
	}
	if sub.owner != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyOwned, sub.code)
	}
	if sub.root {
		return fmt.Errorf("%w: %s is a project root", ErrInvalidChild, sub.code)
	}
	for cur := c; cur != nil; cur = cur.owner {
		if cur == sub {
			return fmt.Errorf("%w: %s is an ancestor of %s", ErrInvalidChild, sub.code, c.code)
		}
	}
	sub.owner = c
	c.subChapters = append(c.subChapters, sub)
	policy := c.catalog.Policy()
	sub.walk(func(ch *Chapter) {
		ch.logger = c.logger
		ch.catalog.SetLogger(c.logger)
		ch.catalog.SetPolicy(policy)
	})
	return nil
}

// NewSubChapter creates a chapter and attaches it to c.
func (c *Chapter) NewSubChapter(code, title string, opts ...Option) (*Chapter, error) {
	sub := New(code, title, opts...)
	if err := c.AddSubChapter(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// RemoveSubChapter detaches sub and reports whether it was a child of c.
func (c *Chapter) RemoveSubChapter(sub *Chapter) bool {
	for i, existing := range c.subChapters {
		if existing == sub {
			c.subChapters = append(c.subChapters[:i], c.subChapters[i+1:]...)
			sub.owner = nil
			return true
		}
	}
	return false
}

// walk visits c and its descendants in pre-order.
func (c *Chapter) walk(fn func(*Chapter)) {
	fn(c)
	for _, sub := range c.subChapters {
		sub.walk(fn)
	}
}

// NewElementaryPrice defines an elementary price in this chapter's catalog.
func (c *Chapter) NewElementaryPrice(code, title, unit string, price decimal.Decimal, t prices.PriceType) (*prices.ElementaryPrice, error) {
	return c.catalog.NewElementaryPrice(code, title, unit, price, t)
}

// NewCompoundPrice defines a compound price in this chapter's catalog,
// resolving components with ResolvePrice.
func (c *Chapter) NewCompoundPrice(code, title, unit string, specs []catalog.ComponentSpec) (*prices.CompoundPrice, error) {
	return c.catalog.NewCompoundPrice(code, title, unit, specs, c)
}

// AppendQuantities measures the price resolved for code in this chapter.
func (c *Chapter) AppendQuantities(code string, ms ...measurements.Measurement) (*measurements.UnitPriceQuantities, error) {
	p, ok := c.ResolvePrice(code)
	if !ok {
		c.logger.Error("quantity reference not found",
			zap.String("chapter", c.code),
			zap.String("price", code),
		)
		return nil, &prices.UnresolvedReferenceError{
			Kind:    prices.UnresolvedQuantityReference,
			Code:    code,
			Context: "chapter " + c.code,
		}
	}
	return c.quantities.Append(p, ms...)
}

// Price is (sub-chapters + own quantities) * factor/rate product.
func (c *Chapter) Price() decimal.Decimal {
	total := c.quantities.Price()
	for _, sub := range c.subChapters {
		total = total.Add(sub.Price())
	}
	return total.Mul(c.rate.Product())
}

// RoundedPrice is Price built from rounded lines and the rounded product.
func (c *Chapter) RoundedPrice() decimal.Decimal {
	total := c.quantities.RoundedPrice()
	for _, sub := range c.subChapters {
		total = total.Add(sub.RoundedPrice())
	}
	return precision.RoundPrice(total.Mul(c.rate.RoundedProduct()))
}

// HasQuantities reports whether any chapter of the subtree measures something.
func (c *Chapter) HasQuantities() bool {
	found := false
	c.walk(func(ch *Chapter) {
		if ch.quantities.Len() > 0 {
			found = true
		}
	})
	return found
}

// Stats counts the elements of the subtree.
type Stats struct {
	Chapters         int
	ElementaryPrices int
	CompoundPrices   int
	QuantityLines    int
}

// Stats counts chapters, prices and quantity lines in the subtree.
func (c *Chapter) Stats() Stats {
	var s Stats
	c.walk(func(ch *Chapter) {
		s.Chapters++
		s.ElementaryPrices += len(ch.catalog.Elementary())
		s.CompoundPrices += len(ch.catalog.Compound())
		s.QuantityLines += ch.quantities.Len()
	})
	return s
}

// Copy returns a detached deep copy of the subtree. Catalog entries and
// quantity lines point at the same price values.
func (c *Chapter) Copy() *Chapter {
	out := &Chapter{
		code:       c.code,
		title:      c.title,
		rate:       c.rate,
		catalog:    c.catalog.Copy(),
		quantities: c.quantities.Copy(),
		logger:     c.logger,
	}
	for _, sub := range c.subChapters {
		cp := sub.Copy()
		cp.owner = out
		out.subChapters = append(out.subChapters, cp)
	}
	return out
}

// PrintTree writes the chapter outline with rounded totals.
func (c *Chapter) PrintTree(w io.Writer, f precision.Format) error {
	var err error
	base := c.FindDepth()
	c.walk(func(ch *Chapter) {
		if err != nil {
			return
		}
		indent := strings.Repeat("  ", ch.FindDepth()-base)
		_, err = fmt.Fprintf(w, "%s%s %s: %s\n", indent, ch.code, ch.title, f.Price(ch.RoundedPrice()))
	})
	return err
}
