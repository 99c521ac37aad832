// Package catalog stores the prices defined by one chapter.
package catalog

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/boq/internal/domain/prices"
)

// ErrDuplicateCode is returned when a code is already defined in the catalog.
var ErrDuplicateCode = errors.New("price code already defined in catalog")

// Policy decides what happens to a compound price with unresolved references.
type Policy int

const (
	// Lenient keeps the price without the missing lines.
	Lenient Policy = iota
	// Strict refuses to insert the price.
	Strict
)

// Resolver finds a price by code in the scope of the caller.
type Resolver interface {
	ResolvePrice(code string) (prices.Price, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(code string) (prices.Price, bool)

func (f ResolverFunc) ResolvePrice(code string) (prices.Price, bool) { return f(code) }

// ComponentSpec describes a component by the code it references.
type ComponentSpec struct {
	Code string
	Rate prices.FactorRate
}

// Catalog keeps elementary and compound prices in insertion order.
type Catalog struct {
	elementary ordered[*prices.ElementaryPrice]
	compound   ordered[*prices.CompoundPrice]
	policy     Policy
	logger     *zap.Logger
}

// Option customises a Catalog.
type Option func(*Catalog)

// WithPolicy selects how unresolved references are handled.
func WithPolicy(p Policy) Option {
	return func(c *Catalog) { c.policy = p }
}

// WithLogger sets the logger used for reference problems.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns an empty catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		elementary: newOrdered[*prices.ElementaryPrice](),
		compound:   newOrdered[*prices.CompoundPrice](),
		logger:     zap.L(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetLogger replaces the logger.
func (c *Catalog) SetLogger(logger *zap.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Policy returns the unresolved reference policy.
func (c *Catalog) Policy() Policy { return c.policy }

// SetPolicy changes the unresolved reference policy.
func (c *Catalog) SetPolicy(p Policy) { c.policy = p }

// Len returns the number of prices of both kinds.
func (c *Catalog) Len() int { return c.elementary.len() + c.compound.len() }

// FindPrice looks code up in the elementary then the compound mapping.
func (c *Catalog) FindPrice(code string) (prices.Price, bool) {
	if p, ok := c.elementary.get(code); ok {
		return p, true
	}
	if p, ok := c.compound.get(code); ok {
		return p, true
	}
	return nil, false
}

// Contains reports whether code is defined here.
func (c *Catalog) Contains(code string) bool {
	_, ok := c.FindPrice(code)
	return ok
}

// Add inserts an existing price. Codes must be unique across both mappings.
func (c *Catalog) Add(p prices.Price) error {
	if p == nil {
		return prices.ErrNilPrice
	}
	if c.Contains(p.Code()) {
		return fmt.Errorf("%w: %s", ErrDuplicateCode, p.Code())
	}
	switch v := p.(type) {
	case *prices.ElementaryPrice:
		c.elementary.put(v.Code(), v)
	case *prices.CompoundPrice:
		c.compound.put(v.Code(), v)
	}
	return nil
}

// NewElementaryPrice creates an elementary price and stores it.
func (c *Catalog) NewElementaryPrice(code, title, unit string, price decimal.Decimal, t prices.PriceType) (*prices.ElementaryPrice, error) {
	p, err := prices.NewElementaryPrice(code, title, unit, price, t)
	if err != nil {
		return nil, err
	}
	if err := c.Add(p); err != nil {
		return nil, err
	}
	return p, nil
}

// NewCompoundPrice creates a compound price resolving every component
// through resolver. Unresolved codes are logged and reported in the returned
// error as *prices.UnresolvedReferenceError values. Under the Lenient policy
// the price is stored without those lines and returned alongside the error;
// under Strict nothing is stored and the price is nil.
func (c *Catalog) NewCompoundPrice(code, title, unit string, specs []ComponentSpec, resolver Resolver) (*prices.CompoundPrice, error) {
	p, err := prices.NewCompoundPrice(code, title, unit)
	if err != nil {
		return nil, err
	}
	if c.Contains(code) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, code)
	}

	var problems []error
	for _, spec := range specs {
		entity, ok := resolver.ResolvePrice(spec.Code)
		if !ok {
			c.logger.Error("component reference not found",
				zap.String("price", code),
				zap.String("component", spec.Code),
			)
			problems = append(problems, &prices.UnresolvedReferenceError{
				Kind:    prices.UnresolvedComponentReference,
				Code:    spec.Code,
				Context: code,
			})
			continue
		}
		if _, err := p.AppendComponent(entity, spec.Rate); err != nil {
			problems = append(problems, fmt.Errorf("component %s of %s: %w", spec.Code, code, err))
		}
	}

	refErr := errors.Join(problems...)
	if refErr != nil && c.policy == Strict {
		return nil, refErr
	}
	c.compound.put(code, p)
	return p, refErr
}

// Elementary returns the elementary prices in insertion order.
func (c *Catalog) Elementary() []*prices.ElementaryPrice { return c.elementary.values() }

// Compound returns the compound prices in insertion order.
func (c *Catalog) Compound() []*prices.CompoundPrice { return c.compound.values() }

// Prices returns elementary then compound prices.
func (c *Catalog) Prices() []prices.Price {
	out := make([]prices.Price, 0, c.Len())
	for _, p := range c.elementary.values() {
		out = append(out, p)
	}
	for _, p := range c.compound.values() {
		out = append(out, p)
	}
	return out
}

// FindRegex returns the prices whose code matches re.
func (c *Catalog) FindRegex(re *regexp.Regexp) []prices.Price {
	var out []prices.Price
	for _, p := range c.Prices() {
		if re.MatchString(p.Code()) {
			out = append(out, p)
		}
	}
	return out
}

// RemoveConcept deletes the entry for code. Dependents are left untouched.
func (c *Catalog) RemoveConcept(code string) bool {
	if c.elementary.remove(code) {
		return true
	}
	return c.compound.remove(code)
}

// ConceptsThatDependOn returns the components of this catalog's compound
// prices that reference code.
func (c *Catalog) ConceptsThatDependOn(code string) []prices.Dependent {
	var out []prices.Dependent
	for _, p := range c.compound.values() {
		for _, comp := range p.ComponentsReferencing(code) {
			out = append(out, comp)
		}
	}
	return out
}

// Copy returns a catalog with the same entries. Prices are shared.
func (c *Catalog) Copy() *Catalog {
	out := New(WithPolicy(c.policy), WithLogger(c.logger))
	for _, p := range c.elementary.values() {
		out.elementary.put(p.Code(), p)
	}
	for _, p := range c.compound.values() {
		out.compound.put(p.Code(), p)
	}
	return out
}
