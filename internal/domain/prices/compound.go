package prices

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/boq/internal/domain/precision"
)

// CompoundPrice is a unit price decomposed into components.
type CompoundPrice struct {
	code            string
	title           string
	unit            string
	longDescription string
	components      []*Component
}

// NewCompoundPrice returns an empty compound price.
func NewCompoundPrice(code, title, unit string) (*CompoundPrice, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrEmptyCode
	}
	return &CompoundPrice{code: code, title: title, unit: unit}, nil
}

func (p *CompoundPrice) Code() string            { return p.code }
func (p *CompoundPrice) Title() string           { return p.title }
func (p *CompoundPrice) Unit() string            { return p.unit }
func (p *CompoundPrice) LongDescription() string { return p.longDescription }
func (p *CompoundPrice) Type() PriceType         { return Unclassified }
func (p *CompoundPrice) IsPercentage() bool      { return IsPercentageCode(p.code) }
func (p *CompoundPrice) IsCompound() bool        { return len(p.components) > 0 }
func (p *CompoundPrice) sealed()                 {}

func (p *CompoundPrice) SetLongDescription(text string) { p.longDescription = text }

// Components returns the decomposition lines in order.
func (p *CompoundPrice) Components() []*Component {
	out := make([]*Component, len(p.components))
	copy(out, p.components)
	return out
}

// Len returns the number of components.
func (p *CompoundPrice) Len() int { return len(p.components) }

// AppendComponent adds a resolved line. Self references and references that
// would close a cycle are rejected with ErrCycle.
func (p *CompoundPrice) AppendComponent(entity Price, fr FactorRate) (*Component, error) {
	if entity == nil {
		return nil, ErrNilPrice
	}
	if wouldCycle(p, entity) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrCycle, p.code, entity.Code())
	}
	c := &Component{entity: entity, code: entity.Code(), rate: fr, owner: p}
	p.components = append(p.components, c)
	return c, nil
}

// AppendPendingComponent adds a line whose price is known only by code. The
// component stays worth zero until Bind is called.
func (p *CompoundPrice) AppendPendingComponent(code string, fr FactorRate) *Component {
	c := &Component{code: code, rate: fr, owner: p}
	p.components = append(p.components, c)
	return c
}

// RemoveComponent detaches c. It reports whether c belonged to p.
func (p *CompoundPrice) RemoveComponent(c *Component) bool {
	for i, existing := range p.components {
		if existing == c {
			p.components = append(p.components[:i], p.components[i+1:]...)
			c.owner = nil
			return true
		}
	}
	return false
}

// DependsOn reports whether a direct component references code.
func (p *CompoundPrice) DependsOn(code string) bool {
	for _, c := range p.components {
		if c.ReferencedCode() == code {
			return true
		}
	}
	return false
}

// ComponentsReferencing returns the direct components pointing at code.
func (p *CompoundPrice) ComponentsReferencing(code string) []*Component {
	var out []*Component
	for _, c := range p.components {
		if c.ReferencedCode() == code {
			out = append(out, c)
		}
	}
	return out
}

// ReplaceConcept repoints every direct component referencing oldCode to
// replacement and returns how many lines changed.
func (p *CompoundPrice) ReplaceConcept(oldCode string, replacement Price) (int, error) {
	changed := 0
	for _, c := range p.ComponentsReferencing(oldCode) {
		if err := c.Repoint(replacement); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

// Base returns the sum of non-percentage components.
func (p *CompoundPrice) Base() decimal.Decimal {
	base := decimal.Zero
	for _, c := range p.components {
		if !c.IsPercentage() {
			base = base.Add(c.Price())
		}
	}
	return base
}

// Price adds every percentage line, applied to the fixed base, to the base.
func (p *CompoundPrice) Price() decimal.Decimal {
	base := p.Base()
	total := base
	for _, c := range p.components {
		if c.IsPercentage() {
			total = total.Add(c.PriceOver(base))
		}
	}
	return total
}

// RoundedPrice sums per-line rounded amounts.
func (p *CompoundPrice) RoundedPrice() decimal.Decimal {
	base := decimal.Zero
	for _, c := range p.components {
		if !c.IsPercentage() {
			base = base.Add(c.RoundedPrice())
		}
	}
	total := base
	for _, c := range p.components {
		if c.IsPercentage() {
			total = total.Add(precision.RoundPrice(base.Mul(c.rate.RoundedProduct())))
		}
	}
	return total
}

// NumberOfWorkers counts labour lines, descending into nested compound prices.
func (p *CompoundPrice) NumberOfWorkers() int {
	n := 0
	for _, c := range p.components {
		switch entity := c.entity.(type) {
		case *ElementaryPrice:
			if entity.Type() == Labour {
				n++
			}
		case *CompoundPrice:
			n += entity.NumberOfWorkers()
		}
	}
	return n
}

// ElementaryShare is an elementary price with the accumulated product that
// one unit of a compound price consumes.
type ElementaryShare struct {
	Price   Price
	Product decimal.Decimal
}

// ElementaryComponents flattens the decomposition down to elementary leaves.
// Shares of the same leaf reached through several paths are added up.
// Percentage lines are not leaves and are left out.
func (p *CompoundPrice) ElementaryComponents() []ElementaryShare {
	var out []ElementaryShare
	index := make(map[Price]int)
	p.collectElementary(decimal.NewFromInt(1), &out, index)
	return out
}

func (p *CompoundPrice) collectElementary(scale decimal.Decimal, out *[]ElementaryShare, index map[Price]int) {
	for _, c := range p.components {
		if c.entity == nil || c.IsPercentage() {
			continue
		}
		product := scale.Mul(c.rate.Product())
		if nested, ok := c.entity.(*CompoundPrice); ok && nested.IsCompound() {
			nested.collectElementary(product, out, index)
			continue
		}
		if i, ok := index[c.entity]; ok {
			(*out)[i].Product = (*out)[i].Product.Add(product)
			continue
		}
		index[c.entity] = len(*out)
		*out = append(*out, ElementaryShare{Price: c.entity, Product: product})
	}
}
