package prices

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/boq/internal/domain/precision"
)

// Dependent is anything that points at a price by code: a component of a
// compound price or a quantity line of a chapter.
type Dependent interface {
	ReferencedCode() string
	// CheckRepoint reports the error Repoint(p) would return, without
	// changing anything.
	CheckRepoint(p Price) error
	// Repoint makes the dependent reference p instead of its current price.
	Repoint(p Price) error
	// Detach removes the dependent from its container.
	Detach() error
}

// Component is one line of a compound price decomposition. The referenced
// entity is looked up, never owned.
type Component struct {
	entity Price
	code   string
	rate   FactorRate
	owner  *CompoundPrice
}

// Entity returns the referenced price, or nil while the component is pending.
func (c *Component) Entity() Price { return c.entity }

// FactorRate returns the factor/production rate of the line.
func (c *Component) FactorRate() FactorRate { return c.rate }

// Owner returns the compound price holding this component.
func (c *Component) Owner() *CompoundPrice { return c.owner }

// ReferencedCode returns the code of the referenced price, also for pending
// components.
func (c *Component) ReferencedCode() string {
	if c.entity != nil {
		return c.entity.Code()
	}
	return c.code
}

// Resolved reports whether the component points at a price.
func (c *Component) Resolved() bool { return c.entity != nil }

// IsPercentage reports whether the referenced concept is a percentage.
func (c *Component) IsPercentage() bool {
	if c.entity != nil {
		return c.entity.IsPercentage()
	}
	return IsPercentageCode(c.code)
}

// Price returns entity price * product. Pending components are worth zero.
func (c *Component) Price() decimal.Decimal {
	if c.entity == nil {
		return decimal.Zero
	}
	return c.entity.Price().Mul(c.rate.Product())
}

// RoundedPrice rounds the entity price and the product before multiplying
// and rounds the result to currency precision.
func (c *Component) RoundedPrice() decimal.Decimal {
	if c.entity == nil {
		return decimal.Zero
	}
	return precision.RoundPrice(c.entity.RoundedPrice().Mul(c.rate.RoundedProduct()))
}

// PriceOver values a percentage component over base.
func (c *Component) PriceOver(base decimal.Decimal) decimal.Decimal {
	return base.Mul(c.rate.Product())
}

// Bind resolves a pending component. It fails when p would close a cycle
// through the owner.
func (c *Component) Bind(p Price) error {
	if err := c.CheckRepoint(p); err != nil {
		return err
	}
	c.entity = p
	c.code = p.Code()
	return nil
}

// CheckRepoint validates p as the new entity of the component.
func (c *Component) CheckRepoint(p Price) error {
	if p == nil {
		return ErrNilPrice
	}
	if c.owner != nil && wouldCycle(c.owner, p) {
		return fmt.Errorf("%w: %s -> %s", ErrCycle, c.owner.Code(), p.Code())
	}
	return nil
}

// Repoint replaces the referenced price.
func (c *Component) Repoint(p Price) error {
	return c.Bind(p)
}

// Detach removes the component from its compound price.
func (c *Component) Detach() error {
	if c.owner == nil || !c.owner.RemoveComponent(c) {
		return ErrDetached
	}
	return nil
}

func (c *Component) String() string {
	return fmt.Sprintf("%s x %s", c.ReferencedCode(), c.rate.Product())
}
