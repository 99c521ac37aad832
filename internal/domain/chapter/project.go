package chapter

import (
	"go.uber.org/zap"

	"github.com/mamadbah2/boq/internal/domain/prices"
)

// Project is the root chapter of a tree and the entry point for global
// lookups.
type Project struct {
	*Chapter
}

// NewProject returns an empty project whose root chapter carries code and title.
func NewProject(code, title string, opts ...Option) *Project {
	root := New(code, title, opts...)
	root.root = true
	return &Project{Chapter: root}
}

// Budget applies the overheads to the rounded execution total.
func (p *Project) Budget(o prices.Overheads) prices.Budget {
	return o.Apply(p.RoundedPrice())
}

// UnitPrice returns the compound or elementary price defined for code
// anywhere in the project, logging when it is missing.
func (p *Project) UnitPrice(code string) (prices.Price, bool) {
	found, ok := p.FindPrice(code)
	if !ok {
		p.logger.Warn("price not found", zap.String("code", code))
	}
	return found, ok
}
