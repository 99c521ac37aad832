package chapter

import (
	"regexp"

	"go.uber.org/zap"

	"github.com/mamadbah2/boq/internal/domain/prices"
)

// FindPrice looks in the local catalog, then in the sub-chapters in
// pre-order. The first definition found wins.
func (c *Chapter) FindPrice(code string) (prices.Price, bool) {
	if p, ok := c.catalog.FindPrice(code); ok {
		return p, true
	}
	for _, sub := range c.subChapters {
		if p, ok := sub.FindPrice(code); ok {
			return p, true
		}
	}
	return nil, false
}

// ResolvePrice finds the definition visible from c: the local catalog,
// then each ancestor catalog up to the top of the tree, then a pre-order
// search of the whole tree. Nearer definitions shadow farther ones.
func (c *Chapter) ResolvePrice(code string) (prices.Price, bool) {
	top := c
	for cur := c; cur != nil; cur = cur.owner {
		if p, ok := cur.catalog.FindPrice(code); ok {
			return p, true
		}
		top = cur
	}
	return top.FindPrice(code)
}

// FindPricesRegex returns every price of the subtree whose code matches re,
// in pre-order.
func (c *Chapter) FindPricesRegex(re *regexp.Regexp) []prices.Price {
	var out []prices.Price
	c.walk(func(ch *Chapter) {
		out = append(out, ch.catalog.FindRegex(re)...)
	})
	return out
}

// FindChapter returns the first chapter of the subtree, c included, with
// the given code.
func (c *Chapter) FindChapter(code string) *Chapter {
	if c.code == code {
		return c
	}
	for _, sub := range c.subChapters {
		if found := sub.FindChapter(code); found != nil {
			return found
		}
	}
	return nil
}

// FindSubChapter follows a path of 1-based child indices. An empty path or
// an index out of range logs an error and returns nil.
func (c *Chapter) FindSubChapter(path []int) *Chapter {
	if len(path) == 0 {
		c.logger.Error("empty sub-chapter path", zap.String("chapter", c.code))
		return nil
	}
	cur := c
	for depth, idx := range path {
		if idx < 1 || idx > len(cur.subChapters) {
			c.logger.Error("sub-chapter index out of range",
				zap.String("chapter", cur.code),
				zap.Int("index", idx),
				zap.Int("depth", depth),
				zap.Int("children", len(cur.subChapters)),
			)
			return nil
		}
		cur = cur.subChapters[idx-1]
	}
	return cur
}

// Root returns the project root. A chapter that is not a root and has no
// owner yields ErrDetached.
func (c *Chapter) Root() (*Chapter, error) {
	for cur := c; ; cur = cur.owner {
		if cur.root {
			return cur, nil
		}
		if cur.owner == nil {
			c.logger.Error("chapter without owner while looking for root", zap.String("chapter", cur.code))
			return nil, ErrDetached
		}
	}
}

// FindDepth returns the number of ancestors of c.
func (c *Chapter) FindDepth() int {
	depth := 0
	for cur := c.owner; cur != nil; cur = cur.owner {
		depth++
	}
	return depth
}

// Height returns the deepest depth reached in the subtree.
func (c *Chapter) Height() int {
	h := c.FindDepth()
	for _, sub := range c.subChapters {
		if sh := sub.Height(); sh > h {
			h = sh
		}
	}
	return h
}
