package prices

import (
	"fmt"
	"strings"
)

// wouldCycle reports whether making owner reference entity closes a loop.
func wouldCycle(owner *CompoundPrice, entity Price) bool {
	nested, ok := entity.(*CompoundPrice)
	if !ok {
		return false
	}
	return reaches(nested, owner, make(map[*CompoundPrice]bool))
}

func reaches(from, target *CompoundPrice, seen map[*CompoundPrice]bool) bool {
	if from == target {
		return true
	}
	if seen[from] {
		return false
	}
	seen[from] = true
	for _, c := range from.components {
		if nested, ok := c.entity.(*CompoundPrice); ok && reaches(nested, target, seen) {
			return true
		}
	}
	return false
}

// CheckAcyclic walks the decomposition reachable from p and returns an error
// wrapping ErrCycle with the offending path when a price depends on itself.
func CheckAcyclic(p Price) error {
	root, ok := p.(*CompoundPrice)
	if !ok {
		return nil
	}
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[*CompoundPrice]int)
	var path []string

	var visit func(cp *CompoundPrice) error
	visit = func(cp *CompoundPrice) error {
		switch state[cp] {
		case visiting:
			return fmt.Errorf("%w: %s -> %s", ErrCycle, strings.Join(path, " -> "), cp.code)
		case done:
			return nil
		}
		state[cp] = visiting
		path = append(path, cp.code)
		for _, c := range cp.components {
			if nested, ok := c.entity.(*CompoundPrice); ok {
				if err := visit(nested); err != nil {
					return err
				}
			}
		}
		path = path[:len(path)-1]
		state[cp] = done
		return nil
	}
	return visit(root)
}
