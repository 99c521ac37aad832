package prices

import (
	"errors"
	"fmt"
)

var (
	// ErrCycle is returned when a change would make a price depend on itself.
	ErrCycle = errors.New("price decomposition cycle")
	// ErrNilPrice is returned when a nil price is used as a component.
	ErrNilPrice = errors.New("nil price")
	// ErrEmptyCode is returned when a price is created without a code.
	ErrEmptyCode = errors.New("price code must not be empty")
	// ErrDetached is returned when removing a component or quantity line that
	// no longer belongs to any container.
	ErrDetached = errors.New("reference is not attached to a container")

	ErrUnresolvedComponentReference = errors.New("unresolved component reference")
	ErrUnresolvedQuantityReference  = errors.New("unresolved quantity reference")
)

// ErrorKind tells which kind of reference could not be resolved.
type ErrorKind int

const (
	UnresolvedComponentReference ErrorKind = iota + 1
	UnresolvedQuantityReference
)

func (k ErrorKind) String() string {
	switch k {
	case UnresolvedComponentReference:
		return "UnresolvedComponentReference"
	case UnresolvedQuantityReference:
		return "UnresolvedQuantityReference"
	default:
		return "UnknownReference"
	}
}

// UnresolvedReferenceError reports a code that no catalog in scope defines.
type UnresolvedReferenceError struct {
	Kind ErrorKind
	// Code is the missing price code.
	Code string
	// Context names the object holding the reference, e.g. a compound price code.
	Context string
}

func (e *UnresolvedReferenceError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("%s: price %q not found", e.Kind, e.Code)
	}
	return fmt.Sprintf("%s: price %q not found (referenced by %s)", e.Kind, e.Code, e.Context)
}

func (e *UnresolvedReferenceError) Unwrap() error {
	switch e.Kind {
	case UnresolvedQuantityReference:
		return ErrUnresolvedQuantityReference
	default:
		return ErrUnresolvedComponentReference
	}
}
