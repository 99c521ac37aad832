package codec

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/boq/internal/domain/chapter"
	"github.com/mamadbah2/boq/internal/domain/measurements"
	"github.com/mamadbah2/boq/internal/domain/prices"
)

// ErrUnsupportedVersion is returned for documents newer than this package.
var ErrUnsupportedVersion = errors.New("unsupported document version")

// PendingLink is a reference recorded while building the tree and resolved
// once every chapter exists.
type PendingLink struct {
	// Object names the holder of the reference.
	Object string
	// Attribute names the reference inside the holder.
	Attribute string
	// Code is the price code to resolve.
	Code string

	kind  prices.ErrorKind
	scope *chapter.Chapter
	bind  func(prices.Price) error
}

// UnresolvedLinksError lists every link whose code was not found. A load
// that returns it produced no project.
type UnresolvedLinksError struct {
	Links []PendingLink
}

// Codes returns the distinct missing codes in lexical order.
func (e *UnresolvedLinksError) Codes() []string {
	seen := make(map[string]bool)
	var codes []string
	for _, l := range e.Links {
		if !seen[l.Code] {
			seen[l.Code] = true
			codes = append(codes, l.Code)
		}
	}
	sort.Strings(codes)
	return codes
}

func (e *UnresolvedLinksError) Error() string {
	return "unresolved links, missing prices: " + strings.Join(e.Codes(), ", ")
}

func (e *UnresolvedLinksError) Unwrap() []error {
	out := make([]error, 0, len(e.Links))
	for _, l := range e.Links {
		out = append(out, &prices.UnresolvedReferenceError{
			Kind:    l.kind,
			Code:    l.Code,
			Context: l.Object + " " + l.Attribute,
		})
	}
	return out
}

// Loader rebuilds a project from a Document in two phases: every chapter,
// price and quantity line is created first with its references recorded as
// pending links; the links are then resolved from the chapter that holds
// them using the chapter lookup rules.
type Loader struct {
	logger  *zap.Logger
	options []chapter.Option
	pending []PendingLink
}

// NewLoader returns a loader. The options are applied to the project root.
func NewLoader(logger *zap.Logger, opts ...chapter.Option) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger, options: opts}
}

// Load builds the project described by doc. Unresolved references fail the
// whole load with *UnresolvedLinksError; cycles fail it with prices.ErrCycle.
func (l *Loader) Load(doc Document) (*chapter.Project, error) {
	if doc.Version > CurrentVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}
	l.pending = l.pending[:0]

	rec := doc.Project
	opts := append([]chapter.Option{
		chapter.WithLogger(l.logger),
		chapter.WithFactorRate(factorRate(rec.Factor, rec.ProductionRate)),
	}, l.options...)
	project := chapter.NewProject(rec.Code, rec.Title, opts...)

	if err := l.fill(project.Chapter, rec); err != nil {
		return nil, err
	}
	if err := l.resolve(); err != nil {
		return nil, err
	}
	if err := project.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project %s: %w", rec.Code, err)
	}

	l.logger.Debug("project loaded",
		zap.String("code", project.Code()),
		zap.Int("links", len(l.pending)),
	)
	return project, nil
}

// Pending returns the links recorded by the last Load.
func (l *Loader) Pending() []PendingLink {
	out := make([]PendingLink, len(l.pending))
	copy(out, l.pending)
	return out
}

func (l *Loader) fill(ch *chapter.Chapter, rec ChapterRecord) error {
	for _, e := range rec.Prices.Elementary {
		p, err := ch.NewElementaryPrice(e.Code, e.Title, e.Unit, e.Price, e.Type)
		if err != nil {
			return fmt.Errorf("chapter %s: elementary price %q: %w", rec.Code, e.Code, err)
		}
		p.SetLongDescription(e.LongDescription)
	}

	for _, c := range rec.Prices.Compound {
		cp, err := prices.NewCompoundPrice(c.Code, c.Title, c.Unit)
		if err != nil {
			return fmt.Errorf("chapter %s: compound price %q: %w", rec.Code, c.Code, err)
		}
		cp.SetLongDescription(c.LongDescription)
		for i, comp := range c.Components {
			pending := cp.AppendPendingComponent(comp.Code, factorRate(comp.Factor, comp.ProductionRate))
			l.pending = append(l.pending, PendingLink{
				Object:    "compound price " + c.Code,
				Attribute: fmt.Sprintf("component %d", i+1),
				Code:      comp.Code,
				kind:      prices.UnresolvedComponentReference,
				scope:     ch,
				bind:      pending.Bind,
			})
		}
		if err := ch.Catalog().Add(cp); err != nil {
			return fmt.Errorf("chapter %s: %w", rec.Code, err)
		}
	}

	for i, q := range rec.Quantities {
		ms := make([]measurements.Measurement, 0, len(q.Measurements))
		for _, m := range q.Measurements {
			ms = append(ms, measurements.Measurement{
				Comment: m.Comment,
				Units:   m.Units,
				Length:  m.Length,
				Width:   m.Width,
				Height:  m.Height,
			})
		}
		line := ch.Quantities().AppendPending(q.PriceCode, ms...)
		l.pending = append(l.pending, PendingLink{
			Object:    "chapter " + rec.Code,
			Attribute: fmt.Sprintf("quantities %d", i+1),
			Code:      q.PriceCode,
			kind:      prices.UnresolvedQuantityReference,
			scope:     ch,
			bind:      line.Bind,
		})
	}

	for _, subRec := range rec.SubChapters {
		sub, err := ch.NewSubChapter(subRec.Code, subRec.Title,
			chapter.WithFactorRate(factorRate(subRec.Factor, subRec.ProductionRate)))
		if err != nil {
			return fmt.Errorf("chapter %s: %w", rec.Code, err)
		}
		if err := l.fill(sub, subRec); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) resolve() error {
	var missing []PendingLink
	var errs []error
	for _, link := range l.pending {
		p, ok := link.scope.ResolvePrice(link.Code)
		if !ok {
			l.logger.Error("unresolved link",
				zap.String("object", link.Object),
				zap.String("attribute", link.Attribute),
				zap.String("code", link.Code),
			)
			missing = append(missing, link)
			continue
		}
		if err := link.bind(p); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", link.Object, link.Attribute, err))
		}
	}
	if len(missing) > 0 {
		return &UnresolvedLinksError{Links: missing}
	}
	return errors.Join(errs...)
}

// Clone returns an independent deep copy of p.
func Clone(p *chapter.Project, logger *zap.Logger, opts ...chapter.Option) (*chapter.Project, error) {
	return NewLoader(logger, opts...).Load(Save(p))
}
