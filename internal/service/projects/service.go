package projects

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/boq/internal/codec"
	"github.com/mamadbah2/boq/internal/domain/chapter"
	"github.com/mamadbah2/boq/internal/domain/models"
	"github.com/mamadbah2/boq/internal/domain/precision"
)

var (
	// ErrNoProject is returned before any project has been loaded.
	ErrNoProject = errors.New("no project loaded")
	// ErrNoRepository is returned by snapshot operations without storage.
	ErrNoRepository = errors.New("snapshot storage is not configured")
	// ErrNoPriceBase is returned by Import without a price base client.
	ErrNoPriceBase = errors.New("price base client is not configured")
	// ErrPriceNotFound is returned when a code has no definition.
	ErrPriceNotFound = errors.New("price not found")
)

// SnapshotRepository stores serialized projects.
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, snapshot models.ProjectSnapshot) error
	LatestSnapshot(ctx context.Context, projectCode string) (*models.ProjectSnapshot, error)
}

// PriceBase fetches project documents from a remote service.
type PriceBase interface {
	FetchDocument(ctx context.Context, path string) (codec.Document, error)
}

// Service owns the in-memory project and serialises access to it.
type Service struct {
	mu        sync.RWMutex
	project   *chapter.Project
	repo      SnapshotRepository
	priceBase PriceBase
	options   []chapter.Option
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires a project service. repo and priceBase may be nil; the
// options are applied to every loaded project root.
func NewService(repo SnapshotRepository, priceBase PriceBase, logger *zap.Logger, opts ...chapter.Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		priceBase: priceBase,
		options:   opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Replace installs p as the current project.
func (s *Service) Replace(p *chapter.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.project = p
}

// LoadDocument builds a project from doc and installs it.
func (s *Service) LoadDocument(doc codec.Document) error {
	p, err := codec.NewLoader(s.logger.Named("loader"), s.options...).Load(doc)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	s.Replace(p)
	s.logger.Info("project loaded",
		zap.String("code", p.Code()),
		zap.String("total", p.RoundedPrice().String()),
	)
	return nil
}

// LoadFile reads a JSON or YAML document from disk.
func (s *Service) LoadFile(path string) error {
	doc, err := codec.ReadFile(path)
	if err != nil {
		return err
	}
	return s.LoadDocument(doc)
}

// Import fetches a document from the price base and installs it.
func (s *Service) Import(ctx context.Context, path string) error {
	if s.priceBase == nil {
		return ErrNoPriceBase
	}
	doc, err := s.priceBase.FetchDocument(ctx, path)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	return s.LoadDocument(doc)
}

// View runs fn with shared access to the project.
func (s *Service) View(fn func(*chapter.Project) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.project == nil {
		return ErrNoProject
	}
	return fn(s.project)
}

// Update runs fn with exclusive access to the project.
func (s *Service) Update(fn func(*chapter.Project) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return ErrNoProject
	}
	return fn(s.project)
}

// Document serializes the current project.
func (s *Service) Document() (codec.Document, error) {
	var doc codec.Document
	err := s.View(func(p *chapter.Project) error {
		doc = codec.Save(p)
		return nil
	})
	return doc, err
}

// PurgeConcept removes a price together with every line that uses it.
func (s *Service) PurgeConcept(code string) (int, error) {
	var removed int
	err := s.Update(func(p *chapter.Project) error {
		if _, ok := p.FindPrice(code); !ok {
			return fmt.Errorf("%w: %s", ErrPriceNotFound, code)
		}
		deps, err := p.PurgeConcept(code)
		removed = len(deps)
		return err
	})
	return removed, err
}

// ReplacePrice points every use of oldCode at the price defined for newCode.
func (s *Service) ReplacePrice(oldCode, newCode string) error {
	return s.Update(func(p *chapter.Project) error {
		replacement, ok := p.FindPrice(newCode)
		if !ok {
			return fmt.Errorf("%w: %s", ErrPriceNotFound, newCode)
		}
		return p.ReplacePrices([]chapter.Replacement{{OldCode: oldCode, New: replacement}})
	})
}

// Snapshot stores the current project in the repository.
func (s *Service) Snapshot(ctx context.Context) (models.ProjectSnapshot, error) {
	if s.repo == nil {
		return models.ProjectSnapshot{}, ErrNoRepository
	}

	var snap models.ProjectSnapshot
	err := s.View(func(p *chapter.Project) error {
		payload, err := codec.Marshal(codec.JSON, codec.Save(p))
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		snap = models.ProjectSnapshot{
			ProjectCode: p.Code(),
			Title:       p.Title(),
			Total:       p.RoundedPrice().StringFixed(precision.PricePlaces),
			Format:      string(codec.JSON),
			Payload:     payload,
			CreatedAt:   s.now().UTC(),
		}
		return nil
	})
	if err != nil {
		return models.ProjectSnapshot{}, err
	}

	if err := s.repo.SaveSnapshot(ctx, snap); err != nil {
		return models.ProjectSnapshot{}, fmt.Errorf("save snapshot: %w", err)
	}
	s.logger.Info("snapshot stored", zap.String("project", snap.ProjectCode), zap.String("total", snap.Total))
	return snap, nil
}

// Restore loads the latest snapshot of projectCode and installs it.
func (s *Service) Restore(ctx context.Context, projectCode string) error {
	if s.repo == nil {
		return ErrNoRepository
	}
	snap, err := s.repo.LatestSnapshot(ctx, projectCode)
	if err != nil {
		return fmt.Errorf("restore %s: %w", projectCode, err)
	}
	doc, err := codec.Unmarshal(snap.Payload, codec.Format(snap.Format))
	if err != nil {
		return fmt.Errorf("restore %s: %w", projectCode, err)
	}
	return s.LoadDocument(doc)
}
