package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/boq/internal/config"
	"github.com/mamadbah2/boq/internal/domain/models"
)

// Snapshotter stores the current project.
type Snapshotter interface {
	Snapshot(ctx context.Context) (models.ProjectSnapshot, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	projects Snapshotter
	cfg      config.SnapshotConfig
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.SnapshotConfig, projects Snapshotter, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Standard five-field cron parser (min, hour, dom, month, dow).
	c := cron.New()

	return &Scheduler{
		cron:     c,
		projects: projects,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start registers the snapshot job and starts the scheduler. An empty
// schedule leaves the scheduler idle.
func (s *Scheduler) Start() error {
	if s.cfg.CronSchedule == "" {
		s.logger.Info("snapshot schedule not configured, scheduler idle")
		return nil
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))
	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.storeSnapshot); err != nil {
		s.logger.Error("failed to schedule project snapshot", zap.Error(err))
		return err
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) storeSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	snap, err := s.projects.Snapshot(ctx)
	if err != nil {
		s.logger.Error("failed to store project snapshot", zap.Error(err))
		return
	}
	s.logger.Info("project snapshot stored",
		zap.String("project", snap.ProjectCode),
		zap.String("total", snap.Total))
}
