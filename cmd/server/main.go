package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/boq/internal/config"
	"github.com/mamadbah2/boq/internal/domain/catalog"
	"github.com/mamadbah2/boq/internal/domain/chapter"
	"github.com/mamadbah2/boq/internal/domain/precision"
	"github.com/mamadbah2/boq/internal/domain/prices"
	"github.com/mamadbah2/boq/internal/repository/mongodb"
	"github.com/mamadbah2/boq/internal/repository/sqlite"
	"github.com/mamadbah2/boq/internal/scheduler"
	"github.com/mamadbah2/boq/internal/server/handlers"
	"github.com/mamadbah2/boq/internal/server/router"
	projectsvc "github.com/mamadbah2/boq/internal/service/projects"
	reportingsvc "github.com/mamadbah2/boq/internal/service/reporting"
	"github.com/mamadbah2/boq/pkg/clients/pricebase"
	"github.com/mamadbah2/boq/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	var repo projectsvc.SnapshotRepository
	switch cfg.Storage.Driver {
	case config.StorageMongo:
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		repo = mongoRepo
	case config.StorageSQLite:
		sqliteRepo, err := sqlite.NewRepository(cfg.SQLite.Path)
		if err != nil {
			baseLogger.Fatal("failed to init sqlite repository", zap.Error(err))
		}
		defer func() {
			if err := sqliteRepo.Close(); err != nil {
				baseLogger.Error("failed to close sqlite database", zap.Error(err))
			}
		}()
		repo = sqliteRepo
	default:
		baseLogger.Warn("snapshot storage disabled")
	}

	var priceBase projectsvc.PriceBase
	if cfg.PriceBase.BaseURL != "" {
		priceBase = pricebase.NewClient(cfg.PriceBase)
		baseLogger.Info("price base client enabled", zap.String("url", cfg.PriceBase.BaseURL))
	}

	opts := []chapter.Option{chapter.WithLogger(baseLogger.Named("domain"))}
	if cfg.Project.StrictReferences {
		opts = append(opts, chapter.WithPolicy(catalog.Strict))
	}
	projectSvc := projectsvc.NewService(repo, priceBase, baseLogger.Named("svc.projects"), opts...)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), time.Minute)
	switch {
	case cfg.Project.File != "":
		err = projectSvc.LoadFile(cfg.Project.File)
	case cfg.PriceBase.Path != "":
		err = projectSvc.Import(startupCtx, cfg.PriceBase.Path)
	case cfg.Project.Code != "" && repo != nil:
		err = projectSvc.Restore(startupCtx, cfg.Project.Code)
	default:
		baseLogger.Warn("no project source configured, waiting for a snapshot restore")
	}
	cancelStartup()
	if err != nil {
		baseLogger.Fatal("failed to load project", zap.Error(err))
	}

	format := precision.Format{
		CurrencySymbol:   cfg.Format.CurrencySymbol,
		DecimalSeparator: cfg.Format.DecimalSeparator,
		GroupSeparator:   cfg.Format.GroupSeparator,
		SymbolBefore:     cfg.Format.SymbolBefore,
	}
	overheads := prices.Overheads{
		GeneralExpenses:  cfg.Overheads.GeneralExpenses,
		IndustrialProfit: cfg.Overheads.IndustrialProfit,
		VAT:              cfg.Overheads.VAT,
	}
	reportingSvc := reportingsvc.NewService(projectSvc, format, overheads, baseLogger.Named("svc.reporting"))

	reportHandler := handlers.NewReportHandler(reportingSvc, baseLogger.Named("handlers.reports"))
	projectHandler := handlers.NewProjectHandler(projectSvc, baseLogger.Named("handlers.projects"))
	engine := router.New(reportHandler, projectHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Snapshots, projectSvc, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
