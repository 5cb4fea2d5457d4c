package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jask/biovalue/internal/config"
	"github.com/jask/biovalue/internal/database"
	"github.com/jask/biovalue/internal/database/repository"
	"github.com/jask/biovalue/internal/logging"
	"github.com/jask/biovalue/internal/service"
)

// appEnv is everything opened from configuration: logger, database,
// repositories and services. Commands share it; Close releases it.
type appEnv struct {
	cfg config.Config
	log *zap.Logger
	db  *sql.DB

	companies   *repository.CompanyRepo
	evaluations *repository.EvaluationRepo
	navEvents   *repository.NavEventRepo

	catalog     *service.Catalog
	recorder    *service.Recorder
	importer    *service.ImportService
	maintenance *service.MaintenanceService
	analytics   *service.Analytics
}

func openEnv(ctx context.Context, configPath string) (*appEnv, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := database.SeedDefaults(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed defaults: %w", err)
	}
	log.Info("database ready", zap.String("path", cfg.Database.Path))

	e := &appEnv{
		cfg:         cfg,
		log:         log,
		db:          db,
		companies:   repository.NewCompanyRepo(db),
		evaluations: repository.NewEvaluationRepo(db),
		navEvents:   repository.NewNavEventRepo(db),
	}
	e.catalog = &service.Catalog{Companies: e.companies, Log: log.Named("catalog")}
	e.recorder = &service.Recorder{Evaluations: e.evaluations}
	e.importer = &service.ImportService{Catalog: e.catalog, Log: log.Named("import")}
	e.maintenance = &service.MaintenanceService{DB: db, Log: log.Named("maintenance")}
	e.analytics = &service.Analytics{Events: e.navEvents, Log: log.Named("analytics")}
	return e, nil
}

// Close closes the database and flushes the log.
func (e *appEnv) Close() error {
	err := e.db.Close()
	_ = e.log.Sync()
	return err
}
