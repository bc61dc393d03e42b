package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/estratosfera/treinta-migrator/internal/domain/extract/classifier"
	"github.com/estratosfera/treinta-migrator/internal/domain/extract/extractor"
	"github.com/estratosfera/treinta-migrator/internal/domain/extract/walker"
	"github.com/estratosfera/treinta-migrator/internal/domain/load"
	"github.com/estratosfera/treinta-migrator/internal/domain/migrate"
	"github.com/estratosfera/treinta-migrator/pkg/config"
	"github.com/estratosfera/treinta-migrator/pkg/db"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	Classifier *classifier.Engine
	Extractor  *extractor.Extractor
	Walker     *walker.Walker

	Repo     *load.Repository
	Loader   *load.Loader
	Migrator *migrate.Migrator
}

// InitDependencies initializes all application dependencies. withDB is false
// for modes that never touch the database (export).
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger, withDB bool) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if withDB {
		if err := deps.initDatabase(ctx); err != nil {
			return nil, fmt.Errorf("failed to init database: %w", err)
		}
	}

	deps.initPipeline()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase connects the pool and applies schema migrations.
func (d *Dependencies) initDatabase(ctx context.Context) error {
	database, err := db.Connect(ctx, &d.Config.Database)
	if err != nil {
		return err
	}
	d.DB = database

	if err := d.DB.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initPipeline wires the extraction pipeline and, when a database is
// present, the loader behind it.
func (d *Dependencies) initPipeline() {
	d.Classifier = classifier.New()
	d.Extractor = extractor.New(d.Classifier)
	d.Walker = walker.New(d.Extractor, d.Logger)

	if d.DB != nil {
		d.Repo = load.NewRepository(d.DB.Pool)
		d.Loader = load.NewLoader(d.Repo, d.Logger)
	}

	d.Migrator = migrate.New(d.Config.Source, d.Walker, d.Loader, d.Repo, d.Logger)
	d.Logger.Info("pipeline initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
