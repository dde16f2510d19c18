// Package storeopen connects the snapshot backend selected in the config.
package storeopen

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/localstore"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/tracker"
)

// Migrate brings the configured backend's schema up to date. SQLite creates
// its schema on open, so only Postgres has anything to do.
func Migrate(cfg *config.Config, log *slog.Logger) error {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		return nil
	case config.DriverPostgres:
		if err := storage.RunMigrations(cfg.Database.DSN(), "migrations"); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		log.Info("migrations applied")
		return nil
	}
	return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// Open migrates and connects the configured backend. The returned func
// releases it.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (tracker.Store, func(), error) {
	if err := Migrate(cfg, log); err != nil {
		return nil, nil, err
	}

	if cfg.Storage.Driver == config.DriverSQLite {
		ls, err := localstore.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("sqlite store opened", "path", cfg.Storage.SQLitePath)
		return ls, func() { ls.Close() }, nil
	}

	db, err := storage.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, nil, err
	}
	log.Info("database connected")
	return db, db.Close, nil
}
