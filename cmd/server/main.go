// Package main implements the entry point for the taskboard API server,
// which manages users and their tasks over a PostgreSQL-backed REST API.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/taskboardhq/taskboard-api/internal/config"
	"github.com/taskboardhq/taskboard-api/internal/platform/logger"
)

// version is reported by the liveness banner.
const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

// run wires the application together: configuration, logging, database,
// schema migrations, dependencies and finally the HTTP server.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("Failed to close database connection", "error", err)
		}
	}()

	if err := runMigrations(db, appLogger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	app := newApplication(cfg, appLogger, db)

	slog.Info("Application initialized, starting HTTP server")
	return app.startHTTPServer(context.Background(), app.setupRouter())
}
