// Copyright (c) 2026 Handraise. All rights reserved.

// Package migration runs the golang-migrate schema migrations at startup so
// the database is at the expected version before the server accepts traffic.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers the "pgx5" scheme with golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// file source reads .sql files from disk.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

/*
RunUp applies every pending up migration and refuses to proceed when the
schema is dirty (a previous run died mid-migration and needs a human).

Parameters:
  - dsn: a postgres:// or postgresql:// connection string.
  - migrationsPath: directory holding the numbered .sql pairs.
  - logger: receives migration progress events.

Returns:
  - error: nil when the schema is current, including the no-change case.
*/
func RunUp(dsn string, migrationsPath string, logger *slog.Logger) error {
	migrator, err := migrate.New("file://"+migrationsPath, pgx5URL(dsn))
	if err != nil {
		return fmt.Errorf("migration: failed to initialize: %w", err)
	}
	defer func() {
		sourceErr, dbErr := migrator.Close()
		if sourceErr != nil {
			logger.Error("migration_source_close_failed", slog.Any("error", sourceErr))
		}
		if dbErr != nil {
			logger.Error("migration_db_close_failed", slog.Any("error", dbErr))
		}
	}()

	migrator.Log = &migrateLogger{logger: logger}

	version, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration: failed to read current version: %w", err)
	}
	if dirty {
		return fmt.Errorf("migration: schema is dirty at version %d, manual intervention required", version)
	}

	logger.Info("migration_started", slog.Int("current_version", int(version)))

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migration_already_up_to_date")
			return nil
		}
		return fmt.Errorf("migration: up failed: %w", err)
	}

	applied, _, _ := migrator.Version()
	logger.Info("migration_successful",
		slog.Int("from_version", int(version)),
		slog.Int("to_version", int(applied)),
	)

	return nil
}

// pgx5URL rewrites a postgres DSN onto the pgx5:// scheme golang-migrate's
// pgx/v5 driver registers under.
func pgx5URL(dsn string) string {
	if strings.HasPrefix(dsn, "pgx5://") {
		return dsn
	}
	if rest, ok := strings.CutPrefix(dsn, "postgresql://"); ok {
		return "pgx5://" + rest
	}
	if rest, ok := strings.CutPrefix(dsn, "postgres://"); ok {
		return "pgx5://" + rest
	}
	return dsn
}

// migrateLogger bridges golang-migrate's logger interface onto slog.
type migrateLogger struct {
	logger  *slog.Logger
	verbose bool
}

func (l *migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *migrateLogger) Verbose() bool {
	return l.verbose
}
