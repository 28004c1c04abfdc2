package database

import (
	"context"
	"embed"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies every migration file not yet recorded in
// schema_migrations, in filename order.
func (db *DB) Migrate(ctx context.Context, log *zap.SugaredLogger) error {
	_, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, filename := range files {
		var applied bool
		err := db.Pool.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)",
			filename,
		).Scan(&applied)
		if err != nil {
			return fmt.Errorf("checking migration %s: %w", filename, err)
		}
		if applied {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + filename)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", filename, err)
		}
		if _, err := db.Pool.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", filename, err)
		}
		if _, err := db.Pool.Exec(ctx,
			"INSERT INTO schema_migrations (version) VALUES ($1)", filename,
		); err != nil {
			return fmt.Errorf("recording migration %s: %w", filename, err)
		}
		log.Infow("applied migration", "version", filename)
	}
	return nil
}
