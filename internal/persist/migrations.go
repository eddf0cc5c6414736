package persist

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies pending schema migrations. Safe to call on every start.
func (db *DB) Migrate(ctx context.Context) error {
	src, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("migration fs: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, src)
	if err != nil {
		return fmt.Errorf("migration provider: %w", err)
	}
	applied, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if len(applied) > 0 {
		db.log.Info("schema migrated", zap.Int("applied", len(applied)))
	}
	return nil
}
