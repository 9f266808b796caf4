package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrator applies embedded SQL migrations using goose. It opens its own
// database/sql connection because goose does not speak the pgx native
// protocol; the pgx stdlib adapter bridges the two.
type Migrator struct {
	databaseURL string
	fsys        fs.FS
}

// NewMigrator creates a Migrator reading migrations from fsys, which must
// contain goose-formatted .sql files at its root.
func NewMigrator(databaseURL string, fsys fs.FS) *Migrator {
	return &Migrator{databaseURL: databaseURL, fsys: fsys}
}

func (m *Migrator) open() (*sql.DB, error) {
	sqlDB, err := sql.Open("pgx", m.databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open migration connection: %w", err)
	}
	return sqlDB, nil
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	sqlDB, err := m.open()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	goose.SetBaseFS(m.fsys)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Status prints the applied/pending state of every known migration.
func (m *Migrator) Status(ctx context.Context) error {
	sqlDB, err := m.open()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	goose.SetBaseFS(m.fsys)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.StatusContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("migration status: %w", err)
	}
	return nil
}
