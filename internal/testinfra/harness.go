// Package testinfra boots a disposable Postgres for repository integration
// tests and applies the SQL migrations from migrations/.
package testinfra

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// Harness owns the lifecycle of the Postgres test container and the sqlx
// handle the repositories run against.
type Harness struct {
	container *postgres.PostgresContainer
	db        *sqlx.DB
}

// NewHarness starts a Postgres 16 container, connects and applies the
// migrations. When TEST_DATABASE_URL is set that database is used instead
// and no container is started.
func NewHarness(ctx context.Context) (*Harness, error) {
	dsn := os.Getenv("TEST_DATABASE_URL")

	var container *postgres.PostgresContainer
	if dsn == "" {
		var err error
		container, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("fixhub"),
			postgres.WithUsername("fixhub"),
			postgres.WithPassword("fixhub"),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			return nil, fmt.Errorf("start postgres container: %w", err)
		}

		dsn, err = container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			_ = container.Terminate(ctx)
			return nil, fmt.Errorf("resolve connection string: %w", err)
		}
	}

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		if container != nil {
			_ = container.Terminate(ctx)
		}
		return nil, fmt.Errorf("connect database: %w", err)
	}
	db.SetMaxOpenConns(16)
	db.SetConnMaxLifetime(5 * time.Minute)

	h := &Harness{container: container, db: db}
	if err := h.applyMigrations(ctx); err != nil {
		h.Close(ctx)
		return nil, err
	}
	return h, nil
}

// DB exposes the connected handle.
func (h *Harness) DB() *sqlx.DB {
	return h.db
}

// Close tears down the database handle and the container.
func (h *Harness) Close(ctx context.Context) {
	if h.db != nil {
		_ = h.db.Close()
	}
	if h.container != nil {
		_ = h.container.Terminate(ctx)
	}
}

// Reset truncates the mutable tables for a clean slate between tests.
func (h *Harness) Reset(ctx context.Context) error {
	tables := []string{"reviews", "notifications", "offers", "jobs", "users"}
	for _, tbl := range tables {
		if _, err := h.db.ExecContext(ctx, "TRUNCATE TABLE "+tbl+" RESTART IDENTITY CASCADE"); err != nil {
			return fmt.Errorf("truncate %s: %w", tbl, err)
		}
	}
	return nil
}

func (h *Harness) applyMigrations(ctx context.Context) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir(), "*.sql"))
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no migrations found")
	}
	sort.Strings(files)

	for _, file := range files {
		sql, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		if _, err := h.db.ExecContext(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply %s: %w", filepath.Base(file), err)
		}
	}
	return nil
}

func migrationsDir() string {
	_, self, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(self), "..", "..", "migrations")
}
