// Package pgmigrate applies the embedded goose migrations over a pgx pool.
package pgmigrate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

var ErrMigrate = errors.New("pgmigrate: failed to apply migrations")

const tableName = "schema_migrations"

// goose keeps its settings in package globals.
var mu sync.Mutex

// Up applies every pending migration found at the root of fsys.
func Up(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) error {
	mu.Lock()
	defer mu.Unlock()

	db := stdlib.OpenDBFromPool(pool)
	defer func() {
		if err := db.Close(); err != nil {
			slog.ErrorContext(ctx, "pgmigrate: failed to close db handle", "error", err)
		}
	}()

	goose.SetBaseFS(fsys)
	goose.SetLogger(slogAdapter{ctx: ctx})
	goose.SetTableName(tableName)

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrMigrate, err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return errors.Join(ErrMigrate, err)
	}

	return nil
}

type slogAdapter struct {
	ctx context.Context
}

func (a slogAdapter) Fatalf(format string, v ...any) {
	slog.ErrorContext(a.ctx, fmt.Sprintf(format, v...), "component", "goose")
}

func (a slogAdapter) Printf(format string, v ...any) {
	slog.InfoContext(a.ctx, fmt.Sprintf(format, v...), "component", "goose")
}
