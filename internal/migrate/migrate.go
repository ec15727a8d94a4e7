package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedded embed.FS

// Source returns the migration files: dir on disk when set, otherwise the
// ones compiled into the binary.
func Source(dir string) (fs.FS, error) {
	if dir != "" {
		return os.DirFS(dir), nil
	}
	return fs.Sub(embedded, "migrations")
}

// Up applies all pending migrations.
//
// It returns an error (no log.Fatal) so the caller can decide how to handle it.
func Up(ctx context.Context, dbURL, dir string, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	src, err := Source(dir)
	if err != nil {
		return fmt.Errorf("migrations: source: %w", err)
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("migrations: open db: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("database close error", "err", err)
		}
	}()

	goose.SetBaseFS(src)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrations: set dialect: %w", err)
	}

	log.Info("running database migrations", "dir", dirLabel(dir))
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrations: goose up: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("migrations: read version: %w", err)
	}
	log.Info("database migrations applied", "version", version)
	return nil
}

func dirLabel(dir string) string {
	if dir == "" {
		return "embedded"
	}
	return dir
}
