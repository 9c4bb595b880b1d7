// Command migrate applies pending SQL migrations from db/ in filename order.
// Files already recorded in the migrations table are skipped; each file and
// its record insert commit in one transaction.
// Usage: go run ./cmd/migrate [-dir db]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/MightyOwl77/FitnessTracker-sub000/internal/config"
	"github.com/MightyOwl77/FitnessTracker-sub000/internal/logger"
)

var migrationPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-\d{3}-`)

func main() {
	dir := flag.String("dir", "db", "directory holding *.sql migrations")
	flag.Parse()

	log := logger.NewDevelopment()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.DBURL)
	if err != nil {
		log.Fatal("unable to connect to database", zap.Error(err))
	}
	defer conn.Close(ctx)

	ran, err := migrate(ctx, conn, *dir, log)
	if err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	if ran == 0 {
		log.Info("no pending migrations")
		return
	}
	log.Info("migrations applied", zap.Int("count", ran))
}

func migrate(ctx context.Context, conn *pgx.Conn, dir string, log *zap.Logger) (int, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("no migration files found in %s", dir)
	}
	sort.Strings(files)

	// The migrations table may not exist yet on a fresh database.
	applied := make(map[string]bool)
	if rows, err := conn.Query(ctx, "SELECT migration FROM migrations"); err == nil {
		names, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return 0, fmt.Errorf("read applied migrations: %w", err)
		}
		for _, name := range names {
			applied[name] = true
		}
	}

	ran := 0
	for _, f := range files {
		filename := filepath.Base(f)
		if applied[filename] {
			log.Debug("skip", zap.String("migration", filename))
			continue
		}
		if err := apply(ctx, conn, f); err != nil {
			return ran, fmt.Errorf("%s: %w", filename, err)
		}
		log.Info("applied", zap.String("migration", filename))
		ran++
	}
	return ran, nil
}

func apply(ctx context.Context, conn *pgx.Conn, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	filename := filepath.Base(path)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO migrations (migration, description) VALUES ($1, $2)",
		filename, descriptionFromFilename(filename)); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit(ctx)
}

// descriptionFromFilename strips the YYYY-MM-DD-NNN- prefix and .sql suffix.
func descriptionFromFilename(filename string) string {
	name := strings.TrimSuffix(filename, ".sql")
	name = migrationPrefix.ReplaceAllString(name, "")
	return strings.ReplaceAll(name, "-", " ")
}
