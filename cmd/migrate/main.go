package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"library-backend/internal/config"
	"library-backend/internal/infrastructure/migration"
	"library-backend/pkg/logger"

	"github.com/joho/godotenv"
)

const usage = `usage: migrate [-path migrations] <command>

commands:
  up          apply all pending migrations
  down        roll back every migration
  steps N     apply N migrations (negative N rolls back)
  version     print the current schema version`

func main() {
	_ = godotenv.Load()

	path := flag.String("path", "", "migrations directory (default MIGRATIONS_PATH or ./migrations)")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.App.Environment)

	if *path == "" {
		*path = cfg.App.MigrationsPath
	}

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		logger.Fatal("Failed to load database config", err)
	}

	m, err := migration.Open(dbConfig.URL(), *path)
	if err != nil {
		logger.Fatal("Failed to prepare migrator", err)
	}
	defer m.Close()

	if err := run(m, flag.Args()); err != nil {
		logger.Error("Migration command failed", err)
		m.Close()
		os.Exit(1)
	}
}

func run(m *migration.Migrator, args []string) error {
	switch args[0] {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "steps":
		if len(args) < 2 {
			return fmt.Errorf("steps requires a count")
		}
		var n int
		if _, err := fmt.Sscanf(args[1], "%d", &n); err != nil {
			return fmt.Errorf("invalid step count %q: %w", args[1], err)
		}
		return m.Steps(n)
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		logger.Info("Schema version", map[string]interface{}{"version": version, "dirty": dirty})
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}
