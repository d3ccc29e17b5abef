package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/posledger/backend/internal/infrastructure/config"
	"github.com/posledger/backend/internal/infrastructure/logger"
	"github.com/posledger/backend/internal/infrastructure/migration"
)

func main() {
	var (
		dir      string
		logLevel string
	)
	flag.StringVar(&dir, "path", "migrations", "migrations directory")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}
	cmd := args[0]

	log, err := logger.New(&logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	// create and list only touch the filesystem
	switch cmd {
	case "create":
		if len(args) < 2 {
			log.Fatal("Usage: migrate create <name>")
		}
		p, err := migration.Scaffold(dir, args[1])
		if err != nil {
			log.Fatal("Failed to scaffold migration", zap.Error(err))
		}
		log.Info("Migration scaffolded",
			zap.String("version", p.Version),
			zap.String("up", p.UpPath),
			zap.String("down", p.DownPath),
		)
		return
	case "list":
		names, err := migration.List(dir)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		log.Info("Available migrations", zap.Int("count", len(names)))
		for _, n := range names {
			fmt.Println(" ", n)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("Database unreachable", zap.Error(err))
	}

	m, err := migration.New(db, dir, log)
	if err != nil {
		log.Fatal("Failed to build migrator", zap.Error(err))
	}
	defer m.Close()

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "step":
		if len(args) < 2 {
			log.Fatal("Usage: migrate step <n>")
		}
		n, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			log.Fatal("Step count must be an integer", zap.String("value", args[1]))
		}
		err = m.Steps(n)
	case "version":
		v, dirty, vErr := m.Version()
		if vErr != nil {
			log.Fatal("Failed to read schema version", zap.Error(vErr))
		}
		if v == 0 {
			log.Info("No migrations applied yet")
		} else {
			log.Info("Schema version", zap.Uint("version", v), zap.Bool("dirty", dirty))
		}
		return
	case "force":
		if len(args) < 2 {
			log.Fatal("Usage: migrate force <version>")
		}
		v, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			log.Fatal("Version must be an integer", zap.String("value", args[1]))
		}
		err = m.Force(v)
	default:
		log.Error("Unknown command", zap.String("command", cmd))
		usage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal("Migration command failed", zap.String("command", cmd), zap.Error(err))
	}
}

func usage() {
	fmt.Println(`Ledger schema migration tool

Usage:
  migrate [-path dir] [-log-level level] <command> [args]

Commands:
  up              apply all pending migrations
  down            roll back all migrations
  step <n>        apply n migrations (negative rolls back)
  version         print the current schema version
  force <version> stamp the schema version without running SQL
  create <name>   scaffold an up/down SQL pair
  list            list migrations in the directory`)
}
