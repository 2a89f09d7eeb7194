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

	"github.com/pesobook/backend/internal/infrastructure/config"
	"github.com/pesobook/backend/internal/infrastructure/logger"
	"github.com/pesobook/backend/internal/infrastructure/migration"
)

const defaultMigrationsDir = "migrations"

func main() {
	var (
		dir      string
		logLevel string
	)
	flag.StringVar(&dir, "path", "", "migrations directory (default: ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger init failed:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	if err := run(log, resolveDir(dir), args[0], args[1:]); err != nil {
		log.Fatal("Migration command failed", zap.Error(err))
	}
}

func run(log *zap.Logger, dir, command string, args []string) error {
	log.Info("Migration tool",
		zap.String("command", command),
		zap.String("migrations", dir),
	)

	// create and list work on the files alone, no database needed
	switch command {
	case "create":
		return runCreate(log, dir, args)
	case "list":
		return runList(log, dir)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, dir, log)
	if err != nil {
		return err
	}
	defer m.Close()

	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "step":
		n, err := intArg(args, "step <n>")
		if err != nil {
			return err
		}
		return m.Steps(n)
	case "goto":
		n, err := intArg(args, "goto <version>")
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("goto needs a non-negative version")
		}
		return m.GoTo(uint(n))
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if version == 0 {
			log.Info("No migrations applied yet")
		} else {
			log.Info("Current schema version",
				zap.Uint("version", version),
				zap.Bool("dirty", dirty),
			)
		}
		return nil
	case "force":
		n, err := intArg(args, "force <version>")
		if err != nil {
			return err
		}
		return m.Force(n)
	case "drop":
		if !hasConfirmFlag(args) {
			return fmt.Errorf("drop destroys all data; rerun as 'migrate drop -confirm'")
		}
		return m.Drop()
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func runCreate(log *zap.Logger, dir string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: migrate create <name> [description]")
	}
	description := ""
	if len(args) > 1 {
		description = args[1]
	}

	mf, err := migration.CreateMigration(dir, args[0], description)
	if err != nil {
		return err
	}

	log.Info("Migration pair created",
		zap.String("version", mf.Version),
		zap.String("up", mf.UpPath),
		zap.String("down", mf.DownPath),
	)
	return nil
}

func runList(log *zap.Logger, dir string) error {
	migrations, err := migration.ListMigrations(dir)
	if err != nil {
		return err
	}
	if len(migrations) == 0 {
		log.Info("No migrations found")
		return nil
	}

	log.Info("Available migrations", zap.Int("count", len(migrations)))
	for _, name := range migrations {
		fmt.Println("  -", name)
	}
	return nil
}

// resolveDir returns an absolute migrations path, checking the working
// directory first and then next to the binary.
func resolveDir(dir string) string {
	if dir == "" {
		dir = defaultMigrationsDir
		if _, err := os.Stat(dir); err != nil {
			if exe, err := os.Executable(); err == nil {
				candidate := filepath.Join(filepath.Dir(exe), "..", "..", defaultMigrationsDir)
				if _, err := os.Stat(candidate); err == nil {
					dir = candidate
				}
			}
		}
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

func intArg(args []string, usageHint string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("usage: migrate %s", usageHint)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", args[0])
	}
	return n, nil
}

func hasConfirmFlag(args []string) bool {
	for _, arg := range args {
		if arg == "-confirm" || arg == "--confirm" {
			return true
		}
	}
	return false
}

func usage() {
	fmt.Println(`pesobook schema migration tool

usage: migrate [flags] <command> [args]

commands:
  up                    apply all pending migrations
  down                  roll back everything
  step <n>              apply n migrations, negative n rolls back
  goto <version>        migrate to an exact version
  version               print the current schema version
  force <version>       overwrite the recorded version (recovery only)
  drop -confirm         drop every object in the database
  create <name> [desc]  write a new up/down SQL pair
  list                  show migration pairs on disk

flags:
  -path       migrations directory (default ./migrations)
  -log-level  debug, info, warn, error (default info)

database connection comes from the PESOBOOK_* environment or config file.`)
}
