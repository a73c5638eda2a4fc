// Command migrate applies or rolls back the postgres schema used by the
// postgres store backend.
//
//	migrate [-url <database-url>] up|down|version
//
// Without -url the database settings come from config.toml, the SERVICE_ENV
// overlay and DATABASE_* environment variables.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"

	"github.com/Bluenz7/pdfredactor/internal/config"
	"github.com/Bluenz7/pdfredactor/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"
)

func main() {
	dbURL := flag.String("url", "", "Database URL (postgres:// or pgx5://)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: migrate [-url <database-url>] up | down [n] | version")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal("env file load failed:", err)
	}

	target, err := resolveURL(*dbURL)
	if err != nil {
		log.Fatal(err)
	}

	m, err := migrations.New(target)
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	if err := run(m, flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func run(m *migrate.Migrate, args []string) error {
	if len(args) == 0 {
		flag.Usage()
		return errors.New("command required")
	}

	switch args[0] {
	case "up":
		return report(m.Up(), "schema up to date")

	case "down":
		if len(args) < 2 {
			return report(m.Down(), "schema rolled back")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid step count: %s", args[1])
		}
		return report(m.Steps(-n), fmt.Sprintf("rolled back %d migration(s)", n))

	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("no migrations applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		fmt.Printf("version %d (dirty: %t)\n", version, dirty)
		return nil

	default:
		flag.Usage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func report(err error, done string) error {
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	fmt.Println(done)
	return nil
}

// resolveURL converts an explicit URL to the pgx5 scheme or builds one from configuration.
func resolveURL(explicit string) (string, error) {
	if explicit != "" {
		cfg := config.DatabaseConfig{URL: explicit}
		return cfg.MigrationURL()
	}

	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("config load failed: %w", err)
	}
	if err := cfg.Database.Finalize(); err != nil {
		return "", fmt.Errorf("database config: %w", err)
	}

	return cfg.Database.MigrationURL()
}
