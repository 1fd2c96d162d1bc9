// Command migrate manages the schema backing the postgres storage backend.
//
//	migrate [-dsn url] up|down|version|steps N|force N
//
// The DSN comes from -dsn, then TRIAGE_DB_DSN, then the [database] section of
// the service config.
package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"

	"github.com/Sakshi281205/sleeppeddlers/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

const envDSN = "TRIAGE_DB_DSN"

func main() {
	dsn := flag.String("dsn", "", "Database connection string")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: migrate [-dsn url] up|down|version|steps N|force N")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("load .env: %v", err)
	}

	url, err := resolveDSN(*dsn)
	if err != nil {
		log.Fatal(err)
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		log.Fatalf("migration source: %v", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, url)
	if err != nil {
		log.Fatalf("create migrator: %v", err)
	}
	defer m.Close()

	if err := run(m, flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func resolveDSN(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv(envDSN); v != "" {
		return v, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	return cfg.Database.URL(), nil
}

func run(m *migrate.Migrate, args []string) error {
	switch cmd := args[0]; cmd {
	case "up":
		return report(m.Up(), "schema up to date")
	case "down":
		return report(m.Down(), "schema reverted")
	case "version":
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("no migrations applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("version: %w", err)
		}
		fmt.Printf("version %d (dirty: %v)\n", v, dirty)
		return nil
	case "steps", "force":
		if len(args) != 2 {
			return fmt.Errorf("%s requires a number", cmd)
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%s: %w", cmd, err)
		}
		if cmd == "force" {
			return report(m.Force(n), fmt.Sprintf("forced to version %d", n))
		}
		return report(m.Steps(n), fmt.Sprintf("applied %d steps", n))
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func report(err error, done string) error {
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	fmt.Println(done)
	return nil
}
