package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"

	"hmr-builders.backend/internal/config"
	"hmr-builders.backend/internal/infrastructure/datasources/postgres"
)

type migrateDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	open    func(cfg config.DatabaseConfig) (*sql.DB, error)
	migrate func(db *sql.DB, dir postgres.Direction) error
	version func(db *sql.DB) (uint, bool, error)
	out     io.Writer
}

func openSQLDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := postgres.NewConnection(cfg)
	if err != nil {
		return nil, err
	}
	return db.DB()
}

func defaultMigrateDeps() migrateDeps {
	return migrateDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		open:    openSQLDB,
		migrate: postgres.Migrate,
		version: postgres.Version,
		out:     os.Stdout,
	}
}

func parseCommand(args []string) (string, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 {
		return "", fmt.Errorf("usage: migrate up|down|version")
	}
	switch cmd := fs.Arg(0); cmd {
	case "up", "down", "version":
		return cmd, nil
	default:
		return "", fmt.Errorf("unknown command %q (want up, down or version)", cmd)
	}
}

func runMigrate(args []string, deps migrateDeps) error {
	def := defaultMigrateDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.open == nil {
		deps.open = def.open
	}
	if deps.migrate == nil {
		deps.migrate = def.migrate
	}
	if deps.version == nil {
		deps.version = def.version
	}
	if deps.out == nil {
		deps.out = def.out
	}

	cmd, err := parseCommand(args)
	if err != nil {
		return err
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := deps.loadCfg()

	db, err := deps.open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect db: %w", err)
	}
	defer db.Close()

	if cmd != "version" {
		if err := deps.migrate(db, postgres.Direction(cmd)); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(deps.out, "migrations %s: done\n", cmd)
	}

	version, dirty, err := deps.version(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	_, _ = fmt.Fprintf(deps.out, "version=%d dirty=%t\n", version, dirty)
	return nil
}

func main() {
	if err := runMigrate(os.Args[1:], defaultMigrateDeps()); err != nil {
		log.Fatal(err)
	}
}
