package main

import (
	"database/sql"
	"flag"
	"log/slog"
	"os"

	"github.com/chhayaprint/billing-api/internal/config"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

func main() {
	command := flag.String("command", "up", "goose command: up, down, status, version")
	dir := flag.String("dir", "migrations", "directory with migration files")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		logger.Error("failed to set goose dialect", slog.Any("error", err))
		os.Exit(1)
	}

	if err := goose.Run(*command, db, *dir, flag.Args()...); err != nil {
		logger.Error("migration failed",
			slog.String("command", *command),
			slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("migrations applied", slog.String("command", *command))
}
