package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"strings"

	"qimat/config"
	"qimat/internal/errors"
	logs "qimat/internal/infra/log"
	"qimat/internal/infra/persistence/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	pgLib "github.com/slighter12/go-lib/database/postgres"
)

func main() {
	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|redo|reset|validate")
	dsn := flag.String("dsn", os.Getenv("DATABASE_URL"), "postgres connection string; defaults to the postgres section of config.yaml")
	flag.Parse()

	if *cmd == "validate" {
		if err := migrations.Validate(); err != nil {
			slog.Error("Migration validation failed", slog.Any("error", err))
			os.Exit(1)
		}
		slog.Info("Migration validation passed")

		return
	}

	cfg, err := config.New()
	if err != nil {
		slog.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger, err := logs.New(logs.Params{Config: cfg})
	if err != nil {
		slog.Error("Failed to create logger", slog.Any("error", err))
		os.Exit(1)
	}
	logger = logger.With(slog.String("cmd", *cmd))

	db, err := openDB(*dsn, cfg)
	if err != nil {
		logger.Error("Failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := migrations.Run(context.Background(), db, *cmd, flag.Args()...); err != nil {
		logger.Error("Migration failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("Migration finished")
}

func openDB(dsn string, cfg *config.Config) (*sql.DB, error) {
	if strings.TrimSpace(dsn) != "" {
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, errors.Wrap(err, "open pgx connection")
		}

		return db, nil
	}

	if cfg.Postgres == nil {
		return nil, errors.New("postgres is not configured")
	}

	gormDB, err := pgLib.New(cfg.Postgres)
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}

	db, err := gormDB.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}

	return db, nil
}
