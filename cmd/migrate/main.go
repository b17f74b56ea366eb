// migrate aplica o revierte las migraciones embebidas (goose) sobre la base configurada.
//
// Uso: go run ./cmd/migrate [up|down|status]
// Sin argumento ejecuta "up". Lee la conexión de las mismas variables que la API (DATABASE_URL, DB_*).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/Fiscal-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Fiscal-api/pkg/config"
	"github.com/jhoicas/Fiscal-api/pkg/logger"
)

func main() {
	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "migrate"})
	if cfg.DB.Driver != "postgres" {
		log.Fatal().Str("db_driver", cfg.DB.Driver).Msg("las migraciones solo aplican a PostgreSQL")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	switch cmd {
	case "up":
		err = postgres.Migrate(ctx, pool)
	case "down":
		err = postgres.Rollback(ctx, pool)
	case "status":
		err = postgres.MigrationStatus(ctx, pool)
	default:
		fmt.Fprintf(os.Stderr, "comando desconocido %q (up | down | status)\n", cmd)
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Str("cmd", cmd).Msg("migración fallida")
		pool.Close()
		os.Exit(1)
	}
	log.Info().Str("cmd", cmd).Msg("migración completada")
}
