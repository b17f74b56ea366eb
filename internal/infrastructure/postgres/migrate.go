package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// gooseDB prepara goose con las migraciones embebidas. El *sql.DB comparte el pool;
// no se cierra aquí porque el pool lo cierra main.
func gooseDB(pool *pgxpool.Pool) (*sql.DB, error) {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("goose dialect: %w", err)
	}
	return stdlib.OpenDBFromPool(pool), nil
}

// Migrate aplica las migraciones pendientes.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db, err := gooseDB(pool)
	if err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// MigrationStatus imprime el estado de cada migración.
func MigrationStatus(ctx context.Context, pool *pgxpool.Pool) error {
	db, err := gooseDB(pool)
	if err != nil {
		return err
	}
	return goose.StatusContext(ctx, db, "migrations")
}

// Rollback revierte la última migración aplicada.
func Rollback(ctx context.Context, pool *pgxpool.Pool) error {
	db, err := gooseDB(pool)
	if err != nil {
		return err
	}
	if err := goose.DownContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose down: %w", err)
	}
	return nil
}
