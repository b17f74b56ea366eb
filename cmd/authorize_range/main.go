// authorize_range registra un CAI otorgado por el SAR directamente contra la base,
// sin pasar por la API (carga inicial o recuperación).
//
// Uso:
//
//	go run ./cmd/authorize_range -tenant <id> -branch <id> -cai <código> \
//	    -start 00000001 -end 00005000 -authorized 2026-01-05 -expires 2026-12-31 [-prefix 000-001-01-] [-type FACTURA]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/jhoicas/Fiscal-api/internal/application/billing"
	"github.com/jhoicas/Fiscal-api/internal/application/dto"
	"github.com/jhoicas/Fiscal-api/internal/domain/entity"
	"github.com/jhoicas/Fiscal-api/internal/domain/fiscal"
	"github.com/jhoicas/Fiscal-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Fiscal-api/pkg/config"
	"github.com/jhoicas/Fiscal-api/pkg/logger"
)

func main() {
	var (
		tenantID string
		in       dto.AuthorizeRangeRequest
	)
	flag.StringVar(&tenantID, "tenant", "", "tenant dueño del CAI (obligatorio)")
	flag.StringVar(&in.BranchID, "branch", "", "sucursal (obligatorio)")
	flag.StringVar(&in.DocumentType, "type", entity.DocumentTypeInvoice, "tipo de documento")
	flag.StringVar(&in.CAICode, "cai", "", "código CAI (obligatorio)")
	flag.StringVar(&in.Prefix, "prefix", "", "prefijo impreso, ej: 000-001-01-")
	flag.StringVar(&in.RangeStart, "start", "", "inicio del rango, ancho fijo (obligatorio)")
	flag.StringVar(&in.RangeEnd, "end", "", "fin del rango, mismo ancho (obligatorio)")
	flag.StringVar(&in.AuthorizationDate, "authorized", "", "fecha de autorización YYYY-MM-DD (obligatorio)")
	flag.StringVar(&in.ExpirationDate, "expires", "", "fecha límite de emisión YYYY-MM-DD (obligatorio)")
	flag.StringVar(&in.Notes, "notes", "", "observaciones")
	flag.Parse()

	if tenantID == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "authorize_range"})
	loc, err := cfg.Fiscal.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria fiscal")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	uc := billing.NewRangeUseCase(
		postgres.NewTxRunner(pool),
		postgres.NewAuthorizationRangeRepository(pool),
		postgres.NewCorrelativeRepository(pool),
		billing.Settings{
			Location: loc,
			Alerts: fiscal.AlertConfig{
				RestockThreshold:      cfg.Fiscal.RestockThreshold,
				ExpirationHorizonDays: cfg.Fiscal.ExpirationHorizonDays,
			},
			MaxRangeSize:      cfg.Fiscal.MaxRangeSize,
			LockRetries:       cfg.Fiscal.LockRetries,
			LockRetryInterval: cfg.Fiscal.LockRetryInterval(),
		},
		log.Zerolog(),
	)
	out, err := uc.AuthorizeRange(ctx, tenantID, in)
	if err != nil {
		log.Error().Err(err).Msg("no se pudo registrar el CAI")
		pool.Close()
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}
