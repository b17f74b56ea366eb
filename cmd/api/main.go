package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Fiscal-api/docs"
	"github.com/jhoicas/Fiscal-api/internal/application/billing"
	"github.com/jhoicas/Fiscal-api/internal/domain/fiscal"
	"github.com/jhoicas/Fiscal-api/internal/domain/repository"
	"github.com/jhoicas/Fiscal-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Fiscal-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Fiscal-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Fiscal-api/internal/interfaces/http"
	"github.com/jhoicas/Fiscal-api/pkg/config"
	"github.com/jhoicas/Fiscal-api/pkg/logger"
)

// backend repos a nivel de pool más el runner transaccional del motor fiscal.
type backend struct {
	txRunner        billing.FiscalTxRunner
	rangeRepo       repository.AuthorizationRangeRepository
	correlativeRepo repository.CorrelativeRepository
	invoiceRepo     repository.InvoiceRepository
	close           func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}
	loc, err := cfg.Fiscal.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria fiscal")
	}

	ctx := context.Background()
	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar persistencia")
	}
	defer be.close()

	settings := billing.Settings{
		Location: loc,
		Alerts: fiscal.AlertConfig{
			RestockThreshold:      cfg.Fiscal.RestockThreshold,
			ExpirationHorizonDays: cfg.Fiscal.ExpirationHorizonDays,
		},
		MaxRangeSize:      cfg.Fiscal.MaxRangeSize,
		LockRetries:       cfg.Fiscal.LockRetries,
		LockRetryInterval: cfg.Fiscal.LockRetryInterval(),
	}
	billingLog := log.Component("billing")

	rangeUC := billing.NewRangeUseCase(be.txRunner, be.rangeRepo, be.correlativeRepo, settings, billingLog)
	correlativeUC := billing.NewCorrelativeUseCase(be.txRunner, settings, billingLog)
	issueUC := billing.NewIssueInvoiceUseCase(be.txRunner, be.invoiceRepo, settings, billingLog)
	voidUC := billing.NewVoidInvoiceUseCase(be.txRunner, settings, billingLog)

	// PDF: representación impresa con los datos del CAI
	pdfUC := billing.NewPDFUseCase(be.invoiceRepo, be.rangeRepo, infrapdf.NewMarotoPDFGenerator(loc), billing.Issuer{
		Name:    cfg.Company.Name,
		RTN:     cfg.Company.RTN,
		Address: cfg.Company.Address,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	docs.SwaggerInfo.Host = cfg.HTTP.Addr()
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Fiscal API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "db_driver": cfg.DB.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		RangeUC:       rangeUC,
		CorrelativeUC: correlativeUC,
		IssueInvoice:  issueUC,
		VoidInvoice:   voidUC,
		InvoicePDF:    pdfUC,
		JWTSecret:     cfg.JWT.Secret,
		JWTIssuer:     cfg.JWT.Issuer,
		Log:           log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openBackend conecta PostgreSQL (con auto-migración opcional) o arma el store en memoria.
func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	if cfg.DB.Driver == "memory" {
		log.Warn().Msg("DB_DRIVER=memory: los datos se pierden al reiniciar")
		store := memory.NewStore()
		repos := store.NewRepositories()
		return &backend{
			txRunner:        store,
			rangeRepo:       repos.Ranges,
			correlativeRepo: repos.Correlatives,
			invoiceRepo:     repos.Invoices,
			close:           func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("migraciones aplicadas")
	}
	return &backend{
		txRunner:        postgres.NewTxRunner(pool),
		rangeRepo:       postgres.NewAuthorizationRangeRepository(pool),
		correlativeRepo: postgres.NewCorrelativeRepository(pool),
		invoiceRepo:     postgres.NewInvoiceRepository(pool),
		close:           pool.Close,
	}, nil
}
