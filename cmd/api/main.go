package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/farmaplus/farmacia-api/internal/application/auth"
	"github.com/farmaplus/farmacia-api/internal/application/catalog"
	"github.com/farmaplus/farmacia-api/internal/application/ledger"
	"github.com/farmaplus/farmacia-api/internal/application/pos"
	"github.com/farmaplus/farmacia-api/internal/application/reception"
	"github.com/farmaplus/farmacia-api/internal/application/writeoff"
	"github.com/farmaplus/farmacia-api/internal/domain/expiration"
	"github.com/farmaplus/farmacia-api/internal/infrastructure/notify"
	"github.com/farmaplus/farmacia-api/internal/infrastructure/postgres"
	httpRouter "github.com/farmaplus/farmacia-api/internal/interfaces/http"
	"github.com/farmaplus/farmacia-api/pkg/config"
	"github.com/farmaplus/farmacia-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	lotRepo := postgres.NewLotRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	receptionRepo := postgres.NewReceptionRepository(pool)
	writeOffRepo := postgres.NewWriteOffRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	notifier := notify.NewLogNotifier(log)

	thresholds := expiration.Thresholds{
		RedDays:    cfg.Pharmacy.ExpiryRedDays,
		YellowDays: cfg.Pharmacy.ExpiryYellowDays,
		OrangeDays: cfg.Pharmacy.ExpiryOrangeDays,
	}

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	productUC := catalog.NewProductUseCase(productRepo)
	supplierUC := catalog.NewSupplierUseCase(supplierRepo)
	saleUC := pos.NewSaleUseCase(txRunner, saleRepo, notifier, cfg.Pharmacy.TaxRate)
	receptionUC := reception.NewReceptionUseCase(
		txRunner, receptionRepo, productRepo, supplierRepo, notifier, cfg.Pharmacy.DefaultMargin,
	)
	writeOffUC := writeoff.NewBajaUseCase(txRunner, writeOffRepo, notifier)
	reportUC := ledger.NewReportUseCase(lotRepo, productRepo, thresholds)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		ProductUC:   productUC,
		SupplierUC:  supplierUC,
		SaleUC:      saleUC,
		ReceptionUC: receptionUC,
		WriteOffUC:  writeOffUC,
		ReportUC:    reportUC,
		JWTSecret:   cfg.JWT.Secret,
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
