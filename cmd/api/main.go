package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ecommerce-metrics/internal/application/analytics"
	"github.com/jhoicas/ecommerce-metrics/internal/application/churn"
	"github.com/jhoicas/ecommerce-metrics/internal/infrastructure/filecache"
	infrapdf "github.com/jhoicas/ecommerce-metrics/internal/infrastructure/pdf"
	"github.com/jhoicas/ecommerce-metrics/internal/infrastructure/prestashop"
	"github.com/jhoicas/ecommerce-metrics/internal/infrastructure/rediscache"
	httpRouter "github.com/jhoicas/ecommerce-metrics/internal/interfaces/http"
	"github.com/jhoicas/ecommerce-metrics/pkg/config"
	"github.com/jhoicas/ecommerce-metrics/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	// montos como números JSON, igual que el dashboard los espera
	decimal.MarshalJSONWithoutQuotes = true

	// Sin credenciales el servidor arranca igual; cada ruta que llame al Webservice falla.
	if missing := cfg.PrestaShop.MissingCredentials(); len(missing) > 0 {
		log.Warn().Strs("faltan", missing).Msg("configuración de PrestaShop incompleta")
	}

	client := prestashop.NewClient(cfg.PrestaShop, log)
	store := filecache.NewSnapshotStore(cfg.Cache.FilePath)

	targetsUC := churn.NewTargetCustomerUseCase(client, cfg.PrestaShop.PaidStates, cfg.PrestaShop.Location, log)
	snapshotUC := churn.NewSnapshotUseCase(targetsUC, store, cfg.Cache.StaleAfter, log)
	exportUC := churn.NewExportUseCase(snapshotUC, infrapdf.NewTargetCustomersPDF(cfg.App.Name, cfg.PrestaShop.Location))

	// Redis opcional: caché de resultados de analítica
	var salesOpts []analytics.Option
	if cfg.Redis.Enabled() {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Warn().Err(err).Msg("cerrar redis")
			}
		}()
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no responde, las consultas irán directo al Webservice")
		}
		cancel()
		salesOpts = append(salesOpts, analytics.WithCache(rediscache.NewCache(redisClient, cfg.Redis.AnalyticsTTL, log)))
	}
	salesUC := analytics.NewSalesUseCase(client, cfg.PrestaShop.Location, log, salesOpts...)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.PrestaShop.Timeout * 5, // un refresco encadena varias llamadas al Webservice
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Ecommerce Metrics API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Snapshots:        snapshotUC,
		Exports:          exportUC,
		Sales:            salesUC,
		Webservice:       client,
		RefreshPerMinute: cfg.Refresh.RateLimit,
		Log:              log,
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
