package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ecommerce-metrics/internal/application/churn"
	"github.com/jhoicas/ecommerce-metrics/internal/infrastructure/filecache"
	"github.com/jhoicas/ecommerce-metrics/internal/infrastructure/prestashop"
	"github.com/jhoicas/ecommerce-metrics/internal/infrastructure/rediscache"
	"github.com/jhoicas/ecommerce-metrics/internal/jobs"
	"github.com/jhoicas/ecommerce-metrics/pkg/config"
	"github.com/jhoicas/ecommerce-metrics/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	decimal.MarshalJSONWithoutQuotes = true

	if !cfg.Redis.Enabled() {
		log.Error().Msg("REDIS_ADDR es obligatorio para el worker")
		os.Exit(1)
	}
	if missing := cfg.PrestaShop.MissingCredentials(); len(missing) > 0 {
		log.Warn().Strs("faltan", missing).Msg("configuración de PrestaShop incompleta, los refrescos van a fallar")
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar redis")
		}
	}()

	client := prestashop.NewClient(cfg.PrestaShop, log)
	store := filecache.NewSnapshotStore(cfg.Cache.FilePath)
	targetsUC := churn.NewTargetCustomerUseCase(client, cfg.PrestaShop.PaidStates, cfg.PrestaShop.Location, log)
	snapshotUC := churn.NewSnapshotUseCase(targetsUC, store, cfg.Cache.StaleAfter, log)
	refreshJob := jobs.NewRefreshTargetsJob(snapshotUC, rediscache.NewCache(redisClient, cfg.Redis.AnalyticsTTL, log), log)

	refreshTask, err := jobs.NewRefreshTargetsTask("cron")
	if err != nil {
		log.Error().Err(err).Msg("construir tarea de refresco")
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.Redis.Addr},
		Logger:    log,
		Location:  cfg.PrestaShop.Location,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskRefreshTargets, Handler: refreshJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.Refresh.Cron, Task: refreshTask, Options: []asynq.Option{asynq.MaxRetry(0)}},
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("iniciar worker")
		os.Exit(1)
	}

	log.Info().Str("cron", cfg.Refresh.Cron).Str("archivo", store.Path()).Msg("worker iniciado")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker finalizado con error")
		os.Exit(1)
	}
	log.Info().Msg("worker detenido")
}
