// Command refresh corre una vez el pipeline de clientes sin compra y escribe el
// archivo de caché. Con -enqueue solo encola la tarea para el worker.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ecommerce-metrics/internal/application/churn"
	"github.com/jhoicas/ecommerce-metrics/internal/infrastructure/filecache"
	"github.com/jhoicas/ecommerce-metrics/internal/infrastructure/prestashop"
	"github.com/jhoicas/ecommerce-metrics/internal/jobs"
	"github.com/jhoicas/ecommerce-metrics/pkg/config"
	"github.com/jhoicas/ecommerce-metrics/pkg/logger"
)

func main() {
	enqueue := flag.Bool("enqueue", false, "encolar el refresco en el worker (requiere REDIS_ADDR)")
	quiet := flag.Bool("quiet", false, "sin barra de progreso")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: os.Stderr})
	decimal.MarshalJSONWithoutQuotes = true

	if *enqueue {
		os.Exit(runEnqueue(ctx, cfg, log))
	}

	if missing := cfg.PrestaShop.MissingCredentials(); len(missing) > 0 {
		log.Error().Strs("faltan", missing).Msg("configuración de PrestaShop incompleta")
		os.Exit(1)
	}

	client := prestashop.NewClient(cfg.PrestaShop, log)

	var bar *progressbar.ProgressBar
	if !*quiet {
		bar = progressbar.Default(-1, "descargando")
		client.OnPage(func(resource string, fetched int) {
			bar.Describe(fmt.Sprintf("%s: %d registros", resource, fetched))
			_ = bar.Add(1)
		})
	}

	store := filecache.NewSnapshotStore(cfg.Cache.FilePath)
	targetsUC := churn.NewTargetCustomerUseCase(client, cfg.PrestaShop.PaidStates, cfg.PrestaShop.Location, log)
	snapshotUC := churn.NewSnapshotUseCase(targetsUC, store, cfg.Cache.StaleAfter, log)

	res, err := snapshotUC.Refresh(ctx)
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		log.Error().Err(err).Msg("refresco fallido")
		os.Exit(1)
	}

	fmt.Printf("%d clientes sin compra reciente → %s (%s)\n",
		res.Count, store.Path(), res.UpdatedAt.Format("2006-01-02 15:04:05 MST"))
}

func runEnqueue(ctx context.Context, cfg *config.Config, log *logger.Logger) int {
	if !cfg.Redis.Enabled() {
		log.Error().Msg("REDIS_ADDR es obligatorio para -enqueue")
		return 1
	}
	client := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr})
	defer client.Close()

	info, err := client.EnqueueRefresh(ctx, "manual")
	if err != nil {
		log.Error().Err(err).Msg("encolar refresco")
		return 1
	}
	log.Info().Str("task_id", info.ID).Str("queue", info.Queue).Msg("refresco encolado")
	return 0
}
