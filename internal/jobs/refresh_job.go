package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/ecommerce-metrics/internal/application/dto"
	"github.com/jhoicas/ecommerce-metrics/pkg/logger"
)

// Refresher lo implementa *churn.SnapshotUseCase.
type Refresher interface {
	Refresh(ctx context.Context) (*dto.RefreshResultDTO, error)
}

// CacheInvalidator lo implementa *rediscache.Cache.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// RefreshTargetsJob corre el pipeline y, si termina bien, invalida la caché de analítica
// para que los rankings se recalculen con los mismos datos de la tienda.
type RefreshTargetsJob struct {
	Refresher Refresher
	Cache     CacheInvalidator
	Logger    *logger.Logger
	clock     func() time.Time
}

// NewRefreshTargetsJob construye el handler. cache puede ser nil.
func NewRefreshTargetsJob(refresher Refresher, cache CacheInvalidator, log *logger.Logger) *RefreshTargetsJob {
	if log == nil {
		log = logger.Nop()
	}
	return &RefreshTargetsJob{
		Refresher: refresher,
		Cache:     cache,
		Logger:    log.Component("jobs"),
		clock:     time.Now,
	}
}

// Handle procesa TaskRefreshTargets.
func (j *RefreshTargetsJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Refresher == nil {
		return errors.New("refresh job: handler no configurado")
	}
	var payload RefreshTargetsPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("refresh job: payload inválido: %v: %w", err, asynq.SkipRetry)
		}
	}
	if payload.Trigger == "" {
		payload.Trigger = "cron"
	}

	log := j.Logger.With().Str("job", TaskRefreshTargets).Str("trigger", payload.Trigger).Logger()
	started := j.now()

	res, err := j.Refresher.Refresh(ctx)
	if err != nil {
		log.Error().Err(err).Msg("refresco programado fallido")
		return fmt.Errorf("refresh job: %w", err)
	}

	if j.Cache != nil {
		if err := j.Cache.Bump(ctx); err != nil {
			log.Warn().Err(err).Msg("no se pudo invalidar la caché de analítica")
		}
	}

	log.Info().
		Str("run_id", res.RunID).
		Int("clientes", res.Count).
		Dur("duracion", j.now().Sub(started)).
		Msg("refresco programado OK")
	return nil
}

func (j *RefreshTargetsJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now()
}
