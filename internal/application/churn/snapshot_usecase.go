package churn

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/ecommerce-metrics/internal/application/dto"
	"github.com/jhoicas/ecommerce-metrics/internal/domain"
	"github.com/jhoicas/ecommerce-metrics/internal/domain/entity"
	"github.com/jhoicas/ecommerce-metrics/internal/domain/repository"
	"github.com/jhoicas/ecommerce-metrics/pkg/logger"
)

// TargetFetcher fuente de clientes objetivo (el pipeline o un doble en tests).
type TargetFetcher interface {
	GetTargetCustomers(ctx context.Context) ([]entity.TargetCustomer, error)
}

// SnapshotUseCase refresca y lee la instantánea persistida de clientes sin compra.
// El lector nunca dispara un refresco.
type SnapshotUseCase struct {
	fetcher    TargetFetcher
	store      repository.SnapshotRepository
	staleAfter time.Duration
	log        *logger.Logger
	now        func() time.Time

	// un solo refresco a la vez dentro del proceso
	refreshMu sync.Mutex
}

// NewSnapshotUseCase construye el caso de uso. staleAfter ≤ 0 usa 24h.
func NewSnapshotUseCase(
	fetcher TargetFetcher,
	store repository.SnapshotRepository,
	staleAfter time.Duration,
	log *logger.Logger,
	opts ...Option,
) *SnapshotUseCase {
	if staleAfter <= 0 {
		staleAfter = 24 * time.Hour
	}
	if log == nil {
		log = logger.Nop()
	}
	o := buildOptions(opts)
	return &SnapshotUseCase{
		fetcher:    fetcher,
		store:      store,
		staleAfter: staleAfter,
		log:        log.Component("clientes-sin-compra"),
		now:        o.now,
	}
}

// Refresh corre el pipeline completo y sobrescribe la instantánea.
// Si el pipeline falla, la instantánea anterior queda intacta.
func (uc *SnapshotUseCase) Refresh(ctx context.Context) (*dto.RefreshResultDTO, error) {
	uc.refreshMu.Lock()
	defer uc.refreshMu.Unlock()

	runID := uuid.New().String()
	log := uc.log.With().Str("run_id", runID).Logger()
	started := uc.now()
	log.Info().Msg("refresco de clientes inactivos iniciado")

	targets, err := uc.fetcher.GetTargetCustomers(ctx)
	if err != nil {
		log.Error().Err(err).Msg("refresco de clientes inactivos fallido")
		return nil, err
	}

	updatedAt := uc.now().UTC()
	snapshot := entity.TargetCustomerSnapshot{UpdatedAt: &updatedAt, Data: targets}
	if err := uc.store.Save(ctx, snapshot); err != nil {
		log.Error().Err(err).Msg("no se pudo guardar la instantánea")
		return nil, fmt.Errorf("churn: guardar instantánea: %w", err)
	}

	log.Info().
		Time("updatedAt", updatedAt).
		Int("clientes", len(targets)).
		Dur("duracion", uc.now().Sub(started)).
		Msg("refresco de clientes inactivos OK")

	return &dto.RefreshResultDTO{RunID: runID, UpdatedAt: updatedAt, Count: len(targets)}, nil
}

// Read devuelve la instantánea guardada. tipo vacío no filtra; si no, solo
// quedan los clientes de ese tipo y count refleja el filtro.
func (uc *SnapshotUseCase) Read(ctx context.Context, q dto.TargetCustomersQuery) (*dto.TargetCustomersResponse, error) {
	snapshot, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}

	clientes := FilterByType(snapshot.Data, q.Tipo)
	return &dto.TargetCustomersResponse{
		UpdatedAt: snapshot.UpdatedAt,
		Stale:     snapshot.IsStale(uc.now(), uc.staleAfter),
		Count:     len(clientes),
		Clientes:  clientes,
	}, nil
}

// Geography desglose por provincia de la instantánea guardada.
func (uc *SnapshotUseCase) Geography(ctx context.Context, q dto.TargetCustomersQuery) (*dto.GeographyResponse, error) {
	snapshot, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}

	resp := BuildGeography(FilterByType(snapshot.Data, q.Tipo))
	resp.UpdatedAt = snapshot.UpdatedAt
	resp.Stale = snapshot.IsStale(uc.now(), uc.staleAfter)
	return resp, nil
}

// Snapshot instantánea completa (exportaciones).
func (uc *SnapshotUseCase) Snapshot(ctx context.Context) (*entity.TargetCustomerSnapshot, error) {
	return uc.load(ctx)
}

func (uc *SnapshotUseCase) load(ctx context.Context) (*entity.TargetCustomerSnapshot, error) {
	snapshot, err := uc.store.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrCacheNotGenerated) {
			return nil, err
		}
		return nil, fmt.Errorf("churn: leer instantánea: %w", err)
	}
	if snapshot.Data == nil {
		snapshot.Data = []entity.TargetCustomer{}
	}
	return snapshot, nil
}

// FilterByType filtra por customer_type exacto. tipo vacío devuelve la lista tal cual.
func FilterByType(in []entity.TargetCustomer, tipo string) []entity.TargetCustomer {
	if tipo == "" {
		return in
	}
	out := make([]entity.TargetCustomer, 0, len(in))
	for _, c := range in {
		if c.CustomerType == tipo {
			out = append(out, c)
		}
	}
	return out
}
