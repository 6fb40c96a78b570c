package repository

import (
	"context"

	"github.com/jhoicas/ecommerce-metrics/internal/domain/entity"
)

// SnapshotRepository persistencia de la última corrida de clientes sin compra.
// Save sobrescribe por completo; Load devuelve domain.ErrCacheNotGenerated si no hay nada guardado.
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot entity.TargetCustomerSnapshot) error
	Load(ctx context.Context) (*entity.TargetCustomerSnapshot, error)
}
