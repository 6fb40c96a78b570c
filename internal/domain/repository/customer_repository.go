package repository

import (
	"context"
	"time"

	"github.com/jhoicas/ecommerce-metrics/internal/domain/entity"
)

// CustomerRepository define las lecturas del Webservice que necesita el pipeline de
// clientes sin compra. Las implementaciones son read-only.
type CustomerRepository interface {
	// CheckConfig falla con *domain.ConfigError si faltan credenciales. No hace red.
	CheckConfig() error

	// PaidOrdersInRange órdenes con current_state en paidStates y date_add en [from, to] (fechas).
	PaidOrdersInRange(ctx context.Context, from, to time.Time, paidStates []int) ([]entity.Order, error)

	// ActiveCustomers clientes activos y no invitados, en el orden del Webservice.
	ActiveCustomers(ctx context.Context) ([]entity.Customer, error)

	// GroupNames id de grupo → nombre visible (tipo de cliente).
	GroupNames(ctx context.Context) (map[int]string, error)

	// StateNames id de provincia → nombre.
	StateNames(ctx context.Context) (map[int]string, error)

	// Addresses direcciones no eliminadas, en el orden del Webservice.
	Addresses(ctx context.Context) ([]entity.Address, error)
}
