package churn

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/ecommerce-metrics/internal/domain/entity"
	"github.com/jhoicas/ecommerce-metrics/internal/domain/repository"
	"github.com/jhoicas/ecommerce-metrics/pkg/logger"
)

// TargetCustomerUseCase corre el pipeline completo contra el Webservice.
type TargetCustomerUseCase struct {
	repo       repository.CustomerRepository
	paidStates []int
	loc        *time.Location
	log        *logger.Logger
	now        func() time.Time
}

// Option configura los casos de uso del paquete.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock fija el reloj (tests y corridas reproducibles).
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// NewTargetCustomerUseCase construye el caso de uso. loc es la zona horaria de la tienda.
func NewTargetCustomerUseCase(
	repo repository.CustomerRepository,
	paidStates []int,
	loc *time.Location,
	log *logger.Logger,
	opts ...Option,
) *TargetCustomerUseCase {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logger.Nop()
	}
	o := buildOptions(opts)
	return &TargetCustomerUseCase{
		repo:       repo,
		paidStates: paidStates,
		loc:        loc,
		log:        log.Component("churn"),
		now:        o.now,
	}
}

// GetTargetCustomers trae órdenes pagas de los últimos 4 meses, clientes, grupos,
// provincias y direcciones, y devuelve los clientes objetivo.
//
// Órdenes, clientes, grupos y provincias se piden en paralelo; las direcciones
// esperan a las provincias. El primer error cancela el resto y no hay resultado parcial.
func (uc *TargetCustomerUseCase) GetTargetCustomers(ctx context.Context) ([]entity.TargetCustomer, error) {
	if err := uc.repo.CheckConfig(); err != nil {
		return nil, err
	}

	now := uc.now().In(uc.loc)
	window := NewWindow(now)

	uc.log.Info().
		Str("desde", window.FourMonthsAgo.Format(entity.DateLayout)).
		Str("hasta", now.Format(entity.DateLayout)).
		Msg("buscando órdenes pagas de los últimos 4 meses")

	var (
		orders    []entity.Order
		customers []entity.Customer
		groups    map[int]string
		contacts  map[int]entity.ContactInfo
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = uc.repo.PaidOrdersInRange(gctx, window.FourMonthsAgo, now, uc.paidStates)
		if err != nil {
			return fmt.Errorf("churn: órdenes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		customers, err = uc.repo.ActiveCustomers(gctx)
		if err != nil {
			return fmt.Errorf("churn: clientes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		groups, err = uc.repo.GroupNames(gctx)
		if err != nil {
			return fmt.Errorf("churn: grupos: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		states, err := uc.repo.StateNames(gctx)
		if err != nil {
			return fmt.Errorf("churn: provincias: %w", err)
		}
		addresses, err := uc.repo.Addresses(gctx)
		if err != nil {
			return fmt.Errorf("churn: direcciones: %w", err)
		}
		contacts = ResolveContacts(addresses, states)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	targets := Classify(now, Input{
		Orders:    orders,
		Customers: customers,
		Groups:    groups,
		Contacts:  contacts,
	})

	uc.log.Info().
		Int("ordenes", len(orders)).
		Int("clientes", len(customers)).
		Int("objetivo", len(targets)).
		Msg("clientes objetivo calculados")

	return targets, nil
}
