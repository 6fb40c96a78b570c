package repository

import (
	"context"
	"time"

	"github.com/jhoicas/ecommerce-metrics/internal/domain/entity"
)

// SalesRepository lecturas de ventas y catálogo para los agregadores de analítica.
type SalesRepository interface {
	// OrdersInRange todas las órdenes con date_add en [from, to] (fechas), sin filtrar estado.
	OrdersInRange(ctx context.Context, from, to time.Time) ([]entity.Order, error)

	// OrderDetails líneas de las órdenes indicadas.
	OrderDetails(ctx context.Context, orderIDs []int) ([]entity.OrderDetail, error)

	// Products catálogo completo con categorías asociadas.
	Products(ctx context.Context) ([]entity.Product, error)

	// Categories categorías con nombre resuelto.
	Categories(ctx context.Context) ([]entity.Category, error)

	// StockAvailables stock por tienda de los productos indicados.
	StockAvailables(ctx context.Context, productIDs []int) ([]entity.StockAvailable, error)
}
