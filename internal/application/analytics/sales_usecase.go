package analytics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/ecommerce-metrics/internal/application/dto"
	"github.com/jhoicas/ecommerce-metrics/internal/domain/entity"
	"github.com/jhoicas/ecommerce-metrics/internal/domain/repository"
	"github.com/jhoicas/ecommerce-metrics/pkg/logger"
)

// ResultCache caché opcional de resultados (Redis). Con nil se llama siempre al Webservice.
type ResultCache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
}

// SalesUseCase agregadores de ventas sobre una ventana fija de días hacia atrás.
type SalesUseCase struct {
	repo  repository.SalesRepository
	cache ResultCache
	loc   *time.Location
	log   *logger.Logger
	now   func() time.Time
}

// Option configura SalesUseCase.
type Option func(*SalesUseCase)

// WithClock fija el reloj.
func WithClock(now func() time.Time) Option {
	return func(uc *SalesUseCase) { uc.now = now }
}

// WithCache activa la caché de resultados.
func WithCache(cache ResultCache) Option {
	return func(uc *SalesUseCase) { uc.cache = cache }
}

// NewSalesUseCase construye el caso de uso. loc es la zona horaria de la tienda.
func NewSalesUseCase(repo repository.SalesRepository, loc *time.Location, log *logger.Logger, opts ...Option) *SalesUseCase {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logger.Nop()
	}
	uc := &SalesUseCase{repo: repo, loc: loc, log: log.Component("analytics"), now: time.Now}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ── Casos de uso ──────────────────────────────────────────────────────────────

// TopProducts ranking de productos por facturación de los últimos days días.
func (uc *SalesUseCase) TopProducts(ctx context.Context, days, limit int) ([]dto.ProductSalesDTO, error) {
	out, err := cached(ctx, uc, func(ctx context.Context) ([]dto.ProductSalesDTO, error) {
		details, err := uc.detailsLastDays(ctx, days)
		if err != nil {
			return nil, err
		}
		return AggregateTopProducts(details, limit), nil
	}, "top", strconv.Itoa(days), strconv.Itoa(limit))
	if err != nil {
		return nil, fmt.Errorf("analytics: top productos: %w", err)
	}
	return out, nil
}

// TopProductsByCategory top por categoría: se parte de un top global amplio y se
// reparte por categoría, con corte a limit en cada una.
func (uc *SalesUseCase) TopProductsByCategory(ctx context.Context, days, limit int) (map[int][]dto.ProductSalesDTO, error) {
	out, err := cached(ctx, uc, func(ctx context.Context) (map[int][]dto.ProductSalesDTO, error) {
		var (
			details  []entity.OrderDetail
			products []entity.Product
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			details, err = uc.detailsLastDays(gctx, days)
			return err
		})
		g.Go(func() (err error) {
			products, err = uc.repo.Products(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		ranked := AggregateTopProducts(details, dto.ByCategoryPoolLimit)
		return GroupByCategory(ranked, products, limit), nil
	}, "top_by_category", strconv.Itoa(days), strconv.Itoa(limit))
	if err != nil {
		return nil, fmt.Errorf("analytics: top por categoría: %w", err)
	}
	return out, nil
}

// DeadStock productos sin ventas en los últimos days días.
func (uc *SalesUseCase) DeadStock(ctx context.Context, days int) ([]dto.DeadProductDTO, error) {
	out, err := cached(ctx, uc, func(ctx context.Context) ([]dto.DeadProductDTO, error) {
		return uc.deadProducts(ctx, days)
	}, "dead_stock", strconv.Itoa(days))
	if err != nil {
		return nil, fmt.Errorf("analytics: stock sin movimiento: %w", err)
	}
	return out, nil
}

// DeadStockByShop stock por tienda de los productos sin ventas.
func (uc *SalesUseCase) DeadStockByShop(ctx context.Context, days int) ([]dto.ShopStockDTO, error) {
	out, err := cached(ctx, uc, func(ctx context.Context) ([]dto.ShopStockDTO, error) {
		dead, err := uc.deadProducts(ctx, days)
		if err != nil {
			return nil, err
		}
		if len(dead) == 0 {
			return []dto.ShopStockDTO{}, nil
		}
		ids := make([]int, 0, len(dead))
		for _, p := range dead {
			ids = append(ids, p.ID)
		}
		rows, err := uc.repo.StockAvailables(ctx, ids)
		if err != nil {
			return nil, err
		}
		return ShopStock(rows), nil
	}, "dead_stock_by_shop", strconv.Itoa(days))
	if err != nil {
		return nil, fmt.Errorf("analytics: stock sin movimiento por tienda: %w", err)
	}
	return out, nil
}

// RotationByCategory cantidad y facturación por categoría.
func (uc *SalesUseCase) RotationByCategory(ctx context.Context, days int) ([]dto.CategoryRotationDTO, error) {
	out, err := cached(ctx, uc, func(ctx context.Context) ([]dto.CategoryRotationDTO, error) {
		var (
			details    []entity.OrderDetail
			products   []entity.Product
			categories []entity.Category
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			details, err = uc.detailsLastDays(gctx, days)
			return err
		})
		g.Go(func() (err error) {
			products, err = uc.repo.Products(gctx)
			return err
		})
		g.Go(func() (err error) {
			categories, err = uc.repo.Categories(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return RotateByCategory(details, products, categories), nil
	}, "rotation_category", strconv.Itoa(days))
	if err != nil {
		return nil, fmt.Errorf("analytics: rotación por categoría: %w", err)
	}
	return out, nil
}

// RotationByAttribute ventas por producto y combinación.
func (uc *SalesUseCase) RotationByAttribute(ctx context.Context, days int) ([]dto.AttributeRotationDTO, error) {
	out, err := cached(ctx, uc, func(ctx context.Context) ([]dto.AttributeRotationDTO, error) {
		details, err := uc.detailsLastDays(ctx, days)
		if err != nil {
			return nil, err
		}
		return RotateByAttribute(details), nil
	}, "rotation_product_attribute", strconv.Itoa(days))
	if err != nil {
		return nil, fmt.Errorf("analytics: rotación por atributo: %w", err)
	}
	return out, nil
}

// LowConversion cruza el top completo de la ventana con las vistas recibidas.
// Las vistas son externas, así que este resultado no se cachea.
func (uc *SalesUseCase) LowConversion(ctx context.Context, days int, viewsByProduct map[int]int, minViews int) ([]dto.LowConversionDTO, error) {
	details, err := uc.detailsLastDays(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("analytics: baja conversión: %w", err)
	}
	sales := AggregateTopProducts(details, 0)
	return RankLowConversion(sales, viewsByProduct, minViews), nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

// detailsLastDays líneas de las órdenes con date_add en [hoy - days*24h, hoy].
func (uc *SalesUseCase) detailsLastDays(ctx context.Context, days int) ([]entity.OrderDetail, error) {
	now := uc.now().In(uc.loc)
	from := now.Add(-time.Duration(days) * 24 * time.Hour)

	orders, err := uc.repo.OrdersInRange(ctx, from, now)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(orders))
	for _, o := range orders {
		if o.ID > 0 {
			ids = append(ids, o.ID)
		}
	}
	uc.log.Debug().Int("dias", days).Int("ordenes", len(ids)).Msg("órdenes de la ventana")
	if len(ids) == 0 {
		return []entity.OrderDetail{}, nil
	}
	return uc.repo.OrderDetails(ctx, ids)
}

func (uc *SalesUseCase) deadProducts(ctx context.Context, days int) ([]dto.DeadProductDTO, error) {
	var (
		details  []entity.OrderDetail
		products []entity.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		details, err = uc.detailsLastDays(gctx, days)
		return err
	})
	g.Go(func() (err error) {
		products, err = uc.repo.Products(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return DeadProducts(products, details), nil
}

// cached pasa por la caché si está configurada. La clave incluye el día de la
// tienda para que la ventana no quede corrida de un día a otro.
func cached[T any](ctx context.Context, uc *SalesUseCase, load func(context.Context) (T, error), parts ...string) (T, error) {
	if uc.cache == nil {
		return load(ctx)
	}

	var out T
	keyParts := append([]string{"analytics"}, parts...)
	keyParts = append(keyParts, uc.now().In(uc.loc).Format(entity.DateLayout))
	key, err := uc.cache.BuildKey(ctx, keyParts...)
	if err != nil {
		uc.log.Warn().Err(err).Str("consulta", parts[0]).Msg("caché no disponible, se consulta el Webservice")
		return load(ctx)
	}
	err = uc.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return value, nil
	})
	return out, err
}
