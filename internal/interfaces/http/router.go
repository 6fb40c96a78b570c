package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/jhoicas/ecommerce-metrics/internal/application/analytics"
	"github.com/jhoicas/ecommerce-metrics/internal/application/churn"
	"github.com/jhoicas/ecommerce-metrics/internal/application/dto"
	"github.com/jhoicas/ecommerce-metrics/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Snapshots        *churn.SnapshotUseCase
	Exports          *churn.ExportUseCase
	Sales            *analytics.SalesUseCase
	Webservice       configChecker
	RefreshPerMinute int // refrescos manuales por minuto; ≤ 0 sin límite
	Log              *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api/prestashop")

	// Clientes sin compra
	churnHandler := NewChurnHandler(deps.Snapshots, deps.Exports, deps.Log)
	clientes := api.Group("/clientes-sin-compra")
	clientes.Get("/", churnHandler.List)
	clientes.Get("/refresh", refreshLimiter(deps.RefreshPerMinute), churnHandler.Refresh)
	clientes.Get("/geografia", churnHandler.Geography)
	clientes.Get("/export.csv", churnHandler.ExportCSV)
	clientes.Get("/export.pdf", churnHandler.ExportPDF)

	// Analítica (consulta el Webservice en cada request salvo caché)
	analyticsHandler := NewAnalyticsHandler(deps.Sales, deps.Log)
	an := api.Group("/analytics", RequireWebservice(deps.Webservice))
	an.Get("/products/top", analyticsHandler.TopProducts)
	an.Get("/products/dead-stock", analyticsHandler.DeadStock)
	an.Post("/products/low-conversion", analyticsHandler.LowConversion)
	an.Get("/categories/rotation", analyticsHandler.CategoryRotation)
	an.Get("/attributes/rotation", analyticsHandler.AttributeRotation)
}

// refreshLimiter cada refresco recorre todo el Webservice.
func refreshLimiter(perMinute int) fiber.Handler {
	if perMinute <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code:    "TOO_MANY_REQUESTS",
				Message: "refresco en curso o demasiado frecuente, intente en un minuto",
			})
		},
	})
}
