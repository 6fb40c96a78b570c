package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ecommerce-metrics/internal/application/analytics"
	"github.com/jhoicas/ecommerce-metrics/internal/application/dto"
	"github.com/jhoicas/ecommerce-metrics/pkg/logger"
)

// AnalyticsHandler endpoints de analítica de ventas sobre el Webservice.
type AnalyticsHandler struct {
	uc  *analytics.SalesUseCase
	log *logger.Logger
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(uc *analytics.SalesUseCase, log *logger.Logger) *AnalyticsHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AnalyticsHandler{uc: uc, log: log.Component("http")}
}

// TopProducts godoc
// @Summary      Productos más vendidos
// @Description  Ranking por facturación de los últimos N días. Con byCategory=1 devuelve un top por categoría.
// @Tags         analytics
// @Produce      json
// @Param        days        query  int  false  "Días hacia atrás (default 30)"
// @Param        limit       query  int  false  "Máx. productos (default 10)"
// @Param        byCategory  query  int  false  "1 = agrupar por categoría"
// @Success      200  {object}  dto.AnalyticsResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.AnalyticsErrorResponse
// @Router       /api/prestashop/analytics/products/top [get]
func (h *AnalyticsHandler) TopProducts(c *fiber.Ctx) error {
	q := dto.TopProductsQuery{
		Days:       queryPositive(c, "days", dto.DefaultSalesDays),
		Limit:      queryPositive(c, "limit", dto.DefaultTopLimit),
		ByCategory: queryFlag(c, "byCategory"),
	}
	if ok, err := checkStruct(c, q); !ok {
		return err
	}

	resp := dto.AnalyticsResponse{OK: true, Days: q.Days, Limit: q.Limit, ByCategory: q.ByCategory}
	if q.ByCategory {
		data, err := h.uc.TopProductsByCategory(c.UserContext(), q.Days, q.Limit)
		if err != nil {
			return h.fail(c, err)
		}
		resp.Data = data
		return c.JSON(resp)
	}

	data, err := h.uc.TopProducts(c.UserContext(), q.Days, q.Limit)
	if err != nil {
		return h.fail(c, err)
	}
	resp.Data = data
	return c.JSON(resp)
}

// DeadStock godoc
// @Summary      Productos sin ventas
// @Tags         analytics
// @Produce      json
// @Param        days    query  int  false  "Días hacia atrás (default 60)"
// @Param        byShop  query  int  false  "1 = stock por tienda"
// @Success      200  {object}  dto.AnalyticsResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.AnalyticsErrorResponse
// @Router       /api/prestashop/analytics/products/dead-stock [get]
func (h *AnalyticsHandler) DeadStock(c *fiber.Ctx) error {
	q := dto.DeadStockQuery{
		Days:   queryPositive(c, "days", dto.DefaultDeadStockDays),
		ByShop: queryFlag(c, "byShop"),
	}
	if ok, err := checkStruct(c, q); !ok {
		return err
	}

	resp := dto.AnalyticsResponse{OK: true, Days: q.Days, ByShop: q.ByShop}
	if q.ByShop {
		data, err := h.uc.DeadStockByShop(c.UserContext(), q.Days)
		if err != nil {
			return h.fail(c, err)
		}
		resp.Data = data
		return c.JSON(resp)
	}

	data, err := h.uc.DeadStock(c.UserContext(), q.Days)
	if err != nil {
		return h.fail(c, err)
	}
	resp.Data = data
	return c.JSON(resp)
}

// CategoryRotation godoc
// @Summary      Rotación por categoría
// @Tags         analytics
// @Produce      json
// @Param        days  query  int  false  "Días hacia atrás (default 30)"
// @Success      200  {object}  dto.AnalyticsResponse
// @Failure      500  {object}  dto.AnalyticsErrorResponse
// @Router       /api/prestashop/analytics/categories/rotation [get]
func (h *AnalyticsHandler) CategoryRotation(c *fiber.Ctx) error {
	q := dto.RotationQuery{Days: queryPositive(c, "days", dto.DefaultSalesDays)}
	if ok, err := checkStruct(c, q); !ok {
		return err
	}
	data, err := h.uc.RotationByCategory(c.UserContext(), q.Days)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.AnalyticsResponse{OK: true, Days: q.Days, Data: data})
}

// AttributeRotation godoc
// @Summary      Rotación por combinación (talle, color)
// @Tags         analytics
// @Produce      json
// @Param        days  query  int  false  "Días hacia atrás (default 30)"
// @Success      200  {object}  dto.AnalyticsResponse
// @Failure      500  {object}  dto.AnalyticsErrorResponse
// @Router       /api/prestashop/analytics/attributes/rotation [get]
func (h *AnalyticsHandler) AttributeRotation(c *fiber.Ctx) error {
	q := dto.RotationQuery{Days: queryPositive(c, "days", dto.DefaultSalesDays)}
	if ok, err := checkStruct(c, q); !ok {
		return err
	}
	data, err := h.uc.RotationByAttribute(c.UserContext(), q.Days)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.AnalyticsResponse{OK: true, Days: q.Days, Data: data})
}

// LowConversion godoc
// @Summary      Productos con baja conversión
// @Description  Cruza las ventas con las vistas enviadas en el cuerpo (PrestaShop no registra vistas).
// @Tags         analytics
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LowConversionRequest  true  "Vistas por producto"
// @Success      200  {object}  dto.AnalyticsResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.AnalyticsErrorResponse
// @Router       /api/prestashop/analytics/products/low-conversion [post]
func (h *AnalyticsHandler) LowConversion(c *fiber.Ctx) error {
	var in dto.LowConversionRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if ok, err := checkStruct(c, in); !ok {
		return err
	}
	days := in.Days
	if days <= 0 {
		days = dto.DefaultSalesDays
	}
	minViews := dto.DefaultMinViews
	if in.MinViews != nil {
		minViews = *in.MinViews
	}

	data, err := h.uc.LowConversion(c.UserContext(), days, in.ViewsByProduct, minViews)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.AnalyticsResponse{OK: true, Days: days, MinViews: minViews, Data: data})
}

func (h *AnalyticsHandler) fail(c *fiber.Ctx, err error) error {
	h.log.Error().Err(err).Str("path", c.Path()).Msg("analítica")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.AnalyticsErrorResponse{OK: false, Error: err.Error()})
}

// queryPositive entero de la query; ausente, inválido o ≤ 0 usa def.
func queryPositive(c *fiber.Ctx, key string, def int) int {
	n := c.QueryInt(key, def)
	if n <= 0 {
		return def
	}
	return n
}

// queryFlag "1" o "true" activan la opción.
func queryFlag(c *fiber.Ctx, key string) bool {
	v := c.Query(key)
	return v == "1" || v == "true"
}
