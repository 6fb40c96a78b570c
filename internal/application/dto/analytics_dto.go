package dto

import "github.com/shopspring/decimal"

// ── Query parameters ──────────────────────────────────────────────────────────

// Valores por defecto de los endpoints de analítica.
const (
	DefaultSalesDays     = 30
	DefaultDeadStockDays = 60
	DefaultTopLimit      = 10
	ByCategoryPoolLimit  = 1000 // top global previo al corte por categoría
	DefaultMinViews      = 100
)

// TopProductsQuery parámetros para GET /analytics/products/top.
// Days default 30, Limit default 10; ByCategory devuelve un mapa por categoría.
type TopProductsQuery struct {
	Days       int  `query:"days" validate:"min=1,max=365"`
	Limit      int  `query:"limit" validate:"min=1,max=1000"`
	ByCategory bool `query:"byCategory"`
}

// DeadStockQuery parámetros para GET /analytics/products/dead-stock.
// Days default 60; ByShop devuelve filas de stock por tienda.
type DeadStockQuery struct {
	Days   int  `query:"days" validate:"min=1,max=365"`
	ByShop bool `query:"byShop"`
}

// RotationQuery parámetros para los endpoints de rotación (Days default 30).
type RotationQuery struct {
	Days int `query:"days" validate:"min=1,max=365"`
}

// LowConversionRequest cuerpo de POST /analytics/products/low-conversion.
// Las vistas vienen de una herramienta externa (Analytics, Matomo): PrestaShop no las tiene.
// Days 0 usa 30; MinViews nil usa 100.
type LowConversionRequest struct {
	Days           int         `json:"days" validate:"min=0,max=365"`
	MinViews       *int        `json:"min_views" validate:"omitempty,min=0"`
	ViewsByProduct map[int]int `json:"views_by_product" validate:"required"`
}

// ── Resultados ────────────────────────────────────────────────────────────────

// ProductSalesDTO ventas agregadas de un producto en la ventana.
type ProductSalesDTO struct {
	ProductID          int             `json:"product_id"`
	ProductAttributeID int             `json:"product_attribute_id"` // primera combinación vista
	Name               string          `json:"name"`
	TotalQty           int             `json:"total_qty"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"` // suma de total_price_tax_incl
}

// DeadProductDTO producto del catálogo sin ventas en la ventana.
type DeadProductDTO struct {
	ID          int             `json:"id"`
	Reference   string          `json:"reference"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Active      bool            `json:"active"`
	CategoryIDs []int           `json:"category_ids"`
}

// ShopStockDTO stock de un producto muerto en una tienda.
type ShopStockDTO struct {
	ProductID          int `json:"product_id"`
	ProductAttributeID int `json:"id_product_attribute"`
	ShopID             int `json:"id_shop"`
	Quantity           int `json:"quantity"`
}

// CategoryRotationDTO cantidad y facturación de una categoría.
// Un producto en varias categorías suma completo en cada una.
type CategoryRotationDTO struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	TotalQty     int             `json:"total_qty"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// AttributeRotationDTO ventas agrupadas por producto y combinación (talle, color...).
type AttributeRotationDTO struct {
	ProductID          int             `json:"product_id"`
	ProductAttributeID string          `json:"product_attribute_id"`
	Name               string          `json:"name"`
	TotalQty           int             `json:"total_qty"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
}

// LowConversionDTO producto con vistas suficientes y su conversión (unidades / vistas).
type LowConversionDTO struct {
	ProductSalesDTO
	Views      int     `json:"views"`
	Conversion float64 `json:"conversion"`
}

// ── Respuestas ────────────────────────────────────────────────────────────────

// AnalyticsResponse envoltorio común de los endpoints de analítica.
type AnalyticsResponse struct {
	OK         bool `json:"ok"`
	Days       int  `json:"days"`
	Limit      int  `json:"limit,omitempty"`
	ByCategory bool `json:"byCategory,omitempty"`
	ByShop     bool `json:"byShop,omitempty"`
	MinViews   int  `json:"minViews,omitempty"`
	Data       any  `json:"data"`
}

// AnalyticsErrorResponse cuerpo 500 de los endpoints de analítica.
type AnalyticsErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
