package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ecommerce-metrics/internal/domain/entity"
)

// ── Clientes sin compra ──────────────────────────────────────────────────────

// RefreshMessage texto fijo de la respuesta de refresco exitoso.
const RefreshMessage = "Proceso de refresco finalizado"

// RefreshErrorMessage texto fijo de la respuesta de refresco fallido.
const RefreshErrorMessage = "Error durante la actualización de clientes inactivos"

// NotGeneratedMessage respuesta 404 cuando todavía no hay archivo de caché.
const NotGeneratedMessage = "No hay datos generados todavía. Ejecutá /api/prestashop/clientes-sin-compra/refresh primero."

// RefreshResultDTO resultado de una corrida del pipeline.
type RefreshResultDTO struct {
	RunID     string    `json:"-"`
	UpdatedAt time.Time `json:"updatedAt"`
	Count     int       `json:"count"`
}

// RefreshResponse cuerpo 200 de GET /clientes-sin-compra/refresh.
type RefreshResponse struct {
	OK        bool      `json:"ok"`
	Message   string    `json:"message"`
	UpdatedAt time.Time `json:"updatedAt"`
	Count     int       `json:"count"`
}

// RefreshErrorResponse cuerpo 500 de GET /clientes-sin-compra/refresh.
type RefreshErrorResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Detalle string `json:"detalle"`
}

// TargetCustomersQuery filtros opcionales de lectura.
type TargetCustomersQuery struct {
	Tipo string `query:"tipo" validate:"max=100"`
}

// TargetCustomersResponse cuerpo de GET /clientes-sin-compra.
type TargetCustomersResponse struct {
	UpdatedAt *time.Time              `json:"updatedAt"`
	Stale     bool                    `json:"stale"`
	Count     int                     `json:"count"`
	Clientes  []entity.TargetCustomer `json:"clientes"`
}

// ── Geografía ────────────────────────────────────────────────────────────────

// SinProvincia etiqueta para clientes sin provincia resuelta.
const SinProvincia = "Sin Provincia"

// ProvinceSummaryDTO pérdida potencial de una provincia.
type ProvinceSummaryDTO struct {
	Provincia          string          `json:"provincia"`
	TotalClientes      int             `json:"totalClientes"`
	TotalPerdido       decimal.Decimal `json:"totalPerdido"`
	TotalPedidos       int             `json:"totalPedidos"`
	PromedioPorPedido  decimal.Decimal `json:"promedioPorPedido"`
	PromedioPorCliente decimal.Decimal `json:"promedioPorCliente"`
}

// GeographyResponse cuerpo de GET /clientes-sin-compra/geografia.
type GeographyResponse struct {
	UpdatedAt           *time.Time           `json:"updatedAt"`
	Stale               bool                 `json:"stale"`
	TotalClientes       int                  `json:"totalClientes"`
	TotalPerdido        decimal.Decimal      `json:"totalPerdido"`
	ProvinciasAfectadas int                  `json:"provinciasAfectadas"`
	PeorProvincia       *ProvinceSummaryDTO  `json:"peorProvincia"`
	Provincias          []ProvinceSummaryDTO `json:"provincias"`
}

// SnapshotErrorResponse cuerpo 404/500 de las lecturas de la instantánea.
type SnapshotErrorResponse struct {
	Error string `json:"error"`
}
