package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ecommerce-metrics/internal/application/churn"
	"github.com/jhoicas/ecommerce-metrics/internal/application/dto"
	"github.com/jhoicas/ecommerce-metrics/internal/domain"
	"github.com/jhoicas/ecommerce-metrics/pkg/logger"
)

// ChurnHandler endpoints de clientes sin compra reciente.
type ChurnHandler struct {
	snapshots *churn.SnapshotUseCase
	exports   *churn.ExportUseCase
	log       *logger.Logger
}

// NewChurnHandler construye el handler.
func NewChurnHandler(snapshots *churn.SnapshotUseCase, exports *churn.ExportUseCase, log *logger.Logger) *ChurnHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ChurnHandler{snapshots: snapshots, exports: exports, log: log.Component("http")}
}

// Refresh godoc
// @Summary      Recalcular clientes sin compra
// @Description  Corre el pipeline completo contra el Webservice y sobrescribe el archivo de caché.
// @Tags         clientes-sin-compra
// @Produce      json
// @Success      200  {object}  dto.RefreshResponse
// @Failure      500  {object}  dto.RefreshErrorResponse
// @Router       /api/prestashop/clientes-sin-compra/refresh [get]
func (h *ChurnHandler) Refresh(c *fiber.Ctx) error {
	res, err := h.snapshots.Refresh(c.UserContext())
	if err != nil {
		h.log.Error().Err(err).Msg("refresh clientes-sin-compra")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.RefreshErrorResponse{
			OK:      false,
			Error:   dto.RefreshErrorMessage,
			Detalle: err.Error(),
		})
	}
	return c.JSON(dto.RefreshResponse{
		OK:        true,
		Message:   dto.RefreshMessage,
		UpdatedAt: res.UpdatedAt,
		Count:     res.Count,
	})
}

// List godoc
// @Summary      Clientes sin compra (desde caché)
// @Tags         clientes-sin-compra
// @Produce      json
// @Param        tipo  query  string  false  "Filtra por tipo de cliente (grupo por defecto)"
// @Success      200  {object}  dto.TargetCustomersResponse
// @Failure      404  {object}  dto.SnapshotErrorResponse
// @Failure      500  {object}  dto.SnapshotErrorResponse
// @Router       /api/prestashop/clientes-sin-compra [get]
func (h *ChurnHandler) List(c *fiber.Ctx) error {
	var q dto.TargetCustomersQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "INVALID_PARAMS", "parámetros de consulta inválidos")
	}
	if ok, err := checkStruct(c, q); !ok {
		return err
	}

	out, err := h.snapshots.Read(c.UserContext(), q)
	if err != nil {
		return h.snapshotError(c, err)
	}
	return c.JSON(out)
}

// Geography godoc
// @Summary      Pérdida potencial por provincia
// @Tags         clientes-sin-compra
// @Produce      json
// @Param        tipo  query  string  false  "Filtra por tipo de cliente"
// @Success      200  {object}  dto.GeographyResponse
// @Failure      404  {object}  dto.SnapshotErrorResponse
// @Failure      500  {object}  dto.SnapshotErrorResponse
// @Router       /api/prestashop/clientes-sin-compra/geografia [get]
func (h *ChurnHandler) Geography(c *fiber.Ctx) error {
	var q dto.TargetCustomersQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "INVALID_PARAMS", "parámetros de consulta inválidos")
	}
	if ok, err := checkStruct(c, q); !ok {
		return err
	}

	out, err := h.snapshots.Geography(c.UserContext(), q)
	if err != nil {
		return h.snapshotError(c, err)
	}
	return c.JSON(out)
}

// ExportCSV godoc
// @Summary      Exportar clientes sin compra a CSV
// @Tags         clientes-sin-compra
// @Produce      text/csv
// @Param        tipo    query  string  false  "Filtra por tipo de cliente"
// @Param        latin1  query  bool    false  "Codificación Windows-1252 (Excel)"
// @Success      200
// @Failure      404  {object}  dto.SnapshotErrorResponse
// @Router       /api/prestashop/clientes-sin-compra/export.csv [get]
func (h *ChurnHandler) ExportCSV(c *fiber.Ctx) error {
	var q churn.ExportQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "INVALID_PARAMS", "parámetros de consulta inválidos")
	}
	if ok, err := checkStruct(c, q); !ok {
		return err
	}

	body, filename, err := h.exports.CSV(c.UserContext(), q)
	if err != nil {
		return h.snapshotError(c, err)
	}
	charset := "utf-8"
	if q.Latin1 {
		charset = "windows-1252"
	}
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, "text/csv; charset="+charset)
	return c.Send(body)
}

// ExportPDF godoc
// @Summary      Reporte PDF de clientes sin compra
// @Tags         clientes-sin-compra
// @Produce      application/pdf
// @Param        tipo  query  string  false  "Filtra por tipo de cliente"
// @Success      200
// @Failure      404  {object}  dto.SnapshotErrorResponse
// @Router       /api/prestashop/clientes-sin-compra/export.pdf [get]
func (h *ChurnHandler) ExportPDF(c *fiber.Ctx) error {
	var q churn.ExportQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "INVALID_PARAMS", "parámetros de consulta inválidos")
	}
	if ok, err := checkStruct(c, q); !ok {
		return err
	}

	body, filename, err := h.exports.PDF(c.UserContext(), q)
	if err != nil {
		return h.snapshotError(c, err)
	}
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(body)
}

// snapshotError 404 si todavía no se generó el archivo; 500 en cualquier otro caso.
func (h *ChurnHandler) snapshotError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrCacheNotGenerated) {
		return c.Status(fiber.StatusNotFound).JSON(dto.SnapshotErrorResponse{Error: dto.NotGeneratedMessage})
	}
	h.log.Error().Err(err).Str("path", c.Path()).Msg("lectura de clientes-sin-compra")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.SnapshotErrorResponse{Error: err.Error()})
}
