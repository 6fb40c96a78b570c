package churn

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/ecommerce-metrics/internal/application/dto"
	"github.com/jhoicas/ecommerce-metrics/internal/domain/entity"
)

// PDFRenderer genera el reporte PDF de clientes sin compra.
type PDFRenderer interface {
	RenderTargetCustomers(ctx context.Context, report TargetReport) ([]byte, error)
}

// TargetReport datos que recibe el generador de PDF.
type TargetReport struct {
	Snapshot  entity.TargetCustomerSnapshot
	Tipo      string // filtro aplicado, vacío = todos
	Geography *dto.GeographyResponse
}

// ExportQuery filtros de exportación.
type ExportQuery struct {
	Tipo   string `query:"tipo" validate:"max=100"`
	Latin1 bool   `query:"latin1"` // CSV en Windows-1252 para Excel
}

// ExportUseCase exporta la instantánea guardada a CSV o PDF.
type ExportUseCase struct {
	snapshots *SnapshotUseCase
	pdf       PDFRenderer
}

// NewExportUseCase construye el caso de uso. pdf puede ser nil si no se exporta PDF.
func NewExportUseCase(snapshots *SnapshotUseCase, pdf PDFRenderer) *ExportUseCase {
	return &ExportUseCase{snapshots: snapshots, pdf: pdf}
}

// CSV devuelve el archivo CSV y su nombre sugerido.
func (uc *ExportUseCase) CSV(ctx context.Context, q ExportQuery) ([]byte, string, error) {
	snapshot, err := uc.snapshots.Snapshot(ctx)
	if err != nil {
		return nil, "", err
	}
	targets := FilterByType(snapshot.Data, q.Tipo)

	var buf bytes.Buffer
	var w io.Writer = &buf
	var closer io.Closer
	if q.Latin1 {
		tw := transform.NewWriter(&buf, encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()))
		w, closer = tw, tw
	}
	if err := WriteTargetsCSV(w, targets); err != nil {
		return nil, "", fmt.Errorf("churn: exportar csv: %w", err)
	}
	if closer != nil {
		if err := closer.Close(); err != nil {
			return nil, "", fmt.Errorf("churn: exportar csv: %w", err)
		}
	}
	return buf.Bytes(), exportFilename(snapshot, "csv"), nil
}

// PDF devuelve el reporte PDF y su nombre sugerido.
func (uc *ExportUseCase) PDF(ctx context.Context, q ExportQuery) ([]byte, string, error) {
	if uc.pdf == nil {
		return nil, "", fmt.Errorf("churn: exportar pdf: generador no configurado")
	}
	snapshot, err := uc.snapshots.Snapshot(ctx)
	if err != nil {
		return nil, "", err
	}
	targets := FilterByType(snapshot.Data, q.Tipo)

	report := TargetReport{
		Snapshot:  entity.TargetCustomerSnapshot{UpdatedAt: snapshot.UpdatedAt, Data: targets},
		Tipo:      q.Tipo,
		Geography: BuildGeography(targets),
	}
	doc, err := uc.pdf.RenderTargetCustomers(ctx, report)
	if err != nil {
		return nil, "", fmt.Errorf("churn: exportar pdf: %w", err)
	}
	return doc, exportFilename(snapshot, "pdf"), nil
}

var csvHeader = []string{
	"ID", "Nombre", "Apellido", "Email", "Tipo de cliente", "Teléfono", "Provincia",
	"Última compra", "Pedidos 4 meses", "Total 4 meses",
}

// WriteTargetsCSV escribe una fila por cliente objetivo con encabezado.
func WriteTargetsCSV(w io.Writer, targets []entity.TargetCustomer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, c := range targets {
		if err := writer.Write([]string{
			strconv.Itoa(c.ID),
			c.FirstName,
			c.LastName,
			c.Email,
			c.CustomerType,
			c.Phone,
			c.Province,
			c.LastOrder,
			strconv.Itoa(c.OrdersCountLast4Months),
			c.TotalAmountLast4Months.StringFixed(2),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func exportFilename(snapshot *entity.TargetCustomerSnapshot, ext string) string {
	if snapshot.UpdatedAt == nil {
		return "clientes_inactivos." + ext
	}
	return "clientes_inactivos_" + snapshot.UpdatedAt.Format("20060102") + "." + ext
}
