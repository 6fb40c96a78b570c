package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ecommerce-metrics/internal/application/analytics"
	"github.com/jhoicas/ecommerce-metrics/internal/application/churn"
	"github.com/jhoicas/ecommerce-metrics/internal/application/dto"
	"github.com/jhoicas/ecommerce-metrics/internal/domain"
	"github.com/jhoicas/ecommerce-metrics/internal/domain/entity"
	"github.com/jhoicas/ecommerce-metrics/internal/infrastructure/filecache"
	"github.com/jhoicas/ecommerce-metrics/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/ecommerce-metrics/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type fetcherFunc func(ctx context.Context) ([]entity.TargetCustomer, error)

func (f fetcherFunc) GetTargetCustomers(ctx context.Context) ([]entity.TargetCustomer, error) {
	return f(ctx)
}

func sampleTargets() []entity.TargetCustomer {
	return []entity.TargetCustomer{
		{
			ID: 1, FirstName: "Ana", LastName: "Pérez", Email: "ana@example.com",
			CustomerType: "Minorista", Province: "Mendoza", LastOrder: "2024-04-10 10:00:00",
			OrdersCountLast4Months: 2, TotalAmountLast4Months: decimal.RequireFromString("300"),
		},
		{
			ID: 2, FirstName: "Juan", LastName: "Gómez", Email: "juan@example.com",
			CustomerType: "Mayorista", LastOrder: "2024-03-01 08:30:00",
			OrdersCountLast4Months: 1, TotalAmountLast4Months: decimal.RequireFromString("50"),
		},
	}
}

type fakeSales struct{}

func (fakeSales) OrdersInRange(context.Context, time.Time, time.Time) ([]entity.Order, error) {
	return []entity.Order{{ID: 10}}, nil
}

func (fakeSales) OrderDetails(context.Context, []int) ([]entity.OrderDetail, error) {
	return []entity.OrderDetail{
		{OrderID: 10, ProductID: 1, ProductName: "Remera", Quantity: 2, TotalPriceTaxIncl: decimal.RequireFromString("40")},
		{OrderID: 10, ProductID: 2, ProductName: "Buzo", Quantity: 1, TotalPriceTaxIncl: decimal.RequireFromString("100")},
	}, nil
}

func (fakeSales) Products(context.Context) ([]entity.Product, error) {
	return []entity.Product{{ID: 1, CategoryIDs: []int{5}}, {ID: 2, CategoryIDs: []int{5}}, {ID: 3}}, nil
}

func (fakeSales) Categories(context.Context) ([]entity.Category, error) {
	return []entity.Category{{ID: 5, Name: "Ropa"}}, nil
}

func (fakeSales) StockAvailables(context.Context, []int) ([]entity.StockAvailable, error) {
	return []entity.StockAvailable{{ProductID: 3, ShopID: 1, Quantity: 4}}, nil
}

type checkerFunc func() error

func (f checkerFunc) CheckConfig() error { return f() }

type testAppOpts struct {
	fetcher    churn.TargetFetcher
	webservice func() error
	perMinute  int
}

func buildTestApp(t *testing.T, opts testAppOpts) *fiber.App {
	t.Helper()
	if opts.fetcher == nil {
		opts.fetcher = fetcherFunc(func(context.Context) ([]entity.TargetCustomer, error) {
			return sampleTargets(), nil
		})
	}
	clock := churn.WithClock(func() time.Time { return testNow })
	store := filecache.NewSnapshotStore(filepath.Join(t.TempDir(), "clientes_inactivos.json"))
	snapshots := churn.NewSnapshotUseCase(opts.fetcher, store, 24*time.Hour, nil, clock)
	exports := churn.NewExportUseCase(snapshots, pdf.NewTargetCustomersPDF("Tienda", time.UTC))
	sales := analytics.NewSalesUseCase(fakeSales{}, time.UTC, nil,
		analytics.WithClock(func() time.Time { return testNow }))

	deps := apphttp.RouterDeps{
		Snapshots:        snapshots,
		Exports:          exports,
		Sales:            sales,
		RefreshPerMinute: opts.perMinute,
	}
	if opts.webservice != nil {
		deps.Webservice = checkerFunc(opts.webservice)
	}

	app := fiber.New()
	apphttp.Router(app, deps)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ──────────────────────────────────────────────────────────────────────────────
// Clientes sin compra
// ──────────────────────────────────────────────────────────────────────────────

func TestLista_SinArchivoRetorna404(t *testing.T) {
	app := buildTestApp(t, testAppOpts{})

	resp := doRequest(t, app, http.MethodGet, "/api/prestashop/clientes-sin-compra", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]any
	decode(t, resp, &body)
	assert.Equal(t, dto.NotGeneratedMessage, body["error"])
}

func TestRefreshYLectura(t *testing.T) {
	app := buildTestApp(t, testAppOpts{})

	resp := doRequest(t, app, http.MethodGet, "/api/prestashop/clientes-sin-compra/refresh", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var refreshed map[string]any
	decode(t, resp, &refreshed)
	assert.Equal(t, true, refreshed["ok"])
	assert.Equal(t, dto.RefreshMessage, refreshed["message"])
	assert.EqualValues(t, 2, refreshed["count"])
	assert.NotEmpty(t, refreshed["updatedAt"])

	resp = doRequest(t, app, http.MethodGet, "/api/prestashop/clientes-sin-compra", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list map[string]any
	decode(t, resp, &list)
	assert.Equal(t, false, list["stale"])
	assert.EqualValues(t, 2, list["count"])
	assert.Len(t, list["clientes"], 2)

	resp = doRequest(t, app, http.MethodGet, "/api/prestashop/clientes-sin-compra?tipo=Mayorista", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var filtered map[string]any
	decode(t, resp, &filtered)
	assert.EqualValues(t, 1, filtered["count"])
}

func TestRefresh_ErrorDelPipelineRetorna500(t *testing.T) {
	app := buildTestApp(t, testAppOpts{
		fetcher: fetcherFunc(func(context.Context) ([]entity.TargetCustomer, error) {
			return nil, &domain.UpstreamError{Resource: "orders", StatusCode: 503, Body: "mantenimiento"}
		}),
	})

	resp := doRequest(t, app, http.MethodGet, "/api/prestashop/clientes-sin-compra/refresh", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]any
	decode(t, resp, &body)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, dto.RefreshErrorMessage, body["error"])
	assert.Equal(t, "Error Presta orders: 503 - mantenimiento", body["detalle"])
}

func TestRefresh_LimiteDePeticiones(t *testing.T) {
	app := buildTestApp(t, testAppOpts{perMinute: 1})

	first := doRequest(t, app, http.MethodGet, "/api/prestashop/clientes-sin-compra/refresh", "")
	first.Body.Close()
	assert.Equal(t, http.StatusOK, first.StatusCode)

	second := doRequest(t, app, http.MethodGet, "/api/prestashop/clientes-sin-compra/refresh", "")
	second.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
}

func TestGeografia(t *testing.T) {
	app := buildTestApp(t, testAppOpts{})
	doRequest(t, app, http.MethodGet, "/api/prestashop/clientes-sin-compra/refresh", "").Body.Close()

	resp := doRequest(t, app, http.MethodGet, "/api/prestashop/clientes-sin-compra/geografia", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.GeographyResponse
	decode(t, resp, &body)
	assert.Equal(t, 2, body.TotalClientes)
	assert.Equal(t, 2, body.ProvinciasAfectadas)
	require.NotNil(t, body.PeorProvincia)
	assert.Equal(t, "Mendoza", body.PeorProvincia.Provincia)
	assert.Equal(t, dto.SinProvincia, body.Provincias[1].Provincia)
}

func TestExportaciones(t *testing.T) {
	app := buildTestApp(t, testAppOpts{})
	doRequest(t, app, http.MethodGet, "/api/prestashop/clientes-sin-compra/refresh", "").Body.Close()

	resp := doRequest(t, app, http.MethodGet, "/api/prestashop/clientes-sin-compra/export.csv", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "clientes_inactivos_")
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "ID,Nombre,Apellido"))

	resp = doRequest(t, app, http.MethodGet, "/api/prestashop/clientes-sin-compra/export.pdf", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	raw, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "%PDF-"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Analítica
// ──────────────────────────────────────────────────────────────────────────────

func TestTopProducts_ValoresPorDefecto(t *testing.T) {
	app := buildTestApp(t, testAppOpts{})

	resp := doRequest(t, app, http.MethodGet, "/api/prestashop/analytics/products/top?days=abc", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		OK    bool                  `json:"ok"`
		Days  int                   `json:"days"`
		Limit int                   `json:"limit"`
		Data  []dto.ProductSalesDTO `json:"data"`
	}
	decode(t, resp, &body)
	assert.True(t, body.OK)
	assert.Equal(t, dto.DefaultSalesDays, body.Days)
	assert.Equal(t, dto.DefaultTopLimit, body.Limit)
	require.Len(t, body.Data, 2)
	assert.Equal(t, 2, body.Data[0].ProductID)
}

func TestTopProducts_PorCategoria(t *testing.T) {
	app := buildTestApp(t, testAppOpts{})

	resp := doRequest(t, app, http.MethodGet, "/api/prestashop/analytics/products/top?byCategory=1&limit=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		ByCategory bool                             `json:"byCategory"`
		Data       map[string][]dto.ProductSalesDTO `json:"data"`
	}
	decode(t, resp, &body)
	assert.True(t, body.ByCategory)
	require.Len(t, body.Data["5"], 1)
	assert.Equal(t, 2, body.Data["5"][0].ProductID)
}

func TestTopProducts_DiasFueraDeRangoRetorna400(t *testing.T) {
	app := buildTestApp(t, testAppOpts{})

	resp := doRequest(t, app, http.MethodGet, "/api/prestashop/analytics/products/top?days=400", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "VALIDATION", body.Code)
}

func TestDeadStockPorTienda(t *testing.T) {
	app := buildTestApp(t, testAppOpts{})

	resp := doRequest(t, app, http.MethodGet, "/api/prestashop/analytics/products/dead-stock?byShop=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Days   int                `json:"days"`
		ByShop bool               `json:"byShop"`
		Data   []dto.ShopStockDTO `json:"data"`
	}
	decode(t, resp, &body)
	assert.Equal(t, dto.DefaultDeadStockDays, body.Days)
	assert.True(t, body.ByShop)
	require.Len(t, body.Data, 1)
	assert.Equal(t, 3, body.Data[0].ProductID)
}

func TestRotaciones(t *testing.T) {
	app := buildTestApp(t, testAppOpts{})

	resp := doRequest(t, app, http.MethodGet, "/api/prestashop/analytics/categories/rotation?days=7", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var byCat struct {
		Days int                       `json:"days"`
		Data []dto.CategoryRotationDTO `json:"data"`
	}
	decode(t, resp, &byCat)
	assert.Equal(t, 7, byCat.Days)
	require.Len(t, byCat.Data, 1)
	assert.Equal(t, "Ropa", byCat.Data[0].Name)
	assert.Equal(t, 3, byCat.Data[0].TotalQty)

	resp = doRequest(t, app, http.MethodGet, "/api/prestashop/analytics/attributes/rotation", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var byAttr struct {
		Data []dto.AttributeRotationDTO `json:"data"`
	}
	decode(t, resp, &byAttr)
	require.Len(t, byAttr.Data, 2)
	assert.Equal(t, 2, byAttr.Data[0].ProductID)
	assert.Equal(t, "0", byAttr.Data[0].ProductAttributeID)
	assert.Equal(t, 1, byAttr.Data[1].ProductID)
	assert.Equal(t, "0", byAttr.Data[1].ProductAttributeID)
}

func TestLowConversion(t *testing.T) {
	app := buildTestApp(t, testAppOpts{})

	resp := doRequest(t, app, http.MethodPost, "/api/prestashop/analytics/products/low-conversion",
		`{"min_views": 10, "views_by_product": {"1": 100, "2": 20}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Days     int                    `json:"days"`
		MinViews int                    `json:"minViews"`
		Data     []dto.LowConversionDTO `json:"data"`
	}
	decode(t, resp, &body)
	assert.Equal(t, dto.DefaultSalesDays, body.Days)
	assert.Equal(t, 10, body.MinViews)
	require.Len(t, body.Data, 2)
	assert.Equal(t, 1, body.Data[0].ProductID)
	assert.InDelta(t, 0.02, body.Data[0].Conversion, 1e-9)
}

func TestLowConversion_SinVistasRetorna400(t *testing.T) {
	app := buildTestApp(t, testAppOpts{})

	resp := doRequest(t, app, http.MethodPost, "/api/prestashop/analytics/products/low-conversion", `{"days": 30}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAnalytics_SinCredencialesRetorna500(t *testing.T) {
	app := buildTestApp(t, testAppOpts{
		webservice: func() error {
			return &domain.ConfigError{Missing: []string{"PRESTASHOP_URL", "PRESTASHOP_WS_KEY"}}
		},
	})

	resp := doRequest(t, app, http.MethodGet, "/api/prestashop/analytics/products/top", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body dto.AnalyticsErrorResponse
	decode(t, resp, &body)
	assert.False(t, body.OK)
	assert.Equal(t, "Faltan PRESTASHOP_URL o PRESTASHOP_WS_KEY en el .env", body.Error)
}
