package prestashop_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ecommerce-metrics/internal/domain"
	"github.com/jhoicas/ecommerce-metrics/internal/infrastructure/prestashop"
	"github.com/jhoicas/ecommerce-metrics/pkg/config"
	"github.com/jhoicas/ecommerce-metrics/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testKey = "TESTKEY"

// fakeShop simula el Webservice: cada recurso devuelve una lista fija paginada por limit=offset,size.
type fakeShop struct {
	resources map[string][]map[string]any
	raw       map[string]string // cuerpo fijo por recurso (tiene prioridad)
	status    map[string]int
	calls     atomic.Int32
	lastQuery atomic.Value
}

func (f *fakeShop) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	f.lastQuery.Store(r.URL.Query())

	resource := strings.TrimPrefix(r.URL.Path, "/api/")
	if code, ok := f.status[resource]; ok {
		w.WriteHeader(code)
		_, _ = w.Write([]byte("  acceso denegado  "))
		return
	}
	if body, ok := f.raw[resource]; ok {
		_, _ = w.Write([]byte(body))
		return
	}

	items := f.resources[resource]
	if limit := r.URL.Query().Get("limit"); limit != "" {
		parts := strings.Split(limit, ",")
		offset, _ := strconv.Atoi(parts[0])
		size, _ := strconv.Atoi(parts[1])
		if offset >= len(items) {
			items = nil
		} else {
			items = items[offset:min(offset+size, len(items))]
		}
	}
	if len(items) == 0 {
		// PrestaShop responde un array vacío cuando no hay resultados.
		_, _ = w.Write([]byte("[]"))
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{resource: items})
}

func newTestClient(t *testing.T, shop *fakeShop, pageSize int) *prestashop.Client {
	t.Helper()
	srv := httptest.NewServer(shop)
	t.Cleanup(srv.Close)
	return prestashop.NewClient(config.PrestaShopConfig{
		BaseURL:  srv.URL + "/api",
		WSKey:    testKey,
		PageSize: pageSize,
		Timeout:  5 * time.Second,
		Location: time.UTC,
	}, logger.Nop())
}

func orderRows(n int) []map[string]any {
	rows := make([]map[string]any, 0, n)
	for i := 1; i <= n; i++ {
		rows = append(rows, map[string]any{
			"id":          strconv.Itoa(i),
			"id_customer": "10",
			"date_add":    "2024-05-01 10:00:00",
			"total_paid":  "100.500000",
		})
	}
	return rows
}

// ──────────────────────────────────────────────────────────────────────────────
// Paginación
// ──────────────────────────────────────────────────────────────────────────────

func TestFetchAll_ConcatenaPaginasHastaPaginaVacia(t *testing.T) {
	shop := &fakeShop{resources: map[string][]map[string]any{"orders": orderRows(5)}}
	client := newTestClient(t, shop, 2)

	from := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	orders, err := client.OrdersInRange(context.Background(), from, to)

	require.NoError(t, err)
	require.Len(t, orders, 5)
	for i, o := range orders {
		assert.Equal(t, i+1, o.ID, "el orden del servidor se conserva")
	}
	// páginas de 2, 2, 1 y la página vacía que corta
	assert.Equal(t, int32(4), shop.calls.Load())
	assert.Equal(t, "100.5", orders[0].TotalPaid.String())
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), orders[0].DateAdd)
}

func TestFetchAll_PrimeraPaginaVaciaDevuelveListaVacia(t *testing.T) {
	shop := &fakeShop{resources: map[string][]map[string]any{}}
	client := newTestClient(t, shop, 300)

	orders, err := client.OrdersInRange(context.Background(), time.Now(), time.Now())

	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, int32(1), shop.calls.Load())
}

func TestPages_CorteAnticipadoNoPideMasPaginas(t *testing.T) {
	shop := &fakeShop{resources: map[string][]map[string]any{"orders": orderRows(10)}}
	client := newTestClient(t, shop, 3)

	pages := 0
	for page, err := range prestashop.Pages[map[string]any](context.Background(), client, "orders", nil, 3) {
		require.NoError(t, err)
		assert.Len(t, page, 3)
		pages++
		break
	}
	assert.Equal(t, 1, pages)
	assert.Equal(t, int32(1), shop.calls.Load())
}

func TestFetchAll_NotificaProgreso(t *testing.T) {
	shop := &fakeShop{resources: map[string][]map[string]any{"orders": orderRows(5)}}
	client := newTestClient(t, shop, 2)

	var seen []int
	client.OnPage(func(resource string, fetched int) {
		assert.Equal(t, "orders", resource)
		seen = append(seen, fetched)
	})

	_, err := client.OrdersInRange(context.Background(), time.Now(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 5}, seen)
}

// ──────────────────────────────────────────────────────────────────────────────
// Parámetros y errores
// ──────────────────────────────────────────────────────────────────────────────

func TestPaidOrdersInRange_EnviaFiltros(t *testing.T) {
	shop := &fakeShop{resources: map[string][]map[string]any{}}
	client := newTestClient(t, shop, 300)

	from := time.Date(2024, 2, 15, 9, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	_, err := client.PaidOrdersInRange(context.Background(), from, to, config.DefaultPaidStates)
	require.NoError(t, err)

	q := shop.lastQuery.Load().(url.Values)
	assert.Equal(t, []string{testKey}, q["ws_key"])
	assert.Equal(t, []string{"JSON"}, q["output_format"])
	assert.Equal(t, []string{"[2024-02-15,2024-06-15]"}, q["filter[date_add]"])
	assert.Equal(t, []string{"1"}, q["date"])
	assert.Equal(t, []string{"[2|3|4|5|11|16|23]"}, q["filter[current_state]"])
	assert.Equal(t, []string{"0,300"}, q["limit"])
}

func TestGet_RespuestaNoExitosaDevuelveUpstreamError(t *testing.T) {
	shop := &fakeShop{status: map[string]int{"customers": http.StatusUnauthorized}}
	client := newTestClient(t, shop, 300)

	_, err := client.ActiveCustomers(context.Background())
	require.Error(t, err)

	var upstream *domain.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "customers", upstream.Resource)
	assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
	assert.Equal(t, "Error Presta customers: 401 - acceso denegado", upstream.Error())
}

func TestGet_SinCredencialesNoTocaLaRed(t *testing.T) {
	shop := &fakeShop{}
	srv := httptest.NewServer(shop)
	defer srv.Close()

	client := prestashop.NewClient(config.PrestaShopConfig{BaseURL: srv.URL}, nil)

	_, err := client.ActiveCustomers(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotConfigured))

	var cfgErr *domain.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{"PRESTASHOP_WS_KEY"}, cfgErr.Missing)
	assert.Equal(t, int32(0), shop.calls.Load())
}

// ──────────────────────────────────────────────────────────────────────────────
// Datos de referencia
// ──────────────────────────────────────────────────────────────────────────────

func TestGroupNames_FormasDeNombreYFallback(t *testing.T) {
	shop := &fakeShop{raw: map[string]string{"groups": `{"groups":[
		{"id":"1","name":"Visitante"},
		{"id":"3","name":[{"id":"1","value":"Minorista"},{"id":"2","value":"Retail"}]},
		{"id":4,"name":{"language":[{"@attributes":{"id":"1"},"value":"Revendedoras"}]}},
		{"id":"5","name":{"language":{"value":"Compra por Mayor"}}},
		{"id":"6","name":["Mayorista"]},
		{"id":"7","name":""},
		{"id":"8","name":{"otra":"cosa"}},
		{"id":"0","name":"sin id"},
		{"id":"abc","name":"ilegible"}
	]}`}}
	client := newTestClient(t, shop, 300)

	groups, err := client.GroupNames(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[int]string{
		1: "Visitante",
		3: "Minorista",
		4: "Revendedoras",
		5: "Compra por Mayor",
		6: "Mayorista",
		7: "Grupo 7",
		8: "Grupo 8",
	}, groups)
}

func TestStateNames_FallbackState(t *testing.T) {
	shop := &fakeShop{raw: map[string]string{"states": `{"states":[{"id":"2","name":"Córdoba"},{"id":"9","name":null}]}`}}
	client := newTestClient(t, shop, 300)

	states, err := client.StateNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[int]string{2: "Córdoba", 9: "State 9"}, states)
}

func TestCategories_FallbackCat(t *testing.T) {
	shop := &fakeShop{raw: map[string]string{"categories": `{"categories":[{"id":"2","name":[{"id":"1","value":"Inicio"}]},{"id":"12","name":[]}]}`}}
	client := newTestClient(t, shop, 300)

	cats, err := client.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Inicio", cats[0].Name)
	assert.Equal(t, "Cat 12", cats[1].Name)
}

func TestAddresses_DescartaClientesInvalidos(t *testing.T) {
	shop := &fakeShop{resources: map[string][]map[string]any{"addresses": {
		{"id": "1", "id_customer": "10", "id_state": "2", "phone": " 351-111 ", "phone_mobile": ""},
		{"id": "2", "id_customer": "0", "id_state": "2", "phone": "x", "phone_mobile": "y"},
		{"id": "3", "id_customer": "11", "id_state": 3, "phone": "", "phone_mobile": "11-2222"},
	}}}
	client := newTestClient(t, shop, 300)

	addrs, err := client.Addresses(context.Background())
	require.NoError(t, err)
	require.Len(t, addrs, 2)
	assert.Equal(t, 10, addrs[0].CustomerID)
	assert.Equal(t, "351-111", addrs[0].PreferredPhone())
	assert.Equal(t, 3, addrs[1].StateID)
	assert.Equal(t, "11-2222", addrs[1].PreferredPhone())
}

func TestOrderDetails_PartePorBloquesDeIds(t *testing.T) {
	shop := &fakeShop{raw: map[string]string{"order_details": `{"order_details":[{"id":"1","id_order":"1","product_id":"7","product_attribute_id":"0","product_name":"Remera","product_quantity":"2","total_price_tax_incl":"30.000000"}]}`}}
	client := newTestClient(t, shop, 300)

	ids := make([]int, 600)
	for i := range ids {
		ids[i] = i + 1
	}
	details, err := client.OrderDetails(context.Background(), ids)
	require.NoError(t, err)

	// 600 ids en bloques de 250 → 3 peticiones
	assert.Equal(t, int32(3), shop.calls.Load())
	require.Len(t, details, 3)
	assert.Equal(t, "Remera", details[0].ProductName)
	assert.Equal(t, 2, details[0].Quantity)
	assert.Equal(t, "30", details[0].TotalPriceTaxIncl.String())
}

func TestProducts_CategoriasAsociadas(t *testing.T) {
	body := `{"products":[{"id":"5","reference":"R-5","name":[{"id":"1","value":"Buzo"}],"price":"1000.5","active":"1","associations":{"categories":[{"id":"2"},{"id":"14"}]}},{"id":6,"name":"Gorra","active":0}]}`
	shop := &fakeShop{raw: map[string]string{"products": body}}
	client := newTestClient(t, shop, 300)

	products, err := client.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Buzo", products[0].Name)
	assert.Equal(t, []int{2, 14}, products[0].CategoryIDs)
	assert.True(t, products[0].Active)
	assert.Equal(t, "Gorra", products[1].Name)
	assert.Empty(t, products[1].CategoryIDs)
	assert.False(t, products[1].Active)
}
