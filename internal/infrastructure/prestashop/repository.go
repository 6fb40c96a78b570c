package prestashop

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/ecommerce-metrics/internal/domain/entity"
	"github.com/jhoicas/ecommerce-metrics/internal/domain/repository"
)

// idsPerRequest máximo de ids por filtro [a|b|c] para no exceder el largo de URL.
const idsPerRequest = 250

var (
	_ repository.CustomerRepository = (*Client)(nil)
	_ repository.SalesRepository    = (*Client)(nil)
)

// ── Órdenes ──

// PaidOrdersInRange órdenes pagadas con date_add en [from, to], paginadas.
func (c *Client) PaidOrdersInRange(ctx context.Context, from, to time.Time, paidStates []int) ([]entity.Order, error) {
	params := rangeParams(from, to)
	params.Set("filter[current_state]", idsFilter(paidStates))
	params.Set("display", "[id,id_customer,current_state,total_paid,date_add]")

	orders, err := c.orders(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("prestashop: órdenes pagas: %w", err)
	}
	return orders, nil
}

// OrdersInRange todas las órdenes con date_add en [from, to], sin filtrar estado.
func (c *Client) OrdersInRange(ctx context.Context, from, to time.Time) ([]entity.Order, error) {
	params := rangeParams(from, to)
	params.Set("display", "[id,id_customer,date_add,total_paid]")

	orders, err := c.orders(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("prestashop: órdenes: %w", err)
	}
	return orders, nil
}

func (c *Client) orders(ctx context.Context, params url.Values) ([]entity.Order, error) {
	rows, err := FetchAll[wireOrder](ctx, c, "orders", params, 0)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Order, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toEntity(c.cfg.Location))
	}
	return out, nil
}

// rangeParams filtro de fechas inclusivo en formato YYYY-MM-DD (date=1 habilita el filtro por fecha).
func rangeParams(from, to time.Time) url.Values {
	params := url.Values{}
	params.Set("filter[date_add]", "["+from.Format(entity.DateLayout)+","+to.Format(entity.DateLayout)+"]")
	params.Set("date", "1")
	return params
}

// ── Clientes ──

// ActiveCustomers clientes activos y no invitados, paginados.
func (c *Client) ActiveCustomers(ctx context.Context) ([]entity.Customer, error) {
	params := url.Values{}
	params.Set("filter[is_guest]", "[0]")
	params.Set("filter[active]", "[1]")
	params.Set("display", "[id,firstname,lastname,email,date_add,id_default_group]")

	rows, err := FetchAll[wireCustomer](ctx, c, "customers", params, 0)
	if err != nil {
		return nil, fmt.Errorf("prestashop: clientes: %w", err)
	}
	out := make([]entity.Customer, 0, len(rows))
	for _, r := range rows {
		if r.ID <= 0 {
			continue
		}
		out = append(out, r.toEntity(c.cfg.Location))
	}
	return out, nil
}

// ── Catálogo ──

// OrderDetails líneas de las órdenes indicadas, en bloques de idsPerRequest ids.
func (c *Client) OrderDetails(ctx context.Context, orderIDs []int) ([]entity.OrderDetail, error) {
	out := make([]entity.OrderDetail, 0)
	for _, chunk := range chunkIDs(orderIDs, idsPerRequest) {
		params := url.Values{}
		params.Set("filter[id_order]", idsFilter(chunk))
		params.Set("display", "full")

		body, err := c.Get(ctx, "order_details", params)
		if err != nil {
			return nil, fmt.Errorf("prestashop: detalles de orden: %w", err)
		}
		rows, err := decodeList[wireOrderDetail](body, "order_details")
		if err != nil {
			return nil, fmt.Errorf("prestashop: detalles de orden: %w", err)
		}
		for _, r := range rows {
			out = append(out, r.toEntity())
		}
	}
	return out, nil
}

// Products catálogo completo (display=full) con sus categorías asociadas.
func (c *Client) Products(ctx context.Context) ([]entity.Product, error) {
	params := url.Values{}
	params.Set("display", "full")

	body, err := c.Get(ctx, "products", params)
	if err != nil {
		return nil, fmt.Errorf("prestashop: productos: %w", err)
	}
	rows, err := decodeList[wireProduct](body, "products")
	if err != nil {
		return nil, fmt.Errorf("prestashop: productos: %w", err)
	}
	out := make([]entity.Product, 0, len(rows))
	for _, r := range rows {
		if r.ID <= 0 {
			continue
		}
		out = append(out, r.toEntity())
	}
	return out, nil
}

// Categories categorías con nombre resuelto ("Cat <id>" si no lo hay), en el orden del Webservice.
func (c *Client) Categories(ctx context.Context) ([]entity.Category, error) {
	params := url.Values{}
	params.Set("display", "[id,name]")

	body, err := c.Get(ctx, "categories", params)
	if err != nil {
		return nil, fmt.Errorf("prestashop: categorías: %w", err)
	}
	rows, err := decodeList[wireNamed](body, "categories")
	if err != nil {
		return nil, fmt.Errorf("prestashop: categorías: %w", err)
	}
	out := make([]entity.Category, 0, len(rows))
	for _, r := range rows {
		id := int(r.ID)
		if id <= 0 {
			continue
		}
		name := r.Name.Resolve()
		if name == "" {
			name = fmt.Sprintf(categoryFallback, id)
		}
		out = append(out, entity.Category{ID: id, Name: name})
	}
	return out, nil
}

// StockAvailables stock por tienda de los productos indicados.
func (c *Client) StockAvailables(ctx context.Context, productIDs []int) ([]entity.StockAvailable, error) {
	out := make([]entity.StockAvailable, 0)
	for _, chunk := range chunkIDs(productIDs, idsPerRequest) {
		params := url.Values{}
		params.Set("filter[id_product]", idsFilter(chunk))
		params.Set("display", "full")

		body, err := c.Get(ctx, "stock_availables", params)
		if err != nil {
			return nil, fmt.Errorf("prestashop: stock: %w", err)
		}
		rows, err := decodeList[wireStockAvailable](body, "stock_availables")
		if err != nil {
			return nil, fmt.Errorf("prestashop: stock: %w", err)
		}
		for _, r := range rows {
			out = append(out, r.toEntity())
		}
	}
	return out, nil
}

// idsFilter arma el filtro de valores alternativos [1|2|3].
func idsFilter(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return "[" + strings.Join(parts, "|") + "]"
}

func chunkIDs(ids []int, size int) [][]int {
	var chunks [][]int
	for len(ids) > 0 {
		n := min(size, len(ids))
		chunks = append(chunks, ids[:n])
		ids = ids[n:]
	}
	return chunks
}
