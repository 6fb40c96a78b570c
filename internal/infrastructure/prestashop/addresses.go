package prestashop

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jhoicas/ecommerce-metrics/internal/domain/entity"
)

// Addresses todas las direcciones no eliminadas, paginadas, en el orden del Webservice.
// Registros sin cliente válido se descartan.
func (c *Client) Addresses(ctx context.Context) ([]entity.Address, error) {
	params := url.Values{}
	params.Set("filter[deleted]", "[0]")
	params.Set("display", "[id,id_customer,id_state,phone,phone_mobile]")

	rows, err := FetchAll[wireAddress](ctx, c, "addresses", params, 0)
	if err != nil {
		return nil, fmt.Errorf("prestashop: direcciones: %w", err)
	}

	out := make([]entity.Address, 0, len(rows))
	for _, r := range rows {
		if r.CustomerID <= 0 {
			continue
		}
		out = append(out, r.toEntity())
	}
	return out, nil
}
