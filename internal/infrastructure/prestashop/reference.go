package prestashop

import (
	"context"
	"fmt"
	"net/url"
)

// Nombres de reemplazo cuando el Webservice no trae un nombre resoluble.
const (
	groupFallback    = "Grupo %d"
	stateFallback    = "State %d"
	categoryFallback = "Cat %d"
)

// loadNames hace una única llamada sin paginar y arma id → nombre.
// IDs no positivos o ilegibles se descartan; un nombre vacío usa fallback.
func (c *Client) loadNames(ctx context.Context, resource, fallback string) (map[int]string, error) {
	params := url.Values{}
	params.Set("display", "[id,name]")

	body, err := c.Get(ctx, resource, params)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[wireNamed](body, resource)
	if err != nil {
		return nil, err
	}
	return namesMap(items, fallback), nil
}

func namesMap(items []wireNamed, fallback string) map[int]string {
	out := make(map[int]string, len(items))
	for _, it := range items {
		id := int(it.ID)
		if id <= 0 {
			continue
		}
		name := it.Name.Resolve()
		if name == "" {
			name = fmt.Sprintf(fallback, id)
		}
		out[id] = name
	}
	return out
}

// GroupNames grupos de clientes (tipo de cliente: Minorista, Revendedoras, ...).
func (c *Client) GroupNames(ctx context.Context) (map[int]string, error) {
	m, err := c.loadNames(ctx, "groups", groupFallback)
	if err != nil {
		return nil, fmt.Errorf("prestashop: grupos: %w", err)
	}
	return m, nil
}

// StateNames provincias.
func (c *Client) StateNames(ctx context.Context) (map[int]string, error) {
	m, err := c.loadNames(ctx, "states", stateFallback)
	if err != nil {
		return nil, fmt.Errorf("prestashop: provincias: %w", err)
	}
	return m, nil
}
