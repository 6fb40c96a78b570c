package prestashop

import (
	"context"
	"iter"
	"net/url"
	"strconv"
)

// Pages devuelve la secuencia perezosa de páginas de un recurso.
// Cada iteración pide limit=<offset>,<pageSize> y la secuencia termina en la primera
// página vacía. Un error se entrega una sola vez y corta la secuencia.
// No es reiniciable: cada llamada a Pages vuelve a empezar desde el offset 0.
func Pages[T any](ctx context.Context, c *Client, resource string, params url.Values, pageSize int) iter.Seq2[[]T, error] {
	if pageSize <= 0 {
		pageSize = c.PageSize()
	}
	return func(yield func([]T, error) bool) {
		for offset := 0; ; offset += pageSize {
			q := cloneValues(params)
			q.Set("limit", strconv.Itoa(offset)+","+strconv.Itoa(pageSize))

			body, err := c.Get(ctx, resource, q)
			if err != nil {
				yield(nil, err)
				return
			}
			batch, err := decodeList[T](body, resource)
			if err != nil {
				yield(nil, err)
				return
			}
			if len(batch) == 0 {
				return
			}
			if !yield(batch, nil) {
				return
			}
		}
	}
}

// FetchAll concatena todas las páginas en el orden del servidor.
// Devuelve una lista vacía (no nil) si la primera página ya viene vacía.
func FetchAll[T any](ctx context.Context, c *Client, resource string, params url.Values, pageSize int) ([]T, error) {
	all := make([]T, 0)
	for page, err := range Pages[T](ctx, c, resource, params, pageSize) {
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		c.notify(resource, len(all))
		c.log.Debug().Str("resource", resource).Int("cargados", len(all)).Msg("página recibida")
	}
	return all, nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+1)
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
