// Package prestashop implementa el acceso de solo lectura al Webservice REST de PrestaShop
// (output_format=JSON, autenticación por ws_key).
package prestashop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jhoicas/ecommerce-metrics/internal/domain"
	"github.com/jhoicas/ecommerce-metrics/pkg/config"
	"github.com/jhoicas/ecommerce-metrics/pkg/logger"
)

const (
	defaultPageSize = 300
	maxErrorBody    = 64 * 1024
)

// PageObserver recibe el total acumulado de registros de un recurso paginado
// cada vez que llega una página no vacía.
type PageObserver func(resource string, fetched int)

// Client cliente HTTP del Webservice. Sin reintentos: cualquier respuesta no 2xx
// se devuelve como *domain.UpstreamError.
type Client struct {
	cfg        config.PrestaShopConfig
	httpClient *http.Client
	log        *logger.Logger
	observers  []PageObserver
}

// NewClient construye el cliente. Si faltan credenciales no falla aquí:
// cada llamada devuelve *domain.ConfigError antes de tocar la red.
func NewClient(cfg config.PrestaShopConfig, log *logger.Logger) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.Component("prestashop"),
	}
}

// OnPage registra un observador de progreso de paginación.
func (c *Client) OnPage(obs PageObserver) {
	if obs != nil {
		c.observers = append(c.observers, obs)
	}
}

// CheckConfig valida las credenciales sin hacer llamadas de red.
func (c *Client) CheckConfig() error {
	if missing := c.cfg.MissingCredentials(); len(missing) > 0 {
		return &domain.ConfigError{Missing: missing}
	}
	return nil
}

// PageSize tamaño de página configurado.
func (c *Client) PageSize() int { return c.cfg.PageSize }

// Get hace GET {base}/{resource} con ws_key, output_format=JSON y los parámetros dados.
// Devuelve el cuerpo crudo.
func (c *Client) Get(ctx context.Context, resource string, params url.Values) ([]byte, error) {
	if err := c.CheckConfig(); err != nil {
		return nil, err
	}

	q := url.Values{}
	for k, vs := range params {
		q[k] = append([]string(nil), vs...)
	}
	q.Set("ws_key", c.cfg.WSKey)
	q.Set("output_format", "JSON")

	endpoint := c.cfg.BaseURL + "/" + resource + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("prestashop: crear request %s: %w", resource, err)
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug().Str("resource", resource).Str("limit", params.Get("limit")).Msg("GET webservice")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("prestashop: %s: cancelado: %w", resource, ctx.Err())
		}
		return nil, fmt.Errorf("prestashop: %s: llamada HTTP fallida: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.UpstreamError{
			Resource:   resource,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("prestashop: %s: leer respuesta: %w", resource, err)
	}
	return body, nil
}

func (c *Client) notify(resource string, fetched int) {
	for _, obs := range c.observers {
		obs(resource, fetched)
	}
}

// decodeList extrae la lista bajo la clave del recurso ({"orders":[...]}).
// PrestaShop responde [] (array vacío) cuando no hay resultados; eso y la clave
// ausente cuentan como lista vacía.
func decodeList[T any](body []byte, key string) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("[]")) {
		return nil, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("prestashop: decodificar %s: %w", key, err)
	}
	raw, ok := envelope[key]
	if !ok || len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("prestashop: decodificar %s: %w", key, err)
	}
	return items, nil
}
