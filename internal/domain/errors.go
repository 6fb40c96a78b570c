package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotConfigured     = errors.New("configuración de PrestaShop incompleta")
	ErrCacheNotGenerated = errors.New("no hay datos generados todavía")
)

// ConfigError falta configuración obligatoria para hablar con la tienda.
// errors.Is(err, ErrNotConfigured) es verdadero para cualquier ConfigError.
type ConfigError struct {
	Missing []string // nombres de variables de entorno ausentes
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("Faltan %s en el .env", strings.Join(e.Missing, " o "))
}

// Is permite comparar contra ErrNotConfigured.
func (e *ConfigError) Is(target error) bool {
	return target == ErrNotConfigured
}

// UpstreamError respuesta no exitosa del Webservice de PrestaShop.
// Aborta la agregación completa; no hay reintentos.
type UpstreamError struct {
	Resource   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Error Presta %s: %d - %s", e.Resource, e.StatusCode, e.Body)
}
