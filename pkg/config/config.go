package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultPaidStates estados de orden que PrestaShop considera pagados en esta tienda.
var DefaultPaidStates = []int{2, 3, 4, 5, 11, 16, 23}

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App        AppConfig
	HTTP       HTTPConfig
	PrestaShop PrestaShopConfig
	Cache      CacheConfig
	Redis      RedisConfig
	Refresh    RefreshConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PrestaShopConfig acceso al Webservice de PrestaShop.
type PrestaShopConfig struct {
	BaseURL    string        // ej: https://tienda.com/api
	WSKey      string        // clave del webservice (parámetro ws_key)
	PageSize   int           // registros por página en los recursos paginados
	Timeout    time.Duration // timeout de transporte por petición HTTP
	PaidStates []int         // current_state considerados "pagados"
	Location   *time.Location
}

// MissingCredentials variables de entorno obligatorias que faltan para el webservice.
// Vacío si la configuración está completa.
func (c PrestaShopConfig) MissingCredentials() []string {
	var missing []string
	if strings.TrimSpace(c.BaseURL) == "" {
		missing = append(missing, "PRESTASHOP_URL")
	}
	if strings.TrimSpace(c.WSKey) == "" {
		missing = append(missing, "PRESTASHOP_WS_KEY")
	}
	return missing
}

// CacheConfig archivo JSON donde se persiste el resultado de clientes sin compra.
type CacheConfig struct {
	FilePath   string
	StaleAfter time.Duration
}

// RedisConfig Redis opcional: caché de analítica y cola de tareas del worker.
type RedisConfig struct {
	Addr         string
	AnalyticsTTL time.Duration
}

// Enabled indica si hay un Redis configurado.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// RefreshConfig refresco programado y límite de peticiones sobre /refresh.
type RefreshConfig struct {
	Cron      string // expresión cron del worker (asynq scheduler)
	RateLimit int    // máximo de refrescos manuales por minuto
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: PRESTASHOP_URL, PRESTASHOP_WS_KEY, HTTP_PORT, etc.
// Las credenciales faltantes no hacen fallar Load; se validan aparte con PrestaShop.MissingCredentials.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	loc, err := time.LoadLocation(getString(v, "STORE_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("STORE_TIMEZONE inválido: %w", err)
	}
	paidStates, err := getIntList(v, "PRESTASHOP_PAID_STATES", DefaultPaidStates)
	if err != nil {
		return nil, fmt.Errorf("PRESTASHOP_PAID_STATES inválido: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "ecommerce-metrics"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 12000),
		},
		PrestaShop: PrestaShopConfig{
			BaseURL:    strings.TrimRight(getString(v, "PRESTASHOP_URL", ""), "/"),
			WSKey:      getString(v, "PRESTASHOP_WS_KEY", ""),
			PageSize:   getInt(v, "PRESTASHOP_PAGE_SIZE", 300),
			Timeout:    getDuration(v, "PRESTASHOP_TIMEOUT", 60*time.Second),
			PaidStates: paidStates,
			Location:   loc,
		},
		Cache: CacheConfig{
			FilePath:   getString(v, "CACHE_FILE_PATH", "data/clientes_inactivos.json"),
			StaleAfter: getDuration(v, "CACHE_STALE_AFTER", 24*time.Hour),
		},
		Redis: RedisConfig{
			Addr:         getString(v, "REDIS_ADDR", ""),
			AnalyticsTTL: getDuration(v, "ANALYTICS_CACHE_TTL", 10*time.Minute),
		},
		Refresh: RefreshConfig{
			Cron:      getString(v, "REFRESH_CRON", "0 6 * * *"),
			RateLimit: getInt(v, "REFRESH_RATE_LIMIT", 2),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

// getDuration acepta "90s", "10m" o un entero en segundos.
func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if !v.IsSet(key) {
		return def
	}
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return def
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

// getIntList lee listas "2,3,4" o "2|3|4".
func getIntList(v *viper.Viper, key string, def []int) ([]int, error) {
	if !v.IsSet(key) {
		return def, nil
	}
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return def, nil
	}
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '|' || r == ' ' })
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
