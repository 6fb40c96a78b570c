package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ecommerce-metrics/internal/application/dto"
)

// configChecker contrato mínimo para saber si el Webservice está configurado.
// Lo implementa *prestashop.Client.
type configChecker interface {
	CheckConfig() error
}

// RequireWebservice corta con 500 {ok:false, error} si faltan las credenciales
// de PrestaShop, antes de que el handler intente llamar al Webservice.
func RequireWebservice(checker configChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if checker == nil {
			return c.Next()
		}
		if err := checker.CheckConfig(); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.AnalyticsErrorResponse{
				OK:    false,
				Error: err.Error(),
			})
		}
		return c.Next()
	}
}
