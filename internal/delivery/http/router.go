package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/worldinfo/backend/web"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, handler *Handler, mapsAllowedOrigins []string) {
	// Health check
	app.Get("/health", handler.HealthCheck)

	// Weather
	app.Get("/currentWeather/:city/:country", handler.GetCurrentWeather)
	app.Get("/forecast/:city/:country", handler.GetForecast)

	// Countries
	app.Get("/country/:countryName", handler.GetCountryInfo)
	app.Get("/continent/:continentName", handler.GetCountriesByContinent)

	// Currency
	convert := app.Group("/convert")
	{
		convert.Get("/usd-to-eur", handler.ConvertUsdToEur)
		convert.Get("/jpy-to-gbp", handler.ConvertJpyToGbp)
	}

	// Maps
	app.Get("/map", page(web.MapPage))
	app.Get("/map/shortest-route", page(web.ShortestRoutePage))
	app.Get("/api/maps-api-key", RestrictOrigin(mapsAllowedOrigins), handler.GetMapsAPIKey)
}

func page(body []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(body)
	}
}
