package http

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/worldinfo/backend/internal/domain"
)

const (
	msgWeatherFailed  = "Error fetching weather data"
	msgForecastFailed = "Error fetching forecast data"
	msgAmountMissing  = "Please provide an amount to convert"
	msgAmountInvalid  = "Please provide a valid numeric amount"
)

// WeatherProvider is satisfied by *service.WeatherService
type WeatherProvider interface {
	GetCurrentWeather(ctx context.Context, city, country string) (domain.WeatherSummary, error)
	GetForecast(ctx context.Context, city, country string) (domain.Forecast, error)
}

// CountryProvider is satisfied by *service.CountryService
type CountryProvider interface {
	GetCountryInfo(ctx context.Context, name string) (domain.CountryProfile, error)
	GetCountriesByContinent(ctx context.Context, continent string) (domain.ContinentListing, error)
}

// CurrencyConverter is satisfied by *service.CurrencyService
type CurrencyConverter interface {
	Convert(ctx context.Context, pair domain.CurrencyPair, raw string, amount decimal.Decimal) (domain.ConversionResult, error)
}

// Handler contains all HTTP handlers
type Handler struct {
	weather   WeatherProvider
	countries CountryProvider
	currency  CurrencyConverter
	mapsKey   string
	name      string
	version   string
	validate  *validator.Validate
}

// Deps groups what the handlers need; every field is required
type Deps struct {
	Weather    WeatherProvider
	Countries  CountryProvider
	Currency   CurrencyConverter
	MapsAPIKey string
	AppName    string
	Version    string
}

// NewHandler creates a new handler
func NewHandler(d Deps) *Handler {
	return &Handler{
		weather:   d.Weather,
		countries: d.Countries,
		currency:  d.Currency,
		mapsKey:   d.MapsAPIKey,
		name:      d.AppName,
		version:   d.Version,
		validate:  validator.New(),
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": h.name,
		"version": h.version,
	})
}

// GetCurrentWeather returns current conditions for /:city/:country
func (h *Handler) GetCurrentWeather(c *fiber.Ctx) error {
	weather, err := h.weather.GetCurrentWeather(c.UserContext(), c.Params("city"), c.Params("country"))
	if err != nil {
		return upstreamFailure(c, err, msgWeatherFailed)
	}

	return c.JSON(weather)
}

// GetForecast returns the forecast series for /:city/:country
func (h *Handler) GetForecast(c *fiber.Ctx) error {
	forecast, err := h.weather.GetForecast(c.UserContext(), c.Params("city"), c.Params("country"))
	if err != nil {
		return upstreamFailure(c, err, msgForecastFailed)
	}

	return c.JSON(forecast)
}

// GetCountryInfo returns the profile for /:countryName
func (h *Handler) GetCountryInfo(c *fiber.Ctx) error {
	name := c.Params("countryName")

	profile, err := h.countries.GetCountryInfo(c.UserContext(), name)
	if err != nil {
		return upstreamFailure(c, err, "Error fetching information for country: "+name)
	}

	return c.JSON(profile)
}

// GetCountriesByContinent returns every country whose region is /:continentName
func (h *Handler) GetCountriesByContinent(c *fiber.Ctx) error {
	continent := c.Params("continentName")

	listing, err := h.countries.GetCountriesByContinent(c.UserContext(), continent)
	if err != nil {
		return upstreamFailure(c, err, "Error fetching countries for continent: "+continent)
	}

	return c.JSON(listing)
}

// ConvertUsdToEur converts ?amount= US dollars to euros
func (h *Handler) ConvertUsdToEur(c *fiber.Ctx) error {
	return h.convert(c, domain.USDToEUR)
}

// ConvertJpyToGbp converts ?amount= yen to pounds sterling
func (h *Handler) ConvertJpyToGbp(c *fiber.Ctx) error {
	return h.convert(c, domain.JPYToGBP)
}

type conversionQuery struct {
	Amount string `query:"amount" validate:"required"`
}

func (h *Handler) convert(c *fiber.Ctx, pair domain.CurrencyPair) error {
	var q conversionQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, msgAmountInvalid)
	}

	if err := h.validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "required" {
			return fiber.NewError(fiber.StatusBadRequest, msgAmountMissing)
		}
		return fiber.NewError(fiber.StatusBadRequest, msgAmountInvalid)
	}

	amount, err := decimal.NewFromString(q.Amount)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, msgAmountInvalid)
	}

	result, err := h.currency.Convert(c.UserContext(), pair, q.Amount, amount)
	if err != nil {
		return upstreamFailure(c, err, "Error converting "+pair.String())
	}

	return c.JSON(result)
}

// GetMapsAPIKey hands the browser maps key to the map pages
func (h *Handler) GetMapsAPIKey(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"apiKey": h.mapsKey,
	})
}

// upstreamFailure logs the tagged cause and hides it from the client
func upstreamFailure(c *fiber.Ctx, err error, message string) error {
	e := requestLogger(c).Error().Stack().Err(err)

	var upErr *domain.UpstreamError
	if errors.As(err, &upErr) {
		e = e.Str("upstream", upErr.Provider).Str("kind", string(upErr.Kind))
		if upErr.Status != 0 {
			e = e.Int("upstream_status", upErr.Status)
		}
	}
	e.Msg(message)

	return fiber.NewError(fiber.StatusInternalServerError, message)
}

func requestLogger(c *fiber.Ctx) *zerolog.Logger {
	if l, ok := c.Locals(loggerKey).(*zerolog.Logger); ok {
		return l
	}
	nop := zerolog.Nop()
	return &nop
}
