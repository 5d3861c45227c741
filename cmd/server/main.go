package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/worldinfo/backend/internal/config"
	"github.com/worldinfo/backend/internal/delivery/http"
	"github.com/worldinfo/backend/internal/logger"
	"github.com/worldinfo/backend/internal/service"
	"github.com/worldinfo/backend/internal/upstream"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("Server failed")
	}
}

// run serves until ctx is cancelled, then shuts down gracefully
func run(ctx context.Context) error {
	// Configuration (.env, optional CONFIG_FILE, environment)
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("could not load configuration: %w", err)
	}

	log := logger.New(cfg)

	for _, key := range cfg.MissingCredentials() {
		log.Warn().Str("variable", key).Msg("Credential not set; calls to its provider will fail")
	}
	if len(cfg.Maps.AllowedOrigins) == 0 {
		log.Warn().Msg("MAPS_ALLOWED_ORIGINS is empty; the maps key is served to any caller")
	}

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}

	// Dependency Injection: Services
	timeout := cfg.Upstream.Timeout
	weatherSvc := service.NewWeatherService(
		cfg.Credentials.OpenWeatherAPIKey,
		cfg.Upstream.WeatherBaseURL,
		loc,
		upstream.NewClient("openweathermap", timeout),
	)
	countrySvc := service.NewCountryService(
		cfg.Upstream.CountriesBaseURL,
		upstream.NewClient("restcountries", timeout),
	)
	currencySvc := service.NewCurrencyService(
		cfg.Credentials.CurrencyAPIKey,
		cfg.Upstream.CurrencyBaseURL,
		upstream.NewClient("freecurrencyapi", timeout),
	)

	handler := http.NewHandler(http.Deps{
		Weather:    weatherSvc,
		Countries:  countrySvc,
		Currency:   currencySvc,
		MapsAPIKey: cfg.Credentials.MapsAPIKey,
		AppName:    cfg.App.Name,
		Version:    cfg.App.Version,
	})

	app := http.NewApp(cfg, log, handler)

	listenErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server starting")
		listenErr <- app.Listen(":" + cfg.Server.Port)
	}()

	// Wait for interrupt signal or a listener failure
	select {
	case err := <-listenErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
	return nil
}
