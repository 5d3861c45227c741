package http

import (
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldinfo/backend/internal/config"
	"github.com/worldinfo/backend/internal/domain"
	"github.com/worldinfo/backend/internal/service"
	"github.com/worldinfo/backend/internal/upstream"
)

// stub is a canned third-party provider
type stub struct {
	mu     sync.Mutex
	status int
	body   string
	delay  time.Duration
	calls  atomic.Int32
}

func (s *stub) set(status int, body string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status, s.body, s.delay = status, body, delay
}

func (s *stub) respond(body string) {
	s.set(nethttp.StatusOK, body, 0)
}

func (s *stub) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	s.calls.Add(1)

	s.mu.Lock()
	status, body, delay := s.status, s.body, s.delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

type testEnv struct {
	app       *fiber.App
	weather   *stub
	countries *stub
	currency  *stub
}

func newTestEnv(t *testing.T, allowedOrigins ...string) *testEnv {
	t.Helper()

	env := &testEnv{
		weather:   &stub{status: nethttp.StatusOK},
		countries: &stub{status: nethttp.StatusOK},
		currency:  &stub{status: nethttp.StatusOK},
	}
	weatherSrv := httptest.NewServer(env.weather)
	countriesSrv := httptest.NewServer(env.countries)
	currencySrv := httptest.NewServer(env.currency)
	t.Cleanup(weatherSrv.Close)
	t.Cleanup(countriesSrv.Close)
	t.Cleanup(currencySrv.Close)

	cfg := &config.Config{
		App:    config.AppConfig{Name: "World Info API", Version: "test", Env: "test"},
		Server: config.ServerConfig{Port: "0", ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second},
		Maps:   config.MapsConfig{AllowedOrigins: allowedOrigins},
	}

	timeout := 200 * time.Millisecond
	handler := NewHandler(Deps{
		Weather:    service.NewWeatherService("ow-key", weatherSrv.URL, time.UTC, upstream.NewClient("openweathermap", timeout)),
		Countries:  service.NewCountryService(countriesSrv.URL, upstream.NewClient("restcountries", timeout)),
		Currency:   service.NewCurrencyService("fx-key", currencySrv.URL, upstream.NewClient("freecurrencyapi", timeout)),
		MapsAPIKey: "maps-secret-123",
		AppName:    cfg.App.Name,
		Version:    cfg.App.Version,
	})

	env.app = NewApp(cfg, zerolog.Nop(), handler)
	return env
}

func (e *testEnv) get(t *testing.T, target string, headers ...string) (*nethttp.Response, string) {
	t.Helper()

	req := httptest.NewRequest(nethttp.MethodGet, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func decode(t *testing.T, body string, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(body), v), body)
}

func assertPlainError(t *testing.T, resp *nethttp.Response, body string, status int, message string) {
	t.Helper()
	assert.Equal(t, status, resp.StatusCode)
	assert.Equal(t, fiber.MIMETextPlainCharsetUTF8, resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, message, body)
	assert.False(t, json.Valid([]byte(body)), "no JSON should be emitted on failure")
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/health")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	var got map[string]string
	decode(t, body, &got)
	assert.Equal(t, "ok", got["status"])
	assert.Equal(t, "World Info API", got["service"])
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestGetCurrentWeather(t *testing.T) {
	env := newTestEnv(t)
	env.weather.respond(`{"name":"New York","weather":[{"description":"clear sky"}],
		"main":{"temp":18.3,"feels_like":17.9,"humidity":48},"wind":{"speed":5.66},
		"sys":{"country":"US","sunrise":1710052215,"sunset":1710095415}}`)

	resp, body := env.get(t, "/currentWeather/New%20York/US")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode, body)

	var got domain.WeatherSummary
	decode(t, body, &got)
	assert.Equal(t, "New York, US", got.Location)
	assert.Equal(t, "clear sky", got.Condition)
	assert.Equal(t, "18.3°C", got.Temperature)
	assert.Equal(t, "17.9°C", got.FeelsLike)
	assert.Equal(t, "48%", got.Humidity)
	assert.Equal(t, "5.66 m/s", got.WindSpeed)
	assert.Equal(t, "6:30:15 AM", got.Sunrise)
	assert.Equal(t, "6:30:15 PM", got.Sunset)
}

func TestGetForecast(t *testing.T) {
	env := newTestEnv(t)
	env.weather.respond(`{"city":{"name":"Paris","country":"FR"},"list":[
		{"dt":1710060000,"main":{"temp":9,"humidity":81},"weather":[{"description":"light rain"}],"wind":{"speed":3.1}},
		{"dt":1710070800,"main":{"temp":11.4,"humidity":70},"weather":[{"description":"overcast clouds"}],"wind":{"speed":4}}]}`)

	resp, body := env.get(t, "/forecast/Paris/FR")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode, body)

	var got struct {
		Location string                 `json:"location"`
		Forecast []domain.ForecastEntry `json:"forecast"`
	}
	decode(t, body, &got)
	assert.Equal(t, "Paris, FR", got.Location)
	require.Len(t, got.Forecast, 2)
	assert.Equal(t, "light rain", got.Forecast[0].Condition)
	assert.Equal(t, "9°C", got.Forecast[0].Temperature)
	assert.Equal(t, "overcast clouds", got.Forecast[1].Condition)
	assert.Equal(t, "4 m/s", got.Forecast[1].WindSpeed)
}

func TestGetCountryInfo(t *testing.T) {
	env := newTestEnv(t)
	env.countries.respond(`[{"name":{"common":"Japan"},"capital":["Tokyo"],"population":125836021,
		"area":377930,"languages":{"jpn":"Japanese"},"currencies":{"JPY":{"name":"Japanese yen"}},
		"region":"Asia","flags":{"png":"https://flagcdn.com/w320/jp.png"}}]`)

	resp, body := env.get(t, "/country/japan")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode, body)

	var got domain.CountryProfile
	decode(t, body, &got)
	assert.Equal(t, domain.CountryProfile{
		Name:       "Japan",
		Capital:    "Tokyo",
		Population: "125,836,021",
		Area:       "377,930 km²",
		Languages:  "Japanese",
		Currencies: "Japanese yen",
		Region:     "Asia",
		Subregion:  "Not Available",
		Flag:       "https://flagcdn.com/w320/jp.png",
	}, got)
}

func TestGetCountriesByContinent(t *testing.T) {
	env := newTestEnv(t)
	env.countries.respond(`[
		{"name":{"common":"Nigeria"},"population":206139587,"region":"Africa"},
		{"name":{"common":"Peru"},"population":32971846,"region":"Americas"},
		{"name":{"common":"Ghana"},"population":31072945,"region":"Africa"}]`)

	var listings []map[string]interface{}
	for _, name := range []string{"africa", "Africa", "AFRICA"} {
		resp, body := env.get(t, "/continent/"+name)
		require.Equal(t, nethttp.StatusOK, resp.StatusCode, body)

		var got map[string]interface{}
		decode(t, body, &got)
		listings = append(listings, got)
	}

	assert.Equal(t, listings[0], listings[1])
	assert.Equal(t, listings[0], listings[2])

	var got domain.ContinentListing
	_, body := env.get(t, "/continent/africa")
	decode(t, body, &got)
	assert.Equal(t, "Africa", got.Continent)
	assert.Equal(t, 2, got.NumberOfCountries)
	require.Len(t, got.Countries, 2)
	assert.Equal(t, "Nigeria", got.Countries[0].Name)
	assert.Equal(t, "Ghana", got.Countries[1].Name)
}

func TestGetCountriesByContinentEmpty(t *testing.T) {
	env := newTestEnv(t)
	env.countries.respond(`[{"name":{"common":"Peru"},"region":"Americas"}]`)

	resp, body := env.get(t, "/continent/antarctic")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"continent":"Antarctic","numberOfCountries":0,"countries":[]}`, body)
}

func TestConvert(t *testing.T) {
	tests := []struct {
		route string
		rates string
		want  domain.ConversionResult
	}{
		{
			route: "/convert/usd-to-eur?amount=100",
			rates: `{"data":{"EUR":0.92}}`,
			want:  domain.ConversionResult{From: "USD", To: "EUR", Amount: "100", ConvertedAmount: "92.00", ConversionRate: 0.92},
		},
		{
			route: "/convert/jpy-to-gbp?amount=2500",
			rates: `{"data":{"GBP":0.0053}}`,
			want:  domain.ConversionResult{From: "JPY", To: "GBP", Amount: "2500", ConvertedAmount: "13.25", ConversionRate: 0.0053},
		},
		{
			route: "/convert/usd-to-eur?amount=.5",
			rates: `{"data":{"EUR":0.92}}`,
			want:  domain.ConversionResult{From: "USD", To: "EUR", Amount: ".5", ConvertedAmount: "0.46", ConversionRate: 0.92},
		},
		{
			route: "/convert/usd-to-eur?amount=1e2",
			rates: `{"data":{"EUR":0.92}}`,
			want:  domain.ConversionResult{From: "USD", To: "EUR", Amount: "1e2", ConvertedAmount: "92.00", ConversionRate: 0.92},
		},
	}

	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			env := newTestEnv(t)
			env.currency.respond(tt.rates)

			resp, body := env.get(t, tt.route)
			require.Equal(t, nethttp.StatusOK, resp.StatusCode, body)

			var got domain.ConversionResult
			decode(t, body, &got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertRejectsBadAmount(t *testing.T) {
	tests := []struct {
		route   string
		message string
	}{
		{"/convert/usd-to-eur", msgAmountMissing},
		{"/convert/usd-to-eur?amount=", msgAmountMissing},
		{"/convert/jpy-to-gbp", msgAmountMissing},
		{"/convert/usd-to-eur?amount=ten", msgAmountInvalid},
		{"/convert/jpy-to-gbp?amount=12abc", msgAmountInvalid},
		{"/convert/usd-to-eur?amount=NaN", msgAmountInvalid},
		{"/convert/usd-to-eur?amount=1e", msgAmountInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			env := newTestEnv(t)
			env.currency.respond(`{"data":{"EUR":0.92,"GBP":0.0053}}`)

			resp, body := env.get(t, tt.route)
			assertPlainError(t, resp, body, nethttp.StatusBadRequest, tt.message)
			assert.Zero(t, env.currency.calls.Load(), "no upstream call expected")
		})
	}
}

func TestUpstreamFailures(t *testing.T) {
	type failure struct {
		name   string
		status int
		body   string
		delay  time.Duration
	}
	failures := []failure{
		{"client error", nethttp.StatusNotFound, `{"message":"not found"}`, 0},
		{"server error", nethttp.StatusInternalServerError, `{}`, 0},
		{"malformed body", nethttp.StatusOK, `{{{`, 0},
		{"timeout", nethttp.StatusOK, `{}`, 2 * time.Second},
	}

	routes := []struct {
		route   string
		message string
		stub    func(e *testEnv) *stub
	}{
		{"/currentWeather/Oslo/NO", "Error fetching weather data", func(e *testEnv) *stub { return e.weather }},
		{"/forecast/Oslo/NO", "Error fetching forecast data", func(e *testEnv) *stub { return e.weather }},
		{"/country/Narnia", "Error fetching information for country: Narnia", func(e *testEnv) *stub { return e.countries }},
		{"/continent/Europe", "Error fetching countries for continent: Europe", func(e *testEnv) *stub { return e.countries }},
		{"/convert/usd-to-eur?amount=5", "Error converting USD to EUR", func(e *testEnv) *stub { return e.currency }},
		{"/convert/jpy-to-gbp?amount=5", "Error converting JPY to GBP", func(e *testEnv) *stub { return e.currency }},
	}

	for _, r := range routes {
		for _, f := range failures {
			t.Run(r.route+"/"+f.name, func(t *testing.T) {
				env := newTestEnv(t)
				s := r.stub(env)
				s.set(f.status, f.body, f.delay)

				resp, body := env.get(t, r.route)
				assertPlainError(t, resp, body, nethttp.StatusInternalServerError, r.message)
				assert.EqualValues(t, 1, s.calls.Load())
			})
		}
	}
}

func TestGetMapsAPIKey(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/api/maps-api-key")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"apiKey":"maps-secret-123"}`, body)
}

func TestGetMapsAPIKeyRestrictedOrigins(t *testing.T) {
	env := newTestEnv(t, "https://maps.example.com")

	tests := []struct {
		name    string
		headers []string
		status  int
	}{
		{"no origin", nil, nethttp.StatusForbidden},
		{"allowed origin", []string{fiber.HeaderOrigin, "https://maps.example.com"}, nethttp.StatusOK},
		{"allowed referer", []string{fiber.HeaderReferer, "https://maps.example.com/map"}, nethttp.StatusOK},
		{"foreign origin", []string{fiber.HeaderOrigin, "https://evil.example.net"}, nethttp.StatusForbidden},
		{"lookalike host", []string{fiber.HeaderReferer, "https://maps.example.com.evil.net/map"}, nethttp.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.get(t, "/api/maps-api-key", tt.headers...)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.status == nethttp.StatusOK {
				assert.JSONEq(t, `{"apiKey":"maps-secret-123"}`, body)
			} else {
				assert.NotContains(t, body, "maps-secret-123")
			}
		})
	}
}

func TestMapPages(t *testing.T) {
	env := newTestEnv(t)

	for _, route := range []string{"/map", "/map/shortest-route"} {
		resp, body := env.get(t, route)
		require.Equal(t, nethttp.StatusOK, resp.StatusCode, route)
		assert.Equal(t, fiber.MIMETextHTMLCharsetUTF8, resp.Header.Get(fiber.HeaderContentType))
		assert.Contains(t, body, "/api/maps-api-key")
	}
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/nope")
	assertPlainError(t, resp, body, nethttp.StatusNotFound, "Not Found")
}
