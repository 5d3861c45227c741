package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/worldinfo/backend/internal/domain"
	"github.com/worldinfo/backend/pkg/utils"
)

// WeatherService handles weather data fetching
type WeatherService struct {
	apiKey   string
	baseURL  string
	location *time.Location
	client   JSONGetter
}

// NewWeatherService creates a new weather service. loc is the zone used to
// render sunrise, sunset and forecast times.
func NewWeatherService(apiKey, baseURL string, loc *time.Location, client JSONGetter) *WeatherService {
	return &WeatherService{
		apiKey:   apiKey,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		location: loc,
		client:   client,
	}
}

type owmCondition struct {
	Description string `json:"description"`
}

type owmMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Humidity  float64 `json:"humidity"`
}

type owmWind struct {
	Speed float64 `json:"speed"`
}

// OpenWeatherResponse represents the OpenWeatherMap current weather payload
type OpenWeatherResponse struct {
	Name    string         `json:"name"`
	Main    *owmMain       `json:"main"`
	Weather []owmCondition `json:"weather"`
	Wind    owmWind        `json:"wind"`
	Sys     struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
}

// OpenWeatherForecastResponse represents the 5 day / 3 hour forecast payload
type OpenWeatherForecastResponse struct {
	List []struct {
		Dt      int64          `json:"dt"`
		Main    *owmMain       `json:"main"`
		Weather []owmCondition `json:"weather"`
		Wind    owmWind        `json:"wind"`
	} `json:"list"`
	City *struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
}

// GetCurrentWeather fetches current conditions for city, country
func (s *WeatherService) GetCurrentWeather(ctx context.Context, city, country string) (domain.WeatherSummary, error) {
	var owResp OpenWeatherResponse
	if err := s.client.GetJSON(ctx, s.endpoint("weather", city, country), &owResp); err != nil {
		return domain.WeatherSummary{}, fmt.Errorf("weather: failed to fetch current weather: %w", err)
	}

	if owResp.Main == nil {
		return domain.WeatherSummary{}, fmt.Errorf("weather: %w", s.client.Malformed("response has no main block"))
	}

	return domain.WeatherSummary{
		Location:    owResp.Name + ", " + owResp.Sys.Country,
		Condition:   firstCondition(owResp.Weather),
		Temperature: utils.WithUnit(owResp.Main.Temp, "°C"),
		FeelsLike:   utils.WithUnit(owResp.Main.FeelsLike, "°C"),
		Humidity:    utils.WithUnit(owResp.Main.Humidity, "%"),
		WindSpeed:   utils.WithUnit(owResp.Wind.Speed, " m/s"),
		Sunrise:     s.clockOrNotAvailable(owResp.Sys.Sunrise),
		Sunset:      s.clockOrNotAvailable(owResp.Sys.Sunset),
	}, nil
}

// clockOrNotAvailable treats a zero epoch as an absent sys block
func (s *WeatherService) clockOrNotAvailable(unix int64) string {
	if unix == 0 {
		return domain.NotAvailable
	}
	return utils.ClockTime(unix, s.location)
}

// GetForecast fetches the forecast series for city, country in upstream order
func (s *WeatherService) GetForecast(ctx context.Context, city, country string) (domain.Forecast, error) {
	var fcResp OpenWeatherForecastResponse
	if err := s.client.GetJSON(ctx, s.endpoint("forecast", city, country), &fcResp); err != nil {
		return domain.Forecast{}, fmt.Errorf("weather: failed to fetch forecast: %w", err)
	}

	if fcResp.City == nil {
		return domain.Forecast{}, fmt.Errorf("weather: %w", s.client.Malformed("forecast has no city block"))
	}

	entries := make([]domain.ForecastEntry, 0, len(fcResp.List))
	for i, item := range fcResp.List {
		if item.Main == nil {
			return domain.Forecast{}, fmt.Errorf("weather: %w", s.client.Malformed("forecast entry %d has no main block", i))
		}
		entries = append(entries, domain.ForecastEntry{
			Date:        utils.CalendarDate(item.Dt, s.location),
			Time:        utils.ClockTime(item.Dt, s.location),
			Temperature: utils.WithUnit(item.Main.Temp, "°C"),
			Condition:   firstCondition(item.Weather),
			WindSpeed:   utils.WithUnit(item.Wind.Speed, " m/s"),
			Humidity:    utils.WithUnit(item.Main.Humidity, "%"),
		})
	}

	return domain.Forecast{
		Location: fcResp.City.Name + ", " + fcResp.City.Country,
		Entries:  entries,
	}, nil
}

func (s *WeatherService) endpoint(resource, city, country string) string {
	q := url.Values{}
	q.Set("q", city+","+country)
	q.Set("units", "metric")
	q.Set("appid", s.apiKey)
	return s.baseURL + "/" + resource + "?" + q.Encode()
}

func firstCondition(conditions []owmCondition) string {
	if len(conditions) == 0 {
		return ""
	}
	return conditions[0].Description
}
