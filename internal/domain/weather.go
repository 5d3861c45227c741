package domain

// WeatherSummary represents the current conditions for a location
type WeatherSummary struct {
	Location    string `json:"location"`
	Condition   string `json:"condition"`
	Temperature string `json:"temperature"`
	FeelsLike   string `json:"feelsLike"`
	Humidity    string `json:"humidity"`
	WindSpeed   string `json:"windSpeed"`
	Sunrise     string `json:"sunrise"`
	Sunset      string `json:"sunset"`
}

// ForecastEntry is a single time-stamped forecast snapshot
type ForecastEntry struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Temperature string `json:"temperature"`
	Condition   string `json:"condition"`
	WindSpeed   string `json:"windSpeed"`
	Humidity    string `json:"humidity"`
}

// Forecast wraps forecast entries in upstream chronological order
type Forecast struct {
	Location string          `json:"location"`
	Entries  []ForecastEntry `json:"forecast"`
}
