package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/d23ai/sahay-gateway/internal/config"
)

// OpenMeteoWeather answers weather queries against the open-meteo API
// pair: a geocoding lookup for city names and a forecast lookup by
// coordinates. Both endpoints are keyless.
type OpenMeteoWeather struct {
	forecastURL string
	geocodeURL  string
	client      *http.Client
}

func NewOpenMeteoWeather(cfg config.WeatherToolConfig) *OpenMeteoWeather {
	return &OpenMeteoWeather{
		forecastURL: cfg.ForecastURL,
		geocodeURL:  cfg.GeocodeURL,
		client:      newHTTPClient(),
	}
}

type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Country   string  `json:"country"`
	} `json:"results"`
}

type forecastResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		Humidity    float64 `json:"relative_humidity_2m"`
		WeatherCode int     `json:"weather_code"`
		WindSpeed   float64 `json:"wind_speed_10m"`
	} `json:"current"`
}

// Current resolves the city to coordinates and reports conditions there.
func (w *OpenMeteoWeather) Current(ctx context.Context, city string) (string, error) {
	q := url.Values{}
	q.Set("name", city)
	q.Set("count", "1")

	var geo geocodeResponse
	if err := getJSON(ctx, w.client, w.geocodeURL, q, &geo); err != nil {
		return "", fmt.Errorf("geocode %q: %w", city, err)
	}
	if len(geo.Results) == 0 {
		return fmt.Sprintf("I couldn't find a place called %q. Could you check the spelling?", city), nil
	}

	place := geo.Results[0]
	report, err := w.report(ctx, place.Latitude, place.Longitude)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Weather in %s: %s", place.Name, report), nil
}

// CurrentAt reports conditions at shared coordinates.
func (w *OpenMeteoWeather) CurrentAt(ctx context.Context, lat, lon float64) (string, error) {
	report, err := w.report(ctx, lat, lon)
	if err != nil {
		return "", err
	}
	return "Weather at your location: " + report, nil
}

func (w *OpenMeteoWeather) report(ctx context.Context, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("current", "temperature_2m,relative_humidity_2m,weather_code,wind_speed_10m")

	var fc forecastResponse
	if err := getJSON(ctx, w.client, w.forecastURL, q, &fc); err != nil {
		return "", fmt.Errorf("forecast: %w", err)
	}

	return fmt.Sprintf("%s, %.0f°C, humidity %.0f%%, wind %.0f km/h",
		describeWeatherCode(fc.Current.WeatherCode),
		fc.Current.Temperature,
		fc.Current.Humidity,
		fc.Current.WindSpeed,
	), nil
}

// describeWeatherCode maps WMO weather interpretation codes to short
// phrases.
func describeWeatherCode(code int) string {
	switch {
	case code == 0:
		return "clear sky"
	case code <= 3:
		return "partly cloudy"
	case code == 45 || code == 48:
		return "foggy"
	case code >= 51 && code <= 57:
		return "drizzle"
	case code >= 61 && code <= 67:
		return "rain"
	case code >= 71 && code <= 77:
		return "snow"
	case code >= 80 && code <= 82:
		return "rain showers"
	case code >= 95:
		return "thunderstorm"
	}
	return "changing conditions"
}
