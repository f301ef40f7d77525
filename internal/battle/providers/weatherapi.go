package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-battle/internal/battle"
)

// WeatherAPIProvider implements battle.WeatherSource for WeatherAPI.com.
// Its hourly precip_mm covers all precipitation, not only rain.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

func NewWeatherAPIProvider(client *http.Client, apiKey string, logger *slog.Logger) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/forecast.json",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuitBreaker("weatherapi"),
		logger:  logger.With("component", "weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

// FetchHourly returns the hours of the location's current local day.
func (p *WeatherAPIProvider) FetchHourly(ctx context.Context, coords battle.Coordinates) (battle.RawHourlySeries, error) {
	if p.apiKey == "" {
		return battle.RawHourlySeries{}, fmt.Errorf("%w: weatherapi api key is not configured", battle.ErrInvalidConfiguration)
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	// WeatherAPI uses "q" for location; it accepts "city,country" or "lat,lon".
	values.Set("q", fmt.Sprintf("%f,%f", coords.Latitude, coords.Longitude))
	values.Set("days", "1")
	values.Set("aqi", "no")
	values.Set("alerts", "no")

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, p.logger, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()))
	if err != nil {
		return battle.RawHourlySeries{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Forecast struct {
			ForecastDay []struct {
				Hour []struct {
					Time       string  `json:"time"`
					TempC      float64 `json:"temp_c"`
					FeelsLikeC float64 `json:"feelslike_c"`
					PrecipMm   float64 `json:"precip_mm"`
				} `json:"hour"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return battle.RawHourlySeries{}, fmt.Errorf("%w: decode forecast: %w", battle.ErrUpstream, err)
	}
	if len(payload.Forecast.ForecastDay) == 0 {
		return battle.RawHourlySeries{}, fmt.Errorf("%w: forecast response has no forecast day", battle.ErrUpstream)
	}

	hours := payload.Forecast.ForecastDay[0].Hour
	series := battle.RawHourlySeries{
		Timestamps:          make([]string, 0, len(hours)),
		Temperature:         make([]float64, 0, len(hours)),
		ApparentTemperature: make([]float64, 0, len(hours)),
		Rainfall:            make([]float64, 0, len(hours)),
	}
	for _, h := range hours {
		// "2024-01-01 13:00" -> "2024-01-01T13:00"
		series.Timestamps = append(series.Timestamps, strings.Replace(h.Time, " ", "T", 1))
		series.Temperature = append(series.Temperature, h.TempC)
		series.ApparentTemperature = append(series.ApparentTemperature, h.FeelsLikeC)
		series.Rainfall = append(series.Rainfall, h.PrecipMm)
	}
	return series, nil
}
