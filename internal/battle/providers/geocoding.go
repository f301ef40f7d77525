package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-battle/internal/battle"
)

// OpenMeteoGeocoder implements battle.Geocoder using the Open-Meteo geocoding API.
type OpenMeteoGeocoder struct {
	name     string
	baseURL  string
	language string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	logger   *slog.Logger
}

func NewOpenMeteoGeocoder(client *http.Client, logger *slog.Logger) *OpenMeteoGeocoder {
	return &OpenMeteoGeocoder{
		name:     "openmeteo-geocoding",
		baseURL:  "https://geocoding-api.open-meteo.com/v1/search",
		language: "en",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuitBreaker("openmeteo-geocoding"),
		logger:  logger.With("component", "openmeteo-geocoding"),
	}
}

func (g *OpenMeteoGeocoder) Name() string {
	return g.name
}

// Lookup returns the coordinates of the best match for city.
func (g *OpenMeteoGeocoder) Lookup(ctx context.Context, city string) (battle.Coordinates, error) {
	values := url.Values{}
	values.Set("name", city)
	values.Set("count", "1")
	values.Set("language", g.language)
	values.Set("format", "json")

	resp, err := doRequestWithResilience(ctx, g.httpCfg, g.circuit, g.logger, fmt.Sprintf("%s?%s", g.baseURL, values.Encode()))
	if err != nil {
		return battle.Coordinates{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Results []struct {
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		} `json:"results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return battle.Coordinates{}, fmt.Errorf("%w: decode geocoding: %w", battle.ErrUpstream, err)
	}
	if len(payload.Results) == 0 {
		return battle.Coordinates{}, fmt.Errorf("%w: no coordinates returned for %q", battle.ErrLocationNotFound, city)
	}

	first := payload.Results[0]
	if first.Latitude == nil || first.Longitude == nil {
		return battle.Coordinates{}, fmt.Errorf("%w: geocoding result for %q lacks latitude/longitude", battle.ErrUpstream, city)
	}

	return battle.Coordinates{Latitude: *first.Latitude, Longitude: *first.Longitude}, nil
}
