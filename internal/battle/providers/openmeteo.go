package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-battle/internal/battle"
)

// hourlyVariables are the Open-Meteo hourly fields a battle needs.
const hourlyVariables = "temperature_2m,apparent_temperature,rain"

// OpenMeteoProvider implements battle.WeatherSource for the Open-Meteo forecast API.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	timezone string
	location *time.Location
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	logger   *slog.Logger
	now      func() time.Time
}

// NewOpenMeteoProvider creates a forecast client requesting today's hours in the
// given IANA timezone (Open-Meteo also accepts "GMT"). Unknown zones fall back to UTC
// for picking "today".
func NewOpenMeteoProvider(client *http.Client, timezone string, logger *slog.Logger) *OpenMeteoProvider {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		logger.Warn("unknown weather timezone; using UTC for today's date", "timezone", timezone, "error", err)
		loc = time.UTC
	}

	return &OpenMeteoProvider{
		name:     "openmeteo",
		baseURL:  "https://api.open-meteo.com/v1/forecast",
		timezone: timezone,
		location: loc,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuitBreaker("openmeteo"),
		logger:  logger.With("component", "openmeteo"),
		now:     time.Now,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// FetchHourly returns today's hourly temperature, apparent temperature and rain.
// JSON nulls inside the arrays become NaN so battle.Reduce rejects them.
func (p *OpenMeteoProvider) FetchHourly(ctx context.Context, coords battle.Coordinates) (battle.RawHourlySeries, error) {
	today := p.now().In(p.location).Format("2006-01-02")

	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	values.Set("hourly", hourlyVariables)
	values.Set("timezone", p.timezone)
	values.Set("start_date", today)
	values.Set("end_date", today)

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, p.logger, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()))
	if err != nil {
		return battle.RawHourlySeries{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Hourly *struct {
			Time                []string   `json:"time"`
			Temperature2m       []*float64 `json:"temperature_2m"`
			ApparentTemperature []*float64 `json:"apparent_temperature"`
			Rain                []*float64 `json:"rain"`
		} `json:"hourly"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return battle.RawHourlySeries{}, fmt.Errorf("%w: decode forecast: %w", battle.ErrUpstream, err)
	}
	if payload.Hourly == nil {
		return battle.RawHourlySeries{}, fmt.Errorf("%w: forecast response missing hourly data", battle.ErrUpstream)
	}

	return battle.RawHourlySeries{
		Timestamps:          payload.Hourly.Time,
		Temperature:         nullsToNaN(payload.Hourly.Temperature2m),
		ApparentTemperature: nullsToNaN(payload.Hourly.ApparentTemperature),
		Rainfall:            nullsToNaN(payload.Hourly.Rain),
	}, nil
}

func nullsToNaN(in []*float64) []float64 {
	if in == nil {
		return nil
	}
	out := make([]float64, len(in))
	for i, v := range in {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
	}
	return out
}
