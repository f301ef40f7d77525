package providers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-battle/internal/battle"
	"github.com/i474232898/weather-battle/internal/common"
)

// geocoder.ApiKey is package-global in kelvins/geocoder.
var googleKeyMu sync.Mutex

// GoogleGeocoder implements battle.Geocoder on top of the Google Geocoding API.
type GoogleGeocoder struct {
	apiKey string
	logger *slog.Logger

	// geocode is swapped in tests.
	geocode func(geocoder.Address) (geocoder.Location, error)
}

func NewGoogleGeocoder(apiKey string, logger *slog.Logger) *GoogleGeocoder {
	return &GoogleGeocoder{
		apiKey:  apiKey,
		logger:  logger.With("component", "google-geocoding"),
		geocode: geocoder.Geocoding,
	}
}

func (g *GoogleGeocoder) Name() string {
	return "google-geocoding"
}

// Lookup resolves city through Google. The underlying client has no context
// support, so cancellation only stops waiting for it.
func (g *GoogleGeocoder) Lookup(ctx context.Context, city string) (battle.Coordinates, error) {
	if g.apiKey == "" {
		return battle.Coordinates{}, fmt.Errorf("%w: google geocoder api key is not configured", battle.ErrInvalidConfiguration)
	}

	type outcome struct {
		loc geocoder.Location
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		googleKeyMu.Lock()
		defer googleKeyMu.Unlock()
		geocoder.ApiKey = g.apiKey

		g.logger.Debug("about to run google geocoding query", "city", city)
		loc, err := g.geocode(geocoder.Address{City: city})
		done <- outcome{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return battle.Coordinates{}, ctx.Err()
	case out := <-done:
		if out.err != nil {
			if common.HasAny(strings.ToLower(out.err.Error()), "zero_results", "empty", "not found") {
				return battle.Coordinates{}, fmt.Errorf("%w: %q: %v", battle.ErrLocationNotFound, city, out.err)
			}
			return battle.Coordinates{}, fmt.Errorf("%w: google geocoding: %w", battle.ErrUpstream, out.err)
		}
		return battle.Coordinates{Latitude: out.loc.Latitude, Longitude: out.loc.Longitude}, nil
	}
}
