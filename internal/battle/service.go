package battle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Service orchestrates a battle: geocode both cities, fetch their hourly
// series, reduce, decide and render.
type Service struct {
	geocoder   Geocoder
	source     WeatherSource
	cache      CoordinateStore
	thresholds Thresholds
	logger     *slog.Logger
}

// NewService creates a new Service. cache may be nil, in which case every
// battle geocodes both cities.
func NewService(geocoder Geocoder, source WeatherSource, cache CoordinateStore, thresholds Thresholds, logger *slog.Logger) *Service {
	return &Service{
		geocoder:   geocoder,
		source:     source,
		cache:      cache,
		thresholds: thresholds,
		logger:     logger.With("component", "battle-service"),
	}
}

// Thresholds returns the thresholds the service decides with.
func (s *Service) Thresholds() Thresholds {
	return s.thresholds
}

// Battle runs a full comparison between cityA and cityB. Both locations are
// fetched concurrently; if either fails the whole battle fails, reporting
// cityA's error first.
func (s *Service) Battle(ctx context.Context, cityA, cityB string) (Result, error) {
	cities := [2]string{strings.TrimSpace(cityA), strings.TrimSpace(cityB)}
	for i, c := range cities {
		if c == "" {
			return Result{}, fmt.Errorf("%w: city_%d is empty", ErrInvalidConfiguration, i+1)
		}
	}

	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID)
	logger.Info("battle started", "city_1", cities[0], "city_2", cities[1])

	// The first failure cancels the other city's fetch.
	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg      sync.WaitGroup
		extrema [2]LocationExtrema
		errs    [2]error
	)
	for i := range cities {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			extrema[i], errs[i] = s.extremaFor(fetchCtx, logger, cities[i])
			if errs[i] != nil {
				cancel()
			}
		}(i)
	}
	wg.Wait()

	if i := firstFailure(ctx, errs); i >= 0 {
		logger.Error("battle aborted", "city", cities[i], "error", errs[i])
		return Result{}, errs[i]
	}

	decision := Decide(extrema[0], extrema[1], s.thresholds)
	logger.Info("battle decided", "winner", decision.Winner, "criterion", decision.Criterion)

	return Result{
		RunID:    runID,
		Cities:   extrema,
		Decision: decision,
		Report:   Render(extrema[0], extrema[1], decision),
	}, nil
}

// firstFailure returns the index of the error to report, in input order, or -1.
// An error that only reflects the other fetch cancelling this one is skipped
// in favour of the failure that caused it.
func firstFailure(ctx context.Context, errs [2]error) int {
	fallback := -1
	for i, err := range errs {
		if err == nil {
			continue
		}
		if ctx.Err() == nil && errors.Is(err, context.Canceled) {
			if fallback < 0 {
				fallback = i
			}
			continue
		}
		return i
	}
	return fallback
}

func (s *Service) extremaFor(ctx context.Context, logger *slog.Logger, city string) (LocationExtrema, error) {
	coords, err := s.locate(ctx, logger, city)
	if err != nil {
		return LocationExtrema{}, err
	}

	series, err := s.source.FetchHourly(ctx, coords)
	if err != nil {
		return LocationExtrema{}, fmt.Errorf("fetch weather for %s via %s: %w", city, s.source.Name(), err)
	}
	logger.Debug("hourly series fetched", "city", city, "hours", len(series.Timestamps))

	return Reduce(series, city)
}

func (s *Service) locate(ctx context.Context, logger *slog.Logger, city string) (Coordinates, error) {
	if s.cache != nil {
		if coords, err := s.cache.GetCoordinates(city); err == nil {
			logger.Debug("coordinates served from cache", "city", city)
			return coords, nil
		}
	}

	coords, err := s.geocoder.Lookup(ctx, city)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocode %s via %s: %w", city, s.geocoder.Name(), err)
	}
	logger.Debug("coordinates resolved", "city", city, "latitude", coords.Latitude, "longitude", coords.Longitude)

	if s.cache != nil {
		s.cache.SaveCoordinates(city, coords)
	}
	return coords, nil
}
