package battle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeGeocoder struct {
	mu     sync.Mutex
	coords map[string]Coordinates
	calls  int
}

func (g *fakeGeocoder) Name() string { return "fake-geocoder" }

func (g *fakeGeocoder) Lookup(ctx context.Context, city string) (Coordinates, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	c, ok := g.coords[city]
	if !ok {
		return Coordinates{}, fmt.Errorf("%w: %s", ErrLocationNotFound, city)
	}
	return c, nil
}

type fakeSource struct {
	series map[Coordinates]RawHourlySeries
	err    error
}

func (s *fakeSource) Name() string { return "fake-source" }

func (s *fakeSource) FetchHourly(ctx context.Context, coords Coordinates) (RawHourlySeries, error) {
	if s.err != nil {
		return RawHourlySeries{}, s.err
	}
	return s.series[coords], nil
}

type mapCache struct {
	mu   sync.Mutex
	data map[string]Coordinates
}

func (c *mapCache) SaveCoordinates(city string, coords Coordinates) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[Key(city)] = coords
}

func (c *mapCache) GetCoordinates(city string) (Coordinates, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	coords, ok := c.data[Key(city)]
	if !ok {
		return Coordinates{}, errors.New("miss")
	}
	return coords, nil
}

var (
	london = Coordinates{Latitude: 51.5, Longitude: -0.12}
	cairo  = Coordinates{Latitude: 30.04, Longitude: 31.23}
)

func battleFixture() (*fakeGeocoder, *fakeSource) {
	geo := &fakeGeocoder{coords: map[string]Coordinates{"London": london, "Cairo": cairo}}
	src := &fakeSource{series: map[Coordinates]RawHourlySeries{
		london: {
			Timestamps:          []string{"2024-07-01T00:00", "2024-07-01T01:00"},
			Temperature:         []float64{15, 18},
			ApparentTemperature: []float64{14, 17},
			Rainfall:            []float64{0.5, 1.5},
		},
		cairo: {
			Timestamps:          []string{"2024-07-01T00:00", "2024-07-01T01:00"},
			Temperature:         []float64{28, 36},
			ApparentTemperature: []float64{29, 38},
			Rainfall:            []float64{0, 0},
		},
	}}
	return geo, src
}

func TestServiceBattle(t *testing.T) {
	geo, src := battleFixture()
	svc := NewService(geo, src, nil, Thresholds{Hot: 30, Cold: 5}, discardLogger())

	res, err := svc.Battle(context.Background(), "London", "Cairo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Decision{Winner: "Cairo", Criterion: CriterionMaxApparentTemp}
	if res.Decision != want {
		t.Fatalf("expected %+v, got %+v", want, res.Decision)
	}
	if res.Cities[0].Name != "London" || res.Cities[1].Name != "Cairo" {
		t.Fatalf("expected cities in input order, got %q and %q", res.Cities[0].Name, res.Cities[1].Name)
	}
	if res.Cities[1].MaxApparentTemp != 38 || res.Cities[1].MaxApparentTempTime != "01:00" {
		t.Fatalf("unexpected Cairo extrema: %+v", res.Cities[1])
	}
	if res.RunID == "" {
		t.Fatal("expected a run id")
	}
	if !strings.Contains(res.Report, "Winner: Cairo on max real feel!") {
		t.Fatalf("report missing winner line:\n%s", res.Report)
	}
}

func TestServiceBattleUsesCache(t *testing.T) {
	geo, src := battleFixture()
	cache := &mapCache{data: map[string]Coordinates{}}
	svc := NewService(geo, src, cache, Thresholds{Hot: 30, Cold: 5}, discardLogger())

	for i := 0; i < 3; i++ {
		if _, err := svc.Battle(context.Background(), "London", "Cairo"); err != nil {
			t.Fatalf("battle %d: unexpected error: %v", i, err)
		}
	}
	if geo.calls != 2 {
		t.Fatalf("expected 2 geocoder calls, got %d", geo.calls)
	}
}

func TestServiceBattleFailures(t *testing.T) {
	tests := []struct {
		name    string
		cityA   string
		cityB   string
		srcErr  error
		mutate  func(*fakeSource)
		wantErr error
	}{
		{name: "empty city", cityA: " ", cityB: "Cairo", wantErr: ErrInvalidConfiguration},
		{name: "unknown city", cityA: "London", cityB: "Atlantis", wantErr: ErrLocationNotFound},
		{name: "upstream failure", cityA: "London", cityB: "Cairo", srcErr: fmt.Errorf("%w: boom", ErrUpstream), wantErr: ErrUpstream},
		{
			name:  "malformed series",
			cityA: "London",
			cityB: "Cairo",
			mutate: func(s *fakeSource) {
				c := s.series[cairo]
				c.Rainfall = c.Rainfall[:1]
				s.series[cairo] = c
			},
			wantErr: ErrMismatchedLengths,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geo, src := battleFixture()
			src.err = tt.srcErr
			if tt.mutate != nil {
				tt.mutate(src)
			}
			svc := NewService(geo, src, nil, Thresholds{Hot: 30, Cold: 5}, discardLogger())

			res, err := svc.Battle(context.Background(), tt.cityA, tt.cityB)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if res.Report != "" {
				t.Fatalf("expected no partial result, got report %q", res.Report)
			}
		})
	}
}

func TestServiceThresholds(t *testing.T) {
	geo, src := battleFixture()
	th := Thresholds{Hot: 28, Cold: -2}
	svc := NewService(geo, src, nil, th, discardLogger())
	if svc.Thresholds() != th {
		t.Fatalf("expected %+v, got %+v", th, svc.Thresholds())
	}
}

// blockingSource waits for ctx to end before answering for blocked and serves
// every other location from the fixture.
type blockingSource struct {
	*fakeSource
	blocked Coordinates
}

func (s *blockingSource) FetchHourly(ctx context.Context, coords Coordinates) (RawHourlySeries, error) {
	if coords == s.blocked {
		<-ctx.Done()
		return RawHourlySeries{}, fmt.Errorf("%w: %w", ErrUpstream, ctx.Err())
	}
	return s.fakeSource.FetchHourly(ctx, coords)
}

func TestServiceBattleCancelsOtherCityOnFailure(t *testing.T) {
	tests := []struct {
		name  string
		cityA string
		cityB string
	}{
		{name: "first city fails", cityA: "Atlantis", cityB: "London"},
		{name: "second city fails", cityA: "London", cityB: "Atlantis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geo, src := battleFixture()
			svc := NewService(geo, &blockingSource{fakeSource: src, blocked: london}, nil,
				Thresholds{Hot: 30, Cold: 5}, discardLogger())

			done := make(chan error, 1)
			go func() {
				_, err := svc.Battle(context.Background(), tt.cityA, tt.cityB)
				done <- err
			}()

			select {
			case err := <-done:
				if !errors.Is(err, ErrLocationNotFound) {
					t.Fatalf("expected ErrLocationNotFound, got %v", err)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("battle kept waiting on the other city after a failure")
			}
		})
	}
}

func TestServiceBattleParentCancellation(t *testing.T) {
	geo, src := battleFixture()
	svc := NewService(geo, &blockingSource{fakeSource: src, blocked: london}, nil,
		Thresholds{Hot: 30, Cold: 5}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Battle(ctx, "London", "Cairo"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
