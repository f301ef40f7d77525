package battle

import (
	"context"
)

// Geocoder resolves a place name to coordinates (e.g. Open-Meteo geocoding, Google).
type Geocoder interface {
	Name() string
	Lookup(ctx context.Context, city string) (Coordinates, error)
}

// WeatherSource retrieves today's hourly series for a position.
type WeatherSource interface {
	Name() string
	FetchHourly(ctx context.Context, coords Coordinates) (RawHourlySeries, error)
}

// CoordinateStore is the contract the in-memory coordinate cache must satisfy.
type CoordinateStore interface {
	SaveCoordinates(city string, coords Coordinates)
	GetCoordinates(city string) (Coordinates, error)
}
