package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-battle/internal/battle"
)

var (
	// ErrNotFound is returned when no fresh coordinates are cached for a city.
	ErrNotFound = errors.New("no cached coordinates for city")
)

type entry struct {
	coords   battle.Coordinates
	storedAt time.Time
}

// MemoryStore is a concurrency-safe in-memory cache of geocoding results.
type MemoryStore struct {
	mu sync.RWMutex

	// key: battle.Key(city)
	data  map[string]entry
	order []string // insertion order, oldest first

	// retention configuration
	maxEntries int           // max number of cached cities
	maxAge     time.Duration // max age of an entry

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxEntries or maxAge is <= 0, it is treated as unlimited.
func NewMemoryStore(maxEntries int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]entry),
		maxEntries: maxEntries,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveCoordinates caches coords for city and enforces retention.
func (s *MemoryStore) SaveCoordinates(city string, coords battle.Coordinates) {
	key := battle.Key(city)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; ok {
		s.removeFromOrder(key)
	}
	s.data[key] = entry{coords: coords, storedAt: s.now()}
	s.order = append(s.order, key)

	// Enforce retention by count.
	if s.maxEntries > 0 && len(s.order) > s.maxEntries {
		over := len(s.order) - s.maxEntries
		for _, k := range s.order[:over] {
			delete(s.data, k)
		}
		s.order = s.order[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.order); i++ {
			if !s.data[s.order[i]].storedAt.Before(cutoff) {
				break
			}
			delete(s.data, s.order[i])
		}
		s.order = s.order[i:]
	}
}

// GetCoordinates returns the cached coordinates for city if present and not expired.
func (s *MemoryStore) GetCoordinates(city string) (battle.Coordinates, error) {
	key := battle.Key(city)

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok {
		return battle.Coordinates{}, ErrNotFound
	}
	if s.maxAge > 0 && s.now().Sub(e.storedAt) > s.maxAge {
		return battle.Coordinates{}, ErrNotFound
	}
	return e.coords, nil
}

// count returns the number of cached cities, expired entries included.
func (s *MemoryStore) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryStore) removeFromOrder(key string) {
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
