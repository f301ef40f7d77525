package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-battle/internal/battle"
	"github.com/i474232898/weather-battle/internal/common"
)

const defaultConfigPath = "config.json"

var validate = validator.New()

type AppConfig struct {
	AppEnv   string
	LogLevel slog.Level
	Port     string

	// HTTPTimeout bounds every outbound geocoding/forecast request.
	HTTPTimeout time.Duration

	// BattleInterval controls how often serve mode re-runs the configured battle.
	BattleInterval time.Duration

	// Geocoding cache retention.
	CacheMaxEntries int           // max number of cached cities (0 = unlimited)
	CacheMaxAge     time.Duration // max age of a cached entry (0 = unlimited)

	// GoogleGeocoderAPIKey switches geocoding from Open-Meteo to Google when set.
	GoogleGeocoderAPIKey string

	// WeatherTimezone is passed to the forecast API and picks "today".
	WeatherTimezone string

	// WeatherSource selects the hourly data provider: "openmeteo" or "weatherapi".
	WeatherSource string
	WeatherAPIKey string

	Battle BattleConfig
}

// BattleConfig mirrors the JSON configuration file.
type BattleConfig struct {
	Cities     Cities          `json:"cities"`
	Thresholds ThresholdConfig `json:"thresholds"`
}

type Cities struct {
	City1 string `json:"city_1" validate:"required"`
	City2 string `json:"city_2" validate:"required"`
}

// ThresholdConfig uses pointers so a missing key is distinguishable from zero.
type ThresholdConfig struct {
	Hot  *float64 `json:"hot" validate:"required"`
	Cold *float64 `json:"cold" validate:"required"`
}

// Limits returns the validated thresholds. Only call after Validate succeeded.
func (c BattleConfig) Limits() battle.Thresholds {
	return battle.Thresholds{Hot: *c.Thresholds.Hot, Cold: *c.Thresholds.Cold}
}

// Validate checks that both cities and finite thresholds are present.
func (c BattleConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", battle.ErrInvalidConfiguration, err)
	}
	for name, v := range map[string]float64{"hot": *c.Thresholds.Hot, "cold": *c.Thresholds.Cold} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: threshold %s is not a finite number", battle.ErrInvalidConfiguration, name)
		}
	}
	return nil
}

// Load reads configuration from the environment and the battle config file.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found or error loading it", "error", err)
	}
	cfg := &AppConfig{}

	cfg.AppEnv = common.GetenvDefault("APP_ENV", "dev")
	switch cfg.AppEnv {
	case "dev", "prod":
	default:
		return nil, fmt.Errorf("%w: invalid APP_ENV %q (allowed: dev, prod)", battle.ErrInvalidConfiguration, cfg.AppEnv)
	}

	level, err := parseLogLevel(common.GetenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", battle.ErrInvalidConfiguration, err)
	}
	cfg.LogLevel = level
	cfg.Port = common.GetenvDefault("PORT", "8080")

	if cfg.HTTPTimeout, err = common.GetenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, fmt.Errorf("%w: %w", battle.ErrInvalidConfiguration, err)
	}
	if cfg.BattleInterval, err = common.GetenvDuration("BATTLE_INTERVAL", time.Hour); err != nil {
		return nil, fmt.Errorf("%w: %w", battle.ErrInvalidConfiguration, err)
	}
	if cfg.CacheMaxEntries, err = common.GetenvInt("GEOCODE_CACHE_MAX_ENTRIES", 128); err != nil {
		return nil, fmt.Errorf("%w: %w", battle.ErrInvalidConfiguration, err)
	}
	if cfg.CacheMaxAge, err = common.GetenvDuration("GEOCODE_CACHE_MAX_AGE", 24*time.Hour); err != nil {
		return nil, fmt.Errorf("%w: %w", battle.ErrInvalidConfiguration, err)
	}

	cfg.GoogleGeocoderAPIKey = common.GetenvDefault("GOOGLE_GEOCODER_API_KEY", "")
	cfg.WeatherTimezone = common.GetenvDefault("WEATHER_TIMEZONE", "GMT")
	cfg.WeatherAPIKey = common.GetenvDefault("WEATHERAPI_API_KEY", "")
	cfg.WeatherSource = strings.ToLower(common.GetenvDefault("WEATHER_SOURCE", "openmeteo"))
	switch cfg.WeatherSource {
	case "openmeteo":
	case "weatherapi":
		if cfg.WeatherAPIKey == "" {
			return nil, fmt.Errorf("%w: WEATHER_SOURCE=weatherapi requires WEATHERAPI_API_KEY", battle.ErrInvalidConfiguration)
		}
	default:
		return nil, fmt.Errorf("%w: invalid WEATHER_SOURCE %q (allowed: openmeteo, weatherapi)", battle.ErrInvalidConfiguration, cfg.WeatherSource)
	}

	bc, err := loadBattleConfigFile()
	if err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(&bc); err != nil {
		return nil, err
	}
	if err := bc.Validate(); err != nil {
		return nil, err
	}
	cfg.Battle = bc

	return cfg, nil
}

// loadBattleConfigFile reads BATTLE_CONFIG (default config.json). A missing
// default file is tolerated so the battle can be configured from the
// environment alone; a missing explicit file is an error.
func loadBattleConfigFile() (BattleConfig, error) {
	path, explicit := os.LookupEnv("BATTLE_CONFIG")
	path = strings.TrimSpace(path)
	if path == "" {
		path, explicit = defaultConfigPath, false
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			slog.Info("no battle config file found; relying on environment", "path", path)
			return BattleConfig{}, nil
		}
		return BattleConfig{}, fmt.Errorf("%w: open config file: %w", battle.ErrInvalidConfiguration, err)
	}
	defer f.Close()

	return DecodeBattleConfig(f)
}

// DecodeBattleConfig parses the JSON battle configuration. It does not validate.
func DecodeBattleConfig(r io.Reader) (BattleConfig, error) {
	var bc BattleConfig
	if err := json.NewDecoder(r).Decode(&bc); err != nil {
		return BattleConfig{}, fmt.Errorf("%w: invalid JSON in config file: %w", battle.ErrInvalidConfiguration, err)
	}
	bc.Cities.City1 = strings.TrimSpace(bc.Cities.City1)
	bc.Cities.City2 = strings.TrimSpace(bc.Cities.City2)
	return bc, nil
}

func applyEnvOverrides(bc *BattleConfig) error {
	bc.Cities.City1 = common.GetenvDefault("BATTLE_CITY_1", bc.Cities.City1)
	bc.Cities.City2 = common.GetenvDefault("BATTLE_CITY_2", bc.Cities.City2)

	hot, ok, err := common.GetenvFloat("BATTLE_HOT_THRESHOLD")
	if err != nil {
		return fmt.Errorf("%w: %w", battle.ErrInvalidConfiguration, err)
	}
	if ok {
		bc.Thresholds.Hot = &hot
	}

	cold, ok, err := common.GetenvFloat("BATTLE_COLD_THRESHOLD")
	if err != nil {
		return fmt.Errorf("%w: %w", battle.ErrInvalidConfiguration, err)
	}
	if ok {
		bc.Thresholds.Cold = &cold
	}
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
