package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/weather-battle/internal/battle"
)

var envKeys = []string{
	"APP_ENV", "LOG_LEVEL", "PORT", "HTTP_TIMEOUT", "BATTLE_INTERVAL",
	"GEOCODE_CACHE_MAX_ENTRIES", "GEOCODE_CACHE_MAX_AGE", "GOOGLE_GEOCODER_API_KEY",
	"WEATHER_TIMEZONE", "WEATHER_SOURCE", "WEATHERAPI_API_KEY",
	"BATTLE_CITY_1", "BATTLE_CITY_2", "BATTLE_HOT_THRESHOLD", "BATTLE_COLD_THRESHOLD",
}

// clearEnv blanks every variable Load reads and points BATTLE_CONFIG at path.
func clearEnv(t *testing.T, path string) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	t.Setenv("BATTLE_CONFIG", path)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validConfig = `{
	"cities": {"city_1": "London", "city_2": "Paris"},
	"thresholds": {"hot": 30, "cold": 5}
}`

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t, writeConfig(t, validConfig))

	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	if got.AppEnv != "dev" {
		t.Errorf("AppEnv = %q, want %q", got.AppEnv, "dev")
	}
	if got.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", got.LogLevel, slog.LevelInfo)
	}
	if got.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTPTimeout = %v, want 10s", got.HTTPTimeout)
	}
	if got.BattleInterval != time.Hour {
		t.Errorf("BattleInterval = %v, want 1h", got.BattleInterval)
	}
	if got.WeatherTimezone != "GMT" || got.WeatherSource != "openmeteo" {
		t.Errorf("weather settings = %q/%q, want GMT/openmeteo", got.WeatherTimezone, got.WeatherSource)
	}
	if got.Battle.Cities.City1 != "London" || got.Battle.Cities.City2 != "Paris" {
		t.Errorf("cities = %+v", got.Battle.Cities)
	}
	if th := got.Battle.Limits(); th != (battle.Thresholds{Hot: 30, Cold: 5}) {
		t.Errorf("thresholds = %+v", th)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t, writeConfig(t, validConfig))
	t.Setenv("BATTLE_CITY_2", "Cairo")
	t.Setenv("BATTLE_HOT_THRESHOLD", "35.5")
	t.Setenv("LOG_LEVEL", "debug")

	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if got.Battle.Cities.City2 != "Cairo" {
		t.Errorf("City2 = %q, want Cairo", got.Battle.Cities.City2)
	}
	if got.Battle.Limits().Hot != 35.5 {
		t.Errorf("Hot = %v, want 35.5", got.Battle.Limits().Hot)
	}
	if got.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", got.LogLevel)
	}
}

func TestLoad_EnvOnlyWhenDefaultFileMissing(t *testing.T) {
	clearEnv(t, "")
	prevWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prevWD) })
	t.Setenv("BATTLE_CITY_1", "Rome")
	t.Setenv("BATTLE_CITY_2", "Oslo")
	t.Setenv("BATTLE_HOT_THRESHOLD", "28")
	t.Setenv("BATTLE_COLD_THRESHOLD", "0")

	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if got.Battle.Limits() != (battle.Thresholds{Hot: 28, Cold: 0}) {
		t.Errorf("thresholds = %+v", got.Battle.Limits())
	}
}

func TestLoad_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "missing thresholds", body: `{"cities":{"city_1":"A","city_2":"B"}}`},
		{name: "missing cold", body: `{"cities":{"city_1":"A","city_2":"B"},"thresholds":{"hot":30}}`},
		{name: "non-numeric threshold", body: `{"cities":{"city_1":"A","city_2":"B"},"thresholds":{"hot":"very","cold":5}}`},
		{name: "missing city", body: `{"cities":{"city_1":"A"},"thresholds":{"hot":30,"cold":5}}`},
		{name: "blank city", body: `{"cities":{"city_1":"A","city_2":"  "},"thresholds":{"hot":30,"cold":5}}`},
		{name: "invalid json", body: `{"cities":`},
		{name: "NaN threshold from env", body: validConfig, env: map[string]string{"BATTLE_COLD_THRESHOLD": "NaN"}},
		{name: "garbage threshold from env", body: validConfig, env: map[string]string{"BATTLE_HOT_THRESHOLD": "warm"}},
		{name: "invalid APP_ENV", body: validConfig, env: map[string]string{"APP_ENV": "staging"}},
		{name: "invalid LOG_LEVEL", body: validConfig, env: map[string]string{"LOG_LEVEL": "loud"}},
		{name: "invalid HTTP_TIMEOUT", body: validConfig, env: map[string]string{"HTTP_TIMEOUT": "soon"}},
		{name: "unknown WEATHER_SOURCE", body: validConfig, env: map[string]string{"WEATHER_SOURCE": "almanac"}},
		{name: "weatherapi without key", body: validConfig, env: map[string]string{"WEATHER_SOURCE": "weatherapi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t, writeConfig(t, tt.body))
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if !errors.Is(err, battle.ErrInvalidConfiguration) {
				t.Fatalf("Load() error = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	clearEnv(t, filepath.Join(t.TempDir(), "nope.json"))

	_, err := Load()
	if !errors.Is(err, battle.ErrInvalidConfiguration) {
		t.Fatalf("Load() error = %v, want ErrInvalidConfiguration", err)
	}
}

func TestDecodeBattleConfig_TrimsCities(t *testing.T) {
	bc, err := DecodeBattleConfig(strings.NewReader(`{"cities":{"city_1":" New York ","city_2":"Paris"},"thresholds":{"hot":30,"cold":5}}`))
	if err != nil {
		t.Fatalf("DecodeBattleConfig() error = %v", err)
	}
	if bc.Cities.City1 != "New York" {
		t.Errorf("City1 = %q, want %q", bc.Cities.City1, "New York")
	}
	if err := bc.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: " warning ", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "nope", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLogLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
