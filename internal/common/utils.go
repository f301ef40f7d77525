package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// GetenvDefault returns the trimmed value of key, or def when unset or blank.
func GetenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// GetenvInt parses key as an int, falling back to def when unset.
func GetenvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

// GetenvDuration parses key with time.ParseDuration, falling back to def when unset.
func GetenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

// GetenvFloat parses key as a float64. ok is false when the variable is unset.
func GetenvFloat(key string) (v float64, ok bool, err error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, true, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return v, true, nil
}
