package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends the daemon can persist alarms to.
const (
	StorageSQLite = "sqlite"
	StorageJSON   = "json"
)

// Config captures environment driven configuration values for the alarm
// daemon.
type Config struct {
	HTTPPort       int
	Storage        string
	SQLiteDSN      string
	JSONPath       string
	SnoozeDuration time.Duration
	HapticInterval time.Duration
}

// Load parses configuration values from the current process environment.
//
// Every field has a sensible default; set values are validated and invalid
// entries are reported together.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:       8080,
		Storage:        StorageSQLite,
		SQLiteDSN:      "file:alarmd.db?_pragma=busy_timeout(5000)",
		JSONPath:       "alarmd.json",
		SnoozeDuration: 5 * time.Minute,
		HapticInterval: 2 * time.Second,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("ALARMD_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "ALARMD_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if storage := strings.TrimSpace(os.Getenv("ALARMD_STORAGE")); storage != "" {
		switch storage {
		case StorageSQLite, StorageJSON:
			cfg.Storage = storage
		default:
			invalid = append(invalid, "ALARMD_STORAGE")
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("ALARMD_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if path := strings.TrimSpace(os.Getenv("ALARMD_JSON_PATH")); path != "" {
		cfg.JSONPath = path
	}

	if snoozeValue := strings.TrimSpace(os.Getenv("ALARMD_SNOOZE_DURATION")); snoozeValue != "" {
		snooze, err := time.ParseDuration(snoozeValue)
		if err != nil || snooze <= 0 {
			invalid = append(invalid, "ALARMD_SNOOZE_DURATION")
		} else {
			cfg.SnoozeDuration = snooze
		}
	}

	if intervalValue := strings.TrimSpace(os.Getenv("ALARMD_HAPTIC_INTERVAL")); intervalValue != "" {
		interval, err := time.ParseDuration(intervalValue)
		if err != nil || interval <= 0 {
			invalid = append(invalid, "ALARMD_HAPTIC_INTERVAL")
		} else {
			cfg.HapticInterval = interval
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
