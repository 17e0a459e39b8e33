package config

import (
	"strings"
	"testing"
	"time"

	"buckler-tracker/internal/constants"

	"github.com/rs/zerolog"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DB_PATH", "BASE_URL", "TIMEZONE", "MATCH_LIMIT", "HEADLESS", "NAV_TIMEOUT", "REFRESH_SCHEDULE", "RETRY_ATTEMPTS", "QUEUE_SIZE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(zerolog.Nop())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DBPath != "buckler.db" {
		t.Errorf("DBPath = %q, want buckler.db", cfg.DBPath)
	}
	if !cfg.Headless {
		t.Error("Headless = false, want true")
	}
	if cfg.MatchLimit != constants.DefaultMatchLimit {
		t.Errorf("MatchLimit = %d, want %d", cfg.MatchLimit, constants.DefaultMatchLimit)
	}
	if cfg.NavTimeout != constants.NavigationTimeout {
		t.Errorf("NavTimeout = %v, want %v", cfg.NavTimeout, constants.NavigationTimeout)
	}
	if cfg.Location == nil || cfg.Location.String() != "Asia/Seoul" {
		t.Errorf("Location = %v, want Asia/Seoul", cfg.Location)
	}
	if strings.HasSuffix(cfg.BaseURL, "/") {
		t.Errorf("BaseURL = %q, want no trailing slash", cfg.BaseURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BASE_URL", "http://localhost:9999/buckler/")
	t.Setenv("LOCALE_PATH", "/en/")
	t.Setenv("MATCH_LIMIT", "25")
	t.Setenv("HEADLESS", "false")
	t.Setenv("NAV_TIMEOUT", "5s")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("REFRESH_SCHEDULE", "*/30 * * * *")

	cfg, err := Load(zerolog.Nop())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BaseURL != "http://localhost:9999/buckler" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.LocalePath != "en" {
		t.Errorf("LocalePath = %q, want en", cfg.LocalePath)
	}
	if cfg.MatchLimit != 25 {
		t.Errorf("MatchLimit = %d, want 25", cfg.MatchLimit)
	}
	if cfg.Headless {
		t.Error("Headless = true, want false")
	}
	if cfg.NavTimeout != 5*time.Second {
		t.Errorf("NavTimeout = %v, want 5s", cfg.NavTimeout)
	}
	if cfg.Location != time.UTC {
		t.Errorf("Location = %v, want UTC", cfg.Location)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric limit", "MATCH_LIMIT", "many"},
		{"zero limit", "MATCH_LIMIT", "0"},
		{"bad bool", "HEADLESS", "sometimes"},
		{"bad duration", "NAV_TIMEOUT", "soon"},
		{"unknown timezone", "TIMEZONE", "Mars/Olympus"},
		{"bad cron", "REFRESH_SCHEDULE", "every day"},
		{"zero attempts", "RETRY_ATTEMPTS", "0"},
		{"zero queue", "QUEUE_SIZE", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(zerolog.Nop()); err == nil {
				t.Errorf("Load() with %s=%q succeeded, want error", tt.key, tt.value)
			}
		})
	}
}
