package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"buckler-tracker/internal/constants"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBPath     string
	ServerPort string
	LogLevel   string

	AuthStatePath string
	BaseURL       string
	LocalePath    string
	BrowserLocale string
	Timezone      string
	Location      *time.Location
	UserAgent     string
	Headless      bool
	ChromePath    string
	NavTimeout    time.Duration
	DebugDir      string

	SubjectID       string
	MatchLimit      int
	RefreshSchedule string

	RetryAttempts  int
	RetryBaseDelay time.Duration
	QueueSize      int
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:          getEnv("DB_PATH", "buckler.db"),
		ServerPort:      getEnv("SERVER_PORT", "8000"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		AuthStatePath:   getEnv("AUTH_STATE_PATH", "auth.json"),
		BaseURL:         strings.TrimRight(getEnv("BASE_URL", "https://www.streetfighter.com/6/buckler"), "/"),
		LocalePath:      strings.Trim(getEnv("LOCALE_PATH", "ko-kr"), "/"),
		BrowserLocale:   getEnv("BROWSER_LOCALE", "ko-KR"),
		Timezone:        getEnv("TIMEZONE", "Asia/Seoul"),
		UserAgent:       getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		ChromePath:      getEnv("CHROME_PATH", ""),
		DebugDir:        getEnv("DEBUG_DIR", ""),
		SubjectID:       getEnv("SUBJECT_ID", ""),
		RefreshSchedule: getEnv("REFRESH_SCHEDULE", ""),
	}

	var err error
	if cfg.Headless, err = getBool("HEADLESS", true); err != nil {
		return nil, err
	}
	if cfg.NavTimeout, err = getDuration("NAV_TIMEOUT", constants.NavigationTimeout); err != nil {
		return nil, err
	}
	if cfg.RetryBaseDelay, err = getDuration("RETRY_BASE_DELAY", constants.DefaultRetryBaseDelay); err != nil {
		return nil, err
	}
	if cfg.MatchLimit, err = getInt("MATCH_LIMIT", constants.DefaultMatchLimit); err != nil {
		return nil, err
	}
	if cfg.RetryAttempts, err = getInt("RETRY_ATTEMPTS", constants.DefaultRetryAttempts); err != nil {
		return nil, err
	}
	if cfg.QueueSize, err = getInt("QUEUE_SIZE", constants.DefaultQueueSize); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("auth_state_path", cfg.AuthStatePath).
		Str("base_url", cfg.BaseURL).
		Str("timezone", cfg.Timezone).
		Bool("headless", cfg.Headless).
		Dur("nav_timeout", cfg.NavTimeout).
		Int("match_limit", cfg.MatchLimit).
		Str("refresh_schedule", cfg.RefreshSchedule).
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) validate() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.Location = loc

	if c.BaseURL == "" {
		return fmt.Errorf("BASE_URL is required")
	}
	if c.MatchLimit <= 0 {
		return fmt.Errorf("MATCH_LIMIT must be positive, got %d", c.MatchLimit)
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("RETRY_ATTEMPTS must be at least 1, got %d", c.RetryAttempts)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("QUEUE_SIZE must be at least 1, got %d", c.QueueSize)
	}
	if c.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(c.RefreshSchedule); err != nil {
			return fmt.Errorf("invalid REFRESH_SCHEDULE %q: %w", c.RefreshSchedule, err)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

var Module = fx.Provide(Load)
