package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the scanner process
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Redis
	Redis RedisConfig

	// External APIs
	MarketData MarketDataConfig
	NSE        NSEConfig

	// Scan
	ScanConfigPath string // YAML scan settings (empty = built-in defaults)
	ScanSchedule   string // cron expression with seconds, used by `serve`

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// MarketDataConfig holds the daily-bar provider configuration
type MarketDataConfig struct {
	BaseURL        string
	Timezone       string        // exchange-local zone used for bar dates
	Timeout        time.Duration // per HTTP request
	RequestsPerSec float64       // in-process token bucket
	Burst          int
	SharedLimit    int // requests per second across processes (Redis), 0 = off
}

// NSEConfig holds NSE website configuration
type NSEConfig struct {
	BaseURL     string
	ArchiveURLs []string // symbol master mirrors, tried in order
	Timeout     time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		MarketData: MarketDataConfig{
			BaseURL:        getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			Timezone:       getEnv("MARKET_TIMEZONE", "Asia/Kolkata"),
			Timeout:        getEnvAsDuration("HTTP_TIMEOUT", "20s"),
			RequestsPerSec: getEnvAsFloat("MARKETDATA_RPS", 5),
			Burst:          getEnvAsInt("MARKETDATA_BURST", 5),
			SharedLimit:    getEnvAsInt("MARKETDATA_SHARED_LIMIT", 0),
		},

		NSE: NSEConfig{
			BaseURL: getEnv("NSE_BASE_URL", "https://www.nseindia.com"),
			ArchiveURLs: []string{
				getEnv("NSE_ARCHIVE_URL", "https://archives.nseindia.com/content/equities/EQUITY_L.csv"),
				getEnv("NSE_ARCHIVE_MIRROR_URL", "https://nsearchives.nseindia.com/content/equities/EQUITY_L.csv"),
			},
			Timeout: getEnvAsDuration("NSE_TIMEOUT", "20s"),
		},

		ScanConfigPath: getEnv("SCAN_CONFIG", ""),
		ScanSchedule:   getEnv("SCAN_SCHEDULE", "0 45 15 * * 1-5"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.MarketData.BaseURL == "" {
		return fmt.Errorf("YAHOO_BASE_URL is required")
	}

	if c.MarketData.RequestsPerSec <= 0 {
		return fmt.Errorf("MARKETDATA_RPS must be positive")
	}

	if _, err := time.LoadLocation(c.MarketData.Timezone); err != nil {
		return fmt.Errorf("MARKET_TIMEZONE: %w", err)
	}

	return nil
}

// Location returns the exchange-local time zone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.MarketData.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
