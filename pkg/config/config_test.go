package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8089" {
		t.Errorf("Expected Port to be 8089, got %s", cfg.Port)
	}

	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.MarketData.RequestsPerSec != 5 {
		t.Errorf("Expected MarketData.RequestsPerSec to be 5, got %v", cfg.MarketData.RequestsPerSec)
	}

	if cfg.Redis.Enabled {
		t.Error("Expected Redis to be disabled by default")
	}

	if len(cfg.NSE.ArchiveURLs) != 2 {
		t.Errorf("Expected 2 NSE archive URLs, got %d", len(cfg.NSE.ArchiveURLs))
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("ENV", "production")
	os.Setenv("MARKETDATA_RPS", "2.5")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("SCAN_CONFIG", "configs/scan.yaml")

	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("ENV")
		os.Unsetenv("MARKETDATA_RPS")
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("SCAN_CONFIG")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected Port to be 9000, got %s", cfg.Port)
	}

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}

	if cfg.MarketData.RequestsPerSec != 2.5 {
		t.Errorf("Expected MarketData.RequestsPerSec to be 2.5, got %v", cfg.MarketData.RequestsPerSec)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("Expected LogLevel to be debug, got %s", cfg.LogLevel)
	}

	if cfg.ScanConfigPath != "configs/scan.yaml" {
		t.Errorf("Expected ScanConfigPath to be configs/scan.yaml, got %s", cfg.ScanConfigPath)
	}
}

func TestValidateInvalidEnv(t *testing.T) {
	os.Setenv("ENV", "invalid")
	defer os.Unsetenv("ENV")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when ENV is invalid, got nil")
	}
}

func TestValidateInvalidTimezone(t *testing.T) {
	os.Setenv("MARKET_TIMEZONE", "Mars/Olympus_Mons")
	defer os.Unsetenv("MARKET_TIMEZONE")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when MARKET_TIMEZONE is invalid, got nil")
	}
}

func TestLocation(t *testing.T) {
	cfg := &Config{MarketData: MarketDataConfig{Timezone: "Asia/Kolkata"}}
	if cfg.Location().String() != "Asia/Kolkata" {
		t.Errorf("Expected Asia/Kolkata, got %s", cfg.Location())
	}

	cfg.MarketData.Timezone = "nowhere"
	if cfg.Location() != time.UTC {
		t.Errorf("Expected UTC fallback, got %s", cfg.Location())
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	os.Setenv("TEST_DURATION", "750ms")
	defer os.Unsetenv("TEST_DURATION")

	duration := getEnvAsDuration("TEST_DURATION", "1s")
	if duration != 750*time.Millisecond {
		t.Errorf("Expected duration to be 750ms, got %v", duration)
	}

	os.Setenv("TEST_DURATION", "soon")
	if got := getEnvAsDuration("TEST_DURATION", "1s"); got != time.Second {
		t.Errorf("Expected fallback 1s, got %v", got)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	os.Setenv("TEST_INT", "100")
	defer os.Unsetenv("TEST_INT")

	value := getEnvAsInt("TEST_INT", 50)
	if value != 100 {
		t.Errorf("Expected value to be 100, got %d", value)
	}
}

func TestGetEnvAsFloat(t *testing.T) {
	os.Setenv("TEST_FLOAT", "not-a-number")
	defer os.Unsetenv("TEST_FLOAT")

	value := getEnvAsFloat("TEST_FLOAT", 1.5)
	if value != 1.5 {
		t.Errorf("Expected fallback 1.5, got %v", value)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	os.Setenv("TEST_BOOL", "true")
	defer os.Unsetenv("TEST_BOOL")

	value := getEnvAsBool("TEST_BOOL", false)
	if value != true {
		t.Errorf("Expected value to be true, got %v", value)
	}
}
