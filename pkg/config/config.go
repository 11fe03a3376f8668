package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Strike        StrikeConfig
	Transcript    TranscriptConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
}

type StrikeConfig struct {
	CreditCap       float64
	MaxCombinations uint64
	Timeout         time.Duration
	TieEpsilon      float64
}

type TranscriptConfig struct {
	ThesisCredits       float64
	WeightsFile         string
	StrictLayout        bool
	WeightFuzzyDistance int
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	maxCombinations, err := getEnvAsUint("STRIKE_MAX_COMBINATIONS", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Strike: StrikeConfig{
			CreditCap:       getEnvAsFloat("STRIKE_CREDIT_CAP", 30),
			MaxCombinations: maxCombinations,
			Timeout:         getEnvAsDuration("STRIKE_TIMEOUT", 0),
			TieEpsilon:      getEnvAsFloat("STRIKE_TIE_EPSILON", 1e-9),
		},
		Transcript: TranscriptConfig{
			ThesisCredits:       getEnvAsFloat("TRANSCRIPT_THESIS_CREDITS", 15),
			WeightsFile:         getEnv("TRANSCRIPT_WEIGHTS_FILE", ""),
			StrictLayout:        getEnvAsBool("TRANSCRIPT_STRICT_LAYOUT", false),
			WeightFuzzyDistance: getEnvAsInt("WEIGHTS_FUZZY_DISTANCE", 3),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects values the search cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if c.Strike.CreditCap < 0 {
		errs = append(errs, fmt.Errorf("STRIKE_CREDIT_CAP must not be negative, got %v", c.Strike.CreditCap))
	}
	if c.Strike.TieEpsilon < 0 {
		errs = append(errs, fmt.Errorf("STRIKE_TIE_EPSILON must not be negative, got %v", c.Strike.TieEpsilon))
	}
	if c.Strike.Timeout < 0 {
		errs = append(errs, fmt.Errorf("STRIKE_TIMEOUT must not be negative, got %v", c.Strike.Timeout))
	}
	if c.Transcript.ThesisCredits < 0 {
		errs = append(errs, fmt.Errorf("TRANSCRIPT_THESIS_CREDITS must not be negative, got %v", c.Transcript.ThesisCredits))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q is not text or json", c.Logging.Format))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsUint fails on a set value that is not a non-negative integer, so a
// negative limit never wraps around to an unlimited one.
func getEnvAsUint(key string, defaultValue uint64) (uint64, error) {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, valueStr)
	}
	return value, nil
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
