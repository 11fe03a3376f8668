package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"STRIKE_CREDIT_CAP", "STRIKE_MAX_COMBINATIONS", "STRIKE_TIMEOUT", "STRIKE_TIE_EPSILON",
		"TRANSCRIPT_THESIS_CREDITS", "TRANSCRIPT_WEIGHTS_FILE", "TRANSCRIPT_STRICT_LAYOUT",
		"WEIGHTS_FUZZY_DISTANCE", "LOG_LEVEL", "LOG_FORMAT", "METRICS_ENABLED",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30.0, cfg.Strike.CreditCap)
	assert.Zero(t, cfg.Strike.MaxCombinations)
	assert.Zero(t, cfg.Strike.Timeout)
	assert.Equal(t, 1e-9, cfg.Strike.TieEpsilon)
	assert.Equal(t, 15.0, cfg.Transcript.ThesisCredits)
	assert.Empty(t, cfg.Transcript.WeightsFile)
	assert.False(t, cfg.Transcript.StrictLayout)
	assert.Equal(t, 3, cfg.Transcript.WeightFuzzyDistance)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.False(t, cfg.Observability.MetricsEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STRIKE_CREDIT_CAP", "22.5")
	t.Setenv("STRIKE_MAX_COMBINATIONS", "1000")
	t.Setenv("STRIKE_TIMEOUT", "2s")
	t.Setenv("TRANSCRIPT_STRICT_LAYOUT", "true")
	t.Setenv("TRANSCRIPT_WEIGHTS_FILE", "weights.csv")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("METRICS_ENABLED", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 22.5, cfg.Strike.CreditCap)
	assert.Equal(t, uint64(1000), cfg.Strike.MaxCombinations)
	assert.Equal(t, 2*time.Second, cfg.Strike.Timeout)
	assert.True(t, cfg.Transcript.StrictLayout)
	assert.Equal(t, "weights.csv", cfg.Transcript.WeightsFile)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Observability.MetricsEnabled)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("STRIKE_CREDIT_CAP", "thirty")
	t.Setenv("STRIKE_TIMEOUT", "soon")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30.0, cfg.Strike.CreditCap)
	assert.Zero(t, cfg.Strike.Timeout)
}

func TestLoad_MaxCombinationsMustBeUnsigned(t *testing.T) {
	for _, value := range []string{"-1", "many", "1.5"} {
		t.Run(value, func(t *testing.T) {
			t.Setenv("STRIKE_MAX_COMBINATIONS", value)

			cfg, err := Load()
			assert.Nil(t, cfg)
			assert.ErrorContains(t, err, "STRIKE_MAX_COMBINATIONS must be a non-negative integer")
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Strike:     StrikeConfig{CreditCap: 30, TieEpsilon: 1e-9},
			Transcript: TranscriptConfig{ThesisCredits: 15},
			Logging:    LoggingConfig{Level: "info", Format: "text"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"negative cap", func(c *Config) { c.Strike.CreditCap = -1 }, "STRIKE_CREDIT_CAP"},
		{"negative epsilon", func(c *Config) { c.Strike.TieEpsilon = -1 }, "STRIKE_TIE_EPSILON"},
		{"negative timeout", func(c *Config) { c.Strike.Timeout = -time.Second }, "STRIKE_TIMEOUT"},
		{"negative thesis credits", func(c *Config) { c.Transcript.ThesisCredits = -15 }, "TRANSCRIPT_THESIS_CREDITS"},
		{"unknown level", func(c *Config) { c.Logging.Level = "trace" }, "LOG_LEVEL"},
		{"unknown format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	require.NoError(t, valid().Validate())

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tc.want)
		})
	}
}
