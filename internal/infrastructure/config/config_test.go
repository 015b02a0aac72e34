package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudshield/fraud-analyzer/internal/infrastructure/config"
)

func noEnvFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MODEL_PATH", "")
	os.Unsetenv("MODEL_PATH")

	cfg, err := config.Load(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultModelPath, cfg.ModelPath)
	assert.Equal(t, ":8000", cfg.HTTPAddress())
	assert.Equal(t, ":8088", cfg.GRPCAddress())
	assert.Equal(t, 30*time.Second, cfg.ModelLoadTimeout)
	assert.Equal(t, "fraud.alerts", cfg.AlertTopic)
	assert.Zero(t, cfg.RateLimit)
	assert.True(t, cfg.OTLPInsecure)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("MODEL_PATH", "gs://models/fraud/model.json.gz")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("MODEL_LOAD_TIMEOUT", "5s")
	t.Setenv("RATE_LIMIT", "12.5")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("GRPC_REFLECTION", "true")

	cfg, err := config.Load(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "gs://models/fraud/model.json.gz", cfg.ModelPath)
	assert.Equal(t, ":9000", cfg.HTTPAddress())
	assert.Equal(t, 5*time.Second, cfg.ModelLoadTimeout)
	assert.Equal(t, 12.5, cfg.RateLimit)
	assert.True(t, cfg.AlertsEnabled())
	assert.True(t, cfg.GRPCReflection)
}

func TestLoad_EnvFileDoesNotOverride(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("LOG_LEVEL=debug\nALERT_TOPIC=from-file\n"), 0o600))
	t.Setenv("ALERT_TOPIC", "from-env")
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOG_LEVEL")
	t.Cleanup(func() { os.Unsetenv("LOG_LEVEL") })

	cfg, err := config.Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "from-env", cfg.AlertTopic)
}

func TestLoad_ReportsAllMalformedValues(t *testing.T) {
	t.Setenv("MODEL_LOAD_TIMEOUT", "soon")
	t.Setenv("RATE_LIMIT", "fast")
	t.Setenv("GRPC_REFLECTION", "maybe")

	_, err := config.Load(noEnvFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MODEL_LOAD_TIMEOUT")
	assert.Contains(t, err.Error(), "RATE_LIMIT")
	assert.Contains(t, err.Error(), "GRPC_REFLECTION")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			ModelPath:        "/app/model.json",
			HTTPPort:         "8000",
			GRPCPort:         "8088",
			LogLevel:         "info",
			LogFormat:        "json",
			ModelLoadTimeout: time.Second,
			RateBurst:        1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"valid", func(*config.Config) {}, ""},
		{"empty model path", func(c *config.Config) { c.ModelPath = " " }, "MODEL_PATH"},
		{"bad http port", func(c *config.Config) { c.HTTPPort = "http" }, "HTTP_PORT"},
		{"zero load timeout", func(c *config.Config) { c.ModelLoadTimeout = 0 }, "MODEL_LOAD_TIMEOUT"},
		{"negative rate", func(c *config.Config) { c.RateLimit = -1 }, "RATE_LIMIT"},
		{"rate without burst", func(c *config.Config) { c.RateLimit = 5; c.RateBurst = 0 }, "RATE_BURST"},
		{"unknown log level", func(c *config.Config) { c.LogLevel = "chatty" }, "LOG_LEVEL"},
		{"unknown log format", func(c *config.Config) { c.LogFormat = "logfmt" }, "LOG_FORMAT"},
		{"cert without key", func(c *config.Config) { c.GRPCTLSCertFile = "server.pem" }, "GRPC_TLS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
