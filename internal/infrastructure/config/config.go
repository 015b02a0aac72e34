package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/fraudshield/fraud-analyzer/pkg/observability"
)

// DefaultModelPath is where the service looks for its artifact when MODEL_PATH is unset.
const DefaultModelPath = "/app/model.json"

// Config holds all configuration for the fraud analyzer.
type Config struct {
	ModelPath          string
	GCSCredentialsFile string
	HTTPPort           string
	GRPCPort           string
	Environment        string
	LogLevel           string
	LogFormat          string

	KafkaBrokers       string
	KafkaClientID      string
	KafkaSASLMechanism string
	KafkaSASLUsername  string
	KafkaSASLPassword  string
	AlertTopic         string

	OTLPEndpoint string

	GRPCTLSCertFile string
	GRPCTLSKeyFile  string

	ModelLoadTimeout  time.Duration
	KafkaWriteTimeout time.Duration
	ShutdownTimeout   time.Duration
	RateLimit         float64
	RateBurst         int

	KafkaTLS       bool
	OTLPInsecure   bool
	GRPCReflection bool
}

// Load reads configuration from environment variables with sensible defaults.
// Variables from envFiles (".env" when none are given) fill in anything not
// already set in the environment; a missing file is not an error.
func Load(envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	p := &parser{}
	cfg := &Config{
		ModelPath:          getEnv("MODEL_PATH", DefaultModelPath),
		GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		HTTPPort:           getEnv("HTTP_PORT", "8000"),
		GRPCPort:           getEnv("GRPC_PORT", "8088"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),

		KafkaBrokers:       getEnv("KAFKA_BROKERS", ""),
		KafkaClientID:      getEnv("KAFKA_CLIENT_ID", "fraud-analyzer"),
		KafkaSASLMechanism: getEnv("KAFKA_SASL_MECHANISM", ""),
		KafkaSASLUsername:  getEnv("KAFKA_SASL_USERNAME", ""),
		KafkaSASLPassword:  getEnv("KAFKA_SASL_PASSWORD", ""),
		AlertTopic:         getEnv("ALERT_TOPIC", "fraud.alerts"),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		GRPCTLSCertFile: getEnv("GRPC_TLS_CERT_FILE", ""),
		GRPCTLSKeyFile:  getEnv("GRPC_TLS_KEY_FILE", ""),

		ModelLoadTimeout:  p.duration("MODEL_LOAD_TIMEOUT", 30*time.Second),
		KafkaWriteTimeout: p.duration("KAFKA_WRITE_TIMEOUT", 5*time.Second),
		ShutdownTimeout:   p.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		RateLimit:         p.float("RATE_LIMIT", 0),
		RateBurst:         p.int("RATE_BURST", 20),

		KafkaTLS:       p.bool("KAFKA_TLS", false),
		OTLPInsecure:   p.bool("OTEL_EXPORTER_OTLP_INSECURE", true),
		GRPCReflection: p.bool("GRPC_REFLECTION", false),
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.ModelPath) == "" {
		errs = append(errs, errors.New("MODEL_PATH must not be empty"))
	}
	if _, err := strconv.Atoi(c.HTTPPort); err != nil {
		errs = append(errs, fmt.Errorf("HTTP_PORT: %q is not a port number", c.HTTPPort))
	}
	if _, err := strconv.Atoi(c.GRPCPort); err != nil {
		errs = append(errs, fmt.Errorf("GRPC_PORT: %q is not a port number", c.GRPCPort))
	}
	if _, err := observability.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if !observability.ValidFormat(c.LogFormat) {
		errs = append(errs, fmt.Errorf("LOG_FORMAT: %q is not json or text", c.LogFormat))
	}
	if c.ModelLoadTimeout <= 0 {
		errs = append(errs, errors.New("MODEL_LOAD_TIMEOUT must be positive"))
	}
	if c.RateLimit < 0 {
		errs = append(errs, errors.New("RATE_LIMIT must not be negative"))
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		errs = append(errs, errors.New("RATE_BURST must be at least 1 when RATE_LIMIT is set"))
	}
	if (c.GRPCTLSCertFile == "") != (c.GRPCTLSKeyFile == "") {
		errs = append(errs, errors.New("GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE must be set together"))
	}
	return errors.Join(errs...)
}

// GRPCAddress returns the full gRPC listen address.
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf(":%s", c.GRPCPort)
}

// HTTPAddress returns the full HTTP listen address.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.HTTPPort)
}

// AlertsEnabled reports whether fraud alerts go to Kafka rather than the log.
func (c *Config) AlertsEnabled() bool {
	return strings.TrimSpace(c.KafkaBrokers) != ""
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", f, err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// parser collects every malformed value instead of stopping at the first.
type parser struct {
	errs []error
}

func (p *parser) int(key string, defaultValue int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not an integer", key, raw))
		return defaultValue
	}
	return v
}

func (p *parser) float(key string, defaultValue float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a number", key, raw))
		return defaultValue
	}
	return v
}

func (p *parser) bool(key string, defaultValue bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a boolean", key, raw))
		return defaultValue
	}
	return v
}

func (p *parser) duration(key string, defaultValue time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a duration", key, raw))
		return defaultValue
	}
	return v
}
