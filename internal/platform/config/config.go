package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile              = ".env"
	defaultPort                 = "8080"
	defaultReadTimeout          = 15 * time.Second
	defaultWriteTimeout         = 30 * time.Second
	defaultIdleTimeout          = 120 * time.Second
	defaultSessionIssuer        = "quickbasket"
	defaultSessionTTL           = 24 * time.Hour
	defaultMarketplaceTimeout   = 8 * time.Second
	defaultMarketplaceRate      = 5
	defaultMarketplaceBurst     = 10
	defaultAggregationSourceDir = "data/sources"
	defaultAggregationReports   = "data/reports"
	defaultAggregationWorkers   = 4
	defaultSchedulerSpec        = "@every 1h"
	defaultIdempotencyHeader    = "Idempotency-Key"
	defaultIdempotencyTTL       = 24 * time.Hour
	defaultIdempotencyInterval  = time.Hour
	defaultIdempotencyBatchSize = 200
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server      ServerConfig
	Session     SessionConfig
	Marketplace MarketplaceConfig
	Aggregation AggregationConfig
	Scheduler   SchedulerConfig
	Idempotency IdempotencyConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// SessionConfig controls session token issuance.
type SessionConfig struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

// MarketplaceConfig points at the external price comparison source.
type MarketplaceConfig struct {
	BaseURL       string
	FetchTimeout  time.Duration
	RatePerSecond float64
	RateBurst     int
}

// AggregationConfig locates the ingestion inputs and report outputs.
type AggregationConfig struct {
	SourceDir  string
	ReportsDir string
	Workers    int
}

// SchedulerConfig controls the periodic aggregation refresh.
type SchedulerConfig struct {
	Enabled  bool
	CronSpec string
}

// IdempotencyConfig controls idempotency middleware behaviour.
type IdempotencyConfig struct {
	Header           string
	TTL              time.Duration
	CleanupInterval  time.Duration
	CleanupBatchSize int
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env overrides,
// and environment variables.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}

	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "API_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "API_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "API_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "API_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Session: SessionConfig{
			Secret:   stringWithDefault(lookup, "API_SESSION_SECRET", ""),
			Issuer:   stringWithDefault(lookup, "API_SESSION_ISSUER", defaultSessionIssuer),
			TokenTTL: durationWithDefault(lookup, "API_SESSION_TOKEN_TTL", defaultSessionTTL),
		},
		Marketplace: MarketplaceConfig{
			BaseURL:       stringWithDefault(lookup, "API_MARKETPLACE_BASE_URL", ""),
			FetchTimeout:  durationWithDefault(lookup, "API_MARKETPLACE_FETCH_TIMEOUT", defaultMarketplaceTimeout),
			RatePerSecond: floatWithDefault(lookup, "API_MARKETPLACE_RATE_PER_SECOND", defaultMarketplaceRate),
			RateBurst:     intWithDefault(lookup, "API_MARKETPLACE_RATE_BURST", defaultMarketplaceBurst),
		},
		Aggregation: AggregationConfig{
			SourceDir:  stringWithDefault(lookup, "API_AGGREGATION_SOURCE_DIR", defaultAggregationSourceDir),
			ReportsDir: stringWithDefault(lookup, "API_AGGREGATION_REPORTS_DIR", defaultAggregationReports),
			Workers:    intWithDefault(lookup, "API_AGGREGATION_WORKERS", defaultAggregationWorkers),
		},
		Scheduler: SchedulerConfig{
			Enabled:  boolWithDefault(lookup, "API_SCHEDULER_ENABLED", true),
			CronSpec: stringWithDefault(lookup, "API_SCHEDULER_CRON_SPEC", defaultSchedulerSpec),
		},
		Idempotency: IdempotencyConfig{
			Header:           stringWithDefault(lookup, "API_IDEMPOTENCY_HEADER", defaultIdempotencyHeader),
			TTL:              durationWithDefault(lookup, "API_IDEMPOTENCY_TTL", defaultIdempotencyTTL),
			CleanupInterval:  durationWithDefault(lookup, "API_IDEMPOTENCY_CLEANUP_INTERVAL", defaultIdempotencyInterval),
			CleanupBatchSize: intWithDefault(lookup, "API_IDEMPOTENCY_CLEANUP_BATCH", defaultIdempotencyBatchSize),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if strings.TrimSpace(cfg.Session.Secret) == "" {
		missing = append(missing, "Session.Secret")
	}
	if cfg.Session.TokenTTL <= 0 {
		missing = append(missing, "Session.TokenTTL")
	}
	if cfg.Marketplace.FetchTimeout <= 0 {
		missing = append(missing, "Marketplace.FetchTimeout")
	}
	if strings.TrimSpace(cfg.Aggregation.SourceDir) == "" {
		missing = append(missing, "Aggregation.SourceDir")
	}
	if strings.TrimSpace(cfg.Aggregation.ReportsDir) == "" {
		missing = append(missing, "Aggregation.ReportsDir")
	}
	if cfg.Aggregation.Workers <= 0 {
		missing = append(missing, "Aggregation.Workers")
	}
	if cfg.Scheduler.Enabled && strings.TrimSpace(cfg.Scheduler.CronSpec) == "" {
		missing = append(missing, "Scheduler.CronSpec")
	}
	if strings.TrimSpace(cfg.Idempotency.Header) == "" {
		missing = append(missing, "Idempotency.Header")
	}
	if cfg.Idempotency.TTL <= 0 {
		missing = append(missing, "Idempotency.TTL")
	}
	if cfg.Idempotency.CleanupInterval <= 0 {
		missing = append(missing, "Idempotency.CleanupInterval")
	}
	if cfg.Idempotency.CleanupBatchSize <= 0 {
		missing = append(missing, "Idempotency.CleanupBatchSize")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		value = strings.Trim(value, "\"'")
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func floatWithDefault(lookup func(string) (string, bool), key string, fallback float64) float64 {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
