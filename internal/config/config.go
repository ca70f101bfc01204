// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/rankeval/rank-eval/internal/pkg/security"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	Host string `envconfig:"RANKEVAL_HOST" yaml:"host"`
	Port int    `envconfig:"RANKEVAL_PORT" yaml:"port"`

	// Metrics configuration
	Metrics MetricsConfig `yaml:"metrics"`

	// History configuration
	History HistoryConfig `yaml:"history"`

	// Bus configuration
	Bus BusConfig `yaml:"bus"`

	// Logging configuration
	Log LogConfig `yaml:"log"`

	// Security configuration
	Security SecurityConfig `yaml:"security"`
}

// MetricsConfig holds metric computation settings.
type MetricsConfig struct {
	DatasetName  string `envconfig:"RANKEVAL_DATASET_NAME" yaml:"dataset_name"`
	BleuMaxOrder int    `envconfig:"RANKEVAL_BLEU_MAX_ORDER" yaml:"bleu_max_order"`
	BleuSmooth   bool   `envconfig:"RANKEVAL_BLEU_SMOOTH" yaml:"bleu_smooth"`
	IncludeBleu  bool   `envconfig:"RANKEVAL_INCLUDE_BLEU" yaml:"include_bleu"`
	RetrievalKs  []int  `envconfig:"RANKEVAL_RETRIEVAL_KS" yaml:"retrieval_ks"`
}

// HistoryConfig holds run history storage settings.
type HistoryConfig struct {
	Type     string `envconfig:"RANKEVAL_HISTORY_TYPE" yaml:"type"`
	MaxRuns  int    `envconfig:"RANKEVAL_HISTORY_MAX_RUNS" yaml:"max_runs"`
	RedisURL string `envconfig:"RANKEVAL_REDIS_URL" yaml:"redis_url"`
	TTLHours int    `envconfig:"RANKEVAL_HISTORY_TTL_HOURS" yaml:"ttl_hours"` // 0 = no expiry
}

// BusConfig holds event bus settings.
type BusConfig struct {
	Type         string `envconfig:"RANKEVAL_BUS_TYPE" yaml:"type"`
	KafkaBrokers string `envconfig:"RANKEVAL_KAFKA_BROKERS" yaml:"kafka_brokers"`
	KafkaGroup   string `envconfig:"RANKEVAL_KAFKA_GROUP" yaml:"kafka_group"`
	EventLog     string `envconfig:"RANKEVAL_BUS_EVENT_LOG" yaml:"event_log"` // empty = disabled
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"RANKEVAL_LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"RANKEVAL_LOG_FORMAT" yaml:"format"`
}

// SecurityConfig holds security settings.
type SecurityConfig struct {
	RateLimit int `envconfig:"RANKEVAL_RATE_LIMIT" yaml:"rate_limit"` // 0 = disabled
}

// Load loads configuration from environment variables and optional config file.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Set defaults first
	setDefaults(cfg)

	// Load from YAML file if provided (overrides defaults)
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// Override with environment variables (highest priority)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func setDefaults(cfg *Config) {
	cfg.Host = "0.0.0.0"
	cfg.Port = 8080

	cfg.Metrics = MetricsConfig{
		DatasetName:  "default",
		BleuMaxOrder: 4,
		RetrievalKs:  []int{1, 5, 10, 20, 50, 100},
	}

	cfg.History = HistoryConfig{
		Type:     "memory",
		MaxRuns:  100,
		RedisURL: "redis://localhost:6379",
		TTLHours: 0,
	}

	cfg.Bus = BusConfig{
		Type:       "memory",
		KafkaGroup: "rank-eval",
	}

	cfg.Log = LogConfig{
		Level:  "info",
		Format: "text",
	}

	cfg.Security = SecurityConfig{
		RateLimit: 0,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, "port must be between 1 and 65535")
	}

	// Metrics validation
	if err := security.ValidateDatasetName(c.Metrics.DatasetName); err != nil {
		errs = append(errs, err.Error())
	}

	if c.Metrics.BleuMaxOrder < 1 {
		errs = append(errs, "bleu_max_order must be at least 1")
	}

	for _, k := range c.Metrics.RetrievalKs {
		if k < 1 {
			errs = append(errs, fmt.Sprintf("retrieval cutoff must be positive, got %d", k))
			break
		}
	}

	// History validation
	validHistoryTypes := map[string]bool{"memory": true, "redis": true}
	if !validHistoryTypes[c.History.Type] {
		errs = append(errs, fmt.Sprintf("invalid history type: %s (must be memory or redis)", c.History.Type))
	}

	if c.History.MaxRuns < 1 {
		errs = append(errs, "max_runs must be positive")
	}

	if c.History.Type == "redis" && c.History.RedisURL == "" {
		errs = append(errs, "redis_url is required when history type is redis")
	}

	// Bus validation
	validBusTypes := map[string]bool{"memory": true, "kafka": true}
	if !validBusTypes[c.Bus.Type] {
		errs = append(errs, fmt.Sprintf("invalid bus type: %s (must be memory or kafka)", c.Bus.Type))
	}

	if c.Bus.Type == "kafka" && c.Bus.KafkaBrokers == "" {
		errs = append(errs, "kafka_brokers is required when bus type is kafka")
	}

	// Log validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be text or json)", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Address returns the server address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Log.Level == "debug"
}
