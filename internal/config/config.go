package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime configuration for the fake alertmanager.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Events    EventsConfig    `mapstructure:"events"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// GeneratorConfig drives the synthetic workload cadence. Probabilities are
// evaluated once per tick (or once per alert for promote_probability).
type GeneratorConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	Interval           time.Duration `mapstructure:"interval"`
	CreateProbability  float64       `mapstructure:"create_probability"`
	PromoteProbability float64       `mapstructure:"promote_probability"`
	DropProbability    float64       `mapstructure:"drop_probability"`
	ResolveInterval    time.Duration `mapstructure:"resolve_interval"`
	ResolveMinFraction float64       `mapstructure:"resolve_min_fraction"`
	ResolveMaxFraction float64       `mapstructure:"resolve_max_fraction"`
	Retention          time.Duration `mapstructure:"retention"`
	MaxAlerts          int           `mapstructure:"max_alerts"`
	SeedAlerts         int           `mapstructure:"seed_alerts"`
	SeedSilences       int           `mapstructure:"seed_silences"`
	Seed               int64         `mapstructure:"seed"`
}

type EventsConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BufferSize   int           `mapstructure:"buffer_size"`
	Workers      int           `mapstructure:"workers"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	PoolSize     int           `mapstructure:"pool_size"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	RequiredAcks int           `mapstructure:"required_acks"`
	Compression  string        `mapstructure:"compression"`
}

// Enabled reports whether an event stream is configured.
func (e EventsConfig) Enabled() bool {
	return len(e.Brokers) > 0
}

// Default returns a sensible default config for local dev.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":9093",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Logging: LoggingConfig{Level: "info"},
		Generator: GeneratorConfig{
			Enabled:            true,
			Interval:           15 * time.Second,
			CreateProbability:  0.4,
			PromoteProbability: 0.1,
			DropProbability:    0.05,
			ResolveInterval:    30 * time.Second,
			ResolveMinFraction: 0.3,
			ResolveMaxFraction: 0.5,
			Retention:          5 * time.Minute,
			MaxAlerts:          100,
			SeedAlerts:         10,
			SeedSilences:       3,
		},
		Events: EventsConfig{
			Topic:        "fakeam.events",
			BufferSize:   1000,
			Workers:      2,
			BatchSize:    100,
			BatchTimeout: 100 * time.Millisecond,
			PoolSize:     2,
			WriteTimeout: 10 * time.Second,
			MaxRetries:   3,
			RetryBackoff: 100 * time.Millisecond,
			RequiredAcks: 1,
			Compression:  "snappy",
		},
	}
}

// Load reads configuration from an optional YAML file and FAKEAM_*
// environment variables, layered over the defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FAKEAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Default()
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file is fine; defaults and env apply.
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", cfg.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", cfg.Server.IdleTimeout)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("generator.enabled", cfg.Generator.Enabled)
	v.SetDefault("generator.interval", cfg.Generator.Interval)
	v.SetDefault("generator.create_probability", cfg.Generator.CreateProbability)
	v.SetDefault("generator.promote_probability", cfg.Generator.PromoteProbability)
	v.SetDefault("generator.drop_probability", cfg.Generator.DropProbability)
	v.SetDefault("generator.resolve_interval", cfg.Generator.ResolveInterval)
	v.SetDefault("generator.resolve_min_fraction", cfg.Generator.ResolveMinFraction)
	v.SetDefault("generator.resolve_max_fraction", cfg.Generator.ResolveMaxFraction)
	v.SetDefault("generator.retention", cfg.Generator.Retention)
	v.SetDefault("generator.max_alerts", cfg.Generator.MaxAlerts)
	v.SetDefault("generator.seed_alerts", cfg.Generator.SeedAlerts)
	v.SetDefault("generator.seed_silences", cfg.Generator.SeedSilences)
	v.SetDefault("generator.seed", cfg.Generator.Seed)
	v.SetDefault("events.brokers", cfg.Events.Brokers)
	v.SetDefault("events.topic", cfg.Events.Topic)
	v.SetDefault("events.buffer_size", cfg.Events.BufferSize)
	v.SetDefault("events.workers", cfg.Events.Workers)
	v.SetDefault("events.batch_size", cfg.Events.BatchSize)
	v.SetDefault("events.batch_timeout", cfg.Events.BatchTimeout)
	v.SetDefault("events.pool_size", cfg.Events.PoolSize)
	v.SetDefault("events.write_timeout", cfg.Events.WriteTimeout)
	v.SetDefault("events.max_retries", cfg.Events.MaxRetries)
	v.SetDefault("events.retry_backoff", cfg.Events.RetryBackoff)
	v.SetDefault("events.required_acks", cfg.Events.RequiredAcks)
	v.SetDefault("events.compression", cfg.Events.Compression)
}
