package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Purchase  PurchaseConfig  `mapstructure:"purchase"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type ValkeyConfig struct {
	Addr    string `mapstructure:"addr"`
	Enabled bool   `mapstructure:"enabled"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// PurchaseConfig tunes the purchase wizard.
type PurchaseConfig struct {
	SettlementDelay   time.Duration `mapstructure:"settlement_delay"`
	TransactionPrefix string        `mapstructure:"transaction_prefix"`
	MaxFlows          int           `mapstructure:"max_flows"`
	FlowIdleTimeout   time.Duration `mapstructure:"flow_idle_timeout"`
	DefaultLocale     string        `mapstructure:"default_locale"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", true)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.enabled", true)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("purchase.settlement_delay", "2s")
	v.SetDefault("purchase.transaction_prefix", "METRO-")
	v.SetDefault("purchase.max_flows", 10000)
	v.SetDefault("purchase.flow_idle_timeout", "30m")
	v.SetDefault("purchase.default_locale", "vi")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: METROPASS_PURCHASE_SETTLEMENT_DELAY → purchase.settlement_delay
	v.SetEnvPrefix("METROPASS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Purchase.SettlementDelay <= 0 {
		errs = append(errs, fmt.Sprintf("purchase.settlement_delay must be positive, got %s", c.Purchase.SettlementDelay))
	}
	if c.Purchase.TransactionPrefix == "" {
		errs = append(errs, "purchase.transaction_prefix is required")
	}
	if c.Purchase.MaxFlows < 0 {
		errs = append(errs, "purchase.max_flows must not be negative")
	}
	if c.Purchase.FlowIdleTimeout < 0 {
		errs = append(errs, "purchase.flow_idle_timeout must not be negative")
	}
	switch c.Purchase.DefaultLocale {
	case "vi", "en":
	default:
		errs = append(errs, fmt.Sprintf("purchase.default_locale must be vi or en, got %q", c.Purchase.DefaultLocale))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
