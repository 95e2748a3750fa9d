package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"host":         "service.host",
	"port":         "service.port",
	"metrics-addr": "service.metrics_addr",
	"data-dir":     "service.data_dir",
	"log-level":    "log.level",
	"log-format":   "log.format",
}

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
// flags may be nil; only flags the user actually set override lower layers.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*ServiceConfig, error) {
	v := viper.New()

	d := DefaultServiceConfig()
	v.SetDefault("service.host", d.Host)
	v.SetDefault("service.port", d.Port)
	v.SetDefault("service.metrics_addr", d.MetricsAddr)
	v.SetDefault("service.max_connections", d.MaxConnections)
	v.SetDefault("service.request_timeout", d.RequestTimeout.String())
	v.SetDefault("service.max_batch_size", d.MaxBatchSize)
	v.SetDefault("service.max_record_bytes", d.MaxRecordBytes)
	v.SetDefault("service.data_dir", d.DataDir)
	v.SetDefault("log.level", d.LogLevel)
	v.SetDefault("log.format", d.LogFormat)

	// BK_SERVICE_PORT, BK_LOG_LEVEL, ...
	v.SetEnvPrefix("BK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets are environment-only.
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &ServiceConfig{
		Host:           v.GetString("service.host"),
		Port:           v.GetInt("service.port"),
		MetricsAddr:    v.GetString("service.metrics_addr"),
		MaxConnections: v.GetInt("service.max_connections"),
		RequestTimeout: v.GetDuration("service.request_timeout"),
		MaxBatchSize:   v.GetInt("service.max_batch_size"),
		MaxRecordBytes: v.GetInt("service.max_record_bytes"),
		DataDir:        v.GetString("service.data_dir"),
		LogLevel:       v.GetString("log.level"),
		LogFormat:      v.GetString("log.format"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks port range and positive limits.
func validateConfig(cfg *ServiceConfig) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.MaxConnections <= 0 {
		return fmt.Errorf("max_connections must be positive, got %d", cfg.MaxConnections)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.RequestTimeout)
	}
	if cfg.MaxBatchSize <= 0 {
		return fmt.Errorf("max_batch_size must be positive, got %d", cfg.MaxBatchSize)
	}
	if cfg.MaxRecordBytes <= 0 {
		return fmt.Errorf("max_record_bytes must be positive, got %d", cfg.MaxRecordBytes)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", cfg.LogFormat)
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only secrets (12-factor principle).
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.InConfig("hmac_secret") || v.InConfig("service.hmac_secret") {
		return fmt.Errorf("HMAC secrets not allowed in config files (use BK_HMAC_SECRET environment variable)")
	}
	return nil
}
