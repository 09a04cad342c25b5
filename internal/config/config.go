// internal/config/config.go - YAML configuration with environment overrides
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Prometheus PrometheusConfig `yaml:"prometheus"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type DatabaseConfig struct {
	Path             string        `yaml:"path"`
	HistoryRetention time.Duration `yaml:"history_retention"`
}

type MonitoringConfig struct {
	Interval            time.Duration `yaml:"interval"`
	StatsTime           string        `yaml:"stats_time"`
	Workers             int           `yaml:"workers"`
	PingTimeout         time.Duration `yaml:"ping_timeout"`
	PortTimeout         time.Duration `yaml:"port_timeout"`
	WarningThresholdMS  float64       `yaml:"warning_threshold_ms"`
	CriticalThresholdMS float64       `yaml:"critical_threshold_ms"`
}

type PrometheusConfig struct {
	Enabled     bool   `yaml:"enabled"`
	MetricsPath string `yaml:"metrics_path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the YAML file, applies defaults and environment
// overrides, and validates the result. A missing file is not an
// error; the defaults then stand alone.
func Load(filename string) (*Config, error) {
	config := &Config{}

	data, err := os.ReadFile(filename)
	if err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	setDefaults(config)
	applyEnvOverrides(config)

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15 * time.Second
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "./data/netwatch.db"
	}
	if cfg.Database.HistoryRetention == 0 {
		cfg.Database.HistoryRetention = 90 * 24 * time.Hour
	}

	if cfg.Monitoring.Interval == 0 {
		cfg.Monitoring.Interval = 5 * time.Minute
	}
	if cfg.Monitoring.StatsTime == "" {
		cfg.Monitoring.StatsTime = "00:00"
	}
	if cfg.Monitoring.Workers == 0 {
		cfg.Monitoring.Workers = 8
	}
	if cfg.Monitoring.PingTimeout == 0 {
		cfg.Monitoring.PingTimeout = 3 * time.Second
	}
	if cfg.Monitoring.PortTimeout == 0 {
		cfg.Monitoring.PortTimeout = time.Second
	}
	if cfg.Monitoring.WarningThresholdMS == 0 {
		cfg.Monitoring.WarningThresholdMS = 100
	}
	if cfg.Monitoring.CriticalThresholdMS == 0 {
		cfg.Monitoring.CriticalThresholdMS = 500
	}

	if cfg.Prometheus.MetricsPath == "" {
		cfg.Prometheus.MetricsPath = "/metrics"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NETWATCH_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("NETWATCH_CHECK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Monitoring.Interval = d
		}
	}
	if v := os.Getenv("NETWATCH_STATS_TIME"); v != "" {
		cfg.Monitoring.StatsTime = v
	}
	if v := os.Getenv("NETWATCH_WARNING_THRESHOLD_MS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Monitoring.WarningThresholdMS = f
		}
	}
	if v := os.Getenv("NETWATCH_CRITICAL_THRESHOLD_MS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Monitoring.CriticalThresholdMS = f
		}
	}
	if v := os.Getenv("NETWATCH_PORT"); v != "" {
		if !strings.HasPrefix(v, ":") {
			v = ":" + v
		}
		cfg.Server.Port = v
	}
	if v := os.Getenv("NETWATCH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func validate(cfg *Config) error {
	if cfg.Database.Path == "" {
		return fmt.Errorf("database.path cannot be empty")
	}
	if cfg.Database.HistoryRetention <= 0 {
		return fmt.Errorf("database.history_retention must be positive")
	}
	if cfg.Monitoring.Interval <= 0 {
		return fmt.Errorf("monitoring.interval must be positive")
	}
	if cfg.Monitoring.Workers < 1 {
		return fmt.Errorf("monitoring.workers must be at least 1")
	}
	if err := validateClockTime(cfg.Monitoring.StatsTime); err != nil {
		return fmt.Errorf("monitoring.stats_time: %w", err)
	}
	if cfg.Monitoring.WarningThresholdMS > cfg.Monitoring.CriticalThresholdMS {
		return fmt.Errorf("monitoring.warning_threshold_ms cannot exceed critical_threshold_ms")
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json")
	}
	return nil
}

func validateClockTime(value string) error {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return fmt.Errorf("invalid minute in %q", value)
	}
	return nil
}
