// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}

	if cfg.Server.Port != ":8080" {
		t.Errorf("default port wrong: %s", cfg.Server.Port)
	}
	if cfg.Monitoring.Interval != 5*time.Minute {
		t.Errorf("default interval wrong: %v", cfg.Monitoring.Interval)
	}
	if cfg.Monitoring.StatsTime != "00:00" {
		t.Errorf("default stats time wrong: %s", cfg.Monitoring.StatsTime)
	}
	if cfg.Monitoring.Workers != 8 {
		t.Errorf("default workers wrong: %d", cfg.Monitoring.Workers)
	}
	if cfg.Database.HistoryRetention != 90*24*time.Hour {
		t.Errorf("default retention wrong: %v", cfg.Database.HistoryRetention)
	}
	if cfg.Monitoring.WarningThresholdMS != 100 || cfg.Monitoring.CriticalThresholdMS != 500 {
		t.Errorf("default thresholds wrong: %v / %v",
			cfg.Monitoring.WarningThresholdMS, cfg.Monitoring.CriticalThresholdMS)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: ":9090"
monitoring:
  interval: 1m
  stats_time: "06:30"
  workers: 4
database:
  path: /var/lib/netwatch/netwatch.db
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != ":9090" {
		t.Errorf("port not loaded: %s", cfg.Server.Port)
	}
	if cfg.Monitoring.Interval != time.Minute {
		t.Errorf("interval not loaded: %v", cfg.Monitoring.Interval)
	}
	if cfg.Monitoring.StatsTime != "06:30" {
		t.Errorf("stats time not loaded: %s", cfg.Monitoring.StatsTime)
	}
	if cfg.Database.Path != "/var/lib/netwatch/netwatch.db" {
		t.Errorf("db path not loaded: %s", cfg.Database.Path)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("log format not loaded: %s", cfg.Logging.Format)
	}
	if cfg.Monitoring.PingTimeout != 3*time.Second {
		t.Errorf("unset fields should default: %v", cfg.Monitoring.PingTimeout)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("NETWATCH_DB_PATH", "/tmp/override.db")
	t.Setenv("NETWATCH_CHECK_INTERVAL", "30s")
	t.Setenv("NETWATCH_STATS_TIME", "23:45")
	t.Setenv("NETWATCH_PORT", "7070")
	t.Setenv("NETWATCH_LOG_LEVEL", "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("db path override failed: %s", cfg.Database.Path)
	}
	if cfg.Monitoring.Interval != 30*time.Second {
		t.Errorf("interval override failed: %v", cfg.Monitoring.Interval)
	}
	if cfg.Monitoring.StatsTime != "23:45" {
		t.Errorf("stats time override failed: %s", cfg.Monitoring.StatsTime)
	}
	if cfg.Server.Port != ":7070" {
		t.Errorf("port override should gain a leading colon: %s", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("log level override failed: %s", cfg.Logging.Level)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad stats time", "monitoring:\n  stats_time: \"25:00\"\n"},
		{"negative interval", "monitoring:\n  interval: -1m\n"},
		{"bad log format", "logging:\n  format: xml\n"},
		{"thresholds inverted", "monitoring:\n  warning_threshold_ms: 900\n  critical_threshold_ms: 500\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := Load(path); err == nil {
				t.Errorf("expected validation error for %s", tt.name)
			}
		})
	}
}
