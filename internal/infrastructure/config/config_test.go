package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
machine:
  name: "test-bot"
  settle_delay_ms: 1500
  shot_volume_ml: 40
  gpio:
    simulate: true
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "0.0.0.0"
  port: 8080
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Machine.Name != "test-bot" {
		t.Errorf("Machine.Name = %q, want %q", cfg.Machine.Name, "test-bot")
	}

	if cfg.Machine.SettleDelayMS != 1500 {
		t.Errorf("Machine.SettleDelayMS = %d, want 1500", cfg.Machine.SettleDelayMS)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_Defaults(t *testing.T) {
	content := `
machine:
  gpio:
    simulate: true
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Machine.SettleDelayMS != 2000 {
		t.Errorf("default SettleDelayMS = %d, want 2000", cfg.Machine.SettleDelayMS)
	}
	if cfg.Machine.ShotVolumeML != 40 {
		t.Errorf("default ShotVolumeML = %d, want 40", cfg.Machine.ShotVolumeML)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("default API.Port = %d, want 8080", cfg.API.Port)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative settle delay", func(c *Config) { c.Machine.SettleDelayMS = -1 }},
		{"zero shot volume", func(c *Config) { c.Machine.ShotVolumeML = 0 }},
		{"missing database path", func(c *Config) { c.Database.Path = "" }},
		{"invalid qos", func(c *Config) { c.MQTT.QoS = 3 }},
		{"invalid port", func(c *Config) { c.API.Port = 0 }},
		{"no script without simulation", func(c *Config) {
			c.Machine.GPIO.Simulate = false
			c.Machine.GPIO.ScriptPath = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() expected error, got nil")
			}
		})
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("COCKTAILBOT_DATABASE_PATH", "/tmp/override.db")
	t.Setenv("COCKTAILBOT_GPIO_SIMULATE", "true")

	content := `
machine:
  gpio:
    simulate: false
    script_path: "scripts/pump_control.py"
database:
  path: "/tmp/original.db"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("Database.Path = %q, want env override", cfg.Database.Path)
	}
	if !cfg.Machine.GPIO.Simulate {
		t.Error("GPIO.Simulate = false, want env override true")
	}
}
