package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfig writes a temporary config file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
broker:
  host: broker.example
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Broker.Host != "broker.example" {
		t.Errorf("Broker.Host = %q, want broker.example", cfg.Broker.Host)
	}
	if !cfg.Broker.TLS || !cfg.Broker.WebSockets {
		t.Error("expected TLS and WebSockets enabled by default")
	}
	if cfg.Broker.Port != 8883 {
		t.Errorf("Broker.Port = %d, want derived default 8883", cfg.Broker.Port)
	}
	if cfg.Broker.WebSocketPath != "/mqtt" {
		t.Errorf("Broker.WebSocketPath = %q, want /mqtt", cfg.Broker.WebSocketPath)
	}
	if cfg.Health.CheckInterval != time.Second {
		t.Errorf("Health.CheckInterval = %v, want 1s", cfg.Health.CheckInterval)
	}
	if cfg.QoS != 1 {
		t.Errorf("QoS = %d, want 1", cfg.QoS)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "broker: [not a mapping")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected error for invalid YAML")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `
broker:
  host: file-host
auth:
  username: file-user
`)

	t.Setenv("MQTTBRIDGE_BROKER_HOST", "env-host")
	t.Setenv("MQTTBRIDGE_BROKER_PORT", "9001")
	t.Setenv("MQTTBRIDGE_AUTH_PASSWORD", "env-secret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Broker.Host != "env-host" {
		t.Errorf("Broker.Host = %q, want env-host", cfg.Broker.Host)
	}
	if cfg.Broker.Port != 9001 {
		t.Errorf("Broker.Port = %d, want 9001", cfg.Broker.Port)
	}
	if cfg.Auth.Username != "file-user" {
		t.Errorf("Auth.Username = %q, want file-user", cfg.Auth.Username)
	}
	if cfg.Auth.Password != "env-secret" {
		t.Errorf("Auth.Password = %q, want env-secret", cfg.Auth.Password)
	}
}

func TestLoadEnvOverrideTransport(t *testing.T) {
	path := writeConfig(t, `
broker:
  host: broker.example
`)

	t.Setenv("MQTTBRIDGE_BROKER_TLS", "false")
	t.Setenv("MQTTBRIDGE_BROKER_WEBSOCKETS", "false")
	t.Setenv("MQTTBRIDGE_BROKER_KEEP_ALIVE", "30")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Broker.TLS {
		t.Error("expected TLS disabled via environment")
	}
	if cfg.Broker.WebSockets {
		t.Error("expected WebSockets disabled via environment")
	}
	if cfg.Broker.Port != 1883 {
		t.Errorf("Broker.Port = %d, want 1883 derived from plain TCP", cfg.Broker.Port)
	}
	if cfg.Broker.KeepAlive != 30 {
		t.Errorf("Broker.KeepAlive = %d, want 30", cfg.Broker.KeepAlive)
	}
}

func TestLoadEnvOverrideWebSocketPath(t *testing.T) {
	path := writeConfig(t, `
broker:
  host: broker.example
`)

	t.Setenv("MQTTBRIDGE_BROKER_WEBSOCKET_PATH", "/ws")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Broker.WebSocketPath != "/ws" {
		t.Errorf("Broker.WebSocketPath = %q, want /ws", cfg.Broker.WebSocketPath)
	}
}

func TestSchemeAndDefaultPort(t *testing.T) {
	tests := []struct {
		name       string
		websockets bool
		tls        bool
		scheme     string
		port       int
	}{
		{"websocket TLS", true, true, "wss", 8883},
		{"websocket plain", true, false, "ws", 8080},
		{"tcp TLS", false, true, "ssl", 8883},
		{"tcp plain", false, false, "tcp", 1883},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := BrokerConfig{WebSockets: tt.websockets, TLS: tt.tls}
			if got := b.Scheme(); got != tt.scheme {
				t.Errorf("Scheme() = %q, want %q", got, tt.scheme)
			}
			if got := b.DefaultPort(); got != tt.port {
				t.Errorf("DefaultPort() = %d, want %d", got, tt.port)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing host", func(c *Config) { c.Broker.Host = "" }, "broker.host"},
		{"bad port", func(c *Config) { c.Broker.Port = 70000 }, "broker.port"},
		{"bad qos", func(c *Config) { c.QoS = 3 }, "qos"},
		{"bad ws path", func(c *Config) { c.Broker.WebSocketPath = "mqtt" }, "websocket_path"},
		{"bad keep alive", func(c *Config) { c.Broker.KeepAlive = 0 }, "keep_alive"},
		{"inverted backoff", func(c *Config) { c.Reconnect.MaxDelay = 0 }, "max_delay"},
		{"bad health interval", func(c *Config) { c.Health.CheckInterval = 0 }, "check_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.ApplyPortDefault()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestDurationAccessors(t *testing.T) {
	cfg := defaultConfig()

	if got := cfg.KeepAliveInterval(); got != 60*time.Second {
		t.Errorf("KeepAliveInterval() = %v, want 60s", got)
	}
	if got := cfg.InitialReconnectDelay(); got != time.Second {
		t.Errorf("InitialReconnectDelay() = %v, want 1s", got)
	}
	if got := cfg.MaxReconnectDelay(); got != 60*time.Second {
		t.Errorf("MaxReconnectDelay() = %v, want 60s", got)
	}
}
