package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the MQTT bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Broker    BrokerConfig    `yaml:"broker"`
	Auth      AuthConfig      `yaml:"auth"`
	QoS       int             `yaml:"qos"`
	Reconnect ReconnectConfig `yaml:"reconnect"`
	Health    HealthConfig    `yaml:"health"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// BrokerConfig contains broker connection and transport settings.
type BrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`

	// TLS enables a secure transport. When enabled a trust bundle is
	// resolved before the first connection attempt.
	TLS bool `yaml:"tls"`

	// WebSockets selects the WebSocket transport instead of plain TCP.
	WebSockets bool `yaml:"websockets"`

	// WebSocketPath is the HTTP path used for WebSocket connections.
	WebSocketPath string `yaml:"websocket_path"`

	// CertFile is an optional explicit PEM trust bundle. When set and
	// present on disk it takes priority over every other trust source.
	CertFile string `yaml:"cert_file"`

	// KeepAlive is the MQTT keep-alive interval in seconds.
	KeepAlive int `yaml:"keep_alive"`
}

// AuthConfig contains broker authentication credentials.
type AuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ReconnectConfig contains automatic reconnection backoff bounds in seconds.
type ReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// HealthConfig contains connection health monitoring settings.
type HealthConfig struct {
	// CheckInterval is how often the session verifies connection liveness.
	// A monotonic clock jump far beyond this cadence is treated as an
	// OS sleep/resume cycle.
	CheckInterval time.Duration `yaml:"check_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Default ports per transport/TLS combination.
const (
	defaultPortTCP = 1883
	defaultPortSSL = 8883
	defaultPortWS  = 8080
	defaultPortWSS = 8883
)

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: MQTTBRIDGE_SECTION_KEY
// For example: MQTTBRIDGE_BROKER_HOST, MQTTBRIDGE_AUTH_PASSWORD
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Derive a port from the transport selection when none is given
	cfg.ApplyPortDefault()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Broker: BrokerConfig{
			Host:          "localhost",
			TLS:           true,
			WebSockets:    true,
			WebSocketPath: "/mqtt",
			KeepAlive:     60,
		},
		QoS: 1,
		Reconnect: ReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     60,
		},
		Health: HealthConfig{
			CheckInterval: time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: MQTTBRIDGE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Broker
	if v := os.Getenv("MQTTBRIDGE_BROKER_HOST"); v != "" {
		cfg.Broker.Host = v
	}
	if v := os.Getenv("MQTTBRIDGE_BROKER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Broker.Port = port
		}
	}
	if v := os.Getenv("MQTTBRIDGE_BROKER_CLIENT_ID"); v != "" {
		cfg.Broker.ClientID = v
	}
	if v := os.Getenv("MQTTBRIDGE_BROKER_CERT_FILE"); v != "" {
		cfg.Broker.CertFile = v
	}

	// Transport selection (TLS on/off, WebSockets vs TCP) is the most
	// common per-deployment switch, so it must be reachable without
	// editing the file.
	if v := os.Getenv("MQTTBRIDGE_BROKER_TLS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Broker.TLS = b
		}
	}
	if v := os.Getenv("MQTTBRIDGE_BROKER_WEBSOCKETS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Broker.WebSockets = b
		}
	}
	if v := os.Getenv("MQTTBRIDGE_BROKER_WEBSOCKET_PATH"); v != "" {
		cfg.Broker.WebSocketPath = v
	}
	if v := os.Getenv("MQTTBRIDGE_BROKER_KEEP_ALIVE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Broker.KeepAlive = n
		}
	}

	// Auth (credentials should come from the environment, not the file)
	if v := os.Getenv("MQTTBRIDGE_AUTH_USERNAME"); v != "" {
		cfg.Auth.Username = v
	}
	if v := os.Getenv("MQTTBRIDGE_AUTH_PASSWORD"); v != "" {
		cfg.Auth.Password = v
	}
}

// Scheme returns the URI scheme derived from the transport/TLS selection.
//
// WebSocket+TLS → wss, WebSocket → ws, TCP+TLS → ssl, TCP → tcp.
func (b BrokerConfig) Scheme() string {
	switch {
	case b.WebSockets && b.TLS:
		return "wss"
	case b.WebSockets:
		return "ws"
	case b.TLS:
		return "ssl"
	default:
		return "tcp"
	}
}

// DefaultPort returns the conventional port for the transport/TLS selection.
func (b BrokerConfig) DefaultPort() int {
	switch {
	case b.WebSockets && b.TLS:
		return defaultPortWSS
	case b.WebSockets:
		return defaultPortWS
	case b.TLS:
		return defaultPortSSL
	default:
		return defaultPortTCP
	}
}

// ApplyPortDefault fills in the broker port from the transport selection
// when no explicit port was configured.
func (c *Config) ApplyPortDefault() {
	if c.Broker.Port == 0 {
		c.Broker.Port = c.Broker.DefaultPort()
	}
}

// KeepAliveInterval returns the keep-alive interval as a Duration.
func (c *Config) KeepAliveInterval() time.Duration {
	return time.Duration(c.Broker.KeepAlive) * time.Second
}

// InitialReconnectDelay returns the minimum reconnect backoff as a Duration.
func (c *Config) InitialReconnectDelay() time.Duration {
	return time.Duration(c.Reconnect.InitialDelay) * time.Second
}

// MaxReconnectDelay returns the maximum reconnect backoff as a Duration.
func (c *Config) MaxReconnectDelay() time.Duration {
	return time.Duration(c.Reconnect.MaxDelay) * time.Second
}

// Validate checks the configuration, collecting every problem into one
// error so a broken file is fixed in a single pass.
func (c *Config) Validate() error {
	var errs []string

	// Broker validation
	if c.Broker.Host == "" {
		errs = append(errs, "broker.host is required")
	}
	if c.Broker.Port < 1 || c.Broker.Port > 65535 {
		errs = append(errs, "broker.port must be between 1 and 65535")
	}
	if c.Broker.WebSockets && !strings.HasPrefix(c.Broker.WebSocketPath, "/") {
		errs = append(errs, "broker.websocket_path must start with /")
	}
	if c.Broker.KeepAlive < 1 {
		errs = append(errs, "broker.keep_alive must be at least 1 second")
	}

	// QoS validation
	if c.QoS < 0 || c.QoS > 2 {
		errs = append(errs, "qos must be 0, 1, or 2")
	}

	// Reconnect validation
	if c.Reconnect.InitialDelay < 1 {
		errs = append(errs, "reconnect.initial_delay must be at least 1 second")
	}
	if c.Reconnect.MaxDelay < c.Reconnect.InitialDelay {
		errs = append(errs, "reconnect.max_delay must not be less than reconnect.initial_delay")
	}

	// Health validation
	if c.Health.CheckInterval <= 0 {
		errs = append(errs, "health.check_interval must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
