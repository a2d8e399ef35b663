// Package config loads runtime configuration from TOML.
//
// Example nodekit.toml:
//
//	name = "ingest"
//
//	[log]
//	level = "debug"
//
//	[signals]
//	enabled = true
//
//	[telemetry]
//	enabled = true
//	endpoint = "localhost:4317"
//	protocol = "grpc"
//	insecure = true
//	events_protocol = "file"
//	events_endpoint = "/var/log/ingest/lifecycle.jsonl"
//
//	[telemetry.attributes]
//	"deployment.environment" = "prod"
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/vinayprograms/nodekit/logging"
)

// FileName is the configuration file looked up by Load.
const FileName = "nodekit.toml"

// Config is the runtime configuration of one system.
type Config struct {
	// Name identifies the system in logs and spans.
	Name string `toml:"name"`

	Log       LogConfig       `toml:"log"`
	Signals   SignalsConfig   `toml:"signals"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// LogConfig configures console logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Default: info
	Level string `toml:"level"`
}

// SignalsConfig configures OS signal handling.
type SignalsConfig struct {
	// Enabled forwards SIGINT/SIGTERM to the shutdown signals. Default: true
	Enabled bool `toml:"enabled"`
}

// TelemetryConfig configures tracing and lifecycle events.
type TelemetryConfig struct {
	// Enabled turns on OTLP span export.
	Enabled bool `toml:"enabled"`

	// Endpoint is the OTLP collector address.
	Endpoint string `toml:"endpoint"`

	// Protocol is "grpc" or "http". Default: grpc
	Protocol string `toml:"protocol"`

	// Insecure disables TLS to the collector.
	Insecure bool `toml:"insecure"`

	// ServiceName overrides Name in the span resource.
	ServiceName string `toml:"service_name"`

	// Attributes are extra span resource labels.
	Attributes map[string]string `toml:"attributes"`

	// EventsProtocol selects the lifecycle event exporter: noop, file, http.
	EventsProtocol string `toml:"events_protocol"`

	// EventsEndpoint is the file path or URL for lifecycle events.
	EventsEndpoint string `toml:"events_endpoint"`
}

// Default returns configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Name:    "nodekit",
		Log:     LogConfig{Level: "info"},
		Signals: SignalsConfig{Enabled: true},
		Telemetry: TelemetryConfig{
			Protocol:       "grpc",
			EventsProtocol: "noop",
		},
	}
}

// StandardPaths returns the configuration locations in order of priority.
func StandardPaths() []string {
	paths := []string{FileName}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "nodekit", FileName))
	}
	return paths
}

// Load loads configuration from the first available standard location.
// A missing file is not an error: defaults are returned with an empty path.
func Load() (*Config, string, error) {
	for _, path := range StandardPaths() {
		if _, err := os.Stat(path); err == nil {
			cfg, err := LoadFile(path)
			if err != nil {
				return nil, path, err
			}
			return cfg, path, nil
		}
	}
	cfg := Default()
	cfg.applyEnv()
	return cfg, "", nil
}

// LoadFile loads configuration from a specific file on top of the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes configuration from TOML text on top of the defaults.
// Environment overrides apply as they do for LoadFile.
func Parse(data string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies environment overrides.
func (c *Config) applyEnv() {
	if lvl := os.Getenv("NODEKIT_LOG_LEVEL"); lvl != "" {
		c.Log.Level = lvl
	}
	if ep := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); ep != "" && c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = ep
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	switch c.Telemetry.Protocol {
	case "", "grpc", "http":
	default:
		return fmt.Errorf("unknown telemetry protocol %q", c.Telemetry.Protocol)
	}
	switch c.Telemetry.EventsProtocol {
	case "", "noop", "http", "file":
	default:
		return fmt.Errorf("unknown events protocol %q", c.Telemetry.EventsProtocol)
	}
	if c.Telemetry.EventsProtocol == "file" || c.Telemetry.EventsProtocol == "http" {
		if c.Telemetry.EventsEndpoint == "" {
			return fmt.Errorf("events_endpoint required for %s events", c.Telemetry.EventsProtocol)
		}
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() logging.Level {
	lvl, _ := logging.ParseLevel(c.Log.Level)
	return lvl
}

// ServiceName returns the name used for the span resource.
func (c *Config) ServiceName() string {
	if c.Telemetry.ServiceName != "" {
		return c.Telemetry.ServiceName
	}
	return c.Name
}
