package config

import "fmt"

// Config holds all configuration for a poietic CLI invocation or embedder.
type Config struct {
	// DataDir is the directory holding the design's persistent store file
	// and any ancillary metamodel files.
	DataDir string

	// StorePath is the path to the raw design JSON file. Defaults to
	// "<DataDir>/design.json" when empty.
	StorePath string

	// MetamodelPath is the path to the YAML metamodel file loaded at
	// startup. If MetamodelWatchEnabled is set, serve-metrics re-parses
	// it on change and logs the result; a running Design keeps the
	// metamodel it was opened with.
	MetamodelPath string

	// MetamodelWatchEnabled enables the fsnotify-backed metamodel watcher.
	MetamodelWatchEnabled bool

	// LogLevelFlags are the per-package log level configurations.
	// Format: ["debug"], ["default=info", "graph=debug"], or ["info"].
	LogLevelFlags []string

	// StoreFormatVersion is a configured store_format_version string.
	// Validate requires it to be non-empty; the rawstore writer does not
	// read it and always writes rawstore.CurrentFormatVersion.
	StoreFormatVersion string

	// TracingEnabled indicates whether OpenTelemetry tracing is enabled.
	TracingEnabled bool

	// TracingEndpoint is the OTLP gRPC endpoint for trace export.
	TracingEndpoint string

	// TracingTLSCAPath is the path to the CA certificate for TLS verification.
	TracingTLSCAPath string

	// TracingTLSInsecure allows insecure TLS connections (skip verification).
	TracingTLSInsecure bool

	// MetricsEnabled is loaded from metrics_enabled /
	// POIETIC_METRICS_ENABLED. No command reads it: serve-metrics starts
	// its Prometheus HTTP listener whether or not it is set.
	MetricsEnabled bool

	// MetricsAddr is the listen address for the metrics HTTP server.
	MetricsAddr string

	// SnapshotCacheSize bounds the snapshot table's secondary LRU index
	// (internal/graph.SnapshotTable). Zero disables the cache.
	SnapshotCacheSize int
}

// Default returns a Config with sane defaults for local CLI use.
func Default() *Config {
	return &Config{
		DataDir:            ".",
		StoreFormatVersion: "0.1.0",
		LogLevelFlags:      []string{"info"},
		MetricsAddr:        ":9090",
		SnapshotCacheSize:  4096,
	}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return NewConfigError("DataDir must not be empty")
	}

	if c.StoreFormatVersion == "" {
		return NewConfigError("StoreFormatVersion must not be empty")
	}

	if c.TracingEnabled && c.TracingEndpoint == "" {
		return NewConfigError("TracingEndpoint must be set when tracing is enabled")
	}

	if c.MetamodelWatchEnabled && c.MetamodelPath == "" {
		return NewConfigError("MetamodelPath must be set when metamodel watching is enabled")
	}

	if c.SnapshotCacheSize < 0 {
		return NewConfigError("SnapshotCacheSize must not be negative")
	}

	return nil
}

// ResolvedStorePath returns StorePath if set, else DataDir/design.json.
func (c *Config) ResolvedStorePath() string {
	if c.StorePath != "" {
		return c.StorePath
	}
	return fmt.Sprintf("%s/design.json", c.DataDir)
}

// ConfigError represents a configuration error.
type ConfigError struct {
	message string
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string) *ConfigError {
	return &ConfigError{message: message}
}

// Error returns the error message.
func (e *ConfigError) Error() string {
	return e.message
}
