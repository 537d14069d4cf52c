package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
)

// envPrefix is the prefix used for environment variable overrides, e.g.
// POIETIC_DATA_DIR, POIETIC_TRACING_ENABLED.
const envPrefix = "POIETIC_"

// Load reads a YAML config file at path (if non-empty and present) and
// overlays environment variables prefixed with POIETIC_ on top, then
// returns a validated Config. Missing path is not an error: Default()
// values are used and only environment overrides apply.
func Load(path string) (*Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, NewConfigError("failed to load config file: " + err.Error())
		}
	}

	applyKoanf(cfg, k)
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyKoanf(cfg *Config, k *koanf.Koanf) {
	if v := k.String("data_dir"); v != "" {
		cfg.DataDir = v
	}
	if v := k.String("store_path"); v != "" {
		cfg.StorePath = v
	}
	if v := k.String("metamodel_path"); v != "" {
		cfg.MetamodelPath = v
	}
	if k.Exists("metamodel_watch_enabled") {
		cfg.MetamodelWatchEnabled = k.Bool("metamodel_watch_enabled")
	}
	if v := k.Strings("log_level"); len(v) > 0 {
		cfg.LogLevelFlags = v
	}
	if v := k.String("store_format_version"); v != "" {
		cfg.StoreFormatVersion = v
	}
	if k.Exists("tracing_enabled") {
		cfg.TracingEnabled = k.Bool("tracing_enabled")
	}
	if v := k.String("tracing_endpoint"); v != "" {
		cfg.TracingEndpoint = v
	}
	if v := k.String("tracing_tls_ca_path"); v != "" {
		cfg.TracingTLSCAPath = v
	}
	if k.Exists("tracing_tls_insecure") {
		cfg.TracingTLSInsecure = k.Bool("tracing_tls_insecure")
	}
	if k.Exists("metrics_enabled") {
		cfg.MetricsEnabled = k.Bool("metrics_enabled")
	}
	if v := k.String("metrics_addr"); v != "" {
		cfg.MetricsAddr = v
	}
	if k.Exists("snapshot_cache_size") {
		cfg.SnapshotCacheSize = k.Int("snapshot_cache_size")
	}
}

// applyEnv overlays POIETIC_* environment variables, taking precedence
// over file-provided values (mirrors the teacher's LOG_LEVEL_* precedence
// convention in cmd/spectre/commands/root.go).
func applyEnv(cfg *Config) {
	lookup := func(name string) (string, bool) {
		return os.LookupEnv(envPrefix + name)
	}

	if v, ok := lookup("DATA_DIR"); ok {
		cfg.DataDir = v
	}
	if v, ok := lookup("STORE_PATH"); ok {
		cfg.StorePath = v
	}
	if v, ok := lookup("METAMODEL_PATH"); ok {
		cfg.MetamodelPath = v
	}
	if v, ok := lookup("METAMODEL_WATCH_ENABLED"); ok {
		cfg.MetamodelWatchEnabled = parseBool(v)
	}
	if v, ok := lookup("TRACING_ENABLED"); ok {
		cfg.TracingEnabled = parseBool(v)
	}
	if v, ok := lookup("TRACING_ENDPOINT"); ok {
		cfg.TracingEndpoint = v
	}
	if v, ok := lookup("METRICS_ENABLED"); ok {
		cfg.MetricsEnabled = parseBool(v)
	}
	if v, ok := lookup("METRICS_ADDR"); ok {
		cfg.MetricsAddr = v
	}
	if v, ok := lookup("SNAPSHOT_CACHE_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SnapshotCacheSize = n
		}
	}
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
