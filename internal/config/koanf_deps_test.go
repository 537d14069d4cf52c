package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poietic.yaml")
	content := `
data_dir: /data/designs
metamodel_path: /data/metamodel.yaml
log_level: ["info", "graph=debug"]
snapshot_cache_size: 1024
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DataDir != "/data/designs" {
		t.Errorf("DataDir = %q, want /data/designs", cfg.DataDir)
	}
	if cfg.MetamodelPath != "/data/metamodel.yaml" {
		t.Errorf("MetamodelPath = %q, want /data/metamodel.yaml", cfg.MetamodelPath)
	}
	if cfg.SnapshotCacheSize != 1024 {
		t.Errorf("SnapshotCacheSize = %d, want 1024", cfg.SnapshotCacheSize)
	}
}

func TestLoadMissingPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DataDir != Default().DataDir {
		t.Errorf("DataDir = %q, want default %q", cfg.DataDir, Default().DataDir)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poietic.yaml")
	if err := os.WriteFile(path, []byte("data_dir: /from/file\n"), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	t.Setenv("POIETIC_DATA_DIR", "/from/env")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DataDir != "/from/env" {
		t.Errorf("DataDir = %q, want env override /from/env", cfg.DataDir)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Setenv("POIETIC_TRACING_ENABLED", "true")
	t.Setenv("POIETIC_TRACING_ENDPOINT", "")
	if _, err := Load(""); err == nil {
		t.Error("expected validation error for tracing enabled without endpoint")
	}
}

func TestParseBool(t *testing.T) {
	tests := map[string]bool{
		"1": true, "true": true, "TRUE": true, "yes": true, "on": true,
		"0": false, "false": false, "no": false, "": false, "garbage": false,
	}
	for in, want := range tests {
		if got := parseBool(in); got != want {
			t.Errorf("parseBool(%q) = %v, want %v", in, got, want)
		}
	}
}
