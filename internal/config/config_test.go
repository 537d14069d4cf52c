package config

import "testing"

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty data dir",
			mutate:  func(c *Config) { c.DataDir = "" },
			wantErr: true,
		},
		{
			name:    "empty store format version",
			mutate:  func(c *Config) { c.StoreFormatVersion = "" },
			wantErr: true,
		},
		{
			name: "tracing enabled without endpoint",
			mutate: func(c *Config) {
				c.TracingEnabled = true
				c.TracingEndpoint = ""
			},
			wantErr: true,
		},
		{
			name: "metamodel watch enabled without path",
			mutate: func(c *Config) {
				c.MetamodelWatchEnabled = true
				c.MetamodelPath = ""
			},
			wantErr: true,
		},
		{
			name:    "negative cache size",
			mutate:  func(c *Config) { c.SnapshotCacheSize = -1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestResolvedStorePath(t *testing.T) {
	c := Default()
	c.DataDir = "/tmp/designs"
	if got, want := c.ResolvedStorePath(), "/tmp/designs/design.json"; got != want {
		t.Errorf("ResolvedStorePath() = %q, want %q", got, want)
	}

	c.StorePath = "/explicit/store.json"
	if got, want := c.ResolvedStorePath(), "/explicit/store.json"; got != want {
		t.Errorf("ResolvedStorePath() with explicit StorePath = %q, want %q", got, want)
	}
}
