package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func writeTempMetamodel(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "metamodel.yaml")
	if err := os.WriteFile(tmpFile, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to create temp metamodel file: %v", err)
	}
	return tmpFile
}

func TestMetamodelWatcherDetectsFileChange(t *testing.T) {
	tmpFile := writeTempMetamodel(t, "name: v1\n")

	var callCount atomic.Int32
	callback := func(data []byte) error {
		callCount.Add(1)
		return nil
	}

	watcher, err := NewMetamodelWatcher(MetamodelWatcherConfig{
		FilePath:       tmpFile,
		DebounceMillis: 100,
	}, callback)
	if err != nil {
		t.Fatalf("NewMetamodelWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := watcher.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer watcher.Stop(context.Background())

	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(tmpFile, []byte("name: v2\n"), 0o600); err != nil {
		t.Fatalf("failed to modify metamodel file: %v", err)
	}

	time.Sleep(300 * time.Millisecond)

	if callCount.Load() != 1 {
		t.Errorf("expected 1 callback after file change, got %d", callCount.Load())
	}
}

func TestMetamodelWatcherDebouncing(t *testing.T) {
	tmpFile := writeTempMetamodel(t, "name: v1\n")

	var callCount atomic.Int32
	callback := func(data []byte) error {
		callCount.Add(1)
		return nil
	}

	watcher, err := NewMetamodelWatcher(MetamodelWatcherConfig{
		FilePath:       tmpFile,
		DebounceMillis: 200,
	}, callback)
	if err != nil {
		t.Fatalf("NewMetamodelWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := watcher.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer watcher.Stop(context.Background())

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(tmpFile, []byte("name: v1\n"), 0o600); err != nil {
			t.Fatalf("failed to write metamodel file: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	time.Sleep(400 * time.Millisecond)

	if callCount.Load() != 1 {
		t.Errorf("expected debouncing to coalesce 5 writes into 1 callback, got %d", callCount.Load())
	}
}

func TestMetamodelWatcherValidation(t *testing.T) {
	callback := func(data []byte) error { return nil }

	if _, err := NewMetamodelWatcher(MetamodelWatcherConfig{FilePath: ""}, callback); err == nil {
		t.Error("expected error for empty FilePath")
	}
	if _, err := NewMetamodelWatcher(MetamodelWatcherConfig{FilePath: "/tmp/test.yaml"}, nil); err == nil {
		t.Error("expected error for nil callback")
	}
}

func TestMetamodelWatcherStopGraceful(t *testing.T) {
	tmpFile := writeTempMetamodel(t, "name: v1\n")
	watcher, err := NewMetamodelWatcher(MetamodelWatcherConfig{
		FilePath:       tmpFile,
		DebounceMillis: 100,
	}, func(data []byte) error { return nil })
	if err != nil {
		t.Fatalf("NewMetamodelWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := watcher.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	stopStart := time.Now()
	if err := watcher.Stop(context.Background()); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	if time.Since(stopStart) > 4*time.Second {
		t.Errorf("Stop took too long")
	}
}

func TestMetamodelWatcherName(t *testing.T) {
	watcher, err := NewMetamodelWatcher(MetamodelWatcherConfig{
		FilePath: writeTempMetamodel(t, "name: v1\n"),
	}, func(data []byte) error { return nil })
	if err != nil {
		t.Fatalf("NewMetamodelWatcher failed: %v", err)
	}
	if watcher.Name() != "metamodel-watcher" {
		t.Errorf("expected name %q, got %q", "metamodel-watcher", watcher.Name())
	}
}
