package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if got, want := cfg.MonoThreshold, 6; got != want {
		t.Errorf("MonoThreshold = %d, want %d", got, want)
	}
	if !cfg.ComputeTechCounts || !cfg.ComputePatternCounts {
		t.Errorf("counting stages disabled by default: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stepscan.yaml")
	src := "mono_threshold: 5\ncustom_patterns:\n  - LDUR\n  - RUDL\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, want := cfg.MonoThreshold, 5; got != want {
		t.Errorf("MonoThreshold = %d, want %d", got, want)
	}
	if len(cfg.CustomPatterns) != 2 || cfg.CustomPatterns[0] != "LDUR" {
		t.Errorf("CustomPatterns = %v, want [LDUR RUDL]", cfg.CustomPatterns)
	}
	// Unmentioned keys keep their defaults.
	if !cfg.ComputeTechCounts {
		t.Error("ComputeTechCounts = false, want default true")
	}

	opts := cfg.Options()
	if opts.MonoThreshold != 5 || len(opts.CustomPatterns) != 2 {
		t.Errorf("Options() = %+v, want threshold 5 with 2 patterns", opts)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("mono_threshold: -1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("Load(negative threshold) error = nil, want error")
	}

	garbled := filepath.Join(dir, "garbled.yaml")
	if err := os.WriteFile(garbled, []byte("mono_threshold: [\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := Load(garbled); err == nil {
		t.Error("Load(garbled yaml) error = nil, want error")
	}

	if _, err := Load(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Error("Load(absent file) error = nil, want error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := DefaultConfig()
	cfg.StripTags = true
	cfg.MonoThreshold = 4

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.StripTags != true || loaded.MonoThreshold != 4 {
		t.Errorf("round trip = %+v, want strip_tags true, threshold 4", loaded)
	}
}
