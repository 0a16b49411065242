package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("app:\n  environment: test\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Conversion.Threshold != 70 {
		t.Errorf("Threshold = %v, want 70", cfg.Conversion.Threshold)
	}
	if cfg.Conversion.Rotate != "auto" {
		t.Errorf("Rotate = %q, want auto", cfg.Conversion.Rotate)
	}
	if !cfg.Conversion.Cut || !cfg.Conversion.HQ {
		t.Errorf("Cut/HQ defaults should be true")
	}
	if cfg.Discovery.TCPPort != 9100 {
		t.Errorf("TCPPort = %d, want 9100", cfg.Discovery.TCPPort)
	}
	if got := cfg.GetServerAddr(); got != "0.0.0.0:8085" {
		t.Errorf("GetServerAddr() = %q", got)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad rotation", "conversion:\n  rotate: \"45\"\n"},
		{"threshold out of range", "conversion:\n  threshold: 120\n"},
		{"bad level", "logging:\n  level: loud\n"},
		{"bad environment", "app:\n  environment: moon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("Load() expected error for %s", tt.name)
			}
		})
	}
}
