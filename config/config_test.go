package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yllada/wg-manager/common"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.EnableDiagnostics {
		t.Error("EnableDiagnostics should default to true")
	}
	if cfg.DiagnosticsURL != DefaultDiagnosticsURL {
		t.Errorf("DiagnosticsURL = %q, want %q", cfg.DiagnosticsURL, DefaultDiagnosticsURL)
	}
	if !cfg.ShowNotifications {
		t.Error("ShowNotifications should default to true")
	}
	if cfg.Verbose {
		t.Error("Verbose should default to false")
	}
	if cfg.ForceUserspace {
		t.Error("ForceUserspace should default to false")
	}
}

func TestLoad_CreatesDefaultWhenMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.EnableDiagnostics {
		t.Error("fresh config should enable diagnostics")
	}

	path, err := getConfigPath()
	if err != nil {
		t.Fatalf("getConfigPath: %v", err)
	}
	if !common.FileExists(path) {
		t.Error("Load did not persist a default config file")
	}
}

func TestLoad_RoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.EnableDiagnostics = false
	cfg.ForceUserspace = true
	cfg.LastUsedTunnel = "wg0"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.EnableDiagnostics {
		t.Error("EnableDiagnostics not round-tripped")
	}
	if !loaded.ForceUserspace {
		t.Error("ForceUserspace not round-tripped")
	}
	if loaded.LastUsedTunnel != "wg0" {
		t.Errorf("LastUsedTunnel = %q, want %q", loaded.LastUsedTunnel, "wg0")
	}
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", common.ConfigDirName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	content := []byte("enable_diagnostics: true\nbogus_field: 1\n")
	if err := os.WriteFile(filepath.Join(dir, common.ConfigFileName), content, 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load accepted a config with unknown fields")
	}
}

func TestValidate_DiagnosticsURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"empty defaults", "", false},
		{"https", "https://example.com/report", false},
		{"http", "http://localhost:8080/report", false},
		{"bad scheme", "ftp://example.com", true},
		{"garbage", "://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DiagnosticsURL = tt.url
			err := cfg.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
