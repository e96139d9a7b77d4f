package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsWithNoConfigFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Planner.WPMMin != 40.0 || cfg.Planner.WPMMax != 60.0 {
		t.Errorf("unexpected planner wpm defaults: %+v", cfg.Planner)
	}
	if cfg.Database.Path != "data/typeplan.db" {
		t.Errorf("unexpected database path default: %q", cfg.Database.Path)
	}
	if cfg.Playback.Backend != "auto" {
		t.Errorf("unexpected playback backend default: %q", cfg.Playback.Backend)
	}
}

func TestLoadOverridesDefaultsFromFile(t *testing.T) {
	path := writeConfigFile(t, `
planner:
  wpm_min: 55
  wpm_max: 70
  word_nav_profile: compatible
database:
  path: /tmp/custom.db
playback:
  backend: wayland
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Planner.WPMMin != 55 || cfg.Planner.WPMMax != 70 {
		t.Errorf("expected overridden wpm range, got %+v", cfg.Planner)
	}
	if cfg.Database.Path != "/tmp/custom.db" {
		t.Errorf("expected overridden database path, got %q", cfg.Database.Path)
	}
	if cfg.Playback.Backend != "wayland" {
		t.Errorf("expected overridden backend, got %q", cfg.Playback.Backend)
	}

	plannerCfg, err := cfg.Planner.ToPlannerConfig()
	if err != nil {
		t.Fatalf("ToPlannerConfig returned error: %v", err)
	}
	if plannerCfg.WordNavProfile != 1 {
		t.Errorf("expected compatible profile (1), got %v", plannerCfg.WordNavProfile)
	}
}

func TestLoadRejectsInvertedWPMRange(t *testing.T) {
	path := writeConfigFile(t, `
planner:
  wpm_min: 90
  wpm_max: 40
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for wpm_min > wpm_max")
	}
}

func TestLoadRejectsUnknownPlaybackBackend(t *testing.T) {
	path := writeConfigFile(t, `
playback:
  backend: quake
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unknown playback backend")
	}
}

func TestLoadRejectsBrowserBackendWithoutURLAndSelector(t *testing.T) {
	path := writeConfigFile(t, `
playback:
  backend: browser
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for browser backend missing url/selector")
	}
}

func TestLoadAcceptsBrowserBackendWithURLAndSelector(t *testing.T) {
	path := writeConfigFile(t, `
playback:
  backend: browser
  url: https://example.com/compose
  selector: "#editor"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Playback.URL != "https://example.com/compose" || cfg.Playback.Selector != "#editor" {
		t.Errorf("unexpected playback config: %+v", cfg.Playback)
	}
}

func TestLoadRejectsUnknownWordNavProfile(t *testing.T) {
	path := writeConfigFile(t, `
planner:
  word_nav_profile: firefox
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unknown word nav profile")
	}
}
