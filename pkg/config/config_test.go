package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Thresholds.Cyclomatic != 10 {
		t.Errorf("Thresholds.Cyclomatic = %d, want 10", cfg.Thresholds.Cyclomatic)
	}
	if cfg.Thresholds.Nesting != 4 {
		t.Errorf("Thresholds.Nesting = %d, want 4", cfg.Thresholds.Nesting)
	}
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled = false, want true")
	}
	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %q, want text", cfg.Output.Format)
	}
	if !cfg.Exclude.Gitignore {
		t.Error("Exclude.Gitignore = false, want true")
	}

	var hasTarget bool
	for _, d := range cfg.Exclude.Dirs {
		if d == "target" {
			hasTarget = true
		}
	}
	if !hasTarget {
		t.Error("Exclude.Dirs should contain target")
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeConfig(t, "fnloc.toml", `
[analysis]
workers = 8

[thresholds]
cyclomatic = 15

[output]
format = "json"
color = false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Analysis.Workers != 8 {
		t.Errorf("Analysis.Workers = %d, want 8", cfg.Analysis.Workers)
	}
	if cfg.Thresholds.Cyclomatic != 15 {
		t.Errorf("Thresholds.Cyclomatic = %d, want 15", cfg.Thresholds.Cyclomatic)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %q, want json", cfg.Output.Format)
	}
	if cfg.Output.Color {
		t.Error("Output.Color = true, want false")
	}
	// Untouched sections keep their defaults.
	if cfg.Thresholds.Nesting != 4 {
		t.Errorf("Thresholds.Nesting = %d, want default 4", cfg.Thresholds.Nesting)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "fnloc.yaml", `
exclude:
  patterns:
    - "*_generated.rs"
  gitignore: false
cache:
  enabled: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Exclude.Patterns) != 1 || cfg.Exclude.Patterns[0] != "*_generated.rs" {
		t.Errorf("Exclude.Patterns = %v", cfg.Exclude.Patterns)
	}
	if cfg.Exclude.Gitignore {
		t.Error("Exclude.Gitignore = true, want false")
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled = true, want false")
	}
}

func TestLoad_JSON(t *testing.T) {
	path := writeConfig(t, "fnloc.json", `{"thresholds": {"nesting": 6}}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Thresholds.Nesting != 6 {
		t.Errorf("Thresholds.Nesting = %d, want 6", cfg.Thresholds.Nesting)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := writeConfig(t, "fnloc.toml", "not [valid toml")
	if _, err := Load(path); err == nil {
		t.Error("expected an error for invalid TOML")
	}
}

func TestLoadOrDefault_NoFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}

	cfg := LoadOrDefault()
	if cfg.Thresholds.Cyclomatic != 10 {
		t.Errorf("Thresholds.Cyclomatic = %d, want default 10", cfg.Thresholds.Cyclomatic)
	}
}
