// Package config loads fnloc configuration from TOML, YAML, or JSON files.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for fnloc.
type Config struct {
	Analysis   AnalysisConfig  `koanf:"analysis"`
	Thresholds ThresholdConfig `koanf:"thresholds"`
	Exclude    ExcludeConfig   `koanf:"exclude"`
	Cache      CacheConfig     `koanf:"cache"`
	Output     OutputConfig    `koanf:"output"`
}

// AnalysisConfig controls how the engine runs.
type AnalysisConfig struct {
	Workers int `koanf:"workers"` // 0 means 2x NumCPU
}

// ThresholdConfig defines the limits beyond which functions are flagged.
type ThresholdConfig struct {
	Cyclomatic int `koanf:"cyclomatic"`
	Nesting    int `koanf:"nesting"`
}

// ExcludeConfig defines file exclusion patterns (gitignore syntax).
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns"`
	Dirs      []string `koanf:"dirs"`
	Gitignore bool     `koanf:"gitignore"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
	TTL     int    `koanf:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format"` // text, json, csv, markdown
	Color  bool   `koanf:"color"`
}

// Default returns a config with sensible defaults.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Workers: 0,
		},
		Thresholds: ThresholdConfig{
			Cyclomatic: 10,
			Nesting:    4,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{},
			Dirs: []string{
				"target",
				".git",
				".fnloc",
				"vendor",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".fnloc/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Load loads configuration from a file, layered over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries standard locations or returns defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"fnloc.toml",
		"fnloc.yaml",
		"fnloc.yml",
		"fnloc.json",
		".fnloc.toml",
		".fnloc.yaml",
		".fnloc.yml",
		".fnloc.json",
	}

	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			if cfg, err := Load(name); err == nil {
				return cfg
			}
		}
	}

	return Default()
}
