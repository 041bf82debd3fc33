// Package config loads the atlas server configuration from atlas.yaml.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Seed drives deterministic star-system synthesis for sectors with
	// no stored data.
	Seed            int64 `yaml:"seed"`
	GenerateMissing bool  `yaml:"generate_missing"`

	// MaxRangeHexes bounds the size of any single viewport/range
	// request before it reaches the coordinate enumeration.
	MaxRangeHexes int `yaml:"max_range_hexes"`

	// MaxCachedSectors bounds the in-memory sector cache.
	MaxCachedSectors int `yaml:"max_cached_sectors"`

	// Static app serving (dev server behavior): anything whose path
	// does not end in one of AllowedExtensions falls back to
	// index.html.
	StaticDir         string   `yaml:"static_dir"`
	AllowedExtensions []string `yaml:"allowed_extensions"`

	// QueryLogDir enables compressed JSONL query logging when set.
	QueryLogDir string `yaml:"query_log_dir"`
}

func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("atlas.yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("atlas.yaml: %w", err)
	}
	return cfg, nil
}

func Defaults() Config {
	return Config{
		Seed:              1337,
		GenerateMissing:   true,
		MaxRangeHexes:     16 * 32 * 40, // sixteen full sectors
		MaxCachedSectors:  256,
		StaticDir:         "./webapp",
		AllowedExtensions: []string{"js", "jpg", "png", "json"},
	}
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	if c.MaxRangeHexes <= 0 {
		c.MaxRangeHexes = Defaults().MaxRangeHexes
	}
	if c.MaxCachedSectors <= 0 {
		c.MaxCachedSectors = Defaults().MaxCachedSectors
	}
	if len(c.AllowedExtensions) == 0 {
		c.AllowedExtensions = Defaults().AllowedExtensions
	}
	for i, ext := range c.AllowedExtensions {
		c.AllowedExtensions[i] = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	}
}

func (c Config) Validate() error {
	if c.MaxRangeHexes < 32*40 {
		return fmt.Errorf("max_range_hexes must cover at least one sector (%d)", 32*40)
	}
	if c.MaxCachedSectors < 1 {
		return fmt.Errorf("max_cached_sectors must be >= 1")
	}
	for _, ext := range c.AllowedExtensions {
		if ext == "" {
			return fmt.Errorf("allowed_extensions must not contain empty entries")
		}
	}
	return nil
}

// ServesExtension reports whether a request path ends in one of the
// directly served file extensions; everything else is routed to the
// single-page app's index.html.
func (c Config) ServesExtension(path string) bool {
	for _, ext := range c.AllowedExtensions {
		if strings.HasSuffix(path, "."+ext) {
			return true
		}
	}
	return false
}
