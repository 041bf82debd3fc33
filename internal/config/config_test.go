package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Seed != 1337 {
		t.Fatalf("default seed: %d", cfg.Seed)
	}
	if cfg.MaxRangeHexes != 16*32*40 {
		t.Fatalf("default max_range_hexes: %d", cfg.MaxRangeHexes)
	}
	if !cfg.GenerateMissing {
		t.Fatalf("generation should default on")
	}
}

func TestLoad_YAMLOverridesAndNormalize(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "atlas.yaml")
	body := []byte("seed: 42\nmax_range_hexes: 2560\nallowed_extensions: [\".JS\", \"png \"]\n")
	if err := os.WriteFile(p, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Seed != 42 || cfg.MaxRangeHexes != 2560 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.AllowedExtensions[0] != "js" || cfg.AllowedExtensions[1] != "png" {
		t.Fatalf("extensions not normalized: %v", cfg.AllowedExtensions)
	}
	// Zero fields fall back to defaults.
	if cfg.MaxCachedSectors != 256 {
		t.Fatalf("max_cached_sectors default: %d", cfg.MaxCachedSectors)
	}
}

func TestValidate_RejectsTinyRange(t *testing.T) {
	cfg := Defaults()
	cfg.MaxRangeHexes = 100
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected max_range_hexes below one sector to be rejected")
	}
}

func TestServesExtension(t *testing.T) {
	cfg := Defaults()
	if !cfg.ServesExtension("/app/main.js") {
		t.Fatalf("js should be served directly")
	}
	if cfg.ServesExtension("/sector/0/0") {
		t.Fatalf("SPA routes should fall back to index.html")
	}
}
