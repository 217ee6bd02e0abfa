package config

import (
	"testing"
	"time"
)

func TestLoadReadsEnv(t *testing.T) {
	t.Setenv("LITTLELEMON_MENU_URL", "http://example.test/menu.json")
	t.Setenv("LITTLELEMON_SEARCH_DEBOUNCE", "250ms")
	t.Setenv("LITTLELEMON_MENU_DRIVER", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MenuURL != "http://example.test/menu.json" {
		t.Fatalf("expected env menu url, got %q", cfg.MenuURL)
	}
	if cfg.SearchDebounce != 250*time.Millisecond {
		t.Fatalf("expected 250ms debounce, got %s", cfg.SearchDebounce)
	}
	if cfg.MenuDriver != "" {
		t.Fatalf("expected unset driver to stay empty, got %q", cfg.MenuDriver)
	}
}

func TestLoadRejectsBadDebounce(t *testing.T) {
	t.Setenv("LITTLELEMON_SEARCH_DEBOUNCE", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected invalid debounce to fail")
	}
}

func TestResolutionOrderEnvStoredDefault(t *testing.T) {
	cfg := &Config{MenuURL: "http://env"}
	err := cfg.ApplyStored(map[string]string{
		KeyMenuURL:          "http://stored",
		KeyImageURLTemplate: "http://img/{image}",
		KeySearchDebounce:   "750",
	})
	if err != nil {
		t.Fatalf("apply stored: %v", err)
	}
	cfg.ApplyDefaults()

	if cfg.MenuURL != "http://env" {
		t.Fatalf("expected env to win over stored, got %q", cfg.MenuURL)
	}
	if cfg.ImageURLTemplate != "http://img/{image}" {
		t.Fatalf("expected stored image template, got %q", cfg.ImageURLTemplate)
	}
	if cfg.SearchDebounce != 750*time.Millisecond {
		t.Fatalf("expected stored debounce, got %s", cfg.SearchDebounce)
	}
	if cfg.MenuDriver != DefaultMenuDriver || cfg.LogLevel != DefaultLogLevel {
		t.Fatalf("expected defaults for driver/log level, got %q/%q", cfg.MenuDriver, cfg.LogLevel)
	}
}

func TestParseDebounce(t *testing.T) {
	if d, err := ParseDebounce("500"); err != nil || d != DefaultSearchDebounce {
		t.Fatalf("expected bare millis to parse, got %s %v", d, err)
	}
	if _, err := ParseDebounce("0s"); err == nil {
		t.Fatalf("expected zero debounce to fail")
	}
}
