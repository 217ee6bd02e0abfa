package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultMenuURL          = "https://raw.githubusercontent.com/Meta-Mobile-Developer-PC/Working-With-Data-API/main/capstone.json"
	DefaultImageURLTemplate = "https://github.com/Meta-Mobile-Developer-PC/Working-With-Data-API/blob/main/images/{image}?raw=true"
	DefaultSearchDebounce   = 500 * time.Millisecond
	DefaultMenuDriver       = "sqlite"
	DefaultLogLevel         = "warn"
)

// Keys of persisted settings in the app_config table.
const (
	KeyMenuURL          = "menu_url"
	KeyImageURLTemplate = "image_url_template"
	KeySearchDebounce   = "search_debounce"
	KeyMenuDriver       = "menu_driver"
	KeyMenuDSN          = "menu_dsn"
	KeyInstallID        = "install_id"
)

type Config struct {
	DBPath           string
	MenuDriver       string
	MenuDSN          string
	MenuURL          string
	ImageURLTemplate string
	SearchDebounce   time.Duration
	LogLevel         string
	VaultKey         string
}

// Load reads LITTLELEMON_* variables, after merging a .env file when one exists.
// Unset values stay empty so stored settings and defaults can fill them.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:           getEnv("LITTLELEMON_DB", ""),
		MenuDriver:       getEnv("LITTLELEMON_MENU_DRIVER", ""),
		MenuDSN:          getEnv("LITTLELEMON_MENU_DSN", ""),
		MenuURL:          getEnv("LITTLELEMON_MENU_URL", ""),
		ImageURLTemplate: getEnv("LITTLELEMON_IMAGE_URL", ""),
		LogLevel:         getEnv("LITTLELEMON_LOG_LEVEL", ""),
		VaultKey:         getEnv("LITTLELEMON_VAULT_KEY", ""),
	}
	if raw := getEnv("LITTLELEMON_SEARCH_DEBOUNCE", ""); raw != "" {
		d, err := ParseDebounce(raw)
		if err != nil {
			return nil, fmt.Errorf("LITTLELEMON_SEARCH_DEBOUNCE: %w", err)
		}
		cfg.SearchDebounce = d
	}
	return cfg, nil
}

// ApplyStored fills values still unset from app_config rows.
func (c *Config) ApplyStored(stored map[string]string) error {
	if c.MenuURL == "" {
		c.MenuURL = stored[KeyMenuURL]
	}
	if c.ImageURLTemplate == "" {
		c.ImageURLTemplate = stored[KeyImageURLTemplate]
	}
	if c.MenuDriver == "" {
		c.MenuDriver = stored[KeyMenuDriver]
	}
	if c.MenuDSN == "" {
		c.MenuDSN = stored[KeyMenuDSN]
	}
	if c.SearchDebounce == 0 && stored[KeySearchDebounce] != "" {
		d, err := ParseDebounce(stored[KeySearchDebounce])
		if err != nil {
			return fmt.Errorf("stored %s: %w", KeySearchDebounce, err)
		}
		c.SearchDebounce = d
	}
	return nil
}

func (c *Config) ApplyDefaults() {
	if c.MenuURL == "" {
		c.MenuURL = DefaultMenuURL
	}
	if c.ImageURLTemplate == "" {
		c.ImageURLTemplate = DefaultImageURLTemplate
	}
	if c.MenuDriver == "" {
		c.MenuDriver = DefaultMenuDriver
	}
	if c.SearchDebounce <= 0 {
		c.SearchDebounce = DefaultSearchDebounce
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// ParseDebounce accepts Go durations ("500ms") or bare milliseconds ("500").
func ParseDebounce(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	d, err := time.ParseDuration(raw)
	if err != nil {
		d, err = time.ParseDuration(raw + "ms")
		if err != nil {
			return 0, fmt.Errorf("invalid debounce %q (expected e.g. 500ms)", raw)
		}
	}
	if d <= 0 {
		return 0, fmt.Errorf("debounce must be > 0")
	}
	return d, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
