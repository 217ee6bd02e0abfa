package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/saadjs/littlelemon/internal/config"
	"github.com/saadjs/littlelemon/internal/db"
)

// SettableConfigKeys are the app_config rows `lemon config set` may write.
var SettableConfigKeys = []string{
	config.KeyMenuURL,
	config.KeyImageURLTemplate,
	config.KeySearchDebounce,
	config.KeyMenuDriver,
	config.KeyMenuDSN,
}

func ValidateConfigValue(key, value string) error {
	key = normalizeConfigKey(key)
	value = strings.TrimSpace(value)
	switch key {
	case config.KeyMenuURL:
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s must be an http(s) url", key)
		}
	case config.KeyImageURLTemplate:
		if value == "" {
			return fmt.Errorf("%s is required", key)
		}
	case config.KeySearchDebounce:
		if _, err := config.ParseDebounce(value); err != nil {
			return err
		}
	case config.KeyMenuDriver:
		if db.NormalizeDriver(value) == "" {
			return fmt.Errorf("unsupported menu driver %q (use sqlite, pgx, or mysql)", value)
		}
	case config.KeyMenuDSN:
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func SetConfig(db *sql.DB, key, value string) error {
	key = normalizeConfigKey(key)
	if key == "" {
		return fmt.Errorf("config key is required")
	}
	_, err := db.Exec(`
INSERT INTO app_config(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}

func GetConfig(db *sql.DB, key string) (string, bool, error) {
	key = normalizeConfigKey(key)
	if key == "" {
		return "", false, fmt.Errorf("config key is required")
	}
	var value string
	err := db.QueryRow(`SELECT value FROM app_config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get config %q: %w", key, err)
	}
	return value, true, nil
}

func ListConfig(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM app_config ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list config: %w", err)
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate config: %w", err)
	}
	return out, nil
}

// EnsureInstallID returns the installation id, generating it on first use.
// It salts the vault key, so it must never change once written.
func EnsureInstallID(ctx context.Context, db *sql.DB) (string, error) {
	id := uuid.NewString()
	if _, err := db.ExecContext(ctx, `INSERT INTO app_config(key, value, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP) ON CONFLICT(key) DO NOTHING`,
		config.KeyInstallID, id); err != nil {
		return "", fmt.Errorf("store install id: %w", err)
	}
	var stored string
	if err := db.QueryRowContext(ctx, `SELECT value FROM app_config WHERE key = ?`, config.KeyInstallID).Scan(&stored); err != nil {
		return "", fmt.Errorf("read install id: %w", err)
	}
	return stored, nil
}
