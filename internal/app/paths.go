package app

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	appDirName       = "littlelemon"
	dbFileName       = "little_lemon.db"
	vaultKeyFileName = "vault.key"
)

func DefaultDBPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName, dbFileName), nil
}

func EnsureDBDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return nil
}

// VaultKeyPath places the vault secret next to the database it protects.
func VaultKeyPath(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), vaultKeyFileName)
}
