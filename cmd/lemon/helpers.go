package lemon

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/saadjs/littlelemon/internal/app"
	"github.com/saadjs/littlelemon/internal/config"
	"github.com/saadjs/littlelemon/internal/db"
	"github.com/saadjs/littlelemon/internal/logger"
	"github.com/saadjs/littlelemon/internal/model"
	"github.com/saadjs/littlelemon/internal/service"
	"github.com/saadjs/littlelemon/internal/vault"
)

// appEnv is everything one command invocation needs, opened by withApp.
type appEnv struct {
	cfg      *config.Config
	dbPath   string
	sqldb    *sql.DB
	log      *logger.Logger
	vault    *vault.Store
	menu     *service.MenuStore
	catalog  *service.MenuCatalog
	profiles *service.ProfileStore
}

func withDB(run func(*sql.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	path, err := resolveDBPath(cfg)
	if err != nil {
		return err
	}
	return withDBAt(path, run)
}

func withDBAt(path string, run func(*sql.DB) error) error {
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.Open(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		return err
	}
	return run(sqldb)
}

func withApp(cmd *cobra.Command, run func(*appEnv) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	path, err := resolveDBPath(cfg)
	if err != nil {
		return err
	}
	cfg.DBPath = path
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return withDBAt(path, func(sqldb *sql.DB) error {
		stored, err := service.ListConfig(sqldb)
		if err != nil {
			return err
		}
		if err := cfg.ApplyStored(stored); err != nil {
			return err
		}
		cfg.ApplyDefaults()

		log := logger.New("lemon", cmd.ErrOrStderr(), cfg.LogLevel).WithRequestID(uuid.NewString())

		v, err := openVault(cmd, sqldb, cfg, path)
		if err != nil {
			return err
		}

		menu, closeMenu, err := openMenuStore(sqldb, cfg, log)
		if err != nil {
			return err
		}
		defer closeMenu()

		log.Debug("app.open", fmt.Sprintf("db=%s menu_driver=%s vault_encrypted=%t", path, menu.Dialect(), v.Encrypted()))
		return run(&appEnv{
			cfg:    cfg,
			dbPath: path,
			sqldb:  sqldb,
			log:    log,
			vault:  v,
			menu:   menu,
			catalog: &service.MenuCatalog{
				Store:   menu,
				Fetcher: service.NewRemoteMenuFetcher(cfg.MenuURL, nil),
				Log:     log,
			},
			profiles: &service.ProfileStore{Vault: v, Log: log},
		})
	})
}

// openMenuStore shares the local database unless another driver or DSN is
// configured. A menu database that fails to open is logged and replaced by
// an unavailable store, so commands that never touch the menu still run.
func openMenuStore(local *sql.DB, cfg *config.Config, log *logger.Logger) (*service.MenuStore, func(), error) {
	noop := func() {}
	if db.NormalizeDriver(cfg.MenuDriver) == db.DriverSQLite && cfg.MenuDSN == "" {
		menu, err := service.NewMenuStore(local, cfg.MenuDriver)
		if err != nil {
			return nil, noop, err
		}
		return menu.WithSearchMemo(0), noop, nil
	}
	menuDB, err := db.OpenDriver(cfg.MenuDriver, cfg.MenuDSN)
	if err != nil {
		log.Error("menu.open", "failed to open menu database", err)
		return service.NewUnavailableMenuStore(cfg.MenuDriver, err), noop, nil
	}
	menu, err := service.NewMenuStore(menuDB, cfg.MenuDriver)
	if err != nil {
		_ = menuDB.Close()
		return nil, noop, err
	}
	return menu.WithSearchMemo(0), func() { _ = menuDB.Close() }, nil
}

func openVault(cmd *cobra.Command, sqldb *sql.DB, cfg *config.Config, path string) (*vault.Store, error) {
	installID, err := service.EnsureInstallID(cmd.Context(), sqldb)
	if err != nil {
		return nil, err
	}
	secret := []byte(cfg.VaultKey)
	if len(secret) == 0 {
		secret, err = app.LoadOrCreateSecret(app.VaultKeyPath(path))
		if err != nil {
			return nil, err
		}
	}
	key, err := vault.DeriveKey(secret, []byte(installID))
	if err != nil {
		return nil, err
	}
	return vault.New(sqldb, key)
}

// resolveDBPath applies flag > env > default.
func resolveDBPath(cfg *config.Config) (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if v := strings.TrimSpace(cfg.DBPath); v != "" {
		return v, nil
	}
	return app.DefaultDBPath()
}

func printMenu(cmd *cobra.Command, items []model.MenuItem, imageTemplate string, withImages bool) {
	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(out, "No dishes found")
		return
	}
	fmt.Fprintln(out, "ID\tDISH\tPRICE\tDESCRIPTION")
	for _, it := range items {
		fmt.Fprintf(out, "%d\t%s\t$%.2f\t%s\n", it.ID, it.Name, it.Price, it.Description)
		if withImages {
			fmt.Fprintf(out, "\timage: %s\n", service.ImageURL(imageTemplate, it.Image))
		}
	}
}
