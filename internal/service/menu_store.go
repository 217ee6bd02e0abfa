package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/saadjs/littlelemon/internal/db"
	"github.com/saadjs/littlelemon/internal/model"
)

const (
	defaultSearchMemoTTL     = 5 * time.Minute
	defaultSearchMemoCleanup = 10 * time.Minute
	likeEscape               = "!"
)

// MenuStore is the local mirror of the remote menu. Rows are only ever
// inserted; there is no update or delete.
type MenuStore struct {
	db      *sql.DB
	dialect string
	memo    *gocache.Cache
	// unavailable is the open error of a store whose database never opened.
	unavailable error
}

func NewMenuStore(sqldb *sql.DB, driver string) (*MenuStore, error) {
	dialect := db.NormalizeDriver(driver)
	if dialect == "" {
		return nil, fmt.Errorf("unsupported menu store driver %q", driver)
	}
	return &MenuStore{db: sqldb, dialect: dialect}, nil
}

// NewUnavailableMenuStore stands in for a menu database that could not be
// opened. Every call returns openErr, so callers degrade the way they do for
// any other storage failure.
func NewUnavailableMenuStore(driver string, openErr error) *MenuStore {
	dialect := db.NormalizeDriver(driver)
	if dialect == "" {
		dialect = driver
	}
	if openErr == nil {
		openErr = fmt.Errorf("menu store unavailable")
	}
	return &MenuStore{dialect: dialect, unavailable: openErr}
}

// Available reports whether the menu database opened.
func (s *MenuStore) Available() bool { return s.unavailable == nil }

// WithSearchMemo keeps search results in process for ttl. BulkInsert flushes it.
func (s *MenuStore) WithSearchMemo(ttl time.Duration) *MenuStore {
	if ttl <= 0 {
		ttl = defaultSearchMemoTTL
	}
	s.memo = gocache.New(ttl, defaultSearchMemoCleanup)
	return s
}

func (s *MenuStore) Dialect() string { return s.dialect }

func (s *MenuStore) EnsureSchema(ctx context.Context) error {
	if s.unavailable != nil {
		return fmt.Errorf("ensure menu table: %w", s.unavailable)
	}
	if _, err := s.db.ExecContext(ctx, s.schemaSQL()); err != nil {
		return fmt.Errorf("ensure menu table: %w", err)
	}
	return nil
}

func (s *MenuStore) LoadAll(ctx context.Context) ([]model.MenuItem, error) {
	return s.query(ctx, `SELECT id, name, price, description, image FROM menu ORDER BY id`)
}

func (s *MenuStore) Count(ctx context.Context) (int, error) {
	if s.unavailable != nil {
		return 0, fmt.Errorf("count menu items: %w", s.unavailable)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM menu`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count menu items: %w", err)
	}
	return n, nil
}

// CountInvalid counts rows a fetch should never have produced.
func (s *MenuStore) CountInvalid(ctx context.Context) (int, error) {
	if s.unavailable != nil {
		return 0, fmt.Errorf("count invalid menu items: %w", s.unavailable)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM menu WHERE price < 0 OR image = ''`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count invalid menu items: %w", err)
	}
	return n, nil
}

// BulkInsert writes every item in one transaction. IDs on the input are
// ignored; the store assigns them.
func (s *MenuStore) BulkInsert(ctx context.Context, items []model.MenuItem) error {
	if s.unavailable != nil {
		return fmt.Errorf("insert menu items: %w", s.unavailable)
	}
	if len(items) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin menu insert tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, s.insertSQL())
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare menu insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range items {
		if _, err := stmt.ExecContext(ctx, item.Name, item.Price, item.Description, item.Image); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert menu item %d (%q): %w", i, item.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit menu insert tx: %w", err)
	}
	if s.memo != nil {
		s.memo.Flush()
	}
	return nil
}

// Search returns rows whose name contains substring. Case sensitivity is
// whatever LIKE does in the dialect; wildcard runes match literally.
func (s *MenuStore) Search(ctx context.Context, substring string) ([]model.MenuItem, error) {
	if substring == "" {
		return s.LoadAll(ctx)
	}
	if s.memo != nil {
		if cached, ok := s.memo.Get(substring); ok {
			return cloneMenuItems(cached.([]model.MenuItem)), nil
		}
	}
	items, err := s.query(ctx, s.searchSQL(), "%"+escapeLike(substring)+"%")
	if err != nil {
		return nil, err
	}
	if s.memo != nil {
		s.memo.SetDefault(substring, cloneMenuItems(items))
	}
	return items, nil
}

func (s *MenuStore) query(ctx context.Context, query string, args ...any) ([]model.MenuItem, error) {
	if s.unavailable != nil {
		return nil, fmt.Errorf("query menu: %w", s.unavailable)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query menu: %w", err)
	}
	defer rows.Close()

	items := make([]model.MenuItem, 0)
	for rows.Next() {
		var it model.MenuItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Price, &it.Description, &it.Image); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate menu items: %w", err)
	}
	return items, nil
}

func (s *MenuStore) schemaSQL() string {
	switch s.dialect {
	case db.DriverPostgres:
		return `CREATE TABLE IF NOT EXISTS menu (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL CHECK(name <> ''),
  price DOUBLE PRECISION NOT NULL,
  description TEXT NOT NULL,
  image TEXT NOT NULL
)`
	case db.DriverMySQL:
		return `CREATE TABLE IF NOT EXISTS menu (
  id BIGINT AUTO_INCREMENT PRIMARY KEY,
  name VARCHAR(255) NOT NULL CHECK(name <> ''),
  price DOUBLE NOT NULL,
  description TEXT NOT NULL,
  image VARCHAR(1024) NOT NULL
) ENGINE=InnoDB`
	default:
		return `CREATE TABLE IF NOT EXISTS menu (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL CHECK(name <> ''),
  price REAL NOT NULL,
  description TEXT NOT NULL,
  image TEXT NOT NULL
)`
	}
}

func (s *MenuStore) insertSQL() string {
	return fmt.Sprintf(`INSERT INTO menu (name, price, description, image) VALUES (%s, %s, %s, %s)`,
		s.ph(1), s.ph(2), s.ph(3), s.ph(4))
}

func (s *MenuStore) searchSQL() string {
	return fmt.Sprintf(`SELECT id, name, price, description, image FROM menu WHERE name LIKE %s ESCAPE '%s' ORDER BY id`,
		s.ph(1), likeEscape)
}

func (s *MenuStore) ph(i int) string {
	if s.dialect == db.DriverPostgres {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

func escapeLike(in string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return r.Replace(in)
}

func cloneMenuItems(in []model.MenuItem) []model.MenuItem {
	out := make([]model.MenuItem, len(in))
	copy(out, in)
	return out
}
