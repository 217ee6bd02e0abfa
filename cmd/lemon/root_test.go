package lemon

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/saadjs/littlelemon/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const capstoneFixture = `{"menu":[
{"name":"Greek Salad","price":"12.99","description":"The famous greek salad","image":"greekSalad.jpg","category":"starters"},
{"name":"Bruschetta","price":"7.99","description":"Grilled bread","image":"bruschetta.jpg","category":"starters"},
{"name":"Lemon Dessert","price":"4.99","description":"Grandma's recipe","image":"lemonDessert.jpg","category":"desserts"}
]}`

func newMenuServer(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(capstoneFixture))
	}))
	t.Cleanup(ts.Close)
	t.Setenv("LITTLELEMON_MENU_URL", ts.URL)
	return ts, &hits
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := run(t, "", "--help")
	if err != nil {
		t.Fatalf("execute root help: %v", err)
	}
	if !strings.Contains(out, "lemon") {
		t.Fatalf("expected help output, got %q", out)
	}
}

func TestInitCommandIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "little_lemon.db")
	for i := 0; i < 2; i++ {
		if _, err := run(t, "", "--db", path, "init"); err != nil {
			t.Fatalf("init run %d failed: %v", i+1, err)
		}
	}
	info, err := os.Stat(filepath.Join(filepath.Dir(path), "vault.key"))
	if err != nil {
		t.Fatalf("expected vault key file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 vault key, got %v", info.Mode().Perm())
	}
}

func TestRootRoutesOnAppState(t *testing.T) {
	_, hits := newMenuServer(t)
	path := filepath.Join(t.TempDir(), "little_lemon.db")

	out, err := run(t, "", "--db", path)
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	if !strings.Contains(out, "lemon onboard") {
		t.Fatalf("expected onboarding screen, got %q", out)
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Fatalf("expected onboarding not to fetch the menu")
	}

	if _, err := run(t, "", "--db", path, "onboard", "--first-name", "Tilly"); err == nil {
		t.Fatalf("expected onboarding without email to fail")
	}
	out, err = run(t, "", "--db", path, "onboard", "--first-name", "Tilly", "--email", "tilly@example.com")
	if err != nil {
		t.Fatalf("onboard: %v", err)
	}
	if !strings.Contains(out, "Welcome, Tilly!") {
		t.Fatalf("unexpected onboard output %q", out)
	}

	out, err = run(t, "", "--db", path)
	if err != nil {
		t.Fatalf("root after onboarding: %v", err)
	}
	if !strings.Contains(out, "Welcome back, Tilly!") || !strings.Contains(out, "Greek Salad") {
		t.Fatalf("expected home screen with menu, got %q", out)
	}

	if _, err := run(t, "", "--db", path, "profile", "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	out, err = run(t, "", "--db", path)
	if err != nil {
		t.Fatalf("root after logout: %v", err)
	}
	if !strings.Contains(out, "lemon onboard") {
		t.Fatalf("expected onboarding after logout, got %q", out)
	}
}

func TestMenuListFetchesOnce(t *testing.T) {
	_, hits := newMenuServer(t)
	path := filepath.Join(t.TempDir(), "little_lemon.db")

	for i := 0; i < 2; i++ {
		out, err := run(t, "", "--db", path, "menu", "list")
		if err != nil {
			t.Fatalf("menu list run %d: %v", i+1, err)
		}
		if !strings.Contains(out, "Lemon Dessert") || !strings.Contains(out, "$4.99") {
			t.Fatalf("expected menu rows, got %q", out)
		}
	}
	if got := atomic.LoadInt32(hits); got != 1 {
		t.Fatalf("expected one remote fetch, got %d", got)
	}
}

func TestMenuSearchAndJSON(t *testing.T) {
	newMenuServer(t)
	path := filepath.Join(t.TempDir(), "little_lemon.db")

	out, err := run(t, "", "--db", path, "menu", "search", "brus")
	if err != nil {
		t.Fatalf("menu search: %v", err)
	}
	if !strings.Contains(out, "Bruschetta") || strings.Contains(out, "Greek Salad") {
		t.Fatalf("expected only Bruschetta, got %q", out)
	}

	out, err = run(t, "", "--db", path, "menu", "search", "salad", "--json")
	if err != nil {
		t.Fatalf("menu search json: %v", err)
	}
	if !strings.Contains(out, `"image_url"`) || !strings.Contains(out, "greekSalad.jpg?raw=true") {
		t.Fatalf("expected json with image url, got %q", out)
	}
}

func TestMenuBrowseShowsOnlyLastPhrase(t *testing.T) {
	newMenuServer(t)
	t.Setenv("LITTLELEMON_SEARCH_DEBOUNCE", "10s")
	path := filepath.Join(t.TempDir(), "little_lemon.db")

	out, err := run(t, "l\nle\nlemon\n", "--db", path, "menu", "browse")
	if err != nil {
		t.Fatalf("menu browse: %v", err)
	}
	if strings.Count(out, "Results for") != 1 || !strings.Contains(out, `Results for "lemon"`) {
		t.Fatalf("expected a single result block for lemon, got %q", out)
	}
}

func TestProfileSetShowAndConfirmation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "little_lemon.db")

	if _, err := run(t, "", "--db", path, "profile", "set"); err == nil {
		t.Fatalf("expected set without flags to fail")
	}
	out, err := run(t, "", "--db", path, "profile", "set", "--first-name", "Tilly", "--last-name", "Doe", "--phone", "(555) 123-4567")
	if err != nil {
		t.Fatalf("profile set: %v", err)
	}
	if !strings.Contains(out, "Profile saved!") {
		t.Fatalf("expected save confirmation, got %q", out)
	}

	out, err = run(t, "", "--db", path, "profile", "show")
	if err != nil {
		t.Fatalf("profile show: %v", err)
	}
	for _, want := range []string{"Avatar: [TD]", "First name: Tilly", "Phone number: (555) 123-4567", "[x] Newsletter"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in profile output, got %q", want, out)
		}
	}
}

func TestProfileAvatarKeptUntilRemoved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "little_lemon.db")

	if _, err := run(t, "", "--db", path, "profile", "set", "--first-name", "Tilly", "--avatar", "file:///tmp/me.png"); err != nil {
		t.Fatalf("profile set avatar: %v", err)
	}
	if _, err := run(t, "", "--db", path, "profile", "set", "--last-name", "Doe"); err != nil {
		t.Fatalf("profile set last name: %v", err)
	}
	out, err := run(t, "", "--db", path, "profile", "show")
	if err != nil {
		t.Fatalf("profile show: %v", err)
	}
	if !strings.Contains(out, "file:///tmp/me.png") {
		t.Fatalf("expected avatar kept after unrelated update, got %q", out)
	}

	if _, err := run(t, "", "--db", path, "profile", "set", "--avatar", "x.png", "--remove-avatar"); err == nil {
		t.Fatalf("expected --avatar with --remove-avatar to fail")
	}
	out, err = run(t, "", "--db", path, "profile", "set", "--remove-avatar")
	if err != nil {
		t.Fatalf("profile remove avatar: %v", err)
	}
	if !strings.Contains(out, "Profile saved!") {
		t.Fatalf("expected save confirmation, got %q", out)
	}
	out, err = run(t, "", "--db", path, "profile", "show")
	if err != nil {
		t.Fatalf("profile show: %v", err)
	}
	if strings.Contains(out, "file:///tmp/me.png") || !strings.Contains(out, "Avatar: [TD]") {
		t.Fatalf("expected initials after avatar removal, got %q", out)
	}
}

func TestUnreachableMenuDatabaseDegrades(t *testing.T) {
	t.Setenv("LITTLELEMON_MENU_DRIVER", "pgx")
	t.Setenv("LITTLELEMON_MENU_DSN", "postgres://u:p@127.0.0.1:1/none?connect_timeout=2")
	path := filepath.Join(t.TempDir(), "little_lemon.db")

	if _, err := run(t, "", "--db", path, "init"); err != nil {
		t.Fatalf("init with unreachable menu database: %v", err)
	}
	if _, err := run(t, "", "--db", path, "profile", "set", "--first-name", "Tilly"); err != nil {
		t.Fatalf("profile set with unreachable menu database: %v", err)
	}
	out, err := run(t, "", "--db", path, "profile", "show")
	if err != nil {
		t.Fatalf("profile show with unreachable menu database: %v", err)
	}
	if !strings.Contains(out, "First name: Tilly") {
		t.Fatalf("expected stored profile, got %q", out)
	}

	out, err = run(t, "", "--db", path, "menu", "list")
	if err != nil {
		t.Fatalf("menu list with unreachable menu database: %v", err)
	}
	if !strings.Contains(out, "No dishes found") || !strings.Contains(out, "menu.open") {
		t.Fatalf("expected logged open failure and empty menu, got %q", out)
	}

	out, err = run(t, "", "--db", path, "menu", "search", "salad")
	if err != nil {
		t.Fatalf("menu search with unreachable menu database: %v", err)
	}
	if !strings.Contains(out, "No dishes found") {
		t.Fatalf("expected empty search, got %q", out)
	}

	out, err = run(t, "", "--db", path, "status")
	if err != nil {
		t.Fatalf("status with unreachable menu database: %v", err)
	}
	if !strings.Contains(out, "Menu items: unavailable") {
		t.Fatalf("expected unavailable menu in status, got %q", out)
	}
}

func TestConfigSetGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "little_lemon.db")

	if _, err := run(t, "", "--db", path, "config", "set", "search_debounce", "soon"); err == nil {
		t.Fatalf("expected invalid debounce to be rejected")
	}
	if _, err := run(t, "", "--db", path, "config", "set", "search_debounce", "300ms"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	out, err := run(t, "", "--db", path, "config", "get", "search_debounce")
	if err != nil {
		t.Fatalf("config get: %v", err)
	}
	if strings.TrimSpace(out) != "300ms" {
		t.Fatalf("expected stored debounce, got %q", out)
	}
	out, err = run(t, "", "--db", path, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Search debounce: 300ms") || !strings.Contains(out, "Profile store: encrypted") {
		t.Fatalf("unexpected status output %q", out)
	}
}

func TestResolveDBPathPrecedence(t *testing.T) {
	t.Cleanup(func() { dbPath = "" })
	cfg := &config.Config{DBPath: " /env/little_lemon.db "}

	dbPath = "/flag/little_lemon.db"
	if got, err := resolveDBPath(cfg); err != nil || got != "/flag/little_lemon.db" {
		t.Fatalf("expected flag path, got %q (%v)", got, err)
	}
	dbPath = ""
	if got, err := resolveDBPath(cfg); err != nil || got != "/env/little_lemon.db" {
		t.Fatalf("expected env path, got %q (%v)", got, err)
	}
}

func TestDefaultDBPathErrorIsReturned(t *testing.T) {
	t.Setenv("LITTLELEMON_DB", "")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "")

	if _, err := resolveDBPath(&config.Config{}); err == nil {
		t.Fatalf("expected an error without a config dir")
	}
	if _, err := run(t, "", "status"); err == nil || !strings.Contains(err.Error(), "config dir") {
		t.Fatalf("expected status to report the config dir error, got %v", err)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "lemon dev") {
		t.Fatalf("unexpected version output %q", out)
	}
}
