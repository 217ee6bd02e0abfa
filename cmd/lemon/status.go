package lemon

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show app state, storage, and menu mirror status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *appEnv) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database: %s\n", a.dbPath)
			fmt.Fprintf(out, "State: %s\n", a.profiles.ResolveAppState(ctx))
			fmt.Fprintf(out, "Menu driver: %s\n", a.menu.Dialect())
			n, err := menuCount(cmd, a)
			if err != nil {
				a.log.Error("menu.count", "failed to count menu items", err)
				fmt.Fprintln(out, "Menu items: unavailable")
			} else {
				fmt.Fprintf(out, "Menu items: %d\n", n)
			}
			fmt.Fprintf(out, "Menu URL: %s\n", a.cfg.MenuURL)
			fmt.Fprintf(out, "Search debounce: %s\n", a.cfg.SearchDebounce)
			if a.vault.Encrypted() {
				fmt.Fprintln(out, "Profile store: encrypted")
			} else {
				fmt.Fprintln(out, "Profile store: plaintext")
			}
			return nil
		})
	},
}

func menuCount(cmd *cobra.Command, a *appEnv) (int, error) {
	if err := a.menu.EnsureSchema(cmd.Context()); err != nil {
		return 0, err
	}
	return a.menu.Count(cmd.Context())
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
