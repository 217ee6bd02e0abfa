package lemon

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/saadjs/littlelemon/internal/model"
	"github.com/saadjs/littlelemon/internal/service"
)

var (
	dbPath   string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "lemon",
	Short: "lemon browses the Little Lemon menu from your terminal",
	Long: "lemon mirrors the Little Lemon menu into a local database, searches it, and keeps your profile in an encrypted local store.\n\n" +
		"Run without a subcommand to open the start screen: onboarding on a fresh install, the menu afterwards.",
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *appEnv) error {
			switch a.profiles.ResolveAppState(cmd.Context()) {
			case model.AppStateHome:
				return showHome(cmd, a)
			default:
				showOnboarding(cmd)
				return nil
			}
		})
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default warn)")
}

func showOnboarding(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Let us get to know you")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Little Lemon is a family-owned Mediterranean restaurant.")
	fmt.Fprintln(out, "Finish onboarding to see the menu:")
	fmt.Fprintln(out, "  lemon onboard --first-name NAME --email EMAIL")
}

func showHome(cmd *cobra.Command, a *appEnv) error {
	p := a.profiles.Load(cmd.Context())
	if p.FirstName != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Welcome back, %s!\n\n", p.FirstName)
	}
	items, source := a.catalog.Init(cmd.Context())
	printMenu(cmd, items, a.cfg.ImageURLTemplate, false)
	if source == service.MenuSourceEmpty {
		fmt.Fprintln(cmd.ErrOrStderr(), "menu unavailable; check your connection and try again")
	}
	return nil
}
