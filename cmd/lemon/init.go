package lemon

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the local database and menu table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *appEnv) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized Little Lemon database at %s\n", a.dbPath)
			if err := a.menu.EnsureSchema(cmd.Context()); err != nil {
				a.log.Error("menu.schema", "failed to create menu table", err)
				fmt.Fprintf(cmd.ErrOrStderr(), "menu store unavailable (%s); the menu will be empty\n", a.menu.Dialect())
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
