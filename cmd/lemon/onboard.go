package lemon

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	onboardFirstName string
	onboardEmail     string
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Complete onboarding with your first name and email",
	Example: `  lemon onboard --first-name Tilly --email tilly@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *appEnv) error {
			if err := a.profiles.CompleteOnboarding(cmd.Context(), onboardFirstName, onboardEmail); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s! Run `lemon` to see the menu.\n", onboardFirstName)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(onboardCmd)
	onboardCmd.Flags().StringVar(&onboardFirstName, "first-name", "", "First name")
	onboardCmd.Flags().StringVar(&onboardEmail, "email", "", "Email address")
}
