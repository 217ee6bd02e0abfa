package lemon

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/littlelemon/internal/service"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *appEnv) error {
			report, err := service.RunDoctor(cmd.Context(), a.menu, a.profiles, doctorFix)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if report.MenuError != "" {
				fmt.Fprintf(out, "Menu store: unavailable (%s)\n", report.MenuError)
			} else {
				fmt.Fprintf(out, "Invalid menu rows: %d\n", report.InvalidMenuRows)
			}
			fmt.Fprintf(out, "Unreadable profile entries: %d", len(report.UnreadableVaultEntries))
			if len(report.UnreadableVaultEntries) > 0 {
				fmt.Fprintf(out, " (%s)", strings.Join(report.UnreadableVaultEntries, ", "))
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Incomplete onboarding: %t\n", report.IncompleteOnboarding)
			if doctorFix {
				fmt.Fprintf(out, "Removed profile entries: %d\n", report.RemovedVaultEntries)
				// Re-check after fixes so exit status reflects final state.
				report, err = service.RunDoctor(cmd.Context(), a.menu, a.profiles, false)
				if err != nil {
					return err
				}
			}
			if !report.Healthy() {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Remove unreadable profile entries and reset broken onboarding")
}
