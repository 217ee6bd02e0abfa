package lemon

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/littlelemon/internal/model"
)

var (
	profileJSON         bool
	profileFirstName    string
	profileLastName     string
	profileEmail        string
	profilePhone        string
	profileAvatar       string
	profileRemoveAvatar bool
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show, edit, or clear your personal information",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *appEnv) error {
			p := a.profiles.Load(cmd.Context())
			if profileJSON {
				b, err := json.MarshalIndent(p, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			printProfile(cmd, p)
			return nil
		})
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update profile fields; unset flags keep their stored value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if profileRemoveAvatar && cmd.Flags().Changed("avatar") {
			return fmt.Errorf("--avatar and --remove-avatar are mutually exclusive")
		}
		return withApp(cmd, func(a *appEnv) error {
			p := a.profiles.Load(cmd.Context())
			updates := 0
			for flag, dst := range map[string]*string{
				"first-name": &p.FirstName,
				"last-name":  &p.LastName,
				"email":      &p.Email,
				"phone":      &p.PhoneNumber,
				"avatar":     &p.Avatar,
			} {
				if cmd.Flags().Changed(flag) {
					v, _ := cmd.Flags().GetString(flag)
					*dst = v
					updates++
				}
			}
			if profileRemoveAvatar {
				updates++
			}
			if updates == 0 {
				return fmt.Errorf("set at least one flag")
			}
			save := a.profiles.Save
			if profileRemoveAvatar {
				save = a.profiles.SaveRemovingAvatar
			}
			if err := save(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile saved! Your changes have been saved successfully.")
			return nil
		})
	},
}

var profileLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored profile and return to onboarding",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *appEnv) error {
			if err := a.profiles.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out. Run `lemon onboard` to start again.")
			return nil
		})
	},
}

func printProfile(cmd *cobra.Command, p model.Profile) {
	out := cmd.OutOrStdout()
	if p.HasAvatar() {
		fmt.Fprintf(out, "Avatar: %s\n", p.Avatar)
	} else if initials := p.Initials(); initials != "" {
		fmt.Fprintf(out, "Avatar: [%s]\n", initials)
	} else {
		fmt.Fprintln(out, "Avatar: none")
	}
	fmt.Fprintf(out, "First name: %s\n", p.FirstName)
	fmt.Fprintf(out, "Last name: %s\n", p.LastName)
	fmt.Fprintf(out, "Email: %s\n", p.Email)
	fmt.Fprintf(out, "Phone number: %s\n", p.FormattedPhone())
	fmt.Fprintln(out, "Email notifications:")
	n := p.Notifications
	fmt.Fprintf(out, "  [%s] Order statuses\n", check(n.OrderStatuses))
	fmt.Fprintf(out, "  [%s] Password changes\n", check(n.PasswordChanges))
	fmt.Fprintf(out, "  [%s] Special offers\n", check(n.SpecialOffers))
	fmt.Fprintf(out, "  [%s] Newsletter\n", check(n.Newsletter))
}

func check(v bool) string {
	if v {
		return "x"
	}
	return " "
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd, profileSetCmd, profileLogoutCmd)

	profileShowCmd.Flags().BoolVar(&profileJSON, "json", false, "Output JSON")

	profileSetCmd.Flags().StringVar(&profileFirstName, "first-name", "", "First name")
	profileSetCmd.Flags().StringVar(&profileLastName, "last-name", "", "Last name")
	profileSetCmd.Flags().StringVar(&profileEmail, "email", "", "Email address")
	profileSetCmd.Flags().StringVar(&profilePhone, "phone", "", "Phone number, e.g. (555) 123-4567")
	profileSetCmd.Flags().StringVar(&profileAvatar, "avatar", "", "Avatar image path or URI")
	profileSetCmd.Flags().BoolVar(&profileRemoveAvatar, "remove-avatar", false, "Remove the stored avatar")
}
