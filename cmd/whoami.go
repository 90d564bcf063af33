package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"expensetracker/cli/internal/errors"
)

// whoamiCmd verifies the stored session against the backend and shows the
// signed-in user.
var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Aliases: []string{"me"},
	Short:   "Show the signed-in account",
	Long: `The whoami command checks the stored session with the backend and shows
the account it belongs to. An expired access token is renewed on the way; a
session that cannot be renewed is cleared.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		out := cmd.OutOrStdout()
		err = withSpinner("Checking session", func() error {
			return a.provider.Mount(cmd.Context())
		})
		if err != nil && !errors.Is(err, errors.SessionExpired) {
			return a.presentNetwork(err, "checking the session")
		}

		st := a.provider.State()
		if !st.IsAuthenticated {
			if err == nil {
				fmt.Fprintln(out, "🔒 You're not logged in yet!")
				fmt.Fprintln(out, a.palette.Muted.Sprint("   Run 'expensetracker login' to get started."))
			}
			return nil
		}

		fmt.Fprintf(out, "👤 Current user: %s\n", a.palette.Accent.Sprint(st.User.Display()))
		if st.User.Username != "" && st.User.Email != "" {
			fmt.Fprintln(out, a.palette.Muted.Sprintf("   username %s", st.User.Username))
		}

		pair, err := a.store.Get(cmd.Context())
		if err == nil {
			if exp, ok := pair.AccessExpiry(); ok {
				fmt.Fprintln(out, a.palette.Muted.Sprintf("   access token expires in %s", time.Until(exp).Round(time.Second)))
			}
			if !pair.Complete() {
				fmt.Fprintln(out, a.palette.Warning.Sprint("   no refresh token stored; you will need to log in again when the access token expires"))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
