// Copyright (c) 2025 Expensetracker
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"expensetracker/cli/internal/errors"
	"expensetracker/cli/internal/models"
	"expensetracker/cli/internal/terminal"
)

var (
	loginEmail         string
	loginUsername      string
	loginPasswordStdin bool
)

// loginCmd exchanges credentials for a token pair and stores it.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email or username and password",
	Long: `The login command signs you in to the expense tracker backend. The access
and refresh tokens are kept in the configured token store (the OS keychain by
default) so later commands stay signed in. Expired access tokens are renewed
automatically.

Without --email or --username you are prompted for one. Use --password-stdin to
pipe the password in non-interactive environments.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := readCredentials(cmd, loginUsername, loginEmail, loginPasswordStdin)
		if err != nil {
			return err
		}
		return runLogin(cmd, creds)
	},
}

func readCredentials(cmd *cobra.Command, username, email string, passwordStdin bool) (models.Credentials, error) {
	creds := models.Credentials{Username: username, Email: email}

	in := bufio.NewReader(cmd.InOrStdin())
	if creds.Username == "" && creds.Email == "" {
		if passwordStdin || !terminal.IsInteractive() {
			return creds, errors.New(errors.Validation, "username or email is required")
		}
		id, err := terminal.ReadLine(in, "Email or username: ")
		if err != nil {
			return creds, err
		}
		creds.Username, creds.Email = splitIdentifier(id)
	}

	switch {
	case passwordStdin:
		pw, err := terminal.ReadSecretFrom(in)
		if err != nil {
			return creds, errors.Wrap(errors.Validation, "password is required", err)
		}
		creds.Password = pw
	case terminal.IsInteractive():
		pw, err := terminal.ReadPassword("Password: ")
		if err != nil {
			return creds, err
		}
		creds.Password = pw
	default:
		return creds, errors.New(errors.Validation, "password is required (use --password-stdin)")
	}
	return creds, nil
}

func runLogin(cmd *cobra.Command, creds models.Credentials) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	err = withSpinner("Signing in", func() error {
		return a.provider.Login(cmd.Context(), creds)
	})
	if err != nil {
		return a.presentNetwork(err, "signing in")
	}

	st := a.provider.State()
	fmt.Fprintln(cmd.OutOrStdout(), a.palette.Success.Sprintf("✅ Logged in as %s", st.User.Display()))
	return nil
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginUsername, "username", "", "Account username")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from stdin")
	rootCmd.AddCommand(loginCmd)
}
