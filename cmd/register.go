// Copyright (c) 2025 Expensetracker
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"expensetracker/cli/internal/errors"
	"expensetracker/cli/internal/models"
)

var (
	registerEmail         string
	registerUsername      string
	registerPasswordStdin bool
	registerThenLogin     bool
)

// registerCmd creates an account. It does not sign in unless --login is set.
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long: `The register command creates an account on the expense tracker backend.
Registration does not sign you in; pass --login to sign in with the same
credentials right after the account is created.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		if registerEmail == "" {
			return errors.New(errors.Validation, "email is required")
		}
		creds, err := readCredentials(cmd, "", registerEmail, registerPasswordStdin)
		if err != nil {
			return err
		}
		reg := models.Registration{Username: registerUsername, Email: registerEmail, Password: creds.Password}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		err = withSpinner("Creating account", func() error {
			return a.provider.Register(cmd.Context(), reg)
		})
		if err != nil {
			return a.presentNetwork(err, "registering")
		}
		fmt.Fprintln(cmd.OutOrStdout(), a.palette.Success.Sprintf("✅ Account %s created", reg.Email))

		if !registerThenLogin {
			fmt.Fprintln(cmd.OutOrStdout(), a.palette.Muted.Sprint("   Run 'expensetracker login' to sign in."))
			return nil
		}
		a.close()
		return runLogin(cmd, models.Credentials{Email: reg.Email, Password: reg.Password})
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Account email (required)")
	registerCmd.Flags().StringVar(&registerUsername, "username", "", "Account username")
	registerCmd.Flags().BoolVar(&registerPasswordStdin, "password-stdin", false, "Read the password from stdin")
	registerCmd.Flags().BoolVar(&registerThenLogin, "login", false, "Sign in after the account is created")
	rootCmd.AddCommand(registerCmd)
}
