// Copyright (c) 2025 Expensetracker
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// logoutCmd clears the stored session. It never contacts the backend.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session tokens",
	Long: `The logout command removes the access and refresh tokens from the token
store. It works offline and is safe to run when you are not signed in.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.provider.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), a.palette.Success.Sprint("✅ Signed out"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
