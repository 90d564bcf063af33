// Copyright (c) 2025 Expensetracker
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the expense tracker.
// It implements login, registration and session commands on top of the
// auth provider using the Cobra CLI framework.
package cmd

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"expensetracker/cli/internal/config"
	"expensetracker/cli/internal/errors"
	"expensetracker/cli/internal/logging"
)

var (
	showVersion    bool
	verbose        bool
	tokenStoreFlag string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "expensetracker",
	Short:         "Expense tracker command-line client",
	Long:          `expensetracker signs you in to the expense tracker backend and keeps the session alive between runs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(logging.Config{Verbose: verbose})
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Fprintf(cmd.OutOrStdout(), "expensetracker %s\n", Version)
			if cfg, err := config.Load(); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "backend %s\n", cfg.HTTPBaseURL())
			}
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application.
func Execute() {
	defer logging.Sync()
	if err := rootCmd.Execute(); err != nil {
		report(err)
		os.Exit(1)
	}
}

// report prints err for the user. Session expiry has already been rendered
// by the navigator.
func report(err error) {
	var presented presentedError
	if stderrors.As(err, &presented) {
		return
	}
	switch errors.KindOf(err) {
	case errors.SessionExpired:
	case errors.Validation, errors.Auth:
		pterm.Error.Println(errors.Message(err))
	case errors.Status:
		pterm.Error.Printf("backend returned %d: %s\n", errors.StatusCode(err), errors.Message(err))
	default:
		pterm.Error.Println(logging.PresentError("error", err))
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version and backend address")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&tokenStoreFlag, "token-store", "", "Token store backend: keychain, memory or redis (overrides config)")
}
