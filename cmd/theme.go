// Copyright (c) 2025 Expensetracker
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"expensetracker/cli/internal/errors"
	"expensetracker/cli/internal/theme"
)

// themeCmd shows or changes the output color theme.
var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or change the color theme",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, err := theme.DefaultFileStore()
		if err != nil {
			return err
		}
		t, err := fs.Load()
		if err != nil {
			return err
		}
		printTheme(cmd, t)
		return nil
	},
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between light and dark",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, err := theme.DefaultFileStore()
		if err != nil {
			return err
		}
		t, err := fs.Toggle()
		if err != nil {
			return err
		}
		printTheme(cmd, t)
		return nil
	},
}

var themeSetCmd = &cobra.Command{
	Use:       "set <light|dark>",
	Short:     "Set the theme",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(theme.Light), string(theme.Dark)},
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := theme.Parse(args[0])
		if err != nil {
			return errors.Wrap(errors.Validation, err.Error(), err)
		}
		fs, err := theme.DefaultFileStore()
		if err != nil {
			return err
		}
		if err := fs.Set(t); err != nil {
			return err
		}
		printTheme(cmd, t)
		return nil
	},
}

func printTheme(cmd *cobra.Command, t theme.Theme) {
	p := theme.PaletteFor(t)
	fmt.Fprintf(cmd.OutOrStdout(), "🎨 Theme: %s\n", p.Accent.Sprint(string(t)))
}

func init() {
	themeCmd.AddCommand(themeToggleCmd, themeSetCmd)
	rootCmd.AddCommand(themeCmd)
}
