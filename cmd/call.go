// Copyright (c) 2025 Expensetracker
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"expensetracker/cli/internal/backend"
	"expensetracker/cli/internal/errors"
	"expensetracker/cli/internal/terminal"
)

var callData string

// callCmd issues an arbitrary authenticated request through the shared
// client, with the same token handling as every other command.
var callCmd = &cobra.Command{
	Use:   "call <METHOD> <path>",
	Short: "Send an authenticated request to the backend",
	Long: `The call command sends one request to the backend with the stored access
token attached and prints the JSON response. An expired access token is
renewed and the request retried once.

Example:
  expensetracker call GET /api/expenses
  expensetracker call POST /api/expenses --data '{"amount": 12.5}'`,
	Args: cobra.ExactArgs(2),

	RunE: func(cmd *cobra.Command, args []string) error {
		call := backend.Call{Method: strings.ToUpper(args[0]), Path: args[1]}
		if callData != "" {
			if !gjson.Valid(callData) {
				return errors.New(errors.Validation, "--data must be valid JSON")
			}
			call.Body = json.RawMessage(callData)
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		resp, err := a.api.Client().Do(cmd.Context(), call, nil)
		if err != nil {
			if errors.Is(err, errors.SessionExpired) {
				return err
			}
			return a.presentNetwork(err, "calling "+call.Path)
		}

		body := resp.Body()
		if gjson.ValidBytes(body) {
			body = pretty.Pretty(body)
			if terminal.StdoutIsTerminal() {
				body = pretty.Color(body, nil)
			}
		}
		fmt.Fprint(cmd.OutOrStdout(), string(body))
		return nil
	},
}

func init() {
	callCmd.Flags().StringVarP(&callData, "data", "d", "", "JSON request body")
	rootCmd.AddCommand(callCmd)
}
