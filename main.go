// Package main is the entry point for the expense tracker CLI.
package main

import (
	"expensetracker/cli/cmd"
)

func main() {
	cmd.Execute()
}
