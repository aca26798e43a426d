// Package main is the entry point for the ledgershell application.
// It provides an interactive shell against a transactional ledger database.
package main

import (
	"ledgershell/cli/cmd"
)

// main initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
