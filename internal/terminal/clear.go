// Package terminal provides utilities for terminal operations such as clearing text.
package terminal

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// IsInteractive reports whether stdout is attached to a terminal.
// Colored output and the intro banner are suppressed when it is not,
// so piping shell output through other tools stays clean.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// ClearScreen clears the terminal and homes the cursor using ANSI escape
// sequences.
func ClearScreen() {
	fmt.Print("\x1b[H\x1b[2J")
}
