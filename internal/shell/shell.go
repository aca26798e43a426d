// Copyright (c) 2026 Ledgershell
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package shell implements the interactive read-eval loop. It reads lines
// with readline, routes them to the transaction coordinator or the
// standalone execution path, and turns Ctrl-C into session teardown instead
// of process death. Completion is seeded once at startup from the ledger's
// table names.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	errs "ledgershell/cli/internal/errors"
	"ledgershell/cli/internal/ledger"
	"ledgershell/cli/internal/render"
	"ledgershell/cli/internal/session"
	"ledgershell/cli/internal/terminal"
	"ledgershell/cli/internal/xdg"
)

// Shell owns the foreground loop of one interactive session with a ledger.
type Shell struct {
	led        ledger.Ledger
	coord      *session.Coordinator
	out        *render.Printer
	rl         *readline.Instance
	ledgerName string
	version    string
}

// New lists the ledger's tables to seed completion data and prepares the
// readline instance. The coordinator starts closed.
func New(ctx context.Context, led ledger.Ledger, out *render.Printer, ledgerName, version string) (*Shell, error) {
	tables, err := led.Tables(ctx)
	if err != nil {
		return nil, err
	}

	// Missing state dir only costs persistent history.
	var historyFile string
	if dir, err := xdg.StateDir(); err == nil {
		historyFile = filepath.Join(dir, "history")
	}

	coord := session.NewCoordinator(ctx, led, out)
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            coord.Prompt(),
		HistoryFile:       historyFile,
		AutoComplete:      newCompleter(tables),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, err
	}

	return &Shell{
		led:        led,
		coord:      coord,
		out:        out,
		rl:         rl,
		ledgerName: ledgerName,
		version:    version,
	}, nil
}

// Run is the read-eval loop. It returns nil on explicit quit or EOF and an
// error only for unrecoverable connectivity or credential failures, which
// the command layer turns into a non-zero exit.
func (s *Shell) Run(ctx context.Context) error {
	s.printIntro()

	// Readline owns Ctrl-C at the prompt; between prompts it arrives as
	// SIGINT and must abort the running statement, not kill the process.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)
	s.coord.SetInterrupt(sig)

	for {
		s.rl.SetPrompt(s.coord.Prompt())
		line, err := s.rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			s.coord.Interrupt()
			continue
		case errors.Is(err, io.EOF):
			return s.quit(ctx)
		case err != nil:
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// Discard a signal that raced the prompt so it cannot cancel
		// the next statement.
		select {
		case <-sig:
		default:
		}
		done, err := s.dispatch(ctx, line)
		if err != nil {
			s.coord.Shutdown(ctx)
			s.rl.Close()
			return err
		}
		if done {
			return nil
		}
	}
}

// dispatch routes one input line. Shell words are handled here; everything
// else is timed and executed against the ledger.
func (s *Shell) dispatch(ctx context.Context, line string) (quit bool, fatal error) {
	switch strip(line) {
	case "exit", "quit":
		return true, s.quit(ctx)
	case "help":
		s.printHelp()
		return false, nil
	case "clear":
		terminal.ClearScreen()
		return false, nil
	}

	begin := time.Now()
	err := s.exec(ctx, line)
	pterm.Println(pterm.Gray(fmt.Sprintf("(%.3fs)", time.Since(begin).Seconds())))
	return false, err
}

// exec runs one non-shell-word line. A line that starts a transaction, or
// arrives while one is open, goes through the batcher and the coordinator;
// anything else is a standalone auto-committed statement.
func (s *Shell) exec(ctx context.Context, line string) error {
	stripped := strip(line)
	switch {
	case strings.HasPrefix(stripped, "start") || s.coord.Open():
		return s.transactionFlow(line)
	case stripped == "abort":
		pterm.Println("'abort' can only be used on an active transaction")
	case stripped == "commit":
		pterm.Println("'commit' can only be used on an active transaction")
	default:
		return s.standalone(ctx, line)
	}
	return nil
}

func (s *Shell) transactionFlow(line string) error {
	batches, err := session.ProcessInput(line, s.coord.Open())
	if err != nil {
		// Syntax errors are reported and leave session state unchanged.
		pterm.Printfln("Error in query: %v", err)
		return nil
	}
	if err := s.coord.RunBatches(batches); err != nil {
		return s.report(err)
	}
	return nil
}

// standalone executes one statement in its own transaction with the
// driver's default retry behavior.
func (s *Shell) standalone(ctx context.Context, line string) error {
	out, err := s.led.Execute(ctx, func(txn ledger.Transaction) (interface{}, error) {
		return txn.Execute(ctx, line)
	})
	if err != nil {
		return s.report(err)
	}
	if cur, ok := out.(ledger.Cursor); ok {
		s.out.Result(cur)
	}
	return nil
}

// report prints one diagnostic line for a driver error, or returns it when
// the failure is fatal to the process.
func (s *Shell) report(err error) error {
	switch {
	case errs.Is(err, errs.Connectivity), errs.Is(err, errs.NoCredentials):
		return err
	case errs.Is(err, errs.TransactionExpired):
		pterm.Println("Transaction expired. Please start a new transaction.")
	case errs.Is(err, errs.IllegalState):
		s.out.Error("Session reached an unexpected state", err)
	default:
		s.out.Warn("Error while executing query", err)
	}
	return nil
}

func (s *Shell) quit(ctx context.Context) error {
	pterm.Println("Exiting ledger shell.")
	s.coord.Shutdown(ctx)
	return s.rl.Close()
}

func (s *Shell) printIntro() {
	pterm.Println()
	pterm.DefaultBox.
		WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("ledgershell "+s.version)).
		WithTopPadding(1).
		WithBottomPadding(1).
		WithLeftPadding(1).
		WithRightPadding(1).
		Println("Ledger: " + s.ledgerName)
	pterm.Println()
	pterm.Println("Use 'start' to initiate and interact with a transaction, 'commit' and 'abort' to end one.")
	pterm.Println("Use 'start; statement 1; statement 2; commit' to run transactions non-interactively.")
	pterm.Println("All other input is executed as a PartiQL statement. 'help' shows the help section.")
	pterm.Println()
}

func (s *Shell) printHelp() {
	pterm.Println("'start' initiates a transaction; the prompt shows its id while it is open.")
	pterm.Println("'commit' commits the active transaction, 'abort' rolls it back.")
	pterm.Println("'start; statement 1; statement 2; commit' runs transactions non-interactively.")
	pterm.Println("A line without 'commit' or 'abort' leaves the transaction open for the next line.")
	pterm.Println("'clear' clears the screen.")
	pterm.Println("CTRL+C cancels the active transaction, CTRL+D, 'exit' and 'quit' leave the shell.")
	pterm.Println("Everything else is executed as a PartiQL statement against the ledger.")
}

// strip normalizes a line for keyword matching: lower-cased, outer
// whitespace and semicolons removed. Statement text is never stripped.
func strip(line string) string {
	out := strings.TrimSpace(strings.ToLower(line))
	out = strings.Trim(out, ";")
	return strings.TrimSpace(out)
}

// newCompleter builds prefix completion over reserved words and the
// ledger's table names.
func newCompleter(tables []string) readline.AutoCompleter {
	words := append([]string(nil), reservedWords...)
	words = append(words, tables...)
	items := make([]readline.PrefixCompleterInterface, 0, len(words))
	for _, w := range words {
		items = append(items, readline.PcItem(w))
	}
	return readline.NewPrefixCompleter(items...)
}
