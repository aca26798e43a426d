package session

import (
	"strings"

	errs "ledgershell/cli/internal/errors"
)

// Batch is one logical transaction segment derived from an input line: its
// ordered statements plus the outcome that ends it. Outcome KindNone means
// the transaction continues across subsequent input lines.
type Batch struct {
	Statements []string
	Outcome    Kind
}

// ProcessInput splits one raw input line into an ordered list of batches.
// Tokens are `;`-separated and trimmed; the start/commit/abort keywords are
// case-insensitive while statement text keeps its original form. The open
// flag tells the batcher whether a transaction is already live, so a line
// can also be a fragment continuing it.
//
// One line can express a full transaction, several transactions, or a
// fragment: "start; insert ...; commit; start; select ...;" yields two
// batches, the second without an outcome.
//
// Sequencing violations return a Syntax kind error and nothing else: the
// caller's session state is never touched.
func ProcessInput(line string, open bool) ([]Batch, error) {
	var batches []Batch
	var current *Batch

	for _, token := range strings.Split(strings.TrimSpace(line), ";") {
		token = strings.TrimSpace(token)
		switch strings.ToLower(token) {
		case "start":
			if open {
				return nil, errs.New(errs.Syntax, "transaction needs to be committed or aborted before starting a new one")
			}
			open = true
			current = &Batch{}
		case "commit":
			if !open {
				return nil, errs.New(errs.Syntax, "commit used before a transaction was started")
			}
			if current == nil {
				current = &Batch{}
			}
			current.Outcome = KindCommit
			batches = append(batches, *current)
			current = nil
			open = false
		case "abort":
			if !open {
				return nil, errs.New(errs.Syntax, "abort used before a transaction was started")
			}
			if current == nil {
				current = &Batch{}
			}
			current.Outcome = KindAbort
			batches = append(batches, *current)
			current = nil
			open = false
		case "":
			continue
		default:
			if !open {
				return nil, errs.New(errs.Syntax, "a statement was used before a transaction was started")
			}
			if current == nil {
				current = &Batch{}
			}
			current.Statements = append(current.Statements, token)
		}
	}

	// Trailing statements without an explicit outcome continue the still
	// open transaction on the next line.
	if current != nil {
		batches = append(batches, *current)
	}
	return batches, nil
}
