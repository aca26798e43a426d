// Package session implements the interactive transaction core of the shell:
// the command protocol exchanged between the foreground loop and the
// transaction worker, the statement batcher that turns one input line into
// ordered transaction batches, the worker goroutine that drives one live
// ledger transaction, and the coordinator state machine that sequences
// batches through the worker.
//
// Two goroutines participate: the foreground loop and at most one live
// worker. The only mutable state crossing that boundary travels through two
// FIFO channels; the worker never touches coordinator state directly.
package session

import (
	"ledgershell/cli/internal/ledger"
)

// Kind identifies a protocol message between the coordinator and the worker.
type Kind int

const (
	// KindNone is the zero kind; as a batch outcome it means the
	// transaction stays open across input lines.
	KindNone Kind = iota
	// KindStart is published by the worker once the transaction is live.
	KindStart
	// KindExecute requests one statement execution, and carries its result back.
	KindExecute
	// KindCommit requests a commit, and reports one as a terminal result.
	KindCommit
	// KindAbort requests an abort, and reports one as a terminal result.
	KindAbort
	// KindError is a terminal result carrying a driver failure.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "NONE"
	case KindStart:
		return "START"
	case KindExecute:
		return "EXECUTE"
	case KindCommit:
		return "COMMIT"
	case KindAbort:
		return "ABORT"
	case KindError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Container is one protocol message. Immutable once sent; produced by either
// side and consumed by the other. Only the fields relevant to Kind are set.
type Container struct {
	Kind Kind

	// Statement is the statement text of an EXECUTE request.
	Statement string
	// TxID is the ledger-assigned transaction id of a START result.
	TxID string
	// Cursor is the buffered result of an EXECUTE result.
	Cursor ledger.Cursor
	// Err is the failure of a KindError terminal result.
	Err error
}

// Terminal reports whether the container ends a worker lifetime. Exactly one
// terminal result is published per worker.
func (c Container) Terminal() bool {
	return c.Kind == KindCommit || c.Kind == KindAbort || c.Kind == KindError
}
