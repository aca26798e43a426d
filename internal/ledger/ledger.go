// Package ledger abstracts the transactional ledger driver behind small
// contracts the shell core is written and tested against. The production
// implementation talks to Amazon QLDB; tests substitute in-memory fakes.
//
// The driver's callback-shaped execution model is preserved: a transaction
// body runs to completion inside one callback, and aborting raises a
// distinguished cancellation error that unwinds the callback.
package ledger

import (
	"context"
	"errors"
)

// ErrTxAborted is the distinguished cancellation condition raised by
// Transaction.Abort. The execution wrapper recognizes it and rolls the
// transaction back instead of treating it as a failure.
var ErrTxAborted = errors.New("ledger: transaction aborted")

// Stats carries server-side execution cost for one statement.
type Stats struct {
	ReadIOs          int64
	ProcessingTimeMS int64
}

// Cursor is a result set, fully buffered while the owning transaction was
// live. Buffering inside the callback means documents never escape an open
// transaction; a Cursor stays valid after commit, abort, or interrupt.
type Cursor interface {
	// Next advances to the next document and reports whether one is available.
	Next() bool
	// Current returns the current document as binary Ion.
	Current() []byte
	// Err returns the first error encountered while the cursor was filled.
	Err() error
	// Stats returns execution cost information, or nil when unavailable.
	Stats() *Stats
}

// Transaction is one live ledger transaction, only valid inside the
// callback passed to Execute or ExecuteNoRetry.
type Transaction interface {
	// Execute runs one statement against the transaction and returns a
	// buffered cursor over its results.
	Execute(ctx context.Context, statement string) (Cursor, error)
	// Abort cancels the transaction by returning ErrTxAborted; the callback
	// should return Abort's values directly.
	Abort() (interface{}, error)
	// ID returns the ledger-assigned transaction id.
	ID() string
}

// Ledger is the driver capability surface consumed by the shell.
type Ledger interface {
	// Tables lists the table names of the ledger. Called once at startup to
	// seed completion data.
	Tables(ctx context.Context) ([]string, error)
	// Execute runs fn inside a transaction with the driver's default retry
	// behavior. Used for standalone auto-committed statements.
	Execute(ctx context.Context, fn func(Transaction) (interface{}, error)) (interface{}, error)
	// ExecuteNoRetry runs fn inside a transaction with retries disabled.
	// The interactive worker requires this: statements already streamed to
	// the user must never silently re-run.
	ExecuteNoRetry(ctx context.Context, fn func(Transaction) (interface{}, error)) (interface{}, error)
	// Shutdown releases driver resources.
	Shutdown(ctx context.Context)
}

// BufferedCursor is the canonical Cursor implementation: a slice of binary
// Ion documents drained from a driver result while the transaction was open.
type BufferedCursor struct {
	rows  [][]byte
	pos   int
	stats *Stats
	err   error
}

// NewBufferedCursor builds a cursor over pre-read documents.
func NewBufferedCursor(rows [][]byte, stats *Stats) *BufferedCursor {
	return &BufferedCursor{rows: rows, pos: -1, stats: stats}
}

func (c *BufferedCursor) Next() bool {
	if c.pos+1 >= len(c.rows) {
		return false
	}
	c.pos++
	return true
}

func (c *BufferedCursor) Current() []byte {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil
	}
	return c.rows[c.pos]
}

func (c *BufferedCursor) Err() error { return c.err }

func (c *BufferedCursor) Stats() *Stats { return c.stats }
