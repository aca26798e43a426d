// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages. The shell uses the kind to decide recovery: syntax errors
// are reported and change nothing, expired transactions force-close the session, and
// connectivity or credential failures terminate the process.
//
// The package supports wrapping underlying errors while maintaining error kind information.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Syntax indicates malformed start/commit/abort sequencing in an input line.
	Syntax Kind = "syntax"
	// IllegalState indicates a violated session protocol invariant.
	IllegalState Kind = "illegal_state"
	// TransactionExpired indicates the ledger aged out the open transaction.
	TransactionExpired Kind = "transaction_expired"
	// Connectivity indicates the ledger endpoint cannot be reached.
	Connectivity Kind = "connectivity"
	// NoCredentials indicates missing or unusable AWS credentials.
	NoCredentials Kind = "no_credentials"
	// Service indicates a generic ledger or driver failure.
	Service Kind = "service"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying error to errors.Is/As chains.
func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Is reports whether any error in err's chain carries the given kind. The
// whole chain is walked: a fatal kind wrapped by a session-level one must
// still be recognized.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*E); ok && e.Kind == kind {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}
