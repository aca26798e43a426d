// Copyright (c) 2026 Ledgershell
// Licensed under the MIT License. See LICENSE file in the project root for details.

package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/qldbsession"
	qtypes "github.com/aws/aws-sdk-go-v2/service/qldbsession/types"
	"github.com/awslabs/amazon-qldb-driver-go/v3/qldbdriver"

	errs "ledgershell/cli/internal/errors"
)

// Options configures the connection to a QLDB ledger. Zero values defer to
// the AWS shared configuration chain.
type Options struct {
	Ledger   string
	Region   string
	Profile  string
	Endpoint string
	Verbose  bool
}

// QLDB implements Ledger on top of the Amazon QLDB driver.
//
// The driver pins its retry policy at construction time, so the adapter
// holds two driver instances over one session client: `standalone` with the
// driver's default retry behavior for auto-committed statements, and
// `interactive` with retries disabled for the transaction worker.
type QLDB struct {
	standalone  *qldbdriver.QLDBDriver
	interactive *qldbdriver.QLDBDriver
}

// OpenQLDB resolves AWS configuration and connects both driver instances.
func OpenQLDB(ctx context.Context, opts Options) (*QLDB, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(opts.Profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errs.Wrap(errs.NoCredentials, "loading AWS configuration", err)
	}

	client := qldbsession.NewFromConfig(cfg, func(o *qldbsession.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	verbosity := qldbdriver.LogOff
	if opts.Verbose {
		verbosity = qldbdriver.LogDebug
	}
	standalone, err := qldbdriver.New(opts.Ledger, client, func(o *qldbdriver.DriverOptions) {
		o.LoggerVerbosity = verbosity
	})
	if err != nil {
		return nil, Classify(err)
	}
	interactive, err := qldbdriver.New(opts.Ledger, client, func(o *qldbdriver.DriverOptions) {
		o.LoggerVerbosity = verbosity
		o.RetryPolicy = qldbdriver.RetryPolicy{MaxRetryLimit: 0}
	})
	if err != nil {
		standalone.Shutdown(ctx)
		return nil, Classify(err)
	}

	return &QLDB{standalone: standalone, interactive: interactive}, nil
}

// Tables lists the non-deleted table names of the ledger.
func (q *QLDB) Tables(ctx context.Context) ([]string, error) {
	names, err := q.standalone.GetTableNames(ctx)
	if err != nil {
		return nil, Classify(err)
	}
	return names, nil
}

// Execute runs fn in a transaction with default retries.
func (q *QLDB) Execute(ctx context.Context, fn func(Transaction) (interface{}, error)) (interface{}, error) {
	out, err := q.standalone.Execute(ctx, func(txn qldbdriver.Transaction) (interface{}, error) {
		return fn(&qldbTxn{txn: txn})
	})
	if err != nil {
		return out, Classify(err)
	}
	return out, nil
}

// ExecuteNoRetry runs fn in a transaction with zero retries.
func (q *QLDB) ExecuteNoRetry(ctx context.Context, fn func(Transaction) (interface{}, error)) (interface{}, error) {
	out, err := q.interactive.Execute(ctx, func(txn qldbdriver.Transaction) (interface{}, error) {
		return fn(&qldbTxn{txn: txn})
	})
	if err != nil {
		return out, Classify(err)
	}
	return out, nil
}

// Shutdown closes the session pools of both driver instances.
func (q *QLDB) Shutdown(ctx context.Context) {
	q.interactive.Shutdown(ctx)
	q.standalone.Shutdown(ctx)
}

// qldbTxn adapts a driver transaction to the Transaction contract.
type qldbTxn struct {
	txn qldbdriver.Transaction
}

func (t *qldbTxn) ID() string { return t.txn.ID() }

// Abort returns ErrTxAborted; the driver aborts the underlying transaction
// when the callback returns an error, and the zero-retry policy guarantees
// the callback is not re-run.
func (t *qldbTxn) Abort() (interface{}, error) { return nil, ErrTxAborted }

// Execute runs one statement and drains its result while the transaction is
// live, so the returned cursor stays valid after the transaction ends. The
// driver transaction is already bound to the session context, so ctx is not
// forwarded.
func (t *qldbTxn) Execute(_ context.Context, statement string) (Cursor, error) {
	res, err := t.txn.Execute(statement)
	if err != nil {
		return nil, err
	}

	var rows [][]byte
	for res.Next(t.txn) {
		doc := res.GetCurrentData()
		cp := make([]byte, len(doc))
		copy(cp, doc)
		rows = append(rows, cp)
	}
	if err := res.Err(); err != nil {
		return nil, err
	}

	stats := &Stats{}
	if io := res.GetConsumedIOs(); io != nil {
		if r := io.GetReadIOs(); r != nil {
			stats.ReadIOs = *r
		}
	}
	if ti := res.GetTimingInformation(); ti != nil {
		if p := ti.GetProcessingTimeMilliseconds(); p != nil {
			stats.ProcessingTimeMS = *p
		}
	}
	return NewBufferedCursor(rows, stats), nil
}

// Classify maps driver and AWS errors onto the shell's typed error kinds.
// ErrTxAborted passes through untouched so the worker can recognize it.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTxAborted) {
		return err
	}
	var e *errs.E
	if errors.As(err, &e) {
		return err
	}

	var invalid *qtypes.InvalidSessionException
	if errors.As(err, &invalid) {
		if isTransactionExpiredMessage(aws.ToString(invalid.Message)) {
			return errs.Wrap(errs.TransactionExpired, "transaction expired", err)
		}
		return errs.Wrap(errs.Service, "ledger session invalidated", err)
	}

	msg := err.Error()
	switch {
	case containsAny(msg,
		"no such host", "connection refused", "dial tcp", "i/o timeout",
		"connection reset", "exceeded maximum number of attempts"):
		return errs.Wrap(errs.Connectivity, "unable to reach the ledger endpoint", err)
	case containsAny(msg,
		"failed to retrieve credentials", "no EC2 IMDS role found",
		"static credentials are empty", "failed to refresh cached credentials",
		"SSO session has expired"):
		return errs.Wrap(errs.NoCredentials, "no valid AWS credentials", err)
	}
	return errs.Wrap(errs.Service, "ledger error", err)
}

func isTransactionExpiredMessage(msg string) bool {
	return strings.Contains(msg, "Transaction") && strings.Contains(msg, "expired")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
