package session

import (
	"context"
	"errors"
	"time"

	"ledgershell/cli/internal/ledger"
)

// pollInterval bounds how long the worker blocks on the statement channel.
// The timeout exists only to keep the worker preemptible; it never makes a
// correctness decision.
const pollInterval = 50 * time.Millisecond

// worker drives one ledger transaction in its own goroutine. It reads
// commands from stmtCh, publishes results on resCh, and closes done when the
// goroutine exits. Exactly one terminal result is published per worker.
type worker struct {
	stmtCh chan Container
	resCh  chan Container
	done   chan struct{}
}

// startWorker launches the worker goroutine against led. The transaction
// body runs inside the driver's zero-retry execution wrapper: statements the
// user has already seen must never silently re-run.
func startWorker(ctx context.Context, led ledger.Ledger, stmtCh, resCh chan Container) *worker {
	w := &worker{stmtCh: stmtCh, resCh: resCh, done: make(chan struct{})}
	go w.run(ctx, led)
	return w
}

func (w *worker) run(ctx context.Context, led ledger.Ledger) {
	defer close(w.done)

	_, err := led.ExecuteNoRetry(ctx, func(txn ledger.Transaction) (interface{}, error) {
		w.resCh <- Container{Kind: KindStart, TxID: txn.ID()}
		for {
			select {
			case cmd := <-w.stmtCh:
				switch cmd.Kind {
				case KindAbort:
					return txn.Abort()
				case KindCommit:
					// Returning normally lets the driver commit.
					return nil, nil
				case KindExecute:
					cur, err := txn.Execute(ctx, cmd.Statement)
					if err != nil {
						// Driver errors unwind the callback and surface
						// as this worker's terminal result.
						return nil, err
					}
					w.resCh <- Container{Kind: KindExecute, Cursor: cur}
				}
			case <-time.After(pollInterval):
				if ctx.Err() != nil {
					return txn.Abort()
				}
			}
		}
	})

	switch {
	case err == nil:
		w.resCh <- Container{Kind: KindCommit}
	case errors.Is(err, ledger.ErrTxAborted):
		w.resCh <- Container{Kind: KindAbort}
	default:
		w.resCh <- Container{Kind: KindError, Err: err}
	}
}
