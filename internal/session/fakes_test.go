package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"ledgershell/cli/internal/ledger"
)

// fakeTxn is an in-memory ledger transaction for tests.
type fakeTxn struct {
	id string

	mu       sync.Mutex
	executed []string

	execErr error
	rows    [][]byte
	slow    bool
}

func (t *fakeTxn) ID() string { return t.id }

func (t *fakeTxn) Abort() (interface{}, error) { return nil, ledger.ErrTxAborted }

func (t *fakeTxn) Execute(ctx context.Context, statement string) (ledger.Cursor, error) {
	t.mu.Lock()
	t.executed = append(t.executed, statement)
	t.mu.Unlock()
	if t.slow {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if t.execErr != nil {
		return nil, t.execErr
	}
	return ledger.NewBufferedCursor(t.rows, &ledger.Stats{ReadIOs: 1}), nil
}

func (t *fakeTxn) statements() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.executed...)
}

// fakeLedger mimics the driver's callback execution wrapper: the body runs
// to completion inside one call, an error return rolls the transaction back,
// and a normal return commits it.
type fakeLedger struct {
	mu        sync.Mutex
	opened    int
	last      *fakeTxn
	committed []string
	aborted   []string
	shutdown  bool

	// openErr fails the wrapper before the callback runs.
	openErr error
	// execErr fails every statement of every transaction.
	execErr error
	// rows is served for every executed statement.
	rows [][]byte
	// slow makes every statement block until the session context is
	// canceled, simulating a long-running query.
	slow bool
	// hang keeps the wrapper from returning after the callback finishes,
	// simulating a wedged driver. It unblocks on context cancellation.
	hang bool
}

func (l *fakeLedger) Tables(context.Context) ([]string, error) {
	return []string{"t"}, nil
}

func (l *fakeLedger) Execute(ctx context.Context, fn func(ledger.Transaction) (interface{}, error)) (interface{}, error) {
	return l.run(ctx, fn)
}

func (l *fakeLedger) ExecuteNoRetry(ctx context.Context, fn func(ledger.Transaction) (interface{}, error)) (interface{}, error) {
	return l.run(ctx, fn)
}

func (l *fakeLedger) run(ctx context.Context, fn func(ledger.Transaction) (interface{}, error)) (interface{}, error) {
	l.mu.Lock()
	if l.openErr != nil {
		l.mu.Unlock()
		return nil, l.openErr
	}
	l.opened++
	txn := &fakeTxn{id: fmt.Sprintf("txn%d", l.opened), execErr: l.execErr, rows: l.rows, slow: l.slow}
	l.last = txn
	l.mu.Unlock()

	out, err := fn(txn)

	l.mu.Lock()
	if err != nil {
		l.aborted = append(l.aborted, txn.id)
	} else {
		l.committed = append(l.committed, txn.id)
	}
	hang := l.hang
	l.mu.Unlock()

	if hang {
		<-ctx.Done()
	}
	return out, err
}

func (l *fakeLedger) Shutdown(context.Context) {
	l.mu.Lock()
	l.shutdown = true
	l.mu.Unlock()
}

func (l *fakeLedger) snapshot() (opened int, committed, aborted []string, down bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.opened,
		append([]string(nil), l.committed...),
		append([]string(nil), l.aborted...),
		l.shutdown
}

// fakeRenderer records everything the coordinator asked to display.
type fakeRenderer struct {
	mu      sync.Mutex
	results []ledger.Cursor
	infos   []string
}

func (r *fakeRenderer) Result(cur ledger.Cursor) {
	r.mu.Lock()
	r.results = append(r.results, cur)
	r.mu.Unlock()
}

func (r *fakeRenderer) Info(msg string) {
	r.mu.Lock()
	r.infos = append(r.infos, msg)
	r.mu.Unlock()
}

func (r *fakeRenderer) resultCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

func (r *fakeRenderer) infoList() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.infos...)
}

// recv reads one container or fails the test after a bounded wait.
func recv(t *testing.T, ch chan Container) Container {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a result")
		return Container{}
	}
}

// expectQuiet asserts that no message arrives on ch for the given window.
func expectQuiet(t *testing.T, ch chan Container, window time.Duration) {
	t.Helper()
	select {
	case c := <-ch:
		t.Fatalf("unexpected message %v on channel", c.Kind)
	case <-time.After(window):
	}
}
