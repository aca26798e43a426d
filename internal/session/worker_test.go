package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	errs "ledgershell/cli/internal/errors"
)

func TestWorkerCommitLifecycle(t *testing.T) {
	led := &fakeLedger{rows: [][]byte{[]byte("doc")}}
	stmtCh := make(chan Container, channelCapacity)
	resCh := make(chan Container, channelCapacity)

	w := startWorker(context.Background(), led, stmtCh, resCh)

	start := recv(t, resCh)
	require.Equal(t, KindStart, start.Kind)
	require.Equal(t, "txn1", start.TxID)

	stmtCh <- Container{Kind: KindExecute, Statement: "select * from t"}
	res := recv(t, resCh)
	require.Equal(t, KindExecute, res.Kind)
	require.NotNil(t, res.Cursor)
	require.True(t, res.Cursor.Next())
	require.Equal(t, []byte("doc"), res.Cursor.Current())

	stmtCh <- Container{Kind: KindCommit}
	terminal := recv(t, resCh)
	require.Equal(t, KindCommit, terminal.Kind)
	require.True(t, terminal.Terminal())

	select {
	case <-w.done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not exit after commit")
	}

	// Exactly one terminal result per worker lifetime.
	expectQuiet(t, resCh, 150*time.Millisecond)

	_, committed, aborted, _ := led.snapshot()
	require.Equal(t, []string{"txn1"}, committed)
	require.Empty(t, aborted)
	require.Equal(t, []string{"select * from t"}, led.last.statements())
}

func TestWorkerAbort(t *testing.T) {
	led := &fakeLedger{}
	stmtCh := make(chan Container, channelCapacity)
	resCh := make(chan Container, channelCapacity)

	startWorker(context.Background(), led, stmtCh, resCh)
	require.Equal(t, KindStart, recv(t, resCh).Kind)

	stmtCh <- Container{Kind: KindAbort}
	terminal := recv(t, resCh)
	require.Equal(t, KindAbort, terminal.Kind)

	_, committed, aborted, _ := led.snapshot()
	require.Empty(t, committed)
	require.Equal(t, []string{"txn1"}, aborted)
}

func TestWorkerExecuteErrorIsTerminal(t *testing.T) {
	led := &fakeLedger{execErr: errs.New(errs.Service, "capacity exceeded")}
	stmtCh := make(chan Container, channelCapacity)
	resCh := make(chan Container, channelCapacity)

	startWorker(context.Background(), led, stmtCh, resCh)
	require.Equal(t, KindStart, recv(t, resCh).Kind)

	stmtCh <- Container{Kind: KindExecute, Statement: "insert into t value 1"}
	terminal := recv(t, resCh)
	require.Equal(t, KindError, terminal.Kind)
	require.True(t, errs.Is(terminal.Err, errs.Service))

	// The failed transaction was rolled back, not committed.
	_, committed, aborted, _ := led.snapshot()
	require.Empty(t, committed)
	require.Equal(t, []string{"txn1"}, aborted)

	expectQuiet(t, resCh, 150*time.Millisecond)
}

func TestWorkerAbortsOnContextCancel(t *testing.T) {
	led := &fakeLedger{}
	stmtCh := make(chan Container, channelCapacity)
	resCh := make(chan Container, channelCapacity)

	ctx, cancel := context.WithCancel(context.Background())
	startWorker(ctx, led, stmtCh, resCh)
	require.Equal(t, KindStart, recv(t, resCh).Kind)

	cancel()
	terminal := recv(t, resCh)
	require.Equal(t, KindAbort, terminal.Kind)
}
