package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	errs "ledgershell/cli/internal/errors"
	"ledgershell/cli/internal/ledger"
)

// errInterrupted unwinds a batch run when a cancellation signal arrives
// while the coordinator is blocked on the worker.
var errInterrupted = errors.New("interrupted")

// State is the coordinator's session state.
type State int

const (
	// StateClosed means no transaction is live.
	StateClosed State = iota
	// StateOpening means a worker was spawned but has not published START yet.
	StateOpening
	// StateOpen means one transaction is live and accepting statements.
	StateOpen
)

const (
	promptClosed = "ledgershell > "

	// drainBudget bounds the total wait for a worker acknowledgment during
	// interrupt-driven teardown. Normal operation blocks without bound.
	drainBudget = 500 * time.Millisecond

	// channelCapacity gives an abandoned worker enough slack to flush its
	// remaining messages and exit; the coordinator's synchronous round
	// trips keep real occupancy at one or two messages.
	channelCapacity = 64
)

// Renderer receives execution results and informational messages. Result
// presentation is owned by the caller; the coordinator only decides when
// something is worth showing.
type Renderer interface {
	Result(cur ledger.Cursor)
	Info(msg string)
}

// Coordinator owns the interactive transaction session: its state, the two
// FIFO channels, and the at-most-one live worker. It is driven entirely from
// the foreground goroutine; none of its methods are safe for concurrent use,
// which mirrors how a shell calls it.
type Coordinator struct {
	base context.Context
	led  ledger.Ledger
	out  Renderer

	state  State
	txID   string
	prompt string

	stmtCh chan Container
	resCh  chan Container
	w      *worker
	cancel context.CancelFunc
	intr   <-chan os.Signal
}

// NewCoordinator creates a closed coordinator. base outlives individual
// sessions; each session derives its own cancellable context from it.
func NewCoordinator(base context.Context, led ledger.Ledger, out Renderer) *Coordinator {
	c := &Coordinator{base: base, led: led, out: out, prompt: promptClosed}
	c.resetChannels()
	return c
}

// Prompt returns the prompt for the current state; while a transaction is
// open it embeds the transaction id.
func (c *Coordinator) Prompt() string { return c.prompt }

// Open reports whether a session is live.
func (c *Coordinator) Open() bool { return c.state != StateClosed }

// State returns the current session state.
func (c *Coordinator) State() State { return c.state }

// TxID returns the ledger-assigned id of the open transaction, or "".
func (c *Coordinator) TxID() string { return c.txID }

// SetInterrupt routes cancellation signals into the coordinator's blocking
// waits so a long-running statement can be interrupted mid-flight; the live
// session is aborted the same way a prompt-level interrupt aborts it.
func (c *Coordinator) SetInterrupt(ch <-chan os.Signal) { c.intr = ch }

// recvOrInterrupt blocks for the next worker result. A cancellation signal
// wins the race and unwinds the current run with errInterrupted.
func (c *Coordinator) recvOrInterrupt() (Container, error) {
	if c.intr == nil {
		return <-c.resCh, nil
	}
	select {
	case res := <-c.resCh:
		return res, nil
	case <-c.intr:
		return Container{}, errInterrupted
	}
}

// RunBatches drives each batch through the worker in order. The first
// failing batch stops the run and its error is returned after the session
// has been force-closed; syntax errors never reach this method.
func (c *Coordinator) RunBatches(batches []Batch) error {
	for _, b := range batches {
		if err := c.runBatch(b); err != nil {
			if errors.Is(err, errInterrupted) {
				c.Interrupt()
				c.out.Info("Transaction aborted")
				return nil
			}
			return err
		}
	}
	return nil
}

func (c *Coordinator) runBatch(b Batch) error {
	if c.state == StateClosed {
		if err := c.open(); err != nil {
			return err
		}
	}

	for _, stmt := range b.Statements {
		c.stmtCh <- Container{Kind: KindExecute, Statement: stmt}
		res, err := c.recvOrInterrupt()
		if err != nil {
			return err
		}
		if res.Kind != KindExecute {
			// A driver error ended the transaction; res is the terminal
			// result of this worker.
			c.forceClose()
			return res.Err
		}
		c.out.Result(res.Cursor)
	}

	switch b.Outcome {
	case KindCommit, KindAbort:
		c.stmtCh <- Container{Kind: b.Outcome}
		res, err := c.recvOrInterrupt()
		if err != nil {
			return err
		}
		c.forceClose()
		if res.Kind == KindError {
			return res.Err
		}
		if res.Kind == KindCommit {
			c.out.Info("Transaction committed")
		} else {
			c.out.Info("Transaction aborted")
		}
	}
	// Outcome KindNone: the session stays open across input lines.
	return nil
}

// open spawns a worker and blocks until it publishes START. The first
// result must be START; anything else is an invariant violation.
func (c *Coordinator) open() error {
	c.state = StateOpening
	sctx, cancel := context.WithCancel(c.base)
	c.cancel = cancel
	c.w = startWorker(sctx, c.led, c.stmtCh, c.resCh)

	res, err := c.recvOrInterrupt()
	if err != nil {
		return err
	}
	if res.Kind != KindStart {
		c.forceClose()
		return errs.Wrap(errs.IllegalState, "worker's first result was not START", res.Err)
	}
	c.txID = res.TxID
	c.prompt = fmt.Sprintf("ledgershell(tx: %s) > ", res.TxID)
	c.state = StateOpen
	return nil
}

// Interrupt tears down any live session in response to user cancellation.
// It signals ABORT, drains the result channel within drainBudget discarding
// non-terminal results, waits for the worker to exit inside the same budget,
// and unconditionally reaches the closed state with fresh channels so late
// messages from a torn-down worker cannot be attributed to a future session.
func (c *Coordinator) Interrupt() {
	w := c.w
	if w == nil {
		c.forceClose()
		return
	}

	// Buffered, non-blocking: the worker may be wedged inside the driver.
	select {
	case c.stmtCh <- Container{Kind: KindAbort}:
	default:
	}

	deadline := time.Now().Add(drainBudget)
drain:
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		select {
		case res := <-c.resCh:
			// Waiting for an ABORT acknowledgment; any other terminal
			// result also means the worker is finished.
			if res.Terminal() {
				break drain
			}
		case <-time.After(remaining):
			break drain
		}
	}

	// Cancel the session context so a live worker stops driving the
	// transaction, then give it the rest of the budget to exit.
	if c.cancel != nil {
		c.cancel()
	}
	select {
	case <-w.done:
	case <-time.After(time.Until(deadline)):
	}

	c.forceClose()
}

// Shutdown aborts any live session and releases driver resources.
func (c *Coordinator) Shutdown(ctx context.Context) {
	if c.w != nil {
		c.Interrupt()
	}
	c.led.Shutdown(ctx)
}

// forceClose resets the coordinator to the closed state. Both channels are
// replaced so a subsequently opened session observes no leftover messages.
func (c *Coordinator) forceClose() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.w = nil
	c.txID = ""
	c.prompt = promptClosed
	c.state = StateClosed
	c.resetChannels()
}

func (c *Coordinator) resetChannels() {
	c.stmtCh = make(chan Container, channelCapacity)
	c.resCh = make(chan Container, channelCapacity)
}
