// Package render prints ledger results and shell diagnostics to the terminal.
// Documents come back from the driver as binary Ion; they are converted to
// Ion text one document per line, the way the ledger console shows them.
package render

import (
	"fmt"

	"github.com/amazon-ion/ion-go/ion"
	"github.com/pterm/pterm"

	"ledgershell/cli/internal/ledger"
	"ledgershell/cli/internal/logging"
)

// Printer renders buffered cursors and shell messages with pterm.
type Printer struct {
	// ShowStats appends a read-IO and timing summary after each result.
	ShowStats bool
}

// Result prints every document of the cursor.
func (p *Printer) Result(cur ledger.Cursor) {
	count := 0
	for cur.Next() {
		text, err := DocumentText(cur.Current())
		if err != nil {
			pterm.Warning.Printfln("unreadable document: %v", err)
			continue
		}
		pterm.Println(text)
		count++
	}
	if err := cur.Err(); err != nil {
		p.Error("Error while reading results", err)
	}
	if p.ShowStats {
		if st := cur.Stats(); st != nil {
			pterm.Println(pterm.Gray(fmt.Sprintf("%d documents, %d read IOs, %d ms server time", count, st.ReadIOs, st.ProcessingTimeMS)))
		}
	}
}

// Info prints one informational line.
func (p *Printer) Info(msg string) {
	pterm.Println(msg)
}

// Error prints one masked diagnostic line.
func (p *Printer) Error(context string, err error) {
	pterm.Error.Println(logging.PresentError(context, err))
}

// Warn prints one masked warning line.
func (p *Printer) Warn(context string, err error) {
	pterm.Warning.Println(logging.PresentError(context, err))
}

// DocumentText converts one binary Ion document to its text form.
func DocumentText(data []byte) (string, error) {
	dec := ion.NewDecoder(ion.NewReaderBytes(data))
	val, err := dec.Decode()
	if err != nil {
		return "", err
	}
	text, err := ion.MarshalText(val)
	if err != nil {
		return "", err
	}
	return string(text), nil
}
