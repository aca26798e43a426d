package session

import (
	"reflect"
	"testing"

	errs "ledgershell/cli/internal/errors"
)

func TestProcessInput(t *testing.T) {
	tests := []struct {
		name string
		line string
		open bool
		want []Batch
	}{
		{
			name: "empty no-op transaction",
			line: "start; commit",
			want: []Batch{{Outcome: KindCommit}},
		},
		{
			name: "full transaction keeps statement order",
			line: "start; insert into t value 1; insert into t value 2; commit",
			want: []Batch{{
				Statements: []string{"insert into t value 1", "insert into t value 2"},
				Outcome:    KindCommit,
			}},
		},
		{
			name: "two transactions on one line",
			line: "start; insert into t value 1; commit; start; select * from t; abort",
			want: []Batch{
				{Statements: []string{"insert into t value 1"}, Outcome: KindCommit},
				{Statements: []string{"select * from t"}, Outcome: KindAbort},
			},
		},
		{
			name: "trailing fragment stays open",
			line: "start; insert into t value 1",
			want: []Batch{{Statements: []string{"insert into t value 1"}, Outcome: KindNone}},
		},
		{
			name: "fragment continuing an open transaction",
			line: "select * from t",
			open: true,
			want: []Batch{{Statements: []string{"select * from t"}, Outcome: KindNone}},
		},
		{
			name: "commit alone closes an open transaction",
			line: "commit",
			open: true,
			want: []Batch{{Outcome: KindCommit}},
		},
		{
			name: "abort alone closes an open transaction",
			line: "abort;",
			open: true,
			want: []Batch{{Outcome: KindAbort}},
		},
		{
			name: "keywords are case-insensitive, statements keep case",
			line: "START; SELECT * FROM Vehicle; Commit",
			want: []Batch{{Statements: []string{"SELECT * FROM Vehicle"}, Outcome: KindCommit}},
		},
		{
			name: "empty tokens are skipped",
			line: " start ;; ; select * from t ; ; commit ; ",
			want: []Batch{{Statements: []string{"select * from t"}, Outcome: KindCommit}},
		},
		{
			name: "blank line",
			line: "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProcessInput(tt.line, tt.open)
			if err != nil {
				t.Fatalf("ProcessInput() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ProcessInput() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestProcessInputSyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		open bool
	}{
		{name: "start inside open transaction", line: "start", open: true},
		{name: "double start", line: "start; start"},
		{name: "commit with no transaction", line: "commit"},
		{name: "abort with no transaction", line: "abort"},
		{name: "statement with no transaction", line: "insert into t value 1"},
		{name: "statement after commit", line: "start; commit; insert into t value 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProcessInput(tt.line, tt.open)
			if err == nil {
				t.Fatalf("ProcessInput() = %+v, want syntax error", got)
			}
			if !errs.Is(err, errs.Syntax) {
				t.Errorf("ProcessInput() error = %v, want Syntax kind", err)
			}
		})
	}
}

// The same statement that fails against a closed session must pass once the
// open flag is set.
func TestProcessInputOpenFlagGatesStatements(t *testing.T) {
	line := "insert into t value 1"
	if _, err := ProcessInput(line, false); !errs.Is(err, errs.Syntax) {
		t.Fatalf("closed session: error = %v, want Syntax kind", err)
	}
	got, err := ProcessInput(line, true)
	if err != nil {
		t.Fatalf("open session: error = %v", err)
	}
	if len(got) != 1 || len(got[0].Statements) != 1 || got[0].Statements[0] != line {
		t.Errorf("open session: batches = %+v", got)
	}
}
