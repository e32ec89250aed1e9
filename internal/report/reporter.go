// Package report renders runner.Report values to a plain-text stream,
// one OK/FAIL/SNOOZED line per file plus its failing or snoozed rows.
package report

import (
	"fmt"
	"io"

	"github.com/temoc-project/temoc/internal/runner"
)

// Reporter writes a sequence of file reports to w.
type Reporter struct {
	w           io.Writer
	showSnoozed bool
}

// New builds a Reporter. showSnoozed controls whether Snoozed outcomes
// are printed alongside a file's summary line.
func New(w io.Writer, showSnoozed bool) *Reporter {
	return &Reporter{w: w, showSnoozed: showSnoozed}
}

// Write prints one file's outcome. It returns true if the file counts
// as a failure (any Fail or Exception outcome, or an abort).
func (r *Reporter) Write(rep runner.Report) bool {
	fmt.Fprintf(r.w, "Testing file %s...", rep.File)

	if rep.Aborted {
		fmt.Fprintln(r.w, "FAIL")
		fmt.Fprintf(r.w, "%s: %v\n", rep.File, rep.AbortErr)
		for _, o := range rep.Outcomes {
			if o.Status == runner.StatusException || o.Status == runner.StatusFail {
				printOutcome(r.w, o)
			}
		}
		return true
	}

	counts := rep.Tally()
	failing := counts.Fail+counts.Exception > 0
	onlySnoozed := !failing && counts.Snoozed > 0

	switch {
	case failing:
		fmt.Fprintln(r.w, "FAIL")
	case onlySnoozed:
		fmt.Fprintln(r.w, "SNOOZED")
	default:
		fmt.Fprintln(r.w, "OK")
	}

	for _, o := range rep.Outcomes {
		switch o.Status {
		case runner.StatusFail, runner.StatusException:
			printOutcome(r.w, o)
		case runner.StatusSnoozed:
			if r.showSnoozed {
				printOutcome(r.w, o)
			}
		}
	}

	return failing
}

func printOutcome(w io.Writer, o runner.Outcome) {
	switch o.Status {
	case runner.StatusSnoozed:
		fmt.Fprintf(w, "%s:%d: %s -- snoozed\n", o.File, o.Line, o.Column)
	case runner.StatusException:
		fmt.Fprintf(w, "%s:%d: %s: exception: %s\n", o.File, o.Line, o.Column, o.Actual)
	default:
		fmt.Fprintf(w, "%s:%d: %s: expected %s, got %s\n", o.File, o.Line, o.Column, o.Expected, o.Actual)
	}
}
