package runner

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/temoc-project/temoc/internal/compile"
	"github.com/temoc-project/temoc/internal/domain"
	"github.com/temoc-project/temoc/internal/markdown"
	"github.com/temoc-project/temoc/internal/slim"
	"github.com/temoc-project/temoc/internal/snooze"
	"github.com/temoc-project/temoc/internal/state"
)

// shutdownTimeout bounds how long Run waits for the SUT process to
// exit cleanly after Bye before force-killing it.
const shutdownTimeout = 3 * time.Second

// Executor runs one Markdown file's decision tables against a single
// SUT session. Wiring (which connector, which logger) is supplied by
// the caller, following the teacher's DefaultGenerator shape: an
// orchestrator owns port leasing and concurrency, an Executor owns one
// file's sequential pipeline.
type Executor struct {
	connector slim.Connector
	log       *logrus.Logger
}

// NewExecutor builds an Executor bound to connector.
func NewExecutor(connector slim.Connector, log *logrus.Logger) *Executor {
	return &Executor{connector: connector, log: log}
}

// Run executes the full parse → connect → per-table send/validate →
// bye sequence for path and returns its Report. Run never returns an
// error itself; failures are recorded on the Report so callers can
// keep processing other files.
func (e *Executor) Run(ctx context.Context, path string) Report {
	report := Report{File: path}

	content, err := os.ReadFile(path)
	if err != nil {
		report.Aborted = true
		report.AbortErr = domain.NewError(domain.KindParse, "runner", path, 0, "failed reading file", err)
		return report
	}

	doc, err := markdown.Parse(path, content)
	if err != nil {
		report.Aborted = true
		report.AbortErr = err
		return report
	}
	for _, w := range doc.Warnings {
		e.log.Warnf("%s: %s", path, w)
	}

	e.log.Debugf("%s: connecting to SUT", path)
	conn, cmd, err := e.connector.Connect(ctx)
	if err != nil {
		report.Aborted = true
		report.AbortErr = err
		return report
	}

	stopWatch := watchCancellation(ctx, conn)
	defer stopWatch()

	symbols := state.NewSymbols()
	importsPending := doc.Imports

	for i, bt := range doc.Tables {
		if snooze.ShouldSnooze(bt.Directive.SnoozeAt, time.Now()) {
			report.Outcomes = append(report.Outcomes, snoozedOutcomes(path, bt)...)
			continue
		}

		// Imports apply to every table from the point they appear
		// onward: fold in only the ones that precede this table's own
		// source line, in document order, matching original_source's
		// in-order command processing.
		var due int
		for due < len(importsPending) && importsPending[due].Line < bt.Table.Line {
			due++
		}
		imports := importsPending[:due]
		importsPending = importsPending[due:]

		compiled, err := compile.Table(bt, imports, symbols)
		if err != nil {
			report.Aborted = true
			report.AbortErr = domain.NewError(domain.KindProtocol, "runner", path, bt.Table.Line, "failed compiling table", err)
			break
		}

		e.log.Debugf("%s: sending %d instructions for table at line %d", path, len(compiled.Instructions), bt.Table.Line)
		results, err := conn.SendInstructions(compiled.Instructions)
		if err != nil {
			report.Outcomes = append(report.Outcomes, disconnectOutcomes(path, compiled.Expectations)...)
			report.Outcomes = append(report.Outcomes, e.remainingDisconnectOutcomes(path, doc.Tables[i+1:], symbols)...)
			report.Aborted = true
			report.AbortErr = err
			break
		}

		byID := make(map[slim.ID]slim.Result, len(results))
		for _, r := range results {
			byID[r.ID] = r
		}
		for _, exp := range compiled.Expectations {
			res, ok := byID[exp.ID]
			if !ok {
				continue
			}
			if !exp.Reportable {
				if res.Kind == slim.ResultException {
					e.log.Warnf("%s:%d: framing call for column %q raised an exception: %s",
						path, exp.Line, exp.Column, res.PrettyMessage())
				}
				continue
			}
			report.Outcomes = append(report.Outcomes, e.validate(path, exp, res, symbols))
		}
	}

	if !report.Aborted {
		if err := slim.Shutdown(conn, cmd, shutdownTimeout); err != nil {
			e.log.Warnf("%s: SUT did not shut down cleanly: %v", path, err)
		}
	} else {
		_ = conn.Close()
		if cmd != nil && cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
	}

	return report
}

// watchCancellation closes conn as soon as ctx is done, so a blocked
// SendInstructions returns an error instead of hanging past a global
// deadline. The returned func stops the watch once Run's own sequence
// finishes normally.
func watchCancellation(ctx context.Context, conn *slim.Connection) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	return func() { close(done) }
}

// validate compares one reportable expectation's received result and
// turns it into an Outcome, recording a fresh $NAME value along the
// way when the expectation is an assignment.
func (e *Executor) validate(path string, exp compile.Expectation, res slim.Result, symbols *state.Symbols) Outcome {
	outcome := Outcome{File: path, Line: exp.Line, Column: exp.Column, Expected: exp.Value.Render()}

	if res.Kind == slim.ResultException {
		outcome.Status = StatusException
		outcome.Actual = res.PrettyMessage()
		return outcome
	}

	matched, err := exp.Value.Matches(res.Kind, res.Value, symbols.Get)
	if err != nil {
		outcome.Status = StatusException
		outcome.Actual = err.Error()
		return outcome
	}

	outcome.Actual = renderActual(res.Kind, res.Value)
	if !matched {
		outcome.Status = StatusFail
		return outcome
	}
	outcome.Status = StatusPass
	if exp.Value.Kind == compile.ExpectSetSymbol {
		symbols.Set(exp.Value.String, res.Value)
	}
	return outcome
}

func renderActual(kind slim.ResultKind, value string) string {
	switch kind {
	case slim.ResultOk:
		return "OK"
	case slim.ResultVoid:
		return "VOID"
	case slim.ResultNull:
		return "null"
	default:
		return value
	}
}

// snoozedOutcomes marks every assertion column of bt as Snoozed
// without emitting a single instruction.
func snoozedOutcomes(path string, bt markdown.BoundTable) []Outcome {
	var outcomes []Outcome
	for _, row := range bt.Table.Rows {
		for i, header := range bt.Table.Header {
			if i >= len(row) || !isAssertionHeader(header.Text) {
				continue
			}
			outcomes = append(outcomes, Outcome{
				File: path, Line: row[i].Line, Column: header.Text, Status: StatusSnoozed,
			})
		}
	}
	return outcomes
}

func isAssertionHeader(header string) bool {
	for _, r := range header {
		if r == '?' {
			return true
		}
	}
	return false
}

// remainingDisconnectOutcomes marks every reportable assertion cell in
// tables after the one that hit the disconnect, per spec: a mid-file
// disconnect fails every remaining assertion in that file, not just the
// ones in the table that was in flight when the connection dropped.
// Snoozed tables among the remainder still report Snoozed, since they
// were never going to be sent regardless of the disconnect.
func (e *Executor) remainingDisconnectOutcomes(path string, tables []markdown.BoundTable, symbols *state.Symbols) []Outcome {
	var outcomes []Outcome
	for _, bt := range tables {
		if snooze.ShouldSnooze(bt.Directive.SnoozeAt, time.Now()) {
			outcomes = append(outcomes, snoozedOutcomes(path, bt)...)
			continue
		}
		compiled, err := compile.Table(bt, nil, symbols)
		if err != nil {
			e.log.Warnf("%s:%d: failed compiling table after disconnect: %v", path, bt.Table.Line, err)
			continue
		}
		outcomes = append(outcomes, disconnectOutcomes(path, compiled.Expectations)...)
	}
	return outcomes
}

// disconnectOutcomes marks every reportable expectation still pending
// in the current table as Exception, per spec: an unexpected disconnect
// mid-file fails every remaining assertion in that file.
func disconnectOutcomes(path string, expectations []compile.Expectation) []Outcome {
	var outcomes []Outcome
	for _, exp := range expectations {
		if !exp.Reportable {
			continue
		}
		outcomes = append(outcomes, Outcome{
			File: path, Line: exp.Line, Column: exp.Column,
			Status: StatusException, Expected: exp.Value.Render(), Actual: "SUT disconnected",
		})
	}
	return outcomes
}
