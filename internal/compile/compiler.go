// Package compile lowers directive-bound decision tables into Slim
// instruction batches and the expectations their results are
// validated against.
package compile

import (
	"fmt"

	"github.com/temoc-project/temoc/internal/markdown"
	"github.com/temoc-project/temoc/internal/slim"
	"github.com/temoc-project/temoc/internal/state"
)

// Expectation is what one instruction's result must satisfy.
// Reportable marks expectations that surface as a runner.Outcome —
// framing calls (make/beginTable/reset/execute/endTable/import) and
// setter calls validate protocol health but are never reported
// per-cell, matching spec.md §3's invariant that only non-comment,
// non-setter cells produce outcomes.
type Expectation struct {
	ID         slim.ID
	Column     string
	Line       int
	Value      ExpectedValue
	Reportable bool
}

// Result is one decision table's compiled instruction batch plus the
// expectations to validate its results against, in the same order the
// SUT is expected to return results.
type Result struct {
	Instructions []slim.Instruction
	Expectations []Expectation
}

// Table lowers one bound decision table into a Result. imports, when
// non-empty, are emitted as leading Import instructions — the runner
// passes each table only the imports that appear before it in the
// file and were not already sent with an earlier table, so every
// accumulated import is emitted exactly once per file. symbols
// resolves and later records `$NAME` values;
// the caller must call symbols.Set for every ExpectSetSymbol
// expectation once its result arrives before compiling the next
// table, or forward `$NAME` references will not resolve.
func Table(bt markdown.BoundTable, imports []markdown.Import, symbols *state.Symbols) (Result, error) {
	var res Result
	instance := string(slim.NewID())

	for _, imp := range imports {
		id := slim.NewID()
		res.Instructions = append(res.Instructions, slim.Instruction{ID: id, Kind: slim.KindImport, Path: imp.Path})
		res.Expectations = append(res.Expectations, Expectation{ID: id, Value: ExpectedValue{Kind: ExpectOk}, Line: imp.Line})
	}

	class, method := splitMethod(bt.Directive.Body)
	aggregated := method != ""

	makeID := slim.NewID()
	res.Instructions = append(res.Instructions, slim.Instruction{ID: makeID, Kind: slim.KindMake, Instance: instance, Class: class})
	res.Expectations = append(res.Expectations, Expectation{ID: makeID, Value: ExpectedValue{Kind: ExpectOk}, Line: bt.Directive.Line})

	beginID := slim.NewID()
	res.Instructions = append(res.Instructions, slim.Instruction{ID: beginID, Kind: slim.KindCall, Instance: instance, Function: "beginTable"})
	res.Expectations = append(res.Expectations, Expectation{ID: beginID, Value: ExpectedValue{Kind: ExpectNullOrVoid}, Line: bt.Table.Line})

	columns := bt.Table.Header
	for _, row := range bt.Table.Rows {
		resetID := slim.NewID()
		res.Instructions = append(res.Instructions, slim.Instruction{ID: resetID, Kind: slim.KindCall, Instance: instance, Function: "reset"})
		res.Expectations = append(res.Expectations, Expectation{ID: resetID, Value: ExpectedValue{Kind: ExpectNullOrVoid}, Line: rowLine(row)})

		var err error
		if aggregated {
			err = compileAggregatedRow(&res, instance, method, columns, row, symbols)
		} else {
			err = compileMultiRow(&res, instance, columns, row, symbols)
		}
		if err != nil {
			return Result{}, err
		}
	}

	endID := slim.NewID()
	res.Instructions = append(res.Instructions, slim.Instruction{ID: endID, Kind: slim.KindCall, Instance: instance, Function: "endTable"})
	res.Expectations = append(res.Expectations, Expectation{ID: endID, Value: ExpectedValue{Kind: ExpectNullOrVoid}, Line: bt.Directive.Line})

	return res, nil
}

// compileMultiRow implements the per-property mode: one setter call
// per setter column, then execute, then one getter call per assertion
// column.
func compileMultiRow(res *Result, instance string, columns []markdown.Cell, row []markdown.Cell, symbols *state.Symbols) error {
	for i, header := range columns {
		if i >= len(row) {
			return fmt.Errorf("row is missing column %d (%q)", i, header.Text)
		}
		if classifyColumn(header.Text) != columnSetter {
			continue
		}
		cell := row[i]
		id := slim.NewID()
		value := symbols.Substitute(cell.Text)
		res.Instructions = append(res.Instructions, slim.Instruction{
			ID: id, Kind: slim.KindCall, Instance: instance, Function: setterName(header.Text), Args: []string{value},
		})
		res.Expectations = append(res.Expectations, Expectation{ID: id, Value: ExpectedValue{Kind: ExpectNullOrVoid}, Column: header.Text, Line: cell.Line})
	}

	execID := slim.NewID()
	res.Instructions = append(res.Instructions, slim.Instruction{ID: execID, Kind: slim.KindCall, Instance: instance, Function: "execute"})
	res.Expectations = append(res.Expectations, Expectation{ID: execID, Value: ExpectedValue{Kind: ExpectNullOrVoid}, Line: rowLine(row)})

	for i, header := range columns {
		if classifyColumn(header.Text) != columnAssertion {
			continue
		}
		cell := row[i]
		ev, symbolName, isAssign := parseAssertionCell(cell.Text, symbols)
		id := slim.NewID()
		name := assertionName(header.Text)
		if isAssign {
			res.Instructions = append(res.Instructions, slim.Instruction{ID: id, Kind: slim.KindCallAndAssign, Symbol: symbolName, Instance: instance, Function: name})
		} else {
			res.Instructions = append(res.Instructions, slim.Instruction{ID: id, Kind: slim.KindCall, Instance: instance, Function: name})
		}
		res.Expectations = append(res.Expectations, Expectation{ID: id, Value: ev, Column: header.Text, Line: cell.Line, Reportable: true})
	}
	return nil
}

// compileAggregatedRow implements `#method` mode: the row's setter
// values become positional args to one call to method (replacing the
// separate per-setter calls and the "execute" call multi-setter mode
// uses), and each assertion column is still its own separate getter
// call afterward, exactly as in multi-setter mode.
func compileAggregatedRow(res *Result, instance, method string, columns []markdown.Cell, row []markdown.Cell, symbols *state.Symbols) error {
	var args []string
	for i, header := range columns {
		if i >= len(row) {
			return fmt.Errorf("row is missing column %d (%q)", i, header.Text)
		}
		if classifyColumn(header.Text) != columnSetter {
			continue
		}
		args = append(args, symbols.Substitute(row[i].Text))
	}

	callID := slim.NewID()
	res.Instructions = append(res.Instructions, slim.Instruction{ID: callID, Kind: slim.KindCall, Instance: instance, Function: method, Args: args})
	res.Expectations = append(res.Expectations, Expectation{ID: callID, Value: ExpectedValue{Kind: ExpectNullOrVoid}, Line: rowLine(row)})

	for i, header := range columns {
		if classifyColumn(header.Text) != columnAssertion {
			continue
		}
		cell := row[i]
		ev, symbolName, isAssign := parseAssertionCell(cell.Text, symbols)
		id := slim.NewID()
		name := assertionName(header.Text)
		if isAssign {
			res.Instructions = append(res.Instructions, slim.Instruction{ID: id, Kind: slim.KindCallAndAssign, Symbol: symbolName, Instance: instance, Function: name})
		} else {
			res.Instructions = append(res.Instructions, slim.Instruction{ID: id, Kind: slim.KindCall, Instance: instance, Function: name})
		}
		res.Expectations = append(res.Expectations, Expectation{ID: id, Value: ev, Column: header.Text, Line: cell.Line, Reportable: true})
	}
	return nil
}

func rowLine(row []markdown.Cell) int {
	for _, c := range row {
		if c.Line > 0 {
			return c.Line
		}
	}
	return 0
}
