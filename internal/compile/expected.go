package compile

import (
	"fmt"
	"strings"

	"github.com/temoc-project/temoc/internal/slim"
	"github.com/temoc-project/temoc/internal/state"
)

// ExpectedValueKind tags what shape of Slim result an ExpectedValue
// accepts, mirroring original_source's ExpectedResultValue enum and
// the matching table validate_result.rs implements as
// PartialEq<InstructionResultValue>.
type ExpectedValueKind int

const (
	ExpectOk ExpectedValueKind = iota
	ExpectNullOrVoid
	ExpectString
	ExpectSetSymbol
	ExpectSymbol
)

// ExpectedValue is what one Call/CallAndAssign instruction is
// expected to return. String carries the literal for ExpectString, or
// the symbol name for ExpectSetSymbol/ExpectSymbol.
type ExpectedValue struct {
	Kind   ExpectedValueKind
	String string
}

// Lookup resolves a stored symbol by name; internal/state.Symbols.Get
// satisfies this.
type Lookup func(name string) (string, bool)

// Matches compares a received Slim result (kind plus its string
// value) against e.
func (e ExpectedValue) Matches(kind slim.ResultKind, value string, lookup Lookup) (bool, error) {
	switch e.Kind {
	case ExpectOk:
		return kind == slim.ResultOk, nil
	case ExpectNullOrVoid:
		return kind == slim.ResultVoid || kind == slim.ResultNull || (kind == slim.ResultString && strings.EqualFold(value, "null")), nil
	case ExpectSetSymbol:
		return kind == slim.ResultString, nil
	case ExpectSymbol:
		stored, ok := lookup(e.String)
		if !ok {
			return false, fmt.Errorf("symbol %q not found", e.String)
		}
		return matchLiteral(stored, kind, value), nil
	case ExpectString:
		return matchLiteral(e.String, kind, value), nil
	default:
		return false, fmt.Errorf("unknown expected value kind %d", e.Kind)
	}
}

// matchLiteral implements the teacher's exact case table: `OK`/`VOID`
// are special string spellings of the Ok/Void result kinds, string
// comparison trims both sides, everything else fails.
func matchLiteral(expected string, kind slim.ResultKind, value string) bool {
	switch {
	case kind == slim.ResultOk:
		return expected == "OK"
	case kind == slim.ResultVoid:
		return expected == "VOID"
	case kind == slim.ResultNull:
		return strings.TrimSpace(expected) == "" || strings.EqualFold(strings.TrimSpace(expected), "null")
	case kind == slim.ResultString:
		return strings.TrimSpace(expected) == strings.TrimSpace(value)
	default:
		return false
	}
}

// Render renders e for failure messages.
func (e ExpectedValue) Render() string {
	switch e.Kind {
	case ExpectOk:
		return "OK"
	case ExpectNullOrVoid:
		return "NULL or VOID"
	case ExpectSetSymbol:
		return fmt.Sprintf("$%s=", e.String)
	case ExpectSymbol:
		return fmt.Sprintf("$%s", e.String)
	default:
		return e.String
	}
}

// parseAssertionCell classifies an assertion cell's literal text:
// `$NAME=` assigns, `$NAME` compares against a stored symbol,
// anything else compares as a literal string (itself substituted for
// any exact `$NAME` token first).
func parseAssertionCell(text string, symbols *state.Symbols) (value ExpectedValue, symbolName string, isAssign bool) {
	text = strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(text, "$"); ok {
		if name, ok := strings.CutSuffix(rest, "="); ok {
			return ExpectedValue{Kind: ExpectSetSymbol, String: name}, name, true
		}
		return ExpectedValue{Kind: ExpectSymbol, String: rest}, "", false
	}
	return ExpectedValue{Kind: ExpectString, String: symbols.Substitute(text)}, "", false
}
