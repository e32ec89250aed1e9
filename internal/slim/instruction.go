package slim

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var idSource = struct {
	sync.Mutex
	entropy *ulid.MonotonicEntropy
}{}

func init() {
	idSource.entropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
}

// ID is a Slim instruction identifier. Every batch this client sends
// uses ULIDs, matching original_source's use of the ulid crate: they
// sort lexically by creation time, which keeps interleaved log output
// readable during debugging.
type ID string

// NewID mints a fresh, monotonically-ordered ID.
func NewID() ID {
	idSource.Lock()
	defer idSource.Unlock()
	return ID(ulid.MustNew(ulid.Timestamp(time.Now()), idSource.entropy).String())
}

// InstructionKind tags the shape of an Instruction.
type InstructionKind string

const (
	KindImport        InstructionKind = "import"
	KindMake          InstructionKind = "make"
	KindCall          InstructionKind = "call"
	KindCallAndAssign InstructionKind = "callAndAssign"
)

// Instruction is one Slim wire instruction: Import, Make, Call, or
// CallAndAssign. Only the fields relevant to Kind are populated.
type Instruction struct {
	ID       ID
	Kind     InstructionKind
	Path     string   // Import
	Instance string   // Make, Call, CallAndAssign
	Class    string   // Make
	Symbol   string   // CallAndAssign
	Function string   // Call, CallAndAssign
	Args     []string // Make, Call, CallAndAssign
}

// ToNode renders an Instruction as its Slim list form.
func (in Instruction) ToNode() Node {
	elems := []Node{NewAtom(string(in.ID)), NewAtom(string(in.Kind))}
	switch in.Kind {
	case KindImport:
		elems = append(elems, NewAtom(in.Path))
	case KindMake:
		elems = append(elems, NewAtom(in.Instance), NewAtom(in.Class))
		elems = append(elems, atoms(in.Args)...)
	case KindCall:
		elems = append(elems, NewAtom(in.Instance), NewAtom(in.Function))
		elems = append(elems, atoms(in.Args)...)
	case KindCallAndAssign:
		elems = append(elems, NewAtom(in.Symbol), NewAtom(in.Instance), NewAtom(in.Function))
		elems = append(elems, atoms(in.Args)...)
	}
	return NewList(elems...)
}

func atoms(ss []string) []Node {
	nodes := make([]Node, len(ss))
	for i, s := range ss {
		nodes[i] = NewAtom(s)
	}
	return nodes
}

// EncodeBatch encodes an ordered instruction batch as one Slim frame:
// a list of instruction lists.
func EncodeBatch(instructions []Instruction) []byte {
	elems := make([]Node, len(instructions))
	for i, in := range instructions {
		elems[i] = in.ToNode()
	}
	return Encode(NewList(elems...))
}

// exceptionMarker prefixes Slim's exception payload strings.
const exceptionMarker = "__EXCEPTION__:"

// voidMarker is the Slim sentinel string for a void return.
const voidMarker = "/__VOID__/"

// ResultKind tags the shape of a Result.
type ResultKind string

const (
	ResultOk        ResultKind = "ok"
	ResultNull      ResultKind = "null"
	ResultVoid      ResultKind = "void"
	ResultString    ResultKind = "string"
	ResultException ResultKind = "exception"
)

// Result is one Slim instruction result: Ok, Null, Void, a string
// value, or an Exception carrying a raw message.
type Result struct {
	ID      ID
	Kind    ResultKind
	Value   string // ResultString
	Message string // ResultException, raw
}

// PrettyMessage extracts the human-readable portion of an exception
// message. Slim fixtures often wrap the real message as
// "...message:<<the real message>>..."; when present, that inner text
// is returned, otherwise the raw message is returned unchanged.
func (r Result) PrettyMessage() string {
	const marker = "message:<<"
	idx := strings.Index(r.Message, marker)
	if idx < 0 {
		return r.Message
	}
	rest := r.Message[idx+len(marker):]
	end := strings.Index(rest, ">>")
	if end < 0 {
		return r.Message
	}
	return rest[:end]
}

// resultFromNode decodes a single [id, value] pair into a Result.
func resultFromNode(n Node) (Result, error) {
	if n.IsAtom || len(n.List) != 2 {
		return Result{}, codecErr("expected [id, value] result pair")
	}
	idNode, valueNode := n.List[0], n.List[1]
	if !idNode.IsAtom {
		return Result{}, codecErr("result id must be an atom")
	}
	id := ID(idNode.Atom)
	if !valueNode.IsAtom {
		return Result{}, codecErr("expected an atom result value")
	}
	value := valueNode.Atom
	switch {
	case value == "OK":
		return Result{ID: id, Kind: ResultOk}, nil
	case value == "null":
		return Result{ID: id, Kind: ResultNull}, nil
	case value == voidMarker:
		return Result{ID: id, Kind: ResultVoid}, nil
	case strings.HasPrefix(value, exceptionMarker):
		return Result{ID: id, Kind: ResultException, Message: strings.TrimPrefix(value, exceptionMarker)}, nil
	default:
		return Result{ID: id, Kind: ResultString, Value: value}, nil
	}
}

// DecodeResultBatch decodes a Slim result frame: a list of [id, value]
// pairs, in the order the SUT returned them.
func DecodeResultBatch(n Node) ([]Result, error) {
	if n.IsAtom {
		return nil, codecErr("expected a list of results")
	}
	results := make([]Result, 0, len(n.List))
	for _, elem := range n.List {
		r, err := resultFromNode(elem)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}
