// Package slim implements the length-prefixed, list-nested wire codec
// and client state machine for the Slim RPC protocol.
package slim

import (
	"io"
	"strconv"
	"strings"

	"github.com/temoc-project/temoc/internal/domain"
)

// lenWidth is the fixed width of a Slim length field.
const lenWidth = 6

// Node is a decoded Slim value: either an Atom (length-prefixed byte
// string) or a List of Nodes.
type Node struct {
	List  []Node
	Atom  string
	IsAtom bool
}

// NewAtom builds an atom Node.
func NewAtom(s string) Node {
	return Node{Atom: s, IsAtom: true}
}

// NewList builds a list Node.
func NewList(nodes ...Node) Node {
	return Node{List: nodes}
}

// Encode renders a Node into its Slim wire representation.
//
// Every list is framed as length:[count:elem:elem:...:], every atom
// as length:bytes. The frame's own length prefix always describes the
// bytes that follow it, computed bottom-up.
func Encode(n Node) []byte {
	if n.IsAtom {
		return encodeAtom(n.Atom)
	}
	return encodeList(n.List)
}

func encodeAtom(s string) []byte {
	var b strings.Builder
	b.WriteString(padLen(len(s)))
	b.WriteByte(':')
	b.WriteString(s)
	return []byte(b.String())
}

func encodeList(elems []Node) []byte {
	var inner strings.Builder
	inner.WriteByte('[')
	inner.WriteString(padLen(len(elems)))
	inner.WriteByte(':')
	for _, e := range elems {
		inner.Write(Encode(e))
		inner.WriteByte(':')
	}
	inner.WriteByte(']')
	body := inner.String()

	var b strings.Builder
	b.WriteString(padLen(len(body)))
	b.WriteByte(':')
	b.WriteString(body)
	return []byte(b.String())
}

func padLen(n int) string {
	s := strconv.Itoa(n)
	if len(s) >= lenWidth {
		return s
	}
	return strings.Repeat("0", lenWidth-len(s)) + s
}

// Decode parses a single Slim frame from the beginning of data and
// returns the decoded Node. It does not perform I/O; buffered readers
// wrap this for streaming use (see Connection).
func Decode(data []byte) (Node, error) {
	n, rest, err := decodeFrame(data)
	if err != nil {
		return Node{}, err
	}
	if len(rest) != 0 {
		return Node{}, codecErr("trailing bytes after frame")
	}
	return n, nil
}

// decodeFrame reads one length-prefixed value and returns it plus the
// unconsumed remainder of data.
func decodeFrame(data []byte) (Node, []byte, error) {
	length, rest, err := readLen(data)
	if err != nil {
		return Node{}, nil, err
	}
	if len(rest) < length {
		return Node{}, nil, codecErr("frame shorter than declared length")
	}
	body, tail := rest[:length], rest[length:]

	if len(body) > 0 && body[0] == '[' {
		list, err := decodeListBody(body)
		if err != nil {
			return Node{}, nil, err
		}
		return NewList(list...), tail, nil
	}
	return NewAtom(string(body)), tail, nil
}

func decodeListBody(body []byte) ([]Node, error) {
	if len(body) < 2 || body[0] != '[' || body[len(body)-1] != ']' {
		return nil, codecErr("malformed list frame")
	}
	inner := body[1 : len(body)-1]
	count, rest, err := readLen(inner)
	if err != nil {
		return nil, err
	}
	elems := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		n, tail, err := decodeFrame(rest)
		if err != nil {
			return nil, err
		}
		if len(tail) == 0 || tail[0] != ':' {
			return nil, codecErr("expected ':' after list element")
		}
		elems = append(elems, n)
		rest = tail[1:]
	}
	if len(rest) != 0 {
		return nil, codecErr("trailing bytes inside list frame")
	}
	return elems, nil
}

func readLen(data []byte) (int, []byte, error) {
	idx := -1
	for i := 0; i < len(data) && i <= lenWidth; i++ {
		if data[i] == ':' {
			idx = i
			break
		}
	}
	if idx != lenWidth {
		return 0, nil, codecErr("missing or malformed length prefix")
	}
	n, err := strconv.Atoi(string(data[:idx]))
	if err != nil {
		return 0, nil, codecErr("length prefix is not decimal: " + err.Error())
	}
	return n, data[idx+1:], nil
}

func codecErr(msg string) error {
	return domain.NewError(domain.KindCodec, "codec", "", 0, msg, nil)
}

// ReadFrame reads exactly one Slim frame from r: a 6-digit length
// header, ':', then that many body bytes. The bye sentinel is the one
// frame in this protocol that is a bare atom rather than a list — this
// reads either shape transparently.
func ReadFrame(r io.Reader) (Node, error) {
	header := make([]byte, lenWidth+1)
	if _, err := io.ReadFull(r, header); err != nil {
		return Node{}, codecErr("failed reading length header: " + err.Error())
	}
	if header[lenWidth] != ':' {
		return Node{}, codecErr("malformed length header")
	}
	length, err := strconv.Atoi(string(header[:lenWidth]))
	if err != nil {
		return Node{}, codecErr("length header is not decimal: " + err.Error())
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return Node{}, codecErr("failed reading frame body: " + err.Error())
	}

	if len(body) > 0 && body[0] == '[' {
		list, err := decodeListBody(body)
		if err != nil {
			return Node{}, err
		}
		return NewList(list...), nil
	}
	return NewAtom(string(body)), nil
}
