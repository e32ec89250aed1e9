package slim

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/temoc-project/temoc/internal/domain"
)

// bannerPrefix is the literal text every Slim server writes before any
// instruction traffic. original_source reads a fixed 13-byte buffer
// for this banner ("Slim -- V0.5\n" is exactly 13 bytes); spec text
// describing 14 bytes does not match the reference implementation, so
// this client follows the reference.
const bannerPrefix = "Slim -- "

const minSupportedMinor = 5

// Connection is a live Slim session: banner already read, ready to
// exchange instruction batches until Bye or Close.
type Connection struct {
	r      *bufio.Reader
	w      io.Writer
	closer io.Closer
}

// Handshake reads and validates the Slim version banner from r, then
// returns a ready Connection that writes to w and can be torn down via
// closer.
func Handshake(r io.Reader, w io.Writer, closer io.Closer) (*Connection, error) {
	br := bufio.NewReader(r)
	buf := make([]byte, len(bannerPrefix)+5) // "V0.5\n" width
	if _, err := io.ReadFull(br, buf); err != nil {
		return nil, domain.NewError(domain.KindHandshake, "handshake", "", 0, "failed reading Slim banner", err)
	}
	banner := string(buf)
	if !strings.HasPrefix(banner, bannerPrefix) {
		return nil, domain.NewError(domain.KindHandshake, "handshake", "", 0, "banner missing 'Slim -- ' prefix: "+banner, nil)
	}
	version := strings.TrimPrefix(banner, bannerPrefix)
	if err := checkVersion(version); err != nil {
		return nil, domain.NewError(domain.KindHandshake, "handshake", "", 0, "unsupported Slim version", err)
	}
	return &Connection{r: br, w: w, closer: closer}, nil
}

func checkVersion(version string) error {
	version = strings.TrimSuffix(version, "\n")
	if !strings.HasPrefix(version, "V") {
		return domain.NewError(domain.KindHandshake, "handshake", "", 0, "malformed version string: "+version, nil)
	}
	parts := strings.SplitN(strings.TrimPrefix(version, "V"), ".", 2)
	if len(parts) != 2 {
		return domain.NewError(domain.KindHandshake, "handshake", "", 0, "malformed version string: "+version, nil)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return domain.NewError(domain.KindHandshake, "handshake", "", 0, "malformed version minor: "+version, err)
	}
	if parts[0] != "0" || minor < minSupportedMinor {
		return domain.NewError(domain.KindHandshake, "handshake", "", 0, "version too old: "+version, nil)
	}
	return nil
}

// SendInstructions writes one instruction batch and reads back one
// result batch. It validates that IDs correlate 1:1 with the sent
// instructions, in order, and that cardinality matches.
func (c *Connection) SendInstructions(instructions []Instruction) ([]Result, error) {
	if _, err := c.w.Write(EncodeBatch(instructions)); err != nil {
		return nil, domain.NewError(domain.KindProtocol, "slim", "", 0, "failed writing instruction batch", err)
	}
	node, err := ReadFrame(c.r)
	if err != nil {
		return nil, domain.NewError(domain.KindProtocol, "slim", "", 0, "failed reading result batch", err)
	}
	results, err := DecodeResultBatch(node)
	if err != nil {
		return nil, domain.NewError(domain.KindProtocol, "slim", "", 0, "malformed result batch", err)
	}
	if len(results) != len(instructions) {
		return nil, domain.NewError(domain.KindProtocol, "slim", "", 0,
			"result count does not match instruction count", nil)
	}
	for i, in := range instructions {
		if results[i].ID != in.ID {
			return nil, domain.NewError(domain.KindProtocol, "slim", "", 0,
				"result ID does not correlate with sent instruction ID", nil)
		}
	}
	return results, nil
}

// Bye sends the Slim termination sentinel. Unlike every other frame in
// this protocol, "bye" is sent as a bare atom, not wrapped in a list —
// the one asymmetry in Slim's otherwise uniform list framing.
func (c *Connection) Bye() error {
	_, err := c.w.Write(Encode(NewAtom("bye")))
	return err
}

// Close releases the underlying transport (socket or pipes).
func (c *Connection) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}
