package slim_test

import (
	"bytes"
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/temoc-project/temoc/internal/slim"
)

type nopCloser struct{ closed bool }

func (c *nopCloser) Close() error {
	c.closed = true
	return nil
}

var _ = Describe("Handshake", func() {
	It("accepts a well-formed banner", func() {
		r := bytes.NewBufferString("Slim -- V0.5\n")
		var w bytes.Buffer
		conn, err := slim.Handshake(r, &w, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(conn).ToNot(BeNil())
	})

	It("accepts a newer minor version", func() {
		r := bytes.NewBufferString("Slim -- V0.9\n")
		var w bytes.Buffer
		_, err := slim.Handshake(r, &w, nil)
		Expect(err).ToNot(HaveOccurred())
	})

	It("rejects a banner with the wrong prefix", func() {
		r := bytes.NewBufferString("Nope -- V0.5\n")
		var w bytes.Buffer
		_, err := slim.Handshake(r, &w, nil)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a version older than the minimum supported minor", func() {
		r := bytes.NewBufferString("Slim -- V0.1\n")
		var w bytes.Buffer
		_, err := slim.Handshake(r, &w, nil)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a truncated banner", func() {
		r := bytes.NewBufferString("Slim")
		var w bytes.Buffer
		_, err := slim.Handshake(r, &w, nil)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Connection.SendInstructions", func() {
	var w bytes.Buffer

	newConn := func(resultFrame []byte) *slim.Connection {
		r := io.MultiReader(bytes.NewBufferString("Slim -- V0.5\n"), bytes.NewReader(resultFrame))
		conn, err := slim.Handshake(r, &w, nil)
		Expect(err).ToNot(HaveOccurred())
		return conn
	}

	BeforeEach(func() {
		w.Reset()
	})

	It("writes the instruction batch and returns correlated results", func() {
		in := slim.Instruction{ID: "id1", Kind: slim.KindCall, Instance: "inst", Function: "sum"}
		resultFrame := slim.Encode(slim.NewList(slim.NewList(slim.NewAtom("id1"), slim.NewAtom("42"))))
		conn := newConn(resultFrame)

		results, err := conn.SendInstructions([]slim.Instruction{in})
		Expect(err).ToNot(HaveOccurred())
		Expect(results).To(HaveLen(1))
		Expect(results[0].Value).To(Equal("42"))
		Expect(w.Bytes()).To(Equal(slim.EncodeBatch([]slim.Instruction{in})))
	})

	It("errors when result count does not match instruction count", func() {
		in := slim.Instruction{ID: "id1", Kind: slim.KindCall, Instance: "inst", Function: "sum"}
		resultFrame := slim.Encode(slim.NewList())
		conn := newConn(resultFrame)

		_, err := conn.SendInstructions([]slim.Instruction{in})
		Expect(err).To(HaveOccurred())
	})

	It("errors when a result ID does not correlate with the sent instruction", func() {
		in := slim.Instruction{ID: "id1", Kind: slim.KindCall, Instance: "inst", Function: "sum"}
		resultFrame := slim.Encode(slim.NewList(slim.NewList(slim.NewAtom("wrong-id"), slim.NewAtom("42"))))
		conn := newConn(resultFrame)

		_, err := conn.SendInstructions([]slim.Instruction{in})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Connection.Bye", func() {
	It("writes the bare bye atom, not a list", func() {
		r := bytes.NewBufferString("Slim -- V0.5\n")
		var w bytes.Buffer
		conn, err := slim.Handshake(r, &w, nil)
		Expect(err).ToNot(HaveOccurred())

		Expect(conn.Bye()).To(Succeed())
		Expect(w.Bytes()).To(Equal(slim.Encode(slim.NewAtom("bye"))))
	})
})

var _ = Describe("Connection.Close", func() {
	It("delegates to the configured closer", func() {
		r := bytes.NewBufferString("Slim -- V0.5\n")
		var w bytes.Buffer
		closer := &nopCloser{}
		conn, err := slim.Handshake(r, &w, closer)
		Expect(err).ToNot(HaveOccurred())

		Expect(conn.Close()).To(Succeed())
		Expect(closer.closed).To(BeTrue())
	})

	It("is a no-op when no closer was configured", func() {
		r := bytes.NewBufferString("Slim -- V0.5\n")
		var w bytes.Buffer
		conn, err := slim.Handshake(r, &w, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(conn.Close()).To(Succeed())
	})
})
