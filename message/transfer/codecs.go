package transfer

import (
	"io"
	"mime/quotedprintable"

	"github.com/zostay/emledit/message/header"
)

// closer pairs a writer with an optional Close. A nil Closer makes Close a
// no-op so the underlying writer is left open.
type closer struct {
	io.Writer
	io.Closer
}

func (c *closer) Close() error {
	if c.Closer == nil {
		return nil
	}
	return c.Closer.Close()
}

func identityEncoder(w io.Writer, _ header.Break) io.WriteCloser {
	return &closer{Writer: w}
}

func identityDecoder(r io.Reader) io.Reader { return r }

// NewQuotedPrintableEncoder returns a writer that quoted-printable encodes into
// w. The standard library always uses CRLF for soft breaks, so lbr is unused.
func NewQuotedPrintableEncoder(w io.Writer, _ header.Break) io.WriteCloser {
	qp := quotedprintable.NewWriter(w)
	return &closer{Writer: qp, Closer: qp}
}

// NewQuotedPrintableDecoder returns a reader that decodes quoted-printable
// input from r.
func NewQuotedPrintableDecoder(r io.Reader) io.Reader {
	return quotedprintable.NewReader(r)
}
