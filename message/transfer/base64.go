package transfer

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"

	"github.com/zostay/emledit/message/header"
)

// Base64LineLength is the length of the lines written by the base64 encoder.
const Base64LineLength = 76

// newlineWriter breaks the bytes written into lines of a fixed length. A line
// break is only written ahead of more data, so output never ends with one.
type newlineWriter struct {
	every int
	acc   int
	lbr   []byte
	w     io.Writer
}

func (nw *newlineWriter) Write(b []byte) (int, error) {
	n := 0
	for len(b) > 0 {
		if nw.acc == nw.every {
			if _, err := nw.w.Write(nw.lbr); err != nil {
				return n, err
			}
			nw.acc = 0
		}

		chunk := b
		if room := nw.every - nw.acc; len(chunk) > room {
			chunk = chunk[:room]
		}

		wn, err := nw.w.Write(chunk)
		n += wn
		nw.acc += wn
		if err != nil {
			return n, err
		}

		b = b[len(chunk):]
	}

	return n, nil
}

// NewBase64Encoder will translate all bytes written to the returned
// io.WriteCloser into base64 encoding and write those to the given io.Writer
// in lines of Base64LineLength separated by lbr.
func NewBase64Encoder(w io.Writer, lbr header.Break) io.WriteCloser {
	if lbr == header.NoBreak {
		lbr = header.LF
	}

	enc := base64.NewEncoder(base64.StdEncoding, &newlineWriter{
		every: Base64LineLength,
		lbr:   lbr.Bytes(),
		w:     w,
	})
	return &closer{Writer: enc, Closer: enc}
}

// NewBase64Decoder will translate all bytes read from the given io.Reader as
// base64 and return the binary data to the returned io.Reader. Whitespace and
// other bytes outside the base64 alphabet are skipped and missing padding is
// supplied.
func NewBase64Decoder(r io.Reader) io.Reader {
	return base64.NewDecoder(base64.StdEncoding, &base64Cleaner{r: r})
}

// base64Cleaner filters everything but the base64 alphabet out of the reader
// and pads the final quantum if the encoder left the padding off.
type base64Cleaner struct {
	r     io.Reader
	chars int
	pads  int
	eof   bool
	tail  []byte
}

func isBase64(c byte) bool {
	return (c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9') ||
		c == '+' || c == '/' || c == '='
}

func (c *base64Cleaner) Read(p []byte) (int, error) {
	for {
		if c.eof {
			if len(c.tail) == 0 {
				return 0, io.EOF
			}
			n := copy(p, c.tail)
			c.tail = c.tail[n:]
			return n, nil
		}

		n, err := c.r.Read(p)
		j := 0
		for _, b := range p[:n] {
			if !isBase64(b) {
				continue
			}
			if b == '=' {
				c.pads++
			} else {
				c.chars++
			}
			p[j] = b
			j++
		}

		if errors.Is(err, io.EOF) {
			c.eof = true
			if total := c.chars + c.pads; c.chars%4 >= 2 && total%4 != 0 {
				c.tail = bytes.Repeat([]byte{'='}, 4-total%4)
			}
		} else if err != nil {
			return j, err
		}

		if j > 0 {
			return j, nil
		}
	}
}
