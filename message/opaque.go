package message

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/zostay/emledit/message/header"
	"github.com/zostay/emledit/message/transfer"
)

// Opaque is a message part with a header and a body of bytes. It is either a
// simple message or a leaf of a Multipart. The body is held in memory, so it
// may be read and written any number of times.
type Opaque struct {
	// Header will contain the header of the message. A top-level message must
	// have several headers to be correct. A message part should have one or
	// more headers as well.
	header.Header

	// content holds the body. A nil content means there was no body at all,
	// not even the blank line ending the header.
	content []byte

	// encoded tracks whether content still has its Content-transfer-encoding
	// applied. Parsing leaves encoding in place unless the
	// DecodeTransferEncoding() option is given. Parts built with a Buffer are
	// encoded on write unless built with OpaqueAlreadyEncoded().
	encoded bool

	// missingBreaks counts the line breaks missing from the end of the header
	// of a parsed part that had no body.
	missingBreaks int
}

// NewOpaque returns an Opaque with the given header and unencoded content.
// The content will be transfer encoded as the header says when written.
func NewOpaque(h *header.Header, content []byte) *Opaque {
	return &Opaque{Header: *h, content: content}
}

// countingWriter counts the bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// WriteTo writes the Opaque header and body to the destination io.Writer.
//
// If the content has had the Content-transfer-encoding decoded (e.g., the
// message was parsed with the DecodeTransferEncoding() option or was created
// via a Buffer), then this will encode the data as it is being written.
func (m *Opaque) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}

	if err := m.writeHeader(cw); err != nil {
		return cw.n, err
	}

	if m.content == nil {
		return cw.n, nil
	}

	if m.encoded {
		_, err := cw.Write(m.content)
		return cw.n, err
	}

	tw := transfer.ApplyTransferEncoding(&m.Header, cw)
	if _, err := tw.Write(m.content); err != nil {
		_ = tw.Close()
		return cw.n, err
	}

	err := tw.Close()
	return cw.n, err
}

// writeHeader writes the header, leaving off any line breaks the original
// input lacked.
func (m *Opaque) writeHeader(w io.Writer) error {
	if m.missingBreaks == 0 {
		_, err := m.Header.WriteTo(w)
		return err
	}

	hb := m.Header.Bytes()
	lbr := m.Break().Bytes()
	for i := 0; i < m.missingBreaks; i++ {
		hb = bytes.TrimSuffix(hb, lbr)
	}

	_, err := w.Write(hb)
	return err
}

// IsMultipart always returns false.
func (m *Opaque) IsMultipart() bool {
	return false
}

// IsEncoded returns true if the Content-transfer-encoding has not been decoded
// for the bytes returned by GetContent(). If this returns true, GetContent()
// returns exactly the bytes that WriteTo() writes after the header.
func (m *Opaque) IsEncoded() bool {
	return m.encoded
}

// GetHeader returns the header for the message.
func (m *Opaque) GetHeader() *header.Header {
	return &m.Header
}

// GetReader returns a new reader over the body of the message or nil if the
// message has no body.
func (m *Opaque) GetReader() io.Reader {
	if m.content == nil {
		return nil
	}
	return bytes.NewReader(m.content)
}

// GetContent returns the body of the message as held. Do not modify the
// returned slice.
func (m *Opaque) GetContent() []byte {
	return m.content
}

// DecodedContent returns the body with any Content-transfer-encoding removed.
// On a decoding error, the bytes decoded before the error are returned with
// the error.
func (m *Opaque) DecodedContent() ([]byte, error) {
	if !m.encoded || m.content == nil {
		return m.content, nil
	}

	return io.ReadAll(transfer.ApplyTransferDecoding(&m.Header, bytes.NewReader(m.content)))
}

// GetParts always returns nil.
func (m *Opaque) GetParts() []Part {
	return nil
}

// AttachmentFile is a constructor that will create an Opaque from the given
// filename and MIME type. This will read the given file path from the disk,
// make that filename the name of an attachment, and return it. It will return
// an error if there's a problem reading the file from the disk.
//
// The last argument is the transfer encoding to use. Use transfer.None if you
// do not want to set a transfer encoding.
func AttachmentFile(fn, mt, te string) (*Opaque, error) {
	content, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}

	return Attachment(filepath.Base(fn), mt, te, content), nil
}

// Attachment creates an Opaque holding the given content as an attachment with
// the given filename and MIME type.
func Attachment(fn, mt, te string, content []byte) *Opaque {
	m := &Opaque{content: content}
	m.SetMediaType(mt)
	m.SetPresentation("attachment")
	if fn != "" {
		_ = m.SetFilename(fn)
	}

	if te != transfer.None {
		m.SetTransferEncoding(te)
	}

	return m
}
