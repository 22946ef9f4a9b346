package message

import (
	"fmt"
	"io"

	"github.com/zostay/emledit/message/header"
)

// Part is an interface define the parts of a Multipart. Each Part is
// either a branch or a leaf.
//
// A branch Part is one that has sub-parts. In this case, the IsMultipart()
// method will return true. The GetParts() method is available, but the
// GetReader() will return nil.
//
// A leaf Part is one that contains content. In this case, the IsMultipart()
// method will return false. GetParts() will return nil, but GetReader() will
// return a reader for the content of the part.
//
// It is possible for a leaf to hold content that is itself a multipart MIME
// message, for example when parsing stopped at the maximum depth or when the
// part is a message/rfc822 attachment.
type Part interface {
	io.WriterTo

	// IsMultipart will return true if this Part is a branch with nested
	// parts.
	IsMultipart() bool

	// IsEncoded will return true if this Part will return the original bytes
	// from the associated io.Reader returned from GetReader(). It always
	// returns false for a branch.
	IsEncoded() bool

	// GetHeader is available on all Part objects.
	GetHeader() *header.Header

	// GetReader provides the content of the message, but only if IsMultipart()
	// returns false. This must return nil if IsMultipart() returns true.
	GetReader() io.Reader

	// GetParts provides the content of a multipart message with sub-parts.
	// This must return nil if IsMultipart() is false.
	GetParts() []Part
}

// Generic is just an alias for Part, which is intended to convey
// additional semantics:
//
// 1. The message returned is not necessarily a sub-part of a message.
//
// 2. The returned message is guaranteed to either be a *Opaque or a
// *Multipart. Therefore, it is safe to use this in a type-switch
// and only look for either of those two objects.
type Generic = Part

// Multipart is a multipart MIME message. When building these methods the MIME
// type set in the Content-type header should always start with multipart/*.
type Multipart struct {
	// Header is the header for the message.
	header.Header

	// prefix and suffix hold the bytes before the first boundary (the
	// preamble, including the line break ending it) and after the final
	// boundary (the epilogue, starting with the line break ending the
	// boundary line) so that parsed messages round-trip byte-for-byte.
	//
	// If prefix is nil, the input had no opening boundary and none is written.
	// If suffix is nil, the input had no closing boundary and none is written.
	prefix, suffix []byte

	// parts holds this layer's parts
	parts []Part
}

// WriteTo writes the Multipart header and parts to the destination io.Writer.
// This method will fail with an error if the given message does not have a
// Content-type boundary parameter set.
func (mm *Multipart) WriteTo(w io.Writer) (int64, error) {
	boundary, err := mm.GetBoundary()
	if err != nil {
		return 0, fmt.Errorf("unable to write multipart: %w", err)
	}

	n, err := mm.Header.WriteTo(w)
	if err != nil {
		return n, err
	}

	bn, err := mm.writeBody(w, boundary)
	return n + bn, err
}

// writeBody writes the preamble, the parts joined by boundaries, and the
// epilogue.
func (mm *Multipart) writeBody(w io.Writer, boundary string) (int64, error) {
	br := mm.Break()

	pn, err := w.Write(mm.prefix)
	n := int64(pn)
	if err != nil {
		return n, err
	}

	for i, part := range mm.parts {
		var bn int
		switch {
		case i > 0:
			bn, err = fmt.Fprintf(w, "%s--%s%s", br, boundary, br)
		case mm.prefix != nil:
			bn, err = fmt.Fprintf(w, "--%s%s", boundary, br)
		}
		n += int64(bn)
		if err != nil {
			return n, err
		}

		pn, err := part.WriteTo(w)
		n += pn
		if err != nil {
			return n, err
		}
	}

	if mm.suffix != nil {
		bn, err := fmt.Fprintf(w, "%s--%s--", br, boundary)
		n += int64(bn)
		if err != nil {
			return n, err
		}

		sn, err := w.Write(mm.suffix)
		n += int64(sn)
		if err != nil {
			return n, err
		}
	}

	return n, nil
}

// IsMultipart always returns true.
func (mm *Multipart) IsMultipart() bool {
	return true
}

// IsEncoded always returns false.
func (mm *Multipart) IsEncoded() bool {
	return false
}

// GetHeader returns the header for the message.
func (mm *Multipart) GetHeader() *header.Header {
	return &mm.Header
}

// GetReader always returns nil.
func (mm *Multipart) GetReader() io.Reader {
	return nil
}

// GetParts returns the sub-parts of this message or nil if there aren't any.
func (mm *Multipart) GetParts() []Part {
	return mm.parts
}

// WithParts returns a copy of this Multipart holding the given parts in place
// of the current ones. The header is cloned and the preamble and epilogue are
// kept, so the copy renders like the original apart from its parts.
func (mm *Multipart) WithParts(parts ...Part) *Multipart {
	suffix := mm.suffix
	if suffix == nil {
		suffix = mm.Break().Bytes()
	}

	prefix := mm.prefix
	if prefix == nil {
		prefix = []byte{}
	}

	return &Multipart{
		Header: *mm.Header.Clone(),
		prefix: prefix,
		suffix: suffix,
		parts:  parts,
	}
}

// newMultipart returns a Multipart of the given type with a fresh boundary
// and the given parts attached.
func newMultipart(mt string, lbr header.Break, parts ...Part) *Multipart {
	m := &Multipart{
		prefix: []byte{},
		suffix: lbr.Bytes(),
		parts:  parts,
	}
	m.SetBreak(lbr)
	m.SetMediaType(mt)
	_ = m.SetBoundary(GenerateBoundary())
	return m
}

// MultipartAlternative returns a Multipart with a Content-type header set to
// multipart/alternative and the given parts attached. The header uses the
// given line break.
func MultipartAlternative(lbr header.Break, parts ...Part) *Multipart {
	return newMultipart("multipart/alternative", lbr, parts...)
}

// MultipartMixed returns a Multipart with a Content-type header set to
// multipart/mixed and the given parts attached. The header uses the given line
// break.
func MultipartMixed(lbr header.Break, parts ...Part) *Multipart {
	return newMultipart("multipart/mixed", lbr, parts...)
}
