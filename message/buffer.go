package message

import (
	"bytes"
	"errors"

	"github.com/zostay/emledit/message/header"
)

const (
	// DefaultMultipartContentType is the Content-type to use with a multipart
	// message when no explicit Content-type header has been set.
	DefaultMultipartContentType = "multipart/mixed"
)

// BufferMode tells whether a Buffer holds bytes or parts.
type BufferMode int

const (
	// ModeUnset indicates that the Buffer has not yet been modified.
	ModeUnset BufferMode = iota

	// ModeSingle indicates that the Buffer has been used as an io.Writer.
	ModeSingle

	// ModeMultipart indicates that the Buffer has had the parts manipulated.
	ModeMultipart
)

var (
	// ErrPartsBuffer is returned by Write() if that method is called after
	// calling the Add() method.
	ErrPartsBuffer = errors.New("message buffer is in parts mode")

	// ErrOpaqueBuffer is returned by Add() if that method is called after
	// calling the Write() method.
	ErrOpaqueBuffer = errors.New("message buffer is in opaque mode")

	// ErrModeUnset is returned by Opaque() and Multipart() when they are called
	// before anything has been written to the current buffer.
	ErrModeUnset = errors.New("no message has been built")

	// ErrParsesAsNotMultipart is returned by Multipart() when the Buffer is in
	// ModeSingle and the bytes written do not split into parts.
	ErrParsesAsNotMultipart = errors.New("cannot parse non-multipart message as multipart")
)

// Buffer provides tools for constructing email messages. Set the header
// fields on the embedded Header, then either write the body to the Buffer as
// an io.Writer or Add() parts to it, but not both:
//
// * Single mode. Calling Write() treats the message body as a collection of
// bytes. The bytes written are the unencoded content. The
// Content-transfer-encoding set on the header is applied when the message
// built is written out.
//
// * Multipart mode. Calling Add() treats the message as a collection of
// sub-parts.
//
// Mixing the modes panics with ErrOpaqueBuffer or ErrPartsBuffer. The
// BufferMode may be checked using the Mode() method.
//
// Call Opaque() or Multipart() to get the constructed message at the end.
// After that, the Buffer should be disposed of.
type Buffer struct {
	header.Header
	parts []Part
	buf   *bytes.Buffer
}

// Mode returns ModeUnset until a modification method is called. After that,
// it returns ModeSingle if the Buffer has been written to or ModeMultipart if
// parts have been added.
func (b *Buffer) Mode() BufferMode {
	switch {
	case b.parts != nil:
		return ModeMultipart
	case b.buf != nil:
		return ModeSingle
	}
	return ModeUnset
}

// SetMultipart sets the Mode of the buffer to ModeMultipart with room for the
// given number of parts. This will panic if the mode is already ModeSingle.
func (b *Buffer) SetMultipart(capacity int) {
	if err := b.initParts(capacity); err != nil {
		panic(err)
	}
}

// SetSingle sets the Mode of the buffer to ModeSingle. Use this to build a
// message with an empty body. This will panic if the mode is already
// ModeMultipart.
func (b *Buffer) SetSingle() {
	if err := b.initBuffer(); err != nil {
		panic(err)
	}
}

func (b *Buffer) initBuffer() error {
	if b.parts != nil {
		return ErrPartsBuffer
	}
	if b.buf == nil {
		b.buf = &bytes.Buffer{}
	}
	return nil
}

func (b *Buffer) initParts(capacity int) error {
	if capacity <= 0 {
		capacity = 10
	}
	if b.buf != nil {
		return ErrOpaqueBuffer
	}
	if b.parts == nil {
		b.parts = make([]Part, 0, capacity)
	}
	return nil
}

// Add will add one or more parts to the message. It will panic if you attempt
// to call this function after already calling Write().
func (b *Buffer) Add(msgs ...Part) {
	if err := b.initParts(0); err != nil {
		panic(err)
	}
	b.parts = append(b.parts, msgs...)
}

// Write implements io.Writer so you can write the message body to this
// buffer. This will panic if called after Add().
func (b *Buffer) Write(p []byte) (int, error) {
	if err := b.initBuffer(); err != nil {
		panic(err)
	}
	return b.buf.Write(p)
}

// WriteString writes the string to the message body. This will panic if
// called after Add().
func (b *Buffer) WriteString(s string) (int, error) {
	return b.Write([]byte(s))
}

func (b *Buffer) prepareForMultipartOutput() {
	if _, err := b.GetMediaType(); errors.Is(err, header.ErrNoSuchField) {
		b.SetMediaType(DefaultMultipartContentType)
	}

	if _, err := b.GetBoundary(); errors.Is(err, header.ErrNoSuchFieldParameter) {
		_ = b.SetBoundary(GenerateBoundary())
	}
}

// Opaque returns an *Opaque built from the Buffer.
//
// In ModeSingle, the header and the bytes written are returned. The content is
// encoded according to the Content-transfer-encoding when written out.
//
// In ModeMultipart, the parts are serialized into the body of the returned
// message. If no multipart/* Content-type has been set, it is set to
// DefaultMultipartContentType. A random boundary is set when none is present.
//
// This method will panic if the BufferMode is ModeUnset.
func (b *Buffer) Opaque() *Opaque {
	switch b.Mode() {
	case ModeSingle:
		return &Opaque{
			Header:  b.Header,
			content: b.buf.Bytes(),
		}
	case ModeMultipart:
		mm := b.multipart()
		boundary, _ := mm.GetBoundary()

		buf := &bytes.Buffer{}
		_, _ = mm.writeBody(buf, boundary)

		return &Opaque{
			Header:  b.Header,
			content: buf.Bytes(),
			encoded: true,
		}
	}
	panic(ErrModeUnset)
}

// OpaqueAlreadyEncoded works just like Opaque(), but marks the object as
// already having the Content-transfer-encoding applied. Use this when you write
// a message in encoded form. This does not perform any encoding.
func (b *Buffer) OpaqueAlreadyEncoded() *Opaque {
	msg := b.Opaque()
	msg.encoded = true
	return msg
}

// multipart builds the Multipart for ModeMultipart.
func (b *Buffer) multipart() *Multipart {
	b.prepareForMultipartOutput()
	return &Multipart{
		Header: b.Header,
		prefix: []byte{},
		suffix: b.Break().Bytes(),
		parts:  b.parts,
	}
}

// Multipart returns a *Multipart built from the Buffer. If no multipart/*
// Content-type has been set, it is set to DefaultMultipartContentType. A
// random boundary is set when none is present.
//
// In ModeMultipart, the header and the parts added are returned.
//
// In ModeSingle, the bytes written are split on the boundary (a single level
// only). If they do not split into parts, ErrParsesAsNotMultipart is
// returned.
//
// This method will panic if the BufferMode is ModeUnset.
func (b *Buffer) Multipart() (*Multipart, error) {
	switch b.Mode() {
	case ModeSingle:
		b.prepareForMultipartOutput()
		msg := &Opaque{Header: b.Header, content: b.buf.Bytes(), encoded: true}

		pr := defaultParser.clone()
		WithoutRecursion()(pr)
		WithStrictMultipart()(pr)
		gmsg, err := pr.parse(msg, 0)
		if err != nil {
			return nil, err
		}

		if mm, isMultipart := gmsg.(*Multipart); isMultipart {
			return mm, nil
		}
		return nil, ErrParsesAsNotMultipart
	case ModeMultipart:
		return b.multipart(), nil
	}
	panic(ErrModeUnset)
}
