package message

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/zostay/emledit/internal/scanner"
	"github.com/zostay/emledit/message/header"
	"github.com/zostay/emledit/message/transfer"
)

// Constants related to Parse() options.
const (
	// DefaultMaxMultipartDepth is the default depth the parser will recurse
	// into a message.
	DefaultMaxMultipartDepth = 10

	// DefaultChunkSize is the initial size of the buffer used while splitting a
	// multipart body into parts. The buffer grows as needed up to the maximum
	// part length.
	DefaultChunkSize = 16_384

	// DefaultMaxHeaderLength is the default maximum byte length to scan before
	// giving up on finding the end of the header.
	DefaultMaxHeaderLength = 64 * 1024

	// DefaultMaxPartLength is the default maximum byte length of a message part
	// at any given level.
	DefaultMaxPartLength = 64 * 1024 * 1024
)

var breaks = []header.Break{
	header.CRLF,
	header.LFCR,
	header.LF,
	header.CR,
}

type parser struct {
	maxHeaderLen int
	maxPartLen   int
	maxDepth     int
	chunkSize    int
	decode       bool
	strict       bool
}

func (pr *parser) clone() *parser {
	p := *pr
	return &p
}

var defaultParser = &parser{
	maxHeaderLen: DefaultMaxHeaderLength,
	maxPartLen:   DefaultMaxPartLength,
	maxDepth:     DefaultMaxMultipartDepth,
	chunkSize:    DefaultChunkSize,
}

// ParseOption refers to options that may be passed to the Parse function to
// modify how the parser works.
type ParseOption func(pr *parser)

// WithMaxHeaderLength is a ParseOption that sets the maximum size of a header.
// If the end of the top-level header is not found within this many bytes,
// Parse fails with a *MalformedMessageError wrapping ErrLargeHeader. Setting
// this to a value less than or equal to 0 will result in there being no
// maximum length. The default value is DefaultMaxHeaderLength.
func WithMaxHeaderLength(n int) ParseOption {
	return func(pr *parser) { pr.maxHeaderLen = n }
}

// WithMaxPartLength is a ParseOption that sets the maximum size of a message
// part at any level. A multipart body holding a larger part is left unsplit as
// an *Opaque, unless WithStrictMultipart() is given, in which case Parse fails
// with ErrLargePart. Setting this to a value less than or equal to 0 removes
// the limit.
func WithMaxPartLength(n int) ParseOption {
	return func(pr *parser) { pr.maxPartLen = n }
}

// DecodeTransferEncoding is a ParseOption that enables the decoding of
// Content-transfer-encoding. By default, Content-transfer-encoding will not be
// decoded, which allows for safer round-tripping of messages. Use
// Opaque.DecodedContent() to get at the decoded bytes without this option.
func DecodeTransferEncoding() ParseOption {
	return func(pr *parser) { pr.decode = true }
}

// WithChunkSize is a ParseOption that sets the initial size of the buffer used
// to split multipart bodies. The default chunk size is DefaultChunkSize.
func WithChunkSize(chunkSize int) ParseOption {
	return func(pr *parser) { pr.chunkSize = chunkSize }
}

// WithMaxDepth is a ParseOption that controls how deep the parser will go in
// recursively parsing a multipart message. This is set to
// DefaultMaxMultipartDepth by default.
func WithMaxDepth(maxDepth int) ParseOption {
	return func(pr *parser) { pr.maxDepth = maxDepth }
}

// WithoutMultipart is a ParseOption that will not allow parsing of any
// multipart messages. The message returned from Parse() will always be *Opaque.
func WithoutMultipart() ParseOption {
	return func(pr *parser) { pr.maxDepth = 0 }
}

// WithoutRecursion is a ParseOption that will only allow a single level of
// multipart parsing.
func WithoutRecursion() ParseOption {
	return func(pr *parser) { pr.maxDepth = 1 }
}

// WithUnlimitedRecursion is a ParseOption that will allow the parser to parse
// sub-parts of any depth.
func WithUnlimitedRecursion() ParseOption {
	return func(pr *parser) { pr.maxDepth = -1 }
}

// WithStrictMultipart is a ParseOption that turns problems splitting a
// multipart body into errors. Without it, a multipart part with no boundary
// parameter or with oversized parts is kept whole as an *Opaque.
func WithStrictMultipart() ParseOption {
	return func(pr *parser) { pr.strict = true }
}

// searchForSplit looks for the blank line ending the header. It returns the
// index where the blank line starts and the line break in use, or -1 if there
// is no blank line. The earliest match wins.
func searchForSplit(buf []byte) (pos int, lbr header.Break) {
	pos = -1
	for _, b := range breaks {
		s := []byte(b + b)
		if ix := bytes.Index(buf, s); ix >= 0 && (pos < 0 || ix < pos) {
			pos = ix
			lbr = b
		}
	}
	return
}

// searchForBreak returns the earliest line break found in buf or the fallback
// if there are none.
func searchForBreak(buf []byte, fallback header.Break) header.Break {
	pos := -1
	lbr := fallback
	for _, b := range breaks {
		if ix := bytes.Index(buf, b.Bytes()); ix >= 0 && (pos < 0 || ix < pos) {
			pos = ix
			lbr = b
		}
	}
	return lbr
}

// parseToOpaque splits the input into header and body and returns an Opaque
// with the header parsed. A subpart that begins with the parent line break has
// an empty header. When no blank line is found, the whole input is taken as
// header.
func (pr *parser) parseToOpaque(data []byte, parent header.Break) (*Opaque, error) {
	var (
		hdr           []byte
		body          []byte
		lbr           header.Break
		missingBreaks int
	)

	pos, splitBr := searchForSplit(data)
	switch {
	case parent != header.NoBreak && bytes.HasPrefix(data, parent.Bytes()):
		lbr = parent
		body = data[len(lbr):]
	case pos >= 0:
		if pr.maxHeaderLen > 0 && pos > pr.maxHeaderLen {
			return nil, ErrLargeHeader
		}
		lbr = splitBr
		hdr = data[:pos+len(lbr)]
		body = data[pos+2*len(lbr):]
	default:
		if pr.maxHeaderLen > 0 && len(data) > pr.maxHeaderLen {
			return nil, ErrLargeHeader
		}
		fallback := parent
		if fallback == header.NoBreak {
			fallback = header.LF
		}
		lbr = searchForBreak(data, fallback)
		hdr = data
		missingBreaks = 2
		if bytes.HasSuffix(data, lbr.Bytes()) {
			missingBreaks = 1
		}
	}

	head, err := header.Parse(hdr, lbr)
	if head == nil {
		return nil, err
	}

	msg := &Opaque{
		Header:        *head,
		content:       body,
		encoded:       true,
		missingBreaks: missingBreaks,
	}

	if pr.decode && body != nil {
		dec, err := io.ReadAll(transfer.ApplyTransferDecoding(head, bytes.NewReader(body)))
		if err == nil {
			msg.content = dec
			msg.encoded = false
		}
	}

	return msg, nil
}

// Parse will consume all input from the given reader and return a Generic
// message containing the parsed content.
//
// During the first phase, the input is searched for the first blank line. The
// line break used there (e.g., "\r\n" or "\n") becomes the line break for the
// whole message and the bytes before it are parsed as header fields. Any text
// before the first field is kept in the header (see header.BadStart()) so it
// can be written out again.
//
// Parse fails with a *MalformedMessageError when the input is empty, when the
// header holds no fields, or when the end of the header is not found within
// the WithMaxHeaderLength() limit.
//
// During the second phase, a message with a multipart/* Content-type is broken
// into parts on its boundary parameter and each part is parsed the same way,
// recursively, until the WithMaxDepth() limit is reached. Other types,
// including message/rfc822, are left as *Opaque leaves. A multipart part that
// cannot be split is also kept as an *Opaque unless the WithStrictMultipart()
// option is given.
//
// If the DecodeTransferEncoding() option is passed, the content of each leaf
// will also have its Content-transfer-encoding decoded. This is not the
// default because re-encoding the content on output is very likely to modify
// the original message. Without it, writing a parsed message back out with
// WriteTo() reproduces the input byte-for-byte.
func Parse(r io.Reader, opts ...ParseOption) (Generic, error) {
	pr := defaultParser.clone()
	for _, opt := range opts {
		opt(pr)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, &MalformedMessageError{ErrEmptyMessage}
	}

	msg, err := pr.parseToOpaque(data, header.NoBreak)
	if err != nil {
		return nil, &MalformedMessageError{err}
	}

	if msg.Len() == 0 {
		return nil, &MalformedMessageError{ErrNoHeader}
	}

	return pr.parse(msg, 0)
}

// parse splits a multipart message into parts.
func (pr *parser) parse(msg *Opaque, depth int) (Generic, error) {
	// we're too deep: stop here and just return the original
	if pr.maxDepth >= 0 && depth >= pr.maxDepth {
		return msg, nil
	}

	if msg.content == nil {
		return msg, nil
	}

	pv, err := msg.GetParamValue(header.ContentType)
	if pv == nil || (err != nil && !errors.Is(err, header.ErrManyFields)) {
		return msg, nil
	}

	if pv.Type() != "multipart" {
		return msg, nil
	}

	if pv.Boundary() == "" {
		if pr.strict {
			return msg, ErrNoBoundary
		}
		return msg, nil
	}

	prefix, chunks, suffix, err := pr.splitParts(msg.content, pv.Boundary(), msg.Break())
	if err != nil {
		if pr.strict {
			return msg, err
		}
		return msg, nil
	}

	parts := make([]Part, 0, len(chunks))
	for _, chunk := range chunks {
		opMsg, err := pr.parseToOpaque(chunk, msg.Break())
		if err != nil {
			if pr.strict {
				return msg, err
			}
			return msg, nil
		}

		part, err := pr.parse(opMsg, depth+1)
		if err != nil {
			return msg, err
		}

		parts = append(parts, part)
	}

	return &Multipart{
		Header: msg.Header,
		prefix: prefix,
		suffix: suffix,
		parts:  parts,
	}, nil
}

// splitParts breaks a multipart body into the preamble, the parts, and the
// epilogue.
//
// The line break before the opening boundary (if any) belongs to the prefix.
// The line break after the final boundary (if any) belongs to the suffix. The
// line breaks around the middle boundaries belong to the boundary and are not
// included with the part.
//
// A nil prefix means there was no opening boundary. A nil suffix means there
// was no closing boundary.
func (pr *parser) splitParts(
	body []byte,
	boundary string,
	br header.Break,
) (prefix []byte, parts [][]byte, suffix []byte, err error) {
	sb := []byte(fmt.Sprintf("--%s%s", boundary, br))
	mb := []byte(fmt.Sprintf("%s--%s%s", br, boundary, br))
	eb := []byte(fmt.Sprintf("%s--%s--%s", br, boundary, br))
	fb := []byte(fmt.Sprintf("%s--%s--", br, boundary))

	const (
		modeStart = iota
		modeMiddle
		modeEnd
	)

	maxPartLen := pr.maxPartLen
	if maxPartLen <= 0 || maxPartLen > len(body) {
		maxPartLen = len(body) + 1
	}

	chunkSize := pr.chunkSize
	if chunkSize <= 0 || chunkSize > maxPartLen {
		chunkSize = maxPartLen
	}

	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, chunkSize), maxPartLen)

	mode := modeStart
	awaitingPrefix := true
	sc.Split(scanner.MakeSplitFuncExitByAdvance(
		func(data []byte, atEOF bool) (advance int, token []byte, err error) {
			switch mode {
			case modeStart:
				if !atEOF && len(data) < len(sb) {
					// not enough input to tell whether the prefix is empty
					return 0, nil, nil
				}

				if bytes.HasPrefix(data, sb) {
					prefix = []byte{}
					awaitingPrefix = false
					advance = len(sb)
				}

				mode = modeMiddle
				err = scanner.ErrContinue

			case modeMiddle:
				if ix := bytes.Index(data, mb); ix >= 0 {
					advance = ix + len(mb)
					if awaitingPrefix {
						prefix = bytes.Clone(data[:ix+len(br)])
						awaitingPrefix = false
					} else {
						token = data[:ix]
					}
				} else if atEOF {
					mode = modeEnd
					err = scanner.ErrContinue
				}

			case modeEnd:
				if awaitingPrefix {
					prefix = nil
				}

				switch ix := bytes.Index(data, eb); {
				case ix >= 0:
					token = data[:ix]
					suffix = bytes.Clone(data[ix+len(fb):])
				case bytes.HasSuffix(data, fb):
					token = data[:len(data)-len(fb)]
					suffix = []byte{}
				default:
					token = data
					suffix = nil
				}

				err = bufio.ErrFinalToken
			}
			return
		},
	))

	for sc.Scan() {
		parts = append(parts, bytes.Clone(sc.Bytes()))
	}

	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, nil, nil, ErrLargePart
		}
		return nil, nil, nil, err
	}

	// input ending right after a boundary leaves an empty final part that the
	// scanner never sees
	if mode == modeMiddle && !awaitingPrefix {
		parts = append(parts, []byte{})
	}

	return prefix, parts, suffix, nil
}
