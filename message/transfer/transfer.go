package transfer

import (
	"io"
	"strings"

	"github.com/zostay/emledit/message/header"
)

// Names of the Content-transfer-encoding values understood here.
const (
	None            = ""
	Bit7            = "7bit"
	Bit8            = "8bit"
	Binary          = "binary"
	QuotedPrintable = "quoted-printable"
	Base64          = "base64"
)

// Codec encodes and decodes a single transfer encoding.
type Codec struct {
	// Encode wraps w so that bytes written are encoded. Lines are broken with
	// lbr where the encoding requires it. The caller must Close the result to
	// flush any partial quantum.
	Encode func(w io.Writer, lbr header.Break) io.WriteCloser

	// Decode wraps r so that bytes read are decoded.
	Decode func(r io.Reader) io.Reader
}

// Identity leaves bytes alone in both directions.
var Identity = Codec{Encode: identityEncoder, Decode: identityDecoder}

// Codecs maps lowercase encoding names to their codec.
var Codecs = map[string]Codec{
	None:            Identity,
	Bit7:            Identity,
	Bit8:            Identity,
	Binary:          Identity,
	QuotedPrintable: {Encode: NewQuotedPrintableEncoder, Decode: NewQuotedPrintableDecoder},
	Base64:          {Encode: NewBase64Encoder, Decode: NewBase64Decoder},
}

// codecFor looks up the codec named by the header's Content-transfer-encoding.
// Missing, malformed, and unknown values all resolve to Identity.
func codecFor(h *header.Header) Codec {
	cte, err := h.GetTransferEncoding()
	if err != nil {
		return Identity
	}

	if c, ok := Codecs[strings.ToLower(strings.TrimSpace(cte))]; ok {
		return c
	}
	return Identity
}

// ApplyTransferEncoding wraps w with the encoder named by the header. Close
// the returned writer when done.
func ApplyTransferEncoding(h *header.Header, w io.Writer) io.WriteCloser {
	return codecFor(h).Encode(w, h.Break())
}

// ApplyTransferDecoding wraps r with the decoder named by the header. A
// multipart entity is never decoded as a whole, whatever its header says.
func ApplyTransferDecoding(h *header.Header, r io.Reader) io.Reader {
	if ct, err := h.GetContentType(); err == nil && ct != nil && ct.Type() == "multipart" {
		return r
	}

	return codecFor(h).Decode(r)
}
