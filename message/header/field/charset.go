package field

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Decoder represents the character decoding function used for transforming
// parsed data supplied in arbitrary text encodings into native unicode.
//
// Any byte present in the input that is invalid for the source character
// encoding should be replaced with unicode.ReplacementChar. If the source
// charset is not supported, an error should be returned.
type Decoder func(charset string, b []byte) (string, error)

// CharsetDecoder is the Decoder used to decode MIME words and text bodies. It
// only understands us-ascii, latin1, and utf-8 unless replaced. Importing the
// encoding package installs a decoder that knows every IANA charset:
//
//	import _ "github.com/zostay/emledit/message/header/encoding"
var CharsetDecoder Decoder = DefaultCharsetDecoder

// DefaultCharsetDecoder is the default decoder. It is able to handle us-ascii,
// iso-8859-1 (a.k.a. latin1), and utf-8 only. Anything else will result in an
// error.
//
// Bytes that are not valid in the named charset become
// unicode.ReplacementChar.
func DefaultCharsetDecoder(charset string, b []byte) (string, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "us-ascii", "ascii", "":
		var s strings.Builder
		for _, c := range b {
			if c > unicode.MaxASCII {
				s.WriteRune(unicode.ReplacementChar)
			} else {
				s.WriteByte(c)
			}
		}
		return s.String(), nil
	case "iso-8859-1", "latin1":
		var s strings.Builder
		for _, c := range b {
			s.WriteRune(rune(c))
		}
		return s.String(), nil
	case "utf-8", "utf8":
		var s strings.Builder
		for len(b) > 0 {
			r, size := utf8.DecodeRune(b)
			s.WriteRune(r)
			b = b[size:]
		}
		return s.String(), nil
	default:
		return "", fmt.Errorf("unsupported byte encoding %q", charset)
	}
}

// CharsetDecoderToCharsetReader transforms a Decoder into the interface used by
// mime.WordDecoder.
func CharsetDecoderToCharsetReader(decode Decoder) func(string, io.Reader) (io.Reader, error) {
	return func(charset string, r io.Reader) (io.Reader, error) {
		bs, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		s, err := decode(charset, bs)
		if err != nil {
			return nil, err
		}

		return strings.NewReader(s), nil
	}
}
