package field

import (
	"mime"
	"strings"
)

// Encode transforms a single header field body, MIME word encoding it if it
// contains characters that cannot appear in a header as-is. It outputs
// b-type (Base-64) encoding using UTF-8 as the character set. Plain ASCII is
// returned unchanged.
func Encode(body string) string {
	return mime.BEncoding.Encode("utf-8", body)
}

// Decode transforms a single header field body and looks for MIME word encoded
// field values. When they are found, these are decoded into native unicode.
func Decode(body string) (string, error) {
	if !strings.Contains(body, "=?") {
		return body, nil
	}

	dec := &mime.WordDecoder{
		CharsetReader: CharsetDecoderToCharsetReader(CharsetDecoder),
	}
	return dec.DecodeHeader(body)
}
