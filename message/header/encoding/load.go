// Package encoding provides a replacement decoder for field.CharsetDecoder.
// This loads all the encodings provided with:
//
// * golang.org/x/text/encoding/ianaindex
// * golang.org/x/text/encoding/htmlindex
//
// This will make the size of your compiled binaries considerably larger. But it
// will also give your code the ability to decode pretty much any character set
// it might encounter in the wild wild world of email.
package encoding

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	_ "golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/zostay/emledit/message/header/field"
)

func init() {
	field.CharsetDecoder = CharsetDecoder
}

// lookup finds the encoding for a charset label. The IANA registry is tried
// first, then the WHATWG labels browsers accept.
func lookup(charset string) (encoding.Encoding, error) {
	e, err := ianaindex.MIME.Encoding(charset)
	if err == nil && e != nil {
		return e, nil
	}

	e, herr := htmlindex.Get(charset)
	if herr == nil && e != nil {
		return e, nil
	}

	if err == nil {
		err = herr
	}
	return nil, fmt.Errorf("no encoding found for charset %q: %w", charset, err)
}

// CharsetDecoder provides a replacement decoder for field.CharsetDecoder, which
// can decode a wide range of rare and unusual character sets. The charsets
// handled by field.DefaultCharsetDecoder are still decoded there.
func CharsetDecoder(charset string, b []byte) (string, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "us-ascii", "ascii", "utf-8", "utf8", "iso-8859-1", "latin1":
		return field.DefaultCharsetDecoder(charset, b)
	}

	e, err := lookup(strings.TrimSpace(charset))
	if err != nil {
		return "", err
	}

	eb, err := e.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}

	return string(eb), nil
}
