package edit

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/zostay/emledit/message"
	"github.com/zostay/emledit/message/header"
	"github.com/zostay/emledit/message/header/encoding"
	"github.com/zostay/emledit/message/header/field"
	"github.com/zostay/emledit/message/transfer"
	"github.com/zostay/emledit/message/walk"
)

// Body holds the text bodies found in a message. Only the first HTML part and
// the first plain text part are used.
type Body struct {
	// HTML is the decoded text of the first text/html part.
	HTML string

	// Plain is the decoded text of the first text/plain part.
	Plain string

	// HTMLPart is the part HTML came from or nil if there is none.
	HTMLPart message.Part

	// PlainPart is the part Plain came from or nil if there is none.
	PlainPart message.Part
}

// HasHTML returns true if an HTML part was found.
func (b *Body) HasHTML() bool {
	return b.HTMLPart != nil
}

// HasPlain returns true if a plain text part was found.
func (b *Body) HasPlain() bool {
	return b.PlainPart != nil
}

// Attachment describes a part that is neither body text nor a container.
type Attachment struct {
	// Index is the position of the attachment in the list returned by
	// Extract. Rebuild selects attachments to keep by this number.
	Index int

	// Filename is the decoded filename, if any.
	Filename string

	// Content holds the payload with the transfer encoding removed.
	Content []byte

	// ContentType is the media type of the part, without parameters.
	ContentType string

	// ContentID is the Content-ID of the part with the angle brackets removed.
	ContentID string

	// Inline is true if the Content-Disposition is inline.
	Inline bool

	// Part is the original part. It is reused as-is when the attachment is
	// kept.
	Part message.Part
}

// Extract walks the message in document order and returns the first HTML
// body, the first plain body, and the attachments.
//
// A leaf that is not the first of its text type is an attachment when it has
// a Content-Disposition of attachment or inline or when it has a filename.
// Other leaves are ignored. A part with no Content-Type is plain text. When
// the message is a single part, it can only be a body, never an attachment.
//
// Attachments with an empty payload are left out. Problems decoding text are
// never fatal: undecodable bytes are replaced with U+FFFD.
func Extract(msg message.Part) (*Body, []*Attachment) {
	body := &Body{}
	atts := make([]*Attachment, 0, 4)

	_ = walk.AndProcessOpaque(
		func(part message.Part, parents []message.Part) error {
			mt := mediaType(part.GetHeader())
			switch {
			case mt == "text/html" && body.HTMLPart == nil:
				body.HTML = decodeText(part)
				body.HTMLPart = part
				return nil
			case mt == "text/plain" && body.PlainPart == nil:
				body.Plain = decodeText(part)
				body.PlainPart = part
				return nil
			case len(parents) == 0:
				return nil
			}

			if att := makeAttachment(part, mt); att != nil {
				att.Index = len(atts)
				atts = append(atts, att)
			}
			return nil
		}, msg,
	)

	return body, atts
}

// mediaType returns the media type of the part, defaulting to text/plain.
func mediaType(h *header.Header) string {
	mt, err := h.GetMediaType()
	if mt == "" || (err != nil && !errors.Is(err, header.ErrManyFields)) {
		return "text/plain"
	}
	return strings.ToLower(mt)
}

// makeAttachment returns the Attachment for the part or nil if the part is not
// an attachment or has an empty payload.
func makeAttachment(part message.Part, mt string) *Attachment {
	h := part.GetHeader()

	pres, _ := h.GetPresentation()
	pres = strings.ToLower(pres)
	fn := filename(h)
	if pres != "attachment" && pres != "inline" && fn == "" {
		return nil
	}

	content := decodedContent(part)
	if len(content) == 0 {
		return nil
	}

	cid, _ := h.GetContentID()

	return &Attachment{
		Filename:    fn,
		Content:     content,
		ContentType: mt,
		ContentID:   cid,
		Inline:      pres == "inline",
		Part:        part,
	}
}

// filename returns the filename parameter of the Content-Disposition or the
// name parameter of the Content-Type.
func filename(h *header.Header) string {
	fn, _ := h.GetFilename()
	if fn == "" {
		if ct, _ := h.GetContentType(); ct != nil {
			fn = ct.Name()
		}
	}

	if dec, err := field.Decode(fn); err == nil {
		fn = dec
	}
	return fn
}

// decodedContent returns the content of a leaf with the transfer encoding
// removed. If decoding fails, whatever was decoded is returned. If nothing
// was, the raw content is returned.
func decodedContent(part message.Part) []byte {
	if op, isOpaque := part.(*message.Opaque); isOpaque {
		content, err := op.DecodedContent()
		if err != nil && len(content) == 0 {
			return op.GetContent()
		}
		return content
	}

	r := part.GetReader()
	if r == nil {
		return nil
	}

	raw, err := io.ReadAll(r)
	if err != nil || !part.IsEncoded() {
		return raw
	}

	content, err := io.ReadAll(transfer.ApplyTransferDecoding(part.GetHeader(), bytes.NewReader(raw)))
	if err != nil && len(content) == 0 {
		return raw
	}
	return content
}

// decodeText returns the content of a text part as a string, converted from
// the declared charset with line breaks normalized to "\n".
func decodeText(part message.Part) string {
	content := decodedContent(part)

	var text string
	charset, _ := part.GetHeader().GetCharset()
	if dec, err := encoding.CharsetDecoder(charset, content); err == nil && charset != "" {
		text = dec
	} else {
		text = strings.ToValidUTF8(string(content), string(utf8.RuneError))
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
