package edit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zostay/emledit/message"
	"github.com/zostay/emledit/message/header"
	"github.com/zostay/emledit/message/transfer"
	"github.com/zostay/emledit/message/walk"
)

// Subtypes of the body text given to Rebuild.
const (
	HTML  = "html"
	Plain = "plain"
)

// MaxLineLength is the longest line a 7bit text part may hold.
const MaxLineLength = 998

// ErrUnknownSubtype is returned by Rebuild when the Edit names a body subtype
// other than HTML or Plain.
var ErrUnknownSubtype = errors.New("unknown body subtype")

// EditableHeaders lists the header fields Rebuild may change, in the order
// they are added when missing.
var EditableHeaders = []string{
	"From",
	"To",
	"Cc",
	"Bcc",
	"Subject",
	"Date",
	"Delivered-To",
	"Return-Path",
}

// addressHeaders are the editable fields holding address lists.
var addressHeaders = map[string]bool{
	"From": true,
	"To":   true,
	"Cc":   true,
	"Bcc":  true,
}

// HeaderNotEditableError is returned by Rebuild when an edit names a header
// field that is not in EditableHeaders.
type HeaderNotEditableError struct {
	Name string
}

// Error returns the error message.
func (err *HeaderNotEditableError) Error() string {
	return fmt.Sprintf("header %q is not editable", err.Name)
}

// NewAttachment is a file to attach to the rebuilt message.
type NewAttachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Edit describes the changes Rebuild makes to a message.
type Edit struct {
	// Body is the new body text.
	Body string

	// Subtype is HTML or Plain. An empty Subtype means HTML.
	Subtype string

	// Headers maps editable header names to new values. Names are matched
	// without regard to case. An empty value removes the field.
	Headers map[string]string

	// Keep lists the Index of each attachment to keep.
	Keep []int

	// KeepAll keeps every attachment, ignoring Keep.
	KeepAll bool

	// Add lists new attachments.
	Add []NewAttachment
}

// canonicalHeader returns the name from EditableHeaders matching the given
// name or false.
func canonicalHeader(name string) (string, bool) {
	for _, h := range EditableHeaders {
		if strings.EqualFold(h, strings.TrimSpace(name)) {
			return h, true
		}
	}
	return "", false
}

// headerEdits checks the header edits and returns them keyed by canonical
// name.
func (e *Edit) headerEdits() (map[string]string, error) {
	edits := make(map[string]string, len(e.Headers))
	for name, value := range e.Headers {
		cname, ok := canonicalHeader(name)
		if !ok {
			return nil, &HeaderNotEditableError{Name: name}
		}
		edits[cname] = value
	}
	return edits, nil
}

// Rebuild returns a new message made from msg with the changes in the Edit
// applied. The original message is not modified.
//
// In HTML mode, the first HTML part is replaced in place and the first plain
// part is replaced with text derived from the new HTML. In Plain mode, only
// the first plain part is replaced and an HTML part is left as it was. A body
// part that is missing is added next to the other body part: inside the same
// multipart/alternative, or by wrapping the other body part in a new
// multipart/alternative. When there is no body part at all, the new body goes
// at the end of the top-level multipart. A single part message is turned into
// a multipart when parts must be added to it.
//
// Attachments are kept or dropped according to Keep and KeepAll. Kept
// attachments and other parts that are not edited are reused unchanged.
// Multiparts left empty by dropped attachments are removed. New attachments
// are appended to the top-level multipart.
//
// The editable header fields named in Headers are replaced. A name outside
// EditableHeaders returns a *HeaderNotEditableError.
func Rebuild(msg message.Part, e *Edit) (message.Part, error) {
	edits, err := e.headerEdits()
	if err != nil {
		return nil, err
	}

	subtype := strings.ToLower(e.Subtype)
	switch subtype {
	case "", HTML:
		subtype = HTML
	case Plain:
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownSubtype, e.Subtype)
	}

	lbr := msg.GetHeader().Break()
	b := &builder{
		lbr:     lbr,
		subtype: subtype,
	}

	if subtype == HTML {
		b.html = textPart(HTML, e.Body, lbr)
		b.plain = textPart(Plain, TextFromHTML(e.Body), lbr)
	} else {
		b.plain = textPart(Plain, e.Body, lbr)
	}

	adds := make([]message.Part, 0, len(e.Add))
	for _, na := range e.Add {
		adds = append(adds, attachmentPart(na, lbr))
	}

	var root message.Part
	if msg.IsMultipart() {
		root, err = b.rebuildMultipart(msg, e, adds)
	} else {
		root, err = b.rebuildSingle(msg, adds)
	}
	if err != nil {
		return nil, err
	}

	applyHeaderEdits(root.GetHeader(), edits)

	return root, nil
}

// builder holds the new body parts for a Rebuild.
type builder struct {
	lbr     header.Break
	subtype string
	html    message.Part
	plain   message.Part
}

// rebuildMultipart edits a message with a multipart at the top.
func (b *builder) rebuildMultipart(msg message.Part, e *Edit, adds []message.Part) (message.Part, error) {
	body, atts := Extract(msg)

	keep := make(map[int]bool, len(e.Keep))
	for _, ix := range e.Keep {
		keep[ix] = true
	}

	replace := make(map[message.Part]message.Part, 2)
	if body.HasHTML() && b.html != nil {
		replace[body.HTMLPart] = b.html
	}
	if body.HasPlain() {
		replace[body.PlainPart] = b.plain
	}

	drop := make(map[message.Part]bool, len(atts))
	for _, att := range atts {
		if !e.KeepAll && !keep[att.Index] {
			drop[att.Part] = true
		}
	}

	root, err := walk.AndTransform(
		func(part message.Part, _ []message.Part) (message.Part, error) {
			if r, ok := replace[part]; ok {
				return r, nil
			}
			if drop[part] {
				return nil, walk.ErrSkip
			}
			return part, nil
		}, msg,
	)
	if err != nil {
		return nil, err
	}

	htmlParent := parentOf(msg, body.HTMLPart)
	plainParent := parentOf(msg, body.PlainPart)

	switch {
	case b.subtype == HTML && !body.HasHTML() && body.HasPlain():
		if isAlternative(plainParent) {
			root, err = insertBeside(root, b.plain, b.html, false)
		} else {
			root, err = appendParts(root, b.html)
		}

	case b.subtype == HTML && body.HasHTML() && !body.HasPlain():
		if isAlternative(htmlParent) {
			root, err = insertBeside(root, b.html, b.plain, true)
		} else {
			root, err = replacePart(root, b.html,
				message.MultipartAlternative(b.lbr, b.plain, b.html))
		}

	case b.subtype == HTML && !body.HasHTML():
		if isAlternative(root) {
			root, err = appendParts(root, b.plain, b.html)
		} else {
			root, err = appendParts(root,
				message.MultipartAlternative(b.lbr, b.plain, b.html))
		}

	case b.subtype == Plain && !body.HasPlain() && body.HasHTML():
		if isAlternative(htmlParent) {
			root, err = insertBeside(root, body.HTMLPart, b.plain, true)
		} else {
			root, err = replacePart(root, body.HTMLPart,
				message.MultipartAlternative(b.lbr, b.plain, body.HTMLPart))
		}

	case b.subtype == Plain && !body.HasPlain():
		root, err = appendParts(root, b.plain)
	}
	if err != nil {
		return nil, err
	}

	// copy the top so editing the header leaves the original alone
	return appendParts(root, adds...)
}

// rebuildSingle edits a message with a single part.
func (b *builder) rebuildSingle(msg message.Part, adds []message.Part) (message.Part, error) {
	top, content := splitHeader(msg.GetHeader())
	orig, err := withHeader(msg, content)
	if err != nil {
		return nil, err
	}

	mt := mediaType(msg.GetHeader())

	var bodyPart message.Part
	switch {
	case b.subtype == HTML && (mt == "text/html" || mt == "text/plain"):
		bodyPart = message.MultipartAlternative(b.lbr, b.plain, b.html)
	case b.subtype == HTML:
		bodyPart = message.MultipartMixed(b.lbr,
			message.MultipartAlternative(b.lbr, b.plain, b.html), orig)
	case mt == "text/plain":
		bodyPart = b.plain
	case mt == "text/html":
		bodyPart = message.MultipartAlternative(b.lbr, b.plain, orig)
	default:
		bodyPart = message.MultipartMixed(b.lbr, b.plain, orig)
	}

	if len(adds) > 0 {
		if isMixed(bodyPart) {
			bodyPart, err = appendParts(bodyPart, adds...)
			if err != nil {
				return nil, err
			}
		} else {
			bodyPart = message.MultipartMixed(b.lbr, append([]message.Part{bodyPart}, adds...)...)
		}
	}

	if bodyPart.IsMultipart() {
		if _, err := top.Get(header.MIMEVersion); errors.Is(err, header.ErrNoSuchField) {
			top.Set("MIME-Version", "1.0")
		}
	}

	return withHeader(bodyPart, mergeHeader(top, bodyPart.GetHeader()))
}

// textPart builds a leaf holding the text. Line breaks are converted to lbr.
// ASCII text with short lines is sent as 7bit and anything else as base64.
func textPart(subtype, text string, lbr header.Break) message.Part {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	te := transfer.Bit7
	if !is7Bit(text) {
		te = transfer.Base64
	}

	if lbr != header.LF && lbr != header.NoBreak {
		text = strings.ReplaceAll(text, "\n", lbr.String())
	}

	buf := &message.Buffer{}
	buf.SetBreak(lbr)
	buf.SetMediaType("text/" + subtype)
	_ = buf.SetCharset("utf-8")
	buf.SetTransferEncoding(te)
	_, _ = buf.WriteString(text)
	return buf.Opaque()
}

// is7Bit returns true if the text is ASCII with no line longer than
// MaxLineLength.
func is7Bit(text string) bool {
	for i := 0; i < len(text); i++ {
		if text[i] >= 0x80 || text[i] == 0 {
			return false
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if len(line) > MaxLineLength {
			return false
		}
	}

	return true
}

// attachmentPart builds a base64 encoded attachment.
func attachmentPart(na NewAttachment, lbr header.Break) message.Part {
	ct := strings.TrimSpace(strings.SplitN(na.ContentType, ";", 2)[0])
	if ct == "" {
		ct = DefaultContentType
	}

	att := message.Attachment(na.Filename, ct, transfer.Base64, na.Content)
	att.SetBreak(lbr)
	return att
}

// parentOf returns the multipart holding target or nil.
func parentOf(root, target message.Part) message.Part {
	if target == nil {
		return nil
	}

	var parent message.Part
	_ = walk.AndProcess(
		func(part message.Part, parents []message.Part) error {
			if part == target && len(parents) > 0 {
				parent = parents[len(parents)-1]
				return walk.ErrStop
			}
			return nil
		}, root,
	)
	return parent
}

func isAlternative(part message.Part) bool {
	return part != nil && part.IsMultipart() && mediaType(part.GetHeader()) == "multipart/alternative"
}

func isMixed(part message.Part) bool {
	return part != nil && part.IsMultipart() && mediaType(part.GetHeader()) == "multipart/mixed"
}

// appendParts returns a copy of the multipart with the parts added at the
// end.
func appendParts(root message.Part, parts ...message.Part) (message.Part, error) {
	mm, isMultipart := root.(*message.Multipart)
	if !isMultipart {
		return nil, fmt.Errorf("cannot add parts to %T", root)
	}

	all := make([]message.Part, 0, len(mm.GetParts())+len(parts))
	all = append(all, mm.GetParts()...)
	all = append(all, parts...)
	return mm.WithParts(all...), nil
}

// insertBeside returns a copy of the message with the part added next to the
// anchor, before it or after it.
func insertBeside(root, anchor, part message.Part, before bool) (message.Part, error) {
	return walk.AndTransform(
		func(p message.Part, _ []message.Part) (message.Part, error) {
			mm, isMultipart := p.(*message.Multipart)
			if !isMultipart {
				return p, nil
			}

			for i, sub := range mm.GetParts() {
				if sub != anchor {
					continue
				}

				at := i + 1
				if before {
					at = i
				}

				parts := make([]message.Part, 0, len(mm.GetParts())+1)
				parts = append(parts, mm.GetParts()[:at]...)
				parts = append(parts, part)
				parts = append(parts, mm.GetParts()[at:]...)
				return mm.WithParts(parts...), nil
			}
			return p, nil
		}, root,
	)
}

// replacePart returns a copy of the message with target swapped for repl.
func replacePart(root, target, repl message.Part) (message.Part, error) {
	return walk.AndTransform(
		func(p message.Part, _ []message.Part) (message.Part, error) {
			if p == target {
				return repl, nil
			}
			return p, nil
		}, root,
	)
}
