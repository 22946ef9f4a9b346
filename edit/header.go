package edit

import (
	"fmt"
	"strings"

	"github.com/zostay/emledit/message"
	"github.com/zostay/emledit/message/header"
)

// isContentField returns true for the MIME fields describing a part's content.
func isContentField(name string) bool {
	return strings.HasPrefix(strings.ToLower(name), "content-")
}

// splitHeader separates the top-level fields of a header from the fields
// describing the content.
func splitHeader(h *header.Header) (top, content *header.Header) {
	top = h.Clone()
	content = &header.Header{}
	content.SetBreak(h.Break())

	seen := map[string]bool{}
	for _, f := range h.ListFields() {
		if !isContentField(f.Name()) {
			continue
		}

		content.InsertBeforeField(content.Len(), f.Name(), f.Body())

		lname := strings.ToLower(f.Name())
		if !seen[lname] {
			top.Delete(f.Name())
			seen[lname] = true
		}
	}

	return top, content
}

// mergeHeader returns a copy of top with the fields of content added at the
// end.
func mergeHeader(top, content *header.Header) *header.Header {
	m := top.Clone()
	for _, f := range content.ListFields() {
		m.InsertBeforeField(m.Len(), f.Name(), f.Body())
	}
	return m
}

// withHeader returns a copy of the part using the given header.
func withHeader(part message.Part, h *header.Header) (message.Part, error) {
	b := &message.Buffer{Header: *h}

	if part.IsMultipart() {
		b.SetMultipart(len(part.GetParts()))
		b.Add(part.GetParts()...)
		return b.Multipart()
	}

	op, isOpaque := part.(*message.Opaque)
	if !isOpaque {
		return nil, fmt.Errorf("cannot copy part of type %T", part)
	}

	if op.GetContent() == nil {
		b.SetSingle()
	} else {
		_, _ = b.Write(op.GetContent())
	}

	if op.IsEncoded() {
		return b.OpaqueAlreadyEncoded(), nil
	}
	return b.Opaque(), nil
}

// headerLineBreaks strips line breaks so an edited value cannot start a new
// header field.
var headerLineBreaks = strings.NewReplacer("\r", "", "\n", "")

// applyHeaderEdits replaces the edited fields with the values as given, less
// any line breaks. A blank value removes the field.
func applyHeaderEdits(h *header.Header, edits map[string]string) {
	for _, name := range EditableHeaders {
		value, edited := edits[name]
		if !edited {
			continue
		}

		value = headerLineBreaks.Replace(value)
		switch {
		case strings.TrimSpace(value) == "":
			h.Delete(name)
		case addressHeaders[name]:
			h.SetAddressText(name, value)
		default:
			h.Set(name, value)
		}
	}
}
