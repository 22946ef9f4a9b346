package field

import (
	"bytes"
)

// BadStartError is returned when the header begins with junk text that does not
// appear to be a header. This text is preserved in the error object.
type BadStartError struct {
	BadStart []byte // the text skipped at the start of header
}

// Error returns the error message.
func (err *BadStartError) Error() string {
	return "header starts with text that does not appear to be a header"
}

// Line represents the unparsed content for a complete header field line.
type Line []byte

// Lines represents the unparsed content for zero or more header field
// lines.
type Lines []Line

// startsField returns true if the line looks like the start of a new field: it
// does not begin with whitespace and has a colon preceded by a name containing
// no whitespace.
func startsField(line []byte) bool {
	if line[0] == '\t' || line[0] == ' ' {
		return false
	}

	ix := bytes.IndexByte(line, ':')
	if ix <= 0 {
		return false
	}

	name := bytes.TrimRight(line[:ix], " \t")
	return len(name) > 0 && bytes.IndexAny(name, " \t") < 0
}

// ParseLines splits the given input into lines according to the rules we use to
// determine how to break header fields up inside a header. The input bytes are
// expected to include only the header. It returns the input as Lines, ready to
// feed into Parse.
//
// This is looser than RFC 5322. It accepts input the RFC would reject and
// leaves strictness to the output side.
//
// If the first line (or lines) of input start with spaces or contain no colons,
// these lines will be skipped in the Lines returned and a *BadStartError is
// returned alongside them.
//
// From then on, a new field starts on any line that does not start with a
// space and has a colon following a field name. Any other line is a
// continuation of the field before it.
func ParseLines(m, lb []byte) (Lines, error) {
	h := make(Lines, 0, len(m)/80)
	var err *BadStartError
	for _, line := range bytes.SplitAfter(m, lb) {
		if len(line) == 0 {
			break
		}

		// the blank line ending the header is not a field
		if bytes.Equal(line, lb) {
			continue
		}

		if !startsField(line) {
			if len(h) == 0 {
				if err != nil {
					err.BadStart = append(err.BadStart, line...)
				} else {
					err = &BadStartError{append([]byte{}, line...)}
				}
				continue
			}

			h[len(h)-1] = append(h[len(h)-1], line...)
		} else {
			h = append(h, line)
		}
	}

	if err != nil {
		return h, err
	}
	return h, nil
}

// Parse will take a single header field line, including any folded continuation
// lines, and construct a header field object. The body is unfolded and any
// MIME encoded words are decoded. The original bytes are retained as Raw.
func Parse(f Line, lb []byte) *Field {
	rawField := bytes.TrimSuffix(f, lb)

	off := 1
	ix := bytes.IndexByte(rawField, ':')
	if ix < 0 {
		ix = len(rawField)
		off = 0
	}

	// unfolding is not affected by choices made while folding, so the default
	// fold encoding will do
	name := string(DefaultFoldEncoding.Unfold(rawField[:ix]))
	body := string(bytes.TrimSpace(DefaultFoldEncoding.Unfold(rawField[ix+off:])))
	if decBody, err := Decode(body); err == nil {
		body = decBody
	}

	return &Field{
		Base: Base{name: name, body: body},
		Raw:  &Raw{field: rawField, colon: ix},
	}
}
