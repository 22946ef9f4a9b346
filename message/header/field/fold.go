package field

import (
	"bytes"
	"errors"
	"io"
	"strings"
)

// Folding defaults, following the line length limits of RFC 5322.
const (
	DefaultFoldIndent          = " "
	DefaultPreferredFoldLength = 78
	DefaultForcedFoldLength    = 998

	// DoNotFold turns folding off when used for both lengths.
	DoNotFold = -1
)

var (
	// DefaultFoldEncoding folds at the RFC 5322 limits with a single space
	// indent.
	DefaultFoldEncoding = &FoldEncoding{DefaultFoldIndent, DefaultPreferredFoldLength, DefaultForcedFoldLength}

	// DoNotFoldEncoding writes every field on a single line.
	DoNotFoldEncoding = &FoldEncoding{DefaultFoldIndent, DoNotFold, DoNotFold}
)

// Errors returned by NewFoldEncoding.
var (
	ErrFoldIndentSpace    = errors.New("fold indent may only contains spaces and tabs")
	ErrFoldIndentTooShort = errors.New("fold indent must contain at least one space or tab")
	ErrFoldIndentTooLong  = errors.New("fold indent must be shorter than the preferred fold length")
	ErrFoldLengthTooLong  = errors.New("preferred fold length must be no longer than the forced fold length")
	ErrFoldLengthTooShort = errors.New("preferred fold length and forced fold length cannot be too short")
	ErrDoNotFold          = errors.New("preferred fold length and forced fold length must both be -1 if either are -1")
)

// Break is the line ending written after each folded line.
type Break []byte

// FoldEncoding folds long field lines on output and unfolds them on input.
type FoldEncoding struct {
	foldIndent          string
	preferredFoldLength int
	forcedFoldLength    int
}

// NewFoldEncoding validates and returns a FoldEncoding. The indent must be
// made of spaces and tabs and be shorter than the preferred length, which in
// turn may not exceed the forced length. Pass DoNotFold for both lengths to
// disable folding.
func NewFoldEncoding(foldIndent string, preferredFoldLength, forcedFoldLength int) (*FoldEncoding, error) {
	switch {
	case strings.IndexFunc(foldIndent, isNonSpace) >= 0:
		return nil, ErrFoldIndentSpace
	case foldIndent == "":
		return nil, ErrFoldIndentTooShort
	case (preferredFoldLength == DoNotFold) != (forcedFoldLength == DoNotFold):
		return nil, ErrDoNotFold
	case preferredFoldLength == DoNotFold:
	case len(foldIndent) >= preferredFoldLength:
		return nil, ErrFoldIndentTooLong
	case preferredFoldLength > forcedFoldLength:
		return nil, ErrFoldLengthTooLong
	case preferredFoldLength < 3 || forcedFoldLength < 3:
		return nil, ErrFoldLengthTooShort
	}

	return &FoldEncoding{foldIndent, preferredFoldLength, forcedFoldLength}, nil
}

// Unfold removes the line endings from a folded field, leaving the folding
// whitespace in place.
func (vf *FoldEncoding) Unfold(f []byte) []byte {
	uf := make([]byte, 0, len(f))
	for _, b := range f {
		if b != '\r' && b != '\n' {
			uf = append(uf, b)
		}
	}
	return uf
}

func isSpace(c rune) bool    { return c == ' ' || c == '\t' }
func isNonSpace(c rune) bool { return !isSpace(c) }

// foldWriter tracks the byte count and first error across many writes.
type foldWriter struct {
	out       io.Writer
	indent    []byte
	lbr       []byte
	continued bool
	n         int64
	err       error
}

func (w *foldWriter) write(b []byte) {
	if w.err != nil {
		return
	}
	n, err := w.out.Write(b)
	w.n += int64(n)
	w.err = err
}

// emit writes line[:end] as one output line and returns the rest with
// leading whitespace removed.
func (w *foldWriter) emit(line []byte, end int) []byte {
	if w.continued && !isSpace(rune(line[0])) {
		w.write(w.indent)
	}
	w.write(line[:end])
	w.write(w.lbr)
	w.continued = true
	return bytes.TrimLeft(line[end:], " \t")
}

// Fold writes f, which should be a complete "Name: body" line without its
// line ending, folding it into lines that end with lb. It prefers breaking at
// whitespace before the preferred length. A run without whitespace is only
// cut mid-word when it would pass the forced length. It returns the number of
// bytes written.
func (vf *FoldEncoding) Fold(out io.Writer, f []byte, lb Break) (int64, error) {
	w := &foldWriter{out: out, indent: []byte(vf.foldIndent), lbr: lb}

	if vf.preferredFoldLength == DoNotFold || len(f) < vf.preferredFoldLength {
		w.write(f)
		w.write(lb)
		return w.n, w.err
	}

	soft := vf.preferredFoldLength - 2
	hard := vf.forcedFoldLength - 2
	for _, line := range bytes.Split(f, lb) {
		for len(line) > 0 && w.err == nil {
			line = w.emit(line, breakPoint(line, w.continued, soft, hard))
		}
	}

	return w.n, w.err
}

// breakPoint chooses where the next output line ends.
func breakPoint(line []byte, continued bool, soft, hard int) int {
	if len(line) <= soft {
		return len(line)
	}

	// the first word after the field name always stays on the first line
	start := 0
	if !continued {
		colon := bytes.IndexByte(line, ':')
		if ix := bytes.IndexFunc(line[colon+1:], isNonSpace); ix >= 0 {
			start = colon + 1 + ix
		}
	} else if ix := bytes.IndexFunc(line, isNonSpace); ix >= 0 {
		start = ix
	}

	if start < soft {
		if ix := bytes.LastIndexFunc(line[start:soft], isSpace); ix > 0 {
			return start + ix
		}
	}

	if ix := bytes.IndexFunc(line[start:], isSpace); ix > 0 && start+ix < hard {
		return start + ix
	}

	if len(line) > hard {
		return soft
	}
	return len(line)
}
