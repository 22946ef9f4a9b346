package header

import (
	"errors"

	"github.com/zostay/emledit/message/header/field"
)

// Parse will parse the given slice of bytes into an email header using the
// given line break string. It will assume the entire string given represents
// the header to be parsed.
//
// Parsed fields keep their raw bytes, so writing the header back out reproduces
// the input. Fields that are added or changed later are folded with
// field.DefaultFoldEncoding.
//
// Junk text ahead of the first field is kept and a *field.BadStartError is
// returned alongside the header.
func Parse(m []byte, lb Break) (*Header, error) {
	lines, err := field.ParseLines(m, lb.Bytes())

	var badStartErr *field.BadStartError
	var finalErr error
	var badStart []byte
	if errors.As(err, &badStartErr) {
		finalErr = badStartErr
		badStart = badStartErr.BadStart
	} else if err != nil {
		return nil, err
	}

	fields := make([]*field.Field, len(lines))
	for i, line := range lines {
		fields[i] = field.Parse(line, lb.Bytes())
	}

	h := &Header{
		Base: Base{
			lbr:      lb,
			vf:       field.DefaultFoldEncoding,
			badStart: badStart,
			fields:   fields,
		},
	}

	return h, finalErr
}
