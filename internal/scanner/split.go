// Package scanner adapts bufio.SplitFunc so a split function may consume
// input without producing a token.
//
// A bufio.Scanner stops when a split function returns no token at EOF, even
// if there is unread input left. Multipart splitting needs to skip a preamble
// or switch modes without returning a token, so the split function wrapped by
// MakeSplitFuncExitByAdvance keeps being called until it returns a token, an
// error, asks for more data, or runs out of input.
package scanner

import (
	"bufio"
	"errors"
)

var (
	// ErrContinue may be returned by a split function wrapped with
	// MakeSplitFuncExitByAdvance to be called again right away with the
	// remaining data, even when it would otherwise return.
	ErrContinue = errors.New("split func continue")
)

// MakeSplitFuncExitByAdvance wraps split so that a call advancing over input
// without a token is followed by another call on the rest of the data. The
// wrapped function returns when split returns a token or an error other than
// ErrContinue, advances by zero, or consumes all of the data. The advances of
// the inner calls are summed.
func MakeSplitFuncExitByAdvance(split bufio.SplitFunc) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (int, []byte, error) {
		total := 0
		for {
			advance, token, err := split(data, atEOF)

			// advance == 0 asks the scanner for more input
			if !errors.Is(err, ErrContinue) && (token != nil || advance == 0 || len(data)-advance <= 0 || err != nil) {
				return total + advance, token, err
			}

			data = data[advance:]
			total += advance
		}
	}
}
