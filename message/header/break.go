package header

// Break is the line ending used by a header and, by extension, the message it
// belongs to.
type Break string

// Line endings recognized by the parser. NoBreak means none has been chosen;
// writers fall back to LF in that case.
const (
	NoBreak Break = ""
	CRLF    Break = "\r\n"
	LF      Break = "\n"
	CR      Break = "\r"
	LFCR    Break = "\n\r"
)

func (b Break) String() string { return string(b) }

// Bytes returns the line ending as a byte slice.
func (b Break) Bytes() []byte { return []byte(b) }
