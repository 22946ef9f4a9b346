package field

import "bytes"

// Base is the logical view of a field: its name and decoded body.
type Base struct {
	name string
	body string
}

func (f *Base) Name() string        { return f.name }
func (f *Base) SetName(name string) { f.name = name }
func (f *Base) Body() string        { return f.body }
func (f *Base) SetBody(body string) { f.body = body }

// String renders "Name: body", word encoding the body when it is not plain
// ASCII.
func (f *Base) String() string { return f.name + ": " + Encode(f.body) }

// Bytes is String as a byte slice.
func (f *Base) Bytes() []byte { return []byte(f.String()) }

// Raw is a field exactly as read, folding and encoded words included, without
// its final line break. It is never modified after parsing.
type Raw struct {
	field []byte
	colon int
}

func (f *Raw) String() string { return string(f.field) }
func (f *Raw) Bytes() []byte  { return f.field }

// Name returns the raw text before the colon.
func (f *Raw) Name() string { return string(f.field[:f.colon]) }

// Body returns the raw text after the colon, or "" when there is no colon.
func (f *Raw) Body() string {
	if f.colon >= len(f.field) {
		return ""
	}
	return string(f.field[f.colon+1:])
}

// Field pairs the logical value of a header field with the bytes it was
// parsed from. Name and Body always come from the logical value. String and
// Bytes return the original bytes while they are present; changing the name
// or body discards them, so an edited field is rendered fresh.
type Field struct {
	Base
	*Raw
}

// New returns a field with no original bytes.
func New(name, body string) *Field {
	return &Field{Base: Base{name: name, body: body}}
}

func (f *Field) Name() string { return f.Base.Name() }
func (f *Field) Body() string { return f.Base.Body() }

func (f *Field) String() string {
	if f.Raw != nil {
		return f.Raw.String()
	}
	return f.Base.String()
}

func (f *Field) Bytes() []byte {
	if f.Raw != nil {
		return f.Raw.Bytes()
	}
	return f.Base.Bytes()
}

// HasRaw reports whether the field still has its original bytes.
func (f *Field) HasRaw() bool { return f.Raw != nil }

// SetName renames the field and drops the original bytes.
func (f *Field) SetName(name string) {
	f.Raw = nil
	f.Base.SetName(name)
}

// SetBody replaces the body and drops the original bytes.
func (f *Field) SetBody(body string) {
	f.Raw = nil
	f.Base.SetBody(body)
}

// SetRaw attaches original bytes without touching the logical value.
func (f *Field) SetRaw(raw []byte) {
	colon := bytes.IndexByte(raw, ':')
	if colon < 0 {
		colon = len(raw)
	}
	f.Raw = &Raw{field: raw, colon: colon}
}

// Clone copies the field. Raw is shared.
func (f *Field) Clone() *Field { return &Field{Base: f.Base, Raw: f.Raw} }
