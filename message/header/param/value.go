package param

import (
	"errors"
	"fmt"
	"mime"
	"sort"
	"strings"
)

// Well-known parameter names.
const (
	Charset  = "charset"  // Content-type
	Boundary = "boundary" // Content-type of multipart/*
	Filename = "filename" // Content-disposition
	Name     = "name"     // Content-type, older clients put the filename here
)

// Value is a parsed parameterized field body: a primary value followed by
// name=value parameters. Values are immutable; use Modify to derive a changed
// copy.
type Value struct {
	v  string
	ps map[string]string
}

// Parse reads a field body such as `text/plain; charset="utf-8"`. The media
// type is lowercased. RFC 2231 continuations and encoded values are decoded.
// When only the parameters are malformed, the primary value is returned
// without parameters and no error.
func Parse(body string) (*Value, error) {
	v, ps, err := mime.ParseMediaType(body)
	switch {
	case errors.Is(err, mime.ErrInvalidMediaParameter):
		return &Value{v: v, ps: map[string]string{}}, nil
	case err != nil:
		return nil, err
	}
	return &Value{v: v, ps: ps}, nil
}

// New builds a Value from a primary value and parameter maps. Later maps win
// on conflicting names.
func New(v string, ps ...map[string]string) *Value {
	pv := &Value{v: v, ps: map[string]string{}}
	for _, m := range ps {
		for k, val := range m {
			pv.ps[k] = val
		}
	}
	return pv
}

// Modifier changes a Value being built by Modify.
type Modifier func(*Value)

// Change replaces the primary value.
func Change(v string) Modifier { return func(pv *Value) { pv.v = v } }

// Set adds or replaces a parameter.
func Set(name, v string) Modifier { return func(pv *Value) { pv.ps[name] = v } }

// Delete removes a parameter.
func Delete(name string) Modifier { return func(pv *Value) { delete(pv.ps, name) } }

// Modify returns a copy of pv with the changes applied in order.
//
//	ct, _ := param.Parse("multipart/mixed; boundary=a1")
//	alt := param.Modify(ct, param.Change("multipart/alternative"), param.Set(param.Boundary, "b2"))
func Modify(pv *Value, changes ...Modifier) *Value {
	c := pv.Clone()
	for _, change := range changes {
		change(c)
	}
	return c
}

// Value returns the primary value, the text before the first semicolon.
func (pv *Value) Value() string { return pv.v }

// MediaType returns the primary value of a Content-type.
func (pv *Value) MediaType() string { return pv.v }

// Presentation returns the primary value of a Content-disposition.
func (pv *Value) Presentation() string { return pv.v }

func (pv *Value) split() (string, string, bool) { return strings.Cut(pv.v, "/") }

// Type returns the media type before the slash, or "" without a slash.
func (pv *Value) Type() string {
	if t, _, ok := pv.split(); ok {
		return t
	}
	return ""
}

// Subtype returns the media type after the slash, or "" without a slash.
func (pv *Value) Subtype() string {
	_, st, _ := pv.split()
	return st
}

// Parameters returns the parameter map itself. Callers must not modify it.
func (pv *Value) Parameters() map[string]string { return pv.ps }

// Parameter returns the named parameter or "".
func (pv *Value) Parameter(name string) string { return pv.ps[name] }

func (pv *Value) Charset() string  { return pv.ps[Charset] }
func (pv *Value) Boundary() string { return pv.ps[Boundary] }
func (pv *Value) Filename() string { return pv.ps[Filename] }
func (pv *Value) Name() string     { return pv.ps[Name] }

// String formats the value with sorted parameters, quoting or RFC 2231
// encoding them as needed. Values mime.FormatMediaType refuses are written
// with Go quoting instead.
func (pv *Value) String() string {
	if s := mime.FormatMediaType(pv.v, pv.ps); s != "" {
		return s
	}

	names := make([]string, 0, len(pv.ps))
	for k := range pv.ps {
		names = append(names, k)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString(pv.v)
	for _, k := range names {
		fmt.Fprintf(&sb, "; %s=%q", k, pv.ps[k])
	}
	return sb.String()
}

// Bytes returns String as a byte slice.
func (pv *Value) Bytes() []byte { return []byte(pv.String()) }

// Clone returns a deep copy.
func (pv *Value) Clone() *Value { return New(pv.v, pv.ps) }
