package header

import (
	"errors"
	"strings"
)

var (
	// ErrNoSuchField means no field with the requested name is present.
	ErrNoSuchField = errors.New("no such header field")

	// ErrNoSuchFieldParameter means the field is present but lacks the
	// requested parameter.
	ErrNoSuchFieldParameter = errors.New("no such header field parameter")

	// ErrManyFields accompanies the first value when a field that should
	// appear once appears more than once.
	ErrManyFields = errors.New("many header fields found")
)

// Field names. Matching is case-insensitive; the spelling here is what gets
// written when a field is created.
const (
	Bcc                     = "Bcc"
	Cc                      = "Cc"
	ContentDisposition      = "Content-disposition"
	ContentID               = "Content-id"
	ContentTransferEncoding = "Content-transfer-encoding"
	ContentType             = "Content-type"
	Date                    = "Date"
	DeliveredTo             = "Delivered-to"
	From                    = "From"
	MessageID               = "Message-id"
	MIMEVersion             = "Mime-version"
	ReplyTo                 = "Reply-to"
	ReturnPath              = "Return-path"
	Subject                 = "Subject"
	To                      = "To"
)

// Header adds typed accessors to Base. Parsed dates, address lists, and
// parameterized values are cached per field name until the field is written
// again.
//
// Getters return ErrNoSuchField when the field is absent.
type Header struct {
	Base

	// keyed by lowercase field name
	valueCache map[string]any
}

// Clone returns a deep copy of the header.
func (h *Header) Clone() *Header {
	c := &Header{Base: *h.Base.Clone()}
	if len(h.valueCache) > 0 {
		c.valueCache = make(map[string]any, len(h.valueCache))
		for k, v := range h.valueCache {
			c.valueCache[k] = v
		}
	}
	return c
}

func cacheKey(name string) string { return strings.ToLower(name) }

func (h *Header) cached(name string) (any, bool) {
	v, ok := h.valueCache[cacheKey(name)]
	return v, ok
}

func (h *Header) cache(name string, v any) {
	if h.valueCache == nil {
		h.valueCache = map[string]any{}
	}
	h.valueCache[cacheKey(name)] = v
}

func (h *Header) uncache(name string) {
	delete(h.valueCache, cacheKey(name))
}

// Get returns the decoded body of the named field. When the field repeats,
// the first body is returned along with ErrManyFields.
func (h *Header) Get(name string) (string, error) {
	ixs := h.GetIndexesNamed(name)
	switch len(ixs) {
	case 0:
		return "", ErrNoSuchField
	case 1:
		return h.GetField(ixs[0]).Body(), nil
	default:
		return h.GetField(ixs[0]).Body(), ErrManyFields
	}
}

// GetAll returns the bodies of every field with the given name in header
// order.
func (h *Header) GetAll(name string) ([]string, error) {
	fs := h.GetAllFieldsNamed(name)
	if len(fs) == 0 {
		return nil, ErrNoSuchField
	}

	bodies := make([]string, 0, len(fs))
	for _, f := range fs {
		bodies = append(bodies, f.Body())
	}
	return bodies, nil
}

// Set gives the named field a single value. The first existing field keeps
// its position and takes the new body; any later fields of the same name are
// removed. A new field is appended when none exists.
func (h *Header) Set(name, body string) {
	h.uncache(name)

	ixs := h.GetIndexesNamed(name)
	if len(ixs) == 0 {
		h.InsertBeforeField(h.Len(), name, body)
		return
	}

	for _, ix := range reversed(ixs[1:]) {
		_ = h.DeleteField(ix)
	}

	f := h.GetField(ixs[0])
	f.SetName(name)
	f.SetBody(body)
}

// Delete removes every field with the given name and reports how many were
// removed.
func (h *Header) Delete(name string) int {
	h.uncache(name)

	ixs := h.GetIndexesNamed(name)
	for _, ix := range reversed(ixs) {
		_ = h.DeleteField(ix)
	}
	return len(ixs)
}

// reversed returns the indexes last to first so deletions do not shift the
// positions still to be visited.
func reversed(ixs []int) []int {
	out := make([]int, len(ixs))
	for i, ix := range ixs {
		out[len(ixs)-1-i] = ix
	}
	return out
}

// GetSubject returns the Subject field.
func (h *Header) GetSubject() (string, error) { return h.Get(Subject) }

// SetSubject replaces the Subject field.
func (h *Header) SetSubject(s string) { h.Set(Subject, s) }

// GetTransferEncoding returns the Content-transfer-encoding, trimmed and
// lowercased.
func (h *Header) GetTransferEncoding() (string, error) {
	te, err := h.Get(ContentTransferEncoding)
	return strings.ToLower(strings.TrimSpace(te)), err
}

// SetTransferEncoding replaces the Content-transfer-encoding field.
func (h *Header) SetTransferEncoding(te string) { h.Set(ContentTransferEncoding, te) }

// GetContentID returns the Content-id without its angle brackets.
func (h *Header) GetContentID() (string, error) {
	id, err := h.Get(ContentID)
	if err != nil && !errors.Is(err, ErrManyFields) {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(id), "<>"), err
}

// SetContentID sets the Content-id, wrapping the id in angle brackets.
func (h *Header) SetContentID(id string) {
	h.Set(ContentID, "<"+strings.Trim(id, "<>")+">")
}
