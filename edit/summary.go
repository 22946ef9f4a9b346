package edit

import (
	"time"

	"github.com/zostay/go-addr/pkg/addr"

	"github.com/zostay/emledit/message"
	"github.com/zostay/emledit/message/header"
)

// HeaderValue is the current value of an editable header field.
type HeaderValue struct {
	Name  string
	Value string
}

// Summary describes the editable header fields of a message.
type Summary struct {
	// Headers holds every field in EditableHeaders, in that order. The value
	// is empty when the field is missing.
	Headers []HeaderValue

	// From, To, Cc, and Bcc are the parsed address lists. They are nil when
	// the field is missing.
	From, To, Cc, Bcc addr.AddressList

	// Date is the parsed Date field. It is the zero time when the field is
	// missing or cannot be parsed.
	Date time.Time
}

// Get returns the value of the named editable field.
func (s *Summary) Get(name string) string {
	cname, ok := canonicalHeader(name)
	if !ok {
		return ""
	}

	for _, hv := range s.Headers {
		if hv.Name == cname {
			return hv.Value
		}
	}
	return ""
}

// Summarize returns the editable header fields of the message. When a field
// appears more than once, the first is used. Parse failures leave the parsed
// views empty.
func Summarize(msg message.Part) *Summary {
	h := msg.GetHeader()

	s := &Summary{
		Headers: make([]HeaderValue, len(EditableHeaders)),
	}
	for i, name := range EditableHeaders {
		value, _ := h.Get(name)
		s.Headers[i] = HeaderValue{Name: name, Value: value}
	}

	s.From = addressList(h, header.From)
	s.To = addressList(h, header.To)
	s.Cc = addressList(h, header.Cc)
	s.Bcc = addressList(h, header.Bcc)

	if value := s.Get(header.Date); value != "" {
		if t, err := header.ParseTime(value); err == nil {
			s.Date = t
		}
	}

	return s
}

// addressList parses the first field with the given name.
func addressList(h *header.Header, name string) addr.AddressList {
	value, _ := h.Get(name)
	if value == "" {
		return nil
	}
	return header.ParseAddressList(value)
}
