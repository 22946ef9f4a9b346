package header

import (
	"strings"

	"github.com/zostay/go-addr/pkg/addr"

	"github.com/zostay/emledit/message/header/field"
)

// ParseAddressList parses an address field body. Bodies the strict RFC 5322
// parser rejects are split on commas and read loosely, so some list is
// always returned, possibly an odd one.
func ParseAddressList(body string) addr.AddressList {
	if al, err := addr.ParseEmailAddressList(body); err == nil {
		return al
	}
	return looseAddressList(body)
}

// GetAddressList returns the named field as an address list, parsed with
// ParseAddressList.
func (h *Header) GetAddressList(name string) (addr.AddressList, error) {
	if v, ok := h.cached(name); ok {
		if al, ok := v.(addr.AddressList); ok {
			return al, nil
		}
	}

	body, err := h.Get(name)
	if err != nil {
		return nil, err
	}

	al := ParseAddressList(body)
	h.cache(name, al)
	return al, nil
}

// SetAddressText sets an address field to the given text. The text is kept
// as written except that non-ASCII display name words and comments are word
// encoded. Addresses are never rewritten.
func (h *Header) SetAddressText(name, body string) {
	h.Set(name, encodeDisplayNames(body))
}

// encodeDisplayNames word encodes the non-ASCII words outside of angle
// brackets. A quoted string holding non-ASCII text is replaced by its
// encoded content since encoded words may not appear inside quotes. Words
// containing "@" are left alone.
func encodeDisplayNames(body string) string {
	if isASCII(body) {
		return body
	}

	var out strings.Builder
	for i := 0; i < len(body); {
		switch c := body[i]; {
		case c == '"':
			end := closingQuote(body, i)
			quoted := body[i:end]
			if isASCII(quoted) {
				out.WriteString(quoted)
			} else {
				out.WriteString(field.Encode(unquote(quoted)))
			}
			i = end
		case c == '<':
			end := len(body)
			if ix := strings.IndexByte(body[i:], '>'); ix >= 0 {
				end = i + ix + 1
			}
			out.WriteString(body[i:end])
			i = end
		case isAddressDelim(c):
			out.WriteByte(c)
			i++
		default:
			j := wordEnd(body, i)
			word := body[i:j]
			if !needsWordEncoding(word) {
				out.WriteString(word)
				i = j
				continue
			}

			// whitespace between adjacent encoded words is dropped when
			// decoding, so a run of such words is encoded together
			for {
				k := j
				for k < len(body) && (body[k] == ' ' || body[k] == '\t') {
					k++
				}
				next := wordEnd(body, k)
				if k == j || !needsWordEncoding(body[k:next]) {
					break
				}
				j = next
			}
			out.WriteString(field.Encode(body[i:j]))
			i = j
		}
	}
	return out.String()
}

// wordEnd returns the index of the first delimiter at or after start.
func wordEnd(s string, start int) int {
	j := start
	for j < len(s) && !isAddressDelim(s[j]) && s[j] != '"' && s[j] != '<' {
		j++
	}
	return j
}

func needsWordEncoding(word string) bool {
	return word != "" && !isASCII(word) && !strings.Contains(word, "@")
}

func isAddressDelim(c byte) bool {
	switch c {
	case ' ', '\t', ',', ';', ':', '(', ')':
		return true
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// closingQuote returns the index just past the quoted string starting at
// start, or len(s) if it is never closed.
func closingQuote(s string, start int) int {
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return len(s)
}

// unquote strips the quotes and backslash escapes of a quoted string.
func unquote(q string) string {
	q = strings.TrimPrefix(q, `"`)
	q = strings.TrimSuffix(q, `"`)

	var b strings.Builder
	for i := 0; i < len(q); i++ {
		if q[i] == '\\' && i+1 < len(q) {
			i++
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

// GetFrom returns the From field as an address list.
func (h *Header) GetFrom() (addr.AddressList, error) { return h.GetAddressList(From) }

// GetTo returns the To field as an address list.
func (h *Header) GetTo() (addr.AddressList, error) { return h.GetAddressList(To) }

// GetCc returns the Cc field as an address list.
func (h *Header) GetCc() (addr.AddressList, error) { return h.GetAddressList(Cc) }

// GetBcc returns the Bcc field as an address list.
func (h *Header) GetBcc() (addr.AddressList, error) { return h.GetAddressList(Bcc) }

// looseAddressList reads each comma separated entry as display name words
// followed by an address, with parenthesized comments set aside. Groups are
// not recognized. Entries without any words are dropped.
func looseAddressList(body string) addr.AddressList {
	entries := strings.Split(body, ",")
	list := make(addr.AddressList, 0, len(entries))
	for _, entry := range entries {
		if mb := looseMailbox(entry); mb != nil {
			list = append(list, mb)
		}
	}
	return list
}

func looseMailbox(entry string) *addr.Mailbox {
	text, comment := splitComments(entry)

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	email := strings.Trim(words[len(words)-1], "<>")
	if email == "" {
		return nil
	}
	display := strings.Trim(strings.Join(words[:len(words)-1], " "), `"`)

	local, domain := email, ""
	if at := strings.LastIndex(email, "@"); at >= 0 {
		local, domain = email[:at], email[at+1:]
	}
	spec := addr.NewAddrSpecParsed(local, domain, email)

	comment = strings.TrimSpace(comment)
	mb, err := addr.NewMailboxParsed(display, spec, comment, entry)
	if err != nil {
		mb, _ = addr.NewMailboxParsed(display, spec, "", entry)
	}
	return mb
}

// splitComments separates parenthesized comments from the rest of s. Nested
// parentheses stay in the comment text; an unbalanced ")" is kept as text.
func splitComments(s string) (text, comment string) {
	var tb, cb strings.Builder
	depth := 0
	for _, c := range s {
		switch {
		case c == '(':
			if depth > 0 {
				cb.WriteRune(c)
			}
			depth++
		case c == ')' && depth == 0:
			tb.WriteRune(c)
		case c == ')':
			depth--
			if depth > 0 {
				cb.WriteRune(c)
			}
		case depth > 0:
			cb.WriteRune(c)
		default:
			tb.WriteRune(c)
		}
	}
	return tb.String(), cb.String()
}
