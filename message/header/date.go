package header

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/araddon/dateparse"
)

// UnixDateWithEarlyYear is the ctime layout with the year ahead of the zone,
// as written by some old mailers.
const UnixDateWithEarlyYear = "Mon Jan 02 15:04:05 2006 MST"

// ParseTime parses a date field body. RFC 5322 syntax is tried first, then
// anything dateparse recognizes, then UnixDateWithEarlyYear.
func ParseTime(body string) (time.Time, error) {
	if t, err := mail.ParseDate(body); err == nil {
		return t, nil
	}

	if t, err := dateparse.ParseAny(body); err == nil {
		return t, nil
	}

	if t, err := time.Parse(UnixDateWithEarlyYear, body); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("time string %q cannot be parsed", body)
}

// GetTime parses the named field with ParseTime.
func (h *Header) GetTime(name string) (time.Time, error) {
	if v, ok := h.cached(name); ok {
		if t, ok := v.(time.Time); ok {
			return t, nil
		}
	}

	body, err := h.Get(name)
	if err != nil {
		return time.Time{}, err
	}

	t, err := ParseTime(body)
	if err != nil {
		return time.Time{}, err
	}

	h.cache(name, t)
	return t, nil
}

// SetTime sets the named field to t in time.RFC1123Z layout.
func (h *Header) SetTime(name string, t time.Time) {
	h.Set(name, t.Format(time.RFC1123Z))
	h.cache(name, t)
}

// GetDate returns the Date field as a time.
func (h *Header) GetDate() (time.Time, error) { return h.GetTime(Date) }

// SetDate replaces the Date field.
func (h *Header) SetDate(t time.Time) { h.SetTime(Date, t) }
