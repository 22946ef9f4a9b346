package message

import "bytes"

// Bytes renders the message to a slice of bytes. A message that was parsed
// and not modified renders exactly as the bytes it was parsed from.
func Bytes(msg Part) ([]byte, error) {
	buf := &bytes.Buffer{}
	if _, err := msg.WriteTo(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
