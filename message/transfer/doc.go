// Package transfer applies and removes the Content-transfer-encoding of a
// message part.
//
// Only quoted-printable and base64 change the bytes. The identity encodings
// (7bit, 8bit, binary, or no header at all) pass content through untouched, as
// does any encoding name this package does not recognize. Decoding yields the
// content in its declared charset; converting that to UTF-8 is the caller's
// job.
package transfer
