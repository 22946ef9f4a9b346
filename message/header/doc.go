// Package header provides low-level and high-level tooling for dealing with
// email message headers. Low-level access works on field.Field objects. The
// high-level methods on Header read and write typed values (media types,
// address lists, dates) while leaving untouched fields exactly as parsed.
//
// The provided Parse() method parses headers in a flexible way, built on top
// of field.Parse(), preserving message headers as-is for output.
package header
