// Package edit finds the editable parts of a parsed message and builds an
// edited copy of it.
//
// Extract locates the first HTML and first plain text body in document order
// and lists the attachments. Inline turns cid: references in an HTML body
// into data: URIs for previewing. Rebuild produces a new message with the
// body swapped out, headers changed, and attachments kept, dropped, or added.
// Parts that are not edited are carried into the new message unchanged, so
// they are written out byte-for-byte as they were read.
package edit
