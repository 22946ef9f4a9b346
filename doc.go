// Package emledit is the root of a toolkit for editing RFC 5322 messages
// without disturbing the bytes that were not edited.
//
// The work is spread over a few packages:
//
//   - message parses raw bytes into a tree of message.Opaque and
//     message.Multipart parts and serializes the tree back out. Parsing an
//     unmodified message and writing it again yields the original bytes.
//   - message/header holds the header block, keeping each field's original
//     bytes until the field is changed.
//   - edit finds the displayable body and the attachments of a parsed message,
//     inlines cid: images for previewing, and rebuilds a new message from an
//     edited body with the chosen attachments.
//   - translate detects the language of a body and translates a sample of it
//     into a target language for previewing.
//
// The emledit command in cmd/emledit exposes these as subcommands and as a
// small HTTP API.
package emledit
