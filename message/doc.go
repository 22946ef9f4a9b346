// Package message provides objects for parsing and reading email messages
// (that survive even when the input is not strictly correct) and for
// generating new messages. Parsed messages keep enough of their original bytes
// to be written back out unchanged, so a message can be edited in place with
// only the edited parts changing on output.
//
// Every message is either an *Opaque, a leaf holding a header and content, or
// a *Multipart, a branch holding a header and sub-parts. Parse returns one or
// the other:
//
//	msg, err := message.Parse(in)
//	if err != nil {
//	  panic(err)
//	}
//
//	switch m := msg.(type) {
//	case *message.Opaque:
//	  content, _ := m.DecodedContent()
//	case *message.Multipart:
//	  for _, part := range m.GetParts() {
//	    // ...
//	  }
//	}
//
// New messages can be generated using a Buffer, or with the Attachment,
// MultipartMixed, and MultipartAlternative constructors.
package message
