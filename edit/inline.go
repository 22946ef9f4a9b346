package edit

import (
	"encoding/base64"
	"strings"
)

// DefaultContentType is used for an inlined attachment with no content type.
const DefaultContentType = "application/octet-stream"

// Inline replaces every occurrence of "cid:<id>" in the HTML with a data: URI
// holding the content of the attachment with that Content-ID. Attachments
// without a Content-ID or content are skipped, as are IDs that no attachment
// has.
//
// This is a plain substring replacement. It does not parse the HTML, so an
// occurrence of the reference in ordinary text is replaced too.
func Inline(html string, atts []*Attachment) string {
	if html == "" {
		return html
	}

	for _, att := range atts {
		if att.ContentID == "" || len(att.Content) == 0 {
			continue
		}

		ct := att.ContentType
		if ct == "" {
			ct = DefaultContentType
		}

		uri := "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(att.Content)
		html = strings.ReplaceAll(html, "cid:"+att.ContentID, uri)
	}

	return html
}
