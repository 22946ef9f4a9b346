package server

import (
	"context"
	"time"

	"github.com/zostay/go-addr/pkg/addr"

	"github.com/zostay/emledit/edit"
	"github.com/zostay/emledit/message"
	"github.com/zostay/emledit/translate"
)

// HeaderJSON is an editable header field and its current value.
type HeaderJSON struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SummaryJSON holds the parsed views of the editable header fields.
type SummaryJSON struct {
	From []string `json:"from,omitempty"`
	To   []string `json:"to,omitempty"`
	Cc   []string `json:"cc,omitempty"`
	Bcc  []string `json:"bcc,omitempty"`
	Date string   `json:"date,omitempty"`
}

// AttachmentJSON describes an attachment without its content.
type AttachmentJSON struct {
	Index       int    `json:"index"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id,omitempty"`
	Inline      bool   `json:"inline"`
	Size        int    `json:"size"`
}

// Report is everything an editor needs to show a message.
type Report struct {
	Filename    string             `json:"filename,omitempty"`
	Headers     []HeaderJSON       `json:"headers"`
	Summary     SummaryJSON        `json:"summary"`
	HTML        string             `json:"html"`
	Plain       string             `json:"plain"`
	PreviewHTML string             `json:"preview_html,omitempty"`
	Attachments []AttachmentJSON   `json:"attachments"`
	Preview     *translate.Preview `json:"preview,omitempty"`
}

// ReportOptions select the optional parts of a Report.
type ReportOptions struct {
	// Inline fills in PreviewHTML, the HTML with cid: references replaced by
	// data: URIs.
	Inline bool

	// Translator fills in Preview when not nil.
	Translator *translate.Service
}

// NewReport describes the message.
func NewReport(ctx context.Context, msg message.Part, filename string, opts ReportOptions) *Report {
	body, atts := edit.Extract(msg)
	sum := edit.Summarize(msg)

	r := &Report{
		Filename:    filename,
		Headers:     make([]HeaderJSON, len(sum.Headers)),
		HTML:        body.HTML,
		Plain:       body.Plain,
		Attachments: make([]AttachmentJSON, len(atts)),
		Summary: SummaryJSON{
			From: addresses(sum.From),
			To:   addresses(sum.To),
			Cc:   addresses(sum.Cc),
			Bcc:  addresses(sum.Bcc),
		},
	}

	for i, hv := range sum.Headers {
		r.Headers[i] = HeaderJSON{Name: hv.Name, Value: hv.Value}
	}

	if !sum.Date.IsZero() {
		r.Summary.Date = sum.Date.Format(time.RFC3339)
	}

	for i, att := range atts {
		r.Attachments[i] = AttachmentJSON{
			Index:       att.Index,
			Filename:    att.Filename,
			ContentType: att.ContentType,
			ContentID:   att.ContentID,
			Inline:      att.Inline,
			Size:        len(att.Content),
		}
	}

	if opts.Inline {
		r.PreviewHTML = edit.Inline(body.HTML, atts)
	}

	if opts.Translator != nil {
		r.Preview = opts.Translator.Session().Preview(ctx, body)
	}

	return r
}

func addresses(al addr.AddressList) []string {
	if len(al) == 0 {
		return nil
	}

	out := make([]string, len(al))
	for i, a := range al {
		out[i] = a.Address()
	}
	return out
}
